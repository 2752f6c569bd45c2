package rpc

import (
	"net/http"
	"strings"

	"agoradeals/crypto"
	"agoradeals/native/social"
)

type addCommentParams struct {
	Promotion string `json:"promotion"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Parent    string `json:"parent,omitempty"`
}

type likeCommentParams struct {
	Comment string `json:"comment"`
	Liker   string `json:"liker"`
}

type rateParams struct {
	Promotion string `json:"promotion"`
	User      string `json:"user"`
	Stars     uint8  `json:"stars"`
}

type commentGetParams struct {
	Comment string `json:"comment"`
}

type ratingGetParams struct {
	Promotion string `json:"promotion"`
	User      string `json:"user"`
}

type ratingStatsParams struct {
	Promotion string `json:"promotion"`
}

type commentJSON struct {
	Address         string `json:"address"`
	ID              uint64 `json:"id"`
	Promotion       string `json:"promotion"`
	User            string `json:"user"`
	Content         string `json:"content"`
	CreatedAt       int64  `json:"createdAt"`
	Likes           uint64 `json:"likes"`
	IsMerchantReply bool   `json:"isMerchantReply"`
	Parent          string `json:"parent,omitempty"`
}

type ratingJSON struct {
	User      string `json:"user"`
	Promotion string `json:"promotion"`
	Merchant  string `json:"merchant"`
	Stars     uint8  `json:"stars"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ratingStatsJSON struct {
	Promotion     string                  `json:"promotion"`
	TotalRatings  uint64                  `json:"totalRatings"`
	SumStars      uint64                  `json:"sumStars"`
	Distribution  [social.MaxStars]uint32 `json:"distribution"`
	AverageRating uint64                  `json:"averageRating"`
}

func commentToJSON(addrStr string, c *social.Comment) *commentJSON {
	out := &commentJSON{
		Address:         addrStr,
		ID:              c.ID,
		Promotion:       c.Promotion.String(),
		User:            c.User.String(),
		Content:         c.Content,
		CreatedAt:       c.CreatedAt,
		Likes:           c.Likes,
		IsMerchantReply: c.IsMerchantReply,
	}
	if !c.Parent.IsZero() {
		out.Parent = c.Parent.String()
	}
	return out
}

func ratingToJSON(r *social.Rating) *ratingJSON {
	return &ratingJSON{
		User:      r.User.String(),
		Promotion: r.Promotion.String(),
		Merchant:  r.Merchant.String(),
		Stars:     r.Stars,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func statsToJSON(s *social.RatingStats) *ratingStatsJSON {
	return &ratingStatsJSON{
		Promotion:     s.Promotion.String(),
		TotalRatings:  s.TotalRatings,
		SumStars:      s.SumStars,
		Distribution:  s.Distribution,
		AverageRating: s.AverageRating,
	}
}

func (s *Server) handleAddComment(w http.ResponseWriter, req *RPCRequest) string {
	var params addCommentParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promoAddr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	author, err := parseAddress("author", params.Author)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	parent := crypto.Address{}
	if strings.TrimSpace(params.Parent) != "" {
		parent, err = parseAddress("parent", params.Parent)
		if err != nil {
			return s.invalidParams(w, req.ID, err)
		}
	}
	addr, c, err := s.node.AddComment(promoAddr, author, params.Content, parent)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, commentToJSON(addr.String(), c), nil)
}

func (s *Server) handleLikeComment(w http.ResponseWriter, req *RPCRequest) string {
	var params likeCommentParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	commentAddr, err := parseAddress("comment", params.Comment)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	liker, err := parseAddress("liker", params.Liker)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	c, err := s.node.LikeComment(commentAddr, liker)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, commentToJSON(params.Comment, c), nil)
}

func (s *Server) handleRatePromotion(w http.ResponseWriter, req *RPCRequest) string {
	var params rateParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promoAddr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	rating, stats, err := s.node.RatePromotion(promoAddr, user, params.Stars)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	result := struct {
		Rating *ratingJSON      `json:"rating"`
		Stats  *ratingStatsJSON `json:"stats"`
	}{ratingToJSON(rating), statsToJSON(stats)}
	return s.writeOutcome(w, req.ID, result, nil)
}

func (s *Server) handleGetComment(w http.ResponseWriter, req *RPCRequest) string {
	var params commentGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("comment", params.Comment)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	c, ok, err := s.node.Comment(addr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, social.ErrCommentNotFound)
	}
	return s.writeOutcome(w, req.ID, commentToJSON(params.Comment, c), nil)
}

func (s *Server) handleGetRating(w http.ResponseWriter, req *RPCRequest) string {
	var params ratingGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promoAddr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	rating, ok, err := s.node.Rating(promoAddr, user)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, social.ErrRatingNotFound)
	}
	return s.writeOutcome(w, req.ID, ratingToJSON(rating), nil)
}

func (s *Server) handleGetRatingStats(w http.ResponseWriter, req *RPCRequest) string {
	var params ratingStatsParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promoAddr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	stats, ok, err := s.node.RatingStats(promoAddr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		// No ratings yet is an empty aggregate, not an error.
		stats = &social.RatingStats{Promotion: promoAddr}
	}
	return s.writeOutcome(w, req.ID, statsToJSON(stats), nil)
}
