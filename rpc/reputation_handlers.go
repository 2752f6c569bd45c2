package rpc

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"agoradeals/native/reputation"
)

type reputationGetParams struct {
	User string `json:"user"`
}

type mintBadgeParams struct {
	User  string `json:"user"`
	Badge string `json:"badge"`
}

type reputationJSON struct {
	User              string   `json:"user"`
	TotalPurchases    uint32   `json:"totalPurchases"`
	TotalRedemptions  uint32   `json:"totalRedemptions"`
	TotalRatingsGiven uint32   `json:"totalRatingsGiven"`
	TotalComments     uint32   `json:"totalComments"`
	ReputationScore   uint64   `json:"reputationScore"`
	Tier              string   `json:"tier"`
	BadgesEarned      []string `json:"badgesEarned"`
	JoinedAt          int64    `json:"joinedAt"`
}

type badgeJSON struct {
	User        string `json:"user"`
	Badge       string `json:"badge"`
	DisplayName string `json:"displayName"`
	Token       string `json:"token"`
	MetadataURI string `json:"metadataUri"`
	EarnedAt    int64  `json:"earnedAt"`
}

func parseBadgeType(value string) (reputation.BadgeType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "first_purchase", "firstpurchase":
		return reputation.BadgeFirstPurchase, nil
	case "ten_redemptions", "tenredemptions":
		return reputation.BadgeTenRedemptions, nil
	case "fifty_redemptions", "fiftyredemptions":
		return reputation.BadgeFiftyRedemptions, nil
	case "top_reviewer", "topreviewer":
		return reputation.BadgeTopReviewer, nil
	case "early_adopter", "earlyadopter":
		return reputation.BadgeEarlyAdopter, nil
	case "merchant_partner", "merchantpartner":
		return reputation.BadgeMerchantPartner, nil
	case "community_moderator", "communitymoderator":
		return reputation.BadgeCommunityModerator, nil
	default:
		return 0, fmt.Errorf("unknown badge type %q", value)
	}
}

func reputationToJSON(user string, r *reputation.UserReputation) *reputationJSON {
	badges := make([]string, len(r.BadgesEarned))
	for i, b := range r.BadgesEarned {
		badges[i] = b.String()
	}
	return &reputationJSON{
		User:              user,
		TotalPurchases:    r.TotalPurchases,
		TotalRedemptions:  r.TotalRedemptions,
		TotalRatingsGiven: r.TotalRatingsGiven,
		TotalComments:     r.TotalComments,
		ReputationScore:   r.ReputationScore,
		Tier:              r.Tier.String(),
		BadgesEarned:      badges,
		JoinedAt:          r.JoinedAt,
	}
}

func badgeToJSON(b *reputation.BadgeNFT) *badgeJSON {
	return &badgeJSON{
		User:        b.User.String(),
		Badge:       b.BadgeType.String(),
		DisplayName: b.BadgeType.DisplayName(),
		Token:       hex.EncodeToString(b.Token[:]),
		MetadataURI: b.MetadataURI,
		EarnedAt:    b.EarnedAt,
	}
}

func (s *Server) handleReputationGet(w http.ResponseWriter, req *RPCRequest) string {
	var params reputationGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	rep, ok, err := s.node.Reputation(user)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		// Users without history read as a fresh record.
		rep = &reputation.UserReputation{User: user}
	}
	return s.writeOutcome(w, req.ID, reputationToJSON(params.User, rep), nil)
}

func (s *Server) handleMintBadge(w http.ResponseWriter, req *RPCRequest) string {
	var params mintBadgeParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	badgeType, err := parseBadgeType(params.Badge)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	badge, err := s.node.MintBadge(user, badgeType)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, badgeToJSON(badge), nil)
}

func (s *Server) handleGetBadge(w http.ResponseWriter, req *RPCRequest) string {
	var params mintBadgeParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	badgeType, err := parseBadgeType(params.Badge)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	badge, ok, err := s.node.Badge(user, badgeType)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, reputation.ErrBadgeNotEarned)
	}
	return s.writeOutcome(w, req.ID, badgeToJSON(badge), nil)
}
