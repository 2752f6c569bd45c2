package rpc

import (
	"net/http"

	"agoradeals/native/geo"
	"agoradeals/native/promotion"
)

type promotionCreateParams struct {
	Authority          string   `json:"authority"`
	DiscountPercentage uint8    `json:"discountPercentage"`
	MaxSupply          uint32   `json:"maxSupply"`
	ExpiryTimestamp    int64    `json:"expiryTimestamp"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Price              uint64   `json:"price"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	RadiusMeters       uint32   `json:"radiusMeters,omitempty"`
}

type promotionGetParams struct {
	Promotion string `json:"promotion"`
}

type geoGetCellParams struct {
	CellID uint64 `json:"cellId"`
}

type placementJSON struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	CellID       uint64  `json:"cellId"`
	RadiusMeters uint32  `json:"radiusMeters"`
}

type promotionJSON struct {
	Address            string         `json:"address"`
	Merchant           string         `json:"merchant"`
	DiscountPercentage uint8          `json:"discountPercentage"`
	MaxSupply          uint32         `json:"maxSupply"`
	CurrentSupply      uint32         `json:"currentSupply"`
	ExpiryTimestamp    int64          `json:"expiryTimestamp"`
	Category           string         `json:"category"`
	Description        string         `json:"description"`
	Price              uint64         `json:"price"`
	IsActive           bool           `json:"isActive"`
	CreatedAt          int64          `json:"createdAt"`
	Placement          *placementJSON `json:"placement,omitempty"`
}

type cellJSON struct {
	CellID         uint64 `json:"cellId"`
	MinLatitude    int32  `json:"minLatitude"`
	MaxLatitude    int32  `json:"maxLatitude"`
	MinLongitude   int32  `json:"minLongitude"`
	MaxLongitude   int32  `json:"maxLongitude"`
	PromotionCount uint32 `json:"promotionCount"`
}

func promotionToJSON(addrStr string, p *promotion.Promotion) *promotionJSON {
	out := &promotionJSON{
		Address:            addrStr,
		Merchant:           p.Merchant.String(),
		DiscountPercentage: p.DiscountPercentage,
		MaxSupply:          p.MaxSupply,
		CurrentSupply:      p.CurrentSupply,
		ExpiryTimestamp:    p.ExpiryTimestamp,
		Category:           p.Category,
		Description:        p.Description,
		Price:              p.Price,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
	if p.Placement != nil {
		lat, lon := p.Placement.Location.Coords()
		out.Placement = &placementJSON{
			Latitude:     lat,
			Longitude:    lon,
			CellID:       p.Placement.CellID,
			RadiusMeters: p.Placement.RadiusMeters,
		}
	}
	return out
}

func cellToJSON(c *geo.Cell) *cellJSON {
	return &cellJSON{
		CellID:         c.CellID,
		MinLatitude:    c.MinLatitude,
		MaxLatitude:    c.MaxLatitude,
		MinLongitude:   c.MinLongitude,
		MaxLongitude:   c.MaxLongitude,
		PromotionCount: c.PromotionCount,
	}
}

func (s *Server) handlePromotionCreate(w http.ResponseWriter, req *RPCRequest) string {
	var params promotionCreateParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, promo, err := s.node.CreatePromotion(authority, promotion.CreateParams{
		DiscountPercentage: params.DiscountPercentage,
		MaxSupply:          params.MaxSupply,
		ExpiryTimestamp:    params.ExpiryTimestamp,
		Category:           params.Category,
		Description:        params.Description,
		Price:              params.Price,
		Latitude:           params.Latitude,
		Longitude:          params.Longitude,
		RadiusMeters:       params.RadiusMeters,
	})
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, promotionToJSON(addr.String(), promo), nil)
}

func (s *Server) handlePromotionGet(w http.ResponseWriter, req *RPCRequest) string {
	var params promotionGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promo, ok, err := s.node.Promotion(addr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, promotion.ErrPromotionNotFound)
	}
	return s.writeOutcome(w, req.ID, promotionToJSON(params.Promotion, promo), nil)
}

func (s *Server) handleGeoGetCell(w http.ResponseWriter, req *RPCRequest) string {
	var params geoGetCellParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	cell, ok, err := s.node.Cell(params.CellID)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		// An unindexed cell is an empty cell, not an error.
		lat, lon := geo.CellIDCoords(params.CellID)
		return s.writeOutcome(w, req.ID, cellToJSON(geo.NewCell(lat, lon)), nil)
	}
	return s.writeOutcome(w, req.ID, cellToJSON(cell), nil)
}
