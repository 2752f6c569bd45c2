package rpc

import (
	"net/http"

	"agoradeals/native/geo"
	"agoradeals/native/marketplace"
)

type marketplaceInitializeParams struct {
	Authority      string `json:"authority"`
	FeeBasisPoints uint32 `json:"feeBasisPoints"`
}

type marketplaceSetFeeParams struct {
	Caller         string `json:"caller"`
	FeeBasisPoints uint32 `json:"feeBasisPoints"`
}

type registerMerchantParams struct {
	Authority string   `json:"authority"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type merchantAuthorityParams struct {
	Authority string `json:"authority"`
}

type registryJSON struct {
	Authority      string `json:"authority"`
	Treasury       string `json:"treasury"`
	TotalCoupons   uint64 `json:"totalCoupons"`
	TotalMerchants uint64 `json:"totalMerchants"`
	FeeBasisPoints uint32 `json:"feeBasisPoints"`
}

type locationJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CellID    uint64  `json:"cellId"`
}

type merchantJSON struct {
	Address              string        `json:"address"`
	Authority            string        `json:"authority"`
	Name                 string        `json:"name"`
	Category             string        `json:"category"`
	TotalPromotions      uint64        `json:"totalPromotions"`
	TotalCouponsCreated  uint64        `json:"totalCouponsCreated"`
	TotalCouponsRedeemed uint64        `json:"totalCouponsRedeemed"`
	IsActive             bool          `json:"isActive"`
	CreatedAt            int64         `json:"createdAt"`
	Location             *locationJSON `json:"location,omitempty"`
}

func registryToJSON(reg *marketplace.Registry) *registryJSON {
	return &registryJSON{
		Authority:      reg.Authority.String(),
		Treasury:       marketplace.TreasuryAddress().String(),
		TotalCoupons:   reg.TotalCoupons,
		TotalMerchants: reg.TotalMerchants,
		FeeBasisPoints: reg.FeeBasisPoints,
	}
}

func locationToJSON(loc *geo.Location) *locationJSON {
	if loc == nil {
		return nil
	}
	lat, lon := loc.Coords()
	cellLat, cellLon := loc.CellCoords()
	return &locationJSON{Latitude: lat, Longitude: lon, CellID: geo.CellID(cellLat, cellLon)}
}

func merchantToJSON(m *marketplace.Merchant) *merchantJSON {
	return &merchantJSON{
		Address:              marketplace.MerchantAddress(m.Authority).String(),
		Authority:            m.Authority.String(),
		Name:                 m.Name,
		Category:             m.Category,
		TotalPromotions:      m.TotalPromotions,
		TotalCouponsCreated:  m.TotalCouponsCreated,
		TotalCouponsRedeemed: m.TotalCouponsRedeemed,
		IsActive:             m.IsActive,
		CreatedAt:            m.CreatedAt,
		Location:             locationToJSON(m.Location),
	}
}

func (s *Server) handleMarketplaceInitialize(w http.ResponseWriter, req *RPCRequest) string {
	var params marketplaceInitializeParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	reg, err := s.node.InitializeMarketplace(authority, params.FeeBasisPoints)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, registryToJSON(reg), nil)
}

func (s *Server) handleMarketplaceSetFee(w http.ResponseWriter, req *RPCRequest) string {
	var params marketplaceSetFeeParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	reg, err := s.node.SetFeeBasisPoints(caller, params.FeeBasisPoints)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, registryToJSON(reg), nil)
}

func (s *Server) handleRegisterMerchant(w http.ResponseWriter, req *RPCRequest) string {
	var params registerMerchantParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	merchant, err := s.node.RegisterMerchant(authority, params.Name, params.Category, params.Latitude, params.Longitude)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, merchantToJSON(merchant), nil)
}

func (s *Server) handleGetRegistry(w http.ResponseWriter, req *RPCRequest) string {
	reg, ok, err := s.node.Registry()
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, marketplace.ErrNotInitialized)
	}
	return s.writeOutcome(w, req.ID, registryToJSON(reg), nil)
}

func (s *Server) handleGetMerchant(w http.ResponseWriter, req *RPCRequest) string {
	var params merchantAuthorityParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	merchant, ok, err := s.node.Merchant(authority)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, marketplace.ErrMerchantNotFound)
	}
	return s.writeOutcome(w, req.ID, merchantToJSON(merchant), nil)
}
