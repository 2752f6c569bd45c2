package rpc

import (
	"fmt"
	"net/http"
	"strings"

	"agoradeals/native/oracle"
)

type oracleInitializeParams struct {
	Authority            string   `json:"authority"`
	AllowedSources       []string `json:"allowedSources"`
	MinVerificationCount uint32   `json:"minVerificationCount"`
	UpdateInterval       int64    `json:"updateInterval"`
}

type oracleUpdateDealParams struct {
	Caller          string `json:"caller"`
	Source          string `json:"source"`
	ExternalID      string `json:"externalId"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	AffiliateURL    string `json:"affiliateUrl,omitempty"`
	OriginalPrice   uint64 `json:"originalPrice"`
	DiscountedPrice uint64 `json:"discountedPrice"`
	ExpiryTimestamp int64  `json:"expiryTimestamp"`
}

type oracleGetDealParams struct {
	ExternalID string `json:"externalId"`
}

type oracleConfigJSON struct {
	Authority            string   `json:"authority"`
	AllowedSources       []string `json:"allowedSources"`
	MinVerificationCount uint32   `json:"minVerificationCount"`
	UpdateInterval       int64    `json:"updateInterval"`
	TotalDealsImported   uint64   `json:"totalDealsImported"`
}

type dealJSON struct {
	OracleAuthority    string `json:"oracleAuthority"`
	Source             string `json:"source"`
	ExternalID         string `json:"externalId"`
	Title              string `json:"title,omitempty"`
	Description        string `json:"description,omitempty"`
	Category           string `json:"category,omitempty"`
	ImageURL           string `json:"imageUrl,omitempty"`
	AffiliateURL       string `json:"affiliateUrl,omitempty"`
	OriginalPrice      uint64 `json:"originalPrice"`
	DiscountedPrice    uint64 `json:"discountedPrice"`
	DiscountPercentage uint8  `json:"discountPercentage"`
	ExpiryTimestamp    int64  `json:"expiryTimestamp"`
	LastUpdated        int64  `json:"lastUpdated"`
	IsVerified         bool   `json:"isVerified"`
	VerificationCount  uint32 `json:"verificationCount"`
}

func parseDealSource(value string) (oracle.DealSource, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "skyscanner":
		return oracle.SourceSkyscanner, nil
	case "booking.com", "bookingcom":
		return oracle.SourceBookingCom, nil
	case "shopify":
		return oracle.SourceShopify, nil
	case "amazon":
		return oracle.SourceAmazon, nil
	case "custom":
		return oracle.SourceCustom, nil
	default:
		return 0, fmt.Errorf("unknown deal source %q", value)
	}
}

func configToJSON(cfg *oracle.Config) *oracleConfigJSON {
	sources := make([]string, len(cfg.AllowedSources))
	for i, s := range cfg.AllowedSources {
		sources[i] = s.String()
	}
	return &oracleConfigJSON{
		Authority:            cfg.Authority.String(),
		AllowedSources:       sources,
		MinVerificationCount: cfg.MinVerificationCount,
		UpdateInterval:       cfg.UpdateInterval,
		TotalDealsImported:   cfg.TotalDealsImported,
	}
}

func dealToJSON(d *oracle.ExternalDeal) *dealJSON {
	return &dealJSON{
		OracleAuthority:    d.OracleAuthority.String(),
		Source:             d.Source.String(),
		ExternalID:         d.ExternalID,
		Title:              d.Title,
		Description:        d.Description,
		Category:           d.Category,
		ImageURL:           d.ImageURL,
		AffiliateURL:       d.AffiliateURL,
		OriginalPrice:      d.OriginalPrice,
		DiscountedPrice:    d.DiscountedPrice,
		DiscountPercentage: d.DiscountPercentage,
		ExpiryTimestamp:    d.ExpiryTimestamp,
		LastUpdated:        d.LastUpdated,
		IsVerified:         d.IsVerified,
		VerificationCount:  d.VerificationCount,
	}
}

func (s *Server) handleOracleInitialize(w http.ResponseWriter, req *RPCRequest) string {
	var params oracleInitializeParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	authority, err := parseAddress("authority", params.Authority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	sources := make([]oracle.DealSource, 0, len(params.AllowedSources))
	for _, raw := range params.AllowedSources {
		source, err := parseDealSource(raw)
		if err != nil {
			return s.invalidParams(w, req.ID, err)
		}
		sources = append(sources, source)
	}
	cfg, err := s.node.InitializeOracle(authority, sources, params.MinVerificationCount, params.UpdateInterval)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, configToJSON(cfg), nil)
}

func (s *Server) handleOracleUpdateDeal(w http.ResponseWriter, req *RPCRequest) string {
	var params oracleUpdateDealParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	source, err := parseDealSource(params.Source)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	deal, err := s.node.UpdateExternalDeal(caller, oracle.DealParams{
		Source:          source,
		ExternalID:      params.ExternalID,
		Title:           params.Title,
		Description:     params.Description,
		Category:        params.Category,
		ImageURL:        params.ImageURL,
		AffiliateURL:    params.AffiliateURL,
		OriginalPrice:   params.OriginalPrice,
		DiscountedPrice: params.DiscountedPrice,
		ExpiryTimestamp: params.ExpiryTimestamp,
	})
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, dealToJSON(deal), nil)
}

func (s *Server) handleOracleGetConfig(w http.ResponseWriter, req *RPCRequest) string {
	cfg, ok, err := s.node.OracleConfig()
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, oracle.ErrConfigNotFound)
	}
	return s.writeOutcome(w, req.ID, configToJSON(cfg), nil)
}

func (s *Server) handleOracleGetDeal(w http.ResponseWriter, req *RPCRequest) string {
	var params oracleGetDealParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	deal, ok, err := s.node.Deal(params.ExternalID)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, oracle.ErrDealNotFound)
	}
	return s.writeOutcome(w, req.ID, dealToJSON(deal), nil)
}
