package rpc

import (
	"net/http"

	"agoradeals/native/exchange"
)

type exchangeListParams struct {
	Coupon string `json:"coupon"`
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

type exchangeListingParams struct {
	Listing string `json:"listing"`
}

type exchangeCancelParams struct {
	Listing string `json:"listing"`
	Caller  string `json:"caller"`
}

type exchangeBuyParams struct {
	Listing string `json:"listing"`
	Buyer   string `json:"buyer"`
}

type listingJSON struct {
	Address   string `json:"address"`
	Coupon    string `json:"coupon"`
	Seller    string `json:"seller"`
	Price     uint64 `json:"price"`
	IsActive  bool   `json:"isActive"`
	CreatedAt int64  `json:"createdAt"`
}

type saleJSON struct {
	Listing *listingJSON `json:"listing"`
	Coupon  *couponJSON  `json:"coupon"`
}

func listingToJSON(addrStr string, l *exchange.Listing) *listingJSON {
	return &listingJSON{
		Address:   addrStr,
		Coupon:    l.Coupon.String(),
		Seller:    l.Seller.String(),
		Price:     l.Price,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
	}
}

func (s *Server) handleExchangeList(w http.ResponseWriter, req *RPCRequest) string {
	var params exchangeListParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	couponAddr, err := parseAddress("coupon", params.Coupon)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	seller, err := parseAddress("seller", params.Seller)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, listing, err := s.node.ListForSale(couponAddr, seller, params.Price)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, listingToJSON(addr.String(), listing), nil)
}

func (s *Server) handleExchangeCancel(w http.ResponseWriter, req *RPCRequest) string {
	var params exchangeCancelParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	listingAddr, err := parseAddress("listing", params.Listing)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	listing, err := s.node.CancelListing(listingAddr, caller)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, listingToJSON(params.Listing, listing), nil)
}

func (s *Server) handleExchangeBuy(w http.ResponseWriter, req *RPCRequest) string {
	var params exchangeBuyParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	listingAddr, err := parseAddress("listing", params.Listing)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	buyer, err := parseAddress("buyer", params.Buyer)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	listing, c, err := s.node.BuyListing(listingAddr, buyer)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	result := &saleJSON{
		Listing: listingToJSON(params.Listing, listing),
		Coupon:  couponToJSON(listing.Coupon.String(), c),
	}
	return s.writeOutcome(w, req.ID, result, nil)
}

func (s *Server) handleExchangeGetListing(w http.ResponseWriter, req *RPCRequest) string {
	var params exchangeListingParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("listing", params.Listing)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	listing, ok, err := s.node.Listing(addr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, exchange.ErrListingNotFound)
	}
	return s.writeOutcome(w, req.ID, listingToJSON(params.Listing, listing), nil)
}
