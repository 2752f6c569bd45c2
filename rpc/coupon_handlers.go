package rpc

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"agoradeals/native/coupon"
)

type couponMintParams struct {
	Promotion string `json:"promotion"`
	Recipient string `json:"recipient"`
}

type couponTransferParams struct {
	Coupon   string `json:"coupon"`
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type couponRedeemParams struct {
	Coupon            string `json:"coupon"`
	Redeemer          string `json:"redeemer"`
	MerchantAuthority string `json:"merchantAuthority"`
}

type couponGetParams struct {
	Coupon string `json:"coupon"`
}

type couponJSON struct {
	Address            string `json:"address"`
	ID                 uint64 `json:"id"`
	Promotion          string `json:"promotion"`
	Owner              string `json:"owner"`
	Merchant           string `json:"merchant"`
	DiscountPercentage uint8  `json:"discountPercentage"`
	ExpiryTimestamp    int64  `json:"expiryTimestamp"`
	IsRedeemed         bool   `json:"isRedeemed"`
	RedeemedAt         int64  `json:"redeemedAt,omitempty"`
	RedemptionCode     string `json:"redemptionCode,omitempty"`
	CreatedAt          int64  `json:"createdAt"`
	Token              string `json:"token"`
}

func couponToJSON(addrStr string, c *coupon.Coupon) *couponJSON {
	out := &couponJSON{
		Address:            addrStr,
		ID:                 c.ID,
		Promotion:          c.Promotion.String(),
		Owner:              c.Owner.String(),
		Merchant:           c.Merchant.String(),
		DiscountPercentage: c.DiscountPercentage,
		ExpiryTimestamp:    c.ExpiryTimestamp,
		IsRedeemed:         c.IsRedeemed,
		RedeemedAt:         c.RedeemedAt,
		CreatedAt:          c.CreatedAt,
		Token:              hex.EncodeToString(c.Token[:]),
	}
	if c.IsRedeemed {
		out.RedemptionCode = fmt.Sprintf("REDEEMED-%d", c.ID)
	}
	return out
}

func (s *Server) handleCouponMint(w http.ResponseWriter, req *RPCRequest) string {
	var params couponMintParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	promoAddr, err := parseAddress("promotion", params.Promotion)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	recipient, err := parseAddress("recipient", params.Recipient)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, c, err := s.node.MintCoupon(promoAddr, recipient)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, couponToJSON(addr.String(), c), nil)
}

func (s *Server) handleCouponTransfer(w http.ResponseWriter, req *RPCRequest) string {
	var params couponTransferParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	couponAddr, err := parseAddress("coupon", params.Coupon)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	newOwner, err := parseAddress("newOwner", params.NewOwner)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	c, err := s.node.TransferCoupon(couponAddr, caller, newOwner)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, couponToJSON(params.Coupon, c), nil)
}

func (s *Server) handleCouponRedeem(w http.ResponseWriter, req *RPCRequest) string {
	var params couponRedeemParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	couponAddr, err := parseAddress("coupon", params.Coupon)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	redeemer, err := parseAddress("redeemer", params.Redeemer)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	merchantAuthority, err := parseAddress("merchantAuthority", params.MerchantAuthority)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	c, err := s.node.RedeemCoupon(couponAddr, redeemer, merchantAuthority)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	return s.writeOutcome(w, req.ID, couponToJSON(params.Coupon, c), nil)
}

func (s *Server) handleCouponGet(w http.ResponseWriter, req *RPCRequest) string {
	var params couponGetParams
	if err := decodeParams(req, &params); err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	addr, err := parseAddress("coupon", params.Coupon)
	if err != nil {
		return s.invalidParams(w, req.ID, err)
	}
	c, ok, err := s.node.Coupon(addr)
	if err != nil {
		return s.writeOutcome(w, req.ID, nil, err)
	}
	if !ok {
		return s.writeOutcome(w, req.ID, nil, coupon.ErrCouponNotFound)
	}
	return s.writeOutcome(w, req.ID, couponToJSON(params.Coupon, c), nil)
}
