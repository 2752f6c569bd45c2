package coupon

import (
	"fmt"
	"strconv"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

const (
	// EventTypeCouponMinted is emitted when a coupon is minted.
	EventTypeCouponMinted = "coupon.minted"
	// EventTypeCouponTransferred is emitted when ownership changes hands.
	EventTypeCouponTransferred = "coupon.transferred"
	// EventTypeCouponRedeemed is emitted when a coupon is redeemed.
	EventTypeCouponRedeemed = "coupon.redeemed"
)

// NewCouponMintedEvent returns the canonical mint event payload.
func NewCouponMintedEvent(addr crypto.Address, c *Coupon) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: EventTypeCouponMinted, Attributes: attrs}
	}
	attrs["coupon"] = addr.String()
	attrs["couponId"] = strconv.FormatUint(c.ID, 10)
	attrs["promotion"] = c.Promotion.String()
	attrs["owner"] = c.Owner.String()
	attrs["merchant"] = c.Merchant.String()
	attrs["discountPercentage"] = strconv.FormatUint(uint64(c.DiscountPercentage), 10)
	attrs["expiryTimestamp"] = strconv.FormatInt(c.ExpiryTimestamp, 10)
	return &types.Event{Type: EventTypeCouponMinted, Attributes: attrs}
}

// NewCouponTransferredEvent returns the canonical transfer event payload.
func NewCouponTransferredEvent(addr crypto.Address, from, to crypto.Address) *types.Event {
	return &types.Event{
		Type: EventTypeCouponTransferred,
		Attributes: map[string]string{
			"coupon": addr.String(),
			"from":   from.String(),
			"to":     to.String(),
		},
	}
}

// NewCouponRedeemedEvent returns the canonical redemption event payload.
func NewCouponRedeemedEvent(addr crypto.Address, c *Coupon) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: EventTypeCouponRedeemed, Attributes: attrs}
	}
	attrs["coupon"] = addr.String()
	attrs["owner"] = c.Owner.String()
	attrs["merchant"] = c.Merchant.String()
	attrs["discountPercentage"] = strconv.FormatUint(uint64(c.DiscountPercentage), 10)
	attrs["redemptionCode"] = fmt.Sprintf("REDEEMED-%d", c.ID)
	attrs["timestamp"] = strconv.FormatInt(c.RedeemedAt, 10)
	return &types.Event{Type: EventTypeCouponRedeemed, Attributes: attrs}
}
