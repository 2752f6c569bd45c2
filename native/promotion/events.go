package promotion

import (
	"strconv"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

const (
	// EventTypePromotionCreated is emitted when a promotion is published.
	EventTypePromotionCreated = "promotion.created"
)

// NewPromotionCreatedEvent returns the canonical promotion creation payload.
func NewPromotionCreatedEvent(addr crypto.Address, promo *Promotion) *types.Event {
	attrs := make(map[string]string)
	if promo == nil {
		return &types.Event{Type: EventTypePromotionCreated, Attributes: attrs}
	}
	attrs["promotion"] = addr.String()
	attrs["merchant"] = promo.Merchant.String()
	attrs["discountPercentage"] = strconv.FormatUint(uint64(promo.DiscountPercentage), 10)
	attrs["maxSupply"] = strconv.FormatUint(uint64(promo.MaxSupply), 10)
	attrs["price"] = strconv.FormatUint(promo.Price, 10)
	attrs["expiryTimestamp"] = strconv.FormatInt(promo.ExpiryTimestamp, 10)
	if promo.Placement != nil {
		lat, lon := promo.Placement.Location.Coords()
		attrs["latitude"] = strconv.FormatFloat(lat, 'f', 6, 64)
		attrs["longitude"] = strconv.FormatFloat(lon, 'f', 6, 64)
		attrs["geoCellId"] = strconv.FormatUint(promo.Placement.CellID, 10)
	}
	return &types.Event{Type: EventTypePromotionCreated, Attributes: attrs}
}
