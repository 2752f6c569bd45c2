package exchange

import (
	"strconv"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

const (
	// EventTypeListingCreated is emitted when a coupon is offered for sale.
	EventTypeListingCreated = "listing.created"
	// EventTypeListingCancelled is emitted when a seller withdraws a listing.
	EventTypeListingCancelled = "listing.cancelled"
	// EventTypeListingSold is emitted when a listing settles.
	EventTypeListingSold = "listing.sold"
)

// NewListingCreatedEvent returns the canonical listing event payload.
func NewListingCreatedEvent(addr crypto.Address, l *Listing) *types.Event {
	attrs := make(map[string]string)
	if l == nil {
		return &types.Event{Type: EventTypeListingCreated, Attributes: attrs}
	}
	attrs["listing"] = addr.String()
	attrs["coupon"] = l.Coupon.String()
	attrs["seller"] = l.Seller.String()
	attrs["price"] = strconv.FormatUint(l.Price, 10)
	return &types.Event{Type: EventTypeListingCreated, Attributes: attrs}
}

// NewListingCancelledEvent returns the canonical cancellation event payload.
func NewListingCancelledEvent(addr crypto.Address, l *Listing) *types.Event {
	attrs := make(map[string]string)
	if l == nil {
		return &types.Event{Type: EventTypeListingCancelled, Attributes: attrs}
	}
	attrs["listing"] = addr.String()
	attrs["coupon"] = l.Coupon.String()
	attrs["seller"] = l.Seller.String()
	return &types.Event{Type: EventTypeListingCancelled, Attributes: attrs}
}

// NewListingSoldEvent returns the canonical sale event payload.
func NewListingSoldEvent(addr crypto.Address, l *Listing, buyer crypto.Address, fee, payout uint64) *types.Event {
	attrs := make(map[string]string)
	if l == nil {
		return &types.Event{Type: EventTypeListingSold, Attributes: attrs}
	}
	attrs["listing"] = addr.String()
	attrs["coupon"] = l.Coupon.String()
	attrs["seller"] = l.Seller.String()
	attrs["buyer"] = buyer.String()
	attrs["price"] = strconv.FormatUint(l.Price, 10)
	attrs["fee"] = strconv.FormatUint(fee, 10)
	attrs["payout"] = strconv.FormatUint(payout, 10)
	return &types.Event{Type: EventTypeListingSold, Attributes: attrs}
}
