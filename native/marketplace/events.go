package marketplace

import (
	"strconv"

	"agoradeals/core/types"
)

const (
	// EventTypeInitialized is emitted once when the registry is created.
	EventTypeInitialized = "marketplace.initialized"
	// EventTypeMerchantRegistered is emitted when a merchant joins.
	EventTypeMerchantRegistered = "marketplace.merchantRegistered"
)

// NewMarketplaceInitializedEvent returns the registry creation event payload.
func NewMarketplaceInitializedEvent(reg *Registry) *types.Event {
	attrs := make(map[string]string)
	if reg == nil {
		return &types.Event{Type: EventTypeInitialized, Attributes: attrs}
	}
	attrs["authority"] = reg.Authority.String()
	attrs["feeBasisPoints"] = strconv.FormatUint(uint64(reg.FeeBasisPoints), 10)
	return &types.Event{Type: EventTypeInitialized, Attributes: attrs}
}

// NewMerchantRegisteredEvent returns the merchant registration event payload.
func NewMerchantRegisteredEvent(merchant *Merchant) *types.Event {
	attrs := make(map[string]string)
	if merchant == nil {
		return &types.Event{Type: EventTypeMerchantRegistered, Attributes: attrs}
	}
	attrs["merchant"] = MerchantAddress(merchant.Authority).String()
	attrs["authority"] = merchant.Authority.String()
	attrs["name"] = merchant.Name
	attrs["category"] = merchant.Category
	attrs["timestamp"] = strconv.FormatInt(merchant.CreatedAt, 10)
	if merchant.Location != nil {
		lat, lon := merchant.Location.Coords()
		attrs["latitude"] = strconv.FormatFloat(lat, 'f', 6, 64)
		attrs["longitude"] = strconv.FormatFloat(lon, 'f', 6, 64)
	}
	return &types.Event{Type: EventTypeMerchantRegistered, Attributes: attrs}
}
