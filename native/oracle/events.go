package oracle

import (
	"strconv"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

const (
	// EventTypeConfigInitialized is emitted when the oracle policy is created.
	EventTypeConfigInitialized = "oracle.initialized"
	// EventTypeDealUpdated is emitted on every accepted deal write.
	EventTypeDealUpdated = "deal.updated"
)

// NewConfigInitializedEvent returns the canonical policy event payload.
func NewConfigInitializedEvent(cfg *Config) *types.Event {
	attrs := make(map[string]string)
	if cfg == nil {
		return &types.Event{Type: EventTypeConfigInitialized, Attributes: attrs}
	}
	attrs["authority"] = cfg.Authority.String()
	attrs["minVerificationCount"] = strconv.FormatUint(uint64(cfg.MinVerificationCount), 10)
	attrs["updateInterval"] = strconv.FormatInt(cfg.UpdateInterval, 10)
	return &types.Event{Type: EventTypeConfigInitialized, Attributes: attrs}
}

// NewDealUpdatedEvent returns the canonical deal write event payload.
func NewDealUpdatedEvent(addr crypto.Address, d *ExternalDeal, firstWrite bool) *types.Event {
	attrs := map[string]string{
		"firstWrite": strconv.FormatBool(firstWrite),
	}
	if d == nil {
		return &types.Event{Type: EventTypeDealUpdated, Attributes: attrs}
	}
	attrs["deal"] = addr.String()
	attrs["externalId"] = d.ExternalID
	attrs["source"] = d.Source.String()
	attrs["discountPercentage"] = strconv.FormatUint(uint64(d.DiscountPercentage), 10)
	attrs["verificationCount"] = strconv.FormatUint(uint64(d.VerificationCount), 10)
	attrs["verified"] = strconv.FormatBool(d.IsVerified)
	return &types.Event{Type: EventTypeDealUpdated, Attributes: attrs}
}
