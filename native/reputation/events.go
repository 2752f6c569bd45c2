package reputation

import (
	"encoding/hex"
	"strconv"

	"agoradeals/core/types"
)

const (
	// EventTypeBadgeEarned is emitted when a badge token is issued.
	EventTypeBadgeEarned = "reputation.badgeEarned"
)

// NewBadgeEarnedEvent returns the canonical event payload for a badge
// issuance.
func NewBadgeEarnedEvent(badge *BadgeNFT) *types.Event {
	attrs := make(map[string]string)
	if badge == nil {
		return &types.Event{Type: EventTypeBadgeEarned, Attributes: attrs}
	}
	attrs["user"] = badge.User.String()
	attrs["badgeType"] = badge.BadgeType.String()
	attrs["token"] = hex.EncodeToString(badge.Token[:])
	attrs["metadataUri"] = badge.MetadataURI
	attrs["earnedAt"] = strconv.FormatInt(badge.EarnedAt, 10)
	return &types.Event{Type: EventTypeBadgeEarned, Attributes: attrs}
}
