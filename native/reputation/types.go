package reputation

import (
	"fmt"

	"agoradeals/crypto"
	"agoradeals/native/token"
)

// Points awarded per qualifying action. Scores only ever increase.
const (
	PointsPerPurchase   = 10
	PointsPerRedemption = 20
	PointsPerRating     = 5
	PointsPerComment    = 2
)

// MaxBadges bounds the badge set carried on a reputation record.
const MaxBadges = 10

// Tier is the rank derived from the cumulative reputation score. It is
// recomputed whenever the score changes and never mutated independently.
type Tier uint8

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
)

// TierForScore maps a score onto its tier using fixed, non-overlapping
// breakpoints.
func TierForScore(score uint64) Tier {
	switch {
	case score >= 5000:
		return TierDiamond
	case score >= 2000:
		return TierPlatinum
	case score >= 500:
		return TierGold
	case score >= 100:
		return TierSilver
	default:
		return TierBronze
	}
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	case TierDiamond:
		return "diamond"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// BadgeType enumerates the one-time achievements a user can earn.
type BadgeType uint8

const (
	BadgeFirstPurchase BadgeType = iota
	BadgeTenRedemptions
	BadgeFiftyRedemptions
	BadgeTopReviewer
	BadgeEarlyAdopter
	BadgeMerchantPartner
	BadgeCommunityModerator
)

// Valid reports whether the badge type is within the supported range.
func (b BadgeType) Valid() bool {
	return b <= BadgeCommunityModerator
}

func (b BadgeType) String() string {
	switch b {
	case BadgeFirstPurchase:
		return "firstPurchase"
	case BadgeTenRedemptions:
		return "tenRedemptions"
	case BadgeFiftyRedemptions:
		return "fiftyRedemptions"
	case BadgeTopReviewer:
		return "topReviewer"
	case BadgeEarlyAdopter:
		return "earlyAdopter"
	case BadgeMerchantPartner:
		return "merchantPartner"
	case BadgeCommunityModerator:
		return "communityModerator"
	default:
		return fmt.Sprintf("badge(%d)", uint8(b))
	}
}

// DisplayName is the human-readable title attached to the badge token.
func (b BadgeType) DisplayName() string {
	switch b {
	case BadgeFirstPurchase:
		return "First Purchase Badge"
	case BadgeTenRedemptions:
		return "10 Redemptions Badge"
	case BadgeFiftyRedemptions:
		return "50 Redemptions Badge"
	case BadgeTopReviewer:
		return "Top Reviewer Badge"
	default:
		return "Achievement Badge"
	}
}

// MetadataURI points at the pre-published badge artwork for the type.
func (b BadgeType) MetadataURI() string {
	return fmt.Sprintf("https://cdn.agoradeals.example/badges/badge_%d.json", uint8(b))
}

// UserReputation tracks per-user activity counters, the monotonic score, the
// derived tier and the earned badge set.
type UserReputation struct {
	User              crypto.Address
	TotalPurchases    uint32
	TotalRedemptions  uint32
	TotalRatingsGiven uint32
	TotalComments     uint32
	ReputationScore   uint64
	Tier              Tier
	BadgesEarned      []BadgeType
	JoinedAt          int64
}

// HasBadge reports whether the badge type was already earned.
func (u *UserReputation) HasBadge(b BadgeType) bool {
	if u == nil {
		return false
	}
	for _, earned := range u.BadgesEarned {
		if earned == b {
			return true
		}
	}
	return false
}

// Eligible is the pure predicate deciding whether the current counters earn
// the badge type. Badge types without an activity predicate (EarlyAdopter,
// MerchantPartner, CommunityModerator are granted out of band) are never
// eligible here.
func (u *UserReputation) Eligible(b BadgeType) bool {
	if u == nil {
		return false
	}
	switch b {
	case BadgeFirstPurchase:
		return u.TotalPurchases >= 1
	case BadgeTenRedemptions:
		return u.TotalRedemptions >= 10
	case BadgeFiftyRedemptions:
		return u.TotalRedemptions >= 50
	case BadgeTopReviewer:
		return u.TotalRatingsGiven >= 50
	default:
		return false
	}
}

// BadgeNFT records a one-time, irreversible badge issuance tied to a unique
// external token.
type BadgeNFT struct {
	User        crypto.Address
	BadgeType   BadgeType
	Token       token.ID
	MetadataURI string
	EarnedAt    int64
}

// BadgeAddress derives the deterministic address of the badge record for a
// (user, badge type) pair.
func BadgeAddress(user crypto.Address, badge BadgeType) crypto.Address {
	return crypto.DeriveAddress("badge", user.Bytes(), []byte{byte(badge)})
}
