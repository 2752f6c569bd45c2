package oracle

import (
	"agoradeals/crypto"
)

// DealSource identifies the third-party feed a deal originates from.
type DealSource uint8

const (
	SourceSkyscanner DealSource = iota
	SourceBookingCom
	SourceShopify
	SourceAmazon
	SourceCustom
)

// Valid reports whether the source is a known feed.
func (s DealSource) Valid() bool {
	return s <= SourceCustom
}

func (s DealSource) String() string {
	switch s {
	case SourceSkyscanner:
		return "skyscanner"
	case SourceBookingCom:
		return "booking.com"
	case SourceShopify:
		return "shopify"
	case SourceAmazon:
		return "amazon"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

const (
	// MaxExternalIDLength bounds the deal's upstream identifier.
	MaxExternalIDLength = 100
	// MaxTitleLength bounds the deal title.
	MaxTitleLength = 100
	// MaxDescriptionLength bounds the deal description.
	MaxDescriptionLength = 500
	// MaxCategoryLength bounds the deal category.
	MaxCategoryLength = 30
	// MaxURLLength bounds image and affiliate URLs.
	MaxURLLength = 200
	// MaxAllowedSources bounds the configured source allow-list.
	MaxAllowedSources = 10
)

// Config is the singleton oracle policy record: which authority may write,
// which sources it may write, how often a deal may be refreshed and how many
// confirmations mark it verified.
type Config struct {
	Authority            crypto.Address
	AllowedSources       []DealSource
	MinVerificationCount uint32
	UpdateInterval       int64
	TotalDealsImported   uint64
}

// AllowsSource reports whether the config permits writes from a source.
func (c *Config) AllowsSource(source DealSource) bool {
	if c == nil {
		return false
	}
	for _, s := range c.AllowedSources {
		if s == source {
			return true
		}
	}
	return false
}

// ExternalDeal is a third-party deal record keyed by its upstream identifier.
// Each accepted write counts as one verification; the deal flips to verified
// once the count reaches the configured threshold and never flips back.
type ExternalDeal struct {
	OracleAuthority    crypto.Address
	Source             DealSource
	ExternalID         string
	Title              string
	Description        string
	Category           string
	ImageURL           string
	AffiliateURL       string
	OriginalPrice      uint64
	DiscountedPrice    uint64
	DiscountPercentage uint8
	ExpiryTimestamp    int64
	LastUpdated        int64
	IsVerified         bool
	VerificationCount  uint32
}

// DealAddress derives the deterministic record address for an external deal.
func DealAddress(externalID string) crypto.Address {
	return crypto.DeriveAddress("external-deal", []byte(externalID))
}
