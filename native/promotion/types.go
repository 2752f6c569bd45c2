package promotion

import (
	"encoding/binary"

	"agoradeals/crypto"
	"agoradeals/native/geo"
)

const (
	// MaxCategoryLength bounds the promotion category.
	MaxCategoryLength = 30
	// MaxDescriptionLength bounds the promotion description.
	MaxDescriptionLength = 200
)

// Placement carries the geographic variant of a promotion. Promotions without
// a placement are online-only.
type Placement struct {
	Location     geo.Location
	CellID       uint64
	RadiusMeters uint32
}

// Promotion is a merchant-issued discount offer with bounded supply and an
// expiry. CurrentSupply never decreases; minting stops once it reaches
// MaxSupply, the expiry passes or the promotion is deactivated.
type Promotion struct {
	Merchant           crypto.Address
	DiscountPercentage uint8
	MaxSupply          uint32
	CurrentSupply      uint32
	ExpiryTimestamp    int64
	Category           string
	Description        string
	Price              uint64
	IsActive           bool
	CreatedAt          int64
	Placement          *Placement
}

// LocationBased reports whether the promotion carries a placement.
func (p *Promotion) LocationBased() bool {
	return p != nil && p.Placement != nil
}

// Address derives the deterministic promotion address from the merchant
// record address and the merchant's promotion sequence number at creation
// time.
func Address(merchant crypto.Address, seq uint64) crypto.Address {
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	return crypto.DeriveAddress("promotion", merchant.Bytes(), seqBytes[:])
}

// CreateParams bundles the caller-supplied promotion fields.
type CreateParams struct {
	DiscountPercentage uint8
	MaxSupply          uint32
	ExpiryTimestamp    int64
	Category           string
	Description        string
	Price              uint64
	Latitude           *float64
	Longitude          *float64
	RadiusMeters       uint32
}
