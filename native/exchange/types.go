package exchange

import (
	"agoradeals/crypto"
)

// Listing is an active offer to resell one coupon at a fixed price. Listings
// are keyed per coupon, so a coupon carries at most one listing record; the
// record is deactivated on cancel or sale, never deleted, and a later list
// call reactivates the same slot.
type Listing struct {
	Coupon    crypto.Address
	Seller    crypto.Address
	Price     uint64
	IsActive  bool
	CreatedAt int64
}

// Address derives the deterministic listing address for a coupon.
func Address(coupon crypto.Address) crypto.Address {
	return crypto.DeriveAddress("listing", coupon.Bytes())
}
