package marketplace

import (
	"agoradeals/crypto"
	"agoradeals/native/geo"
)

const (
	// MaxFeeBasisPoints caps the marketplace fee at 100%.
	MaxFeeBasisPoints = 10_000
	// MaxNameLength bounds merchant names.
	MaxNameLength = 50
	// MaxCategoryLength bounds merchant categories.
	MaxCategoryLength = 30
)

// Registry is the process-wide singleton record of aggregate counters and fee
// policy. It is created exactly once; re-initialisation is rejected.
type Registry struct {
	Authority      crypto.Address
	TotalCoupons   uint64
	TotalMerchants uint64
	FeeBasisPoints uint32
}

// Merchant is a registered merchant identity with aggregate stats. Merchants
// are created once per authority and never deleted.
type Merchant struct {
	Authority            crypto.Address
	Name                 string
	Category             string
	TotalPromotions      uint64
	TotalCouponsCreated  uint64
	TotalCouponsRedeemed uint64
	IsActive             bool
	CreatedAt            int64
	Location             *geo.Location
}

// MerchantAddress derives the deterministic merchant record address for an
// authority. One merchant per authority.
func MerchantAddress(authority crypto.Address) crypto.Address {
	return crypto.DeriveAddress("merchant", authority.Bytes())
}

// TreasuryAddress is the account credited with marketplace fees.
func TreasuryAddress() crypto.Address {
	return crypto.DeriveAddress("marketplace", []byte("treasury"))
}
