package marketplace

import (
	"fmt"

	"agoradeals/crypto"
	"agoradeals/native/geo"
)

// KV abstracts the subset of state manager functionality required here.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	registryKey    = []byte("marketplace/registry")
	merchantPrefix = []byte("marketplace/merchant/")
)

func merchantKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", merchantPrefix, addr.Bytes()))
}

type storedRegistry struct {
	Authority      crypto.Address
	TotalCoupons   uint64
	TotalMerchants uint64
	FeeBasisPoints uint32
}

type storedMerchant struct {
	Authority            crypto.Address
	Name                 string
	Category             string
	TotalPromotions      uint64
	TotalCouponsCreated  uint64
	TotalCouponsRedeemed uint64
	IsActive             bool
	CreatedAt            uint64
	HasLocation          bool
	Latitude             uint32
	Longitude            uint32
	RegionCode           uint16
	CountryCode          uint16
	CityHash             uint64
}

// GetRegistry loads the singleton registry record.
func GetRegistry(store KV) (*Registry, bool, error) {
	var stored storedRegistry
	ok, err := store.KVGet(registryKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Registry{
		Authority:      stored.Authority,
		TotalCoupons:   stored.TotalCoupons,
		TotalMerchants: stored.TotalMerchants,
		FeeBasisPoints: stored.FeeBasisPoints,
	}, true, nil
}

// PutRegistry persists the singleton registry record.
func PutRegistry(store KV, reg *Registry) error {
	if reg == nil {
		return fmt.Errorf("marketplace: registry required")
	}
	stored := storedRegistry{
		Authority:      reg.Authority,
		TotalCoupons:   reg.TotalCoupons,
		TotalMerchants: reg.TotalMerchants,
		FeeBasisPoints: reg.FeeBasisPoints,
	}
	return store.KVPut(registryKey, &stored)
}

// GetMerchant loads the merchant record stored under addr.
func GetMerchant(store KV, addr crypto.Address) (*Merchant, bool, error) {
	var stored storedMerchant
	ok, err := store.KVGet(merchantKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	merchant := &Merchant{
		Authority:            stored.Authority,
		Name:                 stored.Name,
		Category:             stored.Category,
		TotalPromotions:      stored.TotalPromotions,
		TotalCouponsCreated:  stored.TotalCouponsCreated,
		TotalCouponsRedeemed: stored.TotalCouponsRedeemed,
		IsActive:             stored.IsActive,
		CreatedAt:            int64(stored.CreatedAt),
	}
	if stored.HasLocation {
		merchant.Location = &geo.Location{
			Latitude:    int32(stored.Latitude),
			Longitude:   int32(stored.Longitude),
			RegionCode:  stored.RegionCode,
			CountryCode: stored.CountryCode,
			CityHash:    stored.CityHash,
		}
	}
	return merchant, true, nil
}

// PutMerchant persists the merchant record under its derived address.
func PutMerchant(store KV, merchant *Merchant) error {
	if merchant == nil {
		return fmt.Errorf("marketplace: merchant required")
	}
	stored := storedMerchant{
		Authority:            merchant.Authority,
		Name:                 merchant.Name,
		Category:             merchant.Category,
		TotalPromotions:      merchant.TotalPromotions,
		TotalCouponsCreated:  merchant.TotalCouponsCreated,
		TotalCouponsRedeemed: merchant.TotalCouponsRedeemed,
		IsActive:             merchant.IsActive,
		CreatedAt:            uint64(merchant.CreatedAt),
	}
	if merchant.Location != nil {
		stored.HasLocation = true
		stored.Latitude = uint32(merchant.Location.Latitude)
		stored.Longitude = uint32(merchant.Location.Longitude)
		stored.RegionCode = merchant.Location.RegionCode
		stored.CountryCode = merchant.Location.CountryCode
		stored.CityHash = merchant.Location.CityHash
	}
	return store.KVPut(merchantKey(MerchantAddress(merchant.Authority)), &stored)
}
