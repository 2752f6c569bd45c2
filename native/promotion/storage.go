package promotion

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
	promotionPrefix = []byte("promotion/record/")
	geoCellPrefix   = []byte("promotion/geocell/")
)

func promotionKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", promotionPrefix, addr.Bytes()))
}

func geoCellKey(cellID uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", geoCellPrefix, cellID))
}

type storedPromotion struct {
	Merchant           crypto.Address
	DiscountPercentage uint8
	MaxSupply          uint32
	CurrentSupply      uint32
	ExpiryTimestamp    uint64
	Category           string
	Description        string
	Price              uint64
	IsActive           bool
	CreatedAt          uint64
	IsLocationBased    bool
	Latitude           uint32
	Longitude          uint32
	RegionCode         uint16
	CountryCode        uint16
	CityHash           uint64
	GeoCellID          uint64
	RadiusMeters       uint32
}

type storedGeoCell struct {
	CellID         uint64
	MinLatitude    uint32
	MaxLatitude    uint32
	MinLongitude   uint32
	MaxLongitude   uint32
	PromotionCount uint32
}

// Get loads the promotion stored under addr.
func Get(store KV, addr crypto.Address) (*Promotion, bool, error) {
	var stored storedPromotion
	ok, err := store.KVGet(promotionKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	promo := &Promotion{
		Merchant:           stored.Merchant,
		DiscountPercentage: stored.DiscountPercentage,
		MaxSupply:          stored.MaxSupply,
		CurrentSupply:      stored.CurrentSupply,
		ExpiryTimestamp:    int64(stored.ExpiryTimestamp),
		Category:           stored.Category,
		Description:        stored.Description,
		Price:              stored.Price,
		IsActive:           stored.IsActive,
		CreatedAt:          int64(stored.CreatedAt),
	}
	if stored.IsLocationBased {
		promo.Placement = &Placement{
			Location: geo.Location{
				Latitude:    int32(stored.Latitude),
				Longitude:   int32(stored.Longitude),
				RegionCode:  stored.RegionCode,
				CountryCode: stored.CountryCode,
				CityHash:    stored.CityHash,
			},
			CellID:       stored.GeoCellID,
			RadiusMeters: stored.RadiusMeters,
		}
	}
	return promo, true, nil
}

// Put persists the promotion under addr.
func Put(store KV, addr crypto.Address, promo *Promotion) error {
	if promo == nil {
		return fmt.Errorf("promotion: record required")
	}
	stored := storedPromotion{
		Merchant:           promo.Merchant,
		DiscountPercentage: promo.DiscountPercentage,
		MaxSupply:          promo.MaxSupply,
		CurrentSupply:      promo.CurrentSupply,
		ExpiryTimestamp:    uint64(promo.ExpiryTimestamp),
		Category:           promo.Category,
		Description:        promo.Description,
		Price:              promo.Price,
		IsActive:           promo.IsActive,
		CreatedAt:          uint64(promo.CreatedAt),
	}
	if promo.Placement != nil {
		stored.IsLocationBased = true
		stored.Latitude = uint32(promo.Placement.Location.Latitude)
		stored.Longitude = uint32(promo.Placement.Location.Longitude)
		stored.RegionCode = promo.Placement.Location.RegionCode
		stored.CountryCode = promo.Placement.Location.CountryCode
		stored.CityHash = promo.Placement.Location.CityHash
		stored.GeoCellID = promo.Placement.CellID
		stored.RadiusMeters = promo.Placement.RadiusMeters
	}
	return store.KVPut(promotionKey(addr), &stored)
}

// GetCell loads a geo cell record by packed identifier.
func GetCell(store KV, cellID uint64) (*geo.Cell, bool, error) {
	var stored storedGeoCell
	ok, err := store.KVGet(geoCellKey(cellID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &geo.Cell{
		CellID:         stored.CellID,
		MinLatitude:    int32(stored.MinLatitude),
		MaxLatitude:    int32(stored.MaxLatitude),
		MinLongitude:   int32(stored.MinLongitude),
		MaxLongitude:   int32(stored.MaxLongitude),
		PromotionCount: stored.PromotionCount,
	}, true, nil
}

// PutCell persists a geo cell record.
func PutCell(store KV, cell *geo.Cell) error {
	if cell == nil {
		return fmt.Errorf("promotion: cell required")
	}
	stored := storedGeoCell{
		CellID:         cell.CellID,
		MinLatitude:    uint32(cell.MinLatitude),
		MaxLatitude:    uint32(cell.MaxLatitude),
		MinLongitude:   uint32(cell.MinLongitude),
		MaxLongitude:   uint32(cell.MaxLongitude),
		PromotionCount: cell.PromotionCount,
	}
	return store.KVPut(geoCellKey(cell.CellID), &stored)
}
