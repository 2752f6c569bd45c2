package promotion

import (
	"errors"
	"strings"
	"testing"

	"agoradeals/core/state"
	"agoradeals/crypto"
	"agoradeals/native/geo"
	"agoradeals/native/marketplace"
	"agoradeals/storage"
)

const testNow = int64(1_700_000_000)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0] = b
	return a
}

func newTestEngine(t *testing.T) (*Engine, crypto.Address, crypto.Address) {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	markets := marketplace.NewEngine(mgr)
	markets.SetNowFunc(func() int64 { return testNow })
	if _, err := markets.Initialize(testAddr(1), 250); err != nil {
		t.Fatalf("initialize marketplace: %v", err)
	}
	authority := testAddr(2)
	if _, err := markets.RegisterMerchant(authority, "Coffee Shop", "Food", nil, nil); err != nil {
		t.Fatalf("register merchant: %v", err)
	}
	eng := NewEngine(mgr)
	eng.SetNowFunc(func() int64 { return testNow })
	return eng, authority, marketplace.MerchantAddress(authority)
}

func validParams() CreateParams {
	return CreateParams{
		DiscountPercentage: 20,
		MaxSupply:          100,
		ExpiryTimestamp:    testNow + 86_400,
		Category:           "Food",
		Description:        "20% off any coffee",
		Price:              1_000_000,
	}
}

func TestCreatePromotion(t *testing.T) {
	eng, authority, merchantAddr := newTestEngine(t)

	addr, promo, err := eng.Create(authority, merchantAddr, validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !promo.IsActive || promo.CurrentSupply != 0 || promo.MaxSupply != 100 {
		t.Fatalf("unexpected promotion: %+v", promo)
	}
	if promo.LocationBased() {
		t.Fatalf("promotion without coordinates should be online-only")
	}

	stored, ok, err := eng.Promotion(addr)
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if stored.Description != "20% off any coffee" {
		t.Fatalf("unexpected stored promotion: %+v", stored)
	}

	// Sequence advances: a second promotion gets a distinct address.
	addr2, _, err := eng.Create(authority, merchantAddr, validParams())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if addr == addr2 {
		t.Fatalf("promotion addresses must be distinct")
	}
}

func TestCreatePromotionValidation(t *testing.T) {
	eng, authority, merchantAddr := newTestEngine(t)

	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"zero discount", func(p *CreateParams) { p.DiscountPercentage = 0 }, ErrInvalidDiscount},
		{"discount above 100", func(p *CreateParams) { p.DiscountPercentage = 101 }, ErrInvalidDiscount},
		{"zero supply", func(p *CreateParams) { p.MaxSupply = 0 }, ErrInvalidSupply},
		{"past expiry", func(p *CreateParams) { p.ExpiryTimestamp = testNow - 1 }, ErrInvalidExpiry},
		{"expiry now", func(p *CreateParams) { p.ExpiryTimestamp = testNow }, ErrInvalidExpiry},
		{"category too long", func(p *CreateParams) { p.Category = strings.Repeat("c", MaxCategoryLength+1) }, ErrCategoryTooLong},
		{"description too long", func(p *CreateParams) { p.Description = strings.Repeat("d", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		params := validParams()
		tc.mutate(&params)
		if _, _, err := eng.Create(authority, merchantAddr, params); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestCreatePromotionAuthority(t *testing.T) {
	eng, _, merchantAddr := newTestEngine(t)

	if _, _, err := eng.Create(testAddr(9), merchantAddr, validParams()); !errors.Is(err, ErrNotMerchantAuthority) {
		t.Fatalf("expected ErrNotMerchantAuthority, got %v", err)
	}
	if _, _, err := eng.Create(testAddr(9), testAddr(10), validParams()); !errors.Is(err, marketplace.ErrMerchantNotFound) {
		t.Fatalf("expected ErrMerchantNotFound, got %v", err)
	}
}

func TestCreatePromotionGeoCell(t *testing.T) {
	eng, authority, merchantAddr := newTestEngine(t)

	lat, lon := 40.7128, -74.0060
	params := validParams()
	params.Latitude = &lat
	params.Longitude = &lon
	params.RadiusMeters = 500

	_, promo, err := eng.Create(authority, merchantAddr, params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !promo.LocationBased() {
		t.Fatalf("expected location-based promotion")
	}
	loc, _ := geo.FromCoords(lat, lon)
	cellLat, cellLon := loc.CellCoords()
	wantCell := geo.CellID(cellLat, cellLon)
	if promo.Placement.CellID != wantCell {
		t.Fatalf("cell id %d, want %d", promo.Placement.CellID, wantCell)
	}

	cell, ok, err := eng.Cell(wantCell)
	if err != nil || !ok {
		t.Fatalf("cell lookup: ok=%v err=%v", ok, err)
	}
	if cell.PromotionCount != 1 {
		t.Fatalf("cell count %d, want 1", cell.PromotionCount)
	}

	// A second promotion in the same cell increments the shared counter.
	if _, _, err := eng.Create(authority, merchantAddr, params); err != nil {
		t.Fatalf("create second: %v", err)
	}
	cell, _, err = eng.Cell(wantCell)
	if err != nil {
		t.Fatalf("cell lookup: %v", err)
	}
	if cell.PromotionCount != 2 {
		t.Fatalf("cell count %d, want 2", cell.PromotionCount)
	}
}

func TestCreatePromotionRejectsBadCoordinates(t *testing.T) {
	eng, authority, merchantAddr := newTestEngine(t)

	lat, lon := 95.0, 10.0
	params := validParams()
	params.Latitude = &lat
	params.Longitude = &lon
	if _, _, err := eng.Create(authority, merchantAddr, params); !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}
