package promotion

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/geo"
	"agoradeals/native/marketplace"
)

// Engine owns the promotion catalog and the spatial index counters.
type Engine struct {
	store   KV
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine backed by the provided storage backend.
func NewEngine(store KV) *Engine {
	return &Engine{
		store:   store,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the wall clock, primarily for deterministic tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// Promotion returns the promotion stored under addr.
func (e *Engine) Promotion(addr crypto.Address) (*Promotion, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return Get(e.store, addr)
}

// Cell returns the geo cell record for a packed cell identifier.
func (e *Engine) Cell(cellID uint64) (*geo.Cell, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetCell(e.store, cellID)
}

// Create validates and persists a new promotion for the merchant record at
// merchantAddr. The caller must be the merchant's registered authority. When
// coordinates are supplied the promotion is placed into its 0.1° grid cell,
// creating the cell record on first use.
func (e *Engine) Create(authority crypto.Address, merchantAddr crypto.Address, params CreateParams) (crypto.Address, *Promotion, error) {
	if e == nil || e.store == nil {
		return crypto.Address{}, nil, ErrNotInitialised
	}
	if params.DiscountPercentage == 0 || params.DiscountPercentage > 100 {
		return crypto.Address{}, nil, ErrInvalidDiscount
	}
	if params.MaxSupply == 0 {
		return crypto.Address{}, nil, ErrInvalidSupply
	}
	now := e.now()
	if params.ExpiryTimestamp <= now {
		return crypto.Address{}, nil, ErrInvalidExpiry
	}
	if len(params.Category) > MaxCategoryLength {
		return crypto.Address{}, nil, ErrCategoryTooLong
	}
	if len(params.Description) > MaxDescriptionLength {
		return crypto.Address{}, nil, ErrDescriptionTooLong
	}

	merchant, ok, err := marketplace.GetMerchant(e.store, merchantAddr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, marketplace.ErrMerchantNotFound
	}
	if merchant.Authority != authority {
		return crypto.Address{}, nil, ErrNotMerchantAuthority
	}

	promo := &Promotion{
		Merchant:           merchantAddr,
		DiscountPercentage: params.DiscountPercentage,
		MaxSupply:          params.MaxSupply,
		ExpiryTimestamp:    params.ExpiryTimestamp,
		Category:           params.Category,
		Description:        params.Description,
		Price:              params.Price,
		IsActive:           true,
		CreatedAt:          now,
	}
	if params.Latitude != nil && params.Longitude != nil {
		loc, err := geo.FromCoords(*params.Latitude, *params.Longitude)
		if err != nil {
			return crypto.Address{}, nil, err
		}
		cellLat, cellLon := loc.CellCoords()
		promo.Placement = &Placement{
			Location:     loc,
			CellID:       geo.CellID(cellLat, cellLon),
			RadiusMeters: params.RadiusMeters,
		}
		cell, exists, err := GetCell(e.store, promo.Placement.CellID)
		if err != nil {
			return crypto.Address{}, nil, err
		}
		if !exists {
			cell = geo.NewCell(cellLat, cellLon)
		}
		cell.PromotionCount++
		if err := PutCell(e.store, cell); err != nil {
			return crypto.Address{}, nil, err
		}
	}

	addr := Address(merchantAddr, merchant.TotalPromotions)
	if err := Put(e.store, addr, promo); err != nil {
		return crypto.Address{}, nil, err
	}
	merchant.TotalPromotions++
	if err := marketplace.PutMerchant(e.store, merchant); err != nil {
		return crypto.Address{}, nil, err
	}
	e.emitter.Emit(NewPromotionCreatedEvent(addr, promo))
	return addr, promo, nil
}
