package marketplace

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/geo"
)

// Engine owns the registry singleton and the merchant directory.
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

// Initialize creates the registry singleton. A second call fails regardless
// of caller.
func (e *Engine) Initialize(authority crypto.Address, feeBasisPoints uint32) (*Registry, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	if feeBasisPoints > MaxFeeBasisPoints {
		return nil, ErrInvalidFee
	}
	if _, ok, err := GetRegistry(e.store); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	reg := &Registry{
		Authority:      authority,
		FeeBasisPoints: feeBasisPoints,
	}
	if err := PutRegistry(e.store, reg); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewMarketplaceInitializedEvent(reg))
	return reg, nil
}

// SetFeeBasisPoints updates the fee policy. Only the registry authority may
// change it and the value stays within [0, 10000].
func (e *Engine) SetFeeBasisPoints(caller crypto.Address, feeBasisPoints uint32) (*Registry, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	if feeBasisPoints > MaxFeeBasisPoints {
		return nil, ErrInvalidFee
	}
	reg, ok, err := GetRegistry(e.store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if reg.Authority != caller {
		return nil, ErrNotAuthority
	}
	reg.FeeBasisPoints = feeBasisPoints
	if err := PutRegistry(e.store, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Registry returns the singleton registry record.
func (e *Engine) Registry() (*Registry, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetRegistry(e.store)
}

// Merchant returns the merchant record for an authority.
func (e *Engine) Merchant(authority crypto.Address) (*Merchant, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetMerchant(e.store, MerchantAddress(authority))
}

// RegisterMerchant creates the merchant record for the calling authority.
// The marketplace must already be initialized; one merchant per authority.
// Coordinates are optional and validated when supplied.
func (e *Engine) RegisterMerchant(authority crypto.Address, name, category string, latitude, longitude *float64) (*Merchant, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if len(category) > MaxCategoryLength {
		return nil, ErrCategoryTooLong
	}
	reg, ok, err := GetRegistry(e.store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if _, exists, err := GetMerchant(e.store, MerchantAddress(authority)); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrMerchantExists
	}

	merchant := &Merchant{
		Authority: authority,
		Name:      name,
		Category:  category,
		IsActive:  true,
		CreatedAt: e.now(),
	}
	if latitude != nil && longitude != nil {
		loc, err := geo.FromCoords(*latitude, *longitude)
		if err != nil {
			return nil, err
		}
		merchant.Location = &loc
	}
	if err := PutMerchant(e.store, merchant); err != nil {
		return nil, err
	}
	reg.TotalMerchants++
	if err := PutRegistry(e.store, reg); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewMerchantRegisteredEvent(merchant))
	return merchant, nil
}
