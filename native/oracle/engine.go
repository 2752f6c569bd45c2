package oracle

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
)

// DealParams carries one oracle write for an external deal.
type DealParams struct {
	Source          DealSource
	ExternalID      string
	Title           string
	Description     string
	Category        string
	ImageURL        string
	AffiliateURL    string
	OriginalPrice   uint64
	DiscountedPrice uint64
	ExpiryTimestamp int64
}

// Engine ingests third-party deal data under a single configured oracle
// authority. Repeated writes to the same deal count as verifications but are
// throttled by the configured update interval.
type Engine struct {
	store   KV
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine over the provided storage backend.
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

// Config returns the oracle policy singleton, if initialised.
func (e *Engine) Config() (*Config, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetConfig(e.store)
}

// Deal returns the external deal keyed by externalID, if any.
func (e *Engine) Deal(externalID string) (*ExternalDeal, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetDeal(e.store, DealAddress(externalID))
}

// InitializeConfig creates the oracle policy singleton. It can only run once.
func (e *Engine) InitializeConfig(authority crypto.Address, allowedSources []DealSource, minVerificationCount uint32, updateInterval int64) (*Config, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	if _, ok, err := GetConfig(e.store); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrConfigExists
	}
	if len(allowedSources) > MaxAllowedSources {
		return nil, ErrTooManySources
	}
	for _, s := range allowedSources {
		if !s.Valid() {
			return nil, ErrInvalidSource
		}
	}
	if minVerificationCount == 0 {
		return nil, ErrInvalidVerification
	}
	if updateInterval < 0 {
		return nil, ErrInvalidInterval
	}
	cfg := &Config{
		Authority:            authority,
		AllowedSources:       allowedSources,
		MinVerificationCount: minVerificationCount,
		UpdateInterval:       updateInterval,
	}
	if err := PutConfig(e.store, cfg); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewConfigInitializedEvent(cfg))
	return cfg, nil
}

func validateDealParams(params DealParams) error {
	if !params.Source.Valid() {
		return ErrInvalidSource
	}
	if len(params.ExternalID) == 0 || len(params.ExternalID) > MaxExternalIDLength {
		return ErrInvalidExternalID
	}
	if len(params.Title) > MaxTitleLength ||
		len(params.Description) > MaxDescriptionLength ||
		len(params.Category) > MaxCategoryLength ||
		len(params.ImageURL) > MaxURLLength ||
		len(params.AffiliateURL) > MaxURLLength {
		return ErrFieldTooLong
	}
	if params.OriginalPrice == 0 || params.DiscountedPrice > params.OriginalPrice {
		return ErrInvalidDealPrice
	}
	return nil
}

// UpdateDeal writes an external deal record. The first write for an external
// id creates the record with a verification count of one; later writes must
// respect the update interval and add one verification each. The deal flips
// to verified at the configured threshold and stays verified.
func (e *Engine) UpdateDeal(caller crypto.Address, params DealParams) (*ExternalDeal, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	cfg, ok, err := GetConfig(e.store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConfigNotFound
	}
	if cfg.Authority != caller {
		return nil, ErrUnauthorizedOracle
	}
	if err := validateDealParams(params); err != nil {
		return nil, err
	}
	if !cfg.AllowsSource(params.Source) {
		return nil, ErrSourceNotAllowed
	}
	discount := uint8((params.OriginalPrice - params.DiscountedPrice) * 100 / params.OriginalPrice)

	addr := DealAddress(params.ExternalID)
	deal, exists, err := GetDeal(e.store, addr)
	if err != nil {
		return nil, err
	}
	now := e.now()
	firstWrite := !exists
	if exists {
		if now-deal.LastUpdated < cfg.UpdateInterval {
			return nil, ErrUpdateTooFrequent
		}
		deal.VerificationCount++
	} else {
		deal = &ExternalDeal{
			OracleAuthority:   caller,
			ExternalID:        params.ExternalID,
			VerificationCount: 1,
		}
	}
	deal.Source = params.Source
	deal.Title = params.Title
	deal.Description = params.Description
	deal.Category = params.Category
	deal.ImageURL = params.ImageURL
	deal.AffiliateURL = params.AffiliateURL
	deal.OriginalPrice = params.OriginalPrice
	deal.DiscountedPrice = params.DiscountedPrice
	deal.DiscountPercentage = discount
	deal.ExpiryTimestamp = params.ExpiryTimestamp
	deal.LastUpdated = now
	if deal.VerificationCount >= cfg.MinVerificationCount {
		deal.IsVerified = true
	}
	if err := PutDeal(e.store, addr, deal); err != nil {
		return nil, err
	}
	if firstWrite {
		cfg.TotalDealsImported++
		if err := PutConfig(e.store, cfg); err != nil {
			return nil, err
		}
	}
	e.emitter.Emit(NewDealUpdatedEvent(addr, deal, firstWrite))
	return deal, nil
}
