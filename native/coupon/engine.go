package coupon

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/marketplace"
	"agoradeals/native/promotion"
	"agoradeals/native/token"
)

// rewards is the slice of the reputation engine the coupon lifecycle feeds.
type rewards interface {
	AwardPurchase(user crypto.Address) error
	AwardRedemption(user crypto.Address) error
}

// Engine governs the coupon lifecycle: minting against promotion supply,
// ownership transfer and redemption. Every operation runs inside the
// caller's state transition, so cross-record updates commit or fail as one.
type Engine struct {
	store   KV
	tokens  token.Authority
	rewards rewards
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine backed by the provided collaborators.
func NewEngine(store KV, tokens token.Authority, rewards rewards) *Engine {
	return &Engine{
		store:   store,
		tokens:  tokens,
		rewards: rewards,
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

// Coupon returns the coupon stored under addr.
func (e *Engine) Coupon(addr crypto.Address) (*Coupon, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return Get(e.store, addr)
}

// Mint creates a coupon against the promotion's supply and mints its backing
// token to the recipient. Guards are checked in fixed priority order:
// inactive, exhausted, expired. On success the promotion supply, the
// merchant's created counter, the marketplace total and the recipient's
// reputation all advance.
func (e *Engine) Mint(promotionAddr crypto.Address, recipient crypto.Address) (crypto.Address, *Coupon, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return crypto.Address{}, nil, ErrNotInitialised
	}
	promo, ok, err := promotion.Get(e.store, promotionAddr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, promotion.ErrPromotionNotFound
	}
	if !promo.IsActive {
		return crypto.Address{}, nil, ErrPromotionInactive
	}
	if promo.CurrentSupply >= promo.MaxSupply {
		return crypto.Address{}, nil, ErrSupplyExhausted
	}
	now := e.now()
	if promo.ExpiryTimestamp <= now {
		return crypto.Address{}, nil, ErrPromotionExpired
	}

	merchant, ok, err := marketplace.GetMerchant(e.store, promo.Merchant)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, marketplace.ErrMerchantNotFound
	}
	registry, ok, err := marketplace.GetRegistry(e.store)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, marketplace.ErrNotInitialized
	}

	tokenID, err := e.tokens.MintUnique(recipient)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	seq := uint64(promo.CurrentSupply)
	c := &Coupon{
		ID:                 seq,
		Promotion:          promotionAddr,
		Owner:              recipient,
		Merchant:           promo.Merchant,
		DiscountPercentage: promo.DiscountPercentage,
		ExpiryTimestamp:    promo.ExpiryTimestamp,
		CreatedAt:          now,
		Token:              tokenID,
	}
	addr := Address(promotionAddr, seq)
	if err := Put(e.store, addr, c); err != nil {
		return crypto.Address{}, nil, err
	}

	promo.CurrentSupply++
	if err := promotion.Put(e.store, promotionAddr, promo); err != nil {
		return crypto.Address{}, nil, err
	}
	merchant.TotalCouponsCreated++
	if err := marketplace.PutMerchant(e.store, merchant); err != nil {
		return crypto.Address{}, nil, err
	}
	registry.TotalCoupons++
	if err := marketplace.PutRegistry(e.store, registry); err != nil {
		return crypto.Address{}, nil, err
	}
	if e.rewards != nil {
		if err := e.rewards.AwardPurchase(recipient); err != nil {
			return crypto.Address{}, nil, err
		}
	}
	e.emitter.Emit(NewCouponMintedEvent(addr, c))
	return addr, c, nil
}

// Transfer reassigns coupon ownership. The caller must be the current owner
// and the coupon must not be redeemed; the backing token moves in the same
// step.
func (e *Engine) Transfer(couponAddr crypto.Address, caller, newOwner crypto.Address) (*Coupon, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrNotInitialised
	}
	c, ok, err := Get(e.store, couponAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCouponNotFound
	}
	if c.IsRedeemed {
		return nil, ErrCouponAlreadyRedeemed
	}
	if c.Owner != caller {
		return nil, ErrNotCouponOwner
	}
	previous := c.Owner
	c.Owner = newOwner
	if err := Put(e.store, couponAddr, c); err != nil {
		return nil, err
	}
	if err := e.tokens.Transfer(c.Token, newOwner); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewCouponTransferredEvent(couponAddr, previous, newOwner))
	return c, nil
}

// Redeem marks the coupon redeemed at the merchant's point of sale. Both the
// owner and the merchant authority must consent; a user cannot self-redeem
// without the merchant counter-signature. Redemption burns the backing token
// and is irreversible.
func (e *Engine) Redeem(couponAddr crypto.Address, redeemer, merchantAuthority crypto.Address) (*Coupon, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrNotInitialised
	}
	c, ok, err := Get(e.store, couponAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCouponNotFound
	}
	now := e.now()
	if c.IsRedeemed {
		return nil, ErrCouponAlreadyRedeemed
	}
	if c.Expired(now) {
		return nil, ErrCouponExpired
	}
	if c.Owner != redeemer {
		return nil, ErrNotCouponOwner
	}
	merchant, ok, err := marketplace.GetMerchant(e.store, c.Merchant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, marketplace.ErrMerchantNotFound
	}
	if merchant.Authority != merchantAuthority {
		if marketplace.MerchantAddress(merchantAuthority) != c.Merchant {
			return nil, ErrWrongMerchant
		}
		return nil, ErrNotMerchantAuthority
	}

	c.IsRedeemed = true
	c.RedeemedAt = now
	if err := Put(e.store, couponAddr, c); err != nil {
		return nil, err
	}
	merchant.TotalCouponsRedeemed++
	if err := marketplace.PutMerchant(e.store, merchant); err != nil {
		return nil, err
	}
	if err := e.tokens.Burn(c.Token); err != nil {
		return nil, err
	}
	if e.rewards != nil {
		if err := e.rewards.AwardRedemption(redeemer); err != nil {
			return nil, err
		}
	}
	e.emitter.Emit(NewCouponRedeemedEvent(couponAddr, c))
	return c, nil
}
