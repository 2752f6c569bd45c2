package exchange

import (
	"math/big"
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/coupon"
	"agoradeals/native/marketplace"
	"agoradeals/native/token"
)

var feeDenominator = big.NewInt(int64(marketplace.MaxFeeBasisPoints))

// Engine runs the secondary market for coupons. A sale settles the payment
// split, the coupon ownership change and the listing deactivation inside the
// caller's state transition, so either all of them land or none do.
type Engine struct {
	store    KV
	accounts Accounts
	tokens   token.Authority
	emitter  events.Emitter
	nowFn    func() int64
}

// NewEngine constructs an engine backed by the provided collaborators.
func NewEngine(store KV, accounts Accounts, tokens token.Authority) *Engine {
	return &Engine{
		store:    store,
		accounts: accounts,
		tokens:   tokens,
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
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

// Listing returns the listing stored under addr.
func (e *Engine) Listing(addr crypto.Address) (*Listing, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return Get(e.store, addr)
}

// List offers a coupon for sale. The seller must own the coupon, the coupon
// must be live and the price positive. A coupon with an active listing cannot
// be listed again; a cancelled or sold slot is reactivated in place.
func (e *Engine) List(couponAddr crypto.Address, seller crypto.Address, price uint64) (crypto.Address, *Listing, error) {
	if e == nil || e.store == nil {
		return crypto.Address{}, nil, ErrNotInitialised
	}
	if price == 0 {
		return crypto.Address{}, nil, ErrInvalidPrice
	}
	c, ok, err := coupon.Get(e.store, couponAddr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, coupon.ErrCouponNotFound
	}
	now := e.now()
	if c.IsRedeemed {
		return crypto.Address{}, nil, coupon.ErrCouponAlreadyRedeemed
	}
	if c.Expired(now) {
		return crypto.Address{}, nil, coupon.ErrCouponExpired
	}
	if c.Owner != seller {
		return crypto.Address{}, nil, coupon.ErrNotCouponOwner
	}

	addr := Address(couponAddr)
	existing, ok, err := Get(e.store, addr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if ok && existing.IsActive {
		return crypto.Address{}, nil, ErrListingAlreadyActive
	}
	listing := &Listing{
		Coupon:    couponAddr,
		Seller:    seller,
		Price:     price,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := Put(e.store, addr, listing); err != nil {
		return crypto.Address{}, nil, err
	}
	e.emitter.Emit(NewListingCreatedEvent(addr, listing))
	return addr, listing, nil
}

// Cancel deactivates a listing. Only the seller may cancel, and only while
// the listing is active.
func (e *Engine) Cancel(listingAddr crypto.Address, caller crypto.Address) (*Listing, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	listing, ok, err := Get(e.store, listingAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrListingNotFound
	}
	if !listing.IsActive {
		return nil, ErrListingInactive
	}
	if listing.Seller != caller {
		return nil, ErrNotListingSeller
	}
	listing.IsActive = false
	if err := Put(e.store, listingAddr, listing); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewListingCancelledEvent(listingAddr, listing))
	return listing, nil
}

// splitFee returns the marketplace cut and the seller payout for a sale
// price. Basis points are bounded by the registry, so fee never exceeds
// price and fee+payout always reconstructs it.
func splitFee(price uint64, feeBasisPoints uint32) (fee, payout uint64) {
	f := new(big.Int).SetUint64(price)
	f.Mul(f, big.NewInt(int64(feeBasisPoints)))
	f.Div(f, feeDenominator)
	fee = f.Uint64()
	return fee, price - fee
}

// Buy settles an active listing: the buyer pays the listed price, the
// marketplace fee goes to the treasury, the remainder to the seller, the
// coupon and its backing token move to the buyer and the listing deactivates.
func (e *Engine) Buy(listingAddr crypto.Address, buyer crypto.Address) (*Listing, *coupon.Coupon, error) {
	if e == nil || e.store == nil || e.accounts == nil || e.tokens == nil {
		return nil, nil, ErrNotInitialised
	}
	listing, ok, err := Get(e.store, listingAddr)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrListingNotFound
	}
	if !listing.IsActive {
		return nil, nil, ErrListingInactive
	}
	c, ok, err := coupon.Get(e.store, listing.Coupon)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, coupon.ErrCouponNotFound
	}
	now := e.now()
	if c.IsRedeemed {
		return nil, nil, coupon.ErrCouponAlreadyRedeemed
	}
	if c.Expired(now) {
		return nil, nil, coupon.ErrCouponExpired
	}
	if c.Owner != listing.Seller {
		return nil, nil, ErrSellerNotOwner
	}
	registry, ok, err := marketplace.GetRegistry(e.store)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, marketplace.ErrNotInitialized
	}

	price := new(big.Int).SetUint64(listing.Price)
	buyerAcc, err := e.accounts.GetAccount(buyer)
	if err != nil {
		return nil, nil, err
	}
	if buyerAcc.Balance.Cmp(price) < 0 {
		return nil, nil, ErrInsufficientFunds
	}
	fee, payout := splitFee(listing.Price, registry.FeeBasisPoints)

	buyerAcc.Balance = new(big.Int).Sub(buyerAcc.Balance, price)
	if err := e.accounts.PutAccount(buyer, buyerAcc); err != nil {
		return nil, nil, err
	}
	sellerAcc, err := e.accounts.GetAccount(listing.Seller)
	if err != nil {
		return nil, nil, err
	}
	sellerAcc.Balance = new(big.Int).Add(sellerAcc.Balance, new(big.Int).SetUint64(payout))
	if err := e.accounts.PutAccount(listing.Seller, sellerAcc); err != nil {
		return nil, nil, err
	}
	treasuryAcc, err := e.accounts.GetAccount(marketplace.TreasuryAddress())
	if err != nil {
		return nil, nil, err
	}
	treasuryAcc.Balance = new(big.Int).Add(treasuryAcc.Balance, new(big.Int).SetUint64(fee))
	if err := e.accounts.PutAccount(marketplace.TreasuryAddress(), treasuryAcc); err != nil {
		return nil, nil, err
	}

	c.Owner = buyer
	if err := coupon.Put(e.store, listing.Coupon, c); err != nil {
		return nil, nil, err
	}
	if err := e.tokens.Transfer(c.Token, buyer); err != nil {
		return nil, nil, err
	}
	listing.IsActive = false
	if err := Put(e.store, listingAddr, listing); err != nil {
		return nil, nil, err
	}
	e.emitter.Emit(NewListingSoldEvent(listingAddr, listing, buyer, fee, payout))
	return listing, c, nil
}
