package exchange

import (
	"errors"
	"math/big"
	"testing"

	"agoradeals/core/state"
	"agoradeals/crypto"
	"agoradeals/native/coupon"
	"agoradeals/native/marketplace"
	"agoradeals/native/promotion"
	"agoradeals/native/reputation"
	"agoradeals/native/token"
	"agoradeals/storage"
)

const testNow = int64(1_700_000_000)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0] = b
	return a
}

type fixture struct {
	mgr        *state.Manager
	engine     *Engine
	tokens     *token.Registry
	couponAddr crypto.Address
	owner      crypto.Address
}

func fund(t *testing.T, mgr *state.Manager, addr crypto.Address, amount uint64) {
	t.Helper()
	account, err := mgr.GetAccount(addr)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	account.Balance = new(big.Int).SetUint64(amount)
	if err := mgr.PutAccount(addr, account); err != nil {
		t.Fatalf("fund: %v", err)
	}
}

func balance(t *testing.T, mgr *state.Manager, addr crypto.Address) *big.Int {
	t.Helper()
	account, err := mgr.GetAccount(addr)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	return account.Balance
}

// newFixture initialises the marketplace at 250 basis points, registers a
// merchant, creates a promotion and mints one coupon to owner.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	now := func() int64 { return testNow }

	markets := marketplace.NewEngine(mgr)
	markets.SetNowFunc(now)
	if _, err := markets.Initialize(testAddr(1), 250); err != nil {
		t.Fatalf("initialize marketplace: %v", err)
	}
	merchantAuth := testAddr(2)
	if _, err := markets.RegisterMerchant(merchantAuth, "Coffee Shop", "Food", nil, nil); err != nil {
		t.Fatalf("register merchant: %v", err)
	}

	promos := promotion.NewEngine(mgr)
	promos.SetNowFunc(now)
	promoAddr, _, err := promos.Create(merchantAuth, marketplace.MerchantAddress(merchantAuth), promotion.CreateParams{
		DiscountPercentage: 20,
		MaxSupply:          100,
		ExpiryTimestamp:    testNow + 86_400,
		Category:           "Food",
		Description:        "20% off",
		Price:              1_000_000,
	})
	if err != nil {
		t.Fatalf("create promotion: %v", err)
	}

	tokens := token.NewRegistry(mgr)
	rep := reputation.NewEngine(mgr, tokens)
	rep.SetNowFunc(now)
	coupons := coupon.NewEngine(mgr, tokens, rep)
	coupons.SetNowFunc(now)
	owner := testAddr(10)
	couponAddr, _, err := coupons.Mint(promoAddr, owner)
	if err != nil {
		t.Fatalf("mint coupon: %v", err)
	}

	eng := NewEngine(mgr, mgr, tokens)
	eng.SetNowFunc(now)
	return &fixture{
		mgr:        mgr,
		engine:     eng,
		tokens:     tokens,
		couponAddr: couponAddr,
		owner:      owner,
	}
}

func TestListForSale(t *testing.T) {
	fx := newFixture(t)

	if _, _, err := fx.engine.List(fx.couponAddr, fx.owner, 0); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, _, err := fx.engine.List(fx.couponAddr, testAddr(11), 100); !errors.Is(err, coupon.ErrNotCouponOwner) {
		t.Fatalf("expected ErrNotCouponOwner, got %v", err)
	}
	if _, _, err := fx.engine.List(testAddr(99), fx.owner, 100); !errors.Is(err, coupon.ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}

	addr, listing, err := fx.engine.List(fx.couponAddr, fx.owner, 2_000_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if addr != Address(fx.couponAddr) {
		t.Fatalf("listing address not derived from coupon")
	}
	if !listing.IsActive || listing.Price != 2_000_000 || listing.Seller != fx.owner {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// A coupon carries at most one active listing.
	if _, _, err := fx.engine.List(fx.couponAddr, fx.owner, 3_000_000); !errors.Is(err, ErrListingAlreadyActive) {
		t.Fatalf("expected ErrListingAlreadyActive, got %v", err)
	}
}

func TestCancelListing(t *testing.T) {
	fx := newFixture(t)
	addr, _, err := fx.engine.List(fx.couponAddr, fx.owner, 2_000_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := fx.engine.Cancel(addr, testAddr(11)); !errors.Is(err, ErrNotListingSeller) {
		t.Fatalf("expected ErrNotListingSeller, got %v", err)
	}
	listing, err := fx.engine.Cancel(addr, fx.owner)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if listing.IsActive {
		t.Fatalf("listing still active after cancel")
	}
	if _, err := fx.engine.Cancel(addr, fx.owner); !errors.Is(err, ErrListingInactive) {
		t.Fatalf("expected ErrListingInactive, got %v", err)
	}

	// A cancelled slot may be relisted.
	if _, _, err := fx.engine.List(fx.couponAddr, fx.owner, 1_500_000); err != nil {
		t.Fatalf("relist after cancel: %v", err)
	}
}

func TestBuyListing(t *testing.T) {
	fx := newFixture(t)
	buyer := testAddr(20)
	fund(t, fx.mgr, buyer, 5_000_000)

	addr, _, err := fx.engine.List(fx.couponAddr, fx.owner, 2_000_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	listing, c, err := fx.engine.Buy(addr, buyer)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if listing.IsActive {
		t.Fatalf("listing still active after sale")
	}
	if c.Owner != buyer {
		t.Fatalf("coupon owner %x, want buyer", c.Owner)
	}
	if tokOwner, err := fx.tokens.Owner(c.Token); err != nil || tokOwner != buyer {
		t.Fatalf("token owner did not follow: %x err=%v", tokOwner, err)
	}

	// 250 basis points of 2,000,000 is a 50,000 fee and a 1,950,000 payout.
	if got := balance(t, fx.mgr, buyer); got.Cmp(big.NewInt(3_000_000)) != 0 {
		t.Fatalf("buyer balance %s, want 3000000", got)
	}
	if got := balance(t, fx.mgr, fx.owner); got.Cmp(big.NewInt(1_950_000)) != 0 {
		t.Fatalf("seller balance %s, want 1950000", got)
	}
	if got := balance(t, fx.mgr, marketplace.TreasuryAddress()); got.Cmp(big.NewInt(50_000)) != 0 {
		t.Fatalf("treasury balance %s, want 50000", got)
	}

	if _, _, err := fx.engine.Buy(addr, buyer); !errors.Is(err, ErrListingInactive) {
		t.Fatalf("expected ErrListingInactive on second buy, got %v", err)
	}
}

func TestBuyListingInsufficientFunds(t *testing.T) {
	fx := newFixture(t)
	buyer := testAddr(20)
	fund(t, fx.mgr, buyer, 1_999_999)

	addr, _, err := fx.engine.List(fx.couponAddr, fx.owner, 2_000_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, _, err := fx.engine.Buy(addr, buyer); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := balance(t, fx.mgr, buyer); got.Cmp(big.NewInt(1_999_999)) != 0 {
		t.Fatalf("failed buy touched buyer balance: %s", got)
	}
}

func TestBuyListingStaleSeller(t *testing.T) {
	fx := newFixture(t)
	buyer := testAddr(20)
	fund(t, fx.mgr, buyer, 5_000_000)

	addr, _, err := fx.engine.List(fx.couponAddr, fx.owner, 2_000_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// The seller hands the coupon off outside the listing; the stale
	// listing must not settle.
	c, _, err := coupon.Get(fx.mgr, fx.couponAddr)
	if err != nil {
		t.Fatalf("coupon: %v", err)
	}
	c.Owner = testAddr(30)
	if err := coupon.Put(fx.mgr, fx.couponAddr, c); err != nil {
		t.Fatalf("put coupon: %v", err)
	}
	if _, _, err := fx.engine.Buy(addr, buyer); !errors.Is(err, ErrSellerNotOwner) {
		t.Fatalf("expected ErrSellerNotOwner, got %v", err)
	}
}

func TestSplitFee(t *testing.T) {
	cases := []struct {
		price uint64
		bps   uint32
	}{
		{2_000_000, 250},
		{1, 10_000},
		{1, 1},
		{0, 250},
		{^uint64(0), 10_000},
		{999_999_999, 3},
	}
	for _, tc := range cases {
		fee, payout := splitFee(tc.price, tc.bps)
		if fee > tc.price {
			t.Fatalf("price=%d bps=%d: fee %d exceeds price", tc.price, tc.bps, fee)
		}
		if fee+payout != tc.price {
			t.Fatalf("price=%d bps=%d: fee %d + payout %d != price", tc.price, tc.bps, fee, payout)
		}
	}
}

// Exercises the Accounts interface satisfied by the state manager.
var _ Accounts = (*state.Manager)(nil)

// Exercises the event payload helpers without a full engine.
func TestListingSoldEventAttributes(t *testing.T) {
	l := &Listing{Coupon: testAddr(5), Seller: testAddr(6), Price: 100}
	evt := NewListingSoldEvent(testAddr(7), l, testAddr(8), 2, 98)
	if evt.Type != EventTypeListingSold {
		t.Fatalf("unexpected event type %q", evt.Type)
	}
	if evt.Attributes["fee"] != "2" || evt.Attributes["payout"] != "98" {
		t.Fatalf("unexpected attributes: %+v", evt.Attributes)
	}
}
