package social

import (
	"errors"
	"strings"
	"testing"

	"agoradeals/core/state"
	"agoradeals/crypto"
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
	mgr          *state.Manager
	engine       *Engine
	reputation   *reputation.Engine
	merchantAuth crypto.Address
	promoAddr    crypto.Address
}

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

	rep := reputation.NewEngine(mgr, token.NewRegistry(mgr))
	rep.SetNowFunc(now)
	eng := NewEngine(mgr, rep)
	eng.SetNowFunc(now)
	return &fixture{
		mgr:          mgr,
		engine:       eng,
		reputation:   rep,
		merchantAuth: merchantAuth,
		promoAddr:    promoAddr,
	}
}

func TestAddComment(t *testing.T) {
	fx := newFixture(t)
	author := testAddr(10)

	if _, _, err := fx.engine.AddComment(fx.promoAddr, author, "", crypto.Address{}); !errors.Is(err, ErrInvalidComment) {
		t.Fatalf("expected ErrInvalidComment for empty content, got %v", err)
	}
	long := strings.Repeat("x", MaxCommentLength+1)
	if _, _, err := fx.engine.AddComment(fx.promoAddr, author, long, crypto.Address{}); !errors.Is(err, ErrInvalidComment) {
		t.Fatalf("expected ErrInvalidComment for long content, got %v", err)
	}
	if _, _, err := fx.engine.AddComment(testAddr(99), author, "great deal", crypto.Address{}); !errors.Is(err, promotion.ErrPromotionNotFound) {
		t.Fatalf("expected ErrPromotionNotFound, got %v", err)
	}

	addr, c, err := fx.engine.AddComment(fx.promoAddr, author, "great deal", crypto.Address{})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c.ID != 0 || c.IsMerchantReply || !c.Parent.IsZero() {
		t.Fatalf("unexpected comment: %+v", c)
	}
	if addr != CommentAddress(fx.promoAddr, 0) {
		t.Fatalf("unexpected comment address")
	}
	rep, ok, err := fx.reputation.Reputation(author)
	if err != nil || !ok {
		t.Fatalf("reputation: ok=%v err=%v", ok, err)
	}
	if rep.TotalComments != 1 || rep.ReputationScore != reputation.PointsPerComment {
		t.Fatalf("comment not credited: %+v", rep)
	}

	// Maximum-length content is accepted.
	if _, _, err := fx.engine.AddComment(fx.promoAddr, author, strings.Repeat("x", MaxCommentLength), crypto.Address{}); err != nil {
		t.Fatalf("max-length comment: %v", err)
	}
}

func TestAddCommentMerchantReply(t *testing.T) {
	fx := newFixture(t)
	author := testAddr(10)

	parentAddr, _, err := fx.engine.AddComment(fx.promoAddr, author, "is this still valid?", crypto.Address{})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if _, _, err := fx.engine.AddComment(fx.promoAddr, fx.merchantAuth, "yes!", testAddr(77)); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
	_, reply, err := fx.engine.AddComment(fx.promoAddr, fx.merchantAuth, "yes!", parentAddr)
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if !reply.IsMerchantReply {
		t.Fatalf("merchant reply not flagged")
	}
	if reply.Parent != parentAddr || reply.ID != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestLikeComment(t *testing.T) {
	fx := newFixture(t)
	addr, _, err := fx.engine.AddComment(fx.promoAddr, testAddr(10), "great deal", crypto.Address{})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if _, err := fx.engine.LikeComment(testAddr(99), testAddr(11)); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := fx.engine.LikeComment(addr, testAddr(11)); err != nil {
			t.Fatalf("like %d: %v", i, err)
		}
	}
	c, ok, err := fx.engine.Comment(addr)
	if err != nil || !ok {
		t.Fatalf("comment: ok=%v err=%v", ok, err)
	}
	if c.Likes != 3 {
		t.Fatalf("likes %d, want 3", c.Likes)
	}
}

func TestRatePromotion(t *testing.T) {
	fx := newFixture(t)
	user := testAddr(10)

	if _, _, err := fx.engine.Rate(fx.promoAddr, user, 0); !errors.Is(err, ErrInvalidStars) {
		t.Fatalf("expected ErrInvalidStars for 0, got %v", err)
	}
	if _, _, err := fx.engine.Rate(fx.promoAddr, user, 6); !errors.Is(err, ErrInvalidStars) {
		t.Fatalf("expected ErrInvalidStars for 6, got %v", err)
	}

	rating, stats, err := fx.engine.Rate(fx.promoAddr, user, 4)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rating.Stars != 4 || rating.CreatedAt != testNow {
		t.Fatalf("unexpected rating: %+v", rating)
	}
	if stats.TotalRatings != 1 || stats.SumStars != 4 || stats.AverageRating != 400 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Distribution[3] != 1 {
		t.Fatalf("distribution bucket not updated: %+v", stats.Distribution)
	}
	rep, _, err := fx.reputation.Reputation(user)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.TotalRatingsGiven != 1 {
		t.Fatalf("rating not credited: %+v", rep)
	}
}

func TestReRateReplacesContribution(t *testing.T) {
	fx := newFixture(t)
	user := testAddr(10)

	if _, _, err := fx.engine.Rate(fx.promoAddr, user, 4); err != nil {
		t.Fatalf("rate: %v", err)
	}
	fx.engine.SetNowFunc(func() int64 { return testNow + 100 })
	rating, stats, err := fx.engine.Rate(fx.promoAddr, user, 2)
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if rating.Stars != 2 || rating.CreatedAt != testNow || rating.UpdatedAt != testNow+100 {
		t.Fatalf("unexpected rating: %+v", rating)
	}
	if stats.TotalRatings != 1 || stats.SumStars != 2 || stats.AverageRating != 200 {
		t.Fatalf("old contribution not removed: %+v", stats)
	}
	if stats.Distribution[3] != 0 || stats.Distribution[1] != 1 {
		t.Fatalf("distribution not delta-corrected: %+v", stats.Distribution)
	}

	// Re-rating earns no additional reputation.
	rep, _, err := fx.reputation.Reputation(user)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.TotalRatingsGiven != 1 {
		t.Fatalf("re-rate credited reputation: %+v", rep)
	}
}

func TestRatingAggregateInvariants(t *testing.T) {
	fx := newFixture(t)

	// Several users rate, some re-rate; the aggregate must track exactly
	// one contribution per user.
	steps := []struct {
		user  byte
		stars uint8
	}{
		{10, 5}, {11, 3}, {12, 1}, {11, 4}, {10, 2}, {13, 5},
	}
	for _, s := range steps {
		if _, _, err := fx.engine.Rate(fx.promoAddr, testAddr(s.user), s.stars); err != nil {
			t.Fatalf("rate user %d: %v", s.user, err)
		}
	}
	stats, ok, err := fx.engine.Stats(fx.promoAddr)
	if err != nil || !ok {
		t.Fatalf("stats: ok=%v err=%v", ok, err)
	}
	if stats.TotalRatings != 4 {
		t.Fatalf("total %d, want 4", stats.TotalRatings)
	}
	// Current stars: u10=2, u11=4, u12=1, u13=5.
	if stats.SumStars != 12 {
		t.Fatalf("sum %d, want 12", stats.SumStars)
	}
	var buckets uint32
	for _, n := range stats.Distribution {
		buckets += n
	}
	if uint64(buckets) != stats.TotalRatings {
		t.Fatalf("distribution sums to %d, total is %d", buckets, stats.TotalRatings)
	}
	if stats.AverageRating != 300 {
		t.Fatalf("average %d, want 300", stats.AverageRating)
	}
}
