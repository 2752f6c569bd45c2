package reputation

import (
	"errors"
	"testing"

	"agoradeals/core/state"
	"agoradeals/crypto"
	"agoradeals/native/token"
	"agoradeals/storage"
)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0] = b
	return a
}

func newTestEngine() *Engine {
	mgr := state.NewManager(storage.NewMemDB())
	eng := NewEngine(mgr, token.NewRegistry(mgr))
	eng.SetNowFunc(func() int64 { return 1_700_000_000 })
	return eng
}

func TestTierForScoreBreakpoints(t *testing.T) {
	cases := []struct {
		score uint64
		want  Tier
	}{
		{0, TierBronze}, {99, TierBronze},
		{100, TierSilver}, {499, TierSilver},
		{500, TierGold}, {1999, TierGold},
		{2000, TierPlatinum}, {4999, TierPlatinum},
		{5000, TierDiamond}, {1_000_000, TierDiamond},
	}
	for _, tc := range cases {
		if got := TierForScore(tc.score); got != tc.want {
			t.Fatalf("score %d: got %v want %v", tc.score, got, tc.want)
		}
	}
}

func TestAwardsAccumulate(t *testing.T) {
	eng := newTestEngine()
	user := testAddr(1)

	if err := eng.AwardPurchase(user); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if err := eng.AwardRedemption(user); err != nil {
		t.Fatalf("redemption: %v", err)
	}
	if err := eng.AwardRating(user); err != nil {
		t.Fatalf("rating: %v", err)
	}
	if err := eng.AwardComment(user); err != nil {
		t.Fatalf("comment: %v", err)
	}

	rep, ok, err := eng.Reputation(user)
	if err != nil || !ok {
		t.Fatalf("reputation: ok=%v err=%v", ok, err)
	}
	if rep.TotalPurchases != 1 || rep.TotalRedemptions != 1 || rep.TotalRatingsGiven != 1 || rep.TotalComments != 1 {
		t.Fatalf("unexpected counters: %+v", rep)
	}
	wantScore := uint64(PointsPerPurchase + PointsPerRedemption + PointsPerRating + PointsPerComment)
	if rep.ReputationScore != wantScore {
		t.Fatalf("score %d, want %d", rep.ReputationScore, wantScore)
	}
	if rep.Tier != TierBronze {
		t.Fatalf("tier %v, want bronze", rep.Tier)
	}
	if rep.JoinedAt != 1_700_000_000 {
		t.Fatalf("joinedAt not set on first award")
	}
}

func TestTierRecomputedOnScoreChange(t *testing.T) {
	eng := newTestEngine()
	user := testAddr(2)

	// 10 purchases at 10 points each crosses the silver breakpoint.
	for i := 0; i < 10; i++ {
		if err := eng.AwardPurchase(user); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
	}
	rep, _, err := eng.Reputation(user)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.ReputationScore != 100 {
		t.Fatalf("score %d, want 100", rep.ReputationScore)
	}
	if rep.Tier != TierSilver {
		t.Fatalf("tier %v, want silver", rep.Tier)
	}
}

func TestMintBadgeFirstPurchase(t *testing.T) {
	eng := newTestEngine()
	user := testAddr(3)

	if _, err := eng.MintBadge(user, BadgeFirstPurchase); !errors.Is(err, ErrBadgeNotEarned) {
		t.Fatalf("expected ErrBadgeNotEarned before any purchase, got %v", err)
	}

	if err := eng.AwardPurchase(user); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	badge, err := eng.MintBadge(user, BadgeFirstPurchase)
	if err != nil {
		t.Fatalf("mint badge: %v", err)
	}
	if badge.Token.IsZero() {
		t.Fatalf("badge token not minted")
	}
	if badge.MetadataURI == "" {
		t.Fatalf("badge metadata uri empty")
	}

	// Second issuance of the same type must fail and leave the set unchanged.
	if _, err := eng.MintBadge(user, BadgeFirstPurchase); !errors.Is(err, ErrBadgeAlreadyEarned) {
		t.Fatalf("expected ErrBadgeAlreadyEarned, got %v", err)
	}
	rep, _, err := eng.Reputation(user)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if len(rep.BadgesEarned) != 1 || rep.BadgesEarned[0] != BadgeFirstPurchase {
		t.Fatalf("unexpected badge set: %v", rep.BadgesEarned)
	}

	stored, ok, err := eng.Badge(user, BadgeFirstPurchase)
	if err != nil || !ok {
		t.Fatalf("badge record missing: ok=%v err=%v", ok, err)
	}
	if stored.User != user || stored.BadgeType != BadgeFirstPurchase {
		t.Fatalf("unexpected badge record: %+v", stored)
	}
}

func TestMintBadgeThresholds(t *testing.T) {
	eng := newTestEngine()
	user := testAddr(4)

	for i := 0; i < 9; i++ {
		if err := eng.AwardRedemption(user); err != nil {
			t.Fatalf("redemption: %v", err)
		}
	}
	if _, err := eng.MintBadge(user, BadgeTenRedemptions); !errors.Is(err, ErrBadgeNotEarned) {
		t.Fatalf("expected ErrBadgeNotEarned at 9 redemptions, got %v", err)
	}
	if err := eng.AwardRedemption(user); err != nil {
		t.Fatalf("redemption: %v", err)
	}
	if _, err := eng.MintBadge(user, BadgeTenRedemptions); err != nil {
		t.Fatalf("mint at threshold: %v", err)
	}
}

func TestMintBadgeUnknownAndGrantOnly(t *testing.T) {
	eng := newTestEngine()
	user := testAddr(5)
	if err := eng.AwardPurchase(user); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if _, err := eng.MintBadge(user, BadgeType(200)); !errors.Is(err, ErrUnknownBadge) {
		t.Fatalf("expected ErrUnknownBadge, got %v", err)
	}
	// EarlyAdopter has no activity predicate and cannot be self-minted.
	if _, err := eng.MintBadge(user, BadgeEarlyAdopter); !errors.Is(err, ErrBadgeNotEarned) {
		t.Fatalf("expected ErrBadgeNotEarned for grant-only badge, got %v", err)
	}
}
