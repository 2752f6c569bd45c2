package reputation

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/token"
)

// Engine maintains reputation records and issues badges. Counter updates are
// invoked as side effects of coupon and social operations; badge minting is a
// first-class operation.
type Engine struct {
	store   KV
	tokens  token.Authority
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine backed by the provided storage backend.
func NewEngine(store KV, tokens token.Authority) *Engine {
	return &Engine{
		store:   store,
		tokens:  tokens,
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

// Reputation returns the stored reputation record for user.
func (e *Engine) Reputation(user crypto.Address) (*UserReputation, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetReputation(e.store, user)
}

func (e *Engine) loadOrCreate(user crypto.Address) (*UserReputation, error) {
	rep, ok, err := GetReputation(e.store, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		rep = &UserReputation{User: user, JoinedAt: e.now()}
	}
	return rep, nil
}

func (e *Engine) award(user crypto.Address, points uint64, bump func(*UserReputation)) error {
	if e == nil || e.store == nil {
		return ErrNotInitialised
	}
	rep, err := e.loadOrCreate(user)
	if err != nil {
		return err
	}
	bump(rep)
	rep.ReputationScore += points
	rep.Tier = TierForScore(rep.ReputationScore)
	return PutReputation(e.store, rep)
}

// AwardPurchase credits a coupon acquisition (mint or marketplace buy).
func (e *Engine) AwardPurchase(user crypto.Address) error {
	return e.award(user, PointsPerPurchase, func(r *UserReputation) { r.TotalPurchases++ })
}

// AwardRedemption credits a successful coupon redemption.
func (e *Engine) AwardRedemption(user crypto.Address) error {
	return e.award(user, PointsPerRedemption, func(r *UserReputation) { r.TotalRedemptions++ })
}

// AwardRating credits a first-time promotion rating.
func (e *Engine) AwardRating(user crypto.Address) error {
	return e.award(user, PointsPerRating, func(r *UserReputation) { r.TotalRatingsGiven++ })
}

// AwardComment credits a posted comment.
func (e *Engine) AwardComment(user crypto.Address) error {
	return e.award(user, PointsPerComment, func(r *UserReputation) { r.TotalComments++ })
}

// MintBadge issues the badge type to user: the badge set gains an entry, a
// unique token is minted to the user and a BadgeNFT record is written, all in
// the surrounding state transition. Issuing the same type twice fails.
func (e *Engine) MintBadge(user crypto.Address, badgeType BadgeType) (*BadgeNFT, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrNotInitialised
	}
	if !badgeType.Valid() {
		return nil, ErrUnknownBadge
	}
	rep, err := e.loadOrCreate(user)
	if err != nil {
		return nil, err
	}
	if rep.HasBadge(badgeType) {
		return nil, ErrBadgeAlreadyEarned
	}
	if !rep.Eligible(badgeType) {
		return nil, ErrBadgeNotEarned
	}
	if len(rep.BadgesEarned) >= MaxBadges {
		return nil, ErrTooManyBadges
	}

	tokenID, err := e.tokens.MintUnique(user)
	if err != nil {
		return nil, err
	}
	badge := &BadgeNFT{
		User:        user,
		BadgeType:   badgeType,
		Token:       tokenID,
		MetadataURI: badgeType.MetadataURI(),
		EarnedAt:    e.now(),
	}
	if err := e.tokens.AttachMetadata(tokenID, badgeType.DisplayName(), badge.MetadataURI); err != nil {
		return nil, err
	}
	rep.BadgesEarned = append(rep.BadgesEarned, badgeType)
	if err := PutReputation(e.store, rep); err != nil {
		return nil, err
	}
	if err := PutBadge(e.store, badge); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewBadgeEarnedEvent(badge))
	return badge, nil
}

// Badge returns the badge record for a (user, badge type) pair.
func (e *Engine) Badge(user crypto.Address, badgeType BadgeType) (*BadgeNFT, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetBadge(e.store, BadgeAddress(user, badgeType))
}
