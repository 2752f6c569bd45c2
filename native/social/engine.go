package social

import (
	"time"

	"agoradeals/core/events"
	"agoradeals/crypto"
	"agoradeals/native/marketplace"
	"agoradeals/native/promotion"
)

// rewards is the slice of the reputation engine the social layer feeds.
type rewards interface {
	AwardRating(user crypto.Address) error
	AwardComment(user crypto.Address) error
}

// Engine records ratings and threaded comments against promotions. Rating
// aggregates are maintained transactionally with the rating record itself;
// a re-rate subtracts the prior star contribution before adding the new one,
// so the aggregate always reflects exactly one contribution per user.
type Engine struct {
	store   KV
	rewards rewards
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine backed by the provided collaborators.
func NewEngine(store KV, rewards rewards) *Engine {
	return &Engine{
		store:   store,
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

// Comment returns the comment stored under addr.
func (e *Engine) Comment(addr crypto.Address) (*Comment, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetComment(e.store, addr)
}

// Rating returns user's rating of a promotion, if any.
func (e *Engine) Rating(promotionAddr, user crypto.Address) (*Rating, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetRating(e.store, RatingAddress(promotionAddr, user))
}

// Stats returns the rating aggregate of a promotion, if any.
func (e *Engine) Stats(promotionAddr crypto.Address) (*RatingStats, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, ErrNotInitialised
	}
	return GetStats(e.store, StatsAddress(promotionAddr))
}

// AddComment appends a comment to a promotion's thread. A non-zero parent
// must reference an existing comment. The merchant-reply flag is derived at
// creation time by comparing the author to the promotion's merchant
// authority.
func (e *Engine) AddComment(promotionAddr, author crypto.Address, content string, parent crypto.Address) (crypto.Address, *Comment, error) {
	if e == nil || e.store == nil {
		return crypto.Address{}, nil, ErrNotInitialised
	}
	if len(content) == 0 || len(content) > MaxCommentLength {
		return crypto.Address{}, nil, ErrInvalidComment
	}
	promo, ok, err := promotion.Get(e.store, promotionAddr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, promotion.ErrPromotionNotFound
	}
	merchant, ok, err := marketplace.GetMerchant(e.store, promo.Merchant)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	if !ok {
		return crypto.Address{}, nil, marketplace.ErrMerchantNotFound
	}
	if !parent.IsZero() {
		if _, ok, err := GetComment(e.store, parent); err != nil {
			return crypto.Address{}, nil, err
		} else if !ok {
			return crypto.Address{}, nil, ErrParentNotFound
		}
	}

	seq, err := nextCommentSeq(e.store, promotionAddr)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	c := &Comment{
		ID:              seq,
		Promotion:       promotionAddr,
		User:            author,
		Content:         content,
		CreatedAt:       e.now(),
		IsMerchantReply: merchant.Authority == author,
		Parent:          parent,
	}
	addr := CommentAddress(promotionAddr, seq)
	if err := PutComment(e.store, addr, c); err != nil {
		return crypto.Address{}, nil, err
	}
	if e.rewards != nil {
		if err := e.rewards.AwardComment(author); err != nil {
			return crypto.Address{}, nil, err
		}
	}
	e.emitter.Emit(NewCommentAddedEvent(addr, c))
	return addr, c, nil
}

// LikeComment increments a comment's like counter. Likes are not
// deduplicated per user.
func (e *Engine) LikeComment(commentAddr, liker crypto.Address) (*Comment, error) {
	if e == nil || e.store == nil {
		return nil, ErrNotInitialised
	}
	c, ok, err := GetComment(e.store, commentAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotFound
	}
	if c.Likes == ^uint64(0) {
		return nil, ErrLikesOverflow
	}
	c.Likes++
	if err := PutComment(e.store, commentAddr, c); err != nil {
		return nil, err
	}
	e.emitter.Emit(NewCommentLikedEvent(commentAddr, c, liker))
	return c, nil
}

// Rate records or updates user's star rating of a promotion and folds it
// into the promotion's aggregate. A first-time rating grows the aggregate
// and credits reputation; a re-rate replaces the prior contribution without
// changing total_ratings and earns nothing.
func (e *Engine) Rate(promotionAddr, user crypto.Address, stars uint8) (*Rating, *RatingStats, error) {
	if e == nil || e.store == nil {
		return nil, nil, ErrNotInitialised
	}
	if stars < MinStars || stars > MaxStars {
		return nil, nil, ErrInvalidStars
	}
	promo, ok, err := promotion.Get(e.store, promotionAddr)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, promotion.ErrPromotionNotFound
	}

	ratingAddr := RatingAddress(promotionAddr, user)
	statsAddr := StatsAddress(promotionAddr)
	rating, exists, err := GetRating(e.store, ratingAddr)
	if err != nil {
		return nil, nil, err
	}
	stats, ok, err := GetStats(e.store, statsAddr)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		stats = &RatingStats{Promotion: promotionAddr}
	}

	now := e.now()
	if exists {
		old := rating.Stars
		if stats.TotalRatings == 0 || stats.SumStars < uint64(old) || stats.Distribution[old-1] == 0 {
			return nil, nil, ErrStatsInconsistent
		}
		stats.SumStars -= uint64(old)
		stats.Distribution[old-1]--
		rating.Stars = stars
		rating.UpdatedAt = now
	} else {
		rating = &Rating{
			User:      user,
			Promotion: promotionAddr,
			Merchant:  promo.Merchant,
			Stars:     stars,
			CreatedAt: now,
			UpdatedAt: now,
		}
		stats.TotalRatings++
	}
	stats.SumStars += uint64(stars)
	stats.Distribution[stars-1]++
	stats.AverageRating = stats.SumStars * 100 / stats.TotalRatings

	if err := PutRating(e.store, ratingAddr, rating); err != nil {
		return nil, nil, err
	}
	if err := PutStats(e.store, statsAddr, stats); err != nil {
		return nil, nil, err
	}
	if !exists && e.rewards != nil {
		if err := e.rewards.AwardRating(user); err != nil {
			return nil, nil, err
		}
	}
	e.emitter.Emit(NewPromotionRatedEvent(promotionAddr, rating, stats, !exists))
	return rating, stats, nil
}
