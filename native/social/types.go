package social

import (
	"encoding/binary"

	"agoradeals/crypto"
)

const (
	// MaxCommentLength bounds comment content in bytes.
	MaxCommentLength = 500
	// MinStars and MaxStars bound a rating value.
	MinStars = 1
	MaxStars = 5
)

// Comment is one entry in a promotion's discussion thread. Parent is the zero
// address for top-level comments; replies reference an existing comment, so
// threads cannot form cycles.
type Comment struct {
	ID              uint64
	Promotion       crypto.Address
	User            crypto.Address
	Content         string
	CreatedAt       int64
	Likes           uint64
	IsMerchantReply bool
	Parent          crypto.Address
}

// Rating is one user's star rating of a promotion. At most one rating exists
// per (user, promotion) pair; re-rating overwrites in place.
type Rating struct {
	User      crypto.Address
	Promotion crypto.Address
	Merchant  crypto.Address
	Stars     uint8
	CreatedAt int64
	UpdatedAt int64
}

// RatingStats aggregates the current ratings of one promotion. AverageRating
// is scaled by 100, so 450 reads as 4.5 stars.
type RatingStats struct {
	Promotion     crypto.Address
	TotalRatings  uint64
	SumStars      uint64
	Distribution  [MaxStars]uint32
	AverageRating uint64
}

// CommentAddress derives the address of the seq-th comment on a promotion.
func CommentAddress(promotion crypto.Address, seq uint64) crypto.Address {
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	return crypto.DeriveAddress("comment", promotion.Bytes(), seqBytes[:])
}

// RatingAddress derives the address of a user's rating of a promotion.
func RatingAddress(promotion, user crypto.Address) crypto.Address {
	return crypto.DeriveAddress("rating", promotion.Bytes(), user.Bytes())
}

// StatsAddress derives the address of a promotion's rating aggregate.
func StatsAddress(promotion crypto.Address) crypto.Address {
	return crypto.DeriveAddress("rating-stats", promotion.Bytes())
}
