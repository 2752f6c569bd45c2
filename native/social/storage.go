package social

import (
	"fmt"

	"agoradeals/crypto"
)

// KV abstracts the subset of state manager functionality required here.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	commentPrefix    = []byte("social/comment/")
	commentSeqPrefix = []byte("social/comment-seq/")
	ratingPrefix     = []byte("social/rating/")
	statsPrefix      = []byte("social/stats/")
)

func commentKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", commentPrefix, addr.Bytes()))
}

func commentSeqKey(promotion crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", commentSeqPrefix, promotion.Bytes()))
}

func ratingKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", ratingPrefix, addr.Bytes()))
}

func statsKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", statsPrefix, addr.Bytes()))
}

type storedComment struct {
	ID              uint64
	Promotion       crypto.Address
	User            crypto.Address
	Content         string
	CreatedAt       uint64
	Likes           uint64
	IsMerchantReply bool
	Parent          crypto.Address
}

type storedRating struct {
	User      crypto.Address
	Promotion crypto.Address
	Merchant  crypto.Address
	Stars     uint8
	CreatedAt uint64
	UpdatedAt uint64
}

type storedStats struct {
	Promotion     crypto.Address
	TotalRatings  uint64
	SumStars      uint64
	Distribution  [MaxStars]uint32
	AverageRating uint64
}

type storedSequence struct {
	Next uint64
}

// GetComment loads the comment stored under addr.
func GetComment(store KV, addr crypto.Address) (*Comment, bool, error) {
	var stored storedComment
	ok, err := store.KVGet(commentKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Comment{
		ID:              stored.ID,
		Promotion:       stored.Promotion,
		User:            stored.User,
		Content:         stored.Content,
		CreatedAt:       int64(stored.CreatedAt),
		Likes:           stored.Likes,
		IsMerchantReply: stored.IsMerchantReply,
		Parent:          stored.Parent,
	}, true, nil
}

// PutComment persists the comment under addr.
func PutComment(store KV, addr crypto.Address, c *Comment) error {
	if c == nil {
		return fmt.Errorf("social: record required")
	}
	stored := storedComment{
		ID:              c.ID,
		Promotion:       c.Promotion,
		User:            c.User,
		Content:         c.Content,
		CreatedAt:       uint64(c.CreatedAt),
		Likes:           c.Likes,
		IsMerchantReply: c.IsMerchantReply,
		Parent:          c.Parent,
	}
	return store.KVPut(commentKey(addr), &stored)
}

func nextCommentSeq(store KV, promotion crypto.Address) (uint64, error) {
	var seq storedSequence
	if _, err := store.KVGet(commentSeqKey(promotion), &seq); err != nil {
		return 0, err
	}
	next := seq.Next
	seq.Next++
	if err := store.KVPut(commentSeqKey(promotion), &seq); err != nil {
		return 0, err
	}
	return next, nil
}

// GetRating loads the rating stored under addr.
func GetRating(store KV, addr crypto.Address) (*Rating, bool, error) {
	var stored storedRating
	ok, err := store.KVGet(ratingKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Rating{
		User:      stored.User,
		Promotion: stored.Promotion,
		Merchant:  stored.Merchant,
		Stars:     stored.Stars,
		CreatedAt: int64(stored.CreatedAt),
		UpdatedAt: int64(stored.UpdatedAt),
	}, true, nil
}

// PutRating persists the rating under addr.
func PutRating(store KV, addr crypto.Address, r *Rating) error {
	if r == nil {
		return fmt.Errorf("social: record required")
	}
	stored := storedRating{
		User:      r.User,
		Promotion: r.Promotion,
		Merchant:  r.Merchant,
		Stars:     r.Stars,
		CreatedAt: uint64(r.CreatedAt),
		UpdatedAt: uint64(r.UpdatedAt),
	}
	return store.KVPut(ratingKey(addr), &stored)
}

// GetStats loads the rating aggregate stored under addr.
func GetStats(store KV, addr crypto.Address) (*RatingStats, bool, error) {
	var stored storedStats
	ok, err := store.KVGet(statsKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &RatingStats{
		Promotion:     stored.Promotion,
		TotalRatings:  stored.TotalRatings,
		SumStars:      stored.SumStars,
		Distribution:  stored.Distribution,
		AverageRating: stored.AverageRating,
	}, true, nil
}

// PutStats persists the rating aggregate under addr.
func PutStats(store KV, addr crypto.Address, s *RatingStats) error {
	if s == nil {
		return fmt.Errorf("social: record required")
	}
	stored := storedStats{
		Promotion:     s.Promotion,
		TotalRatings:  s.TotalRatings,
		SumStars:      s.SumStars,
		Distribution:  s.Distribution,
		AverageRating: s.AverageRating,
	}
	return store.KVPut(statsKey(addr), &stored)
}
