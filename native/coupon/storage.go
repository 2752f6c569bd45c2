package coupon

import (
	"fmt"

	"agoradeals/crypto"
	"agoradeals/native/token"
)

// KV abstracts the subset of state manager functionality required here.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var couponPrefix = []byte("coupon/record/")

func couponKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", couponPrefix, addr.Bytes()))
}

type storedCoupon struct {
	ID                 uint64
	Promotion          crypto.Address
	Owner              crypto.Address
	Merchant           crypto.Address
	DiscountPercentage uint8
	ExpiryTimestamp    uint64
	IsRedeemed         bool
	RedeemedAt         uint64
	CreatedAt          uint64
	Token              [32]byte
}

// Get loads the coupon stored under addr.
func Get(store KV, addr crypto.Address) (*Coupon, bool, error) {
	var stored storedCoupon
	ok, err := store.KVGet(couponKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Coupon{
		ID:                 stored.ID,
		Promotion:          stored.Promotion,
		Owner:              stored.Owner,
		Merchant:           stored.Merchant,
		DiscountPercentage: stored.DiscountPercentage,
		ExpiryTimestamp:    int64(stored.ExpiryTimestamp),
		IsRedeemed:         stored.IsRedeemed,
		RedeemedAt:         int64(stored.RedeemedAt),
		CreatedAt:          int64(stored.CreatedAt),
		Token:              token.ID(stored.Token),
	}, true, nil
}

// Put persists the coupon under addr.
func Put(store KV, addr crypto.Address, c *Coupon) error {
	if c == nil {
		return fmt.Errorf("coupon: record required")
	}
	stored := storedCoupon{
		ID:                 c.ID,
		Promotion:          c.Promotion,
		Owner:              c.Owner,
		Merchant:           c.Merchant,
		DiscountPercentage: c.DiscountPercentage,
		ExpiryTimestamp:    uint64(c.ExpiryTimestamp),
		IsRedeemed:         c.IsRedeemed,
		RedeemedAt:         uint64(c.RedeemedAt),
		CreatedAt:          uint64(c.CreatedAt),
		Token:              c.Token,
	}
	return store.KVPut(couponKey(addr), &stored)
}
