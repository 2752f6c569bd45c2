package coupon

import (
	"encoding/binary"

	"agoradeals/crypto"
	"agoradeals/native/token"
)

// Coupon is an individually owned discount instance minted against a
// promotion's supply. Discount and expiry are snapshotted at mint time and
// never change afterwards. Redemption is terminal; expiry is implicit via
// timestamp comparison at read time.
type Coupon struct {
	ID                 uint64
	Promotion          crypto.Address
	Owner              crypto.Address
	Merchant           crypto.Address
	DiscountPercentage uint8
	ExpiryTimestamp    int64
	IsRedeemed         bool
	RedeemedAt         int64
	CreatedAt          int64
	Token              token.ID
}

// Expired reports whether the coupon's lifetime has passed at now.
func (c *Coupon) Expired(now int64) bool {
	return c != nil && c.ExpiryTimestamp <= now
}

// Address derives the deterministic coupon address from the promotion address
// and the promotion-local sequence number (the promotion's supply at mint
// time).
func Address(promotion crypto.Address, seq uint64) crypto.Address {
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	return crypto.DeriveAddress("coupon", promotion.Bytes(), seqBytes[:])
}
