package exchange

import (
	"fmt"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

// KV abstracts the subset of state manager functionality required here.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Accounts is the balance ledger the exchange settles against.
type Accounts interface {
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

var listingPrefix = []byte("exchange/listing/")

func listingKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", listingPrefix, addr.Bytes()))
}

type storedListing struct {
	Coupon    crypto.Address
	Seller    crypto.Address
	Price     uint64
	IsActive  bool
	CreatedAt uint64
}

// Get loads the listing stored under addr.
func Get(store KV, addr crypto.Address) (*Listing, bool, error) {
	var stored storedListing
	ok, err := store.KVGet(listingKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Listing{
		Coupon:    stored.Coupon,
		Seller:    stored.Seller,
		Price:     stored.Price,
		IsActive:  stored.IsActive,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// Put persists the listing under addr.
func Put(store KV, addr crypto.Address, l *Listing) error {
	if l == nil {
		return fmt.Errorf("exchange: record required")
	}
	stored := storedListing{
		Coupon:    l.Coupon,
		Seller:    l.Seller,
		Price:     l.Price,
		IsActive:  l.IsActive,
		CreatedAt: uint64(l.CreatedAt),
	}
	return store.KVPut(listingKey(addr), &stored)
}
