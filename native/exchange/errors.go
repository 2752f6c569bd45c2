package exchange

import "errors"

var (
	ErrNotInitialised       = errors.New("exchange: engine not initialised")
	ErrListingNotFound      = errors.New("exchange: listing not found")
	ErrInvalidPrice         = errors.New("exchange: price must be greater than zero")
	ErrListingAlreadyActive = errors.New("exchange: coupon already has an active listing")
	ErrListingInactive      = errors.New("exchange: listing is not active")
	ErrNotListingSeller     = errors.New("exchange: caller is not the listing seller")
	ErrSellerNotOwner       = errors.New("exchange: seller no longer owns the coupon")
	ErrInsufficientFunds    = errors.New("exchange: insufficient funds")
)
