package marketplace

import "errors"

var (
	ErrNotInitialised     = errors.New("marketplace: engine not initialised")
	ErrAlreadyInitialized = errors.New("marketplace: registry already initialized")
	ErrNotInitialized     = errors.New("marketplace: registry not initialized")
	ErrInvalidFee         = errors.New("marketplace: fee basis points out of range")
	ErrNotAuthority       = errors.New("marketplace: caller is not the registry authority")
	ErrMerchantExists     = errors.New("marketplace: merchant already registered")
	ErrMerchantNotFound   = errors.New("marketplace: merchant not found")
	ErrNameTooLong        = errors.New("marketplace: merchant name too long")
	ErrNameEmpty          = errors.New("marketplace: merchant name required")
	ErrCategoryTooLong    = errors.New("marketplace: merchant category too long")
)
