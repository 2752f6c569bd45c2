package promotion

import "errors"

var (
	ErrNotInitialised       = errors.New("promotion: engine not initialised")
	ErrPromotionNotFound    = errors.New("promotion: promotion not found")
	ErrNotMerchantAuthority = errors.New("promotion: caller is not the merchant authority")
	ErrInvalidDiscount      = errors.New("promotion: discount percentage out of range")
	ErrInvalidSupply        = errors.New("promotion: max supply must be positive")
	ErrInvalidExpiry        = errors.New("promotion: expiry must be in the future")
	ErrCategoryTooLong      = errors.New("promotion: category too long")
	ErrDescriptionTooLong   = errors.New("promotion: description too long")
)
