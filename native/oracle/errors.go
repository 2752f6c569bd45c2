package oracle

import "errors"

var (
	ErrNotInitialised      = errors.New("oracle: engine not initialised")
	ErrConfigExists        = errors.New("oracle: config already initialised")
	ErrConfigNotFound      = errors.New("oracle: config not initialised")
	ErrUnauthorizedOracle  = errors.New("oracle: caller is not the oracle authority")
	ErrSourceNotAllowed    = errors.New("oracle: source not in the allow-list")
	ErrTooManySources      = errors.New("oracle: too many allowed sources")
	ErrInvalidSource       = errors.New("oracle: unknown deal source")
	ErrInvalidExternalID   = errors.New("oracle: external id must be between 1 and 100 characters")
	ErrFieldTooLong        = errors.New("oracle: field exceeds maximum length")
	ErrInvalidDealPrice    = errors.New("oracle: original price must be positive and not below the discounted price")
	ErrUpdateTooFrequent   = errors.New("oracle: update interval has not elapsed")
	ErrDealNotFound        = errors.New("oracle: deal not found")
	ErrInvalidInterval     = errors.New("oracle: update interval must not be negative")
	ErrInvalidVerification = errors.New("oracle: verification threshold must be positive")
)
