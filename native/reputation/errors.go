package reputation

import "errors"

var (
	ErrNotInitialised     = errors.New("reputation: engine not initialised")
	ErrUnknownBadge       = errors.New("reputation: unknown badge type")
	ErrBadgeAlreadyEarned = errors.New("reputation: badge already earned")
	ErrBadgeNotEarned     = errors.New("reputation: badge requirements not met")
	ErrTooManyBadges      = errors.New("reputation: badge set full")
)
