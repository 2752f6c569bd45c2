package social

import "errors"

var (
	ErrNotInitialised    = errors.New("social: engine not initialised")
	ErrInvalidComment    = errors.New("social: comment must be between 1 and 500 characters")
	ErrCommentNotFound   = errors.New("social: comment not found")
	ErrParentNotFound    = errors.New("social: parent comment not found")
	ErrInvalidStars      = errors.New("social: stars must be between 1 and 5")
	ErrRatingNotFound    = errors.New("social: rating not found")
	ErrStatsNotFound     = errors.New("social: rating stats not found")
	ErrLikesOverflow     = errors.New("social: like counter overflow")
	ErrStatsInconsistent = errors.New("social: rating aggregate inconsistent")
)
