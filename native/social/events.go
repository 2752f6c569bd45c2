package social

import (
	"strconv"

	"agoradeals/core/types"
	"agoradeals/crypto"
)

const (
	// EventTypeCommentAdded is emitted when a comment joins a thread.
	EventTypeCommentAdded = "comment.added"
	// EventTypeCommentLiked is emitted when a comment is liked.
	EventTypeCommentLiked = "comment.liked"
	// EventTypePromotionRated is emitted when a rating is recorded or updated.
	EventTypePromotionRated = "promotion.rated"
)

// NewCommentAddedEvent returns the canonical comment event payload.
func NewCommentAddedEvent(addr crypto.Address, c *Comment) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: EventTypeCommentAdded, Attributes: attrs}
	}
	attrs["comment"] = addr.String()
	attrs["promotion"] = c.Promotion.String()
	attrs["user"] = c.User.String()
	attrs["merchantReply"] = strconv.FormatBool(c.IsMerchantReply)
	if !c.Parent.IsZero() {
		attrs["parent"] = c.Parent.String()
	}
	return &types.Event{Type: EventTypeCommentAdded, Attributes: attrs}
}

// NewCommentLikedEvent returns the canonical like event payload.
func NewCommentLikedEvent(addr crypto.Address, c *Comment, liker crypto.Address) *types.Event {
	attrs := map[string]string{
		"comment": addr.String(),
		"liker":   liker.String(),
	}
	if c != nil {
		attrs["likes"] = strconv.FormatUint(c.Likes, 10)
	}
	return &types.Event{Type: EventTypeCommentLiked, Attributes: attrs}
}

// NewPromotionRatedEvent returns the canonical rating event payload.
func NewPromotionRatedEvent(promotionAddr crypto.Address, r *Rating, s *RatingStats, firstTime bool) *types.Event {
	attrs := map[string]string{
		"promotion": promotionAddr.String(),
		"firstTime": strconv.FormatBool(firstTime),
	}
	if r != nil {
		attrs["user"] = r.User.String()
		attrs["stars"] = strconv.FormatUint(uint64(r.Stars), 10)
	}
	if s != nil {
		attrs["totalRatings"] = strconv.FormatUint(s.TotalRatings, 10)
		attrs["averageRating"] = strconv.FormatUint(s.AverageRating, 10)
	}
	return &types.Event{Type: EventTypePromotionRated, Attributes: attrs}
}
