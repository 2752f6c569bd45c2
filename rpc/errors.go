package rpc

import (
	"errors"
	"net/http"

	"agoradeals/native/coupon"
	"agoradeals/native/exchange"
	"agoradeals/native/geo"
	"agoradeals/native/marketplace"
	"agoradeals/native/oracle"
	"agoradeals/native/promotion"
	"agoradeals/native/reputation"
	"agoradeals/native/social"
	"agoradeals/native/token"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeConflict       = -32009
	codeRateLimited    = -32020
)

// validationErrors are caller mistakes: the input must be corrected, a retry
// with the same arguments cannot succeed.
var validationErrors = []error{
	marketplace.ErrInvalidFee,
	marketplace.ErrNameTooLong,
	marketplace.ErrNameEmpty,
	marketplace.ErrCategoryTooLong,
	promotion.ErrInvalidDiscount,
	promotion.ErrInvalidSupply,
	promotion.ErrInvalidExpiry,
	promotion.ErrCategoryTooLong,
	promotion.ErrDescriptionTooLong,
	exchange.ErrInvalidPrice,
	social.ErrInvalidComment,
	social.ErrInvalidStars,
	oracle.ErrInvalidSource,
	oracle.ErrInvalidExternalID,
	oracle.ErrFieldTooLong,
	oracle.ErrInvalidDealPrice,
	oracle.ErrTooManySources,
	oracle.ErrInvalidInterval,
	oracle.ErrInvalidVerification,
	reputation.ErrUnknownBadge,
	token.ErrNameTooLong,
	token.ErrURITooLong,
	geo.ErrInvalidCoordinates,
}

// authorizationErrors are permanent for the calling identity.
var authorizationErrors = []error{
	marketplace.ErrNotAuthority,
	promotion.ErrNotMerchantAuthority,
	coupon.ErrNotCouponOwner,
	coupon.ErrNotMerchantAuthority,
	coupon.ErrWrongMerchant,
	exchange.ErrNotListingSeller,
	oracle.ErrUnauthorizedOracle,
}

// notFoundErrors mean the referenced record does not exist.
var notFoundErrors = []error{
	marketplace.ErrNotInitialized,
	marketplace.ErrMerchantNotFound,
	promotion.ErrPromotionNotFound,
	coupon.ErrCouponNotFound,
	exchange.ErrListingNotFound,
	social.ErrCommentNotFound,
	social.ErrParentNotFound,
	social.ErrRatingNotFound,
	oracle.ErrConfigNotFound,
	oracle.ErrDealNotFound,
	token.ErrTokenNotFound,
}

// conflictErrors reflect ledger state that forbids the operation.
var conflictErrors = []error{
	marketplace.ErrAlreadyInitialized,
	marketplace.ErrMerchantExists,
	coupon.ErrPromotionInactive,
	coupon.ErrSupplyExhausted,
	coupon.ErrPromotionExpired,
	coupon.ErrCouponAlreadyRedeemed,
	coupon.ErrCouponExpired,
	exchange.ErrListingAlreadyActive,
	exchange.ErrListingInactive,
	exchange.ErrSellerNotOwner,
	exchange.ErrInsufficientFunds,
	oracle.ErrConfigExists,
	oracle.ErrSourceNotAllowed,
	reputation.ErrBadgeAlreadyEarned,
	reputation.ErrBadgeNotEarned,
	reputation.ErrTooManyBadges,
	token.ErrTokenBurned,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorCode maps a module error to its JSON-RPC code and HTTP status.
func errorCode(err error) (int, int) {
	switch {
	case matchesAny(err, validationErrors):
		return codeInvalidParams, http.StatusBadRequest
	case matchesAny(err, authorizationErrors):
		return codeUnauthorized, http.StatusForbidden
	case matchesAny(err, notFoundErrors):
		return codeNotFound, http.StatusNotFound
	case matchesAny(err, conflictErrors):
		return codeConflict, http.StatusConflict
	case errors.Is(err, oracle.ErrUpdateTooFrequent):
		return codeRateLimited, http.StatusTooManyRequests
	default:
		return codeServerError, http.StatusInternalServerError
	}
}
