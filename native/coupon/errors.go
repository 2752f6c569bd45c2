package coupon

import "errors"

var (
	ErrNotInitialised        = errors.New("coupon: engine not initialised")
	ErrCouponNotFound        = errors.New("coupon: coupon not found")
	ErrPromotionInactive     = errors.New("coupon: promotion inactive")
	ErrSupplyExhausted       = errors.New("coupon: promotion supply exhausted")
	ErrPromotionExpired      = errors.New("coupon: promotion expired")
	ErrCouponAlreadyRedeemed = errors.New("coupon: coupon already redeemed")
	ErrCouponExpired         = errors.New("coupon: coupon expired")
	ErrNotCouponOwner        = errors.New("coupon: caller is not the coupon owner")
	ErrWrongMerchant         = errors.New("coupon: coupon belongs to a different merchant")
	ErrNotMerchantAuthority  = errors.New("coupon: caller is not the merchant authority")
)
