package pricing

import (
	"fmt"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
)

// Stable error codes for pricing failures. The HTTP layer maps these to
// response statuses; clients branch on the code, never the message.
const (
	ErrCodePriceMismatch    = "PRICE_MISMATCH"
	ErrCodeCurrencyMismatch = "CURRENCY_MISMATCH"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"

	ErrCodeCouponNotFound      = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired       = "COUPON_EXPIRED"
	ErrCodeCouponNotApplicable = "COUPON_NOT_APPLICABLE"
	ErrCodeCouponMinimumNotMet = "COUPON_MINIMUM_NOT_MET"
	ErrCodeCouponLimitExceeded = "COUPON_USAGE_LIMIT_EXCEEDED"
	ErrCodeDiscountsCannotMix  = "DISCOUNTS_CANNOT_COMBINE"

	ErrCodePromotionNotFound      = "PROMOTION_NOT_FOUND"
	ErrCodePromotionExpired       = "PROMOTION_EXPIRED"
	ErrCodePromotionNotApplicable = "PROMOTION_NOT_APPLICABLE"
	ErrCodePromotionMinimumNotMet = "PROMOTION_MINIMUM_NOT_MET"
	ErrCodePromotionLimitExceeded = "PROMOTION_USAGE_LIMIT_EXCEEDED"
	ErrCodeCustomerLimitExceeded  = "PROMOTION_CUSTOMER_LIMIT_EXCEEDED"
	ErrCodeExclusiveConflict      = "PROMOTION_EXCLUSIVE_CONFLICT"
)

// NewPriceMismatchError reports a client price drifting beyond tolerance.
// Both prices ride in the message so support can act without extra lookups.
func NewPriceMismatchError(clientPrice, systemPrice valueobject.Money, deviationPercent string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePriceMismatch,
		fmt.Sprintf("Client price %s deviates from system price %s by %s%%", clientPrice, systemPrice, deviationPercent))
}

// NewCurrencyMismatchError reports a request currency the price source cannot serve
func NewCurrencyMismatchError(requested, available valueobject.Currency) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCurrencyMismatch,
		fmt.Sprintf("Requested currency %s but product is priced in %s", requested, available))
}

// NewCouponNotFoundError reports an unknown coupon code
func NewCouponNotFoundError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCouponNotFound, fmt.Sprintf("Coupon %q not found", code))
}

// NewCouponExpiredError reports a coupon outside its validity window
func NewCouponExpiredError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCouponExpired, fmt.Sprintf("Coupon %q is not currently valid", code))
}

// NewCouponNotApplicableError reports a coupon the customer or products do not qualify for
func NewCouponNotApplicableError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCouponNotApplicable, fmt.Sprintf("Coupon %q is not applicable to this order", code))
}

// NewCouponMinimumNotMetError reports an order below the coupon's minimums
func NewCouponMinimumNotMetError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCouponMinimumNotMet, fmt.Sprintf("Order does not meet the minimum requirements for coupon %q", code))
}

// NewCouponLimitExceededError reports an exhausted coupon usage cap
func NewCouponLimitExceededError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCouponLimitExceeded, fmt.Sprintf("Coupon %q has reached its usage limit", code))
}

// NewDiscountsCannotCombineError reports two non-stackable codes on one order
func NewDiscountsCannotCombineError(codeA, codeB string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeDiscountsCannotMix,
		fmt.Sprintf("Discounts %q and %q cannot be combined", codeA, codeB))
}

// NewPromotionNotFoundError reports an unknown promotion code
func NewPromotionNotFoundError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePromotionNotFound, fmt.Sprintf("Promotion %q not found", code))
}

// NewPromotionExpiredError reports a promotion outside its validity window
func NewPromotionExpiredError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePromotionExpired, fmt.Sprintf("Promotion %q is not currently active", code))
}

// NewPromotionNotApplicableError reports a promotion the order does not qualify for
func NewPromotionNotApplicableError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePromotionNotApplicable, fmt.Sprintf("Promotion %q is not applicable to this order", code))
}

// NewPromotionMinimumNotMetError reports an order below the promotion's minimums
func NewPromotionMinimumNotMetError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePromotionMinimumNotMet, fmt.Sprintf("Order does not meet the minimum requirements for promotion %q", code))
}

// NewPromotionLimitExceededError reports an exhausted global promotion cap
func NewPromotionLimitExceededError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodePromotionLimitExceeded, fmt.Sprintf("Promotion %q has reached its usage limit", code))
}

// NewCustomerLimitExceededError reports a customer over the per-customer cap
func NewCustomerLimitExceededError(code string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeCustomerLimitExceeded,
		fmt.Sprintf("Customer has reached the usage limit for promotion %q", code))
}
