package pricing

import (
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind distinguishes code-redeemed coupons from automatic discounts
type DiscountKind string

const (
	DiscountKindCoupon    DiscountKind = "COUPON"
	DiscountKindAutomatic DiscountKind = "AUTOMATIC"
)

// IsValid checks if the kind is a valid DiscountKind
func (k DiscountKind) IsValid() bool {
	switch k {
	case DiscountKindCoupon, DiscountKindAutomatic:
		return true
	}
	return false
}

// String returns the string representation of DiscountKind
func (k DiscountKind) String() string {
	return string(k)
}

// DiscountValueType determines how Value is interpreted
type DiscountValueType string

const (
	ValueTypePercentage  DiscountValueType = "PERCENTAGE"
	ValueTypeFixedAmount DiscountValueType = "FIXED_AMOUNT"
)

// IsValid checks if the value type is a valid DiscountValueType
func (v DiscountValueType) IsValid() bool {
	switch v {
	case ValueTypePercentage, ValueTypeFixedAmount:
		return true
	}
	return false
}

// String returns the string representation of DiscountValueType
func (v DiscountValueType) String() string {
	return string(v)
}

// Discount is a price reduction redeemed by code (coupon) or applied
// automatically when its conditions match an order.
//
// Priority orders stacking for discounts: LOWER priority values apply
// EARLIER. Promotions use the opposite ordering; see Promotion.
type Discount struct {
	shared.TenantAggregateRoot
	Code                  string
	Name                  string
	Kind                  DiscountKind
	ValueType             DiscountValueType
	Value                 decimal.Decimal
	Currency              valueobject.Currency
	IsStackable           bool
	Priority              int
	MinimumOrderAmount    *decimal.Decimal
	MinimumQuantity       *decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	ApplicableProductIDs  UUIDList
	ApplicableCustomerIDs UUIDList
	ValidFrom             *time.Time
	ValidTo               *time.Time
	IsActive              bool
	UsageLimit            *int
	UsageCount            int
}

// NewDiscount creates a new discount
func NewDiscount(tenantID uuid.UUID, code, name string, kind DiscountKind, valueType DiscountValueType, value decimal.Decimal) (*Discount, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Discount code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Discount name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_KIND", "Invalid discount kind")
	}
	if !valueType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VALUE_TYPE", "Invalid discount value type")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Discount value must be positive")
	}
	if valueType == ValueTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Percentage discount cannot exceed 100")
	}

	return &Discount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Kind:                kind,
		ValueType:           valueType,
		Value:               value,
		Currency:            valueobject.DefaultCurrency,
		IsStackable:         true,
		IsActive:            true,
	}, nil
}

// IsValidAt reports whether the discount is active and inside its validity window
func (d *Discount) IsValidAt(t time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.ValidFrom != nil && t.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidTo != nil && t.After(*d.ValidTo) {
		return false
	}
	return true
}

// IsApplicableToCustomer reports whether the customer may redeem this discount.
// An empty customer list means any customer qualifies; a restricted list
// requires a known customer on the order.
func (d *Discount) IsApplicableToCustomer(customerID *uuid.UUID) bool {
	if len(d.ApplicableCustomerIDs) == 0 {
		return true
	}
	if customerID == nil {
		return false
	}
	return d.ApplicableCustomerIDs.Contains(*customerID)
}

// IsApplicableToProducts reports whether the order's products qualify.
// An empty product list means the discount applies order-wide.
func (d *Discount) IsApplicableToProducts(productIDs []uuid.UUID) bool {
	if len(d.ApplicableProductIDs) == 0 {
		return true
	}
	return d.ApplicableProductIDs.ContainsAny(productIDs)
}

// MeetsMinimums reports whether the order satisfies the minimum amount and quantity
func (d *Discount) MeetsMinimums(orderAmount valueobject.Money, quantity decimal.Decimal) bool {
	if d.MinimumOrderAmount != nil && orderAmount.Amount().LessThan(*d.MinimumOrderAmount) {
		return false
	}
	if d.MinimumQuantity != nil && quantity.LessThan(*d.MinimumQuantity) {
		return false
	}
	return true
}

// HasRemainingUses reports whether the global usage cap still has headroom.
// A nil UsageLimit means unlimited.
func (d *Discount) HasRemainingUses() bool {
	if d.UsageLimit == nil {
		return true
	}
	return d.UsageCount < *d.UsageLimit
}

// RemainingUses returns how many redemptions remain, nil when unlimited
func (d *Discount) RemainingUses() *int {
	if d.UsageLimit == nil {
		return nil
	}
	remaining := *d.UsageLimit - d.UsageCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// Calculate returns the discount amount for the given order amount.
// The result is clamped to MaximumDiscountAmount when set, and never
// exceeds the amount it applies against.
func (d *Discount) Calculate(orderAmount valueobject.Money) (valueobject.Money, error) {
	if orderAmount.IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_AMOUNT", "Order amount cannot be negative")
	}

	var amount decimal.Decimal
	switch d.ValueType {
	case ValueTypePercentage:
		amount = orderAmount.Amount().Mul(d.Value).Div(decimal.NewFromInt(100))
	case ValueTypeFixedAmount:
		amount = d.Value
	default:
		return valueobject.Money{}, shared.NewDomainError("INVALID_VALUE_TYPE", "Invalid discount value type")
	}

	if d.MaximumDiscountAmount != nil && amount.GreaterThan(*d.MaximumDiscountAmount) {
		amount = *d.MaximumDiscountAmount
	}
	if amount.GreaterThan(orderAmount.Amount()) {
		amount = orderAmount.Amount()
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return valueobject.NewMoney(amount, orderAmount.Currency())
}
