package pricing

import (
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionType determines what benefit a promotion grants
type PromotionType string

const (
	PromotionTypePercentage PromotionType = "PERCENTAGE_DISCOUNT"
	PromotionTypeFixed      PromotionType = "FIXED_DISCOUNT"
	PromotionTypeBuyXGetY   PromotionType = "BUY_X_GET_Y"
)

// IsValid checks if the type is a valid PromotionType
func (t PromotionType) IsValid() bool {
	switch t {
	case PromotionTypePercentage, PromotionTypeFixed, PromotionTypeBuyXGetY:
		return true
	}
	return false
}

// String returns the string representation of PromotionType
func (t PromotionType) String() string {
	return string(t)
}

// PromotionStatus represents the lifecycle status of a promotion
type PromotionStatus string

const (
	PromotionStatusActive    PromotionStatus = "ACTIVE"
	PromotionStatusScheduled PromotionStatus = "SCHEDULED"
	PromotionStatusExpired   PromotionStatus = "EXPIRED"
	PromotionStatusSuspended PromotionStatus = "SUSPENDED"
)

// IsValid checks if the status is a valid PromotionStatus
func (s PromotionStatus) IsValid() bool {
	switch s {
	case PromotionStatusActive, PromotionStatusScheduled, PromotionStatusExpired, PromotionStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of PromotionStatus
func (s PromotionStatus) String() string {
	return string(s)
}

// FreeItem is goods granted by a buy-X-get-Y promotion. The engine only
// reports it; adding the line to the order is the caller's job.
type FreeItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Promotion is a marketing campaign benefit. Unlike discounts, promotions
// can be exclusive (suppressing every other adjustment) and carry a
// per-customer redemption cap alongside the global one.
//
// Priority orders stacking for promotions: HIGHER priority values apply
// EARLIER. Discounts use the opposite ordering; see Discount.
type Promotion struct {
	shared.TenantAggregateRoot
	Code                  string
	Name                  string
	Type                  PromotionType
	Value                 decimal.Decimal
	Currency              valueobject.Currency
	IsStackable           bool
	IsExclusive           bool
	Priority              int
	Status                PromotionStatus
	MinimumOrderAmount    *decimal.Decimal
	MinimumQuantity       *decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	ApplicableProductIDs  UUIDList
	ApplicableCustomerIDs UUIDList
	FreeProductID         *uuid.UUID
	FreeProductQuantity   decimal.Decimal
	ValidFrom             *time.Time
	ValidTo               *time.Time
	IsActive              bool
	UsageLimit            *int
	UsageLimitPerCustomer *int
	TotalUsageCount       int
}

// NewPromotion creates a new promotion
func NewPromotion(tenantID uuid.UUID, code, name string, promoType PromotionType, value decimal.Decimal) (*Promotion, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Promotion code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Promotion name cannot be empty")
	}
	if !promoType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROMOTION_TYPE", "Invalid promotion type")
	}
	if promoType != PromotionTypeBuyXGetY && value.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Promotion value must be positive")
	}
	if promoType == PromotionTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Percentage promotion cannot exceed 100")
	}

	return &Promotion{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                promoType,
		Value:               value,
		Currency:            valueobject.DefaultCurrency,
		IsStackable:         true,
		Status:              PromotionStatusActive,
		IsActive:            true,
	}, nil
}

// IsValidAt reports whether the promotion is redeemable at the given time.
// Both the IsActive gate and the Status lifecycle must allow it.
func (p *Promotion) IsValidAt(t time.Time) bool {
	if !p.IsActive || p.Status != PromotionStatusActive {
		return false
	}
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && t.After(*p.ValidTo) {
		return false
	}
	return true
}

// IsApplicableToCustomer reports whether the customer may redeem this promotion
func (p *Promotion) IsApplicableToCustomer(customerID *uuid.UUID) bool {
	if len(p.ApplicableCustomerIDs) == 0 {
		return true
	}
	if customerID == nil {
		return false
	}
	return p.ApplicableCustomerIDs.Contains(*customerID)
}

// IsApplicableToProducts reports whether the order's products qualify
func (p *Promotion) IsApplicableToProducts(productIDs []uuid.UUID) bool {
	if len(p.ApplicableProductIDs) == 0 {
		return true
	}
	return p.ApplicableProductIDs.ContainsAny(productIDs)
}

// MeetsMinimums reports whether the order satisfies the minimum amount and quantity
func (p *Promotion) MeetsMinimums(orderAmount valueobject.Money, quantity decimal.Decimal) bool {
	if p.MinimumOrderAmount != nil && orderAmount.Amount().LessThan(*p.MinimumOrderAmount) {
		return false
	}
	if p.MinimumQuantity != nil && quantity.LessThan(*p.MinimumQuantity) {
		return false
	}
	return true
}

// HasRemainingUses reports whether the global usage cap still has headroom
func (p *Promotion) HasRemainingUses() bool {
	if p.UsageLimit == nil {
		return true
	}
	return p.TotalUsageCount < *p.UsageLimit
}

// RemainingUses returns how many global redemptions remain, nil when unlimited
func (p *Promotion) RemainingUses() *int {
	if p.UsageLimit == nil {
		return nil
	}
	remaining := *p.UsageLimit - p.TotalUsageCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// CanBeUsedByCustomer reports whether a customer with the given prior
// redemption count is still under the per-customer cap
func (p *Promotion) CanBeUsedByCustomer(customerUsageCount int) bool {
	if p.UsageLimitPerCustomer == nil {
		return true
	}
	return customerUsageCount < *p.UsageLimitPerCustomer
}

// IsBuyXGetY reports whether the promotion grants free goods
func (p *Promotion) IsBuyXGetY() bool {
	return p.Type == PromotionTypeBuyXGetY
}

// FreeItem returns the goods granted by a buy-X-get-Y promotion, nil otherwise
func (p *Promotion) FreeItem() *FreeItem {
	if !p.IsBuyXGetY() || p.FreeProductID == nil {
		return nil
	}
	qty := p.FreeProductQuantity
	if qty.LessThanOrEqual(decimal.Zero) {
		qty = decimal.NewFromInt(1)
	}
	return &FreeItem{ProductID: *p.FreeProductID, Quantity: qty}
}

// Calculate returns the monetary benefit for the given order amount.
// Buy-X-get-Y promotions have no monetary component; their benefit is
// the FreeItem. The result is clamped to MaximumDiscountAmount when set,
// and never exceeds the amount it applies against.
func (p *Promotion) Calculate(orderAmount valueobject.Money) (valueobject.Money, error) {
	if orderAmount.IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_AMOUNT", "Order amount cannot be negative")
	}

	var amount decimal.Decimal
	switch p.Type {
	case PromotionTypePercentage:
		amount = orderAmount.Amount().Mul(p.Value).Div(decimal.NewFromInt(100))
	case PromotionTypeFixed:
		amount = p.Value
	case PromotionTypeBuyXGetY:
		amount = decimal.Zero
	default:
		return valueobject.Money{}, shared.NewDomainError("INVALID_PROMOTION_TYPE", "Invalid promotion type")
	}

	if p.MaximumDiscountAmount != nil && amount.GreaterThan(*p.MaximumDiscountAmount) {
		amount = *p.MaximumDiscountAmount
	}
	if amount.GreaterThan(orderAmount.Amount()) {
		amount = orderAmount.Amount()
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return valueobject.NewMoney(amount, orderAmount.Currency())
}
