package pricing

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Price resolution DTOs ====================

// ResolvePriceRequest asks the engine to confirm a client-proposed price
type ResolvePriceRequest struct {
	ProductID   uuid.UUID            `json:"product_id" binding:"required"`
	ClientPrice decimal.Decimal      `json:"client_price"`
	Quantity    decimal.Decimal      `json:"quantity" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required,currency"`
	CustomerID  *uuid.UUID           `json:"customer_id"`
}

// PriceResolutionResponse carries the resolved SYSTEM price and its provenance
type PriceResolutionResponse struct {
	ProductID        uuid.UUID         `json:"product_id"`
	Price            valueobject.Money `json:"price"`
	Source           string            `json:"source"`
	PriceListID      *uuid.UUID        `json:"price_list_id,omitempty"`
	DeviationPercent decimal.Decimal   `json:"deviation_percent"`
	Trusted          bool              `json:"trusted"`
}

// ToPriceResolutionResponse converts a domain result to a response
func ToPriceResolutionResponse(r *pricing.PriceValidationResult) PriceResolutionResponse {
	return PriceResolutionResponse{
		ProductID:        r.ProductID,
		Price:            r.Price,
		Source:           r.Source.String(),
		PriceListID:      r.PriceListID,
		DeviationPercent: r.DeviationPercent,
		Trusted:          r.IsTrusted(),
	}
}

// ==================== Discount DTOs ====================

// ValidateDiscountRequest validates a single coupon code against an order
type ValidateDiscountRequest struct {
	Code        string               `json:"code" binding:"required,min=1,max=50"`
	OrderAmount decimal.Decimal      `json:"order_amount" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required,currency"`
	Quantity    decimal.Decimal      `json:"quantity"`
	CustomerID  *uuid.UUID           `json:"customer_id"`
	ProductIDs  []uuid.UUID          `json:"product_ids"`
}

// ValidateDiscountsRequest validates several coupon codes together
type ValidateDiscountsRequest struct {
	Codes       []string             `json:"codes" binding:"required,min=1,max=10"`
	OrderAmount decimal.Decimal      `json:"order_amount" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required,currency"`
	Quantity    decimal.Decimal      `json:"quantity"`
	CustomerID  *uuid.UUID           `json:"customer_id"`
	ProductIDs  []uuid.UUID          `json:"product_ids"`
}

// DiscountValidationResponse is the outcome of validating one discount
type DiscountValidationResponse struct {
	DiscountID     uuid.UUID         `json:"discount_id"`
	Code           string            `json:"code"`
	Kind           string            `json:"kind"`
	ValueType      string            `json:"value_type"`
	Value          decimal.Decimal   `json:"value"`
	IsStackable    bool              `json:"is_stackable"`
	Priority       int               `json:"priority"`
	DiscountAmount valueobject.Money `json:"discount_amount"`
	RemainingUses  *int              `json:"remaining_uses,omitempty"`
}

// MultiDiscountValidationResponse is the combined outcome of several codes
type MultiDiscountValidationResponse struct {
	Results       []DiscountValidationResponse `json:"results"`
	TotalDiscount valueobject.Money            `json:"total_discount"`
	FinalAmount   valueobject.Money            `json:"final_amount"`
}

// ToDiscountValidationResponse converts a domain result to a response
func ToDiscountValidationResponse(r *pricing.DiscountValidationResult) DiscountValidationResponse {
	return DiscountValidationResponse{
		DiscountID:     r.DiscountID,
		Code:           r.Code,
		Kind:           r.Kind.String(),
		ValueType:      r.ValueType.String(),
		Value:          r.Value,
		IsStackable:    r.IsStackable,
		Priority:       r.Priority,
		DiscountAmount: r.DiscountAmount,
		RemainingUses:  r.RemainingUses,
	}
}

// ==================== Promotion DTOs ====================

// ValidatePromotionRequest validates a promotion code against an order
type ValidatePromotionRequest struct {
	Code        string               `json:"code" binding:"required,min=1,max=50"`
	OrderAmount decimal.Decimal      `json:"order_amount" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required,currency"`
	Quantity    decimal.Decimal      `json:"quantity"`
	CustomerID  *uuid.UUID           `json:"customer_id"`
	ProductIDs  []uuid.UUID          `json:"product_ids"`
}

// PromotionValidationResponse is the outcome of validating one promotion
type PromotionValidationResponse struct {
	PromotionID    uuid.UUID         `json:"promotion_id"`
	Code           string            `json:"code"`
	Type           string            `json:"type"`
	Value          decimal.Decimal   `json:"value"`
	IsStackable    bool              `json:"is_stackable"`
	IsExclusive    bool              `json:"is_exclusive"`
	Priority       int               `json:"priority"`
	DiscountAmount valueobject.Money `json:"discount_amount"`
	FreeItem       *pricing.FreeItem `json:"free_item,omitempty"`
	RemainingUses  *int              `json:"remaining_uses,omitempty"`
}

// ToPromotionValidationResponse converts a domain result to a response
func ToPromotionValidationResponse(r *pricing.PromotionValidationResult) PromotionValidationResponse {
	return PromotionValidationResponse{
		PromotionID:    r.PromotionID,
		Code:           r.Code,
		Type:           r.Type.String(),
		Value:          r.Value,
		IsStackable:    r.IsStackable,
		IsExclusive:    r.IsExclusive,
		Priority:       r.Priority,
		DiscountAmount: r.DiscountAmount,
		FreeItem:       r.FreeItem,
		RemainingUses:  r.RemainingUses,
	}
}

// ==================== Order context ====================

// OrderContext describes an order for applicability matching
type OrderContext struct {
	OrderAmount decimal.Decimal      `json:"order_amount" binding:"required"`
	Currency    valueobject.Currency `json:"currency" binding:"required,currency"`
	Quantity    decimal.Decimal      `json:"quantity"`
	CustomerID  *uuid.UUID           `json:"customer_id"`
	ProductIDs  []uuid.UUID          `json:"product_ids"`
}

// ==================== Order adjustment resolution ====================

// AdjustmentLineInput is one order line submitted for price resolution
type AdjustmentLineInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ClientPrice decimal.Decimal `json:"client_price"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// ResolveOrderAdjustmentsRequest runs the full resolution pipeline for an
// order draft: line prices, coupon codes, promotion codes, automatic
// discounts and the stacking combinator.
type ResolveOrderAdjustmentsRequest struct {
	Currency         valueobject.Currency  `json:"currency" binding:"required,currency"`
	Lines            []AdjustmentLineInput `json:"lines" binding:"required,min=1"`
	CouponCodes      []string              `json:"coupon_codes"`
	PromotionCodes   []string              `json:"promotion_codes"`
	CustomerID       *uuid.UUID            `json:"customer_id"`
	IncludeAutomatic bool                  `json:"include_automatic"`
}

// AdjustmentLineResult is one resolved order line
type AdjustmentLineResult struct {
	ProductID  uuid.UUID         `json:"product_id"`
	UnitPrice  valueobject.Money `json:"unit_price"`
	Quantity   decimal.Decimal   `json:"quantity"`
	LineAmount valueobject.Money `json:"line_amount"`
	Source     string            `json:"source"`
}

// OrderAdjustmentPlanResponse is the settled adjustment plan. The caller's
// order transaction persists the order and then commits usage via MarkUsed.
type OrderAdjustmentPlanResponse struct {
	Lines            []AdjustmentLineResult      `json:"lines"`
	Subtotal         valueobject.Money           `json:"subtotal"`
	Applied          []pricing.AppliedAdjustment `json:"applied"`
	TotalDiscount    valueobject.Money           `json:"total_discount"`
	FinalAmount      valueobject.Money           `json:"final_amount"`
	FreeItems        []pricing.FreeItem          `json:"free_items,omitempty"`
	ExclusiveApplied bool                        `json:"exclusive_applied"`
}
