package pricing

import (
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource records where a resolved price came from
type PriceSource string

const (
	PriceSourceCustomerList PriceSource = "CUSTOMER_PRICE_LIST"
	PriceSourcePublicList   PriceSource = "PUBLIC_PRICE_LIST"
	PriceSourceCatalog      PriceSource = "CATALOG"
	PriceSourceClient       PriceSource = "CLIENT"
)

// String returns the string representation of PriceSource
func (s PriceSource) String() string {
	return string(s)
}

// PriceValidationResult is the outcome of resolving a single line price.
// On success Price carries the SYSTEM price, never the client's.
type PriceValidationResult struct {
	ProductID        uuid.UUID
	Price            valueobject.Money
	Source           PriceSource
	PriceListID      *uuid.UUID
	ClientPrice      valueobject.Money
	DeviationPercent decimal.Decimal
}

// IsTrusted reports whether the price came from a system source rather
// than being accepted from the client for an unlisted product
func (r *PriceValidationResult) IsTrusted() bool {
	return r.Source != PriceSourceClient
}

// DiscountValidationResult is the outcome of validating one discount code.
// It is a pure computation; nothing is persisted until MarkUsed.
type DiscountValidationResult struct {
	DiscountID            uuid.UUID
	Code                  string
	Kind                  DiscountKind
	ValueType             DiscountValueType
	Value                 decimal.Decimal
	IsStackable           bool
	Priority              int
	MaximumDiscountAmount *decimal.Decimal
	DiscountAmount        valueobject.Money
	RemainingUses         *int
}

// PromotionValidationResult is the outcome of validating one promotion.
// FreeItem is set only for buy-X-get-Y promotions.
type PromotionValidationResult struct {
	PromotionID           uuid.UUID
	Code                  string
	Type                  PromotionType
	Value                 decimal.Decimal
	IsStackable           bool
	IsExclusive           bool
	Priority              int
	MaximumDiscountAmount *decimal.Decimal
	DiscountAmount        valueobject.Money
	FreeItem              *FreeItem
	RemainingUses         *int
}
