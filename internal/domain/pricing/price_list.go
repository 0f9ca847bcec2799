package pricing

import (
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceListItem is a single product price inside a price list.
// Min/MaxQuantity bound the quantity break this row applies to;
// nil means unbounded on that side.
type PriceListItem struct {
	ID          uuid.UUID
	PriceListID uuid.UUID
	ProductID   uuid.UUID
	Price       decimal.Decimal
	MinQuantity *decimal.Decimal
	MaxQuantity *decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AppliesTo reports whether this row covers the given product at the given quantity
func (i *PriceListItem) AppliesTo(productID uuid.UUID, quantity decimal.Decimal) bool {
	if i.ProductID != productID {
		return false
	}
	if i.MinQuantity != nil && quantity.LessThan(*i.MinQuantity) {
		return false
	}
	if i.MaxQuantity != nil && quantity.GreaterThan(*i.MaxQuantity) {
		return false
	}
	return true
}

// PriceList is a named set of product prices with a validity window.
// A list with a CustomerID is customer-scoped; a nil CustomerID makes it public.
// Higher Priority wins when several lists cover the same product.
type PriceList struct {
	shared.TenantAggregateRoot
	Code       string
	Name       string
	Currency   valueobject.Currency
	Priority   int
	CustomerID *uuid.UUID
	ValidFrom  *time.Time
	ValidTo    *time.Time
	IsActive   bool
	Items      []PriceListItem
}

// NewPriceList creates a new price list
func NewPriceList(tenantID uuid.UUID, code, name string, currency valueobject.Currency) (*PriceList, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Price list code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Price list name cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Price list currency cannot be empty")
	}

	return &PriceList{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Currency:            currency,
		IsActive:            true,
	}, nil
}

// AddItem appends a product price row to the list
func (p *PriceList) AddItem(productID uuid.UUID, price decimal.Decimal, minQty, maxQty *decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if minQty != nil && maxQty != nil && maxQty.LessThan(*minQty) {
		return shared.NewDomainError("INVALID_QUANTITY_RANGE", "Maximum quantity cannot be below minimum quantity")
	}

	now := time.Now()
	p.Items = append(p.Items, PriceListItem{
		ID:          uuid.New(),
		PriceListID: p.ID,
		ProductID:   productID,
		Price:       price,
		MinQuantity: minQty,
		MaxQuantity: maxQty,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	p.UpdatedAt = now
	return nil
}

// IsValidAt reports whether the list is active and inside its validity window
func (p *PriceList) IsValidAt(t time.Time) bool {
	if !p.IsActive {
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

// MatchesCurrency reports whether the list prices in the given currency
func (p *PriceList) MatchesCurrency(currency valueobject.Currency) bool {
	return p.Currency == currency
}

// IsCustomerScoped reports whether the list is bound to a specific customer
func (p *PriceList) IsCustomerScoped() bool {
	return p.CustomerID != nil
}

// PriceFor returns the price for a product at a quantity.
// When several quantity breaks cover the quantity, the first matching
// row wins; rows are expected ordered by MinQuantity ascending.
func (p *PriceList) PriceFor(productID uuid.UUID, quantity decimal.Decimal) (valueobject.Money, bool) {
	for i := range p.Items {
		if p.Items[i].AppliesTo(productID, quantity) {
			price, err := valueobject.NewMoney(p.Items[i].Price, p.Currency)
			if err != nil {
				return valueobject.Money{}, false
			}
			return price, true
		}
	}
	return valueobject.Money{}, false
}
