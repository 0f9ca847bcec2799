package pricing

import (
	"context"
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrUsageExhausted is returned by the usage ledger when a conditional
// increment finds the cap already reached. Callers translate it into the
// coupon- or promotion-specific code for their surface.
var ErrUsageExhausted = shared.NewDomainError("USAGE_LIMIT_EXCEEDED", "Usage limit has been reached")

// ErrAlreadyRedeemed is returned by the usage ledger when a redemption row
// for the same order already exists. Commit operations treat it as a replay
// and report success without touching any counter.
var ErrAlreadyRedeemed = shared.NewDomainError("REDEMPTION_ALREADY_RECORDED", "Redemption has already been recorded for this order")

// PriceListRepository defines the interface for price list persistence
type PriceListRepository interface {
	// FindByIDForTenant finds a price list by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PriceList, error)

	// FindByCodeForTenant finds a price list by code for a tenant
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*PriceList, error)

	// FindForCustomer finds active customer-scoped lists in the given currency
	// valid at the given time, ordered by priority descending
	FindForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, at time.Time) ([]PriceList, error)

	// FindPublic finds active public lists in the given currency valid at the
	// given time, ordered by priority descending
	FindPublic(ctx context.Context, tenantID uuid.UUID, currency valueobject.Currency, at time.Time) ([]PriceList, error)

	// FindAllForTenant finds all price lists for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PriceList, error)

	// Save creates or updates a price list with its items
	Save(ctx context.Context, list *PriceList) error

	// CountForTenant counts price lists for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// DiscountRepository defines the interface for discount persistence
type DiscountRepository interface {
	// FindByIDForTenant finds a discount by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Discount, error)

	// FindByCodeForTenant finds a discount by code for a tenant
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*Discount, error)

	// FindAutomatic finds active automatic discounts valid at the given time,
	// ordered by priority ascending
	FindAutomatic(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]Discount, error)

	// FindAllForTenant finds all discounts for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Discount, error)

	// Save creates or updates a discount
	Save(ctx context.Context, discount *Discount) error

	// IncrementUsage atomically increments the global usage counter, guarded
	// by the usage limit in a single statement. Returns shared.ErrNotFound
	// when the discount does not exist and ErrUsageExhausted when the cap
	// is already reached.
	IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error

	// RecordRedemption inserts one redemption audit row. The row is unique
	// per (tenant, discount, order); a second insert for the same order
	// returns ErrAlreadyRedeemed, which is how replayed commits are detected
	// inside the transaction that also increments the counter.
	RecordRedemption(ctx context.Context, tenantID, id, orderID uuid.UUID) error

	// CountForTenant counts discounts for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PromotionRepository defines the interface for promotion persistence
type PromotionRepository interface {
	// FindByIDForTenant finds a promotion by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Promotion, error)

	// FindByCodeForTenant finds a promotion by code for a tenant
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*Promotion, error)

	// FindActive finds active promotions valid at the given time, ordered by
	// priority descending
	FindActive(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]Promotion, error)

	// FindAllForTenant finds all promotions for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Promotion, error)

	// Save creates or updates a promotion
	Save(ctx context.Context, promotion *Promotion) error

	// IncrementUsage atomically increments the global usage counter, guarded
	// by the usage limit in a single statement. Returns shared.ErrNotFound
	// when the promotion does not exist and ErrUsageExhausted when the cap
	// is already reached.
	IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts promotions for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PromotionUsageRepository defines the interface for per-customer usage tracking
type PromotionUsageRepository interface {
	// GetUsageCount returns how many times the customer has redeemed the
	// promotion. Returns 0 when no record exists.
	GetUsageCount(ctx context.Context, tenantID, promotionID, customerID uuid.UUID) (int, error)

	// IncrementUsage upserts the per-customer counter with the cap guard in
	// the conflict action. Returns ErrUsageExhausted when the per-customer
	// limit is already reached.
	IncrementUsage(ctx context.Context, tenantID, promotionID, customerID, orderID uuid.UUID, limit *int) error

	// RecordRedemption inserts one redemption audit row, unique per
	// (tenant, promotion, order). Returns ErrAlreadyRedeemed on a replay.
	// CustomerID is nil for redemptions committed without a customer.
	RecordRedemption(ctx context.Context, tenantID, promotionID, orderID uuid.UUID, customerID *uuid.UUID) error

	// FindByPromotion lists usage records for a promotion (audit)
	FindByPromotion(ctx context.Context, tenantID, promotionID uuid.UUID, filter shared.Filter) ([]PromotionUsage, error)
}

// CatalogProduct is the read-only product view the engine consumes as the
// price source of last resort before accepting a client price.
type CatalogProduct struct {
	ID        uuid.UUID
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Currency  valueobject.Currency
	IsActive  bool
}

// ProductCatalog is the read-only contract onto the product domain
type ProductCatalog interface {
	// FindByIDForTenant returns the catalog entry for a product.
	// Returns shared.ErrNotFound for unknown products.
	FindByIDForTenant(ctx context.Context, tenantID, productID uuid.UUID) (*CatalogProduct, error)
}

// Actor is the authenticated caller as seen by access policies
type Actor struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	Roles        []string
	TerritoryIDs []uuid.UUID
}

// OrderRef is the slice of an order that access decisions need
type OrderRef struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	CustomerID    *uuid.UUID
	SalespersonID *uuid.UUID
	TerritoryID   *uuid.UUID
}

// OrderAccessPolicy decides whether an actor may read or change an order.
// The engine consumes it when resolving adjustments on behalf of a caller.
type OrderAccessPolicy interface {
	// CanAccessOrder reports whether the actor may read the order
	CanAccessOrder(actor Actor, order OrderRef) bool

	// CanModifyOrder reports whether the actor may change the order
	CanModifyOrder(actor Actor, order OrderRef) bool

	// IsManager reports whether the actor holds a manager role
	IsManager(actor Actor) bool

	// TerritoryIDs returns the territories the actor may operate in
	TerritoryIDs(actor Actor) []uuid.UUID
}
