package models

import (
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceListModel is the persistence model for the PriceList aggregate root.
type PriceListModel struct {
	TenantAggregateModel
	Code       string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_price_list_tenant_code,priority:2"`
	Name       string               `gorm:"type:varchar(200);not null"`
	Currency   string               `gorm:"type:varchar(3);not null;default:'USD'"`
	Priority   int                  `gorm:"not null;default:0;index"`
	CustomerID *uuid.UUID           `gorm:"type:uuid;index"`
	ValidFrom  *time.Time           `gorm:"index"`
	ValidTo    *time.Time           `gorm:"index"`
	IsActive   bool                 `gorm:"not null;default:true;index"`
	Items      []PriceListItemModel `gorm:"foreignKey:PriceListID;references:ID"`
}

// TableName returns the table name for GORM
func (PriceListModel) TableName() string {
	return "price_lists"
}

// ToDomain converts the persistence model to a domain PriceList entity.
func (m *PriceListModel) ToDomain() *pricing.PriceList {
	list := &pricing.PriceList{
		Code:       m.Code,
		Name:       m.Name,
		Currency:   valueobject.Currency(m.Currency),
		Priority:   m.Priority,
		CustomerID: m.CustomerID,
		ValidFrom:  m.ValidFrom,
		ValidTo:    m.ValidTo,
		IsActive:   m.IsActive,
		Items:      make([]pricing.PriceListItem, len(m.Items)),
	}
	m.PopulateTenantAggregateRoot(&list.TenantAggregateRoot)
	for i, item := range m.Items {
		list.Items[i] = *item.ToDomain()
	}
	return list
}

// FromDomain populates the persistence model from a domain PriceList entity.
func (m *PriceListModel) FromDomain(l *pricing.PriceList) {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.Code = l.Code
	m.Name = l.Name
	m.Currency = l.Currency.String()
	m.Priority = l.Priority
	m.CustomerID = l.CustomerID
	m.ValidFrom = l.ValidFrom
	m.ValidTo = l.ValidTo
	m.IsActive = l.IsActive
	m.Items = make([]PriceListItemModel, len(l.Items))
	for i := range l.Items {
		m.Items[i].FromDomain(&l.Items[i])
	}
}

// PriceListItemModel is the persistence model for one price list row.
type PriceListItemModel struct {
	BaseModel
	PriceListID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Price       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	MinQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MaxQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (PriceListItemModel) TableName() string {
	return "price_list_items"
}

// ToDomain converts the persistence model to a domain PriceListItem.
func (m *PriceListItemModel) ToDomain() *pricing.PriceListItem {
	return &pricing.PriceListItem{
		ID:          m.ID,
		PriceListID: m.PriceListID,
		ProductID:   m.ProductID,
		Price:       m.Price,
		MinQuantity: m.MinQuantity,
		MaxQuantity: m.MaxQuantity,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PriceListItem.
func (m *PriceListItemModel) FromDomain(i *pricing.PriceListItem) {
	m.ID = i.ID
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
	m.PriceListID = i.PriceListID
	m.ProductID = i.ProductID
	m.Price = i.Price
	m.MinQuantity = i.MinQuantity
	m.MaxQuantity = i.MaxQuantity
}

// DiscountModel is the persistence model for the Discount aggregate root.
// UsageCount is maintained inside redemption transactions with a guarded
// single-statement increment; writes through Save never touch it.
type DiscountModel struct {
	TenantAggregateModel
	Code                  string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_discount_tenant_code,priority:2"`
	Name                  string           `gorm:"type:varchar(200);not null"`
	Kind                  string           `gorm:"type:varchar(20);not null;index"`
	ValueType             string           `gorm:"type:varchar(20);not null"`
	Value                 decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Currency              string           `gorm:"type:varchar(3);not null;default:'USD'"`
	IsStackable           bool             `gorm:"not null;default:true"`
	Priority              int              `gorm:"not null;default:0;index"`
	MinimumOrderAmount    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MinimumQuantity       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MaximumDiscountAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ApplicableProductIDs  pricing.UUIDList `gorm:"type:jsonb;not null;default:'[]'"`
	ApplicableCustomerIDs pricing.UUIDList `gorm:"type:jsonb;not null;default:'[]'"`
	ValidFrom             *time.Time       `gorm:"index"`
	ValidTo               *time.Time       `gorm:"index"`
	IsActive              bool             `gorm:"not null;default:true;index"`
	UsageLimit            *int
	UsageCount            int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "discounts"
}

// ToDomain converts the persistence model to a domain Discount entity.
func (m *DiscountModel) ToDomain() *pricing.Discount {
	d := &pricing.Discount{
		Code:                  m.Code,
		Name:                  m.Name,
		Kind:                  pricing.DiscountKind(m.Kind),
		ValueType:             pricing.DiscountValueType(m.ValueType),
		Value:                 m.Value,
		Currency:              valueobject.Currency(m.Currency),
		IsStackable:           m.IsStackable,
		Priority:              m.Priority,
		MinimumOrderAmount:    m.MinimumOrderAmount,
		MinimumQuantity:       m.MinimumQuantity,
		MaximumDiscountAmount: m.MaximumDiscountAmount,
		ApplicableProductIDs:  m.ApplicableProductIDs,
		ApplicableCustomerIDs: m.ApplicableCustomerIDs,
		ValidFrom:             m.ValidFrom,
		ValidTo:               m.ValidTo,
		IsActive:              m.IsActive,
		UsageLimit:            m.UsageLimit,
		UsageCount:            m.UsageCount,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain Discount entity.
func (m *DiscountModel) FromDomain(d *pricing.Discount) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Code = d.Code
	m.Name = d.Name
	m.Kind = d.Kind.String()
	m.ValueType = d.ValueType.String()
	m.Value = d.Value
	m.Currency = d.Currency.String()
	m.IsStackable = d.IsStackable
	m.Priority = d.Priority
	m.MinimumOrderAmount = d.MinimumOrderAmount
	m.MinimumQuantity = d.MinimumQuantity
	m.MaximumDiscountAmount = d.MaximumDiscountAmount
	m.ApplicableProductIDs = d.ApplicableProductIDs
	m.ApplicableCustomerIDs = d.ApplicableCustomerIDs
	m.ValidFrom = d.ValidFrom
	m.ValidTo = d.ValidTo
	m.IsActive = d.IsActive
	m.UsageLimit = d.UsageLimit
	m.UsageCount = d.UsageCount
}

// PromotionModel is the persistence model for the Promotion aggregate root.
type PromotionModel struct {
	TenantAggregateModel
	Code                  string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_promotion_tenant_code,priority:2"`
	Name                  string           `gorm:"type:varchar(200);not null"`
	Type                  string           `gorm:"type:varchar(30);not null"`
	Value                 decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Currency              string           `gorm:"type:varchar(3);not null;default:'USD'"`
	IsStackable           bool             `gorm:"not null;default:true"`
	IsExclusive           bool             `gorm:"not null;default:false"`
	Priority              int              `gorm:"not null;default:0;index"`
	Status                string           `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	MinimumOrderAmount    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MinimumQuantity       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MaximumDiscountAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ApplicableProductIDs  pricing.UUIDList `gorm:"type:jsonb;not null;default:'[]'"`
	ApplicableCustomerIDs pricing.UUIDList `gorm:"type:jsonb;not null;default:'[]'"`
	FreeProductID         *uuid.UUID       `gorm:"type:uuid"`
	FreeProductQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ValidFrom             *time.Time       `gorm:"index"`
	ValidTo               *time.Time       `gorm:"index"`
	IsActive              bool             `gorm:"not null;default:true;index"`
	UsageLimit            *int
	UsageLimitPerCustomer *int
	TotalUsageCount       int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ToDomain converts the persistence model to a domain Promotion entity.
func (m *PromotionModel) ToDomain() *pricing.Promotion {
	p := &pricing.Promotion{
		Code:                  m.Code,
		Name:                  m.Name,
		Type:                  pricing.PromotionType(m.Type),
		Value:                 m.Value,
		Currency:              valueobject.Currency(m.Currency),
		IsStackable:           m.IsStackable,
		IsExclusive:           m.IsExclusive,
		Priority:              m.Priority,
		Status:                pricing.PromotionStatus(m.Status),
		MinimumOrderAmount:    m.MinimumOrderAmount,
		MinimumQuantity:       m.MinimumQuantity,
		MaximumDiscountAmount: m.MaximumDiscountAmount,
		ApplicableProductIDs:  m.ApplicableProductIDs,
		ApplicableCustomerIDs: m.ApplicableCustomerIDs,
		FreeProductID:         m.FreeProductID,
		FreeProductQuantity:   m.FreeProductQuantity,
		ValidFrom:             m.ValidFrom,
		ValidTo:               m.ValidTo,
		IsActive:              m.IsActive,
		UsageLimit:            m.UsageLimit,
		UsageLimitPerCustomer: m.UsageLimitPerCustomer,
		TotalUsageCount:       m.TotalUsageCount,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Promotion entity.
func (m *PromotionModel) FromDomain(p *pricing.Promotion) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Type = p.Type.String()
	m.Value = p.Value
	m.Currency = p.Currency.String()
	m.IsStackable = p.IsStackable
	m.IsExclusive = p.IsExclusive
	m.Priority = p.Priority
	m.Status = p.Status.String()
	m.MinimumOrderAmount = p.MinimumOrderAmount
	m.MinimumQuantity = p.MinimumQuantity
	m.MaximumDiscountAmount = p.MaximumDiscountAmount
	m.ApplicableProductIDs = p.ApplicableProductIDs
	m.ApplicableCustomerIDs = p.ApplicableCustomerIDs
	m.FreeProductID = p.FreeProductID
	m.FreeProductQuantity = p.FreeProductQuantity
	m.ValidFrom = p.ValidFrom
	m.ValidTo = p.ValidTo
	m.IsActive = p.IsActive
	m.UsageLimit = p.UsageLimit
	m.UsageLimitPerCustomer = p.UsageLimitPerCustomer
	m.TotalUsageCount = p.TotalUsageCount
}

// PromotionUsageModel is the persistence model for per-customer redemption
// counters. One row per (tenant, promotion, customer); increments go through
// an upsert guarded by the per-customer cap.
type PromotionUsageModel struct {
	TenantAggregateModel
	PromotionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_usage_key,priority:2"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_usage_key,priority:3"`
	UsageCount  int        `gorm:"not null;default:0"`
	LastOrderID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PromotionUsageModel) TableName() string {
	return "promotion_usages"
}

// ToDomain converts the persistence model to a domain PromotionUsage entity.
func (m *PromotionUsageModel) ToDomain() *pricing.PromotionUsage {
	u := &pricing.PromotionUsage{
		PromotionID: m.PromotionID,
		CustomerID:  m.CustomerID,
		UsageCount:  m.UsageCount,
		LastOrderID: m.LastOrderID,
	}
	m.PopulateTenantAggregateRoot(&u.TenantAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain PromotionUsage entity.
func (m *PromotionUsageModel) FromDomain(u *pricing.PromotionUsage) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.PromotionID = u.PromotionID
	m.CustomerID = u.CustomerID
	m.UsageCount = u.UsageCount
	m.LastOrderID = u.LastOrderID
}

// DiscountRedemptionModel is one committed discount redemption. Rows are
// append-only; the unique key doubles as the transactional idempotency guard
// for MarkUsed, so a replayed commit conflicts instead of double-counting.
type DiscountRedemptionModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt  time.Time `gorm:"not null"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_discount_redemption_key,priority:1"`
	DiscountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_discount_redemption_key,priority:2"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_discount_redemption_key,priority:3"`
}

// TableName returns the table name for GORM
func (DiscountRedemptionModel) TableName() string {
	return "discount_redemptions"
}

// PromotionRedemptionModel is one committed promotion redemption, unique per
// (tenant, promotion, order). CustomerID is kept for the audit trail and is
// nil when the redemption carried no customer.
type PromotionRedemptionModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	CreatedAt   time.Time  `gorm:"not null"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_redemption_key,priority:1"`
	PromotionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_redemption_key,priority:2"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_redemption_key,priority:3"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PromotionRedemptionModel) TableName() string {
	return "promotion_redemptions"
}
