package models

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductModel is the read model over the product table the engine consults
// for catalog fallback prices. The pricing service never writes products;
// ownership stays with the catalog service that shares the schema.
type ProductModel struct {
	TenantAggregateModel
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'"`
	IsActive  bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToCatalogProduct converts the read model to the engine's catalog view.
func (m *ProductModel) ToCatalogProduct() *pricing.CatalogProduct {
	return &pricing.CatalogProduct{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		UnitPrice: m.UnitPrice,
		Currency:  valueobject.Currency(m.Currency),
		IsActive:  m.IsActive,
	}
}
