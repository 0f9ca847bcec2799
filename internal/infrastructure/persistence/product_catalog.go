package persistence

import (
	"context"
	"errors"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductCatalog implements pricing.ProductCatalog as a read-only view
// over the shared product table
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GormProductCatalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// FindByIDForTenant returns the catalog entry for a product
func (c *GormProductCatalog) FindByIDForTenant(ctx context.Context, tenantID, productID uuid.UUID) (*pricing.CatalogProduct, error) {
	var model models.ProductModel
	if err := c.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToCatalogProduct(), nil
}

// Ensure GormProductCatalog implements ProductCatalog
var _ pricing.ProductCatalog = (*GormProductCatalog)(nil)
