package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDiscountRepository implements pricing.DiscountRepository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByIDForTenant finds a discount by ID within a tenant
func (r *GormDiscountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCodeForTenant finds a discount by code for a tenant
func (r *GormDiscountRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAutomatic finds active automatic discounts valid at the given time,
// ordered by priority ascending
func (r *GormDiscountRepository) FindAutomatic(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]pricing.Discount, error) {
	var found []models.DiscountModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND is_active = ?", tenantID, pricing.DiscountKindAutomatic.String(), true).
		Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_to IS NULL OR valid_to >= ?)", at, at).
		Order("priority ASC, created_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	discounts := make([]pricing.Discount, len(found))
	for i := range found {
		discounts[i] = *found[i].ToDomain()
	}
	return discounts, nil
}

// FindAllForTenant finds all discounts for a tenant with filtering
func (r *GormDiscountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Discount, error) {
	var found []models.DiscountModel
	query := applyDiscountFilter(
		r.db.WithContext(ctx).Model(&models.DiscountModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}

	discounts := make([]pricing.Discount, len(found))
	for i := range found {
		discounts[i] = *found[i].ToDomain()
	}
	return discounts, nil
}

// Save creates or updates a discount. The usage counter is owned by
// IncrementUsage and deliberately left out of updates.
func (r *GormDiscountRepository) Save(ctx context.Context, discount *pricing.Discount) error {
	var model models.DiscountModel
	model.FromDomain(discount)

	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.DiscountModel{}).
		Where("id = ?", model.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing == 0 {
		return r.db.WithContext(ctx).Create(&model).Error
	}
	return r.db.WithContext(ctx).Model(&models.DiscountModel{}).
		Where("id = ?", model.ID).
		Omit("usage_count").
		Select("*").
		Updates(&model).Error
}

// IncrementUsage atomically increments the usage counter under its cap.
// The guard rides in the WHERE clause so concurrent redemptions of the
// last slot race on the database row, not in application memory.
func (r *GormDiscountRepository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.DiscountModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from an exhausted cap
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.DiscountModel{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return pricing.ErrUsageExhausted
	}
	return nil
}

// RecordRedemption appends one redemption audit row. ON CONFLICT DO NOTHING
// on the (tenant, discount, order) key turns a replayed commit into zero
// affected rows, reported as ErrAlreadyRedeemed.
func (r *GormDiscountRepository) RecordRedemption(ctx context.Context, tenantID, id, orderID uuid.UUID) error {
	row := models.DiscountRedemptionModel{
		ID:         uuid.New(),
		CreatedAt:  time.Now(),
		TenantID:   tenantID,
		DiscountID: id,
		OrderID:    orderID,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "discount_id"}, {Name: "order_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pricing.ErrAlreadyRedeemed
	}
	return nil
}

// CountForTenant counts discounts for a tenant
func (r *GormDiscountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyDiscountFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.DiscountModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyDiscountFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyDiscountFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DiscountSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func applyDiscountFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "is_stackable":
			query = query.Where("is_stackable = ?", value)
		}
	}
	return query
}

// Ensure GormDiscountRepository implements DiscountRepository
var _ pricing.DiscountRepository = (*GormDiscountRepository)(nil)
