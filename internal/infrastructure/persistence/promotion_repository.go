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
)

// GormPromotionRepository implements pricing.PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByIDForTenant finds a promotion by ID within a tenant
func (r *GormPromotionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Promotion, error) {
	var model models.PromotionModel
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

// FindByCodeForTenant finds a promotion by code for a tenant
func (r *GormPromotionRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Promotion, error) {
	var model models.PromotionModel
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

// FindActive finds active promotions valid at the given time, ordered by
// priority descending
func (r *GormPromotionRepository) FindActive(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]pricing.Promotion, error) {
	var found []models.PromotionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND status = ?", tenantID, true, pricing.PromotionStatusActive.String()).
		Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_to IS NULL OR valid_to >= ?)", at, at).
		Order("priority DESC, created_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	promotions := make([]pricing.Promotion, len(found))
	for i := range found {
		promotions[i] = *found[i].ToDomain()
	}
	return promotions, nil
}

// FindAllForTenant finds all promotions for a tenant with filtering
func (r *GormPromotionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Promotion, error) {
	var found []models.PromotionModel
	query := applyPromotionFilter(
		r.db.WithContext(ctx).Model(&models.PromotionModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}

	promotions := make([]pricing.Promotion, len(found))
	for i := range found {
		promotions[i] = *found[i].ToDomain()
	}
	return promotions, nil
}

// Save creates or updates a promotion. The usage counter is owned by
// IncrementUsage and deliberately left out of updates.
func (r *GormPromotionRepository) Save(ctx context.Context, promotion *pricing.Promotion) error {
	var model models.PromotionModel
	model.FromDomain(promotion)

	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.PromotionModel{}).
		Where("id = ?", model.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing == 0 {
		return r.db.WithContext(ctx).Create(&model).Error
	}
	return r.db.WithContext(ctx).Model(&models.PromotionModel{}).
		Where("id = ?", model.ID).
		Omit("total_usage_count").
		Select("*").
		Updates(&model).Error
}

// IncrementUsage atomically increments the global usage counter under its cap
func (r *GormPromotionRepository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.PromotionModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("usage_limit IS NULL OR total_usage_count < usage_limit").
		UpdateColumn("total_usage_count", gorm.Expr("total_usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.PromotionModel{}).
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

// CountForTenant counts promotions for a tenant
func (r *GormPromotionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPromotionFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.PromotionModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyPromotionFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyPromotionFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PromotionSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func applyPromotionFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "is_exclusive":
			query = query.Where("is_exclusive = ?", value)
		}
	}
	return query
}

// Ensure GormPromotionRepository implements PromotionRepository
var _ pricing.PromotionRepository = (*GormPromotionRepository)(nil)
