package persistence

import (
	"context"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPromotionUsageRepository implements pricing.PromotionUsageRepository using GORM
type GormPromotionUsageRepository struct {
	db *gorm.DB
}

// NewGormPromotionUsageRepository creates a new GormPromotionUsageRepository
func NewGormPromotionUsageRepository(db *gorm.DB) *GormPromotionUsageRepository {
	return &GormPromotionUsageRepository{db: db}
}

// GetUsageCount returns how many times the customer has redeemed the
// promotion. Missing rows count as zero.
func (r *GormPromotionUsageRepository) GetUsageCount(ctx context.Context, tenantID, promotionID, customerID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PromotionUsageModel{}).
		Where("tenant_id = ? AND promotion_id = ? AND customer_id = ?", tenantID, promotionID, customerID).
		Select("COALESCE(SUM(usage_count), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// IncrementUsage upserts the per-customer counter in a single statement.
// The cap guard rides in the ON CONFLICT update's WHERE clause, so two
// redemptions racing for the last slot serialize on the unique row and the
// loser touches nothing.
func (r *GormPromotionUsageRepository) IncrementUsage(ctx context.Context, tenantID, promotionID, customerID, orderID uuid.UUID, limit *int) error {
	if limit != nil && *limit <= 0 {
		return pricing.ErrUsageExhausted
	}

	now := time.Now()
	model := models.PromotionUsageModel{
		PromotionID: promotionID,
		CustomerID:  customerID,
		UsageCount:  1,
		LastOrderID: &orderID,
	}
	model.ID = uuid.New()
	model.CreatedAt = now
	model.UpdatedAt = now
	model.Version = 1
	model.TenantID = tenantID

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "promotion_id"}, {Name: "customer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count":   gorm.Expr("promotion_usages.usage_count + 1"),
			"last_order_id": orderID,
			"updated_at":    now,
		}),
	}
	if limit != nil {
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "promotion_usages.usage_count < ?", Vars: []interface{}{*limit}},
		}}
	}

	result := r.db.WithContext(ctx).Clauses(onConflict).Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pricing.ErrUsageExhausted
	}
	return nil
}

// RecordRedemption appends one redemption audit row, unique per
// (tenant, promotion, order). ON CONFLICT DO NOTHING turns a replayed commit
// into zero affected rows, reported as ErrAlreadyRedeemed.
func (r *GormPromotionUsageRepository) RecordRedemption(ctx context.Context, tenantID, promotionID, orderID uuid.UUID, customerID *uuid.UUID) error {
	row := models.PromotionRedemptionModel{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		TenantID:    tenantID,
		PromotionID: promotionID,
		OrderID:     orderID,
		CustomerID:  customerID,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "promotion_id"}, {Name: "order_id"}},
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

// FindByPromotion lists usage records for a promotion
func (r *GormPromotionUsageRepository) FindByPromotion(ctx context.Context, tenantID, promotionID uuid.UUID, filter shared.Filter) ([]pricing.PromotionUsage, error) {
	var found []models.PromotionUsageModel
	query := r.db.WithContext(ctx).Model(&models.PromotionUsageModel{}).
		Where("tenant_id = ? AND promotion_id = ?", tenantID, promotionID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PromotionUsageSortFields, "updated_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}

	usages := make([]pricing.PromotionUsage, len(found))
	for i := range found {
		usages[i] = *found[i].ToDomain()
	}
	return usages, nil
}

// Ensure GormPromotionUsageRepository implements PromotionUsageRepository
var _ pricing.PromotionUsageRepository = (*GormPromotionUsageRepository)(nil)
