package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPriceListRepository implements pricing.PriceListRepository using GORM
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewGormPriceListRepository creates a new GormPriceListRepository
func NewGormPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

// FindByIDForTenant finds a price list by ID within a tenant
func (r *GormPriceListRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.PriceList, error) {
	var model models.PriceListModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCodeForTenant finds a price list by code for a tenant
func (r *GormPriceListRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.PriceList, error) {
	var model models.PriceListModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForCustomer finds active customer-scoped lists in the given currency
// valid at the given time, ordered by priority descending
func (r *GormPriceListRepository) FindForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, at time.Time) ([]pricing.PriceList, error) {
	return r.findValid(ctx, tenantID, currency, at, func(query *gorm.DB) *gorm.DB {
		return query.Where("customer_id = ?", customerID)
	})
}

// FindPublic finds active public lists in the given currency valid at the
// given time, ordered by priority descending
func (r *GormPriceListRepository) FindPublic(ctx context.Context, tenantID uuid.UUID, currency valueobject.Currency, at time.Time) ([]pricing.PriceList, error) {
	return r.findValid(ctx, tenantID, currency, at, func(query *gorm.DB) *gorm.DB {
		return query.Where("customer_id IS NULL")
	})
}

func (r *GormPriceListRepository) findValid(ctx context.Context, tenantID uuid.UUID, currency valueobject.Currency, at time.Time, scope func(*gorm.DB) *gorm.DB) ([]pricing.PriceList, error) {
	var found []models.PriceListModel
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND currency = ? AND is_active = ?", tenantID, currency.String(), true).
		Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_to IS NULL OR valid_to >= ?)", at, at).
		Order("priority DESC, created_at ASC")
	if err := scope(query).Find(&found).Error; err != nil {
		return nil, err
	}

	lists := make([]pricing.PriceList, len(found))
	for i := range found {
		lists[i] = *found[i].ToDomain()
	}
	return lists, nil
}

// FindAllForTenant finds all price lists for a tenant with filtering
func (r *GormPriceListRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.PriceList, error) {
	var found []models.PriceListModel
	query := applyPriceListFilter(
		r.db.WithContext(ctx).Model(&models.PriceListModel{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}

	lists := make([]pricing.PriceList, len(found))
	for i := range found {
		lists[i] = *found[i].ToDomain()
	}
	return lists, nil
}

// Save creates or updates a price list with its items
func (r *GormPriceListRepository) Save(ctx context.Context, list *pricing.PriceList) error {
	var model models.PriceListModel
	model.FromDomain(list)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(&model).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			currentItemIDs[i] = item.ID
		}

		// Drop rows removed from the list before saving the survivors
		if len(currentItemIDs) > 0 {
			if err := tx.Where("price_list_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.PriceListItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("price_list_id = ?", model.ID).
				Delete(&models.PriceListItemModel{}).Error; err != nil {
				return err
			}
		}

		for i := range model.Items {
			model.Items[i].PriceListID = model.ID
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForTenant counts price lists for a tenant
func (r *GormPriceListRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyPriceListFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.PriceListModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyPriceListFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyPriceListFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PriceListSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func applyPriceListFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "currency":
			query = query.Where("currency = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "public_only":
			if public, ok := value.(bool); ok && public {
				query = query.Where("customer_id IS NULL")
			}
		}
	}
	return query
}

// Ensure GormPriceListRepository implements PriceListRepository
var _ pricing.PriceListRepository = (*GormPriceListRepository)(nil)
