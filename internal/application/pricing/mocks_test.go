package pricing

import (
	"context"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPriceListRepository is a mock implementation of PriceListRepository
type MockPriceListRepository struct {
	mock.Mock
}

func (m *MockPriceListRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.PriceList, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.PriceList, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) FindForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, at time.Time) ([]pricing.PriceList, error) {
	args := m.Called(ctx, tenantID, customerID, currency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) FindPublic(ctx context.Context, tenantID uuid.UUID, currency valueobject.Currency, at time.Time) ([]pricing.PriceList, error) {
	args := m.Called(ctx, tenantID, currency, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.PriceList, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) Save(ctx context.Context, list *pricing.PriceList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockPriceListRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductCatalog is a mock implementation of ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) FindByIDForTenant(ctx context.Context, tenantID, productID uuid.UUID) (*pricing.CatalogProduct, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.CatalogProduct), args.Error(1)
}

// MockDiscountRepository is a mock implementation of DiscountRepository
type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Discount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Discount, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindAutomatic(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]pricing.Discount, error) {
	args := m.Called(ctx, tenantID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Discount, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Discount), args.Error(1)
}

func (m *MockDiscountRepository) Save(ctx context.Context, discount *pricing.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *MockDiscountRepository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockDiscountRepository) RecordRedemption(ctx context.Context, tenantID, id, orderID uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, orderID)
	return args.Error(0)
}

func (m *MockDiscountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPromotionRepository is a mock implementation of PromotionRepository
type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindActive(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) Save(ctx context.Context, promotion *pricing.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPromotionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPromotionUsageRepository is a mock implementation of PromotionUsageRepository
type MockPromotionUsageRepository struct {
	mock.Mock
}

func (m *MockPromotionUsageRepository) GetUsageCount(ctx context.Context, tenantID, promotionID, customerID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, promotionID, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockPromotionUsageRepository) IncrementUsage(ctx context.Context, tenantID, promotionID, customerID, orderID uuid.UUID, limit *int) error {
	args := m.Called(ctx, tenantID, promotionID, customerID, orderID, limit)
	return args.Error(0)
}

func (m *MockPromotionUsageRepository) RecordRedemption(ctx context.Context, tenantID, promotionID, orderID uuid.UUID, customerID *uuid.UUID) error {
	args := m.Called(ctx, tenantID, promotionID, orderID, customerID)
	return args.Error(0)
}

func (m *MockPromotionUsageRepository) FindByPromotion(ctx context.Context, tenantID, promotionID uuid.UUID, filter shared.Filter) ([]pricing.PromotionUsage, error) {
	args := m.Called(ctx, tenantID, promotionID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.PromotionUsage), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
