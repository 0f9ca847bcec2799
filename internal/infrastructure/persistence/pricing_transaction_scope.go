package persistence

import (
	"context"

	apppricing "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Redemption commits run through it so the order and the usage counters
// commit or roll back as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apppricing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides the ledger repositories bound to
// the current transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Discounts returns the discount repository scoped to the current transaction
func (r *gormTransactionalRepositories) Discounts() pricing.DiscountRepository {
	return NewGormDiscountRepository(r.tx)
}

// Promotions returns the promotion repository scoped to the current transaction
func (r *gormTransactionalRepositories) Promotions() pricing.PromotionRepository {
	return NewGormPromotionRepository(r.tx)
}

// PromotionUsages returns the per-customer usage repository scoped to the current transaction
func (r *gormTransactionalRepositories) PromotionUsages() pricing.PromotionUsageRepository {
	return NewGormPromotionUsageRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apppricing.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apppricing.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
