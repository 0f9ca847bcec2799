package pricing

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
)

// TransactionScope provides transactional access to the usage ledger.
// MarkUsed runs inside the caller's order-creation transaction: every
// repository operation inside Execute commits or rolls back with the order.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the ledger repositories bound to the
// current transaction
type TransactionalRepositories interface {
	// Discounts returns the discount repository scoped to the transaction
	Discounts() pricing.DiscountRepository

	// Promotions returns the promotion repository scoped to the transaction
	Promotions() pricing.PromotionRepository

	// PromotionUsages returns the per-customer usage repository scoped to the transaction
	PromotionUsages() pricing.PromotionUsageRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a real transaction. Useful for tests and single-statement commits.
type NoOpTransactionScope struct {
	discountRepo       pricing.DiscountRepository
	promotionRepo      pricing.PromotionRepository
	promotionUsageRepo pricing.PromotionUsageRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	discountRepo pricing.DiscountRepository,
	promotionRepo pricing.PromotionRepository,
	promotionUsageRepo pricing.PromotionUsageRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		discountRepo:       discountRepo,
		promotionRepo:      promotionRepo,
		promotionUsageRepo: promotionUsageRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Discounts returns the discount repository
func (s *NoOpTransactionScope) Discounts() pricing.DiscountRepository {
	return s.discountRepo
}

// Promotions returns the promotion repository
func (s *NoOpTransactionScope) Promotions() pricing.PromotionRepository {
	return s.promotionRepo
}

// PromotionUsages returns the per-customer usage repository
func (s *NoOpTransactionScope) PromotionUsages() pricing.PromotionUsageRepository {
	return s.promotionUsageRepo
}
