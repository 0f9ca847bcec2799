package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromotionValidationService validates promotions against orders and
// commits redemptions to both the global and per-customer ledgers.
type PromotionValidationService struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	dedupeTTL   time.Duration
	logger      *zap.Logger
}

// NewPromotionValidationService creates a new PromotionValidationService
func NewPromotionValidationService(
	scope TransactionScope,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *PromotionValidationService {
	return &PromotionValidationService{
		scope:       scope,
		idempotency: idempotency,
		dedupeTTL:   DefaultCommitDedupeTTL,
		logger:      logger,
	}
}

// SetCommitDedupeTTL overrides how long redemption commits are deduplicated
func (s *PromotionValidationService) SetCommitDedupeTTL(ttl time.Duration) {
	if ttl > 0 {
		s.dedupeTTL = ttl
	}
}

// Validate validates a promotion code against an order. On top of the
// discount checks it enforces the per-customer cap and surfaces
// exclusivity and free goods without mutating anything.
func (s *PromotionValidationService) Validate(ctx context.Context, tenantID uuid.UUID, req ValidatePromotionRequest) (*PromotionValidationResponse, error) {
	result, err := s.validate(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	resp := ToPromotionValidationResponse(result)
	return &resp, nil
}

// GetApplicablePromotions returns the active promotions matching the order
// context, ordered by priority descending
func (s *PromotionValidationService) GetApplicablePromotions(ctx context.Context, tenantID uuid.UUID, orderCtx OrderContext) ([]PromotionValidationResponse, error) {
	results, err := s.applicableResults(ctx, tenantID, orderCtx)
	if err != nil {
		return nil, err
	}
	responses := make([]PromotionValidationResponse, 0, len(results))
	for i := range results {
		responses = append(responses, ToPromotionValidationResponse(&results[i]))
	}
	return responses, nil
}

// applicableResults filters active promotions down to the ones the order
// context qualifies for, including per-customer caps
func (s *PromotionValidationService) applicableResults(ctx context.Context, tenantID uuid.UUID, orderCtx OrderContext) ([]pricing.PromotionValidationResult, error) {
	orderAmount, err := valueobject.NewMoney(orderCtx.OrderAmount, orderCtx.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	var promotions []pricing.Promotion
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		promotions, err = repos.Promotions().FindActive(ctx, tenantID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]pricing.PromotionValidationResult, 0, len(promotions))
	for i := range promotions {
		p := &promotions[i]
		if !p.IsApplicableToCustomer(orderCtx.CustomerID) ||
			!p.IsApplicableToProducts(orderCtx.ProductIDs) ||
			!p.MeetsMinimums(orderAmount, orderCtx.Quantity) ||
			!p.HasRemainingUses() {
			continue
		}
		if orderCtx.CustomerID != nil && p.UsageLimitPerCustomer != nil {
			count, err := s.customerUsageCount(ctx, tenantID, p.ID, *orderCtx.CustomerID)
			if err != nil {
				return nil, err
			}
			if !p.CanBeUsedByCustomer(count) {
				continue
			}
		}
		amount, err := p.Calculate(orderAmount)
		if err != nil {
			return nil, err
		}
		results = append(results, pricing.PromotionValidationResult{
			PromotionID:           p.ID,
			Code:                  p.Code,
			Type:                  p.Type,
			Value:                 p.Value,
			IsStackable:           p.IsStackable,
			IsExclusive:           p.IsExclusive,
			Priority:              p.Priority,
			MaximumDiscountAmount: p.MaximumDiscountAmount,
			DiscountAmount:        amount,
			FreeItem:              p.FreeItem(),
			RemainingUses:         p.RemainingUses(),
		})
	}
	return results, nil
}

// GetCustomerUsageCount returns how many times the customer has redeemed
// the promotion
func (s *PromotionValidationService) GetCustomerUsageCount(ctx context.Context, tenantID, promotionID, customerID uuid.UUID) (int, error) {
	return s.customerUsageCount(ctx, tenantID, promotionID, customerID)
}

// MarkUsed commits one redemption of a promotion for an order. It must run
// inside the caller's order-creation transaction so the order and the
// counters commit or roll back together; the injected scope provides that
// boundary. Both the global and the per-customer counter increment under
// their caps in single guarded statements, and the per-order redemption row
// written in the same transaction makes replays of one (promotion, order)
// pair a no-op while leaving rolled-back commits retryable.
func (s *PromotionValidationService) MarkUsed(ctx context.Context, tenantID, promotionID, orderID uuid.UUID, customerID *uuid.UUID) error {
	key := promotionCommitKey(tenantID, promotionID, orderID)
	if done, err := s.idempotency.IsProcessed(ctx, key); err != nil {
		s.logger.Warn("failed to check redemption dedupe, falling through to the ledger",
			zap.String("key", key), zap.Error(err))
	} else if done {
		return nil
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// First statement in the transaction: a replay conflicts here before
		// any counter moves, and a rollback removes the row again.
		if err := repos.PromotionUsages().RecordRedemption(ctx, tenantID, promotionID, orderID, customerID); err != nil {
			return err
		}

		promotion, err := repos.Promotions().FindByIDForTenant(ctx, tenantID, promotionID)
		if err != nil {
			return err
		}

		if err := repos.Promotions().IncrementUsage(ctx, tenantID, promotionID); err != nil {
			if errors.Is(err, pricing.ErrUsageExhausted) {
				return pricing.NewPromotionLimitExceededError(promotion.Code)
			}
			return err
		}

		if customerID != nil {
			err := repos.PromotionUsages().IncrementUsage(ctx, tenantID, promotionID, *customerID, orderID, promotion.UsageLimitPerCustomer)
			if err != nil {
				if errors.Is(err, pricing.ErrUsageExhausted) {
					return pricing.NewCustomerLimitExceededError(promotion.Code)
				}
				return err
			}
		}
		return nil
	})
	if errors.Is(err, pricing.ErrAlreadyRedeemed) {
		// Replayed commit; the original redemption already counted.
		err = nil
	}
	if err != nil {
		return err
	}

	// Recorded only after the commit succeeds. The key is a fast path; the
	// redemption row stays authoritative when the store is cold or down.
	if _, err := s.idempotency.MarkProcessed(ctx, key, s.dedupeTTL); err != nil {
		s.logger.Warn("failed to record redemption dedupe key",
			zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *PromotionValidationService) customerUsageCount(ctx context.Context, tenantID, promotionID, customerID uuid.UUID) (int, error) {
	var count int
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		count, err = repos.PromotionUsages().GetUsageCount(ctx, tenantID, promotionID, customerID)
		return err
	})
	return count, err
}

// validate runs the full eligibility pipeline for one promotion code
func (s *PromotionValidationService) validate(ctx context.Context, tenantID uuid.UUID, req ValidatePromotionRequest) (*pricing.PromotionValidationResult, error) {
	orderAmount, err := valueobject.NewMoney(req.OrderAmount, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	var promotion *pricing.Promotion
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		promotion, err = repos.Promotions().FindByCodeForTenant(ctx, tenantID, req.Code)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, pricing.NewPromotionNotFoundError(req.Code)
		}
		return nil, err
	}

	if !promotion.IsValidAt(time.Now()) {
		return nil, pricing.NewPromotionExpiredError(promotion.Code)
	}
	if !promotion.IsApplicableToCustomer(req.CustomerID) || !promotion.IsApplicableToProducts(req.ProductIDs) {
		return nil, pricing.NewPromotionNotApplicableError(promotion.Code)
	}
	if !promotion.MeetsMinimums(orderAmount, req.Quantity) {
		return nil, pricing.NewPromotionMinimumNotMetError(promotion.Code)
	}
	if !promotion.HasRemainingUses() {
		return nil, pricing.NewPromotionLimitExceededError(promotion.Code)
	}
	if req.CustomerID != nil && promotion.UsageLimitPerCustomer != nil {
		count, err := s.customerUsageCount(ctx, tenantID, promotion.ID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !promotion.CanBeUsedByCustomer(count) {
			return nil, pricing.NewCustomerLimitExceededError(promotion.Code)
		}
	}

	amount, err := promotion.Calculate(orderAmount)
	if err != nil {
		return nil, err
	}
	return &pricing.PromotionValidationResult{
		PromotionID:           promotion.ID,
		Code:                  promotion.Code,
		Type:                  promotion.Type,
		Value:                 promotion.Value,
		IsStackable:           promotion.IsStackable,
		IsExclusive:           promotion.IsExclusive,
		Priority:              promotion.Priority,
		MaximumDiscountAmount: promotion.MaximumDiscountAmount,
		DiscountAmount:        amount,
		FreeItem:              promotion.FreeItem(),
		RemainingUses:         promotion.RemainingUses(),
	}, nil
}

func promotionCommitKey(tenantID, promotionID, orderID uuid.UUID) string {
	return fmt.Sprintf("pricing:promotion-used:%s:%s:%s", tenantID, promotionID, orderID)
}
