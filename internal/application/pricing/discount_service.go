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

// DefaultCommitDedupeTTL bounds how long a committed redemption key is
// remembered for replay detection
const DefaultCommitDedupeTTL = 24 * time.Hour

// DiscountValidationService validates coupon codes and automatic discounts
// against orders, and commits redemptions to the usage ledger.
type DiscountValidationService struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	dedupeTTL   time.Duration
	logger      *zap.Logger
}

// NewDiscountValidationService creates a new DiscountValidationService
func NewDiscountValidationService(
	scope TransactionScope,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *DiscountValidationService {
	return &DiscountValidationService{
		scope:       scope,
		idempotency: idempotency,
		dedupeTTL:   DefaultCommitDedupeTTL,
		logger:      logger,
	}
}

// SetCommitDedupeTTL overrides how long redemption commits are deduplicated
func (s *DiscountValidationService) SetCommitDedupeTTL(ttl time.Duration) {
	if ttl > 0 {
		s.dedupeTTL = ttl
	}
}

// ValidateAndCalculate validates a single coupon code and computes its
// discount amount. Validation is pure: calling it any number of times
// changes nothing.
func (s *DiscountValidationService) ValidateAndCalculate(ctx context.Context, tenantID uuid.UUID, req ValidateDiscountRequest) (*DiscountValidationResponse, error) {
	result, err := s.validate(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	resp := ToDiscountValidationResponse(result)
	return &resp, nil
}

// ValidateAndCalculateMultiple validates several coupon codes together and
// enforces stacking rules: at most one non-stackable code may join the
// set. Amounts are computed sequentially against the running remainder in
// priority ascending order.
func (s *DiscountValidationService) ValidateAndCalculateMultiple(ctx context.Context, tenantID uuid.UUID, req ValidateDiscountsRequest) (*MultiDiscountValidationResponse, error) {
	orderAmount, err := valueobject.NewMoney(req.OrderAmount, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	results := make([]pricing.DiscountValidationResult, 0, len(req.Codes))
	var nonStackable *pricing.DiscountValidationResult
	for _, code := range req.Codes {
		result, err := s.validate(ctx, tenantID, ValidateDiscountRequest{
			Code:        code,
			OrderAmount: req.OrderAmount,
			Currency:    req.Currency,
			Quantity:    req.Quantity,
			CustomerID:  req.CustomerID,
			ProductIDs:  req.ProductIDs,
		})
		if err != nil {
			return nil, err
		}
		if !result.IsStackable {
			if nonStackable != nil {
				return nil, pricing.NewDiscountsCannotCombineError(nonStackable.Code, result.Code)
			}
			nonStackable = result
		}
		results = append(results, *result)
	}

	candidates := make([]pricing.StackCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, pricing.CandidateFromDiscount(r))
	}
	stacked, err := pricing.ApplyStack(orderAmount, candidates)
	if err != nil {
		return nil, err
	}

	resp := &MultiDiscountValidationResponse{
		TotalDiscount: stacked.TotalDiscount,
		FinalAmount:   stacked.FinalAmount,
	}
	for i := range results {
		r := ToDiscountValidationResponse(&results[i])
		// Report the settled per-step amount, not the standalone one.
		for _, applied := range stacked.Applied {
			if applied.SourceID == results[i].DiscountID {
				r.DiscountAmount = applied.Amount
				break
			}
		}
		resp.Results = append(resp.Results, r)
	}
	return resp, nil
}

// GetApplicableAutomaticDiscounts returns the automatic discounts matching
// the order context, ordered by priority ascending
func (s *DiscountValidationService) GetApplicableAutomaticDiscounts(ctx context.Context, tenantID uuid.UUID, orderCtx OrderContext) ([]DiscountValidationResponse, error) {
	results, err := s.automaticResults(ctx, tenantID, orderCtx)
	if err != nil {
		return nil, err
	}
	responses := make([]DiscountValidationResponse, 0, len(results))
	for i := range results {
		responses = append(responses, ToDiscountValidationResponse(&results[i]))
	}
	return responses, nil
}

// automaticResults filters active automatic discounts down to the ones the
// order context qualifies for
func (s *DiscountValidationService) automaticResults(ctx context.Context, tenantID uuid.UUID, orderCtx OrderContext) ([]pricing.DiscountValidationResult, error) {
	orderAmount, err := valueobject.NewMoney(orderCtx.OrderAmount, orderCtx.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	var discounts []pricing.Discount
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		discounts, err = repos.Discounts().FindAutomatic(ctx, tenantID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]pricing.DiscountValidationResult, 0, len(discounts))
	for i := range discounts {
		d := &discounts[i]
		if !d.IsApplicableToCustomer(orderCtx.CustomerID) ||
			!d.IsApplicableToProducts(orderCtx.ProductIDs) ||
			!d.MeetsMinimums(orderAmount, orderCtx.Quantity) ||
			!d.HasRemainingUses() {
			continue
		}
		amount, err := d.Calculate(orderAmount)
		if err != nil {
			return nil, err
		}
		results = append(results, pricing.DiscountValidationResult{
			DiscountID:            d.ID,
			Code:                  d.Code,
			Kind:                  d.Kind,
			ValueType:             d.ValueType,
			Value:                 d.Value,
			IsStackable:           d.IsStackable,
			Priority:              d.Priority,
			MaximumDiscountAmount: d.MaximumDiscountAmount,
			DiscountAmount:        amount,
			RemainingUses:         d.RemainingUses(),
		})
	}
	return results, nil
}

// MarkUsed commits one redemption of a discount for an order. The global
// counter increments atomically under its cap. Replays of the same
// (discount, order) pair conflict on the redemption row inside the same
// transaction, so a failed or rolled-back commit leaves nothing behind and
// the caller's retry re-runs the increment.
func (s *DiscountValidationService) MarkUsed(ctx context.Context, tenantID, discountID, orderID uuid.UUID) error {
	key := discountCommitKey(tenantID, discountID, orderID)
	if done, err := s.idempotency.IsProcessed(ctx, key); err != nil {
		s.logger.Warn("failed to check redemption dedupe, falling through to the ledger",
			zap.String("key", key), zap.Error(err))
	} else if done {
		return nil
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Discounts().RecordRedemption(ctx, tenantID, discountID, orderID); err != nil {
			return err
		}
		if err := repos.Discounts().IncrementUsage(ctx, tenantID, discountID); err != nil {
			if errors.Is(err, pricing.ErrUsageExhausted) {
				return shared.NewDomainError(pricing.ErrCodeCouponLimitExceeded, "Discount has reached its usage limit")
			}
			return err
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

// validate runs the full eligibility pipeline for one code
func (s *DiscountValidationService) validate(ctx context.Context, tenantID uuid.UUID, req ValidateDiscountRequest) (*pricing.DiscountValidationResult, error) {
	orderAmount, err := valueobject.NewMoney(req.OrderAmount, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	var discount *pricing.Discount
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		discount, err = repos.Discounts().FindByCodeForTenant(ctx, tenantID, req.Code)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, pricing.NewCouponNotFoundError(req.Code)
		}
		return nil, err
	}

	if !discount.IsValidAt(time.Now()) {
		return nil, pricing.NewCouponExpiredError(discount.Code)
	}
	if !discount.IsApplicableToCustomer(req.CustomerID) || !discount.IsApplicableToProducts(req.ProductIDs) {
		return nil, pricing.NewCouponNotApplicableError(discount.Code)
	}
	if !discount.MeetsMinimums(orderAmount, req.Quantity) {
		return nil, pricing.NewCouponMinimumNotMetError(discount.Code)
	}
	if !discount.HasRemainingUses() {
		return nil, pricing.NewCouponLimitExceededError(discount.Code)
	}

	amount, err := discount.Calculate(orderAmount)
	if err != nil {
		return nil, err
	}
	return &pricing.DiscountValidationResult{
		DiscountID:            discount.ID,
		Code:                  discount.Code,
		Kind:                  discount.Kind,
		ValueType:             discount.ValueType,
		Value:                 discount.Value,
		IsStackable:           discount.IsStackable,
		Priority:              discount.Priority,
		MaximumDiscountAmount: discount.MaximumDiscountAmount,
		DiscountAmount:        amount,
		RemainingUses:         discount.RemainingUses(),
	}, nil
}

func discountCommitKey(tenantID, discountID, orderID uuid.UUID) string {
	return fmt.Sprintf("pricing:discount-used:%s:%s:%s", tenantID, discountID, orderID)
}
