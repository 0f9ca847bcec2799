package pricing

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderAdjustmentService runs the full resolution pipeline for an order
// draft: price every line, validate coupon and promotion codes, fold in
// automatic adjustments and settle the stack. The caller's order
// transaction then persists the order and commits usage via MarkUsed.
type OrderAdjustmentService struct {
	priceService     *PriceValidationService
	discountService  *DiscountValidationService
	promotionService *PromotionValidationService
	logger           *zap.Logger
}

// NewOrderAdjustmentService creates a new OrderAdjustmentService
func NewOrderAdjustmentService(
	priceService *PriceValidationService,
	discountService *DiscountValidationService,
	promotionService *PromotionValidationService,
	logger *zap.Logger,
) *OrderAdjustmentService {
	return &OrderAdjustmentService{
		priceService:     priceService,
		discountService:  discountService,
		promotionService: promotionService,
		logger:           logger,
	}
}

// Resolve produces the adjustment plan for an order draft. It mutates
// nothing: running it twice with the same inputs yields the same plan.
func (s *OrderAdjustmentService) Resolve(ctx context.Context, tenantID uuid.UUID, req ResolveOrderAdjustmentsRequest) (*OrderAdjustmentPlanResponse, error) {
	subtotal := valueobject.Zero(req.Currency)
	totalQuantity := decimal.Zero

	lines := make([]AdjustmentLineResult, 0, len(req.Lines))
	productIDs := make([]uuid.UUID, 0, len(req.Lines))
	for _, line := range req.Lines {
		resolved, err := s.priceService.ResolvePrice(ctx, tenantID, ResolvePriceRequest{
			ProductID:   line.ProductID,
			ClientPrice: line.ClientPrice,
			Quantity:    line.Quantity,
			Currency:    req.Currency,
			CustomerID:  req.CustomerID,
		})
		if err != nil {
			return nil, err
		}

		lineAmount := resolved.Price.Multiply(line.Quantity)
		subtotal, err = subtotal.Add(lineAmount)
		if err != nil {
			return nil, err
		}
		totalQuantity = totalQuantity.Add(line.Quantity)
		productIDs = append(productIDs, line.ProductID)
		lines = append(lines, AdjustmentLineResult{
			ProductID:  line.ProductID,
			UnitPrice:  resolved.Price,
			Quantity:   line.Quantity,
			LineAmount: lineAmount,
			Source:     resolved.Source,
		})
	}

	candidates, err := s.collectCandidates(ctx, tenantID, req, subtotal, totalQuantity, productIDs)
	if err != nil {
		return nil, err
	}

	stacked, err := pricing.ApplyStack(subtotal, candidates)
	if err != nil {
		return nil, err
	}
	if stacked.ExclusiveApplied {
		s.logger.Info("exclusive promotion suppressed other adjustments",
			zap.String("tenant_id", tenantID.String()),
			zap.String("code", stacked.Applied[0].Code))
	}

	return &OrderAdjustmentPlanResponse{
		Lines:            lines,
		Subtotal:         subtotal,
		Applied:          stacked.Applied,
		TotalDiscount:    stacked.TotalDiscount,
		FinalAmount:      stacked.FinalAmount,
		FreeItems:        stacked.FreeItems,
		ExclusiveApplied: stacked.ExclusiveApplied,
	}, nil
}

// collectCandidates validates requested codes and gathers automatic
// adjustments, enforcing the non-stackable rule across the whole set
func (s *OrderAdjustmentService) collectCandidates(
	ctx context.Context,
	tenantID uuid.UUID,
	req ResolveOrderAdjustmentsRequest,
	subtotal valueobject.Money,
	totalQuantity decimal.Decimal,
	productIDs []uuid.UUID,
) ([]pricing.StackCandidate, error) {
	var candidates []pricing.StackCandidate
	var nonStackable *pricing.DiscountValidationResult

	for _, code := range req.CouponCodes {
		result, err := s.discountService.validate(ctx, tenantID, ValidateDiscountRequest{
			Code:        code,
			OrderAmount: subtotal.Amount(),
			Currency:    req.Currency,
			Quantity:    totalQuantity,
			CustomerID:  req.CustomerID,
			ProductIDs:  productIDs,
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
		candidates = append(candidates, pricing.CandidateFromDiscount(*result))
	}

	for _, code := range req.PromotionCodes {
		result, err := s.promotionService.validate(ctx, tenantID, ValidatePromotionRequest{
			Code:        code,
			OrderAmount: subtotal.Amount(),
			Currency:    req.Currency,
			Quantity:    totalQuantity,
			CustomerID:  req.CustomerID,
			ProductIDs:  productIDs,
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, pricing.CandidateFromPromotion(*result))
	}

	if !req.IncludeAutomatic {
		return candidates, nil
	}

	orderCtx := OrderContext{
		OrderAmount: subtotal.Amount(),
		Currency:    req.Currency,
		Quantity:    totalQuantity,
		CustomerID:  req.CustomerID,
		ProductIDs:  productIDs,
	}

	automatic, err := s.discountService.automaticResults(ctx, tenantID, orderCtx)
	if err != nil {
		return nil, err
	}
	for i := range automatic {
		if !automatic[i].IsStackable {
			// An automatic discount never displaces an explicitly requested
			// non-stackable code; conflicting ones are skipped.
			if nonStackable != nil {
				continue
			}
			nonStackable = &automatic[i]
		}
		candidates = append(candidates, pricing.CandidateFromDiscount(automatic[i]))
	}

	applicable, err := s.promotionService.applicableResults(ctx, tenantID, orderCtx)
	if err != nil {
		return nil, err
	}
	for i := range applicable {
		if containsCode(req.PromotionCodes, applicable[i].Code) {
			continue
		}
		candidates = append(candidates, pricing.CandidateFromPromotion(applicable[i]))
	}

	return candidates, nil
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
