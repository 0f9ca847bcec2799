package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTolerancePercent is the price deviation allowed before a client
// price is rejected, in percent
var DefaultTolerancePercent = decimal.NewFromInt(1)

// PriceValidationService resolves the authoritative price for an order line
// and checks the client-proposed price against it.
type PriceValidationService struct {
	priceListRepo pricing.PriceListRepository
	catalog       pricing.ProductCatalog
	tolerance     decimal.Decimal
	logger        *zap.Logger
}

// NewPriceValidationService creates a new PriceValidationService.
// tolerancePercent <= 0 falls back to the default.
func NewPriceValidationService(
	priceListRepo pricing.PriceListRepository,
	catalog pricing.ProductCatalog,
	tolerancePercent decimal.Decimal,
	logger *zap.Logger,
) *PriceValidationService {
	if tolerancePercent.LessThanOrEqual(decimal.Zero) {
		tolerancePercent = DefaultTolerancePercent
	}
	return &PriceValidationService{
		priceListRepo: priceListRepo,
		catalog:       catalog,
		tolerance:     tolerancePercent,
		logger:        logger,
	}
}

// ResolvePrice resolves the system price for a product and validates the
// client price against it. Resolution order: customer-scoped price lists,
// public price lists, catalog base price, and finally the client price
// itself for products the system does not know how to price.
//
// Success always returns the SYSTEM price; the client price only sets the
// deviation. Validation mutates nothing.
func (s *PriceValidationService) ResolvePrice(ctx context.Context, tenantID uuid.UUID, req ResolvePriceRequest) (*PriceResolutionResponse, error) {
	now := time.Now()

	clientPrice, err := valueobject.NewMoney(req.ClientPrice, req.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	if req.CustomerID != nil {
		lists, err := s.priceListRepo.FindForCustomer(ctx, tenantID, *req.CustomerID, req.Currency, now)
		if err != nil {
			return nil, err
		}
		if result := s.resolveFromLists(lists, pricing.PriceSourceCustomerList, req); result != nil {
			return s.checkTolerance(result, clientPrice)
		}
	}

	lists, err := s.priceListRepo.FindPublic(ctx, tenantID, req.Currency, now)
	if err != nil {
		return nil, err
	}
	if result := s.resolveFromLists(lists, pricing.PriceSourcePublicList, req); result != nil {
		return s.checkTolerance(result, clientPrice)
	}

	product, err := s.catalog.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// The system has no price for this product. Accept the client price
		// but record the provenance so downstream consumers can treat it as
		// low confidence.
		s.logger.Warn("accepting client price for unlisted product",
			zap.String("tenant_id", tenantID.String()),
			zap.String("product_id", req.ProductID.String()),
			zap.String("client_price", clientPrice.String()))
		return &PriceResolutionResponse{
			ProductID:        req.ProductID,
			Price:            clientPrice,
			Source:           pricing.PriceSourceClient.String(),
			DeviationPercent: decimal.Zero,
			Trusted:          false,
		}, nil
	}

	if product.Currency != req.Currency {
		// Currency mismatch on the catalog fallback is a hard failure, even
		// if the amounts would have been within tolerance.
		return nil, pricing.NewCurrencyMismatchError(req.Currency, product.Currency)
	}

	systemPrice, err := valueobject.NewMoney(product.UnitPrice, product.Currency)
	if err != nil {
		return nil, err
	}
	return s.checkTolerance(&pricing.PriceValidationResult{
		ProductID: req.ProductID,
		Price:     systemPrice,
		Source:    pricing.PriceSourceCatalog,
	}, clientPrice)
}

// resolveFromLists walks lists already ordered by priority descending and
// returns the first price covering the product at the requested quantity
func (s *PriceValidationService) resolveFromLists(lists []pricing.PriceList, source pricing.PriceSource, req ResolvePriceRequest) *pricing.PriceValidationResult {
	for i := range lists {
		if price, ok := lists[i].PriceFor(req.ProductID, req.Quantity); ok {
			listID := lists[i].ID
			return &pricing.PriceValidationResult{
				ProductID:   req.ProductID,
				Price:       price,
				Source:      source,
				PriceListID: &listID,
			}
		}
	}
	return nil
}

// checkTolerance compares the client price with the resolved system price
// and fails with PRICE_MISMATCH when the deviation exceeds the tolerance.
// The boundary is inclusive: a deviation exactly at the tolerance passes.
func (s *PriceValidationService) checkTolerance(result *pricing.PriceValidationResult, clientPrice valueobject.Money) (*PriceResolutionResponse, error) {
	deviation := deviationPercent(clientPrice.Amount(), result.Price.Amount())
	result.ClientPrice = clientPrice
	result.DeviationPercent = deviation

	if deviation.GreaterThan(s.tolerance) {
		return nil, pricing.NewPriceMismatchError(clientPrice, result.Price, deviation.StringFixed(2))
	}

	resp := ToPriceResolutionResponse(result)
	return &resp, nil
}

// deviationPercent computes |client-system|/system*100. A zero system price
// deviates 0% from a zero client price and 100% from anything else.
func deviationPercent(client, system decimal.Decimal) decimal.Decimal {
	if system.IsZero() {
		if client.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return client.Sub(system).Abs().Div(system).Mul(decimal.NewFromInt(100))
}
