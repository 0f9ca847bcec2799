package pricing

import (
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
)

// PromotionUsage tracks how many times one customer has redeemed one
// promotion. It backs the per-customer cap and keeps the last order that
// touched the counter for audit.
type PromotionUsage struct {
	shared.TenantAggregateRoot
	PromotionID uuid.UUID
	CustomerID  uuid.UUID
	UsageCount  int
	LastOrderID *uuid.UUID
}

// NewPromotionUsage creates a usage record with a single redemption
func NewPromotionUsage(tenantID, promotionID, customerID, orderID uuid.UUID) (*PromotionUsage, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if promotionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROMOTION", "Promotion ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	usage := &PromotionUsage{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PromotionID:         promotionID,
		CustomerID:          customerID,
		UsageCount:          1,
	}
	if orderID != uuid.Nil {
		usage.LastOrderID = &orderID
	}
	return usage, nil
}
