package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PromotionHandler handles promotion validation API endpoints
type PromotionHandler struct {
	BaseHandler
	promotionService *pricingapp.PromotionValidationService
	accessPolicy     pricing.OrderAccessPolicy
}

// NewPromotionHandler creates a new PromotionHandler. A nil access policy
// disables the per-order authorization check on redemption commits.
func NewPromotionHandler(promotionService *pricingapp.PromotionValidationService, accessPolicy pricing.OrderAccessPolicy) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		accessPolicy:     accessPolicy,
	}
}

// Validate validates a promotion code against an order context
func (h *PromotionHandler) Validate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pricingapp.ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.promotionService.Validate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetApplicable returns active promotions applicable to an order context
func (h *PromotionHandler) GetApplicable(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var orderCtx pricingapp.OrderContext
	if err := c.ShouldBindJSON(&orderCtx); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	results, err := h.promotionService.GetApplicablePromotions(c.Request.Context(), tenantID, orderCtx)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// GetCustomerUsage returns how many times a customer has redeemed a promotion
func (h *PromotionHandler) GetCustomerUsage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	count, err := h.promotionService.GetCustomerUsageCount(c.Request.Context(), tenantID, promotionID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: int64(count)})
}

// CommitPromotionUsageRequest records a redemption for a committed order.
// SalespersonID is the order's owner as recorded by the order service; when
// absent the caller is taken to be committing their own order.
type CommitPromotionUsageRequest struct {
	OrderID       string     `json:"order_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440010"`
	CustomerID    *string    `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	SalespersonID *uuid.UUID `json:"salesperson_id"`
	TerritoryID   *uuid.UUID `json:"territory_id"`
}

// CommitUsage atomically consumes one use of a promotion for a committed
// order, bumping both the global counter and the per-customer ledger.
// Repeated commits for the same order are deduplicated.
func (h *PromotionHandler) CommitUsage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	var req CommitPromotionUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		customerID = &id
	}

	if h.accessPolicy != nil {
		actor, ok := currentActor(c)
		if !ok {
			h.Unauthorized(c, "Authentication required to commit redemptions")
			return
		}
		order := pricing.OrderRef{
			ID:            orderID,
			TenantID:      tenantID,
			CustomerID:    customerID,
			SalespersonID: req.SalespersonID,
			TerritoryID:   req.TerritoryID,
		}
		if order.SalespersonID == nil {
			order.SalespersonID = &actor.UserID
		}
		if !h.accessPolicy.CanModifyOrder(actor, order) {
			h.Forbidden(c, "Not allowed to commit redemptions for this order")
			return
		}
	}

	if err := h.promotionService.MarkUsed(c.Request.Context(), tenantID, promotionID, orderID, customerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
