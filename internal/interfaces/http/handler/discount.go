package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DiscountHandler handles discount validation API endpoints
type DiscountHandler struct {
	BaseHandler
	discountService *pricingapp.DiscountValidationService
	accessPolicy    pricing.OrderAccessPolicy
}

// NewDiscountHandler creates a new DiscountHandler. A nil access policy
// disables the per-order authorization check on redemption commits.
func NewDiscountHandler(discountService *pricingapp.DiscountValidationService, accessPolicy pricing.OrderAccessPolicy) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		accessPolicy:    accessPolicy,
	}
}

// Validate validates a single coupon code against an order context
func (h *DiscountHandler) Validate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pricingapp.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.discountService.ValidateAndCalculate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ValidateMultiple validates several coupon codes together, enforcing
// stacking rules across the set
func (h *DiscountHandler) ValidateMultiple(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pricingapp.ValidateDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.discountService.ValidateAndCalculateMultiple(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetAutomatic returns automatic discounts applicable to an order context
func (h *DiscountHandler) GetAutomatic(c *gin.Context) {
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

	results, err := h.discountService.GetApplicableAutomaticDiscounts(c.Request.Context(), tenantID, orderCtx)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// CommitDiscountUsageRequest records a redemption for a committed order.
// SalespersonID is the order's owner as recorded by the order service; when
// absent the caller is taken to be committing their own order.
type CommitDiscountUsageRequest struct {
	OrderID       string     `json:"order_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440010"`
	SalespersonID *uuid.UUID `json:"salesperson_id"`
	TerritoryID   *uuid.UUID `json:"territory_id"`
}

// CommitUsage atomically consumes one use of a discount for a committed order.
// Repeated commits for the same order are deduplicated.
func (h *DiscountHandler) CommitUsage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	discountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid discount ID format")
		return
	}

	var req CommitDiscountUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
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

	if err := h.discountService.MarkUsed(c.Request.Context(), tenantID, discountID, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
