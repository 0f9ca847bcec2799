package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/gin-gonic/gin"
)

// OrderAdjustmentHandler handles order adjustment resolution API endpoints
type OrderAdjustmentHandler struct {
	BaseHandler
	adjustmentService *pricingapp.OrderAdjustmentService
	accessPolicy      pricing.OrderAccessPolicy
}

// NewOrderAdjustmentHandler creates a new OrderAdjustmentHandler. A nil
// access policy disables the draft authorization check.
func NewOrderAdjustmentHandler(adjustmentService *pricingapp.OrderAdjustmentService, accessPolicy pricing.OrderAccessPolicy) *OrderAdjustmentHandler {
	return &OrderAdjustmentHandler{
		adjustmentService: adjustmentService,
		accessPolicy:      accessPolicy,
	}
}

// Resolve runs the full resolution pipeline for an order draft: line prices,
// coupon codes, promotion codes, automatic discounts and the stacking
// combinator. The response is an adjustment plan; the caller's order
// transaction persists the order and then commits usage.
func (h *OrderAdjustmentHandler) Resolve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pricingapp.ResolveOrderAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if h.accessPolicy != nil {
		actor, ok := currentActor(c)
		if !ok {
			h.Unauthorized(c, "Authentication required to resolve adjustments")
			return
		}
		// A draft belongs to the salesperson composing it
		draft := pricing.OrderRef{
			TenantID:      tenantID,
			CustomerID:    req.CustomerID,
			SalespersonID: &actor.UserID,
		}
		if !h.accessPolicy.CanModifyOrder(actor, draft) {
			h.Forbidden(c, "Not allowed to resolve adjustments for this tenant")
			return
		}
	}

	plan, err := h.adjustmentService.Resolve(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}
