package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/gin-gonic/gin"
)

// PriceHandler handles price resolution API endpoints
type PriceHandler struct {
	BaseHandler
	priceService *pricingapp.PriceValidationService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *pricingapp.PriceValidationService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// ResolvePrice resolves the authoritative price for a product and checks the
// client-proposed price against the tolerance window
func (h *PriceHandler) ResolvePrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pricingapp.ResolvePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.priceService.ResolvePrice(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
