package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupPriceTestRouter() (*gin.Engine, *MockPriceListRepository, *MockProductCatalog, *PriceHandler) {
	gin.SetMode(gin.TestMode)

	mockLists := new(MockPriceListRepository)
	mockCatalog := new(MockProductCatalog)
	service := pricingapp.NewPriceValidationService(mockLists, mockCatalog, decimal.NewFromInt(1), zap.NewNop())
	h := NewPriceHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, uuid.MustParse("00000000-0000-0000-0000-000000000001"), uuid.New())
		c.Next()
	})
	router.POST("/sales/prices/resolve", h.ResolvePrice)

	return router, mockLists, mockCatalog, h
}

func newTestPriceList(tenantID uuid.UUID, productID uuid.UUID, price float64) pricing.PriceList {
	list := pricing.PriceList{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                "BASE",
		Name:                "Base prices",
		Currency:            "USD",
		IsActive:            true,
	}
	list.Items = []pricing.PriceListItem{
		{
			ID:          uuid.New(),
			PriceListID: list.ID,
			ProductID:   productID,
			Price:       decimal.NewFromFloat(price),
		},
	}
	return list
}

func TestPriceHandler_ResolvePrice(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("resolves from public price list", func(t *testing.T) {
		router, mockLists, _, _ := setupPriceTestRouter()

		productID := uuid.New()
		mockLists.On("FindPublic", mock.Anything, tenantID, mock.Anything, mock.Anything).
			Return([]pricing.PriceList{newTestPriceList(tenantID, productID, 99.99)}, nil)

		reqBody := map[string]interface{}{
			"product_id":   productID.String(),
			"client_price": "99.99",
			"quantity":     "2",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/prices/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp["success"].(bool))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "PUBLIC_PRICE_LIST", data["source"])
		assert.Equal(t, true, data["trusted"])

		mockLists.AssertExpectations(t)
	})

	t.Run("rejects client price outside tolerance", func(t *testing.T) {
		router, mockLists, _, _ := setupPriceTestRouter()

		productID := uuid.New()
		mockLists.On("FindPublic", mock.Anything, tenantID, mock.Anything, mock.Anything).
			Return([]pricing.PriceList{newTestPriceList(tenantID, productID, 100)}, nil)

		reqBody := map[string]interface{}{
			"product_id":   productID.String(),
			"client_price": "80",
			"quantity":     "1",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/prices/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), pricing.ErrCodePriceMismatch)
	})

	t.Run("falls back to the catalog price", func(t *testing.T) {
		router, mockLists, mockCatalog, _ := setupPriceTestRouter()

		productID := uuid.New()
		mockLists.On("FindPublic", mock.Anything, tenantID, mock.Anything, mock.Anything).
			Return([]pricing.PriceList{}, nil)
		mockCatalog.On("FindByIDForTenant", mock.Anything, tenantID, productID).
			Return(&pricing.CatalogProduct{
				ID:        productID,
				Code:      "SKU-001",
				Name:      "Widget",
				UnitPrice: decimal.NewFromFloat(49.50),
				Currency:  "USD",
				IsActive:  true,
			}, nil)

		reqBody := map[string]interface{}{
			"product_id":   productID.String(),
			"client_price": "49.50",
			"quantity":     "1",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/prices/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "CATALOG", data["source"])

		mockCatalog.AssertExpectations(t)
	})

	t.Run("returns 400 for malformed body", func(t *testing.T) {
		router, _, _, _ := setupPriceTestRouter()

		req, _ := http.NewRequest(http.MethodPost, "/sales/prices/resolve", bytes.NewBufferString(`{"currency": ""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
