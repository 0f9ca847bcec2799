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
	"github.com/erp/pricing/internal/infrastructure/auth"
	"github.com/erp/pricing/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupDiscountTestRouter(t *testing.T) (*gin.Engine, *MockDiscountRepository, *DiscountHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockDiscountRepository)
	scope := pricingapp.NewNoOpTransactionScope(mockRepo, new(MockPromotionRepository), new(MockPromotionUsageRepository))
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	service := pricingapp.NewDiscountValidationService(scope, store, zap.NewNop())
	h := NewDiscountHandler(service, auth.NewRoleAccessPolicy())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, uuid.MustParse("00000000-0000-0000-0000-000000000001"), uuid.New())
		c.Next()
	})

	return router, mockRepo, h
}

func newTestDiscount(tenantID uuid.UUID, code string, stackable bool) *pricing.Discount {
	return &pricing.Discount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                "Test discount " + code,
		Kind:                pricing.DiscountKindCoupon,
		ValueType:           pricing.ValueTypePercentage,
		Value:               decimal.NewFromInt(10),
		Currency:            "USD",
		IsStackable:         stackable,
		IsActive:            true,
	}
}

func TestDiscountHandler_Validate(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("validates a coupon code", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/validate", h.Validate)

		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "SAVE10").
			Return(newTestDiscount(tenantID, "SAVE10", true), nil)

		reqBody := map[string]interface{}{
			"code":         "SAVE10",
			"order_amount": "200",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/validate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp["success"].(bool))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "SAVE10", data["code"])
		assert.Equal(t, "COUPON", data["kind"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for unknown code", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/validate", h.Validate)

		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "NOPE").
			Return(nil, shared.ErrNotFound)

		reqBody := map[string]interface{}{
			"code":         "NOPE",
			"order_amount": "200",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/validate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), pricing.ErrCodeCouponNotFound)
	})

	t.Run("returns 400 for missing code", func(t *testing.T) {
		router, _, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/validate", h.Validate)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/validate", bytes.NewBufferString(`{"order_amount": "200", "currency": "USD"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDiscountHandler_ValidateMultiple(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("stacks two stackable coupons", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/validate-batch", h.ValidateMultiple)

		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "SAVE10").
			Return(newTestDiscount(tenantID, "SAVE10", true), nil)
		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "EXTRA5").
			Return(newTestDiscount(tenantID, "EXTRA5", true), nil)

		reqBody := map[string]interface{}{
			"codes":        []string{"SAVE10", "EXTRA5"},
			"order_amount": "100",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/validate-batch", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		results := data["results"].([]interface{})
		assert.Len(t, results, 2)
	})

	t.Run("rejects two non-stackable coupons", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/validate-batch", h.ValidateMultiple)

		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "SOLO1").
			Return(newTestDiscount(tenantID, "SOLO1", false), nil)
		mockRepo.On("FindByCodeForTenant", mock.Anything, tenantID, "SOLO2").
			Return(newTestDiscount(tenantID, "SOLO2", false), nil)

		reqBody := map[string]interface{}{
			"codes":        []string{"SOLO1", "SOLO2"},
			"order_amount": "100",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/validate-batch", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), pricing.ErrCodeDiscountsCannotMix)
	})
}

func TestDiscountHandler_GetAutomatic(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("lists applicable automatic discounts", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/automatic", h.GetAutomatic)

		auto := newTestDiscount(tenantID, "AUTO5", true)
		auto.Kind = pricing.DiscountKindAutomatic
		mockRepo.On("FindAutomatic", mock.Anything, tenantID, mock.Anything).
			Return([]pricing.Discount{*auto}, nil)

		reqBody := map[string]interface{}{
			"order_amount": "500",
			"currency":     "USD",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/automatic", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		results := resp["data"].([]interface{})
		assert.Len(t, results, 1)
	})
}

func TestDiscountHandler_CommitUsage(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("commits a redemption once", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/:id/redemptions", h.CommitUsage)

		discountID := uuid.New()
		orderID := uuid.New()
		mockRepo.On("RecordRedemption", mock.Anything, tenantID, discountID, orderID).
			Return(nil).Once()
		mockRepo.On("IncrementUsage", mock.Anything, tenantID, discountID).
			Return(nil).Once()

		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: orderID.String()})

		// first commit hits the repository
		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/"+discountID.String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		// replay for the same order is deduplicated
		req, _ = http.NewRequest(http.MethodPost, "/sales/discounts/"+discountID.String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		mockRepo.AssertExpectations(t)
	})

	t.Run("maps exhausted usage to 409", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/:id/redemptions", h.CommitUsage)

		discountID := uuid.New()
		mockRepo.On("RecordRedemption", mock.Anything, tenantID, discountID, mock.Anything).
			Return(nil)
		mockRepo.On("IncrementUsage", mock.Anything, tenantID, discountID).
			Return(pricing.ErrUsageExhausted)

		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: uuid.New().String()})

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/"+discountID.String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), pricing.ErrCodeCouponLimitExceeded)
	})

	t.Run("salesperson cannot commit another salesperson's order", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/:id/redemptions", h.CommitUsage)

		other := uuid.New()
		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: uuid.New().String(), SalespersonID: &other})

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/"+uuid.New().String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockRepo.AssertNotCalled(t, "RecordRedemption", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("manager commits another salesperson's order", func(t *testing.T) {
		router, mockRepo, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/:id/redemptions", func(c *gin.Context) {
			setJWTRoles(c, auth.RoleSalesManager)
		}, h.CommitUsage)

		discountID := uuid.New()
		orderID := uuid.New()
		other := uuid.New()
		mockRepo.On("RecordRedemption", mock.Anything, tenantID, discountID, orderID).Return(nil)
		mockRepo.On("IncrementUsage", mock.Anything, tenantID, discountID).Return(nil)

		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: orderID.String(), SalespersonID: &other})

		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/"+discountID.String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unauthenticated commit is rejected", func(t *testing.T) {
		_, _, h := setupDiscountTestRouter(t)
		router := gin.New()
		router.POST("/sales/discounts/:id/redemptions", h.CommitUsage)

		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: uuid.New().String()})
		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/"+uuid.New().String()+"/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed discount id", func(t *testing.T) {
		router, _, h := setupDiscountTestRouter(t)
		router.POST("/sales/discounts/:id/redemptions", h.CommitUsage)

		body, _ := json.Marshal(CommitDiscountUsageRequest{OrderID: uuid.New().String()})
		req, _ := http.NewRequest(http.MethodPost, "/sales/discounts/not-a-uuid/redemptions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
