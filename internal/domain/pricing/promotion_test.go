package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromotion(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates valid percentage promotion", func(t *testing.T) {
		p, err := NewPromotion(tenantID, "SUMMER", "Summer sale", PromotionTypePercentage, decimal.NewFromInt(15))
		require.NoError(t, err)
		assert.Equal(t, PromotionStatusActive, p.Status)
		assert.True(t, p.IsActive)
		assert.False(t, p.IsExclusive)
	})

	t.Run("buy-x-get-y needs no value", func(t *testing.T) {
		_, err := NewPromotion(tenantID, "BOGO", "Buy one get one", PromotionTypeBuyXGetY, decimal.Zero)
		assert.NoError(t, err)
	})

	t.Run("rejects non-positive value for monetary types", func(t *testing.T) {
		_, err := NewPromotion(tenantID, "X", "x", PromotionTypeFixed, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects percentage over 100", func(t *testing.T) {
		_, err := NewPromotion(tenantID, "X", "x", PromotionTypePercentage, decimal.NewFromInt(150))
		assert.Error(t, err)
	})
}

func TestPromotionIsValidAt(t *testing.T) {
	p, err := NewPromotion(uuid.New(), "FLASH", "Flash sale", PromotionTypePercentage, decimal.NewFromInt(20))
	require.NoError(t, err)

	now := time.Now()

	t.Run("active status inside window", func(t *testing.T) {
		assert.True(t, p.IsValidAt(now))
	})

	t.Run("suspended status blocks redemption", func(t *testing.T) {
		p.Status = PromotionStatusSuspended
		assert.False(t, p.IsValidAt(now))
		p.Status = PromotionStatusActive
	})

	t.Run("scheduled status blocks redemption", func(t *testing.T) {
		p.Status = PromotionStatusScheduled
		assert.False(t, p.IsValidAt(now))
		p.Status = PromotionStatusActive
	})

	t.Run("window bounds", func(t *testing.T) {
		from := now.Add(time.Hour)
		p.ValidFrom = &from
		assert.False(t, p.IsValidAt(now))
		p.ValidFrom = nil

		to := now.Add(-time.Minute)
		p.ValidTo = &to
		assert.False(t, p.IsValidAt(now))
		p.ValidTo = nil
	})
}

func TestPromotionUsageCaps(t *testing.T) {
	p, err := NewPromotion(uuid.New(), "CAPPED", "Capped promo", PromotionTypeFixed, decimal.NewFromInt(10))
	require.NoError(t, err)

	t.Run("global cap", func(t *testing.T) {
		p.UsageLimit = intPtr(5)
		p.TotalUsageCount = 4
		assert.True(t, p.HasRemainingUses())
		assert.Equal(t, 1, *p.RemainingUses())

		p.TotalUsageCount = 5
		assert.False(t, p.HasRemainingUses())
	})

	t.Run("per-customer cap", func(t *testing.T) {
		p.UsageLimitPerCustomer = intPtr(2)
		assert.True(t, p.CanBeUsedByCustomer(0))
		assert.True(t, p.CanBeUsedByCustomer(1))
		assert.False(t, p.CanBeUsedByCustomer(2))
	})

	t.Run("nil per-customer limit is unlimited", func(t *testing.T) {
		p.UsageLimitPerCustomer = nil
		assert.True(t, p.CanBeUsedByCustomer(999))
	})
}

func TestPromotionFreeItem(t *testing.T) {
	p, err := NewPromotion(uuid.New(), "BOGO", "Buy one get one", PromotionTypeBuyXGetY, decimal.Zero)
	require.NoError(t, err)

	t.Run("nil without a free product", func(t *testing.T) {
		assert.Nil(t, p.FreeItem())
	})

	t.Run("returns configured free goods", func(t *testing.T) {
		productID := uuid.New()
		p.FreeProductID = &productID
		p.FreeProductQuantity = decimal.NewFromInt(2)

		item := p.FreeItem()
		require.NotNil(t, item)
		assert.Equal(t, productID, item.ProductID)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))
	})

	t.Run("defaults quantity to one", func(t *testing.T) {
		productID := uuid.New()
		p.FreeProductID = &productID
		p.FreeProductQuantity = decimal.Zero

		item := p.FreeItem()
		require.NotNil(t, item)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("monetary promotions grant no free goods", func(t *testing.T) {
		fixed, err := NewPromotion(uuid.New(), "TEN", "Ten off", PromotionTypeFixed, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Nil(t, fixed.FreeItem())
	})
}

func TestPromotionCalculate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("percentage", func(t *testing.T) {
		p, err := NewPromotion(tenantID, "P15", "15% off", PromotionTypePercentage, decimal.NewFromInt(15))
		require.NoError(t, err)

		amount, err := p.Calculate(usd(t, 400))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(60)))
	})

	t.Run("fixed clamps to order amount", func(t *testing.T) {
		p, err := NewPromotion(tenantID, "F100", "100 off", PromotionTypeFixed, decimal.NewFromInt(100))
		require.NoError(t, err)

		amount, err := p.Calculate(usd(t, 80))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(80)))
	})

	t.Run("buy-x-get-y has zero monetary benefit", func(t *testing.T) {
		p, err := NewPromotion(tenantID, "BOGO", "Buy one get one", PromotionTypeBuyXGetY, decimal.Zero)
		require.NoError(t, err)

		amount, err := p.Calculate(usd(t, 500))
		require.NoError(t, err)
		assert.True(t, amount.IsZero())
	})

	t.Run("maximum discount amount caps the result", func(t *testing.T) {
		p, err := NewPromotion(tenantID, "P50", "Half off", PromotionTypePercentage, decimal.NewFromInt(50))
		require.NoError(t, err)
		p.MaximumDiscountAmount = decPtr(75)

		amount, err := p.Calculate(usd(t, 1000))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(75)))
	})
}
