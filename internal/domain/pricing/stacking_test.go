package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentCandidate(kind AdjustmentKind, code string, priority int, percent int64) StackCandidate {
	return StackCandidate{
		Kind:        kind,
		SourceID:    uuid.New(),
		Code:        code,
		Priority:    priority,
		IsStackable: true,
		ValueType:   ValueTypePercentage,
		Value:       decimal.NewFromInt(percent),
	}
}

func fixedCandidate(kind AdjustmentKind, code string, priority int, amount int64) StackCandidate {
	return StackCandidate{
		Kind:        kind,
		SourceID:    uuid.New(),
		Code:        code,
		Priority:    priority,
		IsStackable: true,
		ValueType:   ValueTypeFixedAmount,
		Value:       decimal.NewFromInt(amount),
	}
}

func TestSelectExclusive(t *testing.T) {
	t.Run("nil when nothing is exclusive", func(t *testing.T) {
		cands := []StackCandidate{
			percentCandidate(AdjustmentKindDiscount, "A", 1, 10),
			percentCandidate(AdjustmentKindPromotion, "B", 2, 10),
		}
		assert.Nil(t, SelectExclusive(cands))
	})

	t.Run("highest priority exclusive wins", func(t *testing.T) {
		low := percentCandidate(AdjustmentKindPromotion, "LOW", 1, 10)
		low.IsExclusive = true
		high := percentCandidate(AdjustmentKindPromotion, "HIGH", 9, 10)
		high.IsExclusive = true

		winner := SelectExclusive([]StackCandidate{low, high})
		require.NotNil(t, winner)
		assert.Equal(t, "HIGH", winner.Code)
	})

	t.Run("equal priority breaks by lexical code order", func(t *testing.T) {
		b := percentCandidate(AdjustmentKindPromotion, "BRAVO", 5, 10)
		b.IsExclusive = true
		a := percentCandidate(AdjustmentKindPromotion, "ALPHA", 5, 10)
		a.IsExclusive = true

		winner := SelectExclusive([]StackCandidate{b, a})
		require.NotNil(t, winner)
		assert.Equal(t, "ALPHA", winner.Code)
	})
}

func TestApplyStack(t *testing.T) {
	t.Run("empty stack returns base untouched", func(t *testing.T) {
		result, err := ApplyStack(usd(t, 100), nil)
		require.NoError(t, err)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(100)))
		assert.True(t, result.TotalDiscount.IsZero())
		assert.Empty(t, result.Applied)
	})

	t.Run("percentages compound against the running remainder", func(t *testing.T) {
		// 1000 -> 10% -> 10% = 810, not 800
		cands := []StackCandidate{
			percentCandidate(AdjustmentKindDiscount, "FIRST", 1, 10),
			percentCandidate(AdjustmentKindDiscount, "SECOND", 2, 10),
		}

		result, err := ApplyStack(usd(t, 1000), cands)
		require.NoError(t, err)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(810)))
		assert.True(t, result.TotalDiscount.Amount().Equal(decimal.NewFromInt(190)))
		require.Len(t, result.Applied, 2)
		assert.True(t, result.Applied[0].Amount.Amount().Equal(decimal.NewFromInt(100)))
		assert.True(t, result.Applied[1].Amount.Amount().Equal(decimal.NewFromInt(90)))
	})

	t.Run("discounts apply in priority ascending order", func(t *testing.T) {
		cands := []StackCandidate{
			fixedCandidate(AdjustmentKindDiscount, "LATER", 5, 10),
			fixedCandidate(AdjustmentKindDiscount, "EARLIER", 1, 10),
		}

		result, err := ApplyStack(usd(t, 100), cands)
		require.NoError(t, err)
		require.Len(t, result.Applied, 2)
		assert.Equal(t, "EARLIER", result.Applied[0].Code)
		assert.Equal(t, "LATER", result.Applied[1].Code)
	})

	t.Run("promotions apply after discounts in priority descending order", func(t *testing.T) {
		cands := []StackCandidate{
			fixedCandidate(AdjustmentKindPromotion, "PROMO_LOW", 1, 5),
			fixedCandidate(AdjustmentKindDiscount, "COUPON", 9, 5),
			fixedCandidate(AdjustmentKindPromotion, "PROMO_HIGH", 8, 5),
		}

		result, err := ApplyStack(usd(t, 100), cands)
		require.NoError(t, err)
		require.Len(t, result.Applied, 3)
		assert.Equal(t, "COUPON", result.Applied[0].Code)
		assert.Equal(t, "PROMO_HIGH", result.Applied[1].Code)
		assert.Equal(t, "PROMO_LOW", result.Applied[2].Code)
	})

	t.Run("exclusive promotion suppresses everything else", func(t *testing.T) {
		excl := fixedCandidate(AdjustmentKindPromotion, "EXCLUSIVE", 1, 30)
		excl.IsExclusive = true
		cands := []StackCandidate{
			percentCandidate(AdjustmentKindDiscount, "COUPON", 1, 50),
			excl,
		}

		result, err := ApplyStack(usd(t, 100), cands)
		require.NoError(t, err)
		assert.True(t, result.ExclusiveApplied)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "EXCLUSIVE", result.Applied[0].Code)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(70)))
	})

	t.Run("final amount never goes negative", func(t *testing.T) {
		cands := []StackCandidate{
			fixedCandidate(AdjustmentKindDiscount, "BIG", 1, 80),
			fixedCandidate(AdjustmentKindDiscount, "BIGGER", 2, 80),
		}

		result, err := ApplyStack(usd(t, 100), cands)
		require.NoError(t, err)
		assert.True(t, result.FinalAmount.IsZero())
		assert.True(t, result.TotalDiscount.Amount().Equal(decimal.NewFromInt(100)))
		// Second step was clamped to the remainder.
		assert.True(t, result.Applied[1].Amount.Amount().Equal(decimal.NewFromInt(20)))
	})

	t.Run("maximum discount amount caps a step", func(t *testing.T) {
		capped := percentCandidate(AdjustmentKindDiscount, "CAPPED", 1, 50)
		maxAmount := decimal.NewFromInt(25)
		capped.MaximumDiscountAmount = &maxAmount

		result, err := ApplyStack(usd(t, 100), []StackCandidate{capped})
		require.NoError(t, err)
		assert.True(t, result.Applied[0].Amount.Amount().Equal(decimal.NewFromInt(25)))
	})

	t.Run("free items pass through the stack", func(t *testing.T) {
		bogo := fixedCandidate(AdjustmentKindPromotion, "BOGO", 1, 0)
		bogo.FreeItem = &FreeItem{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}

		result, err := ApplyStack(usd(t, 100), []StackCandidate{bogo})
		require.NoError(t, err)
		require.Len(t, result.FreeItems, 1)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("only one non-stackable candidate joins the stack", func(t *testing.T) {
		loser := fixedCandidate(AdjustmentKindPromotion, "SOLO_LOW", 1, 30)
		loser.IsStackable = false
		winner := fixedCandidate(AdjustmentKindPromotion, "SOLO_HIGH", 9, 20)
		winner.IsStackable = false
		cands := []StackCandidate{
			loser,
			winner,
			fixedCandidate(AdjustmentKindDiscount, "COUPON", 1, 10),
		}

		result, err := ApplyStack(usd(t, 100), cands)
		require.NoError(t, err)
		require.Len(t, result.Applied, 2)
		assert.Equal(t, "COUPON", result.Applied[0].Code)
		assert.Equal(t, "SOLO_HIGH", result.Applied[1].Code)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(70)))
	})

	t.Run("non-stackable tie breaks by lexical code order", func(t *testing.T) {
		b := fixedCandidate(AdjustmentKindPromotion, "BRAVO", 5, 10)
		b.IsStackable = false
		a := fixedCandidate(AdjustmentKindPromotion, "ALPHA", 5, 10)
		a.IsStackable = false

		result, err := ApplyStack(usd(t, 100), []StackCandidate{b, a})
		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.Equal(t, "ALPHA", result.Applied[0].Code)
	})

	t.Run("a lone non-stackable candidate still applies", func(t *testing.T) {
		solo := fixedCandidate(AdjustmentKindDiscount, "SOLO", 1, 15)
		solo.IsStackable = false

		result, err := ApplyStack(usd(t, 100), []StackCandidate{solo})
		require.NoError(t, err)
		require.Len(t, result.Applied, 1)
		assert.True(t, result.FinalAmount.Amount().Equal(decimal.NewFromInt(85)))
	})

	t.Run("rejects negative base amount", func(t *testing.T) {
		_, err := ApplyStack(usd(t, -1), nil)
		assert.Error(t, err)
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		cands := []StackCandidate{
			fixedCandidate(AdjustmentKindDiscount, "B", 2, 1),
			fixedCandidate(AdjustmentKindDiscount, "A", 1, 1),
		}
		_, err := ApplyStack(usd(t, 10), cands)
		require.NoError(t, err)
		assert.Equal(t, "B", cands[0].Code)
	})
}

func TestCandidateFromPromotion(t *testing.T) {
	t.Run("buy-x-get-y carries zero value and the free item", func(t *testing.T) {
		free := &FreeItem{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}
		r := PromotionValidationResult{
			PromotionID: uuid.New(),
			Code:        "BOGO",
			Type:        PromotionTypeBuyXGetY,
			Priority:    3,
			FreeItem:    free,
		}

		c := CandidateFromPromotion(r)
		assert.True(t, c.Value.IsZero())
		assert.Equal(t, free, c.FreeItem)
		assert.Equal(t, AdjustmentKindPromotion, c.Kind)
	})

	t.Run("percentage maps to percentage value type", func(t *testing.T) {
		r := PromotionValidationResult{
			PromotionID: uuid.New(),
			Code:        "P10",
			Type:        PromotionTypePercentage,
			Value:       decimal.NewFromInt(10),
			IsStackable: true,
			IsExclusive: true,
		}

		c := CandidateFromPromotion(r)
		assert.Equal(t, ValueTypePercentage, c.ValueType)
		assert.True(t, c.IsStackable)
		assert.True(t, c.IsExclusive)
	})
}
