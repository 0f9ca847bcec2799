package pricing

import (
	"sort"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentKind distinguishes discount and promotion stack entries
type AdjustmentKind string

const (
	AdjustmentKindDiscount  AdjustmentKind = "DISCOUNT"
	AdjustmentKindPromotion AdjustmentKind = "PROMOTION"
)

// StackCandidate is a validated adjustment waiting to be stacked.
// Percentage candidates are recomputed against the running remainder,
// so DiscountAmount from validation is advisory here.
type StackCandidate struct {
	Kind                  AdjustmentKind
	SourceID              uuid.UUID
	Code                  string
	Priority              int
	IsStackable           bool
	IsExclusive           bool
	ValueType             DiscountValueType
	Value                 decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	FreeItem              *FreeItem
}

// CandidateFromDiscount converts a validated discount into a stack candidate
func CandidateFromDiscount(r DiscountValidationResult) StackCandidate {
	return StackCandidate{
		Kind:                  AdjustmentKindDiscount,
		SourceID:              r.DiscountID,
		Code:                  r.Code,
		Priority:              r.Priority,
		IsStackable:           r.IsStackable,
		ValueType:             r.ValueType,
		Value:                 r.Value,
		MaximumDiscountAmount: r.MaximumDiscountAmount,
	}
}

// CandidateFromPromotion converts a validated promotion into a stack candidate.
// Buy-X-get-Y promotions carry a zero monetary value; their benefit is the
// free item, which passes through the stack untouched.
func CandidateFromPromotion(r PromotionValidationResult) StackCandidate {
	c := StackCandidate{
		Kind:                  AdjustmentKindPromotion,
		SourceID:              r.PromotionID,
		Code:                  r.Code,
		Priority:              r.Priority,
		IsStackable:           r.IsStackable,
		IsExclusive:           r.IsExclusive,
		MaximumDiscountAmount: r.MaximumDiscountAmount,
		FreeItem:              r.FreeItem,
	}
	switch r.Type {
	case PromotionTypePercentage:
		c.ValueType = ValueTypePercentage
		c.Value = r.Value
	case PromotionTypeFixed:
		c.ValueType = ValueTypeFixedAmount
		c.Value = r.Value
	case PromotionTypeBuyXGetY:
		c.ValueType = ValueTypeFixedAmount
		c.Value = decimal.Zero
	}
	return c
}

// AppliedAdjustment is one step of a settled stack
type AppliedAdjustment struct {
	Kind     AdjustmentKind    `json:"kind"`
	SourceID uuid.UUID         `json:"source_id"`
	Code     string            `json:"code"`
	Amount   valueobject.Money `json:"amount"`
}

// StackingResult is the settled adjustment plan for an order amount
type StackingResult struct {
	BaseAmount       valueobject.Money
	TotalDiscount    valueobject.Money
	FinalAmount      valueobject.Money
	Applied          []AppliedAdjustment
	FreeItems        []FreeItem
	ExclusiveApplied bool
}

// SelectExclusive returns the winning exclusive candidate, or nil when none
// is exclusive. The highest priority wins; equal priorities are broken by
// lexical code order so selection is deterministic across replicas.
func SelectExclusive(candidates []StackCandidate) *StackCandidate {
	var winner *StackCandidate
	for i := range candidates {
		c := &candidates[i]
		if !c.IsExclusive {
			continue
		}
		if winner == nil ||
			c.Priority > winner.Priority ||
			(c.Priority == winner.Priority && c.Code < winner.Code) {
			winner = c
		}
	}
	return winner
}

// ApplyStack settles a set of validated adjustments against a base amount.
//
// Any exclusive candidate suppresses everything else; the winner from
// SelectExclusive applies alone. Otherwise at most one non-stackable
// candidate may join the stack; the rest are dropped. Discounts then apply
// first in priority ASCENDING order, then promotions in priority DESCENDING
// order. Each step computes against the running remainder, so percentages
// compound, and the payable amount never drops below zero.
func ApplyStack(base valueobject.Money, candidates []StackCandidate) (*StackingResult, error) {
	if base.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Base amount cannot be negative")
	}

	result := &StackingResult{
		BaseAmount:    base,
		TotalDiscount: valueobject.Zero(base.Currency()),
		FinalAmount:   base,
	}

	if winner := SelectExclusive(candidates); winner != nil {
		result.ExclusiveApplied = true
		return result, applyCandidate(result, *winner)
	}

	ordered := orderForStacking(limitNonStackable(candidates))
	for _, c := range ordered {
		if err := applyCandidate(result, c); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// limitNonStackable drops all but one non-stackable candidate. The survivor
// is chosen like the exclusive winner: highest priority first, then lexical
// code order, so the outcome is deterministic across replicas.
func limitNonStackable(candidates []StackCandidate) []StackCandidate {
	var winner *StackCandidate
	for i := range candidates {
		c := &candidates[i]
		if c.IsStackable {
			continue
		}
		if winner == nil ||
			c.Priority > winner.Priority ||
			(c.Priority == winner.Priority && c.Code < winner.Code) {
			winner = c
		}
	}
	if winner == nil {
		return candidates
	}
	kept := make([]StackCandidate, 0, len(candidates))
	for i := range candidates {
		if !candidates[i].IsStackable && &candidates[i] != winner {
			continue
		}
		kept = append(kept, candidates[i])
	}
	return kept
}

// orderForStacking returns candidates in application order without
// mutating the input. Sorting is stable so equal priorities keep the
// caller's order.
func orderForStacking(candidates []StackCandidate) []StackCandidate {
	discounts := make([]StackCandidate, 0, len(candidates))
	promotions := make([]StackCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Kind == AdjustmentKindPromotion {
			promotions = append(promotions, c)
		} else {
			discounts = append(discounts, c)
		}
	}
	sort.SliceStable(discounts, func(i, j int) bool {
		return discounts[i].Priority < discounts[j].Priority
	})
	sort.SliceStable(promotions, func(i, j int) bool {
		return promotions[i].Priority > promotions[j].Priority
	})
	return append(discounts, promotions...)
}

func applyCandidate(result *StackingResult, c StackCandidate) error {
	remainder := result.FinalAmount

	var amount decimal.Decimal
	switch c.ValueType {
	case ValueTypePercentage:
		amount = remainder.Amount().Mul(c.Value).Div(decimal.NewFromInt(100))
	case ValueTypeFixedAmount:
		amount = c.Value
	default:
		return shared.NewDomainError("INVALID_VALUE_TYPE", "Invalid adjustment value type")
	}

	if c.MaximumDiscountAmount != nil && amount.GreaterThan(*c.MaximumDiscountAmount) {
		amount = *c.MaximumDiscountAmount
	}
	// Clamp to the remainder; the payable amount never goes negative.
	if amount.GreaterThan(remainder.Amount()) {
		amount = remainder.Amount()
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	applied, err := valueobject.NewMoney(amount, remainder.Currency())
	if err != nil {
		return err
	}

	result.Applied = append(result.Applied, AppliedAdjustment{
		Kind:     c.Kind,
		SourceID: c.SourceID,
		Code:     c.Code,
		Amount:   applied,
	})
	result.TotalDiscount = result.TotalDiscount.MustAdd(applied)
	result.FinalAmount = result.FinalAmount.MustSubtract(applied)
	if c.FreeItem != nil {
		result.FreeItems = append(result.FreeItems, *c.FreeItem)
	}
	return nil
}
