package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PriceListSortFields contains allowed sort fields for price lists
var PriceListSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"currency":   true,
	"priority":   true,
	"valid_from": true,
	"valid_to":   true,
	"is_active":  true,
}

// DiscountSortFields contains allowed sort fields for discounts
var DiscountSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"kind":        true,
	"value":       true,
	"priority":    true,
	"valid_from":  true,
	"valid_to":    true,
	"is_active":   true,
	"usage_count": true,
}

// PromotionSortFields contains allowed sort fields for promotions
var PromotionSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"code":              true,
	"name":              true,
	"type":              true,
	"value":             true,
	"priority":          true,
	"status":            true,
	"valid_from":        true,
	"valid_to":          true,
	"is_active":         true,
	"total_usage_count": true,
}

// PromotionUsageSortFields contains allowed sort fields for promotion usage records
var PromotionUsageSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"customer_id": true,
	"usage_count": true,
}
