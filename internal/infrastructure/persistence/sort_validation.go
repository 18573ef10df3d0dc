package persistence

import (
	"strings"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"gorm.io/gorm"
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

// ContractSortFields contains allowed sort fields for contracts
var ContractSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"contract_number": true,
	"start_date":      true,
	"end_date":        true,
	"monthly_rent":    true,
	"status":          true,
}

// ChargeSortFields contains allowed sort fields for charges
var ChargeSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"charge_date":     true,
	"due_date":        true,
	"amount_original": true,
	"amount_paid":     true,
	"status":          true,
	"charge_type":     true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"payment_date":   true,
	"receipt_number": true,
	"amount":         true,
	"status":         true,
}

// DelinquentAccountSortFields contains allowed sort fields for collections records
var DelinquentAccountSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"due_date":         true,
	"days_overdue":     true,
	"pending_amount":   true,
	"penalty_amount":   true,
	"next_action_date": true,
	"state":            true,
}

// paginate applies the whitelisted ordering and the page window of filter.
// The id tiebreaker keeps pages stable when the sort column has duplicates.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id " + dir)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
