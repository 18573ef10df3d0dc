package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ==================== Charge DTOs ====================

// GenerateChargesRequest asks for the monthly rent charges of a period
type GenerateChargesRequest struct {
	Year       int        `json:"year" binding:"required,min=2000,max=2100"`
	Month      int        `json:"month" binding:"required,min=1,max=12"`
	ContractID *uuid.UUID `json:"contract_id"`
}

// GenerateChargesResult summarizes one generation run
type GenerateChargesResult struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Generated int              `json:"generated"`
	Skipped   int              `json:"skipped"`
	Charges   []ChargeResponse `json:"charges"`
	// FailedTenants counts tenants whose run rolled back, all-tenant runs only
	FailedTenants int `json:"failed_tenants,omitempty"`
}

// CreateChargeRequest represents a request to raise an ad-hoc charge
type CreateChargeRequest struct {
	ContractID uuid.UUID       `json:"contract_id" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=RENT DEPOSIT PENALTY MAINTENANCE SERVICE OTHER"`
	Concept    string          `json:"concept" binding:"required,min=1,max=200"`
	Amount     decimal.Decimal `json:"amount" binding:"required,money"`
	ChargeDate time.Time       `json:"charge_date" binding:"required"`
	DueDate    time.Time       `json:"due_date" binding:"required"`
	Notes      string          `json:"notes"`
}

// CancelChargeRequest represents a request to cancel a charge
type CancelChargeRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ChargeListFilter defines filtering options for charge lists
type ChargeListFilter struct {
	ContractID *uuid.UUID `form:"-" query:"contract_id"`
	Status     string     `form:"status"`
	Type       string     `form:"type"`
	DueFrom    *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo      *time.Time `form:"due_to" time_format:"2006-01-02"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ChargeResponse represents a charge in API responses
type ChargeResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	ContractID     uuid.UUID       `json:"contract_id"`
	Type           string          `json:"type"`
	Concept        string          `json:"concept"`
	AmountOriginal decimal.Decimal `json:"amount_original"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountPending  decimal.Decimal `json:"amount_pending"`
	ChargeDate     time.Time       `json:"charge_date"`
	DueDate        time.Time       `json:"due_date"`
	Status         string          `json:"status"`
	StoredStatus   string          `json:"stored_status"`
	DaysOverdue    int             `json:"days_overdue"`
	FixedRecurring bool            `json:"fixed_recurring"`
	PeriodYear     *int            `json:"period_year,omitempty"`
	PeriodMonth    *int            `json:"period_month,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// OutstandingBalance is the open balance of one contract
type OutstandingBalance struct {
	ContractID    uuid.UUID       `json:"contract_id"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	ChargeCount   int             `json:"charge_count"`
	OverdueCount  int             `json:"overdue_count"`
}

// OverdueScanResult summarizes one overdue sweep
type OverdueScanResult struct {
	Scanned       int `json:"scanned"`
	Marked        int `json:"marked"`
	FailedTenants int `json:"failed_tenants,omitempty"`
}

// ToChargeResponse converts a domain charge as seen on today
func ToChargeResponse(c *ledger.Charge, today time.Time) ChargeResponse {
	return ChargeResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		ContractID:     c.ContractID,
		Type:           string(c.Type),
		Concept:        c.Concept,
		AmountOriginal: c.AmountOriginal,
		AmountPaid:     c.AmountPaid,
		AmountPending:  c.Pending(),
		ChargeDate:     c.ChargeDate,
		DueDate:        c.DueDate,
		Status:         string(c.DisplayStatus(today)),
		StoredStatus:   string(c.Status),
		DaysOverdue:    c.DaysOverdue(today),
		FixedRecurring: c.FixedRecurring,
		PeriodYear:     c.PeriodYear,
		PeriodMonth:    c.PeriodMonth,
		Notes:          c.Notes,
		CancelledAt:    c.CancelledAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ==================== Payment DTOs ====================

// AllocationLine is one caller-chosen slice of a payment
type AllocationLine struct {
	ChargeID uuid.UUID       `json:"charge_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required,money"`
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	ContractID  uuid.UUID        `json:"contract_id" binding:"required"`
	PersonID    *uuid.UUID       `json:"person_id"`
	Amount      decimal.Decimal  `json:"amount" binding:"required,money"`
	Type        string           `json:"type" binding:"required,oneof=CASH TRANSFER CHECK DEBIT_CARD CREDIT_CARD BANK_DEPOSIT"`
	PaymentDate *time.Time       `json:"payment_date"`
	Reference   string           `json:"reference" binding:"max=100"`
	Bank        string           `json:"bank" binding:"max=100"`
	CheckNumber string           `json:"check_number" binding:"max=50"`
	Notes       string           `json:"notes"`
	AutoApply   bool             `json:"auto_apply"`
	Allocations []AllocationLine `json:"allocations" binding:"omitempty,dive"`
}

// ApplyManualRequest represents a caller-directed application
type ApplyManualRequest struct {
	Allocations []AllocationLine `json:"allocations" binding:"required,min=1,dive"`
}

// CancelPaymentRequest represents a request to cancel a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RejectPaymentRequest represents a request to reject a bounced payment
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PaymentListFilter defines filtering options for payment lists
type PaymentListFilter struct {
	ContractID *uuid.UUID `form:"-" query:"contract_id"`
	PersonID   *uuid.UUID `form:"-" query:"person_id"`
	Status     string     `form:"status"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ApplicationResponse represents a payment application
type ApplicationResponse struct {
	ID         uuid.UUID       `json:"id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	ChargeID   uuid.UUID       `json:"charge_id"`
	Amount     decimal.Decimal `json:"amount"`
	AppliedAt  time.Time       `json:"applied_at"`
	ReversedAt *time.Time      `json:"reversed_at,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID             `json:"id"`
	TenantID        uuid.UUID             `json:"tenant_id"`
	ContractID      uuid.UUID             `json:"contract_id"`
	PersonID        uuid.UUID             `json:"person_id"`
	ReceiptNumber   string                `json:"receipt_number"`
	Amount          decimal.Decimal       `json:"amount"`
	AmountApplied   decimal.Decimal       `json:"amount_applied"`
	AmountAvailable decimal.Decimal       `json:"amount_available"`
	Type            string                `json:"type"`
	PaymentDate     time.Time             `json:"payment_date"`
	Reference       string                `json:"reference,omitempty"`
	Bank            string                `json:"bank,omitempty"`
	CheckNumber     string                `json:"check_number,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	Status          string                `json:"status"`
	AppliedAt       *time.Time            `json:"applied_at,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	RejectedAt      *time.Time            `json:"rejected_at,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	Applications    []ApplicationResponse `json:"applications,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ApplicationResult reports what one application run did
type ApplicationResult struct {
	Payment      PaymentResponse       `json:"payment"`
	Applications []ApplicationResponse `json:"applications"`
	Applied      decimal.Decimal       `json:"applied"`
	Remaining    decimal.Decimal       `json:"remaining"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		ContractID:      p.ContractID,
		PersonID:        p.PersonID,
		ReceiptNumber:   p.ReceiptNumber,
		Amount:          p.Amount,
		AmountApplied:   p.AmountApplied,
		AmountAvailable: p.Available(),
		Type:            string(p.Type),
		PaymentDate:     p.PaymentDate,
		Reference:       p.Reference,
		Bank:            p.Bank,
		CheckNumber:     p.CheckNumber,
		Notes:           p.Notes,
		Status:          string(p.Status),
		AppliedAt:       p.AppliedAt,
		CancelledAt:     p.CancelledAt,
		RejectedAt:      p.RejectedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// ToApplicationResponse converts a payment application
func ToApplicationResponse(a *ledger.PaymentApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:         a.ID,
		PaymentID:  a.PaymentID,
		ChargeID:   a.ChargeID,
		Amount:     a.Amount,
		AppliedAt:  a.AppliedAt,
		ReversedAt: a.ReversedAt,
	}
}

// ==================== Aging DTOs ====================

// AgingScopeRequest narrows an aging summary
type AgingScopeRequest struct {
	ContractID *uuid.UUID `form:"-" query:"contract_id"`
	PersonID   *uuid.UUID `form:"-" query:"person_id"`
	AsOf       *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// AgingReportRow is one contract line of the aging report
type AgingReportRow struct {
	ContractID     uuid.UUID           `json:"contract_id"`
	ContractNumber string              `json:"contract_number"`
	PersonID       uuid.UUID           `json:"person_id"`
	PropertyID     uuid.UUID           `json:"property_id"`
	Summary        *ledger.AgingSummary `json:"summary"`
}

// AgingReport is the per-contract aging of a tenant
type AgingReport struct {
	AsOf   time.Time            `json:"as_of"`
	Rows   []AgingReportRow     `json:"rows"`
	Totals *ledger.AgingSummary `json:"totals"`
}
