package lease

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/shopspring/decimal"
)

// ContractTermsInput carries the editable terms of a contract
type ContractTermsInput struct {
	PropertyID            uuid.UUID       `json:"property_id" binding:"required"`
	PersonID              uuid.UUID       `json:"person_id" binding:"required"`
	GuarantorID           *uuid.UUID      `json:"guarantor_id"`
	StartDate             time.Time       `json:"start_date" binding:"required"`
	EndDate               time.Time       `json:"end_date" binding:"required,gtfield=StartDate"`
	MonthlyRent           decimal.Decimal `json:"monthly_rent" binding:"required,money"`
	Deposit               decimal.Decimal `json:"deposit"`
	GuaranteeBond         decimal.Decimal `json:"guarantee_bond"`
	DailyPenalty          decimal.Decimal `json:"daily_penalty"`
	PenaltyPercent        decimal.Decimal `json:"penalty_percent"`
	GraceDays             int             `json:"grace_days" binding:"min=0,max=31"`
	AnnualIncreasePercent decimal.Decimal `json:"annual_increase_percent"`
	PaymentDay            int             `json:"payment_day" binding:"required,min=1,max=31"`
	Conditions            string          `json:"conditions"`
}

func (in ContractTermsInput) toDomain() lease.Terms {
	return lease.Terms{
		PropertyID:            in.PropertyID,
		PersonID:              in.PersonID,
		GuarantorID:           in.GuarantorID,
		StartDate:             in.StartDate,
		EndDate:               in.EndDate,
		MonthlyRent:           in.MonthlyRent,
		Deposit:               in.Deposit,
		GuaranteeBond:         in.GuaranteeBond,
		DailyPenalty:          in.DailyPenalty,
		PenaltyPercent:        in.PenaltyPercent,
		GraceDays:             in.GraceDays,
		AnnualIncreasePercent: in.AnnualIncreasePercent,
		PaymentDay:            in.PaymentDay,
		Conditions:            in.Conditions,
	}
}

// CreateContractRequest represents a request to create a draft contract
type CreateContractRequest struct {
	ContractNumber string `json:"contract_number" binding:"omitempty,max=50"`
	ContractTermsInput
	Notes     string     `json:"notes"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateContractRequest replaces the terms of a draft contract
type UpdateContractRequest struct {
	ContractTermsInput
}

// UpdateNotesRequest sets the administrative notes of a contract
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// TerminateContractRequest represents a request to terminate a contract early
type TerminateContractRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CancelContractRequest represents a request to cancel a contract
type CancelContractRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RenewContractRequest represents a request to renew an in-force contract
type RenewContractRequest struct {
	NewEndDate          time.Time        `json:"new_end_date" binding:"required"`
	NewRent             *decimal.Decimal `json:"new_rent"`
	NewGuarantorID      *uuid.UUID       `json:"new_guarantor_id"`
	NewConditions       *string          `json:"new_conditions"`
	ApplyAnnualIncrease bool             `json:"apply_annual_increase"`
	Notes               string           `json:"notes"`
}

// ContractListFilter defines filtering options for contract lists
type ContractListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	PropertyID *uuid.UUID `form:"-" query:"property_id"`
	PersonID   *uuid.UUID `form:"-" query:"person_id"`
	Active     *bool      `form:"active"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID                    uuid.UUID       `json:"id"`
	TenantID              uuid.UUID       `json:"tenant_id"`
	ContractNumber        string          `json:"contract_number"`
	PropertyID            uuid.UUID       `json:"property_id"`
	PersonID              uuid.UUID       `json:"person_id"`
	GuarantorID           *uuid.UUID      `json:"guarantor_id,omitempty"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               time.Time       `json:"end_date"`
	MonthlyRent           decimal.Decimal `json:"monthly_rent"`
	Deposit               decimal.Decimal `json:"deposit"`
	GuaranteeBond         decimal.Decimal `json:"guarantee_bond"`
	DailyPenalty          decimal.Decimal `json:"daily_penalty"`
	PenaltyPercent        decimal.Decimal `json:"penalty_percent"`
	GraceDays             int             `json:"grace_days"`
	AnnualIncreasePercent decimal.Decimal `json:"annual_increase_percent"`
	PaymentDay            int             `json:"payment_day"`
	Conditions            string          `json:"conditions,omitempty"`
	Status                string          `json:"status"`
	StoredStatus          string          `json:"stored_status"`
	DaysRemaining         int             `json:"days_remaining"`
	PredecessorID         *uuid.UUID      `json:"predecessor_id,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	TerminationReason     string          `json:"termination_reason,omitempty"`
	CancelReason          string          `json:"cancel_reason,omitempty"`
	ActivatedAt           *time.Time      `json:"activated_at,omitempty"`
	TerminatedAt          *time.Time      `json:"terminated_at,omitempty"`
	CancelledAt           *time.Time      `json:"cancelled_at,omitempty"`
	RenewedAt             *time.Time      `json:"renewed_at,omitempty"`
	Active                bool            `json:"active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Version               int             `json:"version"`
}

// RenewalResponse returns both sides of a renewal
type RenewalResponse struct {
	Source    ContractResponse `json:"source"`
	Successor ContractResponse `json:"successor"`
}

// DeleteResult tells whether a contract was removed or only deactivated
type DeleteResult struct {
	ID          uuid.UUID `json:"id"`
	Deleted     bool      `json:"deleted"`
	Deactivated bool      `json:"deactivated"`
}

// ContractStats counts contracts per display status
type ContractStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// ExpiryScanResult summarizes one expiry scan
type ExpiryScanResult struct {
	Scanned      int `json:"scanned"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// ToContractResponse converts a domain contract as seen on today
func ToContractResponse(c *lease.Contract, today time.Time) ContractResponse {
	return ContractResponse{
		ID:                    c.ID,
		TenantID:              c.TenantID,
		ContractNumber:        c.ContractNumber,
		PropertyID:            c.PropertyID,
		PersonID:              c.PersonID,
		GuarantorID:           c.GuarantorID,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
		MonthlyRent:           c.MonthlyRent,
		Deposit:               c.Deposit,
		GuaranteeBond:         c.GuaranteeBond,
		DailyPenalty:          c.DailyPenalty,
		PenaltyPercent:        c.PenaltyPercent,
		GraceDays:             c.GraceDays,
		AnnualIncreasePercent: c.AnnualIncreasePercent,
		PaymentDay:            c.PaymentDay,
		Conditions:            c.Conditions,
		Status:                string(c.DisplayStatus(today)),
		StoredStatus:          string(c.Status),
		DaysRemaining:         c.DaysRemaining(today),
		PredecessorID:         c.PredecessorID,
		Notes:                 c.Notes,
		TerminationReason:     c.TerminationReason,
		CancelReason:          c.CancelReason,
		ActivatedAt:           c.ActivatedAt,
		TerminatedAt:          c.TerminatedAt,
		CancelledAt:           c.CancelledAt,
		RenewedAt:             c.RenewedAt,
		Active:                c.Active,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
		Version:               c.Version,
	}
}
