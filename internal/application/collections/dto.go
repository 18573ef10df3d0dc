package collections

import (
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/shopspring/decimal"
)

// AccountResponse represents a delinquent account in API responses
type AccountResponse struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	ChargeID        uuid.UUID        `json:"charge_id"`
	ContractID      uuid.UUID        `json:"contract_id"`
	PersonID        uuid.UUID        `json:"person_id"`
	PropertyID      uuid.UUID        `json:"property_id"`
	Concept         string           `json:"concept"`
	OriginalAmount  decimal.Decimal  `json:"original_amount"`
	PendingAmount   decimal.Decimal  `json:"pending_amount"`
	PenaltyAmount   decimal.Decimal  `json:"penalty_amount"`
	PenaltyBilled   decimal.Decimal  `json:"penalty_billed"`
	UnbilledPenalty decimal.Decimal  `json:"unbilled_penalty"`
	TotalDue        decimal.Decimal  `json:"total_due"`
	DueDate         time.Time        `json:"due_date"`
	DaysOverdue     int              `json:"days_overdue"`
	Bucket          string           `json:"bucket"`
	State           string           `json:"state"`
	PromisedDate    *time.Time       `json:"promised_date,omitempty"`
	PromisedAmount  *decimal.Decimal `json:"promised_amount,omitempty"`
	LastContactAt   *time.Time       `json:"last_contact_at,omitempty"`
	NextActionDate  *time.Time       `json:"next_action_date,omitempty"`
	Active          bool             `json:"active"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	CloseReason     string           `json:"close_reason,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// ToAccountResponse converts a domain delinquent account
func ToAccountResponse(a *collections.DelinquentAccount) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		TenantID:        a.TenantID,
		ChargeID:        a.ChargeID,
		ContractID:      a.ContractID,
		PersonID:        a.PersonID,
		PropertyID:      a.PropertyID,
		Concept:         a.Concept,
		OriginalAmount:  a.OriginalAmount,
		PendingAmount:   a.PendingAmount,
		PenaltyAmount:   a.PenaltyAmount,
		PenaltyBilled:   a.PenaltyBilled,
		UnbilledPenalty: a.UnbilledPenalty(),
		TotalDue:        a.PendingAmount.Add(a.UnbilledPenalty()),
		DueDate:         a.DueDate,
		DaysOverdue:     a.DaysOverdue,
		Bucket:          string(a.Bucket),
		State:           string(a.State),
		PromisedDate:    a.PromisedDate,
		PromisedAmount:  a.PromisedAmount,
		LastContactAt:   a.LastContactAt,
		NextActionDate:  a.NextActionDate,
		Active:          a.Active,
		ClosedAt:        a.ClosedAt,
		CloseReason:     string(a.CloseReason),
		UpdatedAt:       a.UpdatedAt,
		Version:         a.Version,
	}
}

// AccountListFilter defines filtering options for delinquent account lists
type AccountListFilter struct {
	State      string     `form:"state"`
	Bucket     string     `form:"bucket"`
	PersonID   *uuid.UUID `form:"-" query:"person_id"`
	PropertyID *uuid.UUID `form:"-" query:"property_id"`
	ContractID *uuid.UUID `form:"-" query:"contract_id"`
	OnlyOpen   *bool      `form:"only_open"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// FollowUpRequest represents a contact attempt to register
type FollowUpRequest struct {
	ContactType    string           `json:"contact_type" binding:"required,oneof=PHONE_CALL WHATSAPP EMAIL HOME_VISIT COLLECTION_LETTER LEGAL_NOTICE"`
	ContactedAt    *time.Time       `json:"contacted_at"`
	Description    string           `json:"description" binding:"max=2000"`
	Outcome        string           `json:"outcome" binding:"omitempty,oneof=PROMISE_TO_PAY CONTACTED_NO_COMMITMENT NOT_CONTACTED WRONG_NUMBER VOICEMAIL PAYMENT_MADE"`
	PromisedDate   *time.Time       `json:"promised_date"`
	PromisedAmount *decimal.Decimal `json:"promised_amount"`
	NextAction     string           `json:"next_action" binding:"max=500"`
	NextActionDate *time.Time       `json:"next_action_date"`
	UserID         *uuid.UUID       `json:"-"`
}

func (r FollowUpRequest) toDomain() collections.FollowUpInput {
	in := collections.FollowUpInput{
		ContactType:    collections.ContactType(r.ContactType),
		Description:    r.Description,
		Outcome:        collections.ContactOutcome(r.Outcome),
		PromisedDate:   r.PromisedDate,
		PromisedAmount: r.PromisedAmount,
		NextAction:     r.NextAction,
		NextActionDate: r.NextActionDate,
		UserID:         r.UserID,
	}
	if r.ContactedAt != nil {
		in.ContactedAt = *r.ContactedAt
	}
	return in
}

// FollowUpResponse represents a follow-up in API responses
type FollowUpResponse struct {
	ID             uuid.UUID        `json:"id"`
	AccountID      uuid.UUID        `json:"delinquent_account_id"`
	ContactType    string           `json:"contact_type"`
	ContactedAt    time.Time        `json:"contacted_at"`
	Description    string           `json:"description,omitempty"`
	Outcome        string           `json:"outcome,omitempty"`
	PromisedDate   *time.Time       `json:"promised_date,omitempty"`
	PromisedAmount *decimal.Decimal `json:"promised_amount,omitempty"`
	NextAction     string           `json:"next_action,omitempty"`
	NextActionDate *time.Time       `json:"next_action_date,omitempty"`
	UserID         *uuid.UUID       `json:"user_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToFollowUpResponse converts a domain follow-up
func ToFollowUpResponse(f *collections.FollowUp) FollowUpResponse {
	return FollowUpResponse{
		ID:             f.ID,
		AccountID:      f.AccountID,
		ContactType:    string(f.ContactType),
		ContactedAt:    f.ContactedAt,
		Description:    f.Description,
		Outcome:        string(f.Outcome),
		PromisedDate:   f.PromisedDate,
		PromisedAmount: f.PromisedAmount,
		NextAction:     f.NextAction,
		NextActionDate: f.NextActionDate,
		UserID:         f.UserID,
		CreatedAt:      f.CreatedAt,
	}
}

// FollowUpResult returns the registered follow-up with the updated account
type FollowUpResult struct {
	Account  AccountResponse  `json:"account"`
	FollowUp FollowUpResponse `json:"follow_up"`
}

// RecordPaymentRequest lowers the mirrored pending amount of an account
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,money"`
}

// ChangeStateRequest moves the collection workflow by hand
type ChangeStateRequest struct {
	State string `json:"state" binding:"required,oneof=PENDING IN_PROGRESS PROMISE_TO_PAY PARTIALLY_PAID UNCOLLECTIBLE"`
}

// AsOfRequest pins a run to a day; today when omitted
type AsOfRequest struct {
	AsOf *time.Time `json:"as_of" form:"as_of" time_format:"2006-01-02"`
}

// SyncResult summarizes one sync of the portfolio against the ledger.
// Voided counts records closed because their charge was cancelled.
// FailedTenants counts tenants whose run rolled back, all-tenant runs only.
type SyncResult struct {
	Opened        int `json:"opened"`
	Updated       int `json:"updated"`
	Closed        int `json:"closed"`
	Voided        int `json:"voided"`
	Unchanged     int `json:"unchanged"`
	FailedTenants int `json:"failed_tenants,omitempty"`
}

// AccrualResult summarizes one penalty accrual run
type AccrualResult struct {
	Scanned       int             `json:"scanned"`
	Accrued       int             `json:"accrued"`
	Total         decimal.Decimal `json:"total_penalty"`
	FailedTenants int             `json:"failed_tenants,omitempty"`
}

// BillPenaltyResult returns the penalty charge together with the updated account
type BillPenaltyResult struct {
	Account AccountResponse          `json:"account"`
	Charge  ledgerapp.ChargeResponse `json:"charge"`
}

// ProjectionResponse represents a monthly collection projection
type ProjectionResponse struct {
	ID                uuid.UUID       `json:"id"`
	Period            string          `json:"period"`
	ProjectedAmount   decimal.Decimal `json:"projected_amount"`
	CollectedAmount   decimal.Decimal `json:"collected_amount"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	CompliancePercent decimal.Decimal `json:"compliance_percent"`
	ContractCount     int             `json:"contract_count"`
	ExpectedPayments  int             `json:"expected_payments"`
	ReceivedPayments  int             `json:"received_payments"`
	Notes             string          `json:"notes,omitempty"`
	RefreshedAt       *time.Time      `json:"refreshed_at,omitempty"`
	Version           int             `json:"version"`
}

// ToProjectionResponse converts a domain projection
func ToProjectionResponse(p *collections.Projection) ProjectionResponse {
	return ProjectionResponse{
		ID:                p.ID,
		Period:            p.Period.Format("2006-01"),
		ProjectedAmount:   p.ProjectedAmount,
		CollectedAmount:   p.CollectedAmount,
		PendingAmount:     p.Pending(),
		CompliancePercent: p.CompliancePercent(),
		ContractCount:     p.ContractCount,
		ExpectedPayments:  p.ExpectedPayments,
		ReceivedPayments:  p.ReceivedPayments,
		Notes:             p.Notes,
		RefreshedAt:       p.RefreshedAt,
		Version:           p.Version,
	}
}

// ProjectionRangeRequest selects the months of a projection report by any day in them
type ProjectionRangeRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// RefreshProjectionRequest names the month to recompute
type RefreshProjectionRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// UpdateProjectionNotesRequest replaces the notes of a month
type UpdateProjectionNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ProjectionReport lists projections with the totals of the range
type ProjectionReport struct {
	From              time.Time            `json:"from"`
	To                time.Time            `json:"to"`
	Projections       []ProjectionResponse `json:"projections"`
	TotalProjected    decimal.Decimal      `json:"total_projected"`
	TotalCollected    decimal.Decimal      `json:"total_collected"`
	TotalPending      decimal.Decimal      `json:"total_pending"`
	CompliancePercent decimal.Decimal      `json:"compliance_percent"`
}

// PortfolioItem is one open record of the overdue portfolio report
type PortfolioItem struct {
	Account      AccountResponse   `json:"account"`
	LastFollowUp *FollowUpResponse `json:"last_follow_up,omitempty"`
}

// PortfolioReport details the open overdue portfolio (cartera vencida)
type PortfolioReport struct {
	GeneratedOn time.Time            `json:"generated_on"`
	Summary     *collections.Summary `json:"summary"`
	Items       []PortfolioItem      `json:"items"`
}
