package lease

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExpiringSoonDays is the window, in days before the end date, in which a
// current contract is displayed as EXPIRING_SOON.
const ExpiringSoonDays = 30

// ContractStatus represents the status of a lease contract
type ContractStatus string

const (
	ContractStatusDraft        ContractStatus = "DRAFT"
	ContractStatusActive       ContractStatus = "ACTIVE"
	ContractStatusExpiringSoon ContractStatus = "EXPIRING_SOON" // display only
	ContractStatusExpired      ContractStatus = "EXPIRED"       // display only
	ContractStatusRenewed      ContractStatus = "RENEWED"
	ContractStatusTerminated   ContractStatus = "TERMINATED"
	ContractStatusCancelled    ContractStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusExpiringSoon, ContractStatusExpired,
		ContractStatusRenewed, ContractStatusTerminated, ContractStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no outgoing transitions.
// Terminal contracts only accept note changes.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusRenewed || s == ContractStatusTerminated || s == ContractStatusCancelled
}

// IsInForce returns true for the stored statuses whose display status is time driven
func (s ContractStatus) IsInForce() bool {
	return s == ContractStatusActive || s == ContractStatusExpiringSoon || s == ContractStatusExpired
}

// CanActivate returns true if the contract can be activated
func (s ContractStatus) CanActivate() bool {
	return s == ContractStatusDraft
}

// CanTerminate returns true if the contract can be terminated
func (s ContractStatus) CanTerminate() bool {
	return s.IsInForce()
}

// CanRenew returns true if the contract can be renewed
func (s ContractStatus) CanRenew() bool {
	return s.IsInForce()
}

// CanCancel returns true if the contract can be cancelled
func (s ContractStatus) CanCancel() bool {
	return !s.IsTerminal()
}

// DeriveDisplayStatus computes the status a reader sees on a given day.
// Only in-force statuses are reclassified by time; every other stored
// status is returned unchanged.
func DeriveDisplayStatus(stored ContractStatus, endDate, today time.Time) ContractStatus {
	if !stored.IsInForce() {
		return stored
	}
	remaining := shared.DaysBetween(today, endDate)
	switch {
	case remaining <= 0:
		return ContractStatusExpired
	case remaining <= ExpiringSoonDays:
		return ContractStatusExpiringSoon
	default:
		return ContractStatusActive
	}
}

// Terms holds the editable economic and legal terms of a contract
type Terms struct {
	PropertyID            uuid.UUID
	PersonID              uuid.UUID
	GuarantorID           *uuid.UUID
	StartDate             time.Time
	EndDate               time.Time
	MonthlyRent           decimal.Decimal
	Deposit               decimal.Decimal
	GuaranteeBond         decimal.Decimal
	DailyPenalty          decimal.Decimal
	PenaltyPercent        decimal.Decimal
	GraceDays             int
	AnnualIncreasePercent decimal.Decimal
	PaymentDay            int
	Conditions            string
}

// Validate checks the invariants every set of terms must satisfy
func (t Terms) Validate() error {
	if t.PropertyID == uuid.Nil {
		return shared.NewValidationError("property is required")
	}
	if t.PersonID == uuid.Nil {
		return shared.NewValidationError("tenant person is required")
	}
	if t.GuarantorID != nil && *t.GuarantorID == t.PersonID {
		return shared.NewValidationError("guarantor must differ from the tenant person")
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return shared.NewValidationError("start and end dates are required")
	}
	if !shared.DateOf(t.StartDate).Before(shared.DateOf(t.EndDate)) {
		return shared.NewValidationError("start date must be before end date")
	}
	if t.PaymentDay < 1 || t.PaymentDay > 31 {
		return shared.NewValidationError("payment day must be between 1 and 31, got %d", t.PaymentDay)
	}
	if !t.MonthlyRent.IsPositive() {
		return shared.NewValidationError("monthly rent must be positive")
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"deposit", t.Deposit},
		{"guarantee bond", t.GuaranteeBond},
		{"daily penalty", t.DailyPenalty},
		{"penalty percent", t.PenaltyPercent},
		{"annual increase percent", t.AnnualIncreasePercent},
	} {
		if f.value.IsNegative() {
			return shared.NewValidationError("%s cannot be negative", f.name)
		}
	}
	if t.GraceDays < 0 {
		return shared.NewValidationError("grace days cannot be negative")
	}
	return nil
}

func (t Terms) normalized() Terms {
	t.StartDate = shared.DateOf(t.StartDate)
	t.EndDate = shared.DateOf(t.EndDate)
	t.MonthlyRent = valueobject.RoundCents(t.MonthlyRent)
	t.Deposit = valueobject.RoundCents(t.Deposit)
	t.GuaranteeBond = valueobject.RoundCents(t.GuaranteeBond)
	t.DailyPenalty = valueobject.RoundCents(t.DailyPenalty)
	t.Conditions = strings.TrimSpace(t.Conditions)
	return t
}

// Contract represents a lease contract aggregate root
type Contract struct {
	shared.TenantAggregateRoot
	ContractNumber string
	Terms
	Status            ContractStatus
	PredecessorID     *uuid.UUID
	Notes             string
	TerminationReason string
	CancelReason      string
	ActivatedAt       *time.Time
	TerminatedAt      *time.Time
	CancelledAt       *time.Time
	RenewedAt         *time.Time
	Active            bool
	// ExpiryNotified is the last display status announced by ScanExpiry
	ExpiryNotified ContractStatus
}

// NewContract creates a contract in DRAFT status
func NewContract(tenantID uuid.UUID, contractNumber string, terms Terms, notes string) (*Contract, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant is required")
	}
	contractNumber = strings.TrimSpace(contractNumber)
	if contractNumber == "" {
		return nil, shared.NewValidationError("contract number cannot be empty")
	}
	if len(contractNumber) > 50 {
		return nil, shared.NewValidationError("contract number cannot exceed 50 characters")
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractNumber:      contractNumber,
		Terms:               terms.normalized(),
		Status:              ContractStatusDraft,
		Notes:               notes,
		Active:              true,
	}
	c.AddDomainEvent(NewContractCreatedEvent(c))
	return c, nil
}

// FormatContractNumber builds the CTR-YYYYMM-NNNN number for the seq-th contract of a month
func FormatContractNumber(at time.Time, seq int) string {
	return fmt.Sprintf("CTR-%04d%02d-%04d", at.Year(), int(at.Month()), seq)
}

// ContractNumberPrefix returns the CTR-YYYYMM- prefix shared by every contract numbered in that month
func ContractNumberPrefix(at time.Time) string {
	return fmt.Sprintf("CTR-%04d%02d-", at.Year(), int(at.Month()))
}

// DaysRemaining returns the days from today until the end date (negative once past)
func (c *Contract) DaysRemaining(today time.Time) int {
	return shared.DaysBetween(today, c.EndDate)
}

// DisplayStatus returns the status as seen on the given day
func (c *Contract) DisplayStatus(today time.Time) ContractStatus {
	return DeriveDisplayStatus(c.Status, c.EndDate, today)
}

// IsCurrent reports whether the contract is ACTIVE or EXPIRING_SOON on the given day
func (c *Contract) IsCurrent(today time.Time) bool {
	ds := c.DisplayStatus(today)
	return ds == ContractStatusActive || ds == ContractStatusExpiringSoon
}

// AcceptsCharges reports whether ad-hoc charges may be raised against the contract
func (c *Contract) AcceptsCharges(today time.Time) bool {
	return c.Status == ContractStatusDraft || c.IsCurrent(today)
}

// CoversPeriod reports whether the contract term overlaps the given month
func (c *Contract) CoversPeriod(year int, month time.Month) bool {
	first := shared.Date(year, month, 1)
	last := shared.Date(year, month, shared.LastDayOfMonth(year, month))
	return !c.StartDate.After(last) && !c.EndDate.Before(first)
}

// UpdateTerms replaces the contract terms. Only drafts are editable.
func (c *Contract) UpdateTerms(terms Terms) error {
	if c.Status != ContractStatusDraft {
		return shared.NewInvalidStateError("cannot edit terms of contract in %s status", c.Status)
	}
	if err := terms.Validate(); err != nil {
		return err
	}
	c.Terms = terms.normalized()
	c.touch()
	return nil
}

// UpdateNotes sets the administrative notes. Allowed in every status.
func (c *Contract) UpdateNotes(notes string) {
	c.Notes = notes
	c.touch()
}

// Activate moves a draft contract to ACTIVE
func (c *Contract) Activate() error {
	if !c.Status.CanActivate() {
		return shared.NewInvalidStateError("cannot activate contract in %s status", c.Status)
	}
	now := time.Now()
	c.Status = ContractStatusActive
	c.ActivatedAt = &now
	c.touch()
	c.AddDomainEvent(NewContractActivatedEvent(c))
	return nil
}

// Terminate ends an in-force contract early
func (c *Contract) Terminate(reason string) error {
	if !c.Status.CanTerminate() {
		return shared.NewInvalidStateError("cannot terminate contract in %s status", c.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("termination reason is required")
	}
	now := time.Now()
	c.Status = ContractStatusTerminated
	c.TerminationReason = reason
	c.TerminatedAt = &now
	c.touch()
	c.AddDomainEvent(NewContractTerminatedEvent(c))
	return nil
}

// Cancel voids the contract
func (c *Contract) Cancel(reason string) error {
	if !c.Status.CanCancel() {
		return shared.NewInvalidStateError("cannot cancel contract in %s status", c.Status)
	}
	now := time.Now()
	previous := c.Status
	c.Status = ContractStatusCancelled
	c.CancelReason = strings.TrimSpace(reason)
	c.CancelledAt = &now
	c.touch()
	c.AddDomainEvent(NewContractCancelledEvent(c, previous))
	return nil
}

// RenewalRequest carries the optional overrides applied to the successor contract
type RenewalRequest struct {
	NewEndDate          time.Time
	NewRent             *decimal.Decimal
	NewGuarantorID      *uuid.UUID
	NewConditions       *string
	ApplyAnnualIncrease bool
	Notes               string
}

// RenewalStart returns the successor start date: the day after the source ends
func (c *Contract) RenewalStart() time.Time {
	return c.EndDate.AddDate(0, 0, 1)
}

// Renew marks the contract RENEWED and returns its ACTIVE successor.
// The successor starts the day after the source ends. Its rent is the
// explicit new rent, else the source rent raised by the annual increase
// when requested, else unchanged.
func (c *Contract) Renew(req RenewalRequest, successorNumber string, today time.Time) (*Contract, error) {
	if !c.Status.CanRenew() {
		return nil, shared.NewInvalidStateError("cannot renew contract in %s status", c.Status)
	}
	newEnd := shared.DateOf(req.NewEndDate)
	if req.NewEndDate.IsZero() {
		return nil, shared.NewValidationError("new end date is required")
	}
	if !newEnd.After(shared.DateOf(today)) {
		return nil, shared.NewValidationError("new end date must be after today")
	}
	start := c.RenewalStart()
	if !newEnd.After(start) {
		return nil, shared.NewValidationError("new end date must be after the renewal start %s", start.Format(time.DateOnly))
	}

	terms := c.Terms
	terms.StartDate = start
	terms.EndDate = newEnd
	switch {
	case req.NewRent != nil:
		terms.MonthlyRent = *req.NewRent
	case req.ApplyAnnualIncrease:
		terms.MonthlyRent = valueobject.NewMoneyMXN(c.MonthlyRent).IncreaseByPercent(c.AnnualIncreasePercent).Amount()
	}
	if req.NewGuarantorID != nil {
		terms.GuarantorID = req.NewGuarantorID
	}
	if req.NewConditions != nil {
		terms.Conditions = *req.NewConditions
	}

	successor, err := NewContract(c.TenantID, successorNumber, terms, req.Notes)
	if err != nil {
		return nil, err
	}
	predecessor := c.ID
	successor.PredecessorID = &predecessor
	successor.CreatedBy = c.CreatedBy
	if err := successor.Activate(); err != nil {
		return nil, err
	}

	now := time.Now()
	c.Status = ContractStatusRenewed
	c.RenewedAt = &now
	c.touch()
	c.AddDomainEvent(NewContractRenewedEvent(c, successor))
	return successor, nil
}

// ScanExpiry emits an expiry event the first time each of EXPIRING_SOON and
// EXPIRED is observed. It never changes the stored status. Returns true when
// the watermark moved.
func (c *Contract) ScanExpiry(today time.Time) bool {
	ds := c.DisplayStatus(today)
	if ds != ContractStatusExpiringSoon && ds != ContractStatusExpired {
		return false
	}
	if ds == c.ExpiryNotified {
		return false
	}
	c.ExpiryNotified = ds
	c.touch()
	if ds == ContractStatusExpired {
		c.AddDomainEvent(NewContractExpiredEvent(c, today))
	} else {
		c.AddDomainEvent(NewContractExpiringSoonEvent(c, today))
	}
	return true
}

// Deactivate soft-deletes the contract
func (c *Contract) Deactivate() {
	c.Active = false
	c.touch()
}

func (c *Contract) touch() {
	c.Touch(time.Now())
	c.IncrementVersion()
}
