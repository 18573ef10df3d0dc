package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CollectionState is the advisory workflow state of a delinquent account.
// It never drives money: pending amounts always come from the ledger.
type CollectionState string

const (
	CollectionStatePending       CollectionState = "PENDING"
	CollectionStateInProgress    CollectionState = "IN_PROGRESS"
	CollectionStatePromiseToPay  CollectionState = "PROMISE_TO_PAY"
	CollectionStatePartiallyPaid CollectionState = "PARTIALLY_PAID"
	CollectionStatePaid          CollectionState = "PAID"
	CollectionStateUncollectible CollectionState = "UNCOLLECTIBLE"
)

// AllCollectionStates returns every state in workflow order
func AllCollectionStates() []CollectionState {
	return []CollectionState{
		CollectionStatePending,
		CollectionStateInProgress,
		CollectionStatePromiseToPay,
		CollectionStatePartiallyPaid,
		CollectionStatePaid,
		CollectionStateUncollectible,
	}
}

// IsValid checks if the state is valid
func (s CollectionState) IsValid() bool {
	switch s {
	case CollectionStatePending, CollectionStateInProgress, CollectionStatePromiseToPay,
		CollectionStatePartiallyPaid, CollectionStatePaid, CollectionStateUncollectible:
		return true
	}
	return false
}

// String returns the string representation of CollectionState
func (s CollectionState) String() string {
	return string(s)
}

// CloseReason records why a record left collections
type CloseReason string

const (
	// CloseReasonPaid means the pending amount reached zero through payments
	CloseReasonPaid CloseReason = "PAID"
	// CloseReasonChargeCancelled means the debt was voided, nothing was collected
	CloseReasonChargeCancelled CloseReason = "CHARGE_CANCELLED"
)

// IsManual returns true for the states a collector may set by hand
func (s CollectionState) IsManual() bool {
	return s != CollectionStatePaid && s.IsValid()
}

// DelinquentAccount is the collections record (cartera vencida) of one overdue charge
type DelinquentAccount struct {
	shared.TenantAggregateRoot
	ChargeID       uuid.UUID
	ContractID     uuid.UUID
	PersonID       uuid.UUID
	PropertyID     uuid.UUID
	Concept        string
	OriginalAmount decimal.Decimal
	PendingAmount  decimal.Decimal
	PenaltyAmount  decimal.Decimal
	PenaltyBilled  decimal.Decimal
	DailyPenalty   decimal.Decimal
	PenaltyPercent decimal.Decimal // informational; accrual uses DailyPenalty
	DueDate        time.Time
	DaysOverdue    int
	Bucket         ledger.AgingBucket
	State          CollectionState
	PromisedDate   *time.Time
	PromisedAmount *decimal.Decimal
	LastContactAt  *time.Time
	NextActionDate *time.Time
	Active         bool
	ClosedAt       *time.Time
	CloseReason    CloseReason
}

// OpenInput carries the contract terms copied onto a new record
type OpenInput struct {
	PersonID       uuid.UUID
	PropertyID     uuid.UUID
	DailyPenalty   decimal.Decimal
	PenaltyPercent decimal.Decimal
	// Prior is the latest closed record of the same charge, if any. Its
	// accrued and billed penalty carry over since accrual restarts from the
	// same due date.
	Prior *DelinquentAccount
}

// OpenDelinquentAccount opens a PENDING record for a charge that is overdue as of asOf
func OpenDelinquentAccount(charge *ledger.Charge, in OpenInput, asOf time.Time) (*DelinquentAccount, error) {
	if !ledger.IsAgeable(charge) {
		return nil, shared.NewValidationError("charge %s has no outstanding balance", charge.ID)
	}
	days := charge.DaysOverdue(asOf)
	bucket := ledger.BucketFor(days)
	if !bucket.IsOverdue() {
		return nil, shared.NewValidationError("charge %s is not overdue", charge.ID)
	}

	a := &DelinquentAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(charge.TenantID),
		ChargeID:            charge.ID,
		ContractID:          charge.ContractID,
		PersonID:            in.PersonID,
		PropertyID:          in.PropertyID,
		Concept:             charge.Concept,
		OriginalAmount:      charge.AmountOriginal,
		PendingAmount:       charge.Pending(),
		PenaltyAmount:       decimal.Zero,
		PenaltyBilled:       decimal.Zero,
		DailyPenalty:        in.DailyPenalty,
		PenaltyPercent:      in.PenaltyPercent,
		DueDate:             charge.DueDate,
		DaysOverdue:         days,
		Bucket:              bucket,
		State:               CollectionStatePending,
		Active:              true,
	}
	if p := in.Prior; p != nil && p.ChargeID == charge.ID && !p.IsOpen() {
		a.PenaltyAmount = p.PenaltyAmount
		a.PenaltyBilled = p.PenaltyBilled
	}
	a.AddDomainEvent(NewDelinquencyOpenedEvent(a))
	return a, nil
}

// IsOpen returns true while the record takes part in collections
func (a *DelinquentAccount) IsOpen() bool {
	return a.Active && a.ClosedAt == nil
}

// ComputePenalty returns dailyPenalty x daysOverdue(asOf), rounded half-up to cents
func ComputePenalty(dailyPenalty decimal.Decimal, dueDate, asOf time.Time) decimal.Decimal {
	days := ledger.DaysOverdue(dueDate, asOf)
	return valueobject.NewMoneyMXN(dailyPenalty).Times(days).Amount()
}

// Refresh mirrors the charge's pending amount and re-ages the record.
// The collection state is left alone. Returns true when anything changed.
func (a *DelinquentAccount) Refresh(pending decimal.Decimal, asOf time.Time) bool {
	days := ledger.DaysOverdue(a.DueDate, asOf)
	bucket := ledger.BucketFor(days)
	if a.PendingAmount.Equal(pending) && a.DaysOverdue == days && a.Bucket == bucket {
		return false
	}
	a.PendingAmount = pending
	a.DaysOverdue = days
	a.Bucket = bucket
	a.touch()
	return true
}

// Close marks the record PAID and freezes penalty accrual
func (a *DelinquentAccount) Close(asOf time.Time) error {
	return a.close(CollectionStatePaid, CloseReasonPaid, asOf)
}

// Void closes the record of a cancelled charge. The debt is written off as
// UNCOLLECTIBLE so it never reports as collected.
func (a *DelinquentAccount) Void(asOf time.Time) error {
	return a.close(CollectionStateUncollectible, CloseReasonChargeCancelled, asOf)
}

func (a *DelinquentAccount) close(state CollectionState, reason CloseReason, asOf time.Time) error {
	if !a.IsOpen() {
		return shared.NewInvalidStateError("delinquent account is already closed")
	}
	now := time.Now()
	a.PendingAmount = decimal.Zero
	a.State = state
	a.CloseReason = reason
	a.Active = false
	a.ClosedAt = &now
	a.DaysOverdue = ledger.DaysOverdue(a.DueDate, asOf)
	a.Bucket = ledger.BucketFor(a.DaysOverdue)
	a.touch()
	a.AddDomainEvent(NewDelinquencyClosedEvent(a))
	return nil
}

// AccruePenalty raises the stored penalty to the computed one. The penalty
// never decreases. Returns true when it grew.
func (a *DelinquentAccount) AccruePenalty(asOf time.Time) (bool, error) {
	if !a.IsOpen() {
		return false, shared.NewInvalidStateError("cannot accrue penalty on a closed delinquent account")
	}
	computed := ComputePenalty(a.DailyPenalty, a.DueDate, asOf)
	if !computed.GreaterThan(a.PenaltyAmount) {
		return false, nil
	}
	previous := a.PenaltyAmount
	a.PenaltyAmount = computed
	a.touch()
	a.AddDomainEvent(NewPenaltyAccruedEvent(a, previous))
	return true, nil
}

// UnbilledPenalty returns the accrued penalty not yet turned into a charge
func (a *DelinquentAccount) UnbilledPenalty() decimal.Decimal {
	return a.PenaltyAmount.Sub(a.PenaltyBilled)
}

// MarkPenaltyBilled records that amount of penalty was billed as a charge
func (a *DelinquentAccount) MarkPenaltyBilled(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.UnbilledPenalty()) {
		return shared.NewValidationError("billed penalty %s must be positive and at most %s",
			amount.StringFixed(2), a.UnbilledPenalty().StringFixed(2))
	}
	a.PenaltyBilled = a.PenaltyBilled.Add(amount)
	a.touch()
	return nil
}

// RecordPayment lowers the mirrored pending amount, floored at zero. A
// record reaching zero is closed as PAID.
func (a *DelinquentAccount) RecordPayment(amount decimal.Decimal, asOf time.Time) error {
	if !a.IsOpen() {
		return shared.NewInvalidStateError("cannot record payment on a closed delinquent account")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("payment amount must be positive")
	}
	pending := a.PendingAmount.Sub(amount)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	if pending.IsZero() {
		return a.Close(asOf)
	}
	a.PendingAmount = pending
	a.State = CollectionStatePartiallyPaid
	a.touch()
	return nil
}

// ChangeState moves the workflow by hand. PAID is reserved to payments.
func (a *DelinquentAccount) ChangeState(state CollectionState) error {
	if !state.IsValid() {
		return shared.NewValidationError("invalid collection state %q", state)
	}
	if !state.IsManual() {
		return shared.NewValidationError("state %s is only reached through payments", state)
	}
	if !a.IsOpen() {
		return shared.NewInvalidStateError("cannot change state of a closed delinquent account")
	}
	if a.State == state {
		return nil
	}
	previous := a.State
	a.State = state
	a.touch()
	a.AddDomainEvent(NewCollectionStateChangedEvent(a, previous))
	return nil
}

// RegisterFollowUp appends a contact attempt. A promise moves the record to PROMISE_TO_PAY.
func (a *DelinquentAccount) RegisterFollowUp(in FollowUpInput) (*FollowUp, error) {
	if !a.IsOpen() {
		return nil, shared.NewInvalidStateError("cannot register follow-up on a closed delinquent account")
	}
	f, err := NewFollowUp(a, in)
	if err != nil {
		return nil, err
	}

	contactedAt := f.ContactedAt
	a.LastContactAt = &contactedAt
	a.NextActionDate = f.NextActionDate
	if f.IsPromise() {
		a.State = CollectionStatePromiseToPay
		a.PromisedDate = f.PromisedDate
		a.PromisedAmount = f.PromisedAmount
	} else if a.State == CollectionStatePending {
		a.State = CollectionStateInProgress
	}
	a.touch()
	a.AddDomainEvent(NewFollowUpRegisteredEvent(a, f))
	return f, nil
}

func (a *DelinquentAccount) touch() {
	a.Touch(time.Now())
	a.IncrementVersion()
}
