package collections

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names published by the collections aggregate
const (
	EventTypeDelinquencyOpened      = "DelinquencyOpened"
	EventTypeDelinquencyClosed      = "DelinquencyClosed"
	EventTypePenaltyAccrued         = "PenaltyAccrued"
	EventTypeCollectionStateChanged = "CollectionStateChanged"
	EventTypeFollowUpRegistered     = "FollowUpRegistered"
)

// AggregateTypeDelinquentAccount is the aggregate type carried by collections events
const AggregateTypeDelinquentAccount = "DelinquentAccount"

// DelinquencyOpenedEvent is raised when an overdue charge enters collections
type DelinquencyOpenedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID          `json:"account_id"`
	ChargeID      uuid.UUID          `json:"charge_id"`
	ContractID    uuid.UUID          `json:"contract_id"`
	PersonID      uuid.UUID          `json:"person_id"`
	Concept       string             `json:"concept"`
	PendingAmount decimal.Decimal    `json:"pending_amount"`
	DaysOverdue   int                `json:"days_overdue"`
	Bucket        ledger.AgingBucket `json:"bucket"`
}

// NewDelinquencyOpenedEvent creates a new DelinquencyOpenedEvent
func NewDelinquencyOpenedEvent(a *DelinquentAccount) *DelinquencyOpenedEvent {
	return &DelinquencyOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDelinquencyOpened, AggregateTypeDelinquentAccount, a.ID, a.TenantID),
		AccountID:       a.ID,
		ChargeID:        a.ChargeID,
		ContractID:      a.ContractID,
		PersonID:        a.PersonID,
		Concept:         a.Concept,
		PendingAmount:   a.PendingAmount,
		DaysOverdue:     a.DaysOverdue,
		Bucket:          a.Bucket,
	}
}

// DelinquencyClosedEvent is raised when a record is paid off or voided
type DelinquencyClosedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	ChargeID      uuid.UUID       `json:"charge_id"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	State         CollectionState `json:"state"`
	Reason        CloseReason     `json:"reason"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// NewDelinquencyClosedEvent creates a new DelinquencyClosedEvent
func NewDelinquencyClosedEvent(a *DelinquentAccount) *DelinquencyClosedEvent {
	closedAt := time.Now()
	if a.ClosedAt != nil {
		closedAt = *a.ClosedAt
	}
	return &DelinquencyClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDelinquencyClosed, AggregateTypeDelinquentAccount, a.ID, a.TenantID),
		AccountID:       a.ID,
		ChargeID:        a.ChargeID,
		PenaltyAmount:   a.PenaltyAmount,
		State:           a.State,
		Reason:          a.CloseReason,
		ClosedAt:        closedAt,
	}
}

// PenaltyAccruedEvent is raised when the stored penalty grows
type PenaltyAccruedEvent struct {
	shared.BaseDomainEvent
	AccountID       uuid.UUID       `json:"account_id"`
	ChargeID        uuid.UUID       `json:"charge_id"`
	PreviousPenalty decimal.Decimal `json:"previous_penalty"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	DaysOverdue     int             `json:"days_overdue"`
}

// NewPenaltyAccruedEvent creates a new PenaltyAccruedEvent
func NewPenaltyAccruedEvent(a *DelinquentAccount, previous decimal.Decimal) *PenaltyAccruedEvent {
	return &PenaltyAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePenaltyAccrued, AggregateTypeDelinquentAccount, a.ID, a.TenantID),
		AccountID:       a.ID,
		ChargeID:        a.ChargeID,
		PreviousPenalty: previous,
		PenaltyAmount:   a.PenaltyAmount,
		DaysOverdue:     a.DaysOverdue,
	}
}

// CollectionStateChangedEvent is raised on manual workflow moves
type CollectionStateChangedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	PreviousState CollectionState `json:"previous_state"`
	NewState      CollectionState `json:"new_state"`
}

// NewCollectionStateChangedEvent creates a new CollectionStateChangedEvent
func NewCollectionStateChangedEvent(a *DelinquentAccount, previous CollectionState) *CollectionStateChangedEvent {
	return &CollectionStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCollectionStateChanged, AggregateTypeDelinquentAccount, a.ID, a.TenantID),
		AccountID:       a.ID,
		PreviousState:   previous,
		NewState:        a.State,
	}
}

// FollowUpRegisteredEvent is raised when a contact attempt is logged
type FollowUpRegisteredEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID      `json:"account_id"`
	FollowUpID     uuid.UUID      `json:"follow_up_id"`
	ContactType    ContactType    `json:"contact_type"`
	Outcome        ContactOutcome `json:"outcome,omitempty"`
	NextActionDate *time.Time     `json:"next_action_date,omitempty"`
}

// NewFollowUpRegisteredEvent creates a new FollowUpRegisteredEvent
func NewFollowUpRegisteredEvent(a *DelinquentAccount, f *FollowUp) *FollowUpRegisteredEvent {
	return &FollowUpRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFollowUpRegistered, AggregateTypeDelinquentAccount, a.ID, a.TenantID),
		AccountID:       a.ID,
		FollowUpID:      f.ID,
		ContactType:     f.ContactType,
		Outcome:         f.Outcome,
		NextActionDate:  f.NextActionDate,
	}
}
