package lease

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names published by the contract aggregate
const (
	EventTypeContractCreated      = "ContractCreated"
	EventTypeContractActivated    = "ContractActivated"
	EventTypeContractTerminated   = "ContractTerminated"
	EventTypeContractCancelled    = "ContractCancelled"
	EventTypeContractRenewed      = "ContractRenewed"
	EventTypeContractExpiringSoon = "ContractExpiringSoon"
	EventTypeContractExpired      = "ContractExpired"
)

// AggregateTypeContract is the aggregate type carried by contract events
const AggregateTypeContract = "Contract"

// ContractCreatedEvent is raised when a draft contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	PropertyID     uuid.UUID       `json:"property_id"`
	PersonID       uuid.UUID       `json:"person_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	MonthlyRent    decimal.Decimal `json:"monthly_rent"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		PropertyID:      c.PropertyID,
		PersonID:        c.PersonID,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		MonthlyRent:     c.MonthlyRent,
	}
}

// ContractActivatedEvent is raised when a contract leaves DRAFT
type ContractActivatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	PropertyID     uuid.UUID `json:"property_id"`
}

// NewContractActivatedEvent creates a new ContractActivatedEvent
func NewContractActivatedEvent(c *Contract) *ContractActivatedEvent {
	return &ContractActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractActivated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		PropertyID:      c.PropertyID,
	}
}

// ContractTerminatedEvent is raised when a contract is terminated early
type ContractTerminatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	Reason         string    `json:"reason"`
}

// NewContractTerminatedEvent creates a new ContractTerminatedEvent
func NewContractTerminatedEvent(c *Contract) *ContractTerminatedEvent {
	return &ContractTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractTerminated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		Reason:          c.TerminationReason,
	}
}

// ContractCancelledEvent is raised when a contract is cancelled
type ContractCancelledEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID      `json:"contract_id"`
	ContractNumber string         `json:"contract_number"`
	PreviousStatus ContractStatus `json:"previous_status"`
	Reason         string         `json:"reason"`
}

// NewContractCancelledEvent creates a new ContractCancelledEvent
func NewContractCancelledEvent(c *Contract, previous ContractStatus) *ContractCancelledEvent {
	return &ContractCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCancelled, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		PreviousStatus:  previous,
		Reason:          c.CancelReason,
	}
}

// ContractRenewedEvent is raised on the source contract when it is renewed
type ContractRenewedEvent struct {
	shared.BaseDomainEvent
	ContractID      uuid.UUID       `json:"contract_id"`
	ContractNumber  string          `json:"contract_number"`
	SuccessorID     uuid.UUID       `json:"successor_id"`
	SuccessorNumber string          `json:"successor_number"`
	NewStartDate    time.Time       `json:"new_start_date"`
	NewEndDate      time.Time       `json:"new_end_date"`
	NewRent         decimal.Decimal `json:"new_rent"`
}

// NewContractRenewedEvent creates a new ContractRenewedEvent
func NewContractRenewedEvent(source, successor *Contract) *ContractRenewedEvent {
	return &ContractRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractRenewed, AggregateTypeContract, source.ID, source.TenantID),
		ContractID:      source.ID,
		ContractNumber:  source.ContractNumber,
		SuccessorID:     successor.ID,
		SuccessorNumber: successor.ContractNumber,
		NewStartDate:    successor.StartDate,
		NewEndDate:      successor.EndDate,
		NewRent:         successor.MonthlyRent,
	}
}

// ContractExpiryEvent carries the expiry details announced to the notification dispatcher
type ContractExpiryEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	PropertyID     uuid.UUID `json:"property_id"`
	PersonID       uuid.UUID `json:"person_id"`
	EndDate        time.Time `json:"end_date"`
	DaysRemaining  int       `json:"days_remaining"`
}

// NewContractExpiringSoonEvent creates the event for a contract entering the expiry window
func NewContractExpiringSoonEvent(c *Contract, today time.Time) *ContractExpiryEvent {
	return newContractExpiryEvent(EventTypeContractExpiringSoon, c, today)
}

// NewContractExpiredEvent creates the event for a contract past its end date
func NewContractExpiredEvent(c *Contract, today time.Time) *ContractExpiryEvent {
	return newContractExpiryEvent(EventTypeContractExpired, c, today)
}

func newContractExpiryEvent(eventType string, c *Contract, today time.Time) *ContractExpiryEvent {
	return &ContractExpiryEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		PropertyID:      c.PropertyID,
		PersonID:        c.PersonID,
		EndDate:         c.EndDate,
		DaysRemaining:   c.DaysRemaining(today),
	}
}
