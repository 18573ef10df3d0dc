package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic lock version and a buffer of events
// raised since the aggregate was loaded.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	events []DomainEvent
	// persistedVersion is the version storage holds. SaveWithLock compares
	// against it, so several mutations in one transaction still bump the row
	// only once.
	persistedVersion int
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int       { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion()     { a.Version++ }
func (a *BaseAggregateRoot) PersistedVersion() int { return a.persistedVersion }
func (a *BaseAggregateRoot) MarkPersisted()        { a.persistedVersion = a.Version }

// AddDomainEvent buffers e until the unit of work commits
func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.events = append(a.events, e)
}

// GetDomainEvents returns the buffered events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// TenantAggregateRoot is the root of every ledger aggregate; all reads and
// writes are scoped by TenantID.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: tenantID}
}
