package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// EventRecorder is a shared.EventHandler that keeps every event it sees
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewEventRecorder subscribes to eventTypes; none means every event
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, event)
	return r.err
}

// Handled returns a copy of the recorded events
func (r *EventRecorder) Handled() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.handled))
	copy(out, r.handled)
	return out
}

// Count returns how many recorded events have eventType
func (r *EventRecorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.handled {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// FailWith makes Handle return err after recording
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Reset drops the recorded events and the injected error
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.handled = nil
	r.err = nil
	r.mu.Unlock()
}

// WaitFor blocks until at least n events of eventType were recorded
func (r *EventRecorder) WaitFor(t *testing.T, eventType string, n int, timeout time.Duration) {
	t.Helper()
	RequireEventually(t, func() bool { return r.Count(eventType) >= n }, timeout, 10*time.Millisecond,
		"waiting for %d %s events", n, eventType)
}

// NewTestEvent builds a bare event of eventType for tenantID
func NewTestEvent(eventType string, tenantID uuid.UUID) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID)
	return &e
}

var _ shared.EventHandler = (*EventRecorder)(nil)
