package ledger

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AllocationStrategyType defines how a payment is spread over charges
type AllocationStrategyType string

const (
	AllocationStrategyTypeFIFO   AllocationStrategyType = "FIFO"   // Oldest due date first
	AllocationStrategyTypeManual AllocationStrategyType = "MANUAL" // Caller-selected charges and amounts
)

// IsValid checks if the strategy type is valid
func (t AllocationStrategyType) IsValid() bool {
	return t == AllocationStrategyTypeFIFO || t == AllocationStrategyTypeManual
}

// AllocationTarget is an outstanding charge as seen by a strategy
type AllocationTarget struct {
	ChargeID   uuid.UUID
	ContractID uuid.UUID
	Concept    string
	Pending    decimal.Decimal
	DueDate    time.Time
}

// TargetFromCharge builds the allocation target of a charge
func TargetFromCharge(c *Charge) AllocationTarget {
	return AllocationTarget{
		ChargeID:   c.ID,
		ContractID: c.ContractID,
		Concept:    c.Concept,
		Pending:    c.Pending(),
		DueDate:    c.DueDate,
	}
}

// Allocation is one planned charge application
type Allocation struct {
	ChargeID uuid.UUID
	Amount   decimal.Decimal
}

// AllocationPlan is the complete output of a strategy
type AllocationPlan struct {
	Allocations    []Allocation
	TotalAllocated decimal.Decimal
	Remaining      decimal.Decimal
}

// FullyAllocated returns true if nothing of the payment is left
func (p *AllocationPlan) FullyAllocated() bool {
	return p.Remaining.IsZero()
}

// AllocationStrategy computes how an available amount is applied to targets
type AllocationStrategy interface {
	strategy.Strategy
	// StrategyType returns the allocation strategy type
	StrategyType() AllocationStrategyType
	// Allocate plans the application of available over targets
	Allocate(available decimal.Decimal, targets []AllocationTarget) (*AllocationPlan, error)
}

// SortOldestFirst orders targets by due date, ties broken by charge id
func SortOldestFirst(targets []AllocationTarget) {
	sort.SliceStable(targets, func(i, j int) bool {
		if !targets[i].DueDate.Equal(targets[j].DueDate) {
			return targets[i].DueDate.Before(targets[j].DueDate)
		}
		return bytes.Compare(targets[i].ChargeID[:], targets[j].ChargeID[:]) < 0
	})
}

// FIFOAllocationStrategy applies a payment to the oldest due charges first
type FIFOAllocationStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_allocation",
			strategy.StrategyTypeAllocation,
			"Allocates to the oldest due charges first, ties broken by charge id",
		),
	}
}

// StrategyType returns the allocation strategy type
func (s *FIFOAllocationStrategy) StrategyType() AllocationStrategyType {
	return AllocationStrategyTypeFIFO
}

// Allocate greedily fills targets in oldest-first order. Leftover stays in Remaining.
func (s *FIFOAllocationStrategy) Allocate(available decimal.Decimal, targets []AllocationTarget) (*AllocationPlan, error) {
	if available.IsNegative() {
		return nil, shared.NewValidationError("available amount cannot be negative")
	}

	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	SortOldestFirst(sorted)

	plan := &AllocationPlan{
		Allocations:    make([]Allocation, 0),
		TotalAllocated: decimal.Zero,
		Remaining:      available,
	}
	for _, t := range sorted {
		if plan.Remaining.IsZero() {
			break
		}
		if !t.Pending.IsPositive() {
			continue
		}
		amount := decimal.Min(plan.Remaining, t.Pending)
		plan.Allocations = append(plan.Allocations, Allocation{ChargeID: t.ChargeID, Amount: amount})
		plan.TotalAllocated = plan.TotalAllocated.Add(amount)
		plan.Remaining = plan.Remaining.Sub(amount)
	}
	return plan, nil
}

// ManualAllocationRequest asks for a specific amount on a specific charge
type ManualAllocationRequest struct {
	ChargeID uuid.UUID
	Amount   decimal.Decimal
}

// ManualAllocationStrategy applies caller-chosen amounts in caller order.
// Validation is all-or-nothing: any bad line rejects the whole request.
type ManualAllocationStrategy struct {
	strategy.BaseStrategy
	requests []ManualAllocationRequest
}

// NewManualAllocationStrategy creates a new manual allocation strategy
func NewManualAllocationStrategy(requests []ManualAllocationRequest) *ManualAllocationStrategy {
	return &ManualAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"manual_allocation",
			strategy.StrategyTypeAllocation,
			"Allocates caller-selected amounts to caller-selected charges in the given order",
		),
		requests: requests,
	}
}

// StrategyType returns the allocation strategy type
func (s *ManualAllocationStrategy) StrategyType() AllocationStrategyType {
	return AllocationStrategyTypeManual
}

// Requests returns the configured allocation lines
func (s *ManualAllocationStrategy) Requests() []ManualAllocationRequest {
	return s.requests
}

// Allocate validates every line against targets and available, then returns the plan.
// Targets must already be restricted to the payment's contract and exclude paid or
// cancelled charges.
func (s *ManualAllocationStrategy) Allocate(available decimal.Decimal, targets []AllocationTarget) (*AllocationPlan, error) {
	if len(s.requests) == 0 {
		return nil, shared.NewValidationError("at least one allocation is required")
	}

	pending := make(map[uuid.UUID]decimal.Decimal, len(targets))
	for _, t := range targets {
		pending[t.ChargeID] = t.Pending
	}

	plan := &AllocationPlan{
		Allocations:    make([]Allocation, 0, len(s.requests)),
		TotalAllocated: decimal.Zero,
		Remaining:      available,
	}
	for i, req := range s.requests {
		left, ok := pending[req.ChargeID]
		if !ok {
			return nil, shared.NewValidationError("allocation %d: charge %s is not an outstanding charge of the payment's contract", i+1, req.ChargeID)
		}
		if !req.Amount.IsPositive() {
			return nil, shared.NewValidationError("allocation %d: amount must be positive", i+1)
		}
		if req.Amount.Round(2).Cmp(req.Amount) != 0 {
			return nil, shared.NewValidationError("allocation %d: amount cannot have more than 2 decimals", i+1)
		}
		if req.Amount.GreaterThan(left) {
			return nil, shared.NewValidationError("allocation %d: amount %s exceeds pending %s of charge %s",
				i+1, req.Amount.StringFixed(2), left.StringFixed(2), req.ChargeID)
		}
		pending[req.ChargeID] = left.Sub(req.Amount)
		plan.TotalAllocated = plan.TotalAllocated.Add(req.Amount)
		plan.Allocations = append(plan.Allocations, Allocation{ChargeID: req.ChargeID, Amount: req.Amount})
	}
	if plan.TotalAllocated.GreaterThan(available) {
		return nil, shared.NewValidationError("total allocation %s exceeds available %s",
			plan.TotalAllocated.StringFixed(2), available.StringFixed(2))
	}
	plan.Remaining = available.Sub(plan.TotalAllocated)
	return plan, nil
}
