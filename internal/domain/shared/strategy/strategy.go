// Package strategy names the pluggable policies of the ledger so they can be
// logged and traced by name.
package strategy

// StrategyType groups strategies by the decision they make
type StrategyType string

const (
	// StrategyTypeAllocation decides how a payment is spread over charges
	StrategyTypeAllocation StrategyType = "allocation"
)

func (t StrategyType) String() string {
	return string(t)
}

// IsValid reports whether t is a known strategy type
func (t StrategyType) IsValid() bool {
	return t == StrategyTypeAllocation
}

// Strategy is implemented by every named policy
type Strategy interface {
	Name() string
	Type() StrategyType
	Description() string
}

// BaseStrategy carries the identity of a strategy; embed it by value
type BaseStrategy struct {
	name         string
	strategyType StrategyType
	description  string
}

func NewBaseStrategy(name string, strategyType StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, strategyType: strategyType, description: description}
}

func (s BaseStrategy) Name() string        { return s.name }
func (s BaseStrategy) Type() StrategyType  { return s.strategyType }
func (s BaseStrategy) Description() string { return s.description }
