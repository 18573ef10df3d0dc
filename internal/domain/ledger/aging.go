package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AgingBucket classifies an overdue balance by days past due
type AgingBucket string

const (
	AgingBucketCurrent       AgingBucket = "CURRENT"
	AgingBucketOverdue1to30  AgingBucket = "OVERDUE_1_30"
	AgingBucketOverdue31to60 AgingBucket = "OVERDUE_31_60"
	AgingBucketOverdue61to90 AgingBucket = "OVERDUE_61_90"
	AgingBucketOverdue90Plus AgingBucket = "OVERDUE_90_PLUS"
)

// AllAgingBuckets returns the buckets in ascending age order
func AllAgingBuckets() []AgingBucket {
	return []AgingBucket{
		AgingBucketCurrent,
		AgingBucketOverdue1to30,
		AgingBucketOverdue31to60,
		AgingBucketOverdue61to90,
		AgingBucketOverdue90Plus,
	}
}

// IsValid checks if the bucket is valid
func (b AgingBucket) IsValid() bool {
	switch b {
	case AgingBucketCurrent, AgingBucketOverdue1to30, AgingBucketOverdue31to60,
		AgingBucketOverdue61to90, AgingBucketOverdue90Plus:
		return true
	}
	return false
}

// String returns the string representation of AgingBucket
func (b AgingBucket) String() string {
	return string(b)
}

// IsOverdue returns true for every bucket except CURRENT
func (b AgingBucket) IsOverdue() bool {
	return b != AgingBucketCurrent
}

// DaysOverdue returns max(0, asOf - dueDate) in whole calendar days
func DaysOverdue(dueDate, asOf time.Time) int {
	days := shared.DaysBetween(dueDate, asOf)
	if days < 0 {
		return 0
	}
	return days
}

// BucketFor classifies a days-overdue count. Ranges are inclusive on both ends.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 0:
		return AgingBucketCurrent
	case daysOverdue <= 30:
		return AgingBucketOverdue1to30
	case daysOverdue <= 60:
		return AgingBucketOverdue31to60
	case daysOverdue <= 90:
		return AgingBucketOverdue61to90
	default:
		return AgingBucketOverdue90Plus
	}
}

// IsAgeable reports whether a charge takes part in aging
func IsAgeable(c *Charge) bool {
	return c.Status.IsOutstanding() && c.Pending().IsPositive()
}

// BucketTotal aggregates one bucket
type BucketTotal struct {
	Bucket AgingBucket     `json:"bucket"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// AgingSummary is the bucketed pending balance as of a day
type AgingSummary struct {
	AsOf        time.Time       `json:"as_of"`
	Buckets     []BucketTotal   `json:"buckets"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalCount  int             `json:"total_count"`
}

// Bucket returns the totals of one bucket
func (s *AgingSummary) Bucket(b AgingBucket) BucketTotal {
	for _, t := range s.Buckets {
		if t.Bucket == b {
			return t
		}
	}
	return BucketTotal{Bucket: b, Amount: decimal.Zero}
}

// OverdueAmount returns the pending amount outside the CURRENT bucket
func (s *AgingSummary) OverdueAmount() decimal.Decimal {
	return s.TotalAmount.Sub(s.Bucket(AgingBucketCurrent).Amount)
}

func newAgingSummary(asOf time.Time) *AgingSummary {
	buckets := AllAgingBuckets()
	s := &AgingSummary{
		AsOf:        shared.DateOf(asOf),
		Buckets:     make([]BucketTotal, len(buckets)),
		TotalAmount: decimal.Zero,
	}
	for i, b := range buckets {
		s.Buckets[i] = BucketTotal{Bucket: b, Amount: decimal.Zero}
	}
	return s
}

func (s *AgingSummary) add(b AgingBucket, amount decimal.Decimal) {
	for i := range s.Buckets {
		if s.Buckets[i].Bucket == b {
			s.Buckets[i].Amount = s.Buckets[i].Amount.Add(amount)
			s.Buckets[i].Count++
			break
		}
	}
	s.TotalAmount = s.TotalAmount.Add(amount)
	s.TotalCount++
}

// Summarize buckets the pending amounts of the ageable charges. Each
// distinct charge is counted once.
func Summarize(charges []Charge, asOf time.Time) *AgingSummary {
	s := newAgingSummary(asOf)
	seen := make(map[uuid.UUID]struct{}, len(charges))
	for i := range charges {
		c := &charges[i]
		if !IsAgeable(c) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		s.add(BucketFor(c.DaysOverdue(asOf)), c.Pending())
	}
	return s
}

// ContractAging is one row of the aging report
type ContractAging struct {
	ContractID uuid.UUID     `json:"contract_id"`
	Summary    *AgingSummary `json:"summary"`
}

// SummarizeByContract builds one summary per contract, in first-seen order
func SummarizeByContract(charges []Charge, asOf time.Time) []ContractAging {
	rows := make([]ContractAging, 0)
	index := make(map[uuid.UUID]int)
	grouped := make(map[uuid.UUID][]Charge)
	for _, c := range charges {
		if _, ok := index[c.ContractID]; !ok {
			index[c.ContractID] = len(rows)
			rows = append(rows, ContractAging{ContractID: c.ContractID})
		}
		grouped[c.ContractID] = append(grouped[c.ContractID], c)
	}
	for i := range rows {
		rows[i].Summary = Summarize(grouped[rows[i].ContractID], asOf)
	}
	return rows
}
