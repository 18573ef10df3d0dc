package collections

import (
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Summary aggregates the open collections portfolio
type Summary struct {
	TotalPending   decimal.Decimal                     `json:"total_pending"`
	TotalPenalty   decimal.Decimal                     `json:"total_penalty"`
	TotalGeneral   decimal.Decimal                     `json:"total_general"`
	AccountCount   int                                 `json:"account_count"`
	ByBucket       []ledger.BucketTotal                `json:"by_bucket"`
	ByState        map[CollectionState]int             `json:"by_state"`
	PendingByState map[CollectionState]decimal.Decimal `json:"pending_by_state"`
}

// Summarize aggregates open records per bucket and per state
func Summarize(accounts []DelinquentAccount) *Summary {
	s := &Summary{
		TotalPending:   decimal.Zero,
		TotalPenalty:   decimal.Zero,
		ByBucket:       make([]ledger.BucketTotal, 0, 5),
		ByState:        make(map[CollectionState]int),
		PendingByState: make(map[CollectionState]decimal.Decimal),
	}
	byBucket := make(map[ledger.AgingBucket]*ledger.BucketTotal)
	for _, b := range ledger.AllAgingBuckets() {
		s.ByBucket = append(s.ByBucket, ledger.BucketTotal{Bucket: b, Amount: decimal.Zero})
	}
	for i := range s.ByBucket {
		byBucket[s.ByBucket[i].Bucket] = &s.ByBucket[i]
	}
	for _, st := range AllCollectionStates() {
		s.ByState[st] = 0
		s.PendingByState[st] = decimal.Zero
	}

	for _, a := range accounts {
		if !a.IsOpen() {
			continue
		}
		s.AccountCount++
		s.TotalPending = s.TotalPending.Add(a.PendingAmount)
		s.TotalPenalty = s.TotalPenalty.Add(a.PenaltyAmount)
		if bt, ok := byBucket[a.Bucket]; ok {
			bt.Amount = bt.Amount.Add(a.PendingAmount)
			bt.Count++
		}
		s.ByState[a.State]++
		s.PendingByState[a.State] = s.PendingByState[a.State].Add(a.PendingAmount)
	}
	s.TotalGeneral = s.TotalPending.Add(s.TotalPenalty)
	return s
}
