package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind tells a debit from a credit on a statement
type MovementKind string

const (
	MovementCharge  MovementKind = "CHARGE"
	MovementPayment MovementKind = "PAYMENT"
)

// Movement is one line of an account statement
type Movement struct {
	Date        time.Time       `json:"date"`
	Kind        MovementKind    `json:"kind"`
	Concept     string          `json:"concept"`
	Reference   string          `json:"reference"`
	SourceID    uuid.UUID       `json:"source_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
	DaysOverdue int             `json:"days_overdue,omitempty"`
}

// AccountStatement is the estado de cuenta of one contract
type AccountStatement struct {
	ContractID      uuid.UUID       `json:"contract_id"`
	ContractNumber  string          `json:"contract_number"`
	PersonID        uuid.UUID       `json:"person_id"`
	PropertyID      uuid.UUID       `json:"property_id"`
	From            *time.Time      `json:"from,omitempty"`
	To              *time.Time      `json:"to,omitempty"`
	GeneratedOn     time.Time       `json:"generated_on"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	TotalCharged    decimal.Decimal `json:"total_charged"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Balance         decimal.Decimal `json:"balance"`
	OverdueBalance  decimal.Decimal `json:"overdue_balance"`
	UpcomingBalance decimal.Decimal `json:"upcoming_balance"`
	Unapplied       decimal.Decimal `json:"unapplied"`
	Movements       []Movement      `json:"movements"`
}

// SettlementKind classifies a settlement line
type SettlementKind string

const (
	SettlementCharge    SettlementKind = "CHARGE"
	SettlementPayment   SettlementKind = "PAYMENT"
	SettlementDeposit   SettlementKind = "DEPOSIT"
	SettlementDeduction SettlementKind = "DEDUCTION"
)

// SettlementLine is one concept of a settlement
type SettlementLine struct {
	Date    time.Time       `json:"date"`
	Kind    SettlementKind  `json:"kind"`
	Concept string          `json:"concept"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	Notes   string          `json:"notes,omitempty"`
}

// Settlement is the finiquito of a contract: what is owed against the deposit
type Settlement struct {
	ContractID        uuid.UUID        `json:"contract_id"`
	ContractNumber    string           `json:"contract_number"`
	PersonID          uuid.UUID        `json:"person_id"`
	PropertyID        uuid.UUID        `json:"property_id"`
	ContractStatus    string           `json:"contract_status"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	TerminatedAt      *time.Time       `json:"terminated_at,omitempty"`
	TerminationReason string           `json:"termination_reason,omitempty"`
	MonthlyRent       decimal.Decimal  `json:"monthly_rent"`
	AsOf              time.Time        `json:"as_of"`
	TotalPaid         decimal.Decimal  `json:"total_paid"`
	RentPending       decimal.Decimal  `json:"rent_pending"`
	OtherCharges      decimal.Decimal  `json:"other_charges"`
	Pending           decimal.Decimal  `json:"pending"`
	Deposit           decimal.Decimal  `json:"deposit"`
	DepositDeduction  decimal.Decimal  `json:"deposit_deduction"`
	DepositRefund     decimal.Decimal  `json:"deposit_refund"`
	SettlementAmount  decimal.Decimal  `json:"settlement_amount"`
	Lines             []SettlementLine `json:"lines"`
}

// MonthlyContractLine is the month of one contract in force
type MonthlyContractLine struct {
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	PersonID       uuid.UUID       `json:"person_id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	MonthlyRent    decimal.Decimal `json:"monthly_rent"`
	Expected       decimal.Decimal `json:"expected"`
	Collected      decimal.Decimal `json:"collected"`
	Pending        decimal.Decimal `json:"pending"`
	Overdue        decimal.Decimal `json:"overdue"`
	UpToDate       bool            `json:"up_to_date"`
}

// Debtor is a contract with overdue balance
type Debtor struct {
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number,omitempty"`
	PersonID       uuid.UUID       `json:"person_id,omitempty"`
	Overdue        decimal.Decimal `json:"overdue"`
	Charges        int             `json:"charges"`
	MaxDaysOverdue int             `json:"max_days_overdue"`
}

// MonthlyReport is the operating summary of one month (reporte mensual)
type MonthlyReport struct {
	Period             string                `json:"period"`
	From               time.Time             `json:"from"`
	To                 time.Time             `json:"to"`
	AsOf               time.Time             `json:"as_of"`
	ContractsInForce   int                   `json:"contracts_in_force"`
	OccupiedProperties int                   `json:"occupied_properties"`
	ExpiringContracts  int                   `json:"expiring_contracts"`
	ExpectedRent       decimal.Decimal       `json:"expected_rent"`
	CollectedRent      decimal.Decimal       `json:"collected_rent"`
	CollectionPercent  decimal.Decimal       `json:"collection_percent"`
	Income             decimal.Decimal       `json:"income"`
	CurrentPortfolio   decimal.Decimal       `json:"current_portfolio"`
	OverduePortfolio   decimal.Decimal       `json:"overdue_portfolio"`
	TotalPortfolio     decimal.Decimal       `json:"total_portfolio"`
	DebtorCount        int                   `json:"debtor_count"`
	TopDebtors         []Debtor              `json:"top_debtors"`
	Contracts          []MonthlyContractLine `json:"contracts"`
}

// MonthlyReportRequest selects the month of a monthly report
type MonthlyReportRequest struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}
