package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	depositConcept   = "Depósito en garantía"
	deductionConcept = "Deducción de depósito por adeudos"
	paymentPrefix    = "Pago "
)

// StatementService builds read-only documents over the ledger of a contract
type StatementService struct {
	contractRepo lease.ContractRepository
	chargeRepo   ledger.ChargeRepository
	paymentRepo  ledger.PaymentRepository
	clock        shared.Clock
	logger       *zap.Logger
}

// NewStatementService creates a new StatementService
func NewStatementService(
	contractRepo lease.ContractRepository,
	chargeRepo ledger.ChargeRepository,
	paymentRepo ledger.PaymentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		contractRepo: contractRepo,
		chargeRepo:   chargeRepo,
		paymentRepo:  paymentRepo,
		clock:        clock,
		logger:       logger,
	}
}

type contractLedger struct {
	contract *lease.Contract
	charges  []ledger.Charge
	payments []ledger.Payment
}

// load returns the contract with its live charges and payments.
// Cancelled charges and cancelled or rejected payments carry no money.
func (s *StatementService) load(ctx context.Context, tenantID, contractID uuid.UUID) (*contractLedger, error) {
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	charges, err := s.chargeRepo.FindByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	l := &contractLedger{contract: contract}
	for i := range charges {
		if !charges[i].IsCancelled() {
			l.charges = append(l.charges, charges[i])
		}
	}
	for i := range payments {
		switch payments[i].Status {
		case ledger.PaymentStatusCancelled, ledger.PaymentStatusRejected:
			continue
		}
		l.payments = append(l.payments, payments[i])
	}
	return l, nil
}

// AccountStatement lists the charges and applied payments of a contract by
// date with a running balance. Movements before from roll into the opening
// balance and movements after to are left out.
func (s *StatementService) AccountStatement(ctx context.Context, tenantID, contractID uuid.UUID, from, to *time.Time) (*AccountStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "account_statement")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrContractID, contractID.String(),
	)

	from, to = dateOrNil(from), dateOrNil(to)
	if from != nil && to != nil && from.After(*to) {
		return nil, shared.NewValidationError("from date must not be after to date")
	}

	l, err := s.load(ctx, tenantID, contractID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	today := shared.Today(s.clock)

	st := &AccountStatement{
		ContractID:      l.contract.ID,
		ContractNumber:  l.contract.ContractNumber,
		PersonID:        l.contract.PersonID,
		PropertyID:      l.contract.PropertyID,
		From:            from,
		To:              to,
		GeneratedOn:     today,
		OpeningBalance:  decimal.Zero,
		TotalCharged:    decimal.Zero,
		TotalPaid:       decimal.Zero,
		OverdueBalance:  decimal.Zero,
		UpcomingBalance: decimal.Zero,
		Unapplied:       decimal.Zero,
		Movements:       make([]Movement, 0, len(l.charges)+len(l.payments)),
	}

	all := make([]Movement, 0, len(l.charges)+len(l.payments))
	for i := range l.charges {
		c := &l.charges[i]
		m := Movement{
			Date:      c.ChargeDate,
			Kind:      MovementCharge,
			Concept:   c.Concept,
			Reference: string(c.Type),
			SourceID:  c.ID,
			Debit:     c.AmountOriginal,
			Credit:    decimal.Zero,
			Status:    string(c.DisplayStatus(today)),
		}
		if c.Pending().IsPositive() {
			m.DaysOverdue = c.DaysOverdue(today)
			if m.DaysOverdue > 0 {
				st.OverdueBalance = st.OverdueBalance.Add(c.Pending())
			} else {
				st.UpcomingBalance = st.UpcomingBalance.Add(c.Pending())
			}
		}
		all = append(all, m)
	}
	for i := range l.payments {
		p := &l.payments[i]
		st.Unapplied = st.Unapplied.Add(p.Available())
		if !p.AmountApplied.IsPositive() {
			continue
		}
		all = append(all, Movement{
			Date:      p.PaymentDate,
			Kind:      MovementPayment,
			Concept:   paymentPrefix + p.ReceiptNumber,
			Reference: p.ReceiptNumber,
			SourceID:  p.ID,
			Debit:     decimal.Zero,
			Credit:    p.AmountApplied,
			Status:    string(p.Status),
		})
	}
	sortMovements(all)

	for _, m := range all {
		if to != nil && m.Date.After(*to) {
			continue
		}
		delta := m.Debit.Sub(m.Credit)
		if from != nil && m.Date.Before(*from) {
			st.OpeningBalance = st.OpeningBalance.Add(delta)
			continue
		}
		st.TotalCharged = st.TotalCharged.Add(m.Debit)
		st.TotalPaid = st.TotalPaid.Add(m.Credit)
		st.Movements = append(st.Movements, m)
	}

	balance := st.OpeningBalance
	for i := range st.Movements {
		balance = balance.Add(st.Movements[i].Debit).Sub(st.Movements[i].Credit)
		st.Movements[i].Balance = balance
	}
	st.Balance = balance

	s.logger.Debug("Account statement built",
		zap.String("contract_id", contractID.String()),
		zap.Int("movements", len(st.Movements)),
		zap.String("balance", st.Balance.StringFixed(2)))
	return st, nil
}

// sortMovements orders by date; on the same day charges come before payments
func sortMovements(ms []Movement) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		return ms[i].Kind == MovementCharge && ms[j].Kind == MovementPayment
	})
}

// Settlement computes the finiquito of a contract as of a day: the deposit
// covers what is pending and the remainder is either refunded or still owed.
func (s *StatementService) Settlement(ctx context.Context, tenantID, contractID uuid.UUID, asOf *time.Time) (*Settlement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "settlement")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrContractID, contractID.String(),
	)

	l, err := s.load(ctx, tenantID, contractID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	day := shared.Today(s.clock)
	if asOf != nil && !asOf.IsZero() {
		day = shared.DateOf(*asOf)
	}
	c := l.contract

	st := &Settlement{
		ContractID:        c.ID,
		ContractNumber:    c.ContractNumber,
		PersonID:          c.PersonID,
		PropertyID:        c.PropertyID,
		ContractStatus:    string(c.DisplayStatus(day)),
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		TerminatedAt:      c.TerminatedAt,
		TerminationReason: c.TerminationReason,
		MonthlyRent:       c.MonthlyRent,
		AsOf:              day,
		TotalPaid:         decimal.Zero,
		RentPending:       decimal.Zero,
		OtherCharges:      decimal.Zero,
		Pending:           decimal.Zero,
		Deposit:           c.Deposit,
		Lines:             make([]SettlementLine, 0, len(l.charges)+len(l.payments)+2),
	}

	for i := range l.charges {
		ch := &l.charges[i]
		st.Pending = st.Pending.Add(ch.Pending())
		if ch.Type == ledger.ChargeTypeRent {
			st.RentPending = st.RentPending.Add(ch.Pending())
		} else {
			st.OtherCharges = st.OtherCharges.Add(ch.AmountOriginal)
		}
		st.Lines = append(st.Lines, SettlementLine{
			Date:    ch.ChargeDate,
			Kind:    SettlementCharge,
			Concept: ch.Concept,
			Amount:  ch.AmountOriginal,
			Status:  string(ch.DisplayStatus(day)),
			Notes:   ch.Notes,
		})
	}
	for i := range l.payments {
		p := &l.payments[i]
		st.TotalPaid = st.TotalPaid.Add(p.AmountApplied)
		st.Lines = append(st.Lines, SettlementLine{
			Date:    p.PaymentDate,
			Kind:    SettlementPayment,
			Concept: paymentPrefix + p.ReceiptNumber,
			Amount:  p.Amount,
			Status:  string(p.Status),
			Notes:   p.Notes,
		})
	}

	pending, deposit := valueobject.NewMoneyMXN(st.Pending), valueobject.NewMoneyMXN(st.Deposit)
	deduction := pending.Min(deposit)
	st.DepositDeduction = deduction.Amount()
	st.DepositRefund = deposit.Sub(deduction).Amount()
	st.SettlementAmount = pending.Sub(deposit).NonNegative().Amount()

	if st.Deposit.IsPositive() {
		st.Lines = append(st.Lines, SettlementLine{
			Date:    c.StartDate,
			Kind:    SettlementDeposit,
			Concept: depositConcept,
			Amount:  st.Deposit,
			Status:  "RECORDED",
		})
		if st.DepositDeduction.IsPositive() {
			st.Lines = append(st.Lines, SettlementLine{
				Date:    day,
				Kind:    SettlementDeduction,
				Concept: deductionConcept,
				Amount:  st.DepositDeduction.Neg(),
				Status:  "APPLIED",
			})
		}
	}
	sort.SliceStable(st.Lines, func(i, j int) bool {
		return st.Lines[i].Date.Before(st.Lines[j].Date)
	})

	s.logger.Info("Settlement computed",
		zap.String("contract_id", contractID.String()),
		zap.String("pending", st.Pending.StringFixed(2)),
		zap.String("deposit_refund", st.DepositRefund.StringFixed(2)),
		zap.String("settlement_amount", st.SettlementAmount.StringFixed(2)))
	return st, nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := shared.DateOf(*t)
	return &d
}

const (
	topDebtors   = 5
	expiringDays = 30
)

// MonthlyReport summarizes a month for the tenant: contracts in force, the
// month's fixed rent against what it collected, the income received and the
// portfolio split into current and overdue as of the month end (or today while
// the month is running).
func (s *StatementService) MonthlyReport(ctx context.Context, tenantID uuid.UUID, year, month int) (*MonthlyReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "monthly_report")
	defer span.End()

	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, shared.NewValidationError("invalid period %d-%02d", year, month)
	}
	from := shared.Date(year, time.Month(month), 1)
	to := from.AddDate(0, 1, -1)
	asOf := shared.Today(s.clock)
	if to.Before(asOf) {
		asOf = to
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPeriod, from.Format("2006-01"),
	)

	contracts, err := s.contractRepo.FindInForce(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	recurring, err := s.chargeRepo.FindRecurringDue(ctx, tenantID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	income, err := s.paymentRepo.SumApplied(ctx, tenantID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ageable, err := s.chargeRepo.FindAgeable(ctx, tenantID, ledger.AgingScope{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	r := &MonthlyReport{
		Period:           from.Format("2006-01"),
		From:             from,
		To:               to,
		AsOf:             asOf,
		ContractsInForce: len(contracts),
		Income:           income,
		TopDebtors:       []Debtor{},
		Contracts:        make([]MonthlyContractLine, 0, len(contracts)),
	}

	lines := make(map[uuid.UUID]*MonthlyContractLine, len(contracts))
	properties := make(map[uuid.UUID]struct{}, len(contracts))
	expiringBy := to.AddDate(0, 0, expiringDays)
	for i := range contracts {
		c := &contracts[i]
		properties[c.PropertyID] = struct{}{}
		if !c.EndDate.Before(from) && !c.EndDate.After(expiringBy) {
			r.ExpiringContracts++
		}
		r.Contracts = append(r.Contracts, MonthlyContractLine{
			ContractID:     c.ID,
			ContractNumber: c.ContractNumber,
			PersonID:       c.PersonID,
			PropertyID:     c.PropertyID,
			MonthlyRent:    c.MonthlyRent,
			Expected:       decimal.Zero,
			Collected:      decimal.Zero,
			Pending:        decimal.Zero,
			Overdue:        decimal.Zero,
		})
	}
	for i := range r.Contracts {
		lines[r.Contracts[i].ContractID] = &r.Contracts[i]
	}
	r.OccupiedProperties = len(properties)

	expected, collected := valueobject.ZeroMXN(), valueobject.ZeroMXN()
	for i := range recurring {
		ch := &recurring[i]
		if ch.IsCancelled() {
			continue
		}
		original, paid := valueobject.NewMoneyMXN(ch.AmountOriginal), valueobject.NewMoneyMXN(ch.AmountPaid)
		expected = expected.Add(original)
		collected = collected.Add(paid)
		if line, ok := lines[ch.ContractID]; ok {
			line.Expected = valueobject.NewMoneyMXN(line.Expected).Add(original).Amount()
			line.Collected = valueobject.NewMoneyMXN(line.Collected).Add(paid).Amount()
		}
	}
	r.ExpectedRent = expected.Amount()
	r.CollectedRent = collected.Amount()
	r.CollectionPercent = collected.PercentOf(expected)

	current, overdue := valueobject.ZeroMXN(), valueobject.ZeroMXN()
	debtors := make(map[uuid.UUID]*Debtor)
	for i := range ageable {
		ch := &ageable[i]
		pending := valueobject.NewMoneyMXN(ch.Pending())
		if ch.IsCancelled() || !pending.IsPositive() {
			continue
		}
		days := ch.DaysOverdue(asOf)
		if days <= 0 {
			current = current.Add(pending)
			continue
		}
		overdue = overdue.Add(pending)
		d, ok := debtors[ch.ContractID]
		if !ok {
			d = &Debtor{ContractID: ch.ContractID, Overdue: decimal.Zero}
			if line, found := lines[ch.ContractID]; found {
				d.ContractNumber = line.ContractNumber
				d.PersonID = line.PersonID
			}
			debtors[ch.ContractID] = d
		}
		d.Overdue = valueobject.NewMoneyMXN(d.Overdue).Add(pending).Amount()
		d.Charges++
		if days > d.MaxDaysOverdue {
			d.MaxDaysOverdue = days
		}
		if line, found := lines[ch.ContractID]; found {
			line.Overdue = d.Overdue
		}
	}
	r.CurrentPortfolio = current.Amount()
	r.OverduePortfolio = overdue.Amount()
	r.TotalPortfolio = current.Add(overdue).Amount()
	r.DebtorCount = len(debtors)

	for i := range r.Contracts {
		line := &r.Contracts[i]
		line.Pending = valueobject.NewMoneyMXN(line.Expected).Sub(valueobject.NewMoneyMXN(line.Collected)).NonNegative().Amount()
		line.UpToDate = !line.Pending.IsPositive() && !line.Overdue.IsPositive()
	}

	for _, d := range debtors {
		r.TopDebtors = append(r.TopDebtors, *d)
	}
	sort.Slice(r.TopDebtors, func(i, j int) bool {
		if !r.TopDebtors[i].Overdue.Equal(r.TopDebtors[j].Overdue) {
			return r.TopDebtors[i].Overdue.GreaterThan(r.TopDebtors[j].Overdue)
		}
		return r.TopDebtors[i].ContractID.String() < r.TopDebtors[j].ContractID.String()
	})
	if len(r.TopDebtors) > topDebtors {
		r.TopDebtors = r.TopDebtors[:topDebtors]
	}

	s.logger.Info("Monthly report generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", r.Period),
		zap.String("collection_percent", r.CollectionPercent.StringFixed(2)))
	return r, nil
}
