package collections

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var collectionsToday = shared.Date(2025, time.June, 15)

type collectionsFixture struct {
	clock     *shared.FixedClock
	accounts  *MockAccountRepository
	followUps *MockFollowUpRepository
	charges   *MockChargeRepository
	contracts *MockContractRepository
	publisher *MockEventPublisher
	svc       *CollectionsService
}

func newCollectionsFixture(today time.Time) *collectionsFixture {
	f := &collectionsFixture{
		clock:     shared.NewFixedClock(today),
		accounts:  new(MockAccountRepository),
		followUps: new(MockFollowUpRepository),
		charges:   new(MockChargeRepository),
		contracts: new(MockContractRepository),
		publisher: &MockEventPublisher{},
	}
	scope := NewNoOpTransactionScope(f.accounts, f.followUps, f.charges, f.contracts)
	f.svc = NewCollectionsService(f.accounts, f.followUps, f.charges, f.contracts, scope, f.clock, DefaultServiceConfig(), nil)
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func overdueCharge(t *testing.T, tenantID, contractID uuid.UUID, amount int64, due time.Time) *ledger.Charge {
	t.Helper()
	c, err := ledger.NewCharge(tenantID, ledger.ChargeInput{
		ContractID: contractID,
		Type:       ledger.ChargeTypeRent,
		Concept:    "Renta " + due.Format("2006-01"),
		Amount:     dec(amount),
		ChargeDate: due.AddDate(0, 0, -5),
		DueDate:    due,
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	c.MarkPersisted()
	return c
}

func openAccount(t *testing.T, charge *ledger.Charge, asOf time.Time) *collections.DelinquentAccount {
	t.Helper()
	a, err := collections.OpenDelinquentAccount(charge, collections.OpenInput{
		PersonID:     uuid.New(),
		PropertyID:   uuid.New(),
		DailyPenalty: dec(50),
	}, asOf)
	require.NoError(t, err)
	a.ClearDomainEvents()
	a.MarkPersisted()
	return a
}

func activeLease(t *testing.T, tenantID uuid.UUID, status lease.ContractStatus) *lease.Contract {
	t.Helper()
	c, err := lease.NewContract(tenantID, "CTR-202501-0007", lease.Terms{
		PropertyID:     uuid.New(),
		PersonID:       uuid.New(),
		StartDate:      shared.Date(2025, time.January, 1),
		EndDate:        shared.Date(2025, time.December, 31),
		MonthlyRent:    dec(9000),
		Deposit:        dec(9000),
		DailyPenalty:   dec(75),
		PenaltyPercent: dec(10),
		GraceDays:      3,
		PaymentDay:     1,
	}, "")
	require.NoError(t, err)
	if status != lease.ContractStatusDraft {
		require.NoError(t, c.Activate())
	}
	c.Status = status
	c.ClearDomainEvents()
	c.MarkPersisted()
	return c
}

func byID(id uuid.UUID) interface{} {
	return mock.MatchedBy(func(a *collections.DelinquentAccount) bool { return a.ID == id })
}

func TestCollectionsService_SyncFromAging(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	contract := activeLease(t, tenantID, lease.ContractStatusActive)

	fresh := overdueCharge(t, tenantID, contract.ID, 300, shared.Date(2025, time.May, 1))
	aging := overdueCharge(t, tenantID, contract.ID, 200, shared.Date(2025, time.June, 1))
	notDue := overdueCharge(t, tenantID, contract.ID, 150, shared.Date(2025, time.June, 20))
	paidOff := overdueCharge(t, tenantID, contract.ID, 100, shared.Date(2025, time.April, 1))

	agingRecord := openAccount(t, aging, shared.Date(2025, time.June, 5))
	paidRecord := openAccount(t, paidOff, shared.Date(2025, time.April, 10))
	require.NoError(t, paidOff.ApplyPayment(uuid.New(), dec(100), collectionsToday))

	f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).
		Return([]ledger.Charge{*fresh, *aging, *notDue}, nil)
	f.charges.On("FindByIDForTenant", mock.Anything, tenantID, paidOff.ID).Return(paidOff, nil)
	f.accounts.On("FindOpen", mock.Anything, tenantID).
		Return([]collections.DelinquentAccount{*agingRecord, *paidRecord}, nil)
	f.accounts.On("FindLatestClosedByCharge", mock.Anything, tenantID, fresh.ID).Return(nil, shared.ErrNotFound)
	f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, contract.ID).Return(contract, nil).Once()

	var opened *collections.DelinquentAccount
	f.accounts.On("Save", mock.Anything, mock.AnythingOfType("*collections.DelinquentAccount")).
		Run(func(args mock.Arguments) { opened = args.Get(1).(*collections.DelinquentAccount) }).
		Return(nil).Once()
	var locked []*collections.DelinquentAccount
	f.accounts.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*collections.DelinquentAccount")).
		Run(func(args mock.Arguments) { locked = append(locked, args.Get(1).(*collections.DelinquentAccount)) }).
		Return(nil)

	result, err := f.svc.SyncFromAging(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Opened: 1, Updated: 1, Closed: 1}, result)

	require.NotNil(t, opened)
	assert.Equal(t, fresh.ID, opened.ChargeID)
	assert.Equal(t, contract.PersonID, opened.PersonID)
	assert.Equal(t, contract.PropertyID, opened.PropertyID)
	assert.True(t, opened.DailyPenalty.Equal(dec(75)))
	assert.True(t, opened.PenaltyBilled.IsZero())
	assert.Equal(t, 45, opened.DaysOverdue)
	assert.Equal(t, ledger.AgingBucketOverdue31to60, opened.Bucket)
	assert.Equal(t, collections.CollectionStatePending, opened.State)

	require.Len(t, locked, 2)
	for _, a := range locked {
		switch a.ID {
		case agingRecord.ID:
			assert.Equal(t, 14, a.DaysOverdue)
			assert.Equal(t, collections.CollectionStatePending, a.State)
			assert.True(t, a.IsOpen())
		case paidRecord.ID:
			assert.False(t, a.IsOpen())
			assert.Equal(t, collections.CollectionStatePaid, a.State)
			assert.Equal(t, collections.CloseReasonPaid, a.CloseReason)
			assert.True(t, a.PendingAmount.IsZero())
		default:
			t.Fatalf("unexpected record %s saved", a.ID)
		}
	}

	assert.ElementsMatch(t,
		[]string{collections.EventTypeDelinquencyOpened, collections.EventTypeDelinquencyClosed},
		f.publisher.EventTypes())
	f.contracts.AssertExpectations(t)
}

func TestCollectionsService_SyncFromAging_KeepsFreshRecordsUnchanged(t *testing.T) {
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	charge := overdueCharge(t, tenantID, uuid.New(), 200, shared.Date(2025, time.June, 1))
	record := openAccount(t, charge, collectionsToday)

	f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).Return([]ledger.Charge{*charge}, nil)
	f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{*record}, nil)

	result, err := f.svc.SyncFromAging(context.Background(), tenantID, nil)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Unchanged: 1}, result)
	f.accounts.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCollectionsService_SyncFromAging_VoidsCancelledCharges(t *testing.T) {
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)

	cancelled := overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1))
	cancelledRecord := openAccount(t, cancelled, collectionsToday)
	require.NoError(t, cancelled.Cancel("Cargo duplicado"))
	gone := overdueCharge(t, tenantID, uuid.New(), 200, shared.Date(2025, time.May, 1))
	goneRecord := openAccount(t, gone, collectionsToday)

	f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).Return([]ledger.Charge{}, nil)
	f.charges.On("FindByIDForTenant", mock.Anything, tenantID, cancelled.ID).Return(cancelled, nil)
	f.charges.On("FindByIDForTenant", mock.Anything, tenantID, gone.ID).Return(nil, shared.ErrNotFound)
	f.accounts.On("FindOpen", mock.Anything, tenantID).
		Return([]collections.DelinquentAccount{*cancelledRecord, *goneRecord}, nil)
	var locked []*collections.DelinquentAccount
	f.accounts.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*collections.DelinquentAccount")).
		Run(func(args mock.Arguments) { locked = append(locked, args.Get(1).(*collections.DelinquentAccount)) }).
		Return(nil)

	result, err := f.svc.SyncFromAging(context.Background(), tenantID, nil)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Voided: 2}, result)

	require.Len(t, locked, 2)
	for _, a := range locked {
		assert.False(t, a.IsOpen())
		assert.Equal(t, collections.CollectionStateUncollectible, a.State)
		assert.Equal(t, collections.CloseReasonChargeCancelled, a.CloseReason)
		assert.NotNil(t, a.ClosedAt)
	}
	assert.Equal(t,
		[]string{collections.EventTypeDelinquencyClosed, collections.EventTypeDelinquencyClosed},
		f.publisher.EventTypes())
}

func TestCollectionsService_SyncFromAging_OpenFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("record opened concurrently", func(t *testing.T) {
		tenantID := uuid.New()
		f := newCollectionsFixture(collectionsToday)
		contract := activeLease(t, tenantID, lease.ContractStatusActive)
		charge := overdueCharge(t, tenantID, contract.ID, 300, shared.Date(2025, time.May, 1))
		theirs := openAccount(t, charge, collectionsToday)

		f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).Return([]ledger.Charge{*charge}, nil)
		f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{}, nil).Once()
		f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{*theirs}, nil).Once()
		f.accounts.On("FindLatestClosedByCharge", mock.Anything, tenantID, charge.ID).Return(nil, shared.ErrNotFound)
		f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, contract.ID).Return(contract, nil)
		f.accounts.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists).Once()

		result, err := f.svc.SyncFromAging(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Equal(t, &SyncResult{Unchanged: 1}, result)
		assert.Empty(t, f.publisher.EventTypes())
		f.accounts.AssertExpectations(t)
	})

	t.Run("contract missing rolls the run back", func(t *testing.T) {
		tenantID := uuid.New()
		f := newCollectionsFixture(collectionsToday)
		charge := overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1))

		f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).Return([]ledger.Charge{*charge}, nil)
		f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{}, nil)
		f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, charge.ContractID).Return(nil, shared.ErrNotFound)

		result, err := f.svc.SyncFromAging(ctx, tenantID, nil)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Nil(t, result)
		f.accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.EventTypes())
	})
}

func TestCollectionsService_SyncAllTenants_CountsFailedTenants(t *testing.T) {
	healthy, broken := uuid.New(), uuid.New()
	f := newCollectionsFixture(collectionsToday)
	charge := overdueCharge(t, healthy, uuid.New(), 200, shared.Date(2025, time.June, 1))
	record := openAccount(t, charge, collectionsToday)

	f.contracts.On("FindTenantIDs", mock.Anything).Return([]uuid.UUID{broken, healthy}, nil)
	f.charges.On("FindAgeable", mock.Anything, broken, ledger.AgingScope{}).Return([]ledger.Charge(nil), errors.New("connection reset"))
	f.charges.On("FindAgeable", mock.Anything, healthy, ledger.AgingScope{}).Return([]ledger.Charge{*charge}, nil)
	f.accounts.On("FindOpen", mock.Anything, healthy).Return([]collections.DelinquentAccount{*record}, nil)

	result, err := f.svc.SyncAllTenants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Unchanged: 1, FailedTenants: 1}, result)
}

// A payment that closed a record is cancelled after its penalty was billed.
// The record opened by the next sync must not bill those days again.
func TestCollectionsService_ReopenedChargeKeepsBilledPenalty(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	contract := activeLease(t, tenantID, lease.ContractStatusActive)
	charge := overdueCharge(t, tenantID, contract.ID, 300, shared.Date(2025, time.May, 1))

	first, err := collections.OpenDelinquentAccount(charge, collections.OpenInput{
		PersonID:     contract.PersonID,
		PropertyID:   contract.PropertyID,
		DailyPenalty: contract.DailyPenalty,
	}, collectionsToday)
	require.NoError(t, err)
	_, err = first.AccruePenalty(collectionsToday)
	require.NoError(t, err)
	first.ClearDomainEvents()
	first.MarkPersisted()

	saved := make(map[uuid.UUID]*collections.DelinquentAccount)
	f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, contract.ID).Return(contract, nil)
	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, first.ID).Return(first, nil)
	f.accounts.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*collections.DelinquentAccount")).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*collections.DelinquentAccount)
			saved[a.ID] = a
		}).
		Return(nil)
	var billed []*ledger.Charge
	f.charges.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Charge")).
		Run(func(args mock.Arguments) { billed = append(billed, args.Get(1).(*ledger.Charge)) }).
		Return(nil)

	// 45 days x 75 are billed, then the rent is paid in full
	_, err = f.svc.BillPenalty(ctx, tenantID, first.ID)
	require.NoError(t, err)
	paymentID := uuid.New()
	require.NoError(t, charge.ApplyPayment(paymentID, dec(300), collectionsToday))
	_, err = f.svc.RecordPayment(ctx, tenantID, first.ID, RecordPaymentRequest{Amount: dec(300)})
	require.NoError(t, err)
	require.False(t, first.IsOpen())

	// Two days later the payment is cancelled
	f.clock.Set(shared.Date(2025, time.June, 17))
	require.NoError(t, charge.ReversePayment(paymentID, dec(300), f.clock.Now()))

	f.charges.On("FindAgeable", mock.Anything, tenantID, ledger.AgingScope{}).Return([]ledger.Charge{*charge}, nil)
	f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{}, nil).Once()
	f.accounts.On("FindLatestClosedByCharge", mock.Anything, tenantID, charge.ID).Return(first, nil)
	var second *collections.DelinquentAccount
	f.accounts.On("Save", mock.Anything, mock.AnythingOfType("*collections.DelinquentAccount")).
		Run(func(args mock.Arguments) { second = args.Get(1).(*collections.DelinquentAccount) }).
		Return(nil).Once()

	synced, err := f.svc.SyncFromAging(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, synced.Opened)
	require.NotNil(t, second)
	assert.True(t, second.PenaltyAmount.Equal(dec(3375)))
	assert.True(t, second.PenaltyBilled.Equal(dec(3375)))

	f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{*second}, nil).Once()
	accrual, err := f.svc.AccrueAll(ctx, tenantID, nil)
	require.NoError(t, err)
	// 47 days x 75
	assert.True(t, accrual.Total.Equal(dec(3525)))
	require.Contains(t, saved, second.ID)

	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, second.ID).Return(saved[second.ID], nil)
	_, err = f.svc.BillPenalty(ctx, tenantID, second.ID)
	require.NoError(t, err)

	require.Len(t, billed, 2)
	assert.True(t, billed[1].AmountOriginal.Equal(dec(150)), "only the two new days are billed")
	assert.True(t, billed[0].AmountOriginal.Add(billed[1].AmountOriginal).Equal(dec(3525)))
}

func TestCollectionsService_AccruePenalty(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	charge := overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1))
	record := openAccount(t, charge, shared.Date(2025, time.May, 10))

	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
	f.accounts.On("SaveWithLock", mock.Anything, byID(record.ID)).Return(nil).Once()

	resp, err := f.svc.AccruePenalty(ctx, tenantID, record.ID, nil)
	require.NoError(t, err)
	// 45 days x 50
	assert.True(t, resp.PenaltyAmount.Equal(dec(2250)))
	assert.True(t, resp.UnbilledPenalty.Equal(dec(2250)))
	assert.True(t, resp.TotalDue.Equal(dec(2550)))
	assert.Equal(t, []string{collections.EventTypePenaltyAccrued}, f.publisher.EventTypes())

	earlier := shared.Date(2025, time.May, 20)
	resp, err = f.svc.AccruePenalty(ctx, tenantID, record.ID, &earlier)
	require.NoError(t, err)
	assert.True(t, resp.PenaltyAmount.Equal(dec(2250)))
	f.accounts.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestCollectionsService_AccruePenalty_RetriesOnConflict(t *testing.T) {
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	charge := overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.June, 5))
	stale := openAccount(t, charge, collectionsToday)
	fresh := *stale

	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, stale.ID).Return(stale, nil).Once()
	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, stale.ID).Return(&fresh, nil).Once()
	f.accounts.On("SaveWithLock", mock.Anything, byID(stale.ID)).Return(shared.NewConcurrencyError("delinquent account")).Once()
	f.accounts.On("SaveWithLock", mock.Anything, byID(stale.ID)).Return(nil).Once()

	resp, err := f.svc.AccruePenalty(context.Background(), tenantID, stale.ID, nil)
	require.NoError(t, err)
	assert.True(t, resp.PenaltyAmount.Equal(dec(500)))
	assert.Equal(t, []string{collections.EventTypePenaltyAccrued}, f.publisher.EventTypes())
	f.accounts.AssertExpectations(t)
}

func TestCollectionsService_AccrueAll(t *testing.T) {
	tenantID := uuid.New()
	may := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
	june := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.June, 1)), collectionsToday)
	conflict := shared.NewConcurrencyError("delinquent account")

	// Each attempt reads fresh rows
	expectOpen := func(f *collectionsFixture, attempts int) {
		for i := 0; i < attempts; i++ {
			f.accounts.On("FindOpen", mock.Anything, tenantID).
				Return([]collections.DelinquentAccount{*may, *june}, nil).Once()
		}
	}

	t.Run("accrues every open record", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		expectOpen(f, 1)
		f.accounts.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		result, err := f.svc.AccrueAll(context.Background(), tenantID, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Scanned)
		assert.Equal(t, 2, result.Accrued)
		// 45 x 50 + 14 x 50
		assert.True(t, result.Total.Equal(dec(2950)))
		assert.Equal(t,
			[]string{collections.EventTypePenaltyAccrued, collections.EventTypePenaltyAccrued},
			f.publisher.EventTypes())
	})

	t.Run("a conflict reruns the whole tenant", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		expectOpen(f, 2)
		f.accounts.On("SaveWithLock", mock.Anything, byID(may.ID)).Return(nil)
		f.accounts.On("SaveWithLock", mock.Anything, byID(june.ID)).Return(conflict).Once()
		f.accounts.On("SaveWithLock", mock.Anything, byID(june.ID)).Return(nil).Once()

		result, err := f.svc.AccrueAll(context.Background(), tenantID, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Accrued)
		assert.True(t, result.Total.Equal(dec(2950)))
		assert.Len(t, f.publisher.EventTypes(), 2)
		f.accounts.AssertNumberOfCalls(t, "SaveWithLock", 4)
	})

	t.Run("persistent conflicts fail the run", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		expectOpen(f, DefaultServiceConfig().MaxAttempts)
		f.accounts.On("SaveWithLock", mock.Anything, byID(may.ID)).Return(nil)
		f.accounts.On("SaveWithLock", mock.Anything, byID(june.ID)).Return(conflict)

		result, err := f.svc.AccrueAll(context.Background(), tenantID, nil)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Nil(t, result)
		assert.Empty(t, f.publisher.EventTypes())
	})
}

func TestCollectionsService_RegisterFollowUp(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("promise moves the record to promise to pay", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		record := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
		promised := time.Date(2025, time.June, 20, 15, 30, 0, 0, time.UTC)
		amount := dec(300)

		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		f.accounts.On("SaveWithLock", mock.Anything, byID(record.ID)).Return(nil)
		var created *collections.FollowUp
		f.followUps.On("Create", mock.Anything, mock.AnythingOfType("*collections.FollowUp")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*collections.FollowUp) }).
			Return(nil)

		result, err := f.svc.RegisterFollowUp(ctx, tenantID, record.ID, FollowUpRequest{
			ContactType:    string(collections.ContactTypePhoneCall),
			Description:    "  Tenant agreed to pay next Friday ",
			Outcome:        string(collections.ContactOutcomePromiseToPay),
			PromisedDate:   &promised,
			PromisedAmount: &amount,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, record.ID, created.AccountID)
		assert.Equal(t, "Tenant agreed to pay next Friday", result.FollowUp.Description)
		assert.Equal(t, string(collections.CollectionStatePromiseToPay), result.Account.State)
		require.NotNil(t, result.Account.PromisedDate)
		assert.Equal(t, shared.Date(2025, time.June, 20), *result.Account.PromisedDate)
		assert.NotNil(t, result.Account.LastContactAt)
		assert.Equal(t, []string{collections.EventTypeFollowUpRegistered}, f.publisher.EventTypes())
	})

	t.Run("closed record rejects follow-ups", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		record := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
		require.NoError(t, record.Close(collectionsToday))
		record.ClearDomainEvents()
		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)

		_, err := f.svc.RegisterFollowUp(ctx, tenantID, record.ID, FollowUpRequest{ContactType: string(collections.ContactTypeEmail)})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.followUps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("promise without date is invalid", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		record := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)

		_, err := f.svc.RegisterFollowUp(ctx, tenantID, record.ID, FollowUpRequest{
			ContactType: string(collections.ContactTypeWhatsApp),
			Outcome:     string(collections.ContactOutcomePromiseToPay),
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestCollectionsService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	record := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)

	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
	f.accounts.On("SaveWithLock", mock.Anything, byID(record.ID)).Return(nil)

	resp, err := f.svc.RecordPayment(ctx, tenantID, record.ID, RecordPaymentRequest{Amount: dec(100)})
	require.NoError(t, err)
	assert.True(t, resp.PendingAmount.Equal(dec(200)))
	assert.Equal(t, string(collections.CollectionStatePartiallyPaid), resp.State)
	assert.True(t, resp.Active)

	resp, err = f.svc.RecordPayment(ctx, tenantID, record.ID, RecordPaymentRequest{Amount: dec(250)})
	require.NoError(t, err)
	assert.True(t, resp.PendingAmount.IsZero())
	assert.Equal(t, string(collections.CollectionStatePaid), resp.State)
	assert.False(t, resp.Active)
	assert.NotNil(t, resp.ClosedAt)
	assert.Equal(t, []string{collections.EventTypeDelinquencyClosed}, f.publisher.EventTypes())

	_, err = f.svc.RecordPayment(ctx, tenantID, record.ID, RecordPaymentRequest{Amount: dec(1)})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestCollectionsService_ChangeState(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)
	record := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)

	f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
	f.accounts.On("SaveWithLock", mock.Anything, byID(record.ID)).Return(nil)

	_, err := f.svc.ChangeState(ctx, tenantID, record.ID, ChangeStateRequest{State: "PAID"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	resp, err := f.svc.ChangeState(ctx, tenantID, record.ID, ChangeStateRequest{State: "uncollectible"})
	require.NoError(t, err)
	assert.Equal(t, string(collections.CollectionStateUncollectible), resp.State)
	assert.Equal(t, []string{collections.EventTypeCollectionStateChanged}, f.publisher.EventTypes())

	_, err = f.svc.ChangeState(ctx, tenantID, record.ID, ChangeStateRequest{State: "UNCOLLECTIBLE"})
	require.NoError(t, err)
	f.accounts.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestCollectionsService_BillPenalty(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("bills the unbilled penalty once", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		contract := activeLease(t, tenantID, lease.ContractStatusActive)
		record := openAccount(t, overdueCharge(t, tenantID, contract.ID, 300, shared.Date(2025, time.May, 1)), collectionsToday)
		_, err := record.AccruePenalty(collectionsToday)
		require.NoError(t, err)
		record.ClearDomainEvents()

		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, contract.ID).Return(contract, nil)
		var billed *ledger.Charge
		f.charges.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Charge")).
			Run(func(args mock.Arguments) { billed = args.Get(1).(*ledger.Charge) }).
			Return(nil).Once()
		f.accounts.On("SaveWithLock", mock.Anything, byID(record.ID)).Return(nil).Once()

		result, err := f.svc.BillPenalty(ctx, tenantID, record.ID)
		require.NoError(t, err)
		require.NotNil(t, billed)
		assert.Equal(t, ledger.ChargeTypePenalty, billed.Type)
		assert.Equal(t, contract.ID, billed.ContractID)
		assert.Equal(t, "Penalidad por atraso: Renta 2025-05", billed.Concept)
		assert.True(t, billed.AmountOriginal.Equal(dec(2250)))
		assert.Equal(t, collectionsToday, billed.DueDate)
		assert.True(t, result.Charge.AmountOriginal.Equal(dec(2250)))
		assert.True(t, result.Account.PenaltyBilled.Equal(dec(2250)))
		assert.True(t, result.Account.UnbilledPenalty.IsZero())
		assert.Contains(t, f.publisher.EventTypes(), ledger.EventTypeChargeCreated)

		_, err = f.svc.BillPenalty(ctx, tenantID, record.ID)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		f.charges.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("draft contract cannot be billed", func(t *testing.T) {
		f := newCollectionsFixture(collectionsToday)
		contract := activeLease(t, tenantID, lease.ContractStatusDraft)
		record := openAccount(t, overdueCharge(t, tenantID, contract.ID, 300, shared.Date(2025, time.May, 1)), collectionsToday)
		_, err := record.AccruePenalty(collectionsToday)
		require.NoError(t, err)

		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		f.contracts.On("FindByIDForTenant", mock.Anything, tenantID, contract.ID).Return(contract, nil)

		_, err = f.svc.BillPenalty(ctx, tenantID, record.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		f.charges.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCollectionsService_Queries(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newCollectionsFixture(collectionsToday)

	t.Run("list rejects unknown bucket", func(t *testing.T) {
		_, _, err := f.svc.List(ctx, tenantID, AccountListFilter{Bucket: "OVERDUE_5_10"})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("list defaults to open records", func(t *testing.T) {
		bucket := ledger.AgingBucketOverdue31to60
		f.accounts.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(filter collections.AccountFilter) bool {
			return filter.OnlyOpen && filter.Bucket != nil && *filter.Bucket == bucket && filter.Page == 2
		})).Return([]collections.DelinquentAccount{}, int64(0), nil).Once()

		_, total, err := f.svc.List(ctx, tenantID, AccountListFilter{Bucket: "overdue_31_60", Page: 2})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("summary covers open records", func(t *testing.T) {
		a := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
		b := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 200, shared.Date(2025, time.June, 1)), collectionsToday)
		f.accounts.On("FindOpen", mock.Anything, tenantID).Return([]collections.DelinquentAccount{*a, *b}, nil).Once()

		summary, err := f.svc.Summary(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.AccountCount)
		assert.True(t, summary.TotalPending.Equal(dec(500)))
		assert.Equal(t, 2, summary.ByState[collections.CollectionStatePending])
	})

	t.Run("portfolio report orders by days overdue", func(t *testing.T) {
		recent := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 200, shared.Date(2025, time.June, 1)), collectionsToday)
		oldest := openAccount(t, overdueCharge(t, tenantID, uuid.New(), 300, shared.Date(2025, time.May, 1)), collectionsToday)
		call, err := collections.NewFollowUp(oldest, collections.FollowUpInput{
			ContactType: collections.ContactTypePhoneCall,
			ContactedAt: shared.Date(2025, time.June, 10),
			Description: "Promete pagar el viernes",
		})
		require.NoError(t, err)

		f.accounts.On("FindOpen", mock.Anything, tenantID).
			Return([]collections.DelinquentAccount{*recent, *oldest}, nil).Once()
		f.followUps.On("FindByAccount", mock.Anything, tenantID, recent.ID).Return([]collections.FollowUp{}, nil).Once()
		f.followUps.On("FindByAccount", mock.Anything, tenantID, oldest.ID).Return([]collections.FollowUp{*call}, nil).Once()

		report, err := f.svc.PortfolioReport(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, collectionsToday, report.GeneratedOn)
		assert.Equal(t, 2, report.Summary.AccountCount)
		assert.True(t, report.Summary.TotalPending.Equal(dec(500)))
		require.Len(t, report.Items, 2)
		assert.Equal(t, oldest.ID, report.Items[0].Account.ID)
		assert.Equal(t, 45, report.Items[0].Account.DaysOverdue)
		require.NotNil(t, report.Items[0].LastFollowUp)
		assert.Equal(t, "Promete pagar el viernes", report.Items[0].LastFollowUp.Description)
		assert.Equal(t, recent.ID, report.Items[1].Account.ID)
		assert.Nil(t, report.Items[1].LastFollowUp)
	})

	t.Run("due actions default to today", func(t *testing.T) {
		f.followUps.On("FindDueActions", mock.Anything, tenantID, collectionsToday).Return([]collections.FollowUp{}, nil).Once()
		actions, err := f.svc.DueActions(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, actions)
	})

	t.Run("follow-ups of an unknown record", func(t *testing.T) {
		missing := uuid.New()
		f.accounts.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound).Once()
		_, err := f.svc.FollowUps(ctx, tenantID, missing)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
