package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormChargeRepository_CreateRecurring(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID, contractID := uuid.New(), uuid.New()

	rent := func() *ledger.Charge {
		c, err := ledger.NewRecurringRentCharge(tenantID, ledger.ChargeInput{
			ContractID: contractID,
			Concept:    "Renta Junio 2025",
			Amount:     decimalFromInt(12000),
			ChargeDate: shared.Date(2025, time.June, 1),
			DueDate:    shared.Date(2025, time.June, 10),
		}, 2025, time.June)
		require.NoError(t, err)
		return c
	}

	t.Run("inserts the first charge of a period", func(t *testing.T) {
		created, err := repo.CreateRecurring(ctx, rent())
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("skips a second charge for the same period", func(t *testing.T) {
		created, err := repo.CreateRecurring(ctx, rent())
		require.NoError(t, err)
		assert.False(t, created)

		count, err := repo.CountByContract(ctx, tenantID, contractID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reports the existing period", func(t *testing.T) {
		exists, err := repo.ExistsRecurring(ctx, tenantID, contractID, ledger.ChargeTypeRent, 2025, 6)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsRecurring(ctx, tenantID, contractID, ledger.ChargeTypeRent, 2025, 7)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("rejects ad-hoc charges", func(t *testing.T) {
		_, err := repo.CreateRecurring(ctx, newTestCharge(t, tenantID, contractID, "Luz", 300, testToday))
		assert.Error(t, err)
	})

	t.Run("ad-hoc charges are not limited per period", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestCharge(t, tenantID, contractID, "Agua", 150, testToday)))
		require.NoError(t, repo.Save(ctx, newTestCharge(t, tenantID, contractID, "Agua", 150, testToday)))

		count, err := repo.CountByContract(ctx, tenantID, contractID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormChargeRepository_SaveWithLock(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID, contractID := uuid.New(), uuid.New()

	charge := newTestCharge(t, tenantID, contractID, "Renta Mayo 2025", 1000, shared.Date(2025, time.May, 10))
	require.NoError(t, repo.Save(ctx, charge))

	first, err := repo.FindByIDForTenant(ctx, tenantID, charge.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, charge.ID)
	require.NoError(t, err)

	require.NoError(t, first.ApplyPayment(uuid.New(), decimalFromInt(400), testToday))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.ApplyPayment(uuid.New(), decimalFromInt(300), testToday))
	err = repo.SaveWithLock(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	stored, err := repo.FindByIDForTenant(ctx, tenantID, charge.ID)
	require.NoError(t, err)
	decimalEqual(t, 400, stored.AmountPaid)
	assert.Equal(t, first.Version, stored.Version)

	t.Run("a saved aggregate can be saved again", func(t *testing.T) {
		require.NoError(t, first.ApplyPayment(uuid.New(), decimalFromInt(100), testToday))
		require.NoError(t, repo.SaveWithLock(ctx, first))
	})
}

func TestGormChargeRepository_FindOutstandingByContract(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID, contractID := uuid.New(), uuid.New()

	late := newTestCharge(t, tenantID, contractID, "Renta Abril", 1000, shared.Date(2025, time.April, 10))
	later := newTestCharge(t, tenantID, contractID, "Renta Mayo", 1000, shared.Date(2025, time.May, 10))
	paid := newTestCharge(t, tenantID, contractID, "Renta Marzo", 1000, shared.Date(2025, time.March, 10))
	require.NoError(t, paid.ApplyPayment(uuid.New(), decimalFromInt(1000), testToday))
	cancelled := newTestCharge(t, tenantID, contractID, "Renta Febrero", 1000, shared.Date(2025, time.February, 10))
	require.NoError(t, cancelled.Cancel("duplicated"))
	other := newTestCharge(t, tenantID, uuid.New(), "Renta Abril", 1000, shared.Date(2025, time.April, 10))

	for _, c := range []*ledger.Charge{later, paid, late, cancelled, other} {
		require.NoError(t, repo.Save(ctx, c))
	}

	charges, err := repo.FindOutstandingByContract(ctx, tenantID, contractID)
	require.NoError(t, err)
	require.Len(t, charges, 2)
	assert.Equal(t, late.ID, charges[0].ID)
	assert.Equal(t, later.ID, charges[1].ID)
}

func TestGormChargeRepository_FindByIDForTenant(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	charge := newTestCharge(t, tenantID, uuid.New(), "Renta", 500, testToday)
	require.NoError(t, repo.Save(ctx, charge))

	t.Run("other tenants cannot see the charge", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), charge.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("finds by ids and skips unknown ones", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, tenantID, []uuid.UUID{charge.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Renta", found[0].Concept)
		decimalEqual(t, 500, found[0].AmountOriginal)
	})
}

func TestGormChargeRepository_FindAllForTenant_Search(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID, contractID := uuid.New(), uuid.New()

	require.NoError(t, repo.Save(ctx, newTestCharge(t, tenantID, contractID, "Renta junio 2025", 500, testToday)))
	require.NoError(t, repo.Save(ctx, newTestCharge(t, tenantID, contractID, "Mantenimiento", 80, testToday)))

	filter := ledger.ChargeFilter{Filter: shared.DefaultFilter()}
	filter.Search = "RENTA"
	charges, total, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, charges, 1)
	assert.Equal(t, "Renta junio 2025", charges[0].Concept)
}

func TestGormChargeRepository_FindRecurringDue(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	rent := func(contractID uuid.UUID, month time.Month) *ledger.Charge {
		c, err := ledger.NewRecurringRentCharge(tenantID, ledger.ChargeInput{
			ContractID: contractID,
			Concept:    ledger.RentConcept(2025, month),
			Amount:     decimalFromInt(1000),
			ChargeDate: shared.Date(2025, month, 1),
			DueDate:    shared.Date(2025, month, 5),
		}, 2025, month)
		require.NoError(t, err)
		created, err := repo.CreateRecurring(ctx, c)
		require.NoError(t, err)
		require.True(t, created)
		return c
	}

	june := rent(uuid.New(), time.June)
	cancelled := rent(uuid.New(), time.June)
	require.NoError(t, cancelled.Cancel("duplicated"))
	require.NoError(t, repo.SaveWithLock(ctx, cancelled))
	rent(uuid.New(), time.July)
	require.NoError(t, repo.Save(ctx, newTestCharge(t, tenantID, uuid.New(), "Reparación", 300, shared.Date(2025, time.June, 10))))

	charges, err := repo.FindRecurringDue(ctx, tenantID, shared.Date(2025, time.June, 1), shared.Date(2025, time.June, 30))
	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, june.ID, charges[0].ID)
}
