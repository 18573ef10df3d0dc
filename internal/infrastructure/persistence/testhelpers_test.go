package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB opens a private in-memory SQLite database with every
// ledger table plus the read-only party registries.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, db.AutoMigrate(&models.PropertyModel{}, &models.PersonModel{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestCharge(t *testing.T, tenantID, contractID uuid.UUID, concept string, amount int64, due time.Time) *ledger.Charge {
	t.Helper()
	c, err := ledger.NewCharge(tenantID, ledger.ChargeInput{
		ContractID: contractID,
		Type:       ledger.ChargeTypeRent,
		Concept:    concept,
		Amount:     decimal.NewFromInt(amount),
		ChargeDate: due.AddDate(0, 0, -10),
		DueDate:    due,
	})
	require.NoError(t, err)
	return c
}

func newTestPayment(t *testing.T, tenantID, contractID uuid.UUID, receipt string, amount int64, day time.Time) *ledger.Payment {
	t.Helper()
	p, err := ledger.NewPayment(tenantID, receipt, ledger.PaymentInput{
		ContractID:  contractID,
		PersonID:    uuid.New(),
		Amount:      decimal.NewFromInt(amount),
		Type:        ledger.PaymentTypeTransfer,
		PaymentDate: day,
	})
	require.NoError(t, err)
	return p
}

func decimalEqual(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.NewFromInt(expected).Equal(actual), "expected %d, got %s", expected, actual)
}

var testToday = shared.Date(2025, time.June, 15)

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
