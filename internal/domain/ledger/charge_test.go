package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestCharge(t *testing.T, amount string, due time.Time) *Charge {
	t.Helper()
	c, err := NewCharge(uuid.New(), ChargeInput{
		ContractID: uuid.New(),
		Type:       ChargeTypeRent,
		Concept:    "Renta Enero 2025",
		Amount:     dec(amount),
		ChargeDate: due,
		DueDate:    due,
	})
	require.NoError(t, err)
	return c
}

func TestDeriveChargeStatus(t *testing.T) {
	due := shared.Date(2025, time.January, 5)
	before := shared.Date(2025, time.January, 1)
	after := shared.Date(2025, time.January, 6)

	tests := []struct {
		name      string
		cancelled bool
		paid      string
		today     time.Time
		want      ChargeStatus
	}{
		{"cancelled wins", true, "0", after, ChargeStatusCancelled},
		{"fully paid", false, "100", after, ChargeStatusPaid},
		{"nothing paid before due", false, "0", before, ChargeStatusPending},
		{"nothing paid on due date", false, "0", due, ChargeStatusPending},
		{"nothing paid after due", false, "0", after, ChargeStatusOverdue},
		{"partial before due", false, "40", before, ChargeStatusPartial},
		{"partial on due date", false, "40", due, ChargeStatusPartial},
		{"partial after due", false, "40", after, ChargeStatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveChargeStatus(tt.cancelled, dec(tt.paid), dec("100"), due, tt.today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCharge_Validation(t *testing.T) {
	base := ChargeInput{
		ContractID: uuid.New(),
		Type:       ChargeTypeMaintenance,
		Concept:    "Reparación",
		Amount:     dec("500"),
		ChargeDate: shared.Date(2025, time.March, 1),
		DueDate:    shared.Date(2025, time.March, 10),
	}

	tests := []struct {
		name   string
		mutate func(*ChargeInput)
	}{
		{"zero amount", func(in *ChargeInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *ChargeInput) { in.Amount = dec("-1") }},
		{"amount rounding to zero", func(in *ChargeInput) { in.Amount = dec("0.004") }},
		{"due before charge date", func(in *ChargeInput) { in.DueDate = shared.Date(2025, time.February, 28) }},
		{"invalid type", func(in *ChargeInput) { in.Type = "FOO" }},
		{"empty concept", func(in *ChargeInput) { in.Concept = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewCharge(uuid.New(), in)
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}

	t.Run("valid", func(t *testing.T) {
		c, err := NewCharge(uuid.New(), base)
		require.NoError(t, err)
		assert.Equal(t, ChargeStatusPending, c.Status)
		assert.True(t, c.Pending().Equal(dec("500")))
		assert.False(t, c.FixedRecurring)
	})
}

func TestNewRecurringRentCharge(t *testing.T) {
	c, err := NewRecurringRentCharge(uuid.New(), ChargeInput{
		ContractID: uuid.New(),
		Type:       ChargeTypeOther,
		Concept:    RentConcept(2025, time.March),
		Amount:     dec("10000"),
		ChargeDate: shared.Date(2025, time.March, 5),
		DueDate:    shared.Date(2025, time.March, 10),
	}, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, ChargeTypeRent, c.Type)
	assert.True(t, c.FixedRecurring)
	assert.Equal(t, 3, *c.PeriodMonth)
	assert.Equal(t, 2025, *c.PeriodYear)
	assert.Equal(t, "Renta Marzo 2025", c.Concept)

	events := c.GetDomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*ChargeCreatedEvent)
	require.True(t, ok)
	assert.True(t, created.FixedRecurring)
}

func TestCharge_ApplyAndReverse(t *testing.T) {
	due := shared.Date(2025, time.January, 5)
	today := shared.Date(2025, time.January, 3)
	paymentID := uuid.New()

	c := createTestCharge(t, "100", due)
	require.NoError(t, c.ApplyPayment(paymentID, dec("60"), today))
	assert.Equal(t, ChargeStatusPartial, c.Status)
	assert.True(t, c.Pending().Equal(dec("40")))

	err := c.ApplyPayment(paymentID, dec("40.01"), today)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	require.NoError(t, c.ApplyPayment(paymentID, dec("40"), today))
	assert.Equal(t, ChargeStatusPaid, c.Status)
	assert.True(t, c.AmountPaid.Equal(c.AmountOriginal))

	err = c.ApplyPayment(paymentID, dec("1"), today)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, c.ReversePayment(paymentID, dec("100"), today))
	assert.Equal(t, ChargeStatusPending, c.Status)
	assert.True(t, c.AmountPaid.IsZero())

	err = c.ReversePayment(paymentID, dec("1"), today)
	assert.True(t, errors.Is(err, shared.ErrInvariantViolation))
}

func TestCharge_Cancel(t *testing.T) {
	due := shared.Date(2025, time.January, 5)

	t.Run("unpaid charge", func(t *testing.T) {
		c := createTestCharge(t, "100", due)
		require.NoError(t, c.Cancel("duplicated"))
		assert.Equal(t, ChargeStatusCancelled, c.Status)
		assert.NotNil(t, c.CancelledAt)
		assert.True(t, errors.Is(c.Cancel(""), shared.ErrInvalidState))
	})

	t.Run("charge with payments", func(t *testing.T) {
		c := createTestCharge(t, "100", due)
		require.NoError(t, c.ApplyPayment(uuid.New(), dec("1"), due))
		err := c.Cancel("")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, ChargeStatusPartial, c.Status)
	})
}

func TestCharge_MarkOverdue(t *testing.T) {
	due := shared.Date(2025, time.January, 5)
	c := createTestCharge(t, "100", due)
	c.ClearDomainEvents()

	assert.False(t, c.MarkOverdue(due))
	assert.True(t, c.MarkOverdue(due.AddDate(0, 0, 1)))
	assert.Equal(t, ChargeStatusOverdue, c.Status)
	assert.True(t, c.AmountPaid.IsZero())
	assert.False(t, c.MarkOverdue(due.AddDate(0, 0, 2)))

	events := c.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeChargeOverdue, events[0].EventType())

	require.NoError(t, c.ApplyPayment(uuid.New(), dec("100"), due.AddDate(0, 0, 3)))
	assert.Equal(t, ChargeStatusPaid, c.Status)
}

func TestRentSchedule(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      time.Month
		paymentDay int
		grace      int
		wantCharge time.Time
		wantDue    time.Time
	}{
		{"regular month", 2025, time.March, 5, 5, shared.Date(2025, time.March, 5), shared.Date(2025, time.March, 10)},
		{"day 31 in february", 2025, time.February, 31, 0, shared.Date(2025, time.February, 28), shared.Date(2025, time.February, 28)},
		{"leap february", 2024, time.February, 30, 3, shared.Date(2024, time.February, 29), shared.Date(2024, time.March, 3)},
		{"grace crosses year", 2025, time.December, 30, 5, shared.Date(2025, time.December, 30), shared.Date(2026, time.January, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge, due := RentSchedule(tt.year, tt.month, tt.paymentDay, tt.grace)
			assert.Equal(t, tt.wantCharge, charge)
			assert.Equal(t, tt.wantDue, due)
		})
	}
}

func TestRentConcept(t *testing.T) {
	assert.Equal(t, "Renta Enero 2025", RentConcept(2025, time.January))
	assert.Equal(t, "Renta Septiembre 2026", RentConcept(2026, time.September))
}
