package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPayment(t *testing.T, amount string) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), FormatReceiptNumber(1), PaymentInput{
		ContractID:  uuid.New(),
		PersonID:    uuid.New(),
		Amount:      dec(amount),
		Type:        PaymentTypeTransfer,
		PaymentDate: shared.Date(2025, time.January, 10),
		Reference:   "SPEI-123",
	})
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	p := createTestPayment(t, "150")
	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.Equal(t, "REC-000001", p.ReceiptNumber)
	assert.True(t, p.Available().Equal(dec("150")))

	tests := []struct {
		name string
		in   PaymentInput
	}{
		{"zero amount", PaymentInput{ContractID: uuid.New(), PersonID: uuid.New(), Amount: dec("0"), Type: PaymentTypeCash, PaymentDate: time.Now()}},
		{"invalid type", PaymentInput{ContractID: uuid.New(), PersonID: uuid.New(), Amount: dec("1"), Type: "BITCOIN", PaymentDate: time.Now()}},
		{"check without number", PaymentInput{ContractID: uuid.New(), PersonID: uuid.New(), Amount: dec("1"), Type: PaymentTypeCheck, PaymentDate: time.Now()}},
		{"missing payer", PaymentInput{ContractID: uuid.New(), Amount: dec("1"), Type: PaymentTypeCash, PaymentDate: time.Now()}},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewPayment(uuid.New(), "REC-000002", tt.in)
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}
}

func TestPayment_RecordApplication(t *testing.T) {
	p := createTestPayment(t, "150")

	require.NoError(t, p.RecordApplication(dec("100")))
	assert.Equal(t, PaymentStatusPartial, p.Status)
	assert.True(t, p.Available().Equal(dec("50")))

	err := p.RecordApplication(dec("50.01"))
	assert.True(t, errors.Is(err, shared.ErrValidation))

	require.NoError(t, p.RecordApplication(dec("50")))
	assert.Equal(t, PaymentStatusApplied, p.Status)
	assert.NotNil(t, p.AppliedAt)

	err = p.RecordApplication(dec("1"))
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestPayment_Cancel(t *testing.T) {
	p := createTestPayment(t, "200")
	require.NoError(t, p.RecordApplication(dec("200")))
	p.ClearDomainEvents()

	require.NoError(t, p.Cancel("wrong contract"))
	assert.Equal(t, PaymentStatusCancelled, p.Status)
	assert.True(t, p.AmountApplied.IsZero())
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypePaymentCancelled, p.GetDomainEvents()[0].EventType())

	assert.True(t, errors.Is(p.Cancel(""), shared.ErrInvalidState))
}

func TestPayment_Reject(t *testing.T) {
	t.Run("pending payment", func(t *testing.T) {
		p := createTestPayment(t, "100")
		require.NoError(t, p.Reject("check bounced"))
		assert.Equal(t, PaymentStatusRejected, p.Status)
		assert.Equal(t, "check bounced", p.RejectionReason)
	})

	t.Run("applied payment", func(t *testing.T) {
		p := createTestPayment(t, "100")
		require.NoError(t, p.RecordApplication(dec("10")))
		assert.True(t, errors.Is(p.Reject("bounced"), shared.ErrInvalidState))
	})

	t.Run("requires reason", func(t *testing.T) {
		p := createTestPayment(t, "100")
		assert.True(t, errors.Is(p.Reject(""), shared.ErrValidation))
	})
}

func TestPaymentApplication_MarkReversed(t *testing.T) {
	app := NewPaymentApplication(uuid.New(), uuid.New(), uuid.New(), dec("25"))
	assert.True(t, app.IsLive())
	require.NoError(t, app.MarkReversed())
	assert.False(t, app.IsLive())
	assert.True(t, errors.Is(app.MarkReversed(), shared.ErrInvalidState))
}
