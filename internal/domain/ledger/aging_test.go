package ledger

import (
	"testing"
	"time"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucket
	}{
		{0, AgingBucketCurrent},
		{1, AgingBucketOverdue1to30},
		{30, AgingBucketOverdue1to30},
		{31, AgingBucketOverdue31to60},
		{60, AgingBucketOverdue31to60},
		{61, AgingBucketOverdue61to90},
		{90, AgingBucketOverdue61to90},
		{91, AgingBucketOverdue90Plus},
		{400, AgingBucketOverdue90Plus},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.days), "days=%d", tt.days)
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	asOf := shared.Date(2025, time.March, 31)
	assert.Equal(t, 30, DaysOverdue(shared.Date(2025, time.March, 1), asOf))
	assert.Equal(t, 31, DaysOverdue(shared.Date(2025, time.February, 28), asOf))
	assert.Equal(t, 0, DaysOverdue(asOf, asOf))
	assert.Equal(t, 0, DaysOverdue(shared.Date(2025, time.April, 10), asOf))

	t.Run("due 30 days before is 1_30 and 31 days before is 31_60", func(t *testing.T) {
		assert.Equal(t, AgingBucketOverdue1to30, BucketFor(DaysOverdue(asOf.AddDate(0, 0, -30), asOf)))
		assert.Equal(t, AgingBucketOverdue31to60, BucketFor(DaysOverdue(asOf.AddDate(0, 0, -31), asOf)))
	})
}

func TestSummarize(t *testing.T) {
	asOf := shared.Date(2025, time.April, 30)

	current := createTestCharge(t, "100", shared.Date(2025, time.May, 5))
	late10 := createTestCharge(t, "200", asOf.AddDate(0, 0, -10))
	late45 := createTestCharge(t, "300", asOf.AddDate(0, 0, -45))
	partial := createTestCharge(t, "400", asOf.AddDate(0, 0, -100))
	require.NoError(t, partial.ApplyPayment(shared.NewID(), dec("150"), asOf))
	paid := createTestCharge(t, "500", asOf.AddDate(0, 0, -20))
	require.NoError(t, paid.ApplyPayment(shared.NewID(), dec("500"), asOf))
	cancelled := createTestCharge(t, "600", asOf.AddDate(0, 0, -20))
	require.NoError(t, cancelled.Cancel(""))

	charges := []Charge{*current, *late10, *late45, *partial, *paid, *cancelled, *late10}
	s := Summarize(charges, asOf)

	assert.Equal(t, asOf, s.AsOf)
	assert.Equal(t, 4, s.TotalCount)
	assert.True(t, s.TotalAmount.Equal(dec("850")), s.TotalAmount.String())

	assert.True(t, s.Bucket(AgingBucketCurrent).Amount.Equal(dec("100")))
	assert.Equal(t, 1, s.Bucket(AgingBucketOverdue1to30).Count)
	assert.True(t, s.Bucket(AgingBucketOverdue1to30).Amount.Equal(dec("200")))
	assert.True(t, s.Bucket(AgingBucketOverdue31to60).Amount.Equal(dec("300")))
	assert.Equal(t, 0, s.Bucket(AgingBucketOverdue61to90).Count)
	assert.True(t, s.Bucket(AgingBucketOverdue90Plus).Amount.Equal(dec("250")))
	assert.True(t, s.OverdueAmount().Equal(dec("750")))
}

func TestSummarizeByContract(t *testing.T) {
	asOf := shared.Date(2025, time.April, 30)
	a1 := createTestCharge(t, "100", asOf.AddDate(0, 0, -5))
	a2 := createTestCharge(t, "50", asOf.AddDate(0, 0, -40))
	a2.ContractID = a1.ContractID
	b1 := createTestCharge(t, "70", asOf.AddDate(0, 0, -95))

	rows := SummarizeByContract([]Charge{*a1, *b1, *a2}, asOf)
	require.Len(t, rows, 2)
	assert.Equal(t, a1.ContractID, rows[0].ContractID)
	assert.True(t, rows[0].Summary.TotalAmount.Equal(dec("150")))
	assert.Equal(t, b1.ContractID, rows[1].ContractID)
	assert.True(t, rows[1].Summary.Bucket(AgingBucketOverdue90Plus).Amount.Equal(dec("70")))
}
