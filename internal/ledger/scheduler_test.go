package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func TestBuildSchedule_ClampsToMonthEnd(t *testing.T) {
	date := day(2024, time.January, 31)

	schedule, err := BuildSchedule("txn-1", dec("300.00"), 3, date)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	wantDue := []time.Time{
		day(2024, time.January, 31),
		day(2024, time.February, 29),
		day(2024, time.March, 31),
	}
	for i, inst := range schedule {
		assert.Equal(t, "txn-1", inst.TransactionID)
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, i+1, inst.CompetencyMonth)
		assert.Equal(t, 2024, inst.CompetencyYear)
		assert.Equal(t, wantDue[i], inst.DueDate)
		assert.True(t, dec("100").Equal(inst.Amount))
	}
}

func TestBuildSchedule_FirstInstallmentPaid(t *testing.T) {
	date := day(2024, time.March, 10)

	schedule, err := BuildSchedule("txn-1", dec("100.00"), 3, date)
	require.NoError(t, err)

	first := schedule[0]
	assert.True(t, first.Paid)
	require.NotNil(t, first.PaidAt)
	assert.Equal(t, date, *first.PaidAt)

	for _, inst := range schedule[1:] {
		assert.False(t, inst.Paid)
		assert.Nil(t, inst.PaidAt)
	}
}

func TestBuildSchedule_YearRollover(t *testing.T) {
	schedule, err := BuildSchedule("txn-1", dec("1200.00"), 12, day(2024, time.November, 5))
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	start := Period{Month: 11, Year: 2024}
	sum := decimal.Zero
	for i, inst := range schedule {
		want := start.Advance(i)
		assert.Equal(t, want.Month, inst.CompetencyMonth, "installment %d", i+1)
		assert.Equal(t, want.Year, inst.CompetencyYear, "installment %d", i+1)
		assert.Equal(t, 5, inst.DueDate.Day())
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, dec("1200.00").Equal(sum))
	assert.Equal(t, day(2025, time.October, 5), schedule[11].DueDate)
}

func TestBuildSchedule_AmountsSumToTotal(t *testing.T) {
	schedule, err := BuildSchedule("txn-1", dec("100.00"), 3, day(2024, time.June, 1))
	require.NoError(t, err)

	want := []string{"33.33", "33.33", "33.34"}
	for i, inst := range schedule {
		assert.True(t, dec(want[i]).Equal(inst.Amount))
	}
}

func TestBuildSchedule_SinglePayment(t *testing.T) {
	schedule, err := BuildSchedule("txn-1", dec("50.00"), 1, day(2024, time.June, 1))
	require.NoError(t, err)
	assert.Empty(t, schedule)
}

func TestBuildSchedule_RejectsUnsplittableTotal(t *testing.T) {
	_, err := BuildSchedule("txn-1", dec("0.01"), 3, day(2024, time.June, 1))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBuildSchedule_StripsTimeOfDay(t *testing.T) {
	date := time.Date(2024, time.June, 1, 18, 30, 0, 0, time.UTC)

	schedule, err := BuildSchedule("txn-1", dec("20.00"), 2, date)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.June, 1), *schedule[0].PaidAt)
	assert.Equal(t, day(2024, time.July, 1), schedule[1].DueDate)
}
