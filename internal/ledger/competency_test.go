package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, Period{Month: 3, Year: 2024}, PeriodOf(day(2024, time.March, 15)))
	assert.Equal(t, Period{Month: 12, Year: 2023}, PeriodOf(day(2023, time.December, 31)))
	assert.Equal(t, Period{Month: 1, Year: 2025}, PeriodOf(day(2025, time.January, 1)))
}

func TestPeriod_Next(t *testing.T) {
	tests := []struct {
		name string
		in   Period
		want Period
	}{
		{name: "mid year", in: Period{Month: 6, Year: 2024}, want: Period{Month: 7, Year: 2024}},
		{name: "november", in: Period{Month: 11, Year: 2024}, want: Period{Month: 12, Year: 2024}},
		{name: "year rollover", in: Period{Month: 12, Year: 2024}, want: Period{Month: 1, Year: 2025}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Next())
		})
	}
}

func TestPeriod_AdvanceStaysInRange(t *testing.T) {
	start := Period{Month: 9, Year: 2024}
	for i := 0; i < 60; i++ {
		p := start.Advance(i)
		assert.GreaterOrEqual(t, p.Month, 1)
		assert.LessOrEqual(t, p.Month, 12)
		assert.Equal(t, 2024+(8+i)/12, p.Year)
	}
}

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, Period{Month: 1, Year: 2024}.Validate())
	assert.NoError(t, Period{Month: 12, Year: 2024}.Validate())

	err := Period{Month: 0, Year: 2024}.Validate()
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "invalid_month", common.CodeOf(err))

	err = Period{Month: 13, Year: 2024}.Validate()
	assert.ErrorIs(t, err, common.ErrValidation)

	err = Period{Month: 5, Year: 0}.Validate()
	assert.Equal(t, "invalid_year", common.CodeOf(err))
}

func TestPeriod_DateOn(t *testing.T) {
	assert.Equal(t, day(2024, time.February, 29), Period{Month: 2, Year: 2024}.DateOn(31))
	assert.Equal(t, day(2023, time.February, 28), Period{Month: 2, Year: 2023}.DateOn(30))
	assert.Equal(t, day(2024, time.April, 30), Period{Month: 4, Year: 2024}.DateOn(31))
	assert.Equal(t, day(2024, time.May, 15), Period{Month: 5, Year: 2024}.DateOn(15))
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "03/2024", Period{Month: 3, Year: 2024}.String())
}
