package ledger

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// Period is a competency period: the month and year an entry is reported under.
type Period struct {
	Month int
	Year  int
}

// PeriodOf returns the competency period of a calendar date, read from the date's own
// calendar fields.
func PeriodOf(date time.Time) Period {
	return Period{Month: int(date.Month()), Year: date.Year()}
}

// Next returns the following period, rolling over into January of the next year.
func (p Period) Next() Period {
	p.Month++
	if p.Month > 12 {
		p.Month = 1
		p.Year++
	}
	return p
}

// Advance applies Next n times.
func (p Period) Advance(n int) Period {
	for i := 0; i < n; i++ {
		p = p.Next()
	}
	return p
}

// Validate rejects months outside 1-12 and non-positive years.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return common.NewValidationError("invalid_month", "month must be between 1 and 12, got %d", p.Month)
	}
	if p.Year < 1 {
		return common.NewValidationError("invalid_year", "year must be positive, got %d", p.Year)
	}
	return nil
}

// Contains reports whether the given competency month/year falls in p.
func (p Period) Contains(month, year int) bool {
	return p.Month == month && p.Year == year
}

// DateOn returns the given day of the period. Days past the end of the month are clamped
// to its last day, so the 31st of a 30-day month becomes the 30th.
func (p Period) DateOn(day int) time.Time {
	if last := daysIn(p.Year, p.Month); day > last {
		day = last
	}
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

func daysIn(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
