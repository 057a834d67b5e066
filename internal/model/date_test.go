package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("31/01/2024")
	assert.Error(t, err)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestCivilDateKeepsCalendarFields(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	late := time.Date(2024, time.March, 31, 23, 30, 0, 0, loc)

	got := CivilDate(late)
	assert.Equal(t, "2024-03-31", FormatDate(got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TypeIncome.Valid())
	assert.False(t, TransactionType("entrada").Valid())
	assert.True(t, PaymentPix.Valid())
	assert.False(t, PaymentMethod("cheque").Valid())
	assert.True(t, CardKindDebit.Valid())
	assert.False(t, CardKind("prepaid").Valid())
	assert.True(t, BrandElo.Valid())
	assert.False(t, CardBrand("diners").Valid())
}

func TestTransactionFilterHasPeriod(t *testing.T) {
	assert.False(t, TransactionFilter{Month: 3}.HasPeriod())
	assert.False(t, TransactionFilter{Year: 2024}.HasPeriod())
	assert.True(t, TransactionFilter{Month: 3, Year: 2024}.HasPeriod())
}
