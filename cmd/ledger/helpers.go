package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: use digits with an optional decimal point", s)
	}
	return d, nil
}

func parseOptionalAmount(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means today.
func parseDateFlag(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return model.CivilDate(now), nil
	}
	return model.ParseDate(strings.TrimSpace(s))
}

// periodFlags reads --month and --year, defaulting to the current period.
func periodFlags(cmd *cobra.Command, now time.Time) (int, int, error) {
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	return month, year, nil
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().Int("month", 0, "competency month (default: current month)")
	cmd.Flags().Int("year", 0, "competency year (default: current year)")
}

func parseTransactionType(s string) (model.TransactionType, error) {
	t := model.TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if t != "" && !t.Valid() {
		return "", fmt.Errorf("invalid type %q: must be income or expense", s)
	}
	return t, nil
}

// defaultPaymentMethod picks a payment method from the card used, if any.
func defaultPaymentMethod(card *model.Card) model.PaymentMethod {
	switch {
	case card == nil:
		return model.PaymentCash
	case card.Kind == model.CardKindCredit:
		return model.PaymentCreditCard
	default:
		return model.PaymentDebitCard
	}
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
