package core

// Amounts are kept as decimals end to end; conversion to a float happens only when
// the value is encoded for the finance API.

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormDateLayout is the layout used by <input type="date">.
const FormDateLayout = "2006-01-02"

// ParseDecimal parses a user-entered number, accepting both dot (12.34) and
// comma (12,34) decimal separators.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmount parses a transaction amount and returns its absolute value.
//
// Examples:
//
//	ParseAmount("50")    -> 50
//	ParseAmount("-50")   -> 50
//	ParseAmount("12,30") -> 12.3
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Abs(), nil
}

// ParseBalance parses an account balance. Negative balances are allowed.
func ParseBalance(s string) (decimal.Decimal, error) {
	return ParseDecimal(s)
}

// ParseFormDate parses a YYYY-MM-DD value as midnight in now's location; empty
// input yields now.
func ParseFormDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(FormDateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDisplayDate formats t with layout, returning "" for the zero time.
func FormatDisplayDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(layout)
}

// FormatMoney renders an amount with two decimals followed by the currency code.
func FormatMoney(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
