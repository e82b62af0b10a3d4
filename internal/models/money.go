package models

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotNumeric  = errors.New("amount is not a decimal number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount cannot have more than two decimal places")

	// Plain decimal notation only: no sign other than '+', no exponent, no separators.
	decimalPattern = regexp.MustCompile(`^\+?(\d+(\.\d+)?|\.\d+)$`)
)

// ParseAmount parses a user-entered currency amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !decimalPattern.MatchString(raw) {
		return decimal.Zero, ErrAmountNotNumeric
	}

	raw = strings.TrimPrefix(raw, "+")
	if strings.HasPrefix(raw, ".") {
		raw = "0" + raw
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountNotNumeric
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return decimal.Zero, ErrAmountPrecision
	}

	return amount, nil
}

// FormatUSD renders an amount as $1,234.50.
func FormatUSD(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// ShortID renders the trailing eight characters of an account id, upper-cased.
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "···" + strings.ToUpper(id)
}
