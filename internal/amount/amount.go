// Package amount converts money between what people type, what the engine
// computes with and what gets displayed.
package amount

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency, or an unknown one, is configured.
const DefaultCurrency = money.USD

// Parse reads an amount typed by a user. Everything but digits and the first
// decimal point is dropped and at most two fractional digits are kept, so
// "$1,234.567" reads as 1234.56. Input without any digits reads as zero.
// Parse never returns a negative amount.
func Parse(s string) decimal.Decimal {
	var intPart, fracPart strings.Builder
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if !seenPoint {
				intPart.WriteRune(r)
			} else if fracPart.Len() < 2 {
				fracPart.WriteRune(r)
			}
		case r == '.':
			if seenPoint {
				// Anything after a second point is ignored.
				return build(intPart.String(), fracPart.String())
			}
			seenPoint = true
		}
	}
	return build(intPart.String(), fracPart.String())
}

func build(intPart, fracPart string) decimal.Decimal {
	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		intPart += "." + fracPart
	}
	v, err := decimal.NewFromString(intPart)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Round rounds an amount half away from zero to the currency's minor unit.
func Round(v decimal.Decimal, currency string) decimal.Decimal {
	return v.Round(int32(lookup(currency).Fraction))
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Format renders an amount for display, e.g. "$1,234.50" in USD.
// This is the only place where computed amounts are rounded.
func Format(v decimal.Decimal, currency string) string {
	cur := lookup(currency)
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	if minor.LessThan(minMinor) || minor.GreaterThan(maxMinor) {
		return formatDigits(minor, cur)
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

// formatDigits lays out an amount in minor units that does not fit an int64
// with the currency's template and separators.
func formatDigits(minor decimal.Decimal, cur *money.Currency) string {
	digits := minor.Abs().String()
	if len(digits) <= cur.Fraction {
		digits = strings.Repeat("0", cur.Fraction-len(digits)+1) + digits
	}
	if cur.Thousand != "" {
		for i := len(digits) - cur.Fraction - 3; i > 0; i -= 3 {
			digits = digits[:i] + cur.Thousand + digits[i:]
		}
	}
	if cur.Fraction > 0 {
		digits = digits[:len(digits)-cur.Fraction] + cur.Decimal + digits[len(digits)-cur.Fraction:]
	}
	out := strings.Replace(cur.Template, "1", digits, 1)
	out = strings.Replace(out, "$", cur.Grapheme, 1)
	if minor.IsNegative() {
		out = "-" + out
	}
	return out
}

// Valid reports whether the currency code is known.
func Valid(currency string) bool {
	return money.GetCurrency(strings.ToUpper(currency)) != nil
}

func lookup(currency string) *money.Currency {
	if cur := money.GetCurrency(strings.ToUpper(currency)); cur != nil {
		return cur
	}
	return money.GetCurrency(DefaultCurrency)
}
