// Package money parses and formats monetary amounts.
//
// Incoming text arrives in one of two conventions: already-normalized
// decimal-point form (structured oracle output, direct commands) or free-form
// Brazilian text where "." and "," can each be a thousands or a decimal
// separator. Amounts are held as exact decimals; binary floats only appear at
// the store row boundary.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount reports input that does not reduce to a positive decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses an amount that is expected to already use a decimal
// point, tolerating a decimal comma, currency symbols and stray characters.
// Thousands separators are NOT handled here; use ParseFlexible for free-form
// input. The result must be strictly positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	s = keepDigitsAndPoints(s)

	return parsePositive(raw, s)
}

// ParseFlexible parses a free-form amount using the Brazilian-format
// heuristic: a comma is always the decimal separator and points are thousands
// separators ("1.750,50" -> 1750.50). Without a comma, a point followed by at
// most two digits is a decimal separator ("750.50"), otherwise all points are
// thousands separators ("1.500" -> 1500).
//
// Known limitation: "750.000" is indistinguishable from "750 point zero zero
// zero" and parses as 750000. Resolving that needs product guidance, not a
// smarter heuristic.
func ParseFlexible(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		parts := strings.Split(s, ".")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			// American-style decimal, keep as is.
		} else {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	s = keepDigitsAndPoints(s)

	return parsePositive(raw, s)
}

func parsePositive(raw, cleaned string) (decimal.Decimal, error) {
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, raw)
	}
	return d, nil
}

func keepDigitsAndPoints(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatBRL renders an amount in Brazilian currency format, e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + fracPart
	if neg {
		out = "R$ -" + strings.Join(groups, ".") + "," + fracPart
	}
	return out
}
