// Package domain holds the canonical financial record and its validation
// rules. A FinancialRecord only exists in validated form: the constructor
// either returns a record honoring every invariant or a ValidationError.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/money"
)

// Kind is the polarity of a record: money received or money paid.
type Kind string

const (
	KindInflow  Kind = "inflow"
	KindOutflow Kind = "outflow"
)

const (
	maxDescriptionLen = 200
	maxCategoryLen    = 50

	// DefaultDescription is used when a direct command carries no description.
	DefaultDescription = "no description"

	// DefaultDateExpression resolves to the current date in the reference timezone.
	DefaultDateExpression = "today"
)

// ParseKind normalizes a kind string to its canonical form.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindInflow):
		return KindInflow, true
	case string(KindOutflow):
		return KindOutflow, true
	}
	return "", false
}

// FinancialRecord is a validated financial statement. It is immutable after
// construction; the date expression stays raw because resolving it needs a
// reference timezone this layer does not own.
type FinancialRecord struct {
	Kind           Kind
	Amount         decimal.Decimal
	Description    string
	Category       string
	DateExpression string
}

// NewRecord validates the tentative fields and builds a FinancialRecord.
// Rules are applied in order: kind, amount, description non-empty,
// description not purely numeric, category cap, date default.
func NewRecord(kind, amount, description, category, dateExpr string) (FinancialRecord, error) {
	k, ok := ParseKind(kind)
	if !ok {
		return FinancialRecord{}, &ValidationError{
			Field:  "kind",
			Reason: "must be 'inflow' or 'outflow', got '" + kind + "'",
		}
	}

	amt, err := money.ParseAmount(amount)
	if err != nil {
		return FinancialRecord{}, &ValidationError{
			Field:  "amount",
			Reason: "must be a positive number, got '" + amount + "'",
			cause:  err,
		}
	}

	return newValidated(k, amt, description, category, dateExpr)
}

// NewRecordFromAmount is NewRecord for callers that already hold an exact
// decimal (oracle extractors do their own locale disambiguation first).
func NewRecordFromAmount(kind string, amount decimal.Decimal, description, category, dateExpr string) (FinancialRecord, error) {
	k, ok := ParseKind(kind)
	if !ok {
		return FinancialRecord{}, &ValidationError{
			Field:  "kind",
			Reason: "must be 'inflow' or 'outflow', got '" + kind + "'",
		}
	}

	if !amount.IsPositive() {
		return FinancialRecord{}, &ValidationError{
			Field:  "amount",
			Reason: "must be greater than zero",
		}
	}

	return newValidated(k, amount, description, category, dateExpr)
}

func newValidated(k Kind, amt decimal.Decimal, description, category, dateExpr string) (FinancialRecord, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return FinancialRecord{}, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if len([]rune(desc)) > maxDescriptionLen {
		return FinancialRecord{}, &ValidationError{Field: "description", Reason: "must be at most 200 characters"}
	}
	if isPurelyNumeric(desc) {
		// A numeric-only description is indistinguishable from a stray amount.
		return FinancialRecord{}, &ValidationError{Field: "description", Reason: "must contain text, not only numbers"}
	}

	cat := strings.TrimSpace(category)
	if len([]rune(cat)) > maxCategoryLen {
		cat = string([]rune(cat)[:maxCategoryLen])
	}

	date := strings.TrimSpace(dateExpr)
	if date == "" {
		date = DefaultDateExpression
	}

	return FinancialRecord{
		Kind:           k,
		Amount:         amt,
		Description:    desc,
		Category:       cat,
		DateExpression: date,
	}, nil
}

// isPurelyNumeric reports whether s contains only digits once spaces and
// decimal separators are ignored.
func isPurelyNumeric(s string) bool {
	seen := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seen = true
		case r == '.' || r == ',' || r == ' ':
		default:
			return false
		}
	}
	return seen
}
