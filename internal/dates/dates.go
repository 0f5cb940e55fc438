// Package dates resolves user-supplied date expressions against a reference
// timezone and owns the month-label convention used to name ledger
// partitions.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultTimezone is the reference timezone when none is configured.
const DefaultTimezone = "America/Sao_Paulo"

// MonthLabelLayout is the partition naming convention, YYYY-MM.
const MonthLabelLayout = "2006-01"

var (
	fallbackLayouts = []string{"02/01/2006", "02-01-2006", "2006/01/02"}

	monthLabelRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	monthSlashRe = regexp.MustCompile(`^\d{1,2}/\d{4}$`)
	yearOnlyRe   = regexp.MustCompile(`^\d{4}$`)
)

// InvalidDateError reports an unparseable date expression.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: use 'today', 'yesterday', YYYY-MM-DD, DD/MM/YYYY, DD-MM-YYYY or YYYY/MM/DD", e.Input)
}

// Resolver maps date expressions to concrete calendar dates. The zero value
// is unusable; build one with NewResolver.
type Resolver struct {
	loc *time.Location
	now func() time.Time // overridable in tests
}

// NewResolver builds a Resolver for the named timezone.
func NewResolver(timezone string) (*Resolver, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Resolver{loc: loc, now: time.Now}, nil
}

// NewResolverWithClock is NewResolver with an injectable clock, for tests and
// callers that need deterministic time.
func NewResolverWithClock(timezone string, now func() time.Time) (*Resolver, error) {
	r, err := NewResolver(timezone)
	if err != nil {
		return nil, err
	}
	if now != nil {
		r.now = now
	}
	return r, nil
}

// Today returns the current date in the reference timezone. Computed fresh on
// every call so a long-running process rolls over months without restart.
func (r *Resolver) Today() civil.Date {
	return civil.DateOf(r.Now())
}

// Now returns the current instant localized to the reference timezone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Resolve maps a date expression to a calendar date. "today" and "yesterday"
// are matched case-insensitively; everything else tries strict ISO first and
// then the common locale layouts.
func (r *Resolver) Resolve(expr string) (civil.Date, error) {
	s := strings.TrimSpace(expr)

	switch strings.ToLower(s) {
	case "", "today":
		return r.Today(), nil
	case "yesterday":
		return r.Today().AddDays(-1), nil
	}

	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}

	return civil.Date{}, &InvalidDateError{Input: expr}
}

// CurrentMonthLabel returns the partition label for the current month.
func (r *Resolver) CurrentMonthLabel() string {
	return MonthLabel(r.Today())
}

// ParseMonthLabel normalizes a month expression to YYYY-MM. Accepted inputs:
// empty (current month), YYYY-MM, M/YYYY or MM/YYYY, and a bare YYYY which
// maps to January of that year.
func (r *Resolver) ParseMonthLabel(expr string) (string, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return r.CurrentMonthLabel(), nil
	}

	switch {
	case monthLabelRe.MatchString(s):
		if _, err := time.Parse(MonthLabelLayout, s); err != nil {
			return "", fmt.Errorf("invalid month %q: %w", expr, err)
		}
		return s, nil
	case monthSlashRe.MatchString(s):
		month, year, _ := strings.Cut(s, "/")
		if len(month) == 1 {
			month = "0" + month
		}
		label := year + "-" + month
		if _, err := time.Parse(MonthLabelLayout, label); err != nil {
			return "", fmt.Errorf("invalid month %q: %w", expr, err)
		}
		return label, nil
	case yearOnlyRe.MatchString(s):
		return s + "-01", nil
	}

	return "", fmt.Errorf("invalid month %q: use YYYY-MM or MM/YYYY", expr)
}

// MonthLabel returns the partition label covering the given date.
func MonthLabel(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// IsMonthLabel reports whether a partition name follows the YYYY-MM
// convention with a real month. Partitions with other names (the user
// registry, scratch sheets) are filtered out by this check.
func IsMonthLabel(name string) bool {
	if !monthLabelRe.MatchString(name) {
		return false
	}
	_, err := time.Parse(MonthLabelLayout, name)
	return err == nil
}
