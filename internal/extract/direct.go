package extract

import (
	"strings"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// ParseDirectCommand handles "/in 150 sale" style submissions. The kind is
// fixed by which command the caller matched, never inferred from content. The
// text after the command splits on the first whitespace run into an amount
// token and the description; a missing description falls back to a literal
// placeholder that always passes the non-numeric rule.
func ParseDirectCommand(kind domain.Kind, text string) (domain.FinancialRecord, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		fields = fields[1:]
	}

	if len(fields) == 0 {
		return domain.FinancialRecord{}, &domain.ValidationError{
			Field:  "amount",
			Reason: "provide at least an amount, e.g. /out 35,90 shipping",
		}
	}

	amount := fields[0]
	description := strings.Join(fields[1:], " ")
	if description == "" {
		description = domain.DefaultDescription
	}

	return domain.NewRecord(string(kind), amount, description, "", domain.DefaultDateExpression)
}
