package extract

import (
	"fmt"
	"strings"

	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/money"
)

// inflowHints mark a vision-detected kind as an inflow. Everything else falls
// back to outflow: proof-of-purchase documents are outflows far more often
// than not.
var inflowHints = []string{"inflow", "receiv", "credit", "deposit"}

// ParseVisionAnalysis scans the free-text analysis returned by the vision
// oracle for the KEY: value block and builds a candidate record from it.
//
// A nil record with a non-nil reason means no record could be extracted; that
// is a recoverable empty result, not an error — the surrounding analysis text
// is still useful to the caller. At minimum the kind, amount and description
// lines must be present. Amounts use the Brazilian-format heuristic since the
// vision oracle is prompted to answer with comma decimals.
func ParseVisionAnalysis(analysis string) (*domain.FinancialRecord, error) {
	found := map[string]string{}

	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = canonicalKey(strings.ToUpper(strings.TrimSpace(key)))
		if key == "" {
			continue
		}
		if _, dup := found[key]; !dup {
			found[key] = strings.TrimSpace(value)
		}
	}

	for _, required := range []string{"KIND", "AMOUNT", "DESCRIPTION"} {
		if found[required] == "" {
			return nil, fmt.Errorf("analysis is missing a %s line", strings.ToLower(required))
		}
	}

	kind := domain.KindOutflow
	lowered := strings.ToLower(found["KIND"])
	for _, hint := range inflowHints {
		if strings.Contains(lowered, hint) {
			kind = domain.KindInflow
			break
		}
	}

	amount, err := money.ParseFlexible(found["AMOUNT"])
	if err != nil {
		return nil, fmt.Errorf("amount line unusable: %w", err)
	}

	date := found["DATE"]
	if date == "" || strings.EqualFold(date, "not identified") {
		date = domain.DefaultDateExpression
	}

	rec, err := domain.NewRecordFromAmount(string(kind), amount, found["DESCRIPTION"], found["CATEGORY"], date)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// canonicalKey maps label spellings (including diacritic variants) onto the
// canonical field names; unknown labels are dropped.
func canonicalKey(key string) string {
	switch key {
	case "KIND", "TYPE", "TIPO":
		return "KIND"
	case "AMOUNT", "VALUE", "VALOR":
		return "AMOUNT"
	case "DESCRIPTION", "DESCRIÇÃO", "DESCRICAO":
		return "DESCRIPTION"
	case "CATEGORY", "CATEGORIA":
		return "CATEGORY"
	case "DATE", "DATA":
		return "DATE"
	}
	return ""
}
