package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// oracleKeys is the exact key set the text oracle is schema-bound to produce.
var oracleKeys = []string{"kind", "amount", "description", "category", "date"}

// ParseOracleJSON decodes the strict JSON object returned by the text
// extraction oracle. The object must carry exactly the five agreed keys with
// the amount as a machine-readable number already in decimal-point form; any
// shape mismatch is an ExtractionError, and the decoded candidate then runs
// through the regular record validation.
func ParseOracleJSON(raw string) (domain.FinancialRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.FinancialRecord{}, &ExtractionError{Reason: "empty oracle response"}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.FinancialRecord{}, &ExtractionError{Reason: "response is not valid JSON", cause: err}
	}

	for _, key := range oracleKeys {
		if _, ok := payload[key]; !ok {
			return domain.FinancialRecord{}, &ExtractionError{Reason: fmt.Sprintf("missing key %q", key)}
		}
	}
	if len(payload) != len(oracleKeys) {
		for key := range payload {
			if !isOracleKey(key) {
				return domain.FinancialRecord{}, &ExtractionError{Reason: fmt.Sprintf("unexpected key %q", key)}
			}
		}
	}

	kind, err := stringValue(payload, "kind")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	description, err := stringValue(payload, "description")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	category, err := stringValue(payload, "category")
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	date, err := stringValue(payload, "date")
	if err != nil {
		return domain.FinancialRecord{}, err
	}

	var amountNum json.Number
	dec := json.NewDecoder(strings.NewReader(string(payload["amount"])))
	dec.UseNumber()
	if err := dec.Decode(&amountNum); err != nil {
		return domain.FinancialRecord{}, &ExtractionError{Reason: "key \"amount\" is not a number", cause: err}
	}
	amount, err := decimal.NewFromString(amountNum.String())
	if err != nil {
		return domain.FinancialRecord{}, &ExtractionError{Reason: "key \"amount\" is not a number", cause: err}
	}

	return domain.NewRecordFromAmount(kind, amount, description, category, date)
}

func isOracleKey(key string) bool {
	for _, k := range oracleKeys {
		if k == key {
			return true
		}
	}
	return false
}

func stringValue(payload map[string]json.RawMessage, key string) (string, error) {
	var s string
	if err := json.Unmarshal(payload[key], &s); err != nil {
		return "", &ExtractionError{Reason: fmt.Sprintf("key %q is not a string", key), cause: err}
	}
	return s, nil
}
