package oracle

import "testing"

func TestCleanModelJSON(t *testing.T) {
	want := `{"kind": "outflow", "amount": 35.9, "description": "frete", "category": "", "date": "today"}`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare", want},
		{"padded", "\n  " + want + "  \n"},
		{"fenced", "```json\n" + want + "\n```"},
		{"fenced no language", "```\n" + want + "\n```"},
		{"leading chatter", "Here is the record you asked for:\n" + want},
		{"trailing chatter", want + "\nLet me know if you need anything else."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanModelJSON(tc.raw); got != want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tc.raw, got, want)
			}
		})
	}
}
