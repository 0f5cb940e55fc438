package extract

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

func TestParseDirectCommand(t *testing.T) {
	tests := []struct {
		name     string
		kind     domain.Kind
		text     string
		wantAmt  string
		wantDesc string
		wantErr  bool
	}{
		{
			name: "outflow with description",
			kind: domain.KindOutflow, text: "/out 35,90 frete sedex",
			wantAmt: "35.9", wantDesc: "frete sedex",
		},
		{
			name: "inflow amount only gets placeholder",
			kind: domain.KindInflow, text: "/in 100",
			wantAmt: "100", wantDesc: domain.DefaultDescription,
		},
		{
			name: "multi-word description keeps all words",
			kind: domain.KindInflow, text: "/in 150 venda   produto  azul",
			wantAmt: "150", wantDesc: "venda produto azul",
		},
		{
			name: "no payload after command",
			kind: domain.KindOutflow, text: "/out",
			wantErr: true,
		},
		{
			name: "empty text",
			kind: domain.KindOutflow, text: "   ",
			wantErr: true,
		},
		{
			name: "bad amount token",
			kind: domain.KindInflow, text: "/in abc venda",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseDirectCommand(tt.kind, tt.text)
			if tt.wantErr {
				var verr *domain.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", rec.Kind, tt.kind)
			}
			want, _ := decimal.NewFromString(tt.wantAmt)
			if !rec.Amount.Equal(want) {
				t.Errorf("Amount = %s, want %s", rec.Amount, want)
			}
			if rec.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", rec.Description, tt.wantDesc)
			}
		})
	}
}
