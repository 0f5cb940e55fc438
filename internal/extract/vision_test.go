package extract

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

const sampleAnalysis = `KIND: outflow
AMOUNT: R$ 1.750,50
DESCRIPTION: supermarket purchase
CATEGORY: groceries
DATE: 15/10/2025

ANALYSIS: A fiscal receipt from a supermarket, total R$ 1.750,50.`

func TestParseVisionAnalysis(t *testing.T) {
	rec, err := ParseVisionAnalysis(sampleAnalysis)
	if err != nil {
		t.Fatalf("ParseVisionAnalysis: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Kind != domain.KindOutflow {
		t.Errorf("Kind = %q", rec.Kind)
	}
	if want := decimal.RequireFromString("1750.5"); !rec.Amount.Equal(want) {
		t.Errorf("Amount = %s, want %s", rec.Amount, want)
	}
	if rec.Description != "supermarket purchase" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Category != "groceries" {
		t.Errorf("Category = %q", rec.Category)
	}
	if rec.DateExpression != "15/10/2025" {
		t.Errorf("DateExpression = %q", rec.DateExpression)
	}
}

func TestParseVisionAnalysis_KindInference(t *testing.T) {
	tests := []struct {
		kindLine string
		want     domain.Kind
	}{
		{"inflow", domain.KindInflow},
		{"money received via PIX", domain.KindInflow},
		{"credit to account", domain.KindInflow},
		{"deposit slip", domain.KindInflow},
		{"outflow", domain.KindOutflow},
		{"payment", domain.KindOutflow},
		{"purchase", domain.KindOutflow},
		{"unclear", domain.KindOutflow}, // outflow is the fallback
	}

	for _, tt := range tests {
		t.Run(tt.kindLine, func(t *testing.T) {
			analysis := "KIND: " + tt.kindLine + "\nAMOUNT: 50,00\nDESCRIPTION: something bought\n"
			rec, err := ParseVisionAnalysis(analysis)
			if err != nil || rec == nil {
				t.Fatalf("no record: %v", err)
			}
			if rec.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", rec.Kind, tt.want)
			}
		})
	}
}

func TestParseVisionAnalysis_Defaults(t *testing.T) {
	rec, err := ParseVisionAnalysis("KIND: outflow\nAMOUNT: 25,90\nDESCRIPTION: lunch\nDATE: not identified\n")
	if err != nil || rec == nil {
		t.Fatalf("no record: %v", err)
	}
	if rec.Category != "" {
		t.Errorf("Category = %q, want empty", rec.Category)
	}
	if rec.DateExpression != domain.DefaultDateExpression {
		t.Errorf("DateExpression = %q, want today", rec.DateExpression)
	}
}

func TestParseVisionAnalysis_DiacriticLabels(t *testing.T) {
	rec, err := ParseVisionAnalysis("TIPO: saída\nVALOR: 89,50\nDESCRIÇÃO: combustível posto\n")
	if err != nil || rec == nil {
		t.Fatalf("no record: %v", err)
	}
	if rec.Kind != domain.KindOutflow {
		t.Errorf("Kind = %q", rec.Kind)
	}
	if rec.Description != "combustível posto" {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestParseVisionAnalysis_NoRecord(t *testing.T) {
	tests := []struct {
		name     string
		analysis string
	}{
		{"missing amount", "KIND: outflow\nDESCRIPTION: something\n"},
		{"missing kind", "AMOUNT: 10,00\nDESCRIPTION: something\n"},
		{"missing description", "KIND: outflow\nAMOUNT: 10,00\n"},
		{"free text only", "This image shows a cat. No financial document found."},
		{"unusable amount", "KIND: outflow\nAMOUNT: unreadable\nDESCRIPTION: blurry receipt\n"},
		{"numeric description", "KIND: outflow\nAMOUNT: 10,00\nDESCRIPTION: 123,45\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseVisionAnalysis(tt.analysis)
			if rec != nil {
				t.Fatalf("expected no record, got %+v", rec)
			}
			if err == nil {
				t.Error("expected a reason for the empty result")
			}
		})
	}
}
