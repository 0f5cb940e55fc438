package ledger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// MonthlyReport is the aggregate view of one user's entries in one month.
// Derived fresh on each request, never persisted.
type MonthlyReport struct {
	Month         string          `json:"month"`
	TotalInflows  decimal.Decimal `json:"total_inflows"`
	TotalOutflows decimal.Decimal `json:"total_outflows"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	EntryCount    int             `json:"entry_count"`
}

// Reporter builds monthly reports from a single partition scan.
type Reporter struct {
	store Store
	log   zerolog.Logger
}

func NewReporter(store Store, log zerolog.Logger) *Reporter {
	return &Reporter{store: store, log: log}
}

// Report sums the user's entries in the named month. A month with no
// partition is a valid unused month and yields a zero-valued report, not an
// error. Unparseable rows are skipped with a warning, same as the balance
// scan.
func (r *Reporter) Report(ctx context.Context, userID, month string) (MonthlyReport, error) {
	report := MonthlyReport{
		Month:         month,
		TotalInflows:  decimal.Zero,
		TotalOutflows: decimal.Zero,
		NetBalance:    decimal.Zero,
	}

	exists, err := r.store.PartitionExists(ctx, month)
	if err != nil {
		return MonthlyReport{}, &ReadError{Partition: month, cause: err}
	}
	if !exists {
		return report, nil
	}

	rows, err := r.store.ReadAllRows(ctx, month)
	if err != nil {
		return MonthlyReport{}, &ReadError{Partition: month, cause: err}
	}

	for _, row := range rows {
		rowUser, kind, amount, ok := rowKindAmount(row)
		if !ok {
			r.log.Warn().Str("partition", month).Msg("Skipping unparseable ledger row")
			continue
		}
		if rowUser != userID {
			continue
		}

		report.EntryCount++
		switch kind {
		case domain.KindInflow:
			report.TotalInflows = report.TotalInflows.Add(amount)
		case domain.KindOutflow:
			report.TotalOutflows = report.TotalOutflows.Add(amount)
		}
	}

	report.NetBalance = report.TotalInflows.Sub(report.TotalOutflows)
	return report, nil
}
