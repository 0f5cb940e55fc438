package ledger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/domain"
)

// OverallBalance aggregates one user's entries across every month partition.
type OverallBalance struct {
	TotalBalance        decimal.Decimal `json:"total_balance"`
	CurrentMonthBalance decimal.Decimal `json:"current_month_balance"`
	TotalInflows        decimal.Decimal `json:"total_inflows"`
	TotalOutflows       decimal.Decimal `json:"total_outflows"`
	CurrentMonth        string          `json:"current_month"`
}

// Aggregator computes balances by scanning every month partition. A full
// O(rows) scan with no index is fine at personal-finance volume; correctness
// depends on scanning everything, so nothing is cached.
type Aggregator struct {
	store    Store
	resolver *dates.Resolver
	log      zerolog.Logger
}

func NewAggregator(store Store, resolver *dates.Resolver, log zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, resolver: resolver, log: log}
}

// Balance sums the user's entries by kind over all month partitions, plus a
// month-scoped slice for the partition matching the current month label.
// Partitions whose names do not follow the YYYY-MM convention (the user
// registry, for one) are skipped by name, not by any type tag. Rows with an
// unknown kind or an unparseable amount are skipped with a warning.
func (a *Aggregator) Balance(ctx context.Context, userID string) (OverallBalance, error) {
	names, err := a.store.ListPartitions(ctx)
	if err != nil {
		return OverallBalance{}, &ReadError{cause: err}
	}

	currentMonth := a.resolver.CurrentMonthLabel()

	totalIn := decimal.Zero
	totalOut := decimal.Zero
	monthNet := decimal.Zero

	for _, name := range names {
		if !dates.IsMonthLabel(name) {
			continue
		}

		rows, err := a.store.ReadAllRows(ctx, name)
		if err != nil {
			// One unreadable month poisons the totals, so fail rather than
			// report a partial balance.
			return OverallBalance{}, &ReadError{Partition: name, cause: err}
		}

		for _, row := range rows {
			rowUser, kind, amount, ok := rowKindAmount(row)
			if !ok {
				a.log.Warn().Str("partition", name).Msg("Skipping unparseable ledger row")
				continue
			}
			if rowUser != userID {
				continue
			}

			switch kind {
			case domain.KindInflow:
				totalIn = totalIn.Add(amount)
				if name == currentMonth {
					monthNet = monthNet.Add(amount)
				}
			case domain.KindOutflow:
				totalOut = totalOut.Add(amount)
				if name == currentMonth {
					monthNet = monthNet.Sub(amount)
				}
			}
		}
	}

	return OverallBalance{
		TotalBalance:        totalIn.Sub(totalOut),
		CurrentMonthBalance: monthNet,
		TotalInflows:        totalIn,
		TotalOutflows:       totalOut,
		CurrentMonth:        currentMonth,
	}, nil
}
