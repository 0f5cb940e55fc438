package ledger

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/dates"
)

// Partitioner maps calendar dates to month partitions and creates partitions
// lazily before first use. Two callers racing to create the same month rely
// on the store's create-if-absent semantics; no lock is held here.
type Partitioner struct {
	store Store
	log   zerolog.Logger
}

func NewPartitioner(store Store, log zerolog.Logger) *Partitioner {
	return &Partitioner{store: store, log: log}
}

// PartitionFor returns the partition name covering the given date.
func (p *Partitioner) PartitionFor(d civil.Date) string {
	return dates.MonthLabel(d)
}

// Ensure guarantees the named month partition exists, creating it with the
// schema header and aggregate block when absent. Creating an existing
// partition is a no-op.
func (p *Partitioner) Ensure(ctx context.Context, name string) error {
	exists, err := p.store.PartitionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check partition %s: %w", name, err)
	}
	if exists {
		return nil
	}

	p.log.Info().Str("partition", name).Msg("Creating ledger partition")

	if err := p.store.CreatePartition(ctx, name, HeaderRow(), AggregateBlock()); err != nil {
		return fmt.Errorf("create partition %s: %w", name, err)
	}
	return nil
}

// EnsureFor is Ensure keyed by date.
func (p *Partitioner) EnsureFor(ctx context.Context, d civil.Date) (string, error) {
	name := p.PartitionFor(d)
	if err := p.Ensure(ctx, name); err != nil {
		return "", err
	}
	return name, nil
}
