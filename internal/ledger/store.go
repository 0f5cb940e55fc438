// Package ledger maintains the month-partitioned ledger: partition naming and
// lazy creation, row appends with provenance, and the read-only balance and
// report scans. The storage backend stays behind the Store interface so tests
// run against an in-memory double.
package ledger

import "context"

// AggregateCell is one label/formula pair of the human-readable running-total
// block written into a freshly created partition.
type AggregateCell struct {
	LabelCell string
	Label     string
	ValueCell string
	Formula   string
}

// Store is the external tabular backend holding the ledger. Partitions are
// named row collections; creation is expected to be "create if absent, else
// fetch" on the backend side. ReadAllRows returns data rows only, without the
// header.
type Store interface {
	PartitionExists(ctx context.Context, name string) (bool, error)
	CreatePartition(ctx context.Context, name string, header []string, aggregates []AggregateCell) error
	AppendRow(ctx context.Context, partition string, row []interface{}) error
	ListPartitions(ctx context.Context) ([]string, error)
	ReadAllRows(ctx context.Context, partition string) ([][]interface{}, error)
}

// WriteError reports a store write failure after retry exhaustion. The input
// was understood; the caller should tell the user to retry as-is, not to
// reword.
type WriteError struct {
	Partition string
	cause     error
}

func (e *WriteError) Error() string {
	return "ledger write to partition " + e.Partition + " failed: " + e.cause.Error()
}

func (e *WriteError) Unwrap() error { return e.cause }

// ReadError reports a store read failure after retry exhaustion.
type ReadError struct {
	Partition string
	cause     error
}

func (e *ReadError) Error() string {
	if e.Partition == "" {
		return "ledger read failed: " + e.cause.Error()
	}
	return "ledger read from partition " + e.Partition + " failed: " + e.cause.Error()
}

func (e *ReadError) Unwrap() error { return e.cause }
