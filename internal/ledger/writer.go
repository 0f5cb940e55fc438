package ledger

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// Provenance ties a persisted row back to its originating submission.
type Provenance struct {
	UserID         string
	UserLabel      string
	MessageID      string
	AttachmentLink string
}

// Writer appends validated records to their month partition. Appends are
// fire-and-forget: no row identifier comes back and no update or delete
// exists. A retried append after an ambiguous failure can duplicate a row;
// that is the accepted at-least-once tradeoff.
type Writer struct {
	store      Store
	partitions *Partitioner
	now        func() time.Time
	log        zerolog.Logger
}

// NewWriter builds a Writer. now supplies the persistence timestamp and
// should already be localized to the reference timezone.
func NewWriter(store Store, partitions *Partitioner, now func() time.Time, log zerolog.Logger) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{store: store, partitions: partitions, now: now, log: log}
}

// Append persists one record. The owning partition is ensured first; failure
// after the store's own retries surfaces as a WriteError so the caller can
// tell the user the input was understood but not durably saved.
func (w *Writer) Append(ctx context.Context, rec domain.FinancialRecord, date civil.Date, prov Provenance) error {
	partition, err := w.partitions.EnsureFor(ctx, date)
	if err != nil {
		return &WriteError{Partition: w.partitions.PartitionFor(date), cause: err}
	}

	entry := Entry{
		WrittenAt:      w.now(),
		UserID:         prov.UserID,
		UserLabel:      prov.UserLabel,
		Kind:           rec.Kind,
		Amount:         rec.Amount,
		Description:    rec.Description,
		Category:       rec.Category,
		ResolvedDate:   date,
		MessageID:      prov.MessageID,
		AttachmentLink: prov.AttachmentLink,
	}

	if err := w.store.AppendRow(ctx, partition, entry.Row()); err != nil {
		if prov.AttachmentLink != "" {
			// The uploaded attachment is now orphaned; it stays in the bucket
			// as an audit trail.
			w.log.Warn().Str("attachment", prov.AttachmentLink).Msg("Ledger append failed after attachment upload")
		}
		return &WriteError{Partition: partition, cause: err}
	}

	w.log.Info().
		Str("partition", partition).
		Str("user_id", prov.UserID).
		Str("kind", string(rec.Kind)).
		Str("amount", rec.Amount.String()).
		Msg("Ledger entry appended")

	return nil
}
