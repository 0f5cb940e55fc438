// Package intake orchestrates the three submission paths (direct command,
// natural-language text, receipt image) through a single pipeline: extract a
// candidate record, validate it, resolve its date, and append it to the
// month partition the date falls in.
package intake

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/extract"
	"github.com/dvloznov/ledgerbot/internal/ledger"
)

// Oracle is the extraction backend for the two model-assisted paths.
type Oracle interface {
	ExtractFromText(ctx context.Context, text string) (domain.FinancialRecord, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.FinancialRecord, string, error)
}

// BlobStore persists submission attachments. Optional; a nil store disables
// attachment links without disabling visual submissions.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, userID, filename, contentType string) (string, error)
}

// Submission identifies who sent a record and through which message.
type Submission struct {
	UserID    string
	UserLabel string
	MessageID string
}

// Confirmation describes a successfully recorded entry.
type Confirmation struct {
	Record         domain.FinancialRecord `json:"record"`
	Date           civil.Date             `json:"date"`
	Partition      string                 `json:"partition"`
	AttachmentLink string                 `json:"attachment_link,omitempty"`
}

// Service is the application facade over extraction, validation and the
// ledger. All dependencies are injected; the zero value is unusable.
type Service struct {
	oracle     Oracle
	blobs      BlobStore
	writer     *ledger.Writer
	aggregator *ledger.Aggregator
	reporter   *ledger.Reporter
	registry   *ledger.Registry
	resolver   *dates.Resolver
	log        zerolog.Logger
}

func NewService(
	oracle Oracle,
	blobs BlobStore,
	writer *ledger.Writer,
	aggregator *ledger.Aggregator,
	reporter *ledger.Reporter,
	registry *ledger.Registry,
	resolver *dates.Resolver,
	log zerolog.Logger,
) *Service {
	return &Service{
		oracle:     oracle,
		blobs:      blobs,
		writer:     writer,
		aggregator: aggregator,
		reporter:   reporter,
		registry:   registry,
		resolver:   resolver,
		log:        log,
	}
}

// SubmitDirect records an entry from an explicit command: the kind is given
// by the command itself, the text carries "<amount> [description...]".
func (s *Service) SubmitDirect(ctx context.Context, sub Submission, kind domain.Kind, text string) (Confirmation, error) {
	rec, err := extract.ParseDirectCommand(kind, text)
	if err != nil {
		return Confirmation{}, err
	}
	return s.record(ctx, sub, rec, "")
}

// SubmitText records an entry extracted from a free-form message by the
// oracle. Extraction failures propagate typed; nothing is written on error.
func (s *Service) SubmitText(ctx context.Context, sub Submission, text string) (Confirmation, error) {
	rec, err := s.oracle.ExtractFromText(ctx, text)
	if err != nil {
		return Confirmation{}, err
	}
	return s.record(ctx, sub, rec, "")
}

// SubmitVisual analyzes a receipt image. When the analysis yields a record it
// is written with a best-effort attachment link; when it does not, the
// analysis text comes back with a nil confirmation so the caller can show the
// user what the model saw.
func (s *Service) SubmitVisual(ctx context.Context, sub Submission, image []byte, mimeType, filename string) (*Confirmation, string, error) {
	rec, analysis, err := s.oracle.AnalyzeImage(ctx, image, mimeType)
	if err != nil {
		return nil, "", err
	}
	if rec == nil {
		s.log.Info().Str("user_id", sub.UserID).Msg("Visual submission yielded no record")
		return nil, analysis, nil
	}

	link := s.uploadAttachment(ctx, sub, image, mimeType, filename)

	conf, err := s.record(ctx, sub, *rec, link)
	if err != nil {
		return nil, analysis, err
	}
	return &conf, analysis, nil
}

// uploadAttachment is best effort: a failed or disabled upload costs the
// entry its attachment link, never the entry itself.
func (s *Service) uploadAttachment(ctx context.Context, sub Submission, image []byte, mimeType, filename string) string {
	if s.blobs == nil {
		return ""
	}
	link, err := s.blobs.Upload(ctx, image, sub.UserID, filename, mimeType)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", sub.UserID).Msg("Attachment upload failed, recording without link")
		return ""
	}
	return link
}

// record is the shared tail of every submission path.
func (s *Service) record(ctx context.Context, sub Submission, rec domain.FinancialRecord, attachmentLink string) (Confirmation, error) {
	date, err := s.resolver.Resolve(rec.DateExpression)
	if err != nil {
		return Confirmation{}, err
	}

	s.registry.Register(ctx, sub.UserID, sub.UserLabel)

	prov := ledger.Provenance{
		UserID:         sub.UserID,
		UserLabel:      sub.UserLabel,
		MessageID:      sub.MessageID,
		AttachmentLink: attachmentLink,
	}
	if err := s.writer.Append(ctx, rec, date, prov); err != nil {
		return Confirmation{}, err
	}

	return Confirmation{
		Record:         rec,
		Date:           date,
		Partition:      dates.MonthLabel(date),
		AttachmentLink: attachmentLink,
	}, nil
}

// Balance returns the user's all-time and current-month totals.
func (s *Service) Balance(ctx context.Context, userID string) (ledger.OverallBalance, error) {
	return s.aggregator.Balance(ctx, userID)
}

// Report sums one month for the user. The month expression accepts the same
// forms as the partition labels plus MM/YYYY and a bare year.
func (s *Service) Report(ctx context.Context, userID, monthExpr string) (ledger.MonthlyReport, error) {
	month, err := s.resolver.ParseMonthLabel(monthExpr)
	if err != nil {
		return ledger.MonthlyReport{}, err
	}
	return s.reporter.Report(ctx, userID, month)
}
