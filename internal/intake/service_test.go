package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/ledger"
)

type memStore struct {
	rows     map[string][][]interface{}
	failRead error
}

func newMemStore() *memStore {
	return &memStore{rows: map[string][][]interface{}{}}
}

func (m *memStore) PartitionExists(ctx context.Context, name string) (bool, error) {
	_, ok := m.rows[name]
	return ok, nil
}

func (m *memStore) CreatePartition(ctx context.Context, name string, header []string, aggregates []ledger.AggregateCell) error {
	if _, ok := m.rows[name]; !ok {
		m.rows[name] = nil
	}
	return nil
}

func (m *memStore) AppendRow(ctx context.Context, partition string, row []interface{}) error {
	m.rows[partition] = append(m.rows[partition], row)
	return nil
}

func (m *memStore) ListPartitions(ctx context.Context) ([]string, error) {
	var names []string
	for name := range m.rows {
		names = append(names, name)
	}
	return names, nil
}

func (m *memStore) ReadAllRows(ctx context.Context, partition string) ([][]interface{}, error) {
	if m.failRead != nil {
		return nil, m.failRead
	}
	return m.rows[partition], nil
}

type fakeOracle struct {
	textRecord   domain.FinancialRecord
	textErr      error
	visionRecord *domain.FinancialRecord
	analysis     string
	visionErr    error
}

func (f *fakeOracle) ExtractFromText(ctx context.Context, text string) (domain.FinancialRecord, error) {
	return f.textRecord, f.textErr
}

func (f *fakeOracle) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.FinancialRecord, string, error) {
	return f.visionRecord, f.analysis, f.visionErr
}

type fakeBlobs struct {
	link string
	err  error
}

func (f *fakeBlobs) Upload(ctx context.Context, data []byte, userID, filename, contentType string) (string, error) {
	return f.link, f.err
}

func newService(t *testing.T, store *memStore, oracle Oracle, blobs BlobStore) *Service {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC) }
	resolver, err := dates.NewResolverWithClock("UTC", clock)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	nop := zerolog.Nop()
	partitions := ledger.NewPartitioner(store, nop)
	return NewService(
		oracle,
		blobs,
		ledger.NewWriter(store, partitions, clock, nop),
		ledger.NewAggregator(store, resolver, nop),
		ledger.NewReporter(store, nop),
		ledger.NewRegistry(store, clock, nop),
		resolver,
		nop,
	)
}

func mustRecord(t *testing.T, kind, amount, desc, date string) domain.FinancialRecord {
	t.Helper()
	rec, err := domain.NewRecord(kind, amount, desc, "", date)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return rec
}

func TestSubmitDirect(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store, &fakeOracle{}, nil)

	sub := Submission{UserID: "42", UserLabel: "Maria", MessageID: "m1"}
	conf, err := svc.SubmitDirect(context.Background(), sub, domain.KindOutflow, "/out 35,90 frete sedex")
	if err != nil {
		t.Fatalf("SubmitDirect: %v", err)
	}

	if conf.Partition != "2025-10" || conf.Date.String() != "2025-10-15" {
		t.Errorf("confirmation wrong: %+v", conf)
	}
	if got := len(store.rows["2025-10"]); got != 1 {
		t.Fatalf("ledger rows = %d, want 1", got)
	}
	if got := len(store.rows[ledger.RegistryPartition]); got != 1 {
		t.Errorf("registry rows = %d, want 1", got)
	}
}

func TestSubmitDirect_InvalidAmountWritesNothing(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store, &fakeOracle{}, nil)

	_, err := svc.SubmitDirect(context.Background(), Submission{UserID: "42"}, domain.KindOutflow, "/out nada")
	if err == nil {
		t.Fatal("SubmitDirect accepted a non-numeric amount")
	}
	if len(store.rows["2025-10"]) != 0 {
		t.Error("ledger written despite validation failure")
	}
}

func TestSubmitText(t *testing.T) {
	store := newMemStore()
	oracle := &fakeOracle{textRecord: mustRecord(t, "inflow", "1500", "venda de bolo", "yesterday")}
	svc := newService(t, store, oracle, nil)

	conf, err := svc.SubmitText(context.Background(), Submission{UserID: "42"}, "recebi 1500 pela venda de bolo ontem")
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if conf.Date.String() != "2025-10-14" {
		t.Errorf("date = %s, want yesterday resolved", conf.Date)
	}
}

func TestSubmitText_OracleFailurePropagates(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store, &fakeOracle{textErr: errors.New("model unavailable")}, nil)

	if _, err := svc.SubmitText(context.Background(), Submission{UserID: "42"}, "algo"); err == nil {
		t.Fatal("SubmitText swallowed the oracle error")
	}
	if len(store.rows) != 0 {
		t.Error("ledger touched despite oracle failure")
	}
}

func TestSubmitVisual(t *testing.T) {
	store := newMemStore()
	rec := mustRecord(t, "outflow", "89,90", "mercado pago", "today")
	oracle := &fakeOracle{visionRecord: &rec, analysis: "KIND: outflow\nAMOUNT: 89,90"}
	svc := newService(t, store, oracle, &fakeBlobs{link: "https://storage.googleapis.com/b/o.jpg"})

	conf, analysis, err := svc.SubmitVisual(context.Background(), Submission{UserID: "42"}, []byte("img"), "image/jpeg", "receipt.jpg")
	if err != nil {
		t.Fatalf("SubmitVisual: %v", err)
	}
	if conf == nil || conf.AttachmentLink != "https://storage.googleapis.com/b/o.jpg" {
		t.Fatalf("confirmation = %+v", conf)
	}
	if analysis == "" {
		t.Error("analysis text dropped")
	}

	row := store.rows["2025-10"][0]
	if row[9] != "https://storage.googleapis.com/b/o.jpg" {
		t.Errorf("attachment column = %v", row[9])
	}
}

func TestSubmitVisual_UploadFailureStillRecords(t *testing.T) {
	store := newMemStore()
	rec := mustRecord(t, "outflow", "10", "cafe", "today")
	svc := newService(t, store, &fakeOracle{visionRecord: &rec, analysis: "a"}, &fakeBlobs{err: errors.New("bucket gone")})

	conf, _, err := svc.SubmitVisual(context.Background(), Submission{UserID: "42"}, []byte("img"), "image/jpeg", "r.jpg")
	if err != nil {
		t.Fatalf("SubmitVisual: %v", err)
	}
	if conf.AttachmentLink != "" {
		t.Errorf("attachment link = %q, want empty", conf.AttachmentLink)
	}
	if len(store.rows["2025-10"]) != 1 {
		t.Error("entry not recorded")
	}
}

func TestSubmitVisual_NoRecordReturnsAnalysis(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store, &fakeOracle{analysis: "KIND: not identified"}, nil)

	conf, analysis, err := svc.SubmitVisual(context.Background(), Submission{UserID: "42"}, []byte("img"), "image/jpeg", "r.jpg")
	if err != nil {
		t.Fatalf("SubmitVisual: %v", err)
	}
	if conf != nil {
		t.Errorf("confirmation = %+v, want nil", conf)
	}
	if analysis != "KIND: not identified" {
		t.Errorf("analysis = %q", analysis)
	}
	if len(store.rows) != 0 {
		t.Error("ledger touched for an empty result")
	}
}

func TestReportMonthExpressions(t *testing.T) {
	store := newMemStore()
	store.rows["2025-10"] = [][]interface{}{
		{"ts", "42", "Maria", "inflow", 100.0, "d", "", "2025-10-01", "", ""},
	}
	svc := newService(t, store, &fakeOracle{}, nil)
	ctx := context.Background()

	for _, expr := range []string{"2025-10", "10/2025", ""} {
		got, err := svc.Report(ctx, "42", expr)
		if err != nil {
			t.Fatalf("Report(%q): %v", expr, err)
		}
		if got.Month != "2025-10" || got.EntryCount != 1 {
			t.Errorf("Report(%q) = %+v", expr, got)
		}
	}

	if _, err := svc.Report(ctx, "42", "13/2025"); err == nil {
		t.Error("Report accepted month 13")
	}
}
