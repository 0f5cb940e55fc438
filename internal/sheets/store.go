// Package sheets implements the ledger store on a Google Spreadsheet: one
// worksheet per partition, rows appended in schema order, the aggregate block
// written as live formulas. Every network call runs under the shared retry
// policy with transient-only classification.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/dvloznov/ledgerbot/internal/ledger"
	"github.com/dvloznov/ledgerbot/internal/retry"
)

const (
	partitionRows = 1000
	partitionCols = 13
)

// Store talks to one spreadsheet. It holds only the client and target id,
// both injected at construction; no process-wide state.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	policy        retry.Policy
	log           zerolog.Logger
}

// NewStore builds a Store for the given spreadsheet. Credentials resolve via
// Application Default Credentials unless overridden through opts.
func NewStore(ctx context.Context, spreadsheetID string, log zerolog.Logger, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		policy:        retry.DefaultPolicy(),
		log:           log,
	}, nil
}

// PartitionExists reports whether a worksheet with the given title exists.
func (s *Store) PartitionExists(ctx context.Context, name string) (bool, error) {
	names, err := s.ListPartitions(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ListPartitions returns every worksheet title in the spreadsheet.
func (s *Store) ListPartitions(ctx context.Context) ([]string, error) {
	var resp *sheets.Spreadsheet
	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets.properties.title").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	names := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

// CreatePartition adds a worksheet with the schema header and aggregate
// formulas. A concurrent creator winning the race is fine: the backend's
// "already exists" answer is treated as success and the winner's header is
// left untouched.
func (s *Store) CreatePartition(ctx context.Context, name string, header []string, aggregates []ledger.AggregateCell) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: name,
					GridProperties: &sheets.GridProperties{
						RowCount:    partitionRows,
						ColumnCount: partitionCols,
					},
				},
			},
		}},
	}

	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		if isAlreadyExists(err) {
			s.log.Debug().Str("partition", name).Msg("Partition already exists, treating create as fetch")
			return nil
		}
		return fmt.Errorf("add sheet %s: %w", name, err)
	}

	if err := s.writeHeader(ctx, name, header); err != nil {
		return err
	}
	return s.writeAggregates(ctx, name, aggregates)
}

func (s *Store) writeHeader(ctx context.Context, name string, header []string) error {
	if len(header) == 0 {
		return nil
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}

	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, quoteTitle(name)+"!A1", vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write header for %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeAggregates(ctx context.Context, name string, aggregates []ledger.AggregateCell) error {
	if len(aggregates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(aggregates)*2)
	for _, cell := range aggregates {
		data = append(data,
			&sheets.ValueRange{
				Range:  quoteTitle(name) + "!" + cell.LabelCell,
				Values: [][]interface{}{{cell.Label}},
			},
			&sheets.ValueRange{
				Range:  quoteTitle(name) + "!" + cell.ValueCell,
				Values: [][]interface{}{{cell.Formula}},
			},
		)
	}

	req := &sheets.BatchUpdateValuesRequest{
		// USER_ENTERED so the formulas are live, not literal text.
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}

	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write aggregate block for %s: %w", name, err)
	}
	return nil
}

// AppendRow appends one data row to the named worksheet. RAW input keeps
// user-supplied text from being interpreted as formulas.
func (s *Store) AppendRow(ctx context.Context, partition string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}

	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, dataRange(partition), vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", partition, err)
	}
	return nil
}

// ReadAllRows returns the data rows of a worksheet, header excluded.
// Unformatted values keep amounts numeric instead of locale-formatted text.
func (s *Store) ReadAllRows(ctx context.Context, partition string) ([][]interface{}, error) {
	var resp *sheets.ValueRange
	err := retry.Do(ctx, s.policy, retry.Transient, func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, dataRange(partition)).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", partition, err)
	}
	return resp.Values, nil
}

// dataRange covers the data columns from the first row after the header. The
// aggregate block lives in K:L and stays out of this range on purpose.
func dataRange(partition string) string {
	return quoteTitle(partition) + "!A2:J"
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 400 && strings.Contains(gerr.Message, "already exists")
	}
	return false
}

// Store satisfies the ledger store contract.
var _ ledger.Store = (*Store)(nil)
