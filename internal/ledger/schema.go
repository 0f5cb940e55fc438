package ledger

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/domain"
)

// SchemaVersion guards the column-position contract below. The aggregate
// formulas reference columns D (kind) and E (amount) by position, so any
// column insertion must bump this and rewrite the formula block.
const SchemaVersion = 1

// Column positions of a ledger row. This order is a durable contract shared
// by the partition header, the append path and the aggregate formulas.
const (
	colTimestamp = iota
	colUserID
	colUserLabel
	colKind
	colAmount
	colDescription
	colCategory
	colEntryDate
	colMessageID
	colAttachment

	rowWidth
)

// HeaderRow is the fixed first row of every month partition. The two trailing
// labels head the aggregate block columns.
func HeaderRow() []string {
	return []string{
		"timestamp", "user_id", "user_label", "kind", "amount",
		"description", "category", "entry_date", "message_id",
		"attachment", "TOTALS", "VALUES",
	}
}

// AggregateBlock is the running-totals block placed next to the data columns
// of every month partition.
func AggregateBlock() []AggregateCell {
	return []AggregateCell{
		{LabelCell: "K2", Label: "TOTAL INFLOWS:", ValueCell: "L2", Formula: `=SUMIF(D:D,"inflow",E:E)`},
		{LabelCell: "K3", Label: "TOTAL OUTFLOWS:", ValueCell: "L3", Formula: `=SUMIF(D:D,"outflow",E:E)`},
		{LabelCell: "K4", Label: "NET BALANCE:", ValueCell: "L4", Formula: `=L2-L3`},
		{LabelCell: "K5", Label: "ENTRY COUNT:", ValueCell: "L5", Formula: `=COUNTA(D:D)-1`},
	}
}

// Entry is one persisted ledger row: a validated record plus provenance.
// Entries are append-only; no update or delete exists.
type Entry struct {
	WrittenAt      time.Time
	UserID         string
	UserLabel      string
	Kind           domain.Kind
	Amount         decimal.Decimal
	Description    string
	Category       string
	ResolvedDate   civil.Date
	MessageID      string
	AttachmentLink string
}

// Row flattens the entry in schema column order. The amount degrades to a
// plain float here: the store is the human-facing record, not an accounting
// ledger.
func (e Entry) Row() []interface{} {
	row := make([]interface{}, rowWidth)
	row[colTimestamp] = e.WrittenAt.Format(time.RFC3339)
	row[colUserID] = e.UserID
	row[colUserLabel] = e.UserLabel
	row[colKind] = string(e.Kind)
	row[colAmount] = e.Amount.InexactFloat64()
	row[colDescription] = e.Description
	row[colCategory] = e.Category
	row[colEntryDate] = e.ResolvedDate.String()
	row[colMessageID] = e.MessageID
	row[colAttachment] = e.AttachmentLink
	return row
}

// rowKindAmount pulls the user, kind and amount cells out of a stored row.
// Trailing empty cells may be truncated by the backend, so only the columns
// up to amount are required.
func rowKindAmount(row []interface{}) (userID string, kind domain.Kind, amount decimal.Decimal, ok bool) {
	if len(row) <= colAmount {
		return "", "", decimal.Zero, false
	}

	userID = cellString(row[colUserID])

	kind, valid := domain.ParseKind(cellString(row[colKind]))
	if !valid {
		return "", "", decimal.Zero, false
	}

	amount, err := cellDecimal(row[colAmount])
	if err != nil {
		return "", "", decimal.Zero, false
	}

	return userID, kind, amount, true
}

var errTypeMismatch = errors.New("cell has unsupported type")

func cellString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func cellDecimal(v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		return decimal.NewFromString(normalizeCell(val))
	default:
		return decimal.Zero, &ReadError{cause: errTypeMismatch}
	}
}

func normalizeCell(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ',':
			out = append(out, '.')
		case ' ':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
