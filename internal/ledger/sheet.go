// Package ledger reads and appends rows of the Transactions sheet, the
// append-only system of record for per-property financial activity.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/service"
	"github.com/stantpm/propflow/internal/sheets"
)

// SheetName is the title of the transactions ledger sheet.
const SheetName = "Transactions"

// ErrMissingColumns indicates the ledger header row lacks required columns.
var ErrMissingColumns = errors.New("transactions sheet is missing required columns")

// Column header names of the ledger sheet.
const (
	colDate             = "Date"
	colProperty         = "Property"
	colUnit             = "Unit"
	colExplanation      = "Debit/Credit Explanation"
	colSecurityDeposits = "Security Deposits"
	colFees             = "Fees"
	colCredits          = "Credits"
	colMarkupIncluded   = "Markup Included"
	colMarkupRevenue    = "Markup Revenue"
	colInternalNotes    = "Internal Notes"
)

// requiredColumns must all be present in the header row before any append.
var requiredColumns = []string{
	colDate, colProperty, colUnit, colExplanation,
	colSecurityDeposits, colFees, colCredits,
}

// writtenDateFormat is how dates are rendered into the Date column; the
// document store interprets them as date values on write.
const writtenDateFormat = "1/2/2006"

// dateNumberFormat is the display pattern applied to appended Date cells.
const dateNumberFormat = "M/dd/yyyy"

// loadDateFormats are the layouts accepted when reading dates back out.
var loadDateFormats = []string{"1/2/2006", "2006-01-02", "Jan 2, 2006"}

// Ledger wraps one spreadsheet's Transactions sheet. Dates are read and
// written in loc so that window comparisons downstream see the same wall
// clock the sheet shows.
type Ledger struct {
	store         service.DocumentStore
	spreadsheetID string
	loc           *time.Location
}

// New returns a ledger bound to the given spreadsheet document. A nil
// location falls back to the process-local zone.
func New(store service.DocumentStore, spreadsheetID string, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{store: store, spreadsheetID: spreadsheetID, loc: loc}
}

// Append validates the ledger header and appends all entries as one
// contiguous block after the last data row. The append is all-or-nothing:
// a missing required column aborts before any write.
func (l *Ledger) Append(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	columns, err := l.headerColumns(ctx)
	if err != nil {
		return err
	}

	width := 0
	for _, i := range columns {
		if i+1 > width {
			width = i + 1
		}
	}

	set := func(row []any, name string, value any) {
		if i, ok := columns[name]; ok {
			row[i] = value
		}
	}

	values := make([][]any, 0, len(entries))
	for _, e := range entries {
		row := make([]any, width)
		for i := range row {
			row[i] = ""
		}
		set(row, colDate, e.Date.Format(writtenDateFormat))
		set(row, colProperty, e.Property)
		set(row, colUnit, e.Unit)
		set(row, colExplanation, e.Explanation)
		set(row, colSecurityDeposits, amountCell(e.SecurityDeposits))
		set(row, colFees, amountCell(e.Fees))
		set(row, colCredits, amountCell(e.Credits))
		set(row, colMarkupIncluded, e.MarkupIncluded)
		set(row, colMarkupRevenue, amountCell(e.MarkupRevenue))
		set(row, colInternalNotes, e.InternalNotes)
		values = append(values, row)
	}

	updated, err := l.store.AppendRows(ctx, l.spreadsheetID, SheetName, values)
	if err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}

	l.formatDateColumn(ctx, updated, columns[colDate])

	slog.Info("appended rows to ledger", "rows", len(values), "range", updated)
	return nil
}

// formatDateColumn applies the date display pattern to the Date cells of a
// freshly appended block. The rows are already written, so a formatting
// failure only warns.
func (l *Ledger) formatDateColumn(ctx context.Context, updatedRange string, dateCol int) {
	start, end, ok := rowSpan(updatedRange)
	if !ok {
		slog.Warn("could not determine appended rows for date formatting", "range", updatedRange)
		return
	}

	info, err := l.store.SheetInfo(ctx, l.spreadsheetID, SheetName)
	if err == nil {
		rect := service.GridRect{
			SheetID:  info.SheetID,
			StartRow: start - 1,
			EndRow:   end,
			StartCol: int64(dateCol),
			EndCol:   int64(dateCol) + 1,
		}
		err = l.store.SetNumberFormat(ctx, l.spreadsheetID, rect, "DATE", dateNumberFormat)
	}
	if err != nil {
		slog.Warn("failed to format ledger date column", "error", err)
	}
}

// rowSpan extracts the 1-based first and last row numbers from an A1 range
// like "Transactions!A2:J101".
func rowSpan(a1Range string) (start, end int64, ok bool) {
	if i := strings.IndexByte(a1Range, '!'); i >= 0 {
		a1Range = a1Range[i+1:]
	}
	first, last, found := strings.Cut(a1Range, ":")
	if !found {
		last = first
	}
	start, sOK := rowNumber(first)
	end, eOK := rowNumber(last)
	return start, end, sOK && eOK
}

func rowNumber(cell string) (int64, bool) {
	i := 0
	for i < len(cell) && (cell[i] < '0' || cell[i] > '9') {
		i++
	}
	n, err := strconv.ParseInt(cell[i:], 10, 64)
	return n, err == nil
}

// Load reads every data row of the ledger. Rows without a parseable date
// are skipped with a log line; rows without a property are kept, callers
// decide whether they matter.
func (l *Ledger) Load(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := l.store.ReadRange(ctx, l.spreadsheetID, SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	columns, err := headerColumnsFromRow(rows[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []any, name string) any {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	var entries []model.LedgerEntry
	for i, row := range rows[1:] {
		dateText := sheets.CellString(cell(row, colDate))
		if dateText == "" {
			continue
		}
		date, ok := parseLedgerDate(dateText, l.loc)
		if !ok {
			slog.Warn("skipping ledger row with unparseable date", "row", i+2, "date", dateText)
			continue
		}

		entries = append(entries, model.LedgerEntry{
			Date:             date,
			Property:         sheets.CellString(cell(row, colProperty)),
			Unit:             sheets.CellString(cell(row, colUnit)),
			Explanation:      sheets.CellString(cell(row, colExplanation)),
			SecurityDeposits: sheets.CellFloat(cell(row, colSecurityDeposits)),
			Fees:             sheets.CellFloat(cell(row, colFees)),
			Credits:          sheets.CellFloat(cell(row, colCredits)),
			Debits:           sheets.CellFloat(cell(row, "Debits")),
			MarkupIncluded:   sheets.CellBool(cell(row, colMarkupIncluded)),
			MarkupRevenue:    sheets.CellFloat(cell(row, colMarkupRevenue)),
			InternalNotes:    sheets.CellString(cell(row, colInternalNotes)),
		})
	}

	return entries, nil
}

func (l *Ledger) headerColumns(ctx context.Context) (map[string]int, error) {
	header, err := l.store.ReadRange(ctx, l.spreadsheetID, SheetName+"!1:1")
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: header row is empty", ErrMissingColumns)
	}
	return headerColumnsFromRow(header[0])
}

func headerColumnsFromRow(row []any) (map[string]int, error) {
	columns := make(map[string]int, len(row))
	for i, cell := range row {
		name := sheets.CellString(cell)
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, name)
		}
	}
	return columns, nil
}

// amountCell leaves zero amounts blank so the ledger stays readable.
func amountCell(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}

func parseLedgerDate(text string, loc *time.Location) (time.Time, bool) {
	for _, layout := range loadDateFormats {
		if d, err := time.ParseInLocation(layout, text, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
