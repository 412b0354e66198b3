package report

import (
	"context"
	"fmt"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/service"
	"github.com/stantpm/propflow/internal/sheets"
)

// Template sheet titles copied into every report document.
const (
	BodyTemplateSheet   = "ReportBodyTemplate"
	TotalsTemplateSheet = "ReportTotalsTemplate"
	AirbnbTemplateSheet = "ReportAirbnbTemplate"
)

// SummarySheetName is the title of the cross-property summary sheet.
const SummarySheetName = "Summary Page"

// unitPlaceholder marks the transaction row inside the body template.
const unitPlaceholder = "[UNIT NUMBER]"

// rowDateFormat is how transaction dates are rendered into report rows.
const rowDateFormat = "1/2/2006"

var summaryHeaders = []any{
	"Building", "Due to Owners", "Total to PM", "Total Fees", "New Lease Fees", "Renewal Fees",
}

// GeneratedReport identifies one successfully built property sheet and
// where its totals block landed, for the summary sheet's cross-references.
type GeneratedReport struct {
	PropertyName   string
	SheetName      string
	TotalsStartRow int64
}

type templateGrid struct {
	sheetID int64
	rows    int64
	cols    int64
	grid    [][]any
}

// Builder assembles property report sheets inside one report document from
// the template sheets previously copied into it.
type Builder struct {
	store    service.DocumentStore
	reportID string

	body   templateGrid
	totals templateGrid
	airbnb templateGrid
}

// NewBuilder loads the three template sheets from the report document.
func NewBuilder(ctx context.Context, store service.DocumentStore, reportID string) (*Builder, error) {
	b := &Builder{store: store, reportID: reportID}

	for _, t := range []struct {
		title string
		into  *templateGrid
	}{
		{BodyTemplateSheet, &b.body},
		{TotalsTemplateSheet, &b.totals},
		{AirbnbTemplateSheet, &b.airbnb},
	} {
		grid, err := loadTemplate(ctx, store, reportID, t.title)
		if err != nil {
			return nil, err
		}
		*t.into = grid
	}

	return b, nil
}

func loadTemplate(ctx context.Context, store service.DocumentStore, reportID, title string) (templateGrid, error) {
	info, err := store.SheetInfo(ctx, reportID, title)
	if err != nil {
		return templateGrid{}, fmt.Errorf("failed to look up template %q: %w", title, err)
	}
	grid, err := store.ReadRange(ctx, reportID, title)
	if err != nil {
		return templateGrid{}, fmt.Errorf("failed to read template %q: %w", title, err)
	}
	if len(grid) == 0 {
		return templateGrid{}, fmt.Errorf("template %q has no data: %w", title, common.ErrNoData)
	}

	cols := 0
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}

	return templateGrid{
		sheetID: info.SheetID,
		rows:    int64(len(grid)),
		cols:    int64(cols),
		grid:    grid,
	}, nil
}

// BuildPropertyReport creates one property's sheet: body, totals and
// optional Airbnb blocks copied from the templates, transaction rows
// expanded in place of the body's placeholder row, formulas written at
// the block offsets. A body template without the placeholder token fails
// with ErrNotFound so the caller can skip just this property.
func (b *Builder) BuildPropertyReport(ctx context.Context, property model.Property, transactions []model.LedgerEntry, unitCount int) (GeneratedReport, error) {
	sheetName := property.Name

	sheetID, err := b.store.AddSheet(ctx, b.reportID, sheetName, -1)
	if err != nil {
		return GeneratedReport{}, fmt.Errorf("failed to create report sheet %q: %w", sheetName, err)
	}

	if err := b.pasteBlock(ctx, b.body, sheetID, 0); err != nil {
		return GeneratedReport{}, err
	}

	placeholderIdx, found := findPlaceholderRow(b.body.grid)
	if !found {
		return GeneratedReport{}, fmt.Errorf("no %q placeholder in body template for %q: %w",
			unitPlaceholder, sheetName, common.ErrNotFound)
	}

	n := int64(len(transactions))
	transStartRow := int64(placeholderIdx) + 1

	if n > 0 {
		if n > 1 {
			if err := b.store.InsertRows(ctx, b.reportID, sheetID, transStartRow, n-1); err != nil {
				return GeneratedReport{}, fmt.Errorf("failed to insert transaction rows: %w", err)
			}
		}

		// Stamp the placeholder row's formatting across the expanded block
		// before writing values into it.
		src := service.GridRect{SheetID: sheetID, StartRow: transStartRow - 1, EndRow: transStartRow, StartCol: 0, EndCol: b.body.cols}
		dst := service.GridRect{SheetID: sheetID, StartRow: transStartRow - 1, EndRow: transStartRow - 1 + n, StartCol: 0, EndCol: b.body.cols}
		if err := b.store.CopyPaste(ctx, b.reportID, src, dst, "PASTE_FORMAT"); err != nil {
			return GeneratedReport{}, fmt.Errorf("failed to format transaction rows: %w", err)
		}

		values := make([][]any, 0, n)
		for _, t := range transactions {
			values = append(values, []any{
				t.Unit, t.Credits, t.Fees, t.Debits, t.SecurityDeposits,
				t.Date.Format(rowDateFormat), t.Explanation,
				t.MarkupIncluded, t.MarkupRevenue, t.InternalNotes,
			})
		}
		anchor := fmt.Sprintf("'%s'!A%d", sheetName, transStartRow)
		if err := b.store.UpdateRange(ctx, b.reportID, anchor, values); err != nil {
			return GeneratedReport{}, fmt.Errorf("failed to write transaction rows: %w", err)
		}
	} else {
		row := fmt.Sprintf("'%s'!A%d:%s%d", sheetName, transStartRow, columnLetter(b.body.cols-1), transStartRow)
		if err := b.store.ClearRange(ctx, b.reportID, row); err != nil {
			return GeneratedReport{}, fmt.Errorf("failed to clear placeholder row: %w", err)
		}
	}

	// Inserted rows push everything below the body down; block start rows
	// account for that before the totals block is placed.
	bodyRows := b.body.rows
	if n > 1 {
		bodyRows += n - 1
	}
	totalsStartRow := bodyRows + 2
	if err := b.pasteBlock(ctx, b.totals, sheetID, totalsStartRow-1); err != nil {
		return GeneratedReport{}, err
	}

	var airbnbStartRow int64
	if property.HasAirbnb {
		airbnbStartRow = totalsStartRow + b.totals.rows + 1
		if err := b.pasteBlock(ctx, b.airbnb, sheetID, airbnbStartRow-1); err != nil {
			return GeneratedReport{}, err
		}
	}

	layout := Layout{
		TransStartRow:  transStartRow,
		TransEndRow:    transStartRow + n - 1,
		TotalsStartRow: totalsStartRow,
		AirbnbStartRow: airbnbStartRow,
	}
	formulas := Formulas(property, layout, unitCount)
	if err := b.store.WriteFormulas(ctx, b.reportID, sheetName, formulas); err != nil {
		return GeneratedReport{}, fmt.Errorf("failed to write report formulas: %w", err)
	}

	if err := b.store.AutoResizeColumns(ctx, b.reportID, sheetID, 0, b.body.cols); err != nil {
		return GeneratedReport{}, fmt.Errorf("failed to resize report columns: %w", err)
	}

	return GeneratedReport{
		PropertyName:   property.Name,
		SheetName:      sheetName,
		TotalsStartRow: totalsStartRow,
	}, nil
}

// BuildSummary creates the summary sheet at the front of the document with
// one formula row per generated property report.
func (b *Builder) BuildSummary(ctx context.Context, reports []GeneratedReport) error {
	sheetID, err := b.store.AddSheet(ctx, b.reportID, SummarySheetName, 0)
	if err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := b.store.UpdateRange(ctx, b.reportID, fmt.Sprintf("'%s'!A1", SummarySheetName), [][]any{summaryHeaders}); err != nil {
		return fmt.Errorf("failed to write summary headers: %w", err)
	}
	header := service.GridRect{SheetID: sheetID, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: int64(len(summaryHeaders))}
	if err := b.store.BoldRange(ctx, b.reportID, header); err != nil {
		return fmt.Errorf("failed to bold summary headers: %w", err)
	}

	rows := make([][]any, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, SummaryRow(r.PropertyName, r.SheetName, r.TotalsStartRow))
	}
	if len(rows) > 0 {
		if err := b.store.UpdateRange(ctx, b.reportID, fmt.Sprintf("'%s'!A2", SummarySheetName), rows); err != nil {
			return fmt.Errorf("failed to write summary rows: %w", err)
		}
	}

	if err := b.store.AutoResizeColumns(ctx, b.reportID, sheetID, 0, int64(len(summaryHeaders))); err != nil {
		return fmt.Errorf("failed to resize summary columns: %w", err)
	}
	return nil
}

func (b *Builder) pasteBlock(ctx context.Context, t templateGrid, dstSheetID, dstStartRow int64) error {
	src := service.GridRect{SheetID: t.sheetID, StartRow: 0, EndRow: t.rows, StartCol: 0, EndCol: t.cols}
	dst := service.GridRect{SheetID: dstSheetID, StartRow: dstStartRow, EndRow: dstStartRow + t.rows, StartCol: 0, EndCol: t.cols}
	if err := b.store.CopyPaste(ctx, b.reportID, src, dst, "PASTE_NORMAL"); err != nil {
		return fmt.Errorf("failed to copy template block: %w", err)
	}
	return nil
}

func findPlaceholderRow(grid [][]any) (int, bool) {
	for i, row := range grid {
		for _, cell := range row {
			if sheets.CellString(cell) == unitPlaceholder {
				return i, true
			}
		}
	}
	return 0, false
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(col int64) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}
