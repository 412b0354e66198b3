// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/stantpm/propflow/internal/model"
)

// CellFormula pairs an A1 cell reference (without sheet prefix) with the
// formula text to write there.
type CellFormula struct {
	Cell    string
	Formula string
}

// GridRect identifies a rectangular block of cells on a single sheet.
// Row and column indexes are zero-based; End indexes are exclusive.
type GridRect struct {
	SheetID  int64
	StartRow int64
	EndRow   int64
	StartCol int64
	EndCol   int64
}

// SheetInfo describes a single sheet within a spreadsheet document.
type SheetInfo struct {
	Title    string
	SheetID  int64
	RowCount int64
	ColCount int64
}

// DocumentStore is the spreadsheet document store collaborator. All reads
// and writes are single request/response operations with no partial results.
type DocumentStore interface {
	// ReadRange returns the cell grid for an A1 range ("Transactions!A1:J").
	ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]any, error)
	// UpdateRange writes a grid starting at the range's top-left cell.
	// Values are interpreted as if typed by a user (formulas included).
	UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]any) error
	// AppendRows appends a contiguous block after the last data row of the
	// range's table and returns the A1 range that was written.
	AppendRows(ctx context.Context, spreadsheetID, a1Range string, values [][]any) (string, error)
	// ClearRange removes values from a range, leaving formatting intact.
	ClearRange(ctx context.Context, spreadsheetID, a1Range string) error
	// WriteFormulas writes formula cells on the named sheet in one batch.
	WriteFormulas(ctx context.Context, spreadsheetID, sheetTitle string, formulas []CellFormula) error

	// CreateSpreadsheet creates a new document and returns its ID.
	CreateSpreadsheet(ctx context.Context, title, timeZone string) (string, error)
	// CopySheetTo copies a sheet into another document under a new title
	// and returns the created sheet's ID.
	CopySheetTo(ctx context.Context, srcSpreadsheetID, sheetTitle, dstSpreadsheetID, newTitle string) (int64, error)
	// AddSheet inserts a sheet at the given index (-1 appends).
	AddSheet(ctx context.Context, spreadsheetID, title string, index int64) (int64, error)
	// DeleteSheet removes a sheet by title.
	DeleteSheet(ctx context.Context, spreadsheetID, title string) error
	// SheetInfo looks up a sheet's ID and grid dimensions by title.
	SheetInfo(ctx context.Context, spreadsheetID, title string) (SheetInfo, error)

	// CopyPaste copies a block to a destination anchor on the same document.
	// pasteType is PASTE_NORMAL or PASTE_FORMAT.
	CopyPaste(ctx context.Context, spreadsheetID string, src, dst GridRect, pasteType string) error
	// InsertRows inserts count blank rows before startRow (zero-based).
	InsertRows(ctx context.Context, spreadsheetID string, sheetID, startRow, count int64) error
	// SetNumberFormat applies a number format pattern to a block.
	SetNumberFormat(ctx context.Context, spreadsheetID string, rect GridRect, formatType, pattern string) error
	// BoldRange applies bold text formatting to a block.
	BoldRange(ctx context.Context, spreadsheetID string, rect GridRect) error
	// AutoResizeColumns resizes columns [startCol, endCol) to fit content.
	AutoResizeColumns(ctx context.Context, spreadsheetID string, sheetID, startCol, endCol int64) error
}

// FileConverter is the file conversion service collaborator: converts an
// uploaded spreadsheet-like file into a queryable sheet document and cleans
// up afterwards.
type FileConverter interface {
	// ConvertToSheet copies the file as a native spreadsheet document and
	// returns the new document's ID.
	ConvertToSheet(ctx context.Context, fileID string) (string, error)
	// Delete permanently removes a file.
	Delete(ctx context.Context, fileID string) error
	// ParentFolder returns the ID of the file's containing folder.
	ParentFolder(ctx context.Context, fileID string) (string, error)
	// MoveToFolder places a file into the given folder.
	MoveToFolder(ctx context.Context, fileID, folderID string) error
}

// ImportHistory records which rows have already been appended to the ledger
// so that re-running an import does not duplicate them.
type ImportHistory interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Record(ctx context.Context, entries []model.LedgerEntry, source string) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
