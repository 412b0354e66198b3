package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/stantpm/propflow/internal/service"
)

// MockStore is a mock implementation of DocumentStore for testing. Reads
// are served by ReadRangeFunc (or the Grids map keyed by A1 range); writes
// are recorded for assertions.
type MockStore struct {
	ReadRangeFunc func(spreadsheetID, a1Range string) ([][]any, error)
	Grids         map[string][][]any

	AppendErr  error
	UpdateErr  error
	FormulaErr error

	Appends      []AppendCall
	Updates      []UpdateCall
	Formulas     []FormulaCall
	Inserts      []InsertCall
	CopyPastes   []CopyPasteCall
	Clears       []string
	Created      []string
	AddedSheets  []string
	DeletedTabs  []string
	SheetCopies  []SheetCopyCall
	Resizes      []string
	BoldRects    []service.GridRect
	NumberFmts   []NumberFormatCall
	nextSheetID  int64
	sheetIDs     map[string]int64
	mu           sync.Mutex
}

// AppendCall records a single AppendRows invocation.
type AppendCall struct {
	SpreadsheetID string
	Range         string
	Values        [][]any
}

// UpdateCall records a single UpdateRange invocation.
type UpdateCall struct {
	SpreadsheetID string
	Range         string
	Values        [][]any
}

// FormulaCall records a single WriteFormulas invocation.
type FormulaCall struct {
	SpreadsheetID string
	SheetTitle    string
	Formulas      []service.CellFormula
}

// InsertCall records a single InsertRows invocation.
type InsertCall struct {
	SpreadsheetID string
	SheetID       int64
	StartRow      int64
	Count         int64
}

// CopyPasteCall records a single CopyPaste invocation.
type CopyPasteCall struct {
	SpreadsheetID string
	Src           service.GridRect
	Dst           service.GridRect
	PasteType     string
}

// SheetCopyCall records a single CopySheetTo invocation.
type SheetCopyCall struct {
	SrcSpreadsheetID string
	SheetTitle       string
	DstSpreadsheetID string
	NewTitle         string
}

// NumberFormatCall records a single SetNumberFormat invocation.
type NumberFormatCall struct {
	SpreadsheetID string
	Rect          service.GridRect
	FormatType    string
	Pattern       string
}

// NewMockStore creates a new mock document store.
func NewMockStore() *MockStore {
	return &MockStore{
		Grids:    make(map[string][][]any),
		sheetIDs: make(map[string]int64),
	}
}

// ReadRange implements DocumentStore.
func (m *MockStore) ReadRange(_ context.Context, spreadsheetID, a1Range string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadRangeFunc != nil {
		return m.ReadRangeFunc(spreadsheetID, a1Range)
	}
	return m.Grids[a1Range], nil
}

// UpdateRange implements DocumentStore.
func (m *MockStore) UpdateRange(_ context.Context, spreadsheetID, a1Range string, values [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates = append(m.Updates, UpdateCall{SpreadsheetID: spreadsheetID, Range: a1Range, Values: values})
	return nil
}

// AppendRows implements DocumentStore.
func (m *MockStore) AppendRows(_ context.Context, spreadsheetID, a1Range string, values [][]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return "", m.AppendErr
	}
	m.Appends = append(m.Appends, AppendCall{SpreadsheetID: spreadsheetID, Range: a1Range, Values: values})
	return fmt.Sprintf("%s!A2:J%d", a1Range, len(values)+1), nil
}

// ClearRange implements DocumentStore.
func (m *MockStore) ClearRange(_ context.Context, _ string, a1Range string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Clears = append(m.Clears, a1Range)
	return nil
}

// WriteFormulas implements DocumentStore.
func (m *MockStore) WriteFormulas(_ context.Context, spreadsheetID, sheetTitle string, formulas []service.CellFormula) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FormulaErr != nil {
		return m.FormulaErr
	}
	m.Formulas = append(m.Formulas, FormulaCall{SpreadsheetID: spreadsheetID, SheetTitle: sheetTitle, Formulas: formulas})
	return nil
}

// CreateSpreadsheet implements DocumentStore.
func (m *MockStore) CreateSpreadsheet(_ context.Context, title, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Created = append(m.Created, title)
	return fmt.Sprintf("mock-spreadsheet-%d", len(m.Created)), nil
}

// CopySheetTo implements DocumentStore.
func (m *MockStore) CopySheetTo(_ context.Context, srcSpreadsheetID, sheetTitle, dstSpreadsheetID, newTitle string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SheetCopies = append(m.SheetCopies, SheetCopyCall{
		SrcSpreadsheetID: srcSpreadsheetID,
		SheetTitle:       sheetTitle,
		DstSpreadsheetID: dstSpreadsheetID,
		NewTitle:         newTitle,
	})
	return m.assignSheetID(newTitle), nil
}

// AddSheet implements DocumentStore.
func (m *MockStore) AddSheet(_ context.Context, _ string, title string, _ int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddedSheets = append(m.AddedSheets, title)
	return m.assignSheetID(title), nil
}

// DeleteSheet implements DocumentStore.
func (m *MockStore) DeleteSheet(_ context.Context, _ string, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeletedTabs = append(m.DeletedTabs, title)
	return nil
}

// SheetInfo implements DocumentStore.
func (m *MockStore) SheetInfo(_ context.Context, _ string, title string) (service.SheetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return service.SheetInfo{
		Title:    title,
		SheetID:  m.assignSheetID(title),
		RowCount: 1000,
		ColCount: 26,
	}, nil
}

// CopyPaste implements DocumentStore.
func (m *MockStore) CopyPaste(_ context.Context, spreadsheetID string, src, dst service.GridRect, pasteType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CopyPastes = append(m.CopyPastes, CopyPasteCall{SpreadsheetID: spreadsheetID, Src: src, Dst: dst, PasteType: pasteType})
	return nil
}

// InsertRows implements DocumentStore.
func (m *MockStore) InsertRows(_ context.Context, spreadsheetID string, sheetID, startRow, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inserts = append(m.Inserts, InsertCall{SpreadsheetID: spreadsheetID, SheetID: sheetID, StartRow: startRow, Count: count})
	return nil
}

// SetNumberFormat implements DocumentStore.
func (m *MockStore) SetNumberFormat(_ context.Context, spreadsheetID string, rect service.GridRect, formatType, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NumberFmts = append(m.NumberFmts, NumberFormatCall{SpreadsheetID: spreadsheetID, Rect: rect, FormatType: formatType, Pattern: pattern})
	return nil
}

// BoldRange implements DocumentStore.
func (m *MockStore) BoldRange(_ context.Context, _ string, rect service.GridRect) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BoldRects = append(m.BoldRects, rect)
	return nil
}

// AutoResizeColumns implements DocumentStore.
func (m *MockStore) AutoResizeColumns(_ context.Context, spreadsheetID string, _, _, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Resizes = append(m.Resizes, spreadsheetID)
	return nil
}

func (m *MockStore) assignSheetID(title string) int64 {
	if id, ok := m.sheetIDs[title]; ok {
		return id
	}
	m.nextSheetID++
	m.sheetIDs[title] = m.nextSheetID
	return m.nextSheetID
}

// MockConverter is a mock implementation of FileConverter for testing.
type MockConverter struct {
	ConvertErr error
	Converted  []string
	Deleted    []string
	Moves      [][2]string
	Parent     string
	mu         sync.Mutex
}

// ConvertToSheet implements FileConverter.
func (m *MockConverter) ConvertToSheet(_ context.Context, fileID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConvertErr != nil {
		return "", m.ConvertErr
	}
	m.Converted = append(m.Converted, fileID)
	return "converted-" + fileID, nil
}

// Delete implements FileConverter.
func (m *MockConverter) Delete(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deleted = append(m.Deleted, fileID)
	return nil
}

// ParentFolder implements FileConverter.
func (m *MockConverter) ParentFolder(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Parent == "" {
		return "mock-folder", nil
	}
	return m.Parent, nil
}

// MoveToFolder implements FileConverter.
func (m *MockConverter) MoveToFolder(_ context.Context, fileID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Moves = append(m.Moves, [2]string{fileID, folderID})
	return nil
}
