package report

import (
	"context"
	"testing"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateStore() *sheets.MockStore {
	store := sheets.NewMockStore()
	store.Grids[BodyTemplateSheet] = [][]any{
		{"Unit", "Credits", "Fees", "Debits", "Security Deposits", "Date", "Debit/Credit Explanation", "Markup Included", "Markup Revenue", "Internal Notes"},
		{"[UNIT NUMBER]", "", "", "", "", "", "", "", "", ""},
	}
	store.Grids[TotalsTemplateSheet] = [][]any{
		{"Totals"}, {""}, {"Credits"}, {"Fees"}, {"MAF"}, {""}, {""}, {"Due to Owners"}, {"To PM"},
	}
	store.Grids[AirbnbTemplateSheet] = [][]any{
		{"Airbnb"}, {""}, {"Income"},
	}
	return store
}

func testEntries(n int) []model.LedgerEntry {
	date := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	entries := make([]model.LedgerEntry, n)
	for i := range entries {
		entries[i] = model.LedgerEntry{
			Date:        date.AddDate(0, 0, i),
			Property:    "14 Main St",
			Unit:        "1",
			Explanation: "Rent",
			Credits:     900,
		}
	}
	return entries
}

func TestBuilder_BuildPropertyReport(t *testing.T) {
	store := templateStore()
	b, err := NewBuilder(context.Background(), store, "report-id")
	require.NoError(t, err)

	property := model.Property{Name: "14 Main St", AdminFeeRate: 0.03}
	generated, err := b.BuildPropertyReport(context.Background(), property, testEntries(3), 2)
	require.NoError(t, err)

	assert.Equal(t, "14 Main St", generated.SheetName)
	assert.Contains(t, store.AddedSheets, "14 Main St")

	// Two extra rows expand the placeholder into three transaction rows.
	require.Len(t, store.Inserts, 1)
	assert.Equal(t, int64(2), store.Inserts[0].StartRow)
	assert.Equal(t, int64(2), store.Inserts[0].Count)

	// Body paste, placeholder format stamp, totals paste.
	require.Len(t, store.CopyPastes, 3)
	assert.Equal(t, "PASTE_NORMAL", store.CopyPastes[0].PasteType)
	format := store.CopyPastes[1]
	assert.Equal(t, "PASTE_FORMAT", format.PasteType)
	assert.Equal(t, int64(1), format.Dst.StartRow)
	assert.Equal(t, int64(4), format.Dst.EndRow)

	// Transaction values land at the placeholder row in body column order.
	require.Len(t, store.Updates, 1)
	assert.Equal(t, "'14 Main St'!A2", store.Updates[0].Range)
	require.Len(t, store.Updates[0].Values, 3)
	first := store.Updates[0].Values[0]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, 900.0, first[1])
	assert.Equal(t, "9/5/2025", first[5])
	assert.Equal(t, "Rent", first[6])

	// Two inserted rows push the totals block from row 4 to row 6.
	assert.Equal(t, int64(6), generated.TotalsStartRow)
	totalsPaste := store.CopyPastes[2]
	assert.Equal(t, int64(5), totalsPaste.Dst.StartRow)

	require.Len(t, store.Formulas, 1)
	got := formulaMap(store.Formulas[0].Formulas)
	assert.Equal(t, "=SUM(B2:B4)", got["B8"])
	assert.Equal(t, "=(5 * 2) + (0.03 * B8)", got["C10"])

	assert.NotEmpty(t, store.Resizes)
}

func TestBuilder_BuildPropertyReport_NoTransactions(t *testing.T) {
	store := templateStore()
	b, err := NewBuilder(context.Background(), store, "report-id")
	require.NoError(t, err)

	property := model.Property{Name: "14 Main St", AdminFeeRate: 0.03}
	generated, err := b.BuildPropertyReport(context.Background(), property, nil, 0)
	require.NoError(t, err)

	// Placeholder row is cleared, nothing inserted, totals stay at row 4.
	assert.Contains(t, store.Clears, "'14 Main St'!A2:J2")
	assert.Empty(t, store.Inserts)
	assert.Empty(t, store.Updates)
	assert.Equal(t, int64(4), generated.TotalsStartRow)

	require.Len(t, store.Formulas, 1)
	got := formulaMap(store.Formulas[0].Formulas)
	assert.Equal(t, "=SUM(0)", got["B6"])
}

func TestBuilder_BuildPropertyReport_AirbnbBlock(t *testing.T) {
	store := templateStore()
	b, err := NewBuilder(context.Background(), store, "report-id")
	require.NoError(t, err)

	property := model.Property{Name: "2536 Adams Ave", AdminFeeRate: 0.05, AirbnbFeeRate: 0.15, HasAirbnb: true}
	_, err = b.BuildPropertyReport(context.Background(), property, testEntries(1), 1)
	require.NoError(t, err)

	// Body, format stamp, totals, airbnb.
	require.Len(t, store.CopyPastes, 4)
	// Totals at row 4 (body 2 rows, single transaction), airbnb one
	// spacing row below the 9-row totals block.
	airbnbPaste := store.CopyPastes[3]
	assert.Equal(t, int64(13), airbnbPaste.Dst.StartRow)

	got := formulaMap(store.Formulas[0].Formulas)
	assert.Equal(t, "=B16 * 0.15", got["C16"])
}

func TestBuilder_BuildPropertyReport_MissingPlaceholder(t *testing.T) {
	store := templateStore()
	store.Grids[BodyTemplateSheet] = [][]any{
		{"Unit", "Credits"},
		{"no placeholder here", ""},
	}

	b, err := NewBuilder(context.Background(), store, "report-id")
	require.NoError(t, err)

	property := model.Property{Name: "14 Main St"}
	_, err = b.BuildPropertyReport(context.Background(), property, testEntries(2), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, store.Formulas)
}

func TestBuilder_BuildSummary(t *testing.T) {
	store := templateStore()
	b, err := NewBuilder(context.Background(), store, "report-id")
	require.NoError(t, err)

	err = b.BuildSummary(context.Background(), []GeneratedReport{
		{PropertyName: "14 Main St", SheetName: "14 Main St", TotalsStartRow: 4},
		{PropertyName: "2536 Adams Ave", SheetName: "2536 Adams Ave", TotalsStartRow: 6},
	})
	require.NoError(t, err)

	assert.Contains(t, store.AddedSheets, SummarySheetName)
	require.Len(t, store.Updates, 2)

	header := store.Updates[0]
	assert.Equal(t, "'Summary Page'!A1", header.Range)
	assert.Equal(t, "Building", header.Values[0][0])
	require.Len(t, store.BoldRects, 1)

	rows := store.Updates[1]
	assert.Equal(t, "'Summary Page'!A2", rows.Range)
	require.Len(t, rows.Values, 2)
	assert.Equal(t, "='14 Main St'!B11", rows.Values[0][1])
	assert.Equal(t, "='2536 Adams Ave'!B13", rows.Values[1][1])
}
