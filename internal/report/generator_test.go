package report

import (
	"context"
	"testing"
	"time"

	"github.com/stantpm/propflow/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatorStore() *sheets.MockStore {
	store := templateStore()
	store.Grids["Properties"] = [][]any{
		{"Property", "Key", "Markup", "MAF", "Airbnb", "Has Airbnb"},
		{"14 Main St", "main", 0.1, 0.03, 0.0, false},
	}
	store.Grids["Transactions"] = [][]any{
		{"Date", "Property", "Unit", "Debit/Credit Explanation", "Security Deposits", "Fees", "Credits", "Debits", "Markup Included", "Markup Revenue", "Internal Notes"},
		{"9/5/2025", "14 Main St", "1", "Rent", "", "", 900.0, "", "", "", ""},
		{"9/25/2025", "14 Main St", "1", "Rent", "", "", 900.0, "", "", "", ""},
	}
	return store
}

func TestGenerator_Run(t *testing.T) {
	store := generatorStore()
	converter := &sheets.MockConverter{}

	g := &Generator{
		Store:    store,
		Files:    converter,
		LedgerID: "ledger-id",
		Location: time.UTC,
	}

	result, err := g.Run(context.Background(), "Sep 2025")
	require.NoError(t, err)

	assert.Equal(t, "Monthly Reports - Sep 2025", result.Name)
	assert.Equal(t, "mock-spreadsheet-1", result.SpreadsheetID)
	require.Len(t, result.Generated, 1)
	assert.Equal(t, "14 Main St", result.Generated[0].SheetName)
	assert.Empty(t, result.Skipped)

	// Templates are copied into the new document, the default sheet goes.
	assert.Len(t, store.SheetCopies, 3)
	assert.Contains(t, store.DeletedTabs, "Sheet1")

	assert.Contains(t, store.AddedSheets, "14 Main St")
	assert.Contains(t, store.AddedSheets, SummarySheetName)

	// The report lands next to the ledger document.
	require.Len(t, converter.Moves, 1)
	assert.Equal(t, [2]string{"mock-spreadsheet-1", "mock-folder"}, converter.Moves[0])

	// Only the in-window transaction reaches the report sheet.
	var wrote bool
	for _, u := range store.Updates {
		if u.Range == "'14 Main St'!A2" {
			wrote = true
			assert.Len(t, u.Values, 1)
		}
	}
	assert.True(t, wrote)
}

func TestGenerator_Run_WindowEndUsesConfiguredZone(t *testing.T) {
	store := generatorStore()
	store.Grids["Transactions"] = [][]any{
		{"Date", "Property", "Unit", "Debit/Credit Explanation", "Security Deposits", "Fees", "Credits", "Debits", "Markup Included", "Markup Revenue", "Internal Notes"},
		{"9/5/2025", "14 Main St", "1", "Rent", "", "", 900.0, "", "", "", ""},
		{"9/20/2025", "14 Main St", "1", "Rent", "", "", 900.0, "", "", "", ""},
	}

	// Ledger dates and the window end must share the configured zone, no
	// matter what the host zone is: Sep 20 sits exactly on the exclusive
	// boundary and leaks in if the row parses in an earlier zone.
	g := &Generator{
		Store:    store,
		LedgerID: "ledger-id",
		Location: time.FixedZone("UTC-4", -4*60*60),
	}

	result, err := g.Run(context.Background(), "Sep 2025")
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)

	var wrote bool
	for _, u := range store.Updates {
		if u.Range == "'14 Main St'!A2" {
			wrote = true
			require.Len(t, u.Values, 1)
			assert.Equal(t, "9/5/2025", u.Values[0][5])
		}
	}
	assert.True(t, wrote)
}

func TestGenerator_Run_InvalidMonth(t *testing.T) {
	store := generatorStore()
	g := &Generator{Store: store, LedgerID: "ledger-id", Location: time.UTC}

	_, err := g.Run(context.Background(), "not a month")
	require.Error(t, err)
	// Nothing is created before the input validates.
	assert.Empty(t, store.Created)
}

func TestGenerator_Run_SkipsPropertyWithoutPlaceholder(t *testing.T) {
	store := generatorStore()
	store.Grids[BodyTemplateSheet] = [][]any{
		{"Unit", "Credits", "Fees", "Debits", "Security Deposits", "Date", "Debit/Credit Explanation", "Markup Included", "Markup Revenue", "Internal Notes"},
		{"nothing to expand"},
	}

	g := &Generator{Store: store, LedgerID: "ledger-id", Location: time.UTC}

	result, err := g.Run(context.Background(), "Sep 2025")
	require.NoError(t, err)

	assert.Empty(t, result.Generated)
	assert.Equal(t, []string{"14 Main St"}, result.Skipped)
	// No generated reports means no summary sheet.
	assert.NotContains(t, store.AddedSheets, SummarySheetName)
}
