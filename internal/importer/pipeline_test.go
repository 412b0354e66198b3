package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory is an in-memory service.ImportHistory.
type fakeHistory struct {
	seen     map[string]bool
	recorded []model.LedgerEntry
	sources  []string
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{seen: make(map[string]bool)}
}

func (f *fakeHistory) Seen(_ context.Context, hash string) (bool, error) {
	return f.seen[hash], nil
}

func (f *fakeHistory) Record(_ context.Context, entries []model.LedgerEntry, source string) error {
	f.recorded = append(f.recorded, entries...)
	f.sources = append(f.sources, source)
	for i := range entries {
		f.seen[entries[i].GenerateHash()] = true
	}
	return nil
}

func (f *fakeHistory) Close() error { return nil }

func pipelineStore() *sheets.MockStore {
	store := sheets.NewMockStore()
	store.Grids["Configuration!A2:B"] = [][]any{
		{"Credits Document", "file-1"},
		{"Credits Date", "Txn Date"},
		{"Credits Amount", "Amt"},
		{"Credits Property", "Prop"},
		{"Credits Unit", "Unit#"},
		{"Credits Category", "Cat"},
		{"Credits Subcategory", "Sub"},
	}
	store.Grids["Properties"] = [][]any{
		{"Property", "Key", "Markup", "MAF", "Airbnb", "Has Airbnb"},
		{"14 Main St", "main", 0.1, 0.03, 0.0, false},
	}
	store.Grids["Transactions!1:1"] = [][]any{
		{"Date", "Property", "Unit", "Debit/Credit Explanation", "Security Deposits", "Fees", "Credits", "Debits", "Markup Included", "Markup Revenue", "Internal Notes"},
	}
	store.Grids[creditsReadRange] = [][]any{
		{"Monthly Credits Export"},
		{"Txn Date", "Amt", "Prop", "Unit#", "Cat", "Sub"},
		{"Sep 05, 2025", "$900.00", "14 Main Street", "2", "Rent", "–"},
		{"Sep 06, 2025", "45.00", "14 Main Street", "2", "Tenant Charges", "Utilities"},
		{"Total", "945.00", "", "", "", ""},
	}
	return store
}

func testPipeline(store *sheets.MockStore, converter *sheets.MockConverter, history *fakeHistory) *Pipeline {
	p := &Pipeline{
		Store:    store,
		Files:    converter,
		LedgerID: "ledger-id",
		Location: time.UTC,
	}
	if history != nil {
		p.History = history
	}
	return p
}

func TestPipeline_Run(t *testing.T) {
	store := pipelineStore()
	converter := &sheets.MockConverter{}

	result, err := testPipeline(store, converter, nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.HeaderFound)
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 2, result.RowsImported)
	assert.Zero(t, result.Duplicates)

	// The temporary converted sheet is always cleaned up.
	assert.Equal(t, []string{"file-1"}, converter.Converted)
	assert.Equal(t, []string{"converted-file-1"}, converter.Deleted)

	require.Len(t, store.Appends, 1)
	rows := store.Appends[0].Values
	require.Len(t, rows, 2)
	// Registry resolution replaced the free-text name.
	assert.Equal(t, "14 Main St", rows[0][1])
	assert.Equal(t, 900.0, rows[0][6])
	assert.Equal(t, 45.0, rows[1][5])
	assert.Equal(t, "Tenant Charges - Utilities", rows[1][3])
}

func TestPipeline_Run_SkipsSeenRows(t *testing.T) {
	store := pipelineStore()
	history := newFakeHistory()

	p := testPipeline(store, &sheets.MockConverter{}, history)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.RowsImported)

	// Re-running the same file imports nothing new.
	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.RowsImported)
	assert.Equal(t, 2, second.Duplicates)

	require.Len(t, store.Appends, 1)
	assert.Equal(t, []string{"file-1"}, history.sources)
}

func TestPipeline_Run_MissingCreditsDocument(t *testing.T) {
	store := pipelineStore()
	store.Grids["Configuration!A2:B"] = [][]any{
		{"Credits Date", "Txn Date"},
	}
	converter := &sheets.MockConverter{}

	_, err := testPipeline(store, converter, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Empty(t, converter.Converted)
}

func TestPipeline_Run_NoHeaderRow(t *testing.T) {
	store := pipelineStore()
	store.Grids[creditsReadRange] = [][]any{
		{"nothing", "recognizable", "here"},
	}

	result, err := testPipeline(store, &sheets.MockConverter{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.HeaderFound)
	assert.Zero(t, result.RowsImported)
	assert.Empty(t, store.Appends)
}

func TestPipeline_Run_AddsRawDataSheet(t *testing.T) {
	store := pipelineStore()
	store.Grids["Configuration!A2:B"] = append(store.Grids["Configuration!A2:B"],
		[]any{"Add Credits Sheet", true})

	_, err := testPipeline(store, &sheets.MockConverter{}, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.AddedSheets, 1)
	assert.True(t, strings.HasPrefix(store.AddedSheets[0], "Credits Import "))

	var wroteRaw bool
	for _, u := range store.Updates {
		if strings.HasPrefix(u.Range, "'Credits Import ") {
			wroteRaw = true
			assert.Len(t, u.Values, 5)
		}
	}
	assert.True(t, wroteRaw)
}
