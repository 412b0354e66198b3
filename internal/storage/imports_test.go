package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "propflow.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSeenAndRecord(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	entry := model.LedgerEntry{
		Date:        time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC),
		Property:    "14 Main St",
		Unit:        "2",
		Explanation: "Rent",
		Credits:     900,
	}

	seen, err := s.Seen(ctx, entry.GenerateHash())
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Record(ctx, []model.LedgerEntry{entry}, "credits.xlsx"))

	seen, err = s.Seen(ctx, entry.GenerateHash())
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRecord_DuplicateHashesIgnored(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	entry := model.LedgerEntry{
		Date:     time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC),
		Property: "14 Main St",
		Credits:  900,
	}

	require.NoError(t, s.Record(ctx, []model.LedgerEntry{entry}, "first.xlsx"))
	require.NoError(t, s.Record(ctx, []model.LedgerEntry{entry}, "second.xlsx"))

	seen, err := s.Seen(ctx, entry.GenerateHash())
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRuns(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	entries := []model.LedgerEntry{
		{Date: time.Now(), Property: "14 Main St", Credits: 900},
		{Date: time.Now(), Property: "14 Main St", Credits: 450},
	}
	require.NoError(t, s.Record(ctx, entries, "credits.xlsx"))
	require.NoError(t, s.Record(ctx, nil, "empty.xlsx"))

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "empty.xlsx", runs[0].Source)
	assert.Equal(t, 0, runs[0].RowCount)
	assert.Equal(t, "credits.xlsx", runs[1].Source)
	assert.Equal(t, 2, runs[1].RowCount)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := testStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
}
