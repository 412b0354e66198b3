package registry

import (
	"context"
	"testing"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Match(t *testing.T) {
	reg := New([]model.Property{
		{Name: "2536 Adams Ave", KeyPattern: "Adams,2536"},
		{Name: "14 Main St", KeyPattern: "main"},
		{Name: "Empty Pattern", KeyPattern: ""},
	})

	tests := []struct {
		name     string
		freeText string
		want     string
		found    bool
	}{
		{
			name:     "all tokens present",
			freeText: "2536 Adams Ave Unit 3",
			want:     "2536 Adams Ave",
			found:    true,
		},
		{
			name:     "match is case-insensitive",
			freeText: "2536 ADAMS AVE UNIT 3",
			want:     "2536 Adams Ave",
			found:    true,
		},
		{
			name:     "missing token fails",
			freeText: "Adams Blvd Unit 9",
			found:    false,
		},
		{
			name:     "single token pattern matches",
			freeText: "14 Main St",
			want:     "14 Main St",
			found:    true,
		},
		{
			name:     "nothing matches unrelated text",
			freeText: "99 Elsewhere Blvd",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Match(tt.freeText)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				require.NotNil(t, p)
				assert.Equal(t, tt.want, p.Name)
			}
		})
	}
}

func TestRegistry_Match_EmptyPatternNeverMatches(t *testing.T) {
	reg := New([]model.Property{
		{Name: "Empty Pattern", KeyPattern: ""},
	})

	_, ok := reg.Match("anything at all")
	assert.False(t, ok)
}

func TestRegistry_Match_FirstMatchWins(t *testing.T) {
	reg := New([]model.Property{
		{Name: "First", KeyPattern: "oak"},
		{Name: "Second", KeyPattern: "oak"},
	})

	p, ok := reg.Match("100 Oak Street")
	require.True(t, ok)
	assert.Equal(t, "First", p.Name)
}

func TestLoad(t *testing.T) {
	store := sheets.NewMockStore()
	store.Grids["Properties"] = [][]any{
		{"Property", "Key", "Markup", "MAF", "Airbnb", "Has Airbnb", "MAF Override"},
		{"2536 Adams Ave", "Adams,2536", 0.1, 0.03, 0.15, false, 15.0},
		{"14 Main St", "main", 0.12, 0.05, 0.2, true, ""},
	}

	reg, err := Load(context.Background(), store, "ledger-id")
	require.NoError(t, err)

	props := reg.Properties()
	require.Len(t, props, 2)

	assert.Equal(t, "2536 Adams Ave", props[0].Name)
	assert.InDelta(t, 0.1, props[0].MarkupRate, 1e-9)
	require.NotNil(t, props[0].AdminFeeOverride)
	assert.InDelta(t, 15.0, *props[0].AdminFeeOverride, 1e-9)

	assert.Equal(t, "14 Main St", props[1].Name)
	assert.True(t, props[1].HasAirbnb)
	assert.Nil(t, props[1].AdminFeeOverride)
}

func TestLoad_MissingColumns(t *testing.T) {
	store := sheets.NewMockStore()
	store.Grids["Properties"] = [][]any{
		{"Property", "Key", "Markup"},
		{"2536 Adams Ave", "Adams,2536", 0.1},
	}

	_, err := Load(context.Background(), store, "ledger-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
}
