package report

import (
	"testing"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCountDistinctUnits(t *testing.T) {
	entries := []model.LedgerEntry{
		{Property: "14 Main St", Unit: "1"},
		{Property: "14 Main St", Unit: "2"},
		{Property: "14 Main St", Unit: "2"}, // duplicate collapses
		{Property: "2536 Adams Ave", Unit: "A"},
		{Property: "2536 Adams Ave", Unit: ""}, // no unit: ignored
		{Property: "", Unit: "9"},              // no property: ignored
	}

	counts := CountDistinctUnits(entries)
	assert.Equal(t, map[string]int{
		"14 Main St":     2,
		"2536 Adams Ave": 1,
	}, counts)
}

func TestCountDistinctUnits_Empty(t *testing.T) {
	assert.Empty(t, CountDistinctUnits(nil))
}
