package report

import (
	"testing"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formulaMap(formulas []service.CellFormula) map[string]string {
	m := make(map[string]string, len(formulas))
	for _, f := range formulas {
		m[f.Cell] = f.Formula
	}
	return m
}

func TestFormulas(t *testing.T) {
	property := model.Property{Name: "14 Main St", AdminFeeRate: 0.03}
	layout := Layout{TransStartRow: 2, TransEndRow: 4, TotalsStartRow: 7}

	got := formulaMap(Formulas(property, layout, 3))

	assert.Equal(t, "=SUM(B2:B4)", got["B9"])
	assert.Equal(t, "=SUM(C2:C4)", got["B10"])
	assert.Equal(t, "=SUM(I2:I4)", got["C10"])
	assert.Equal(t, "=(5 * 3) + (0.03 * B9)", got["C11"])
	assert.Equal(t, "=SUM(D2:D4) + C10 + C11", got["C9"])
	assert.Equal(t, "=C10 + C11 + B10", got["B15"])
	assert.Equal(t, "=(B9 + SUM(E2:E4)) - C9", got["B14"])
}

func TestFormulas_Airbnb(t *testing.T) {
	property := model.Property{
		Name:          "2536 Adams Ave",
		AdminFeeRate:  0.05,
		AirbnbFeeRate: 0.15,
		HasAirbnb:     true,
	}
	layout := Layout{TransStartRow: 2, TransEndRow: 4, TotalsStartRow: 7, AirbnbStartRow: 17}

	got := formulaMap(Formulas(property, layout, 2))

	// Income cell stays empty for manual entry; the fee and payouts
	// reference it.
	assert.Equal(t, "=B19 * 0.15", got["C19"])
	assert.Equal(t, "=C10 + C11 + B10 + C19", got["B15"])
	assert.Equal(t, "=(B9 + SUM(E2:E4)+B19) - C9", got["B14"])
}

func TestFormulas_AdminFeeOverride(t *testing.T) {
	override := 15.0
	property := model.Property{
		Name:             "2536 Adams Ave",
		AdminFeeRate:     0.05,
		AdminFeeOverride: &override,
	}
	layout := Layout{TransStartRow: 2, TransEndRow: 10, TotalsStartRow: 13}

	// The flat fee wins regardless of unit count or credit totals.
	for _, unitCount := range []int{0, 1, 40} {
		got := formulaMap(Formulas(property, layout, unitCount))
		assert.Equal(t, "=15", got["C17"])
	}
}

func TestFormulas_NoTransactions(t *testing.T) {
	property := model.Property{Name: "14 Main St", AdminFeeRate: 0.03}
	layout := Layout{TransStartRow: 2, TransEndRow: 1, TotalsStartRow: 4}

	got := formulaMap(Formulas(property, layout, 1))

	assert.Equal(t, "=SUM(0)", got["B6"])
	assert.Equal(t, "=SUM(0)", got["B7"])
	assert.Equal(t, "=SUM(0) + C7 + C8", got["C6"])
	assert.Equal(t, "=(B6 + SUM(0)) - C6", got["B11"])
}

func TestSummaryRow(t *testing.T) {
	// With the totals block at row 3 the summary references land at the
	// historical B10/B11/B6 coordinates.
	row := SummaryRow("14 Main St", "14 Main St", 3)
	require.Len(t, row, 6)

	assert.Equal(t, "14 Main St", row[0])
	assert.Equal(t, "='14 Main St'!B10", row[1])
	assert.Equal(t, "='14 Main St'!B11", row[2])
	assert.Equal(t, "='14 Main St'!B6", row[3])
	assert.Equal(t, `=SUMIF('14 Main St'!G:G, "New Lease Fee", '14 Main St'!D:D)`, row[4])
	assert.Equal(t, `=SUMIF('14 Main St'!G:G, "Renewal Fee", '14 Main St'!D:D)`, row[5])
}
