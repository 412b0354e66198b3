package report

import (
	"fmt"
	"strconv"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/service"
)

// Layout describes where the structural blocks of one property report sheet
// landed. Rows are 1-based sheet rows. TransStartRow > TransEndRow means
// the report has no transactions. AirbnbStartRow is 0 when the property has
// no Airbnb block.
type Layout struct {
	TransStartRow  int64
	TransEndRow    int64
	TotalsStartRow int64
	AirbnbStartRow int64
}

// Formula cell offsets within the totals block. The summary sheet reads
// the same offsets, so they change together or not at all.
const (
	totalCreditsOffset = 2
	totalFeesOffset    = 3
	totalDebitsOffset  = 2
	totalMarkupOffset  = 3
	totalMAFOffset     = 4
	dueToOwnersOffset  = 7
	toManagerOffset    = 8
	airbnbIncomeOffset = 2
)

// Formulas derives the totals-block formula cells for one property report.
// Every cell is written as a formula referencing the other computed cells,
// never a pre-evaluated value, so manual edits to the raw inputs propagate.
func Formulas(property model.Property, layout Layout, unitCount int) []service.CellFormula {
	hasTransactions := layout.TransStartRow <= layout.TransEndRow
	sumRange := func(col string) string {
		if !hasTransactions {
			return "0"
		}
		return fmt.Sprintf("%s%d:%s%d", col, layout.TransStartRow, col, layout.TransEndRow)
	}

	totalCreditsCell := fmt.Sprintf("B%d", layout.TotalsStartRow+totalCreditsOffset)
	totalFeesCell := fmt.Sprintf("B%d", layout.TotalsStartRow+totalFeesOffset)
	totalDebitsCell := fmt.Sprintf("C%d", layout.TotalsStartRow+totalDebitsOffset)
	totalMarkupCell := fmt.Sprintf("C%d", layout.TotalsStartRow+totalMarkupOffset)
	totalMAFCell := fmt.Sprintf("C%d", layout.TotalsStartRow+totalMAFOffset)
	dueToOwnersCell := fmt.Sprintf("B%d", layout.TotalsStartRow+dueToOwnersOffset)
	toManagerCell := fmt.Sprintf("B%d", layout.TotalsStartRow+toManagerOffset)

	mafFormula := fmt.Sprintf("=(5 * %d) + (%s * %s)", unitCount, formatRate(property.AdminFeeRate), totalCreditsCell)
	if property.AdminFeeOverride != nil {
		mafFormula = "=" + formatRate(*property.AdminFeeOverride)
	}

	formulas := []service.CellFormula{
		{Cell: totalCreditsCell, Formula: fmt.Sprintf("=SUM(%s)", sumRange("B"))},
		{Cell: totalFeesCell, Formula: fmt.Sprintf("=SUM(%s)", sumRange("C"))},
		{Cell: totalMarkupCell, Formula: fmt.Sprintf("=SUM(%s)", sumRange("I"))},
		{Cell: totalMAFCell, Formula: mafFormula},
		{Cell: totalDebitsCell, Formula: fmt.Sprintf("=SUM(%s) + %s + %s", sumRange("D"), totalMarkupCell, totalMAFCell)},
	}

	preOwnerTotal := fmt.Sprintf("%s + SUM(%s)", totalCreditsCell, sumRange("E"))
	if property.HasAirbnb && layout.AirbnbStartRow > 0 {
		// Airbnb income is entered by hand, so the formulas reference the
		// still-empty income cell.
		airbnbIncomeCell := fmt.Sprintf("B%d", layout.AirbnbStartRow+airbnbIncomeOffset)
		airbnbFeeCell := fmt.Sprintf("C%d", layout.AirbnbStartRow+airbnbIncomeOffset)
		preOwnerTotal += "+" + airbnbIncomeCell

		formulas = append(formulas,
			service.CellFormula{Cell: airbnbFeeCell, Formula: fmt.Sprintf("=%s * %s", airbnbIncomeCell, formatRate(property.AirbnbFeeRate))},
			service.CellFormula{Cell: toManagerCell, Formula: fmt.Sprintf("=%s + %s + %s + %s", totalMarkupCell, totalMAFCell, totalFeesCell, airbnbFeeCell)},
		)
	} else {
		formulas = append(formulas, service.CellFormula{
			Cell:    toManagerCell,
			Formula: fmt.Sprintf("=%s + %s + %s", totalMarkupCell, totalMAFCell, totalFeesCell),
		})
	}

	formulas = append(formulas, service.CellFormula{
		Cell:    dueToOwnersCell,
		Formula: fmt.Sprintf("=(%s) - %s", preOwnerTotal, totalDebitsCell),
	})

	return formulas
}

// SummaryRow builds one summary-sheet row for a generated report: the
// building name followed by five formulas referencing the property's own
// sheet at the totals-block offsets above.
func SummaryRow(propertyName, sheetName string, totalsStartRow int64) []any {
	return []any{
		propertyName,
		fmt.Sprintf("='%s'!B%d", sheetName, totalsStartRow+dueToOwnersOffset),
		fmt.Sprintf("='%s'!B%d", sheetName, totalsStartRow+toManagerOffset),
		fmt.Sprintf("='%s'!B%d", sheetName, totalsStartRow+totalFeesOffset),
		fmt.Sprintf("=SUMIF('%s'!G:G, \"New Lease Fee\", '%s'!D:D)", sheetName, sheetName),
		fmt.Sprintf("=SUMIF('%s'!G:G, \"Renewal Fee\", '%s'!D:D)", sheetName, sheetName),
	}
}

// formatRate renders a rate or flat amount without trailing zeros, the way
// it should read inside a formula (0.03, 15).
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
