// Package importer normalizes tenant-credit export files into ledger rows:
// it locates the export's header row by label matching, filters and
// normalizes data rows, and classifies each row into the ledger's
// security-deposit, fee or credit bucket.
package importer

import (
	"log/slog"
	"strings"
	"time"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/registry"
	"github.com/stantpm/propflow/internal/settings"
	"github.com/stantpm/propflow/internal/sheets"
)

// exportDateFormats are the date layouts the external export writes
// ("MMM dd, yyyy"); some exports drop the leading zero ("Sep 5, 2025").
var exportDateFormats = []string{"Jan 02, 2006", "Jan 2, 2006"}

// noUnitPlaceholder is the dash the export writes for rows without a unit.
const noUnitPlaceholder = "–"

// headerMatchThreshold is the minimum number of configured labels that must
// appear in a single row for it to be taken as the header row.
const headerMatchThreshold = 4

// Labels holds the configured column labels of the export file.
type Labels struct {
	Date        string
	Amount      string
	Property    string
	Unit        string
	Category    string
	Subcategory string
}

// LabelsFromSettings reads the six column labels from the configuration
// table. Unset labels stay empty and simply never match.
func LabelsFromSettings(res *settings.Resolver) Labels {
	return Labels{
		Date:        res.Get("Credits Date"),
		Amount:      res.Get("Credits Amount"),
		Property:    res.Get("Credits Property"),
		Unit:        res.Get("Credits Unit"),
		Category:    res.Get("Credits Category"),
		Subcategory: res.Get("Credits Subcategory"),
	}
}

// Schema records, per field, which column of the export holds it.
// -1 means the label was not found.
type Schema struct {
	Date        int
	Amount      int
	Property    int
	Unit        int
	Category    int
	Subcategory int
}

func emptySchema() Schema {
	return Schema{Date: -1, Amount: -1, Property: -1, Unit: -1, Category: -1, Subcategory: -1}
}

// LocateHeaderRow scans rows top to bottom and returns the index of the
// first row containing at least four of the six configured labels as exact
// cell values, along with the column positions recorded for each label.
// ok is false when no row reaches the threshold; the import then yields
// zero rows.
func LocateHeaderRow(rows [][]any, labels Labels) (index int, schema Schema, ok bool) {
	wanted := []struct {
		label string
		col   *int
	}{
		{labels.Date, nil},
		{labels.Amount, nil},
		{labels.Property, nil},
		{labels.Unit, nil},
		{labels.Category, nil},
		{labels.Subcategory, nil},
	}

	for i, row := range rows {
		schema = emptySchema()
		wanted[0].col = &schema.Date
		wanted[1].col = &schema.Amount
		wanted[2].col = &schema.Property
		wanted[3].col = &schema.Unit
		wanted[4].col = &schema.Category
		wanted[5].col = &schema.Subcategory

		found := 0
		for _, w := range wanted {
			if w.label == "" {
				continue
			}
			for col, cell := range row {
				if sheets.CellString(cell) == w.label {
					*w.col = col
					found++
					break
				}
			}
		}

		if found >= headerMatchThreshold {
			return i, schema, true
		}
	}

	return 0, emptySchema(), false
}

// NormalizeRows converts every row after the header into a canonical credit
// row. Footer rows ("Total..."), rows missing a date, amount or property,
// and rows with unparseable dates are skipped with a log line.
func NormalizeRows(rows [][]any, headerIndex int, schema Schema, loc *time.Location) []model.CreditRow {
	if loc == nil {
		loc = time.Local
	}

	var out []model.CreditRow
	for i := headerIndex + 1; i < len(rows); i++ {
		row := rows[i]

		dateText := sheets.CellString(cellAt(row, schema.Date))
		if dateText == "" || strings.HasPrefix(dateText, "Total") {
			continue
		}
		if sheets.CellString(cellAt(row, schema.Amount)) == "" || sheets.CellString(cellAt(row, schema.Property)) == "" {
			continue
		}

		date, ok := parseExportDate(dateText, loc)
		if !ok {
			slog.Warn("skipping row with unparseable date", "row", i+1, "date", dateText)
			continue
		}

		unit := sheets.CellString(cellAt(row, schema.Unit))
		if unit == noUnitPlaceholder {
			unit = ""
		}

		out = append(out, model.CreditRow{
			Date:        date,
			Amount:      ParseCurrency(cellAt(row, schema.Amount)),
			Property:    sheets.CellString(cellAt(row, schema.Property)),
			Unit:        unit,
			Category:    sheets.CellString(cellAt(row, schema.Category)),
			Subcategory: sheets.CellString(cellAt(row, schema.Subcategory)),
		})
	}

	return out
}

// BuildLedgerEntries classifies normalized credit rows into ledger entries.
// Administrative noise rows are dropped; free-text property names are
// resolved against the registry, keeping the original text verbatim when
// nothing matches.
func BuildLedgerEntries(rows []model.CreditRow, reg *registry.Registry) []model.LedgerEntry {
	var entries []model.LedgerEntry
	for _, row := range rows {
		entry, keep := BuildLedgerEntry(row, reg)
		if keep {
			entries = append(entries, entry)
		}
	}
	return entries
}

// BuildLedgerEntry classifies one credit row. The returned bool is false
// when the row is administrative noise and must be dropped entirely.
func BuildLedgerEntry(row model.CreditRow, reg *registry.Registry) (model.LedgerEntry, bool) {
	category := strings.ToLower(strings.TrimSpace(row.Category))

	if strings.Contains(category, "property general expense") || strings.Contains(category, "owner distribution") {
		return model.LedgerEntry{}, false
	}

	property := row.Property
	if reg != nil {
		if p, ok := reg.Match(row.Property); ok {
			property = p.Name
		}
	}

	explanation := row.Category
	if row.Subcategory != "" && row.Subcategory != noUnitPlaceholder {
		explanation += " - " + row.Subcategory
	}

	entry := model.LedgerEntry{
		Date:        row.Date,
		Property:    property,
		Unit:        row.Unit,
		Explanation: strings.TrimSpace(explanation),
	}

	switch {
	case strings.Contains(category, "deposit"):
		entry.SecurityDeposits = row.Amount
	case strings.Contains(category, "tenant charges"),
		strings.Contains(category, "fees"),
		strings.Contains(category, "late payment fee"):
		entry.Fees = row.Amount
	default:
		entry.Credits = row.Amount
	}

	return entry, true
}

func parseExportDate(text string, loc *time.Location) (time.Time, bool) {
	for _, layout := range exportDateFormats {
		if d, err := time.ParseInLocation(layout, text, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func cellAt(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}
