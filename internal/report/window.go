// Package report generates the monthly per-property financial report
// document: it selects the reporting window, filters ledger rows, derives
// the totals formulas, and assembles the report sheets from templates.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/stantpm/propflow/internal/model"
)

// monthLayouts are the accepted spellings of a report month.
var monthLayouts = []string{"Jan 2006", "January 2006", "2006-01"}

// ParseMonth parses a report month like "Sep 2025" or "September 2025".
func ParseMonth(monthYear string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	text := strings.TrimSpace(monthYear)
	for _, layout := range monthLayouts {
		if d, err := time.ParseInLocation(layout, text, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid report month %q: expected something like \"Sep 2025\"", monthYear)
}

// SelectWindow returns the reporting window for a month: the half-open
// interval from the 20th of the prior month up to, and excluding, the 20th
// of the report month, both at local midnight.
func SelectWindow(month time.Time) (start, end time.Time) {
	loc := month.Location()
	start = time.Date(month.Year(), month.Month()-1, 20, 0, 0, 0, 0, loc)
	end = time.Date(month.Year(), month.Month(), 20, 0, 0, 0, 0, loc)
	return start, end
}

// FilterEntries keeps ledger rows inside [start, end). Rows without a
// property are excluded regardless of date.
func FilterEntries(entries []model.LedgerEntry, start, end time.Time) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if e.Property == "" {
			continue
		}
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ApplyMarkup fills in each row's markup revenue from its property's markup
// rate. Revenue is earned only on markup-included rows with a positive
// debit amount; everything else gets zero.
func ApplyMarkup(entries []model.LedgerEntry, rates map[string]float64) {
	for i := range entries {
		e := &entries[i]
		if rate, ok := rates[e.Property]; ok && e.MarkupIncluded && e.Debits > 0 {
			e.MarkupRevenue = e.Debits * rate
		} else {
			e.MarkupRevenue = 0
		}
	}
}
