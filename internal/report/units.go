package report

import "github.com/stantpm/propflow/internal/model"

// CountDistinctUnits counts the distinct unit identifiers seen per property
// across the whole ledger. Rows missing either field are ignored; duplicate
// units within a property collapse to one.
func CountDistinctUnits(entries []model.LedgerEntry) map[string]int {
	units := make(map[string]map[string]struct{})
	for _, e := range entries {
		if e.Property == "" || e.Unit == "" {
			continue
		}
		if units[e.Property] == nil {
			units[e.Property] = make(map[string]struct{})
		}
		units[e.Property][e.Unit] = struct{}{}
	}

	counts := make(map[string]int, len(units))
	for property, set := range units {
		counts[property] = len(set)
	}
	return counts
}
