// Package settings reads the Configuration sheet: a two-column key/value
// table starting at row 2.
package settings

import (
	"context"
	"fmt"

	"github.com/stantpm/propflow/internal/service"
	"github.com/stantpm/propflow/internal/sheets"
)

// SheetName is the title of the configuration sheet in the ledger document.
const SheetName = "Configuration"

// Resolver answers attribute lookups against a loaded configuration table.
type Resolver struct {
	rows [][]any
}

// NewResolver creates a resolver over raw configuration rows.
func NewResolver(rows [][]any) *Resolver {
	return &Resolver{rows: rows}
}

// Load reads the configuration table from the ledger spreadsheet.
func Load(ctx context.Context, store service.DocumentStore, spreadsheetID string) (*Resolver, error) {
	rows, err := store.ReadRange(ctx, spreadsheetID, SheetName+"!A2:B")
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration sheet: %w", err)
	}
	return NewResolver(rows), nil
}

// Get returns the value of the first row whose key equals name exactly.
// A missing key yields the empty string; callers treat "" as unset.
func (r *Resolver) Get(name string) string {
	for _, row := range r.rows {
		if len(row) == 0 {
			continue
		}
		if sheets.CellString(row[0]) == name {
			if len(row) < 2 {
				return ""
			}
			return sheets.CellString(row[1])
		}
	}
	return ""
}

// GetBool reads an attribute as a truthy flag.
func (r *Resolver) GetBool(name string) bool {
	return sheets.CellBool(r.Get(name))
}
