// Package registry loads the Properties sheet and resolves free-text
// property names against each property's key pattern.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/service"
	"github.com/stantpm/propflow/internal/sheets"
)

// SheetName is the title of the property registry sheet.
const SheetName = "Properties"

// ErrMissingColumns indicates the registry sheet lacks required headers.
var ErrMissingColumns = errors.New("properties sheet is missing required columns")

// requiredColumns are the headers the registry table must expose.
var requiredColumns = []string{"Property", "Key", "Markup", "MAF", "Airbnb", "Has Airbnb"}

// overrideColumn is optional; when present, a non-empty cell replaces the
// computed monthly admin fee with a flat amount.
const overrideColumn = "MAF Override"

// Registry holds the loaded properties with pre-split key tokens.
// Immutable after construction.
type Registry struct {
	properties []model.Property
	tokens     [][]string
}

// New builds a registry from already-loaded property records.
func New(properties []model.Property) *Registry {
	r := &Registry{properties: properties}
	for _, p := range properties {
		r.tokens = append(r.tokens, splitPattern(p.KeyPattern))
	}
	return r
}

// Load reads all rows of the Properties sheet and builds one record per row.
func Load(ctx context.Context, store service.DocumentStore, spreadsheetID string) (*Registry, error) {
	rows, err := store.ReadRange(ctx, spreadsheetID, SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		columns[sheets.CellString(cell)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, name)
		}
	}

	cell := func(row []any, name string) any {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	properties := make([]model.Property, 0, len(rows)-1)
	for _, row := range rows[1:] {
		p := model.Property{
			Name:          sheets.CellString(cell(row, "Property")),
			KeyPattern:    sheets.CellString(cell(row, "Key")),
			MarkupRate:    sheets.CellFloat(cell(row, "Markup")),
			AdminFeeRate:  sheets.CellFloat(cell(row, "MAF")),
			AirbnbFeeRate: sheets.CellFloat(cell(row, "Airbnb")),
			HasAirbnb:     sheets.CellBool(cell(row, "Has Airbnb")),
		}
		if p.Name == "" {
			continue
		}
		if raw := sheets.CellString(cell(row, overrideColumn)); raw != "" {
			override := sheets.CellFloat(cell(row, overrideColumn))
			p.AdminFeeOverride = &override
		}
		properties = append(properties, p)
	}

	return New(properties), nil
}

// Properties returns the loaded records in registry order.
func (r *Registry) Properties() []model.Property {
	return r.properties
}

// Match resolves a free-text property name: a property matches when every
// token of its key pattern appears as a case-insensitive substring of the
// text. Properties are tested in registry order and the first match wins;
// callers keep the original free text when no property matches.
func (r *Registry) Match(freeText string) (*model.Property, bool) {
	text := strings.ToLower(freeText)
	var matched *model.Property
	for i := range r.properties {
		if !matchTokens(text, r.tokens[i]) {
			continue
		}
		if matched != nil {
			slog.Debug("property pattern overlap; first match kept",
				"text", freeText,
				"kept", matched.Name,
				"also_matched", r.properties[i].Name)
			continue
		}
		matched = &r.properties[i]
	}
	return matched, matched != nil
}

func matchTokens(text string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// splitPattern lower-cases and splits a comma-separated key pattern.
func splitPattern(keyPattern string) []string {
	if strings.TrimSpace(keyPattern) == "" {
		return nil
	}

	parts := strings.Split(strings.ToLower(keyPattern), ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if tok := strings.TrimSpace(part); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
