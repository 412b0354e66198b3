package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/ledger"
	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/registry"
	"github.com/stantpm/propflow/internal/service"
)

// Generator runs the whole monthly report pipeline: window selection,
// ledger filtering, report document creation and per-property sheet
// assembly, finishing with the summary sheet.
type Generator struct {
	Store    service.DocumentStore
	Files    service.FileConverter
	LedgerID string
	Location *time.Location

	// Progress, when set, is called once per property as its sheet is built.
	Progress func(propertyName string)
}

// Result reports what a generation run produced.
type Result struct {
	SpreadsheetID string
	Name          string
	Generated     []GeneratedReport
	Skipped       []string
}

// Run generates the report document for the given month ("Sep 2025").
// Properties whose template is missing its placeholder are skipped and
// listed in the result; any other failure aborts the run.
func (g *Generator) Run(ctx context.Context, monthYear string) (*Result, error) {
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}

	month, err := ParseMonth(monthYear, loc)
	if err != nil {
		return nil, common.NewUserError("Enter a valid month and year, like \"September 2025\"", err)
	}
	start, end := SelectWindow(month)

	reg, err := registry.Load(ctx, g.Store, g.LedgerID)
	if err != nil {
		return nil, err
	}

	led := ledger.New(g.Store, g.LedgerID, loc)
	allEntries, err := led.Load(ctx)
	if err != nil {
		return nil, err
	}

	unitCounts := CountDistinctUnits(allEntries)

	entries := FilterEntries(allEntries, start, end)
	rates := make(map[string]float64, len(reg.Properties()))
	for _, p := range reg.Properties() {
		rates[p.Name] = p.MarkupRate
	}
	ApplyMarkup(entries, rates)

	name := "Monthly Reports - " + month.Format("Jan 2006")
	reportID, err := g.Store.CreateSpreadsheet(ctx, name, loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create report document: %w", err)
	}
	slog.Info("created report document", "name", name, "id", reportID)

	if g.Files != nil {
		// Place the report next to the ledger document; placement failures
		// leave the report in the default location, which is still usable.
		if folder, err := g.Files.ParentFolder(ctx, g.LedgerID); err != nil {
			slog.Warn("could not resolve ledger folder", "error", err)
		} else if err := g.Files.MoveToFolder(ctx, reportID, folder); err != nil {
			slog.Warn("could not move report into ledger folder", "error", err)
		}
	}

	for _, title := range []string{BodyTemplateSheet, TotalsTemplateSheet, AirbnbTemplateSheet} {
		if _, err := g.Store.CopySheetTo(ctx, g.LedgerID, title, reportID, title); err != nil {
			return nil, fmt.Errorf("failed to copy template %q: %w", title, err)
		}
	}
	if err := g.Store.DeleteSheet(ctx, reportID, "Sheet1"); err != nil {
		slog.Warn("could not delete default sheet", "error", err)
	}

	builder, err := NewBuilder(ctx, g.Store, reportID)
	if err != nil {
		return nil, err
	}

	result := &Result{SpreadsheetID: reportID, Name: name}
	for _, property := range reg.Properties() {
		if g.Progress != nil {
			g.Progress(property.Name)
		}

		generated, err := builder.BuildPropertyReport(ctx, property, entriesFor(entries, property.Name), unitCounts[property.Name])
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				slog.Warn("skipping property report", "property", property.Name, "error", err)
				result.Skipped = append(result.Skipped, property.Name)
				continue
			}
			return nil, err
		}
		result.Generated = append(result.Generated, generated)
	}

	if len(result.Generated) > 0 {
		if err := builder.BuildSummary(ctx, result.Generated); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func entriesFor(entries []model.LedgerEntry, propertyName string) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if e.Property == propertyName {
			out = append(out, e)
		}
	}
	return out
}
