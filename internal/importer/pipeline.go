package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stantpm/propflow/internal/common"
	"github.com/stantpm/propflow/internal/ledger"
	"github.com/stantpm/propflow/internal/registry"
	"github.com/stantpm/propflow/internal/service"
	"github.com/stantpm/propflow/internal/settings"
)

// creditsReadRange covers the whole first sheet of a converted export file.
const creditsReadRange = "A:ZZ"

// Pipeline runs a credit import end to end: file conversion, header
// detection, normalization, classification, duplicate filtering and the
// final ledger append.
type Pipeline struct {
	Store    service.DocumentStore
	Files    service.FileConverter
	History  service.ImportHistory
	LedgerID string
	Location *time.Location
}

// Result reports what an import run did.
type Result struct {
	Source       string
	HeaderFound  bool
	RowsRead     int
	RowsImported int
	Duplicates   int
}

// Run imports the export file named by the "Credits Document"
// configuration entry. The file is converted to a native sheet for
// reading and the temporary copy is deleted afterwards.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := settings.Load(ctx, p.Store, p.LedgerID)
	if err != nil {
		return nil, err
	}

	fileID := res.Get("Credits Document")
	if fileID == "" {
		return nil, common.NewUserError(
			"No \"Credits Document\" configured; add the export file's ID to the Configuration sheet",
			fmt.Errorf("%w: Credits Document", common.ErrMissingConfig))
	}

	tempID, err := p.Files.ConvertToSheet(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to convert credits file: %w", err)
	}
	defer func() {
		if err := p.Files.Delete(ctx, tempID); err != nil {
			slog.Warn("could not delete temporary credits sheet", "id", tempID, "error", err)
		}
	}()

	grid, err := p.Store.ReadRange(ctx, tempID, creditsReadRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read credits file: %w", err)
	}

	return p.process(ctx, res, grid, fileID)
}

// RunFile imports a local CSV export instead of a configured remote file.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	res, err := settings.Load(ctx, p.Store, p.LedgerID)
	if err != nil {
		return nil, err
	}

	grid, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}

	return p.process(ctx, res, grid, path)
}

func (p *Pipeline) process(ctx context.Context, res *settings.Resolver, grid [][]any, source string) (*Result, error) {
	result := &Result{Source: source}

	labels := LabelsFromSettings(res)
	headerIndex, schema, ok := LocateHeaderRow(grid, labels)
	if !ok {
		// Soft miss: the command reports "no data found" off HeaderFound.
		slog.Warn("skipping credits file", "source", source, "error", common.ErrHeaderMissing)
		return result, nil
	}
	result.HeaderFound = true

	if res.GetBool("Add Credits Sheet") {
		if err := p.addRawDataSheet(ctx, grid); err != nil {
			return nil, err
		}
	}

	rows := NormalizeRows(grid, headerIndex, schema, p.Location)
	result.RowsRead = len(rows)

	reg, err := registry.Load(ctx, p.Store, p.LedgerID)
	if err != nil {
		return nil, err
	}
	entries := BuildLedgerEntries(rows, reg)

	fresh := entries
	if p.History != nil {
		fresh = fresh[:0:0]
		for _, e := range entries {
			seen, err := p.History.Seen(ctx, e.GenerateHash())
			if err != nil {
				return nil, fmt.Errorf("failed to check import history: %w", err)
			}
			if seen {
				result.Duplicates++
				continue
			}
			fresh = append(fresh, e)
		}
	}

	if err := ledger.New(p.Store, p.LedgerID, p.Location).Append(ctx, fresh); err != nil {
		return nil, err
	}
	result.RowsImported = len(fresh)

	if p.History != nil && len(fresh) > 0 {
		if err := p.History.Record(ctx, fresh, source); err != nil {
			return nil, fmt.Errorf("failed to record import history: %w", err)
		}
	}

	slog.Info("credit import complete",
		"source", source,
		"rows", result.RowsRead,
		"imported", result.RowsImported,
		"duplicates", result.Duplicates)
	return result, nil
}

// addRawDataSheet copies the raw export grid into its own sheet of the
// ledger document for later inspection.
func (p *Pipeline) addRawDataSheet(ctx context.Context, grid [][]any) error {
	title := "Credits Import " + time.Now().Format("2006-01-02 15:04")
	if _, err := p.Store.AddSheet(ctx, p.LedgerID, title, -1); err != nil {
		return fmt.Errorf("failed to add raw credits sheet: %w", err)
	}
	if err := p.Store.UpdateRange(ctx, p.LedgerID, fmt.Sprintf("'%s'!A1", title), grid); err != nil {
		return fmt.Errorf("failed to write raw credits sheet: %w", err)
	}
	return nil
}
