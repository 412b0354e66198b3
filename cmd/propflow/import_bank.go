package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stantpm/propflow/internal/cli"
	"github.com/stantpm/propflow/internal/ledger"
	"github.com/stantpm/propflow/internal/model"
	"github.com/stantpm/propflow/internal/ofx"
	"github.com/stantpm/propflow/internal/registry"
	"github.com/stantpm/propflow/internal/service"
)

func importBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-bank [files...]",
		Short: "Import bank statement debits from OFX/QFX files",
		Long: `Import outgoing payments from OFX or QFX (Quicken) bank statements
into the Transactions ledger as debit rows. Payment descriptions are
matched against each property's key pattern; unmatched debits are
imported without a property for manual assignment.

Examples:
  # Import a single statement
  propflow import-bank ~/Downloads/statement_sep_2025.qfx

  # Import all statements in a directory
  propflow import-bank ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportBank,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview import without writing to the ledger")
	cmd.Flags().Bool("markup", false, "mark imported debits as markup-included")

	return cmd
}

func runImportBank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	markup, _ := cmd.Flags().GetBool("markup")

	files, err := expandGlobs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	store, _, config, err := initSheets(ctx)
	if err != nil {
		return err
	}

	reg, err := registry.Load(ctx, store, config.SpreadsheetID)
	if err != nil {
		return err
	}

	entries, err := parseStatements(ctx, files, reg, markup)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(cli.FormatWarning("No debits found in the given statements"))
		return nil
	}

	history, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	fresh, duplicates, err := filterSeen(ctx, history, entries)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry run: would import %d debits (%d duplicates skipped)",
			len(fresh), duplicates)))
		return nil
	}

	if err := ledger.New(store, config.SpreadsheetID, reportLocation(config)).Append(ctx, fresh); err != nil {
		return err
	}
	if len(fresh) > 0 {
		if err := history.Record(ctx, fresh, fmt.Sprintf("ofx:%d files", len(files))); err != nil {
			return err
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d debits (%d duplicates skipped)",
		len(fresh), duplicates)))
	return nil
}

func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func parseStatements(ctx context.Context, files []string, reg *registry.Registry, markup bool) ([]model.LedgerEntry, error) {
	parser := ofx.NewParser()

	var entries []model.LedgerEntry
	for _, path := range files {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		debits, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Parsed statement", "file", filepath.Base(path), "debits", len(debits))
		entries = append(entries, ofx.ToLedgerEntries(debits, reg, markup)...)
	}
	return entries, nil
}

func filterSeen(ctx context.Context, history service.ImportHistory, entries []model.LedgerEntry) ([]model.LedgerEntry, int, error) {
	var fresh []model.LedgerEntry
	duplicates := 0
	for _, e := range entries {
		seen, err := history.Seen(ctx, e.GenerateHash())
		if err != nil {
			return nil, 0, fmt.Errorf("failed to check import history: %w", err)
		}
		if seen {
			duplicates++
			continue
		}
		fresh = append(fresh, e)
	}
	return fresh, duplicates, nil
}
