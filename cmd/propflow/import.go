package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stantpm/propflow/internal/cli"
	"github.com/stantpm/propflow/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import tenant credits into the Transactions ledger",
		Long: `Import a tenant credit export into the Transactions ledger.

Without arguments the export file named by the "Credits Document"
configuration entry is converted and imported. With a path argument a
local CSV export is imported instead.

Examples:
  # Import the configured export file
  propflow import

  # Import a local CSV export
  propflow import ~/Downloads/credits_sep_2025.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("no-history", false, "skip duplicate detection against the import history database")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	noHistory, _ := cmd.Flags().GetBool("no-history")

	store, converter, config, err := initSheets(ctx)
	if err != nil {
		return err
	}

	pipeline := &importer.Pipeline{
		Store:    store,
		Files:    converter,
		LedgerID: config.SpreadsheetID,
		Location: reportLocation(config),
	}

	if !noHistory {
		history, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = history.Close() }()
		pipeline.History = history
	}

	var result *importer.Result
	if len(args) == 1 {
		result, err = pipeline.RunFile(ctx, args[0])
	} else {
		result, err = pipeline.Run(ctx)
	}
	if err != nil {
		fmt.Println(cli.FormatError("Import failed"))
		return err
	}

	if !result.HeaderFound {
		fmt.Println(cli.FormatWarning("No data found in the credits file"))
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d rows (%d duplicates skipped)",
		result.RowsImported, result.RowsRead, result.Duplicates)))
	return nil
}
