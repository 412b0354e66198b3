package main

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stantpm/propflow/internal/cli"
	"github.com/stantpm/propflow/internal/report"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <month>",
		Short: "Generate monthly per-property financial reports",
		Long: `Generate the monthly report document for a reporting window. The
window runs from the 20th of the prior month up to, and excluding, the
20th of the report month.

Examples:
  propflow report "Sep 2025"
  propflow report "September 2025"`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, converter, config, err := initSheets(ctx)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Generating reports"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	generator := &report.Generator{
		Store:    store,
		Files:    converter,
		LedgerID: config.SpreadsheetID,
		Location: reportLocation(config),
		Progress: func(propertyName string) {
			bar.Describe("Generating report: " + propertyName)
			_ = bar.Add(1)
		},
	}

	result, err := generator.Run(ctx, args[0])
	_ = bar.Finish()
	if err != nil {
		fmt.Println(cli.FormatError("Report generation failed"))
		return err
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Document: %s", result.Name))
	lines = append(lines, fmt.Sprintf("Property sheets: %d", len(result.Generated)))
	if len(result.Skipped) > 0 {
		lines = append(lines, cli.FormatWarning("Skipped: "+strings.Join(result.Skipped, ", ")))
	}
	fmt.Println(cli.RenderBox(cli.ChartIcon+" Reports generated", strings.Join(lines, "\n")))

	return nil
}
