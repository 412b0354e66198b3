package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stantpm/propflow/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent import runs",
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println(cli.FormatInfo("No imports recorded yet"))
		return nil
	}

	header := fmt.Sprintf("%-20s %6s  %s", "When", "Rows", "Source")
	fmt.Println(cli.TableHeaderStyle.Render(header))
	for _, run := range runs {
		fmt.Printf("%-20s %6d  %s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04"), run.RowCount, run.Source)
	}
	return nil
}
