package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stantpm/propflow/internal/cli"
	"github.com/stantpm/propflow/internal/registry"
)

func propertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Inspect the property registry",
	}

	cmd.AddCommand(propertiesListCmd())
	cmd.AddCommand(propertiesMatchCmd())

	return cmd
}

func propertiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered properties and their rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, config, err := initSheets(ctx)
			if err != nil {
				return err
			}

			reg, err := registry.Load(ctx, store, config.SpreadsheetID)
			if err != nil {
				return err
			}

			header := fmt.Sprintf("%-30s %-20s %8s %8s %8s %7s",
				"Property", "Key", "Markup", "MAF", "Airbnb", "Has B&B")
			fmt.Println(cli.TableHeaderStyle.Render(header))

			for _, p := range reg.Properties() {
				maf := fmt.Sprintf("%.2f", p.AdminFeeRate)
				if p.AdminFeeOverride != nil {
					maf = fmt.Sprintf("$%.0f", *p.AdminFeeOverride)
				}
				hasAirbnb := ""
				if p.HasAirbnb {
					hasAirbnb = cli.SuccessIcon
				}
				fmt.Printf("%-30s %-20s %8.2f %8s %8.2f %7s\n",
					p.Name, p.KeyPattern, p.MarkupRate, maf, p.AirbnbFeeRate, hasAirbnb)
			}
			return nil
		},
	}
}

func propertiesMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <text>",
		Short: "Resolve a free-text property name against the registry",
		Long: `Resolve a free-text property name the way the credit import does:
every comma-separated token of a property's key pattern must appear in
the text, first match wins.

Example:
  propflow properties match "2536 Adams Ave Unit 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")

			store, _, config, err := initSheets(ctx)
			if err != nil {
				return err
			}

			reg, err := registry.Load(ctx, store, config.SpreadsheetID)
			if err != nil {
				return err
			}

			property, ok := reg.Match(text)
			if !ok {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("No property matches %q; the text would be kept verbatim", text)))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%q resolves to %s (pattern %q)",
				text, property.Name, property.KeyPattern)))
			return nil
		},
	}
}
