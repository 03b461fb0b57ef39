package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/billpay/internal/tui"
	"github.com/xraph/billpay/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Validate a seed file and print its invoices",
	Long: `Validate a YAML seed file and print the invoices it would load.
Without a file the built-in seed set is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}

		invs, err := seed.Resolve(path)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderSeed(invs))
		return nil
	},
}
