package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/symdb"
)

// whichCmd represents the which command
var whichCmd = &cobra.Command{
	Use:   "which <symbol>",
	Short: "Find which indexed library defines a symbol",
	Long: `Find which indexed library defines a symbol.

Searches the symbol database built by the index command.

Example:
  psyk which InitCARD`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := symdb.Open(symbolDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		locations, err := db.Lookup(args[0])
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			return fmt.Errorf("symbol %q not found in any indexed library", args[0])
		}
		for _, loc := range locations {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", args[0], loc.Library, loc.Module)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whichCmd)
	whichCmd.Flags().String("db", "", "Symbol database directory")
}
