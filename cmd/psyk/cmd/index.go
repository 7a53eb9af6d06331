package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/symdb"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <library.lib> [library2.lib...]",
	Short: "Index library exports for the which command",
	Long: `Index library exports for the which command.

Every export of every module is recorded in the symbol database, keyed
by the library path given here. Re-indexing a library replaces its
previous entries.

Example:
  psyk index LIBCARD.LIB LIBSN.LIB`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := symdb.Open(symbolDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		for _, path := range args {
			a, err := readLibrary(path)
			if err != nil {
				return err
			}
			if err := db.IndexArchive(path, a); err != nil {
				return err
			}
			symbols := 0
			for _, e := range a.Entries() {
				symbols += len(e.Exports())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s: %d modules, %d symbols\n",
				path, a.Len(), symbols)
		}
		return nil
	},
}

func symbolDBPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path
	}
	return cfg.SymbolDB
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().String("db", "", "Symbol database directory")
}
