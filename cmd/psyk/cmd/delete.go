package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <library.lib> <module1> [module2...]",
	Short: "Remove modules from a library",
	Long: `Remove modules from a library.

Example:
  psyk delete LIBCARD.LIB A74`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readLibrary(args[0])
		if err != nil {
			return err
		}

		for _, name := range args[1:] {
			if err := a.Delete(name); err != nil {
				return fmt.Errorf("%s: %q: %w", args[0], name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted module %s\n", name)
		}
		return writeLibrary(args[0], a)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
