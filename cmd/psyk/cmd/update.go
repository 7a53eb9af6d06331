package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/archive"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <library.lib> <obj1> [obj2...]",
	Short: "Replace modules in a library with new OBJ files",
	Long: `Replace modules in a library with new OBJ files.

Each module keeps its position in the directory; its payload, export
table, and creation stamp are replaced. Updating a module that is not
in the library fails.

Example:
  psyk update LIBCARD.LIB a74.obj`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readLibrary(args[0])
		if err != nil {
			return err
		}

		for _, path := range args[1:] {
			payload, err := readObject(path)
			if err != nil {
				return err
			}
			name := archive.ModuleNameFromPath(path)
			if err := a.Update(name, payload); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated module %s\n", name)
		}
		return writeLibrary(args[0], a)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
