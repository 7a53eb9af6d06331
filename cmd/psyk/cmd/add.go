package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/archive"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <library.lib> <obj1> [obj2...]",
	Short: "Add OBJ files to an existing library",
	Long: `Add OBJ files to an existing library.

Adding a module whose name is already present fails; use update to
replace one.

Example:
  psyk add LIBCARD.LIB new.obj`,
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
			if err := a.Add(name, payload); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added module %s\n", name)
		}
		return writeLibrary(args[0], a)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
