package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/archive"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <library.lib> <obj1> [obj2...]",
	Short: "Create a new library from OBJ files",
	Long: `Create a new library from OBJ files.

Module names are derived from the OBJ file names: uppercased, without
the extension, truncated to 8 characters.

Example:
  psyk create LIBCARD.LIB a74.obj c112.obj`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := archive.New()
		for _, path := range args[1:] {
			payload, err := readObject(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("File not found: %s", path)
				}
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
	rootCmd.AddCommand(createCmd)
}
