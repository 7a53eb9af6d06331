package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <library.lib> [module...]",
	Short: "Extract modules from a library as OBJ files",
	Long: `Extract modules from a library as OBJ files.

Without module names every module is extracted. Each module is written
as <NAME>.OBJ with its file times set to the directory's creation
stamp.

Example:
  psyk extract LIBCARD.LIB
  psyk extract LIBCARD.LIB A74 C112`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readLibrary(args[0])
		if err != nil {
			return err
		}

		outDir, _ := cmd.Flags().GetString("output")
		if outDir == "" {
			outDir = cfg.OutputDir
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}

		entries := a.Entries()
		if len(args) > 1 {
			entries = entries[:0]
			for _, name := range args[1:] {
				e := a.Lookup(name)
				if e == nil {
					return fmt.Errorf("%s: no module %q", args[0], name)
				}
				entries = append(entries, e)
			}
		}

		for _, e := range entries {
			filename := filepath.Join(outDir, e.Name()+".OBJ")
			if err := os.WriteFile(filename, e.Payload(), 0644); err != nil {
				return err
			}
			when := e.Created().Time()
			if err := os.Chtimes(filename, when, when); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted object file %s\n", filename)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("output", "o", "", "Directory to write OBJ files into")
}
