package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/archive"
	"github.com/ttkb-oss/psy-k/pkg/object"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "Print the contents of a LIB or OBJ file",
	Long: `Print the contents of a LIB or OBJ file.

For a library this is the module directory with export names. For an
object module it is the record-by-record dump.

Example:
  psyk list LIBCARD.LIB
  psyk list --code MALLOC.OBJ`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetBool("code")
		debug, _ := cmd.Flags().GetBool("debug")
		return list(cmd, args[0], code || cfg.Listing.DumpCode, debug || cfg.Listing.ShowDebug)
	},
}

func list(cmd *cobra.Command, path string, dumpCode, showDebug bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if isLibrary(data) {
		a, err := archive.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, v := range a.Violations() {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", path, v)
		}
		fmt.Fprint(cmd.OutOrStdout(), a.Listing())
		return nil
	}

	m, err := object.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	opts := object.DumpOptions{Debug: showDebug}
	if dumpCode {
		opts.Code = object.CodeHex
	}
	return m.Dump(cmd.OutOrStdout(), opts)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("code", "c", false, "Dump code record contents as hex")
	listCmd.Flags().BoolP("debug", "d", false, "Include source-line and scope records")
}
