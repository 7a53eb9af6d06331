package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/archive"
	"github.com/ttkb-oss/psy-k/pkg/object"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print a summary of a LIB or OBJ file",
	Long: `Print a summary of a LIB or OBJ file: type, version, modules or
sections, symbols, and any directory problems found.

Example:
  psyk info LIBCARD.LIB`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if isLibrary(data) {
			a, err := archive.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(out, "%s: LIB version %d, %d modules\n", args[0], archive.Version, a.Len())
			for _, e := range a.Entries() {
				fmt.Fprintf(out, "  %-8s %s %6d bytes, %d exports\n",
					e.Name(), e.Created(), e.Size(), len(e.Exports()))
			}
			for _, v := range a.Violations() {
				fmt.Fprintf(out, "  violation: %s\n", v)
			}
			return nil
		}

		m, err := object.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(out, "%s: LNK version %d, cpu type %d\n", args[0], m.Version, m.CPU)
		if m.Name != "" {
			fmt.Fprintf(out, "  source %s\n", m.Name)
		}
		for _, s := range m.Sections {
			fmt.Fprintf(out, "  section %x '%s' %d code bytes, %d reserved\n",
				s.ID, s.Name, len(s.Data), s.Reserved)
		}
		for _, sym := range m.Symbols {
			switch sym.Kind {
			case object.SymbolExport:
				fmt.Fprintf(out, "  exports %s\n", sym.Name)
			case object.SymbolBSS:
				fmt.Fprintf(out, "  exports %s (%d bytes bss)\n", sym.Name, sym.Size)
			case object.SymbolImport:
				fmt.Fprintf(out, "  imports %s\n", sym.Name)
			}
		}
		fmt.Fprintf(out, "  %d relocations\n", len(m.Relocations))
		for _, v := range m.Violations() {
			fmt.Fprintf(out, "  violation: %s\n", v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
