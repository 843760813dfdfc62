package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/library"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "IDF component library file operations",
	Long:  `Commands for working with IDF 3.0 component library files (.emp)`,
}

var libraryInfoCmd = &cobra.Command{
	Use:   "info <library_file>",
	Short: "Show library file information",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryInfo,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryInfoCmd)
}

func runLibraryInfo(cmd *cobra.Command, args []string) error {
	lib, diags, err := library.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing library: %w", err)
	}

	fmt.Printf("LIBRARY_FILE (IDF %s, from %s)\n", lib.Header.Version, lib.Header.SystemID)
	fmt.Printf("  Components: %d\n", len(lib.Components))
	for _, c := range lib.Components {
		fmt.Printf("    %-10s %-20s part %-20s height %.3f mm, %d loop(s)",
			c.Kind, c.Geometry, c.PartNumber, c.Height, len(c.Outline.Loops))
		if len(c.Properties) > 0 {
			fmt.Printf(", %d propertie(s)", len(c.Properties))
		}
		fmt.Println()
		if verbose {
			for name, value := range c.Properties {
				fmt.Printf("      PROP %s = %g\n", name, value)
			}
		}
	}

	printDiagnostics(diags)
	return nil
}
