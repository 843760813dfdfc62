package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/board"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/section"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "IDF board and panel file operations",
	Long:  `Commands for working with IDF 3.0 board and panel files (.emn)`,
}

var boardInfoCmd = &cobra.Command{
	Use:   "info <board_file>",
	Short: "Show board file information",
	Long: `Parse a board or panel file and print its header, outline geometry and
entity counts, followed by any diagnostics collected while parsing.`,
	Args: cobra.ExactArgs(1),
	RunE: runBoardInfo,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.AddCommand(boardInfoCmd)
}

func runBoardInfo(cmd *cobra.Command, args []string) error {
	b, diags, err := board.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	fmt.Printf("%s %q (IDF %s, from %s)\n", b.Header.FileType, b.Header.BoardName, b.Header.Version, b.Header.SystemID)
	fmt.Printf("  Source units: %s (normalized to mm)\n", b.Header.Units)
	fmt.Printf("  Thickness: %.3f mm\n", b.Outline.Thickness)
	fmt.Printf("  Outline: %d loop(s), valid=%v\n", len(b.Outline.Shape.Loops), b.Outline.Shape.Valid)
	for _, l := range b.Outline.Shape.Loops {
		fmt.Printf("    loop %d: %d point(s), closed=%v\n", l.Label, l.Points(), l.Closed)
	}
	fmt.Printf("  Other outlines: %d\n", len(b.OtherOutlines))
	fmt.Printf("  Routing outlines: %d, keepouts: %d\n", len(b.RoutingOutlines), len(b.RoutingKeepouts))
	fmt.Printf("  Placement outlines: %d, keepouts: %d, regions: %d\n",
		len(b.PlacementOutlines), len(b.PlacementKeepouts), len(b.PlacementGroups))
	fmt.Printf("  Via keepouts: %d\n", len(b.ViaKeepouts))
	fmt.Printf("  Drilled holes: %d\n", len(b.Holes))
	fmt.Printf("  Notes: %d\n", len(b.Notes))
	fmt.Printf("  Placements: %d\n", len(b.Placements))

	printDiagnostics(diags)

	if verbose {
		for _, p := range b.Placements {
			fmt.Printf("  %-12s %-20s (%.3f, %.3f) rot %.1f %s %s\n",
				p.RefDes, p.Package, p.Position.X, p.Position.Y, p.Rotation, p.Side, p.Status)
		}
	}
	return nil
}

func printDiagnostics(diags []section.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Printf("  Diagnostics: %d\n", len(diags))
	for _, d := range diags {
		fmt.Printf("    %s\n", d)
	}
}
