package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/board"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/library"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/validate"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <board_file> <library_file> [board_file...]",
	Short: "Cross-check IDF files against each other",
	Long: `Parse a board (or panel) file and a library file and verify that every
component placed on the board has a matching geometry in the library.

For a panel, any further board files given are checked against the
panel's board placements.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	b, diags, err := board.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", args[0], err)
	}
	printDiagnostics(diags)

	lib, diags, err := library.ParseFile(args[1])
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", args[1], err)
	}
	printDiagnostics(diags)

	if err := validate.LibraryCoversBoard(lib, b); err != nil {
		return fmt.Errorf("library check failed: %w", err)
	}
	fmt.Printf("✓ Library %s covers all placements in %s\n", args[1], args[0])

	if b.IsPanel() && len(args) > 2 {
		var boards []*board.Board
		for _, path := range args[2:] {
			sub, diags, err := board.ParseFile(path)
			if err != nil {
				return fmt.Errorf("error parsing %s: %w", path, err)
			}
			printDiagnostics(diags)
			boards = append(boards, sub)
		}
		if err := validate.PanelReferencesBoards(b, boards); err != nil {
			return fmt.Errorf("panel check failed: %w", err)
		}
		fmt.Printf("✓ All boards placed on the panel are present\n")
	}
	return nil
}
