package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "otidf",
	Short: "OpenTraceIDF - IDF 3.0 board, panel and library file tools",
	Long: `OpenTraceIDF (otidf) inspects IDF 3.0 mechanical data exchange files:
  - Board and panel files (.emn): outlines, keepouts, holes, placements
  - Component library files (.emp): package outlines and properties

Examples:
  otidf board info board.emn          # Summarize a board file
  otidf library info library.emp      # Summarize a library file
  otidf check board.emn library.emp   # Verify the library covers the board`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
