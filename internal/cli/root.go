package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stemma",
	Short: "Naming-convention and metadata-inheritance validator for hierarchical datasets",
	Long: asciiLogo + `

stemma validates datasets whose file names carry entity-value pairs against
a catalog of naming-convention rulesets. It resolves which metadata files
apply to which data files, checks that every association is unambiguous,
reports inherited JSON fields that collide, and can convert a dataset to a
stricter ruleset by materializing every inherited value next to the data
file that uses it.

Exit Codes:
  0   - Success
  1   - General error
  3   - CLI usage error (invalid arguments or flags)
  4   - Dataset directory not found or not readable
  5   - No ruleset selected and none derivable from the dataset
  6   - Dataset cannot be parsed or its graph cannot be resolved
  7   - Dataset violates the evaluated ruleset
  8   - Panic or violated internal invariant
  125 - Warnings present and warnings-as-errors requested`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for stemma")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
