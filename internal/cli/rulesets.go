package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/internal/convert"
	"github.com/stemma-io/stemma/internal/rules"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the built-in rulesets",
	Long: `Rulesets lists every ruleset in the catalog with the policies it applies.

Columns:
  JSON/DIR    How many applicable JSON files a directory level may hold
  OTHER/DIR   The same policy for every other metadata extension
  OVERWRITE   Whether a nearer JSON file may overwrite inherited fields
  SIDECAR     Whether metadata may apply beyond a strict sidecar pairing
  PLACEMENT   Which metadata placement legality check runs

Rulesets marked as conversion targets can be passed to 'stemma convert -t'.`,
	Args: cobra.NoArgs,
	RunE: runRulesets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)
}

func runRulesets(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stderr, "Built-in rulesets:")
	fmt.Fprintln(os.Stderr)

	// Table goes to stdout for pipeline consumption
	fmt.Printf("%-14s %-10s %-10s %-11s %-9s %-13s %s\n",
		"NAME", "JSON/DIR", "OTHER/DIR", "OVERWRITE", "SIDECAR", "PLACEMENT", "NOTES")
	for _, r := range rules.Catalog() {
		notes := ""
		if isConversionTarget(r.Name) {
			notes = "conversion target"
		}
		fmt.Printf("%-14s %-10s %-10s %-11s %-9s %-13s %s\n",
			r.Name,
			r.JSONWithinDir.String(),
			r.NonJSONWithinDir.String(),
			permitted(r.PermitJSONFieldOverwrite),
			sidecarPolicy(r.PermitNonSidecar),
			r.PathCheck.String(),
			notes)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Validate against one with: stemma validate <dataset_path> -r <name>")
	return nil
}

func isConversionTarget(name string) bool {
	for _, target := range convert.ConversionTargets {
		if name == target {
			return true
		}
	}
	return false
}

func permitted(allowed bool) string {
	if allowed {
		return "permitted"
	}
	return "forbidden"
}

func sidecarPolicy(permitNonSidecar bool) string {
	if permitNonSidecar {
		return "free"
	}
	return "strict"
}
