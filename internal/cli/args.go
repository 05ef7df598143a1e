package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// RequireDatasetPath validates that exactly one dataset_path argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireDatasetPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument <dataset_path>

Usage: %s

Example:
  %s ./study`, stemma.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireSourceAndTarget validates that exactly the dataset_path and
// target_path arguments are provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireSourceAndTarget(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`%w: missing required arguments <dataset_path> <target_path>

Usage: %s

Example:
  %s ./study ./study-flat -t forbidden`, stemma.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
	}
	return nil
}
