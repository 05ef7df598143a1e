package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/internal/logging"
	"github.com/stemma-io/stemma/internal/scaffold"
	"github.com/stemma-io/stemma/pkg/stemma"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new dataset skeleton",
	Long: `Initialize a dataset skeleton into the specified directory.

The init command creates:
- dataset_description.json with the dataset name and schema version
- A README describing the layout
- code/ and sourcedata/ directories

Every created entry is a reserved name, so the fresh dataset validates
cleanly. Target directory must be empty or non-existent.

Examples:
  stemma init .                    # Initialize in current directory
  stemma init ./study              # Initialize in ./study
  stemma init ./study --name "My Study"
  stemma init ./study --schema-version 1.1.0`,
	Args:              cobra.MinimumNArgs(0),
	ValidArgsFunction: completeDirectories,
	RunE:              runInit,
}

var (
	initName          string
	initSchemaVersion string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initName, "name", "n", "",
		"Dataset name for the description (default: target directory name)")
	initCmd.Flags().StringVar(&initSchemaVersion, "schema-version", scaffold.DefaultSchemaVersion,
		"Schema version written to the description; also selects the\n"+
			"ruleset later validation runs derive from it")
}

func runInit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing required argument <target_path>\n\nUsage: stemma init <target_path> [flags]\n\nExamples:\n  stemma init .        # Current directory\n  stemma init ./study  # Subdirectory", stemma.ErrUsage)
	}

	targetPath := args[0]

	// Determine the dataset name from the target path
	name := initName
	if name == "" {
		name = filepath.Base(targetPath)
		if name == "." || name == ".." || name == string(filepath.Separator) {
			cwd, err := os.Getwd()
			if err == nil {
				name = filepath.Base(cwd)
			} else {
				name = "dataset"
			}
		}
	}
	verbose := getVerboseFlag(cmd)

	logger := logging.NewConsoleLogger(verbose)
	scaffolder := scaffold.NewScaffolder(logger)

	if err := scaffolder.Create(name, initSchemaVersion, targetPath); err != nil {
		return fmt.Errorf("failed to initialize dataset: %w", err)
	}

	// Display file tree
	tree, err := scaffolder.FileTree(targetPath)
	if err != nil {
		// Non-fatal - just skip tree display
		fmt.Fprintf(os.Stderr, "\n✓ Dataset '%s' initialized in '%s'\n", name, targetPath)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ Dataset '%s' initialized\n\n", name)
		fmt.Fprintln(os.Stderr, "Created structure:")
		fmt.Fprint(os.Stderr, tree)
	}

	// Next steps
	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(os.Stderr, "  stemma validate .")

	return nil
}
