package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/internal/config"
	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/evaluate"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/logging"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/internal/tui"
	"github.com/stemma-io/stemma/pkg/stemma"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dataset_path>",
	Short: "Validate a dataset against a naming-convention ruleset",
	Long: `Validate checks a dataset directory against a naming-convention ruleset.

The validate command:
1. Discovers data and metadata files under the dataset root
2. Builds the association graph linking metadata files to the data files
   they apply to
3. Resolves the ruleset: --ruleset flag, $STEMMA_RULESET, .stemma.yaml,
   then the SchemaVersion of dataset_description.json
4. Evaluates every rule and prints one diagnostic per finding
5. Optionally exports the resolved graph, the merged per-file metadata and
   the override report as JSON

Arguments:
  dataset_path    Path to the dataset root directory

Examples:
  # Validate against the ruleset derived from the dataset description
  stemma validate ./study

  # Validate against an explicit ruleset
  stemma validate ./study -r strict-order

  # Fail on warnings, for CI pipelines
  stemma validate ./study -w

  # Export the association graph and the override report
  stemma validate ./study -g graph.json -o overrides.json

  # Re-validate on every change
  stemma validate ./study --watch`,
	Args:              RequireDatasetPath,
	ValidArgsFunction: completeDirectories,
	RunE:              runValidate,
}

type validateFlagValues struct {
	ruleset          string
	warningsAsErrors bool
	graphPath        string
	metadataPath     string
	overridesPath    string
	watch            bool
}

var validateFlags validateFlagValues

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.ruleset, "ruleset", "r", "",
		"Ruleset to validate against\n"+
			"Precedence: --ruleset > $STEMMA_RULESET > .stemma.yaml > SchemaVersion\n"+
			"Use 'stemma rulesets' to list the catalog")
	validateCmd.Flags().BoolVarP(&validateFlags.warningsAsErrors, "warnings-as-errors", "w", false,
		"Treat warning findings as a failing verdict (exit code 125)\n"+
			"Can also be set with warnings_as_errors in .stemma.yaml")
	validateCmd.Flags().StringVarP(&validateFlags.graphPath, "graph", "g", "",
		"Write the resolved association graph to this file as JSON")
	validateCmd.Flags().StringVarP(&validateFlags.metadataPath, "metadata", "m", "",
		"Write the merged metadata of every data file to this file as JSON")
	validateCmd.Flags().StringVarP(&validateFlags.overridesPath, "overrides", "o", "",
		"Write the JSON field override report to this file as JSON")
	validateCmd.Flags().BoolVar(&validateFlags.watch, "watch", false,
		"Watch the dataset and re-validate on every change\n"+
			"Cannot be combined with the export flags")

	_ = validateCmd.RegisterFlagCompletionFunc("ruleset", completeRulesetNames)
}

// buildValidateConfig builds a ValidateConfig from CLI flags, environment
// variables and the project configuration at the dataset root.
// This function is extracted for testability and separation of concerns.
func buildValidateConfig(datasetPath string, verbose bool) (stemma.ValidateConfig, *config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Resolve(datasetPath)
	if err != nil {
		return stemma.ValidateConfig{}, nil, err
	}
	if err := projectCfg.Validate(); err != nil {
		return stemma.ValidateConfig{}, nil, err
	}

	cfg := stemma.ValidateConfig{
		DatasetPath:      datasetPath,
		Ruleset:          validateFlags.ruleset,
		WarningsAsErrors: validateFlags.warningsAsErrors || projectCfg.WarningsAsErrors,
		GraphPath:        validateFlags.graphPath,
		MetadataPath:     validateFlags.metadataPath,
		OverridesPath:    validateFlags.overridesPath,
		Watch:            validateFlags.watch,
		Verbose:          verbose,
	}
	if err := cfg.Validate(); err != nil {
		return stemma.ValidateConfig{}, nil, err
	}

	return cfg, projectCfg, nil
}

// resolveRuleset picks the ruleset for a run: the explicit flag value when
// one was given, then the project configuration (which already folds in
// $STEMMA_RULESET), then the SchemaVersion declared by the dataset
// description.
func resolveRuleset(explicit, configured string, ds *dataset.Dataset) (rules.Ruleset, error) {
	if explicit != "" {
		return rules.Get(explicit)
	}
	if configured != "" {
		return rules.Get(configured)
	}

	desc, err := ds.ReadDescription()
	if err != nil {
		if errors.Is(err, stemma.ErrMalformedContent) {
			return rules.Ruleset{}, err
		}
		return rules.Ruleset{}, fmt.Errorf("no ruleset requested and %s is unreadable: %w",
			dataset.DescriptionFilename, stemma.ErrNoRuleset)
	}
	version, ok := desc.SchemaVersion()
	if !ok {
		return rules.Ruleset{}, fmt.Errorf("no ruleset requested and %s declares no SchemaVersion: %w",
			dataset.DescriptionFilename, stemma.ErrNoRuleset)
	}
	return rules.ForSchemaVersion(version)
}

// executeValidation runs one full validation pass: open the dataset, build
// the graph, evaluate the ruleset and write any requested exports.
func executeValidation(cfg stemma.ValidateConfig, projectCfg *config.ProjectConfig, logger stemma.Logger) (*evaluate.Report, rules.Ruleset, error) {
	ds, err := dataset.Open(cfg.DatasetPath, projectCfg.Exclusions...)
	if err != nil {
		return nil, rules.Ruleset{}, err
	}

	ruleset, err := resolveRuleset(cfg.Ruleset, projectCfg.Ruleset, ds)
	if err != nil {
		return nil, rules.Ruleset{}, err
	}
	logger.Verbose("validating %s against ruleset %s", cfg.DatasetPath, ruleset.Name)

	g, err := graph.Build(ds, rules.DefaultRegistry())
	if err != nil {
		return nil, ruleset, err
	}

	report, err := evaluate.Run(ds, g, ruleset)
	if err != nil {
		return nil, ruleset, err
	}

	if err := writeExports(cfg, ds, g, report, logger); err != nil {
		return nil, ruleset, err
	}

	return report, ruleset, nil
}

// writeExports writes the requested JSON exports. Graph and metadata exports
// need the pruned graph, so a dataset that cannot be resolved fails them.
func writeExports(cfg stemma.ValidateConfig, ds *dataset.Dataset, g *graph.Graph, report *evaluate.Report, logger stemma.Logger) error {
	if cfg.GraphPath == "" && cfg.MetadataPath == "" && cfg.OverridesPath == "" {
		return nil
	}

	if cfg.GraphPath != "" || cfg.MetadataPath != "" {
		resolved, err := g.Prune()
		if err != nil {
			return fmt.Errorf("cannot export the resolved graph: %w", err)
		}

		if cfg.GraphPath != "" {
			if err := writeJSONFile(cfg.GraphPath, resolved.WriteJSON); err != nil {
				return err
			}
			logger.Info("association graph written to %s", cfg.GraphPath)
		}

		if cfg.MetadataPath != "" {
			contents, err := sidecar.ResolveContents(ds, resolved)
			if err != nil {
				return err
			}
			if err := writeJSONFile(cfg.MetadataPath, contents.WriteJSON); err != nil {
				return err
			}
			logger.Info("resolved metadata written to %s", cfg.MetadataPath)
		}
	}

	if cfg.OverridesPath != "" {
		if report.Overrides == nil {
			return fmt.Errorf("override report unavailable, evaluation stopped early: %w", stemma.ErrMalformedContent)
		}
		if err := writeJSONFile(cfg.OverridesPath, report.Overrides.WriteJSON); err != nil {
			return err
		}
		logger.Info("override report written to %s", cfg.OverridesPath)
	}

	return nil
}

func writeJSONFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// verdictError maps a report verdict to the error that carries the right
// exit code. A nil return means the run passed.
func verdictError(report *evaluate.Report, ruleset rules.Ruleset, warningsAsErrors bool) error {
	violations, warnings, _ := countBySeverity(report.Diagnostics)

	switch report.Verdict {
	case stemma.VerdictSuccess:
		return nil
	case stemma.VerdictWarning:
		if warningsAsErrors {
			return fmt.Errorf("%d warning(s) under ruleset %s: %w", warnings, ruleset.Name, stemma.ErrWarningsAsErrors)
		}
		return nil
	case stemma.VerdictViolation:
		return fmt.Errorf("%d violation(s) of ruleset %s: %w", violations, ruleset.Name, stemma.ErrRulesetViolation)
	case stemma.VerdictMalformedInput:
		return fmt.Errorf("dataset cannot be resolved under ruleset %s: %w", ruleset.Name, stemma.ErrMalformedContent)
	default:
		return fmt.Errorf("unhandled verdict %v: %w", report.Verdict, stemma.ErrInternal)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	datasetPath := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, projectCfg, err := buildValidateConfig(datasetPath, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	colored := tui.ColorEnabled(projectCfg.Color)

	if cfg.Watch {
		return watchValidate(cfg, projectCfg, logger, colored, nil)
	}

	report, ruleset, err := executeValidation(cfg, projectCfg, logger)
	if err != nil {
		return err
	}

	renderReport(os.Stdout, report, ruleset, colored)
	return verdictError(report, ruleset, cfg.WarningsAsErrors)
}
