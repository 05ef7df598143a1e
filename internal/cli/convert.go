package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/internal/config"
	"github.com/stemma-io/stemma/internal/convert"
	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/evaluate"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/logging"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/internal/tui"
	"github.com/stemma-io/stemma/pkg/stemma"
)

var convertCmd = &cobra.Command{
	Use:   "convert <dataset_path> <target_path>",
	Short: "Convert a dataset to a stricter ruleset",
	Long: `Convert rewrites a dataset so that it satisfies a stricter ruleset,
materializing inherited metadata next to the data files that use it.

The convert command:
1. Validates the source dataset under its own ruleset; only a dataset whose
   associations cannot be resolved at all aborts the conversion
2. Resolves every metadata association to its effective set of files
3. Merges inherited JSON fields into one sidecar per data file
4. Writes the converted tree to target_path, which must not exist yet
5. Records the tool name, version and a run ID in the output's description

Ruleset violations in the source do not abort: converting a dataset that
leans on inheritance into a flat layout is exactly what this command is for.

Arguments:
  dataset_path    Path to the source dataset root directory
  target_path     Directory to create for the converted dataset

Examples:
  # Flatten every inherited value into per-file sidecars
  stemma convert ./study ./study-flat

  # Convert to the no-overwrite layout instead
  stemma convert ./study ./study-clean -t no-overwrite

  # Override the source ruleset used for the pre-conversion check
  stemma convert ./study ./study-flat -r 1.1.x`,
	Args:              RequireSourceAndTarget,
	ValidArgsFunction: completeSourceAndTarget,
	RunE:              runConvert,
}

type convertFlagValues struct {
	to      string
	ruleset string
}

var convertFlags convertFlagValues

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.to, "to", "t", "forbidden",
		"Target ruleset the converted dataset must satisfy\n"+
			"Supported: forbidden, no-overwrite")
	convertCmd.Flags().StringVarP(&convertFlags.ruleset, "ruleset", "r", "",
		"Ruleset for the pre-conversion check of the source dataset\n"+
			"Precedence: --ruleset > $STEMMA_RULESET > .stemma.yaml > SchemaVersion")

	_ = convertCmd.RegisterFlagCompletionFunc("to", completeConversionTargets)
	_ = convertCmd.RegisterFlagCompletionFunc("ruleset", completeRulesetNames)
}

// buildConvertConfig builds a ConvertConfig from CLI flags, environment
// variables and the project configuration at the source dataset root.
// This function is extracted for testability and separation of concerns.
func buildConvertConfig(sourcePath, targetPath string, verbose bool) (stemma.ConvertConfig, *config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Resolve(sourcePath)
	if err != nil {
		return stemma.ConvertConfig{}, nil, err
	}
	if err := projectCfg.Validate(); err != nil {
		return stemma.ConvertConfig{}, nil, err
	}

	cfg := stemma.ConvertConfig{
		SourcePath:    sourcePath,
		TargetPath:    targetPath,
		TargetRuleset: convertFlags.to,
		SourceRuleset: convertFlags.ruleset,
		Verbose:       verbose,
	}
	if err := cfg.Validate(); err != nil {
		return stemma.ConvertConfig{}, nil, err
	}

	return cfg, projectCfg, nil
}

// toolRecord is the provenance stamped into converted datasets. The zero
// RunID makes the exporter mint a fresh one per run.
func toolRecord() stemma.GeneratedBy {
	v, _, _ := resolveVersionInfo()
	return stemma.GeneratedBy{Name: "stemma", Version: v}
}

func runConvert(cmd *cobra.Command, args []string) error {
	sourcePath, targetPath := args[0], args[1]
	verbose := getVerboseFlag(cmd)

	cfg, projectCfg, err := buildConvertConfig(sourcePath, targetPath, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	colored := tui.ColorEnabled(projectCfg.Color)

	target, err := rules.Get(cfg.TargetRuleset)
	if err != nil {
		return err
	}

	ds, err := dataset.Open(cfg.SourcePath, projectCfg.Exclusions...)
	if err != nil {
		return err
	}

	source, err := resolveRuleset(cfg.SourceRuleset, projectCfg.Ruleset, ds)
	if err != nil {
		return err
	}

	g, err := graph.Build(ds, rules.DefaultRegistry())
	if err != nil {
		return err
	}

	report, err := evaluate.Run(ds, g, source)
	if err != nil {
		return err
	}
	if report.Verdict == stemma.VerdictMalformedInput {
		renderReport(os.Stdout, report, source, colored)
		return fmt.Errorf("source dataset cannot be resolved under ruleset %s: %w",
			source.Name, stemma.ErrMalformedContent)
	}

	resolved, err := g.Prune()
	if err != nil {
		return err
	}

	contents, err := sidecar.ResolveContents(ds, resolved)
	if err != nil {
		return err
	}

	exporter := convert.NewExporter(logger, toolRecord())
	if err := exporter.Export(ds, resolved, contents, target, cfg.TargetPath); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	logger.Info("converted dataset written to %s", cfg.TargetPath)
	return nil
}
