package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stemma-io/stemma/internal/config"
	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <dataset_path>",
	Short: "Browse data files and the metadata they inherit",
	Long: `Browse walks the data files of a dataset interactively. For each file it
shows the chain of metadata files that apply to it, from the dataset root
down to its own sidecar, and a preview of the merged JSON metadata.

In a terminal the browser is an interactive list; when stdout is not a
terminal, or in CI, the same information is printed as plain text.

Arguments:
  dataset_path    Path to the dataset root directory

Examples:
  # Browse a dataset interactively
  stemma browse ./study

  # Pipe the plain listing
  stemma browse ./study | less`,
	Args:              RequireDatasetPath,
	ValidArgsFunction: completeDirectories,
	RunE:              runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	datasetPath := args[0]

	_ = godotenv.Load()
	projectCfg, err := config.Resolve(datasetPath)
	if err != nil {
		return err
	}
	if err := projectCfg.Validate(); err != nil {
		return err
	}

	ds, err := dataset.Open(datasetPath, projectCfg.Exclusions...)
	if err != nil {
		return err
	}

	entries, err := buildBrowseEntries(ds)
	if err != nil {
		return err
	}

	return tui.RunBrowser(os.Stdout, datasetPath, entries)
}

// buildBrowseEntries resolves the dataset graph and precomputes one entry
// per data file, so the browser model never touches the filesystem.
func buildBrowseEntries(ds *dataset.Dataset) ([]tui.BrowseEntry, error) {
	g, err := graph.Build(ds, rules.DefaultRegistry())
	if err != nil {
		return nil, err
	}
	resolved, err := g.Prune()
	if err != nil {
		return nil, err
	}
	contents, err := sidecar.ResolveContents(ds, resolved)
	if err != nil {
		return nil, err
	}

	exts := resolved.Registry().Extensions()
	var entries []tui.BrowseEntry
	for _, data := range resolved.DataFiles() {
		entry := tui.BrowseEntry{Path: data.Rel()}

		byExt := resolved.ResolvedFor(data.Rel())
		for _, ext := range exts {
			for _, meta := range byExt[ext].Paths() {
				entry.Chain = append(entry.Chain, meta.Rel())
			}
		}

		if content, ok := contents.ForFile(data.Rel())[rules.JSONExtension]; ok {
			rendered, err := content.Format()
			if err != nil {
				return nil, err
			}
			entry.Preview = string(rendered)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
