package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/files/filesystem"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/pkg/stemma"
)

func newTestDataset(t *testing.T, files map[string]string) *dataset.Dataset {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem("/data/demo")
	for path, content := range files {
		mfs.AddFile(path, content)
	}
	ds, err := dataset.OpenWithFS("/data/demo", mfs)
	require.NoError(t, err)
	return ds
}

func buildGraph(t *testing.T, files map[string]string) *Graph {
	t.Helper()
	g, err := Build(newTestDataset(t, files), rules.DefaultRegistry())
	require.NoError(t, err)
	return g
}

func rels(paths []*layout.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Rel()
	}
	return out
}

func TestBuild_Classification(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo"}`,
		"task-go_beh.json":               `{}`,
		"sub-01/sub-01_task-go_beh.bval": "0 0 0\n",
		"sub-01/sub-01_task-go_beh.json": `{}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.nii":  "",
	})

	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.nii",
		"sub-02/sub-02_task-go_beh.nii",
	}, rels(g.DataFiles()))

	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.bval",
		"sub-01/sub-01_task-go_beh.json",
		"task-go_beh.json",
	}, rels(g.MetadataFiles()))
}

func TestBuild_Candidates(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"task-go_beh.json":               `{}`,
		"sub-01/sub-01_task-go_beh.bval": "0 0 0\n",
		"sub-01/sub-01_task-go_beh.json": `{}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.nii":  "",
	})

	byExt := g.CandidatesFor("sub-01/sub-01_task-go_beh.nii")
	require.NotNil(t, byExt)
	require.Equal(t, []string{
		"task-go_beh.json",
		"sub-01/sub-01_task-go_beh.json",
	}, rels(byExt[".json"]))
	require.Equal(t, []string{"sub-01/sub-01_task-go_beh.bval"}, rels(byExt[".bval"]))
	require.NotContains(t, byExt, ".tsv")

	// the subject-level files do not reach the sibling subject
	byExt = g.CandidatesFor("sub-02/sub-02_task-go_beh.nii")
	require.Equal(t, []string{"task-go_beh.json"}, rels(byExt[".json"]))
	require.NotContains(t, byExt, ".bval")

	require.Nil(t, g.CandidatesFor("sub-03/sub-03_task-go_beh.nii"))
}

func TestBuild_CandidateOrderingWithinLevel(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"task-go_run-1.json":                  `{}`,
		"task-go_beh.json":                    `{}`,
		"task-go_run-1_beh.json":              `{}`,
		"sub-01/sub-01_task-go_beh.json":      `{}`,
		"sub-01/sub-01_task-go_run-1_beh.nii": "",
	})

	// within the root level: suffix-less first, then by entity count;
	// the subject level follows the whole root level
	byExt := g.CandidatesFor("sub-01/sub-01_task-go_run-1_beh.nii")
	require.Equal(t, []string{
		"task-go_run-1.json",
		"task-go_beh.json",
		"task-go_run-1_beh.json",
		"sub-01/sub-01_task-go_beh.json",
	}, rels(byExt[".json"]))
}

func TestBuild_DataForMetadata(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"task-go_beh.json":               `{}`,
		"task-rest_beh.json":             `{}`,
		"sub-01/sub-01_task-go_beh.json": `{}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.nii":  "",
	})

	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.nii",
		"sub-02/sub-02_task-go_beh.nii",
	}, rels(g.DataFor("task-go_beh.json")))

	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.nii",
	}, rels(g.DataFor("sub-01/sub-01_task-go_beh.json")))

	// registered as a key even though no data file carries task-rest
	require.Empty(t, g.DataFor("task-rest_beh.json"))
	require.Contains(t, rels(g.MetadataFiles()), "task-rest_beh.json")
}

func TestBuild_SuffixGuardsApplicability(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"task-go_events.json":           `{}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	})

	// suffix "events" never matches suffix "beh"
	require.Nil(t, g.CandidatesFor("sub-01/sub-01_task-go_beh.nii"))
	require.Empty(t, g.DataFor("task-go_events.json"))
}

func TestBuild_MalformedPathAborts(t *testing.T) {
	ds := newTestDataset(t, map[string]string{
		"sub-01/sub-01_-bad_beh.nii": "",
	})

	_, err := Build(ds, rules.DefaultRegistry())
	require.Error(t, err)
	require.True(t, errors.Is(err, stemma.ErrMalformedPath))
}

func TestBuild_Registry(t *testing.T) {
	registry := rules.DefaultRegistry()
	g, err := Build(newTestDataset(t, map[string]string{
		"sub-01/sub-01_beh.nii": "",
	}), registry)
	require.NoError(t, err)
	require.Same(t, registry, g.Registry())
}
