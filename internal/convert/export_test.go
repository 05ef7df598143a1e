package convert

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/evaluate"
	"github.com/stemma-io/stemma/internal/files/filesystem"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/logging"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/pkg/stemma"
)

const outPath = "/data/out"

var testTool = stemma.GeneratedBy{
	Name:    "stemma",
	Version: "1.2.3",
	RunID:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
}

// newFixture builds a source dataset on a memory filesystem shared with the
// conversion output, so tests can reopen and inspect the output in place.
func newFixture(t *testing.T, files map[string]string) (*dataset.Dataset, *filesystem.MemoryFileSystem) {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem("/data/demo")
	for path, content := range files {
		mfs.AddFile(path, content)
	}
	ds, err := dataset.OpenWithFS("/data/demo", mfs)
	require.NoError(t, err)
	return ds, mfs
}

func resolveFixture(t *testing.T, ds *dataset.Dataset) (*graph.ResolvedGraph, *sidecar.Contents) {
	t.Helper()
	g, err := graph.Build(ds, rules.DefaultRegistry())
	require.NoError(t, err)
	resolved, err := g.Prune()
	require.NoError(t, err)
	contents, err := sidecar.ResolveContents(ds, resolved)
	require.NoError(t, err)
	return resolved, contents
}

func mustRuleset(t *testing.T, name string) rules.Ruleset {
	t.Helper()
	ruleset, err := rules.Get(name)
	require.NoError(t, err)
	return ruleset
}

// exportFixture converts the fixture to the target ruleset and returns the
// output dataset alongside the shared filesystem.
func exportFixture(t *testing.T, files map[string]string, target string) (*dataset.Dataset, *filesystem.MemoryFileSystem) {
	t.Helper()
	ds, mfs := newFixture(t, files)
	resolved, contents := resolveFixture(t, ds)

	exporter := NewExporterWithFS(logging.NewNullLogger(), testTool, mfs)
	require.NoError(t, exporter.Export(ds, resolved, contents, mustRuleset(t, target), outPath))

	out, err := dataset.OpenWithFS(outPath, mfs)
	require.NoError(t, err)
	return out, mfs
}

func readOut(t *testing.T, out *dataset.Dataset, rel string) string {
	t.Helper()
	content, err := out.ReadFile(rel)
	require.NoError(t, err)
	return string(content)
}

// revalidate evaluates the conversion output against the target ruleset it
// was written for.
func revalidate(t *testing.T, mfs *filesystem.MemoryFileSystem, target string) *evaluate.Report {
	t.Helper()
	out, err := dataset.OpenWithFS(outPath, mfs)
	require.NoError(t, err)
	g, err := graph.Build(out, rules.DefaultRegistry())
	require.NoError(t, err)
	report, err := evaluate.Run(out, g, mustRuleset(t, target))
	require.NoError(t, err)
	return report
}

func TestExport_ForbiddenWritesSidecars(t *testing.T) {
	out, mfs := exportFixture(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo", "SchemaVersion": "1.7.0"}`,
		"task-go_beh.json":               `{"a": 1}`,
		"task-go_beh.bval":               "0.5 0.5\n",
		"sub-01/sub-01_task-go_beh.json": `{"b": 2}`,
		"sub-01/sub-01_task-go_beh.nii":  "scan one",
		"sub-02/sub-02_task-go_beh.nii":  "scan two",
		"sub-02/sub-02_rest.edf":         "recording",
	}, "forbidden")

	files, err := out.Files()
	require.NoError(t, err)
	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.bval",
		"sub-01/sub-01_task-go_beh.json",
		"sub-01/sub-01_task-go_beh.nii",
		"sub-02/sub-02_rest.edf",
		"sub-02/sub-02_task-go_beh.bval",
		"sub-02/sub-02_task-go_beh.json",
		"sub-02/sub-02_task-go_beh.nii",
	}, files)

	// Every sidecar carries the full resolved content of its data file
	require.Equal(t, "{\n    \"a\": 1,\n    \"b\": 2\n}\n",
		readOut(t, out, "sub-01/sub-01_task-go_beh.json"))
	require.Equal(t, "{\n    \"a\": 1\n}\n",
		readOut(t, out, "sub-02/sub-02_task-go_beh.json"))
	require.Equal(t, "5.000000000000000000e-01 5.000000000000000000e-01\n",
		readOut(t, out, "sub-01/sub-01_task-go_beh.bval"))
	require.Equal(t, "5.000000000000000000e-01 5.000000000000000000e-01\n",
		readOut(t, out, "sub-02/sub-02_task-go_beh.bval"))

	// Data files are copied unmodified, source metadata files are not copied
	require.Equal(t, "scan one", readOut(t, out, "sub-01/sub-01_task-go_beh.nii"))
	require.Equal(t, "scan two", readOut(t, out, "sub-02/sub-02_task-go_beh.nii"))
	require.False(t, out.Exists("task-go_beh.json"))
	require.False(t, out.Exists("task-go_beh.bval"))

	// A data file without metadata still has no sidecar afterwards
	require.False(t, out.Exists("sub-02/sub-02_rest.json"))

	report := revalidate(t, mfs, "forbidden")
	require.Equal(t, stemma.VerdictSuccess, report.Verdict)
	require.Empty(t, report.Diagnostics)
}

func TestExport_RewritesDescription(t *testing.T) {
	out, _ := exportFixture(t, map[string]string{
		"dataset_description.json":      `{"Name": "demo", "SchemaVersion": "1.7.0"}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	}, "forbidden")

	desc, err := out.ReadDescription()
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "SchemaVersion", "GeneratedBy", "SourceDatasets"}, desc.Keys())

	raw, ok := desc.Get("GeneratedBy")
	require.True(t, ok)
	var records []stemma.GeneratedBy
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Equal(t, []stemma.GeneratedBy{testTool}, records)

	raw, ok = desc.Get("SourceDatasets")
	require.True(t, ok)
	var sources []string
	require.NoError(t, json.Unmarshal(raw, &sources))
	require.Equal(t, []string{"/data/demo"}, sources)
}

func TestExport_AppendsToExistingProvenance(t *testing.T) {
	out, _ := exportFixture(t, map[string]string{
		"dataset_description.json": `{` +
			`"Name": "demo", ` +
			`"GeneratedBy": [{"Name": "scanner", "Version": "0.9", "RunID": "11111111-1111-1111-1111-111111111111"}], ` +
			`"SourceDatasets": ["/data/raw"]}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	}, "forbidden")

	desc, err := out.ReadDescription()
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "GeneratedBy", "SourceDatasets"}, desc.Keys())

	raw, ok := desc.Get("GeneratedBy")
	require.True(t, ok)
	var records []stemma.GeneratedBy
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 2)
	require.Equal(t, "scanner", records[0].Name)
	require.Equal(t, testTool, records[1])

	raw, ok = desc.Get("SourceDatasets")
	require.True(t, ok)
	var sources []string
	require.NoError(t, json.Unmarshal(raw, &sources))
	require.Equal(t, []string{"/data/raw", "/data/demo"}, sources)
}

func TestExport_FreshRunIDWhenUnset(t *testing.T) {
	ds, mfs := newFixture(t, map[string]string{
		"dataset_description.json":      `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	})
	resolved, contents := resolveFixture(t, ds)

	exporter := NewExporterWithFS(logging.NewNullLogger(), stemma.GeneratedBy{Name: "stemma", Version: "dev"}, mfs)
	require.NoError(t, exporter.Export(ds, resolved, contents, mustRuleset(t, "forbidden"), outPath))

	out, err := dataset.OpenWithFS(outPath, mfs)
	require.NoError(t, err)
	desc, err := out.ReadDescription()
	require.NoError(t, err)

	raw, ok := desc.Get("GeneratedBy")
	require.True(t, ok)
	var records []stemma.GeneratedBy
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	require.NotEqual(t, uuid.Nil, records[0].RunID)
}

func TestExport_CopiesPreservedEntries(t *testing.T) {
	out, _ := exportFixture(t, map[string]string{
		"dataset_description.json":      `{"Name": "demo"}`,
		"code/analyze.sh":               "#!/bin/sh\n",
		"participants.tsv":              "participant_id\nsub-01\n",
		"derivatives/old/report.txt":    "stale",
		"sub-01/sub-01_task-go_beh.nii": "",
	}, "forbidden")

	require.Equal(t, "#!/bin/sh\n", readOut(t, out, "code/analyze.sh"))
	require.Equal(t, "participant_id\nsub-01\n", readOut(t, out, "participants.tsv"))

	// derivatives is excluded from scanning but not preserved
	require.False(t, out.Exists("derivatives"))

	// Entries absent from the source are simply skipped
	require.False(t, out.Exists("sourcedata"))
}

func TestExport_RejectsNonConvertibleTarget(t *testing.T) {
	ds, mfs := newFixture(t, map[string]string{
		"dataset_description.json":      `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	})
	resolved, contents := resolveFixture(t, ds)

	exporter := NewExporterWithFS(logging.NewNullLogger(), testTool, mfs)
	err := exporter.Export(ds, resolved, contents, mustRuleset(t, "1.1.x"), outPath)
	require.True(t, errors.Is(err, stemma.ErrUsage), "expected ErrUsage, got %v", err)
	require.ErrorContains(t, err, "forbidden, no-overwrite")

	// Nothing was created
	_, statErr := mfs.Stat(outPath)
	require.Error(t, statErr)
}

func TestExport_RefusesExistingTarget(t *testing.T) {
	ds, mfs := newFixture(t, map[string]string{
		"dataset_description.json":      `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.nii": "",
	})
	resolved, contents := resolveFixture(t, ds)
	require.NoError(t, mfs.MkdirAll(outPath, 0755))

	exporter := NewExporterWithFS(logging.NewNullLogger(), testTool, mfs)
	err := exporter.Export(ds, resolved, contents, mustRuleset(t, "forbidden"), outPath)
	require.True(t, errors.Is(err, stemma.ErrOutputExists), "expected ErrOutputExists, got %v", err)
}

func TestNewExporterWithFS_NilArguments(t *testing.T) {
	require.Panics(t, func() {
		NewExporterWithFS(nil, testTool, filesystem.NewMemoryFileSystem("/data/demo"))
	})
	require.Panics(t, func() {
		NewExporterWithFS(logging.NewNullLogger(), testTool, nil)
	})
}
