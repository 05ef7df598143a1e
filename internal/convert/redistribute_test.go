package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/logging"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/pkg/stemma"
)

func TestExport_NoOverwriteRedistributesSharedKeys(t *testing.T) {
	out, mfs := exportFixture(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo"}`,
		"task-go_beh.json":               `{"a": 1, "b": 2}`,
		"sub-01/sub-01_task-go_beh.json": `{"c": 9}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.json": `{"c": 8}`,
		"sub-02/sub-02_task-go_beh.nii":  "",
	}, "no-overwrite")

	files, err := out.Files()
	require.NoError(t, err)
	require.Equal(t, []string{
		"beh.json",
		"sub-01/sub-01_task-go_beh.nii",
		"sub-01_beh.json",
		"sub-02/sub-02_task-go_beh.nii",
		"sub-02_beh.json",
	}, files)

	// Values shared by every subject land at the root under the shortest
	// name; per-subject values keep the subject entity so they cannot reach
	// the other subject
	require.Equal(t, "{\n    \"a\": 1,\n    \"b\": 2\n}\n", readOut(t, out, "beh.json"))
	require.Equal(t, "{\n    \"c\": 9\n}\n", readOut(t, out, "sub-01_beh.json"))
	require.Equal(t, "{\n    \"c\": 8\n}\n", readOut(t, out, "sub-02_beh.json"))

	report := revalidate(t, mfs, "no-overwrite")
	require.Equal(t, stemma.VerdictSuccess, report.Verdict)
	require.True(t, report.InheritanceFound)
}

func TestExport_NoOverwriteGroupsEquivalentMatrices(t *testing.T) {
	// The two source files differ in spacing only, so their rendered
	// contents share a digest and one root file serves both subjects
	out, mfs := exportFixture(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.bval": "4 5 6\n",
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.bval": "4  5   6\n",
		"sub-02/sub-02_task-go_beh.nii":  "",
	}, "no-overwrite")

	files, err := out.Files()
	require.NoError(t, err)
	require.Equal(t, []string{
		"beh.bval",
		"sub-01/sub-01_task-go_beh.nii",
		"sub-02/sub-02_task-go_beh.nii",
	}, files)

	require.Equal(t,
		"4.000000000000000000e+00 5.000000000000000000e+00 6.000000000000000000e+00\n",
		readOut(t, out, "beh.bval"))

	report := revalidate(t, mfs, "no-overwrite")
	require.Equal(t, stemma.VerdictSuccess, report.Verdict)
}

func TestExport_NoOverwriteSplitsWhenNoSinglePathServes(t *testing.T) {
	// sub-03 never carried the value, so a root file reaching it is out and
	// the group has to split into per-subject files
	out, _ := exportFixture(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.json": `{"k": 5}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
		"sub-02/sub-02_task-go_beh.json": `{"k": 5}`,
		"sub-02/sub-02_task-go_beh.nii":  "",
		"sub-03/sub-03_task-go_beh.nii":  "",
	}, "no-overwrite")

	files, err := out.Files()
	require.NoError(t, err)
	require.Equal(t, []string{
		"sub-01/sub-01_task-go_beh.nii",
		"sub-01_beh.json",
		"sub-02/sub-02_task-go_beh.nii",
		"sub-02_beh.json",
		"sub-03/sub-03_task-go_beh.nii",
	}, files)

	require.Equal(t, "{\n    \"k\": 5\n}\n", readOut(t, out, "sub-01_beh.json"))
	require.Equal(t, "{\n    \"k\": 5\n}\n", readOut(t, out, "sub-02_beh.json"))
}

func TestExport_CandidateLimit(t *testing.T) {
	ds, mfs := newFixture(t, map[string]string{
		"dataset_description.json":       `{"Name": "demo"}`,
		"sub-01/sub-01_task-go_beh.json": `{"a": 1}`,
		"sub-01/sub-01_task-go_beh.nii":  "",
	})
	resolved, contents := resolveFixture(t, ds)

	exporter := NewExporterWithFS(logging.NewNullLogger(), testTool, mfs)
	exporter.candidateLimit = 3

	err := exporter.Export(ds, resolved, contents, mustRuleset(t, "no-overwrite"), outPath)
	require.Error(t, err)

	var limitErr *CandidateLimitError
	require.True(t, errors.As(err, &limitErr), "expected CandidateLimitError, got %v", err)
	require.Equal(t, rules.JSONExtension, limitErr.Extension)
	require.Equal(t, 3, limitErr.Limit)
	require.ErrorContains(t, err, "exceeded 3 candidate paths")
}

func TestShrink_RefusesNonCoveringCandidate(t *testing.T) {
	data, err := layout.Parse("sub-01/sub-01_task-go_beh.nii")
	require.NoError(t, err)
	meta, err := layout.Parse("sub-02_beh.json")
	require.NoError(t, err)

	_, err = shrink([]*layout.Path{data}, meta)
	require.True(t, errors.Is(err, stemma.ErrInternal), "expected ErrInternal, got %v", err)
}
