package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stemma-io/stemma/internal/evaluate"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/pkg/stemma"
)

func mustRuleset(t *testing.T, name string) rules.Ruleset {
	t.Helper()
	ruleset, err := rules.Get(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return ruleset
}

func TestRenderReport_Success(t *testing.T) {
	report := &evaluate.Report{Verdict: stemma.VerdictSuccess}

	var buf strings.Builder
	renderReport(&buf, report, mustRuleset(t, "1.7.x"), false)

	out := buf.String()
	if !strings.Contains(out, "dataset complies with ruleset 1.7.x") {
		t.Errorf("Expected success summary, got: %q", out)
	}
}

func TestRenderReport_ListsDiagnostics(t *testing.T) {
	report := &evaluate.Report{Verdict: stemma.VerdictViolation}
	report.Diagnostics = []stemma.Diagnostic{
		{
			Check:    evaluate.CheckMultipleMetadataPerData,
			Severity: stemma.SeverityViolation,
			Message:  "2 .json files apply to sub-01/sub-01_task-go_beh.nii",
		},
		{
			Check:    evaluate.CheckNonSidecarPair,
			Severity: stemma.SeverityWarning,
			Message:  "task-go_beh.json is not a sidecar of sub-01/sub-01_task-go_beh.nii",
		},
	}

	var buf strings.Builder
	renderReport(&buf, report, mustRuleset(t, "forbidden"), false)

	out := buf.String()
	if !strings.Contains(out, evaluate.CheckMultipleMetadataPerData+": 2 .json files apply") {
		t.Errorf("Expected violation line, got: %q", out)
	}
	if !strings.Contains(out, "! "+evaluate.CheckNonSidecarPair) {
		t.Errorf("Expected warning tag, got: %q", out)
	}
	if !strings.Contains(out, "dataset violates ruleset forbidden: 1 violation(s), 1 warning(s)") {
		t.Errorf("Expected violation summary, got: %q", out)
	}
}

func TestRenderReport_MalformedInput(t *testing.T) {
	report := &evaluate.Report{Verdict: stemma.VerdictMalformedInput}

	var buf strings.Builder
	renderReport(&buf, report, mustRuleset(t, "1.1.x"), false)

	if !strings.Contains(buf.String(), "cannot be resolved under ruleset 1.1.x") {
		t.Errorf("Expected malformed summary, got: %q", buf.String())
	}
}

func TestCountBySeverity(t *testing.T) {
	diags := []stemma.Diagnostic{
		{Severity: stemma.SeverityViolation},
		{Severity: stemma.SeverityViolation},
		{Severity: stemma.SeverityWarning},
		{Severity: stemma.SeverityInfo},
	}

	violations, warnings, infos := countBySeverity(diags)
	if violations != 2 || warnings != 1 || infos != 1 {
		t.Errorf("Expected 2/1/1, got %d/%d/%d", violations, warnings, infos)
	}
}

func TestVerdictError_Mapping(t *testing.T) {
	ruleset := mustRuleset(t, "1.7.x")

	tests := []struct {
		name             string
		verdict          stemma.Verdict
		warningsAsErrors bool
		wantErr          error
	}{
		{"success", stemma.VerdictSuccess, false, nil},
		{"warning tolerated", stemma.VerdictWarning, false, nil},
		{"warning promoted", stemma.VerdictWarning, true, stemma.ErrWarningsAsErrors},
		{"violation", stemma.VerdictViolation, false, stemma.ErrRulesetViolation},
		{"malformed", stemma.VerdictMalformedInput, false, stemma.ErrMalformedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &evaluate.Report{Verdict: tt.verdict}
			err := verdictError(report, ruleset, tt.warningsAsErrors)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got: %v", tt.wantErr, err)
			}

			// The error must translate to the same exit code the verdict
			// itself reports.
			if got, want := stemma.ExitCodeForError(err), tt.verdict.ExitCode(tt.warningsAsErrors); got != want {
				t.Errorf("Expected exit code %d, got %d", want, got)
			}
		})
	}
}
