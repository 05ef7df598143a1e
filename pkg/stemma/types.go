package stemma

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidateConfig contains all parameters needed for a validation run.
type ValidateConfig struct {
	// DatasetPath is the root directory of the dataset to validate
	DatasetPath string

	// Ruleset is the ruleset name to validate against.
	// Empty means resolve from STEMMA_RULESET, .stemma.yaml, or the
	// SchemaVersion field of the dataset description, in that order.
	Ruleset string

	// WarningsAsErrors promotes warning-class findings to a failing verdict
	WarningsAsErrors bool

	// GraphPath, when non-empty, is the file to write the association graph to
	GraphPath string

	// MetadataPath, when non-empty, is the file to write resolved per-file
	// metadata to. Forces content loading even when no check needs it.
	MetadataPath string

	// OverridesPath, when non-empty, is the file to write the override report to
	OverridesPath string

	// Watch re-runs validation whenever the dataset changes on disk
	Watch bool

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ValidateConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ValidateConfig) Validate() error {
	var errs []error

	if c.DatasetPath == "" {
		errs = append(errs, fmt.Errorf("DatasetPath is required: %w", ErrUsage))
	}

	// Watch mode re-evaluates in a loop and would rewrite one-shot export
	// targets on every event.
	if c.Watch && (c.GraphPath != "" || c.MetadataPath != "" || c.OverridesPath != "") {
		errs = append(errs, fmt.Errorf("watch mode cannot be combined with file exports: %w", ErrUsage))
	}

	return errors.Join(errs...)
}

// ConvertConfig contains all parameters needed for a conversion run.
type ConvertConfig struct {
	// SourcePath is the root directory of the dataset to convert
	SourcePath string

	// TargetPath is the directory to write the converted dataset to.
	// It must not already exist.
	TargetPath string

	// TargetRuleset is the ruleset the converted dataset must satisfy
	TargetRuleset string

	// SourceRuleset optionally overrides ruleset resolution for the source
	// dataset. Empty means the same resolution order as validation.
	SourceRuleset string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ConvertConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ConvertConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrUsage))
	}

	if c.TargetPath == "" {
		errs = append(errs, fmt.Errorf("TargetPath is required: %w", ErrUsage))
	}

	if c.TargetRuleset == "" {
		errs = append(errs, fmt.Errorf("TargetRuleset is required: %w", ErrUsage))
	}

	if c.SourcePath != "" && c.SourcePath == c.TargetPath {
		errs = append(errs, fmt.Errorf("TargetPath must differ from SourcePath: %w", ErrUsage))
	}

	return errors.Join(errs...)
}

// Verdict is the overall outcome of a validation run.
// Values are ordered by severity so that merging two verdicts is a max.
type Verdict int

const (
	VerdictSuccess        Verdict = iota // every check passed
	VerdictWarning                       // warning-class findings only
	VerdictViolation                     // at least one ruleset violation
	VerdictMalformedInput                // dataset too broken to finish checking
)

// String returns a human-readable string representation of the Verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictWarning:
		return "warning"
	case VerdictViolation:
		return "violation"
	case VerdictMalformedInput:
		return "malformed input"
	default:
		return fmt.Sprintf("Unknown(%d)", v)
	}
}

// IsValid returns true if the Verdict is a valid, defined value.
func (v Verdict) IsValid() bool {
	return v >= VerdictSuccess && v <= VerdictMalformedInput
}

// Merge returns the more severe of the two verdicts.
func (v Verdict) Merge(other Verdict) Verdict {
	if other > v {
		return other
	}
	return v
}

// ExitCode returns the process exit code for the verdict.
// WarningsAsErrors reports whether warning findings should fail the run.
func (v Verdict) ExitCode(warningsAsErrors bool) int {
	switch v {
	case VerdictSuccess:
		return ExitSuccess
	case VerdictWarning:
		if warningsAsErrors {
			return ExitWarningsAsErrors
		}
		return ExitSuccess
	case VerdictViolation:
		return ExitViolation
	case VerdictMalformedInput:
		return ExitMalformedDataset
	default:
		return ExitInternalError
	}
}

// Severity classifies a single diagnostic finding.
type Severity int

const (
	SeverityInfo      Severity = iota // informational note, never affects the verdict
	SeverityWarning                   // suspicious but permitted by the ruleset
	SeverityViolation                 // the ruleset forbids this
)

// String returns a human-readable string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityViolation:
		return "violation"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsValid returns true if the Severity is a valid, defined value.
func (s Severity) IsValid() bool {
	return s >= SeverityInfo && s <= SeverityViolation
}

// Diagnostic is a single finding produced by a validation check.
type Diagnostic struct {
	// Check is the stable identifier of the check that produced the finding,
	// e.g. "metadata-placement" or "nearest-ambiguity"
	Check string

	// Severity classifies the finding
	Severity Severity

	// Message is the human-readable description of the finding
	Message string

	// Paths are the dataset-relative paths involved, most specific first
	Paths []string
}

// GeneratedBy is the provenance record appended to the dataset description
// of a converted dataset.
type GeneratedBy struct {
	// Name of the tool that produced the dataset
	Name string `json:"Name"`

	// Version of the tool
	Version string `json:"Version"`

	// RunID uniquely identifies the conversion run that produced the dataset
	RunID uuid.UUID `json:"RunID"`
}
