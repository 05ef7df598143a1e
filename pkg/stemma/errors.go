package stemma

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	rep, err := eval.Run(ds, g, rs)
//	if errors.Is(err, stemma.ErrMalformedContent) {
//	    // A metadata file could not be parsed as its expected format
//	}
var (
	// ErrUsage indicates the command line or API was invoked incorrectly.
	ErrUsage = errors.New("usage error")

	// ErrDatasetNotFound indicates the dataset directory does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrNoRuleset indicates no ruleset was requested and none could be
	// derived from the dataset description.
	ErrNoRuleset = errors.New("no ruleset selected")

	// ErrUnknownRuleset indicates the requested ruleset name is not in the catalog.
	ErrUnknownRuleset = errors.New("unknown ruleset")

	// ErrMalformedPath indicates a filename could not be parsed into
	// entities, suffix and extension.
	ErrMalformedPath = errors.New("malformed path")

	// ErrMalformedContent indicates a metadata file could not be parsed
	// as its expected format.
	ErrMalformedContent = errors.New("malformed metadata content")

	// ErrAssociation indicates a structural ambiguity in the association
	// graph that pruning cannot resolve.
	ErrAssociation = errors.New("unresolvable metadata association")

	// ErrRulesetViolation indicates the dataset does not comply with the
	// evaluated ruleset.
	ErrRulesetViolation = errors.New("ruleset violation")

	// ErrWarningsAsErrors indicates warnings were found and the caller
	// requested they be treated as errors.
	ErrWarningsAsErrors = errors.New("warnings treated as errors")

	// ErrOutputExists indicates the conversion output path already exists.
	ErrOutputExists = errors.New("output path already exists")

	// ErrConfigNotFound indicates no project configuration file was found.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInternal indicates a violated internal invariant. It is a defect
	// in this program, not a problem with the dataset.
	ErrInternal = errors.New("internal error")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrOutputExists):
		return ExitUsageError
	case errors.Is(err, ErrDatasetNotFound):
		return ExitNoDataset
	case errors.Is(err, ErrNoRuleset):
		return ExitNoRuleset
	case errors.Is(err, ErrUnknownRuleset):
		return ExitNoRuleset
	case errors.Is(err, ErrMalformedPath):
		return ExitMalformedDataset
	case errors.Is(err, ErrMalformedContent):
		return ExitMalformedDataset
	case errors.Is(err, ErrAssociation):
		return ExitMalformedDataset
	case errors.Is(err, ErrRulesetViolation):
		return ExitViolation
	case errors.Is(err, ErrWarningsAsErrors):
		return ExitWarningsAsErrors
	case errors.Is(err, ErrInternal):
		return ExitInternalError
	}

	// Cobra reports flag and argument mistakes as plain errors
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
