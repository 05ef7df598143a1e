package rules

import (
	"errors"
	"fmt"

	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// PathCheck selects which metadata placement legality rule a ruleset applies.
type PathCheck int

const (
	// PathCheckSubjectScope requires subject-scoped metadata files (first
	// entity carries the subject key) to reside below the dataset root, and
	// all other metadata files to reside only at the root.
	PathCheckSubjectScope PathCheck = iota

	// PathCheckReachability flags a metadata file that matches some data
	// file by name alone while sitting in a branch of the tree from which
	// it can never apply to it.
	PathCheckReachability
)

// String returns a human-readable string representation of the path check.
func (c PathCheck) String() string {
	switch c {
	case PathCheckSubjectScope:
		return "subject-scope"
	case PathCheckReachability:
		return "reachability"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// IsValid returns true if the path check is a valid, defined value.
func (c PathCheck) IsValid() bool {
	return c >= PathCheckSubjectScope && c <= PathCheckReachability
}

// Ruleset is one immutable named variant of the naming convention.
type Ruleset struct {
	// Name identifies the ruleset in the catalog and in diagnostics
	Name string

	// CompulsorySuffix requires a suffix on every file, metadata included
	CompulsorySuffix bool

	// JSONWithinDir constrains applicable JSON files per directory level
	JSONWithinDir layout.WithinDirPolicy

	// NonJSONWithinDir constrains every other metadata extension per
	// directory level
	NonJSONWithinDir layout.WithinDirPolicy

	// PermitJSONFieldOverwrite allows a nearer JSON file to override keys
	// set by a more distant one
	PermitJSONFieldOverwrite bool

	// PermitMultipleMetadataPerData allows one data file to have more than
	// one applicable metadata file of a given extension overall
	PermitMultipleMetadataPerData bool

	// PermitMultipleDataPerMetadata allows one metadata file to apply to
	// more than one data file
	PermitMultipleDataPerMetadata bool

	// PermitNonSidecar allows metadata association that is not a strict
	// one-to-one identical-stem sidecar pairing
	PermitNonSidecar bool

	// PathCheck selects the metadata placement legality rule
	PathCheck PathCheck

	// SubjectKey is the entity key marking subject-scoped files,
	// consulted by the subject-scope path check
	SubjectKey string
}

// Validate checks if the Ruleset has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (r *Ruleset) Validate() error {
	var errs []error

	if r.Name == "" {
		errs = append(errs, fmt.Errorf("Name is required: %w", stemma.ErrUsage))
	}

	if !r.JSONWithinDir.IsValid() {
		errs = append(errs, fmt.Errorf("JSONWithinDir %d is not a valid policy: %w", r.JSONWithinDir, stemma.ErrUsage))
	}

	if !r.NonJSONWithinDir.IsValid() {
		errs = append(errs, fmt.Errorf("NonJSONWithinDir %d is not a valid policy: %w", r.NonJSONWithinDir, stemma.ErrUsage))
	}

	if !r.PathCheck.IsValid() {
		errs = append(errs, fmt.Errorf("PathCheck %d is not a valid check: %w", r.PathCheck, stemma.ErrUsage))
	}

	if r.PathCheck == PathCheckSubjectScope && r.SubjectKey == "" {
		errs = append(errs, fmt.Errorf("SubjectKey is required by the subject-scope path check: %w", stemma.ErrUsage))
	}

	return errors.Join(errs...)
}

// WithinDir returns the within-directory policy governing the extension.
func (r *Ruleset) WithinDir(extension string) layout.WithinDirPolicy {
	if extension == JSONExtension {
		return r.JSONWithinDir
	}
	return r.NonJSONWithinDir
}
