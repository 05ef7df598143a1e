package stemma

import "time"

// Exit codes for semantic error classification.
// Codes 3-7 and 125 are stable: scripts key off them to distinguish
// "dataset missing" from "dataset non-compliant" from "dataset broken".
const (
	ExitSuccess          = 0   // Evaluation/conversion completed, dataset compliant
	ExitGeneralError     = 1   // Unknown or unclassified error
	ExitUsageError       = 3   // CLI usage error (missing args, invalid flags)
	ExitNoDataset        = 4   // Dataset directory not found
	ExitNoRuleset        = 5   // No ruleset selected and none derivable
	ExitMalformedDataset = 6   // Dataset cannot be parsed or graph cannot be resolved
	ExitViolation        = 7   // Dataset violates the evaluated ruleset
	ExitInternalError    = 8   // Internal panic or violated invariant
	ExitWarningsAsErrors = 125 // Warnings present and -w/--warnings-as-errors set
)

const (
	// DescriptionFile is the reserved dataset description filename at the
	// dataset root. It carries the schema version the dataset claims to
	// follow, plus provenance records for converted datasets.
	DescriptionFile = "dataset_description.json"

	// SchemaVersionKey is the description key naming the schema version
	// used to derive a ruleset when none is requested explicitly.
	SchemaVersionKey = "SchemaVersion"

	// GeneratedByKey is the description key listing the tools that
	// produced a (converted) dataset.
	GeneratedByKey = "GeneratedBy"

	// SourceDatasetsKey is the description key listing the datasets a
	// converted dataset was derived from.
	SourceDatasetsKey = "SourceDatasets"

	// DefaultWatchDebounce is the delay between a filesystem event and
	// re-validation in watch mode, so bulk copies trigger one run.
	DefaultWatchDebounce = 300 * time.Millisecond

	// DefaultCandidateLimit bounds candidate-path enumeration per content
	// group during redistribution. Enumeration is combinatorial in entity
	// count; beyond this limit the search fails with a typed error rather
	// than grinding.
	DefaultCandidateLimit = 65536
)
