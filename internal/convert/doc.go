// Package convert writes a validated dataset back out under a stricter
// ruleset.
//
// Conversion never touches the source tree. The exporter creates a fresh
// output directory, copies the reserved root entries and every data file,
// appends a provenance record to the dataset description, and then writes
// new metadata: one sidecar per data file for the forbidden target, or a
// redistributed set of shared metadata files for the no-overwrite target.
//
// The redistribution search places each unique piece of content at the
// smallest set of paths that reaches exactly its data files. It is a greedy
// maximum-coverage loop per content group and can enumerate a large number
// of candidate paths on entity-heavy datasets; enumeration is capped and
// overruns surface as a CandidateLimitError rather than an endless search.
package convert
