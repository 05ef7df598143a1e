// Package layout parses dataset file paths into their structured form and
// defines the ordering and applicability rules built on top of it.
//
// # Path structure
//
// A file name consists of underscore-delimited segments followed by a dotted
// extension chain:
//
//	sub-01_task-rest_bold.nii.gz
//	└────┘ └───────┘ └──┘ └────┘
//	entity   entity  suffix extension
//
// Every segment except the last must be a key-value entity, split around the
// first hyphen. The last segment is the suffix unless it contains a hyphen, in
// which case the name has no suffix and every segment is an entity. A name
// with a single segment is always a bare suffix, hyphen or not. The extension
// is the full chain of dotted components, so "a.nii.gz" has extension
// ".nii.gz". A leading dot marks a hidden file, never an extension boundary.
//
// # Ordering
//
// Paths are totally ordered for nearest-match selection and presentation:
// a path whose directory is a proper ancestor of another's sorts first;
// paths in unrelated directories sort lexicographically on the full path;
// within one directory, suffix-less names sort first, then fewer entities,
// then lexicographic. StrictlyOrdered reports whether two paths are not tied
// under this order, which is the test for an unambiguous nearest match.
//
// # Applicability
//
// A metadata file applies to a data file when its directory is the data
// file's directory or an ancestor of it, its suffix (if any) equals the data
// file's, and every one of its entities appears in the data file with the
// same value. PathApplicable is the sole admission test used when building
// the association graph.
package layout
