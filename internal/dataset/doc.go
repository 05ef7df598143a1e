// Package dataset provides the handle through which every other component
// reads a dataset tree.
//
// A Dataset wraps a filesystem provider and a root directory. File
// discovery is deterministic: Files returns sorted slash-separated paths
// relative to the root, with a configurable set of reserved names excluded
// at the root level only. An excluded directory is never descended, while
// the same name below the root is ordinary data.
//
// The dataset description file (dataset_description.json) is read and
// written through the same handle, preserving the order of its keys so a
// rewritten description diffs cleanly against its source.
package dataset
