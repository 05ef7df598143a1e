// Package sidecar loads and resolves metadata file contents.
//
// Three content shapes exist: insertion-ordered key-value objects from JSON
// files, string tables from tab-separated files, and numeric matrices from
// whitespace-separated files. ResolveContents turns a resolved association
// graph into the effective content of every data file, merging key-value
// files root to leaf with the nearer file winning on key collision.
// FindOverrides reports the collisions themselves, which validation surfaces
// as warnings.
package sidecar
