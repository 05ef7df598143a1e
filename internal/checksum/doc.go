// Package checksum provides file content hashing with canonicalization support.
//
// The package implements stemma's dual digest strategy:
//
//   - Raw digest: Hash of the exact content bytes (detects all changes)
//   - Canonical digest: Hash of a compacted JSON value
//     (enables formatting-independent content identity)
//
// # Canonicalization Strategy
//
// Canonicalization makes digests of JSON values resilient to formatting:
//  1. Strip insignificant whitespace between tokens
//  2. Hash the compacted bytes
//
// Key order and numeric spelling stay significant. Metadata files are read
// into ordered maps and written back in their original order, so two values
// that differ only in layout hash alike while reordered or renumbered values
// do not. Content that does not parse as JSON falls back to the raw digest.
//
// This allows stemma to group equal metadata values when redistributing
// them across a converted dataset, regardless of how each source file was
// indented.
//
// # Example Usage
//
//	calculator := checksum.New()
//	rawDigest := calculator.CalculateRaw(fileContent)
//	canonicalDigest := calculator.CalculateCanonical(fieldValue)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
