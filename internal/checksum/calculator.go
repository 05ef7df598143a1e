package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Calculator is an interface for computing content digests.
// The abstraction allows for different digest strategies and algorithms.
type Calculator interface {
	// CalculateRaw computes a digest of the exact content bytes.
	CalculateRaw(content []byte) string

	// CalculateCanonical computes a digest of a JSON value that is
	// insensitive to inter-token whitespace.
	CalculateCanonical(value []byte) string
}

// SHA256 implements digest calculation using SHA-256. Canonicalization
// compacts a JSON value before hashing, so differently formatted renderings
// of one value share a digest while values differing in key order or
// numeric spelling do not.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple
// goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateCanonical computes SHA-256 of a compacted JSON value. Content
// that does not parse as JSON is hashed as-is, grouping it by exact bytes.
func (c SHA256) CalculateCanonical(value []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return c.CalculateRaw(value)
	}
	return c.CalculateRaw(compact.Bytes())
}
