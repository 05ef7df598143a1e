package layout

import "fmt"

// WithinDirPolicy constrains how many applicable metadata files of one
// extension may coexist at a single directory level for one data file.
type WithinDirPolicy int

const (
	WithinDirUnique  WithinDirPolicy = iota // at most one per directory level
	WithinDirOrdered                        // several, if entity counts make them sortable
	WithinDirAny                            // unconstrained
)

// String returns a human-readable string representation of the policy.
func (w WithinDirPolicy) String() string {
	switch w {
	case WithinDirUnique:
		return "unique"
	case WithinDirOrdered:
		return "ordered"
	case WithinDirAny:
		return "any"
	default:
		return fmt.Sprintf("Unknown(%d)", w)
	}
}

// IsValid returns true if the policy is a valid, defined value.
func (w WithinDirPolicy) IsValid() bool {
	return w >= WithinDirUnique && w <= WithinDirAny
}
