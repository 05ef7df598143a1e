package rules

import "fmt"

// InheritanceBehaviour controls how multiple applicable metadata files of
// one extension resolve for a single data file.
type InheritanceBehaviour int

const (
	// BehaviourForbidden permits at most one applicable file, ever.
	BehaviourForbidden InheritanceBehaviour = iota

	// BehaviourNearest loads only the closest applicable file by the path
	// ordering; a tie for closest is illegal.
	BehaviourNearest

	// BehaviourMerge loads every applicable file and merges key by key,
	// nearest winning on collision.
	BehaviourMerge
)

// String returns a human-readable string representation of the behaviour.
func (b InheritanceBehaviour) String() string {
	switch b {
	case BehaviourForbidden:
		return "forbidden"
	case BehaviourNearest:
		return "nearest"
	case BehaviourMerge:
		return "merge"
	default:
		return fmt.Sprintf("Unknown(%d)", b)
	}
}

// IsValid returns true if the behaviour is a valid, defined value.
func (b InheritanceBehaviour) IsValid() bool {
	return b >= BehaviourForbidden && b <= BehaviourMerge
}

// JSONExtension is the one metadata extension whose contents are key-value
// structured and therefore subject to merge and override semantics.
const JSONExtension = ".json"

// Extension describes one recognized metadata extension.
type Extension struct {
	// Extension is the dotted extension chain, e.g. ".json"
	Extension string

	// Behaviour is how multiple applicable files of this extension resolve
	Behaviour InheritanceBehaviour

	// NumericMatrix marks contents parsed as a 2D numeric matrix rather
	// than structured key-value data
	NumericMatrix bool
}

// Registry is the closed set of metadata extensions for one run. A path is
// classified metadata exactly when its extension is registered. Iteration
// order is registration order and is deterministic.
type Registry struct {
	order []string
	byExt map[string]Extension
}

// NewRegistry builds a registry from the given extensions.
// Panics on a duplicate extension (programmer error).
func NewRegistry(extensions ...Extension) *Registry {
	r := &Registry{byExt: make(map[string]Extension, len(extensions))}
	for _, e := range extensions {
		if _, dup := r.byExt[e.Extension]; dup {
			panic(fmt.Sprintf("rules.NewRegistry: duplicate extension %q", e.Extension))
		}
		r.order = append(r.order, e.Extension)
		r.byExt[e.Extension] = e
	}
	return r
}

// DefaultRegistry returns the standard metadata extension set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Extension{Extension: ".bval", Behaviour: BehaviourNearest, NumericMatrix: true},
		Extension{Extension: ".bvec", Behaviour: BehaviourNearest, NumericMatrix: true},
		Extension{Extension: JSONExtension, Behaviour: BehaviourMerge},
		Extension{Extension: ".tsv", Behaviour: BehaviourForbidden},
	)
}

// IsMetadata reports whether the extension is registered.
func (r *Registry) IsMetadata(extension string) bool {
	_, ok := r.byExt[extension]
	return ok
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []string {
	return append([]string(nil), r.order...)
}

// Lookup returns the registered description of an extension.
func (r *Registry) Lookup(extension string) (Extension, bool) {
	e, ok := r.byExt[extension]
	return e, ok
}

// Behaviour returns the inheritance behaviour of a registered extension.
// Panics when the extension is not registered (programmer error; callers
// only reach this for extensions the registry itself classified).
func (r *Registry) Behaviour(extension string) InheritanceBehaviour {
	e, ok := r.byExt[extension]
	if !ok {
		panic(fmt.Sprintf("rules.Registry: extension %q is not registered", extension))
	}
	return e.Behaviour
}
