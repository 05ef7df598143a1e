package layout

import (
	"fmt"
	"path"
	"strings"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// Path is the structured form of one file path relative to the dataset root.
// It is immutable after construction; the zero value is not usable.
type Path struct {
	rel       string
	dir       string
	stem      string
	entities  []Entity
	suffix    string
	hasSuffix bool
	extension string
}

// MetadataClassifier reports whether an extension denotes a metadata file.
type MetadataClassifier interface {
	IsMetadata(extension string) bool
}

// Parse builds a Path from a slash-separated file path relative to the
// dataset root. It fails with a malformed-path error when a filename segment
// cannot be split into a non-empty key and value, or when two entities share
// a key.
func Parse(rel string) (*Path, error) {
	rel = path.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "../") {
		return nil, fmt.Errorf("path %q is not a file path below the dataset root: %w", rel, stemma.ErrMalformedPath)
	}

	stem, extension := splitName(path.Base(rel))

	segments := strings.Split(stem, "_")
	var (
		suffix     string
		hasSuffix  bool
		entitySegs []string
	)
	switch {
	case len(segments) == 1:
		// A lone segment is always a suffix, even when it contains a hyphen.
		suffix = segments[0]
		hasSuffix = true
	case strings.Contains(segments[len(segments)-1], "-"):
		entitySegs = segments
	default:
		suffix = segments[len(segments)-1]
		hasSuffix = true
		entitySegs = segments[:len(segments)-1]
	}

	entities := make([]Entity, 0, len(entitySegs))
	seen := make(map[string]struct{}, len(entitySegs))
	for _, seg := range entitySegs {
		entity, err := parseEntity(seg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rel, err)
		}
		if _, dup := seen[entity.Key]; dup {
			return nil, fmt.Errorf("parse %s: duplicate entity key %q: %w", rel, entity.Key, stemma.ErrMalformedPath)
		}
		seen[entity.Key] = struct{}{}
		entities = append(entities, entity)
	}

	return &Path{
		rel:       rel,
		dir:       path.Dir(rel),
		stem:      stem,
		entities:  entities,
		suffix:    suffix,
		hasSuffix: hasSuffix,
		extension: extension,
	}, nil
}

// splitName splits a file basename into stem and compound extension.
// The extension starts at the first dot that is not the leading character,
// so "a.nii.gz" yields ".nii.gz" and ".hidden" yields no extension.
func splitName(base string) (stem, extension string) {
	if len(base) > 1 {
		if dot := strings.Index(base[1:], "."); dot >= 0 {
			return base[:dot+1], base[dot+1:]
		}
	}
	return base, ""
}

// New synthesizes a Path from its parts, placing the file in dir. It is used
// to generate candidate metadata paths during redistribution. A non-empty
// extension must start with a dot.
//
// Panics on a malformed extension (programmer error; callers derive the
// extension from parsed paths).
func New(dir string, entities []Entity, suffix string, hasSuffix bool, extension string) *Path {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		panic(fmt.Sprintf("layout.New: extension %q does not start with a dot", extension))
	}

	var b strings.Builder
	for i, entity := range entities {
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(entity.String())
	}
	if hasSuffix {
		if len(entities) > 0 && suffix != "" {
			b.WriteByte('_')
		}
		b.WriteString(suffix)
	}
	stem := b.String()

	rel := path.Join(dir, stem+extension)
	return &Path{
		rel:       rel,
		dir:       path.Dir(rel),
		stem:      stem,
		entities:  append([]Entity(nil), entities...),
		suffix:    suffix,
		hasSuffix: hasSuffix,
		extension: extension,
	}
}

// Rel returns the slash-separated path relative to the dataset root.
// This is the canonical external representation.
func (p *Path) Rel() string { return p.rel }

// Dir returns the containing directory, "." for files at the dataset root.
func (p *Path) Dir() string { return p.dir }

// Base returns the file name without any directory components.
func (p *Path) Base() string { return path.Base(p.rel) }

// Stem returns the file name without directories or extension.
func (p *Path) Stem() string { return p.stem }

// Entities returns the filename entities in filename order.
// The returned slice must not be modified.
func (p *Path) Entities() []Entity { return p.entities }

// Suffix returns the filename suffix and whether one is present.
func (p *Path) Suffix() (string, bool) { return p.suffix, p.hasSuffix }

// Extension returns the full dotted extension chain, possibly empty.
func (p *Path) Extension() string { return p.extension }

// ParentCount returns the number of ancestor directories including the
// dataset root itself, so a file at the root has count 1.
func (p *Path) ParentCount() int { return strings.Count(p.rel, "/") + 1 }

// Ancestors returns every directory the file resides under, from its own
// directory up to and including the dataset root ".".
func (p *Path) Ancestors() []string {
	dirs := make([]string, 0, p.ParentCount())
	for d := p.dir; ; d = path.Dir(d) {
		dirs = append(dirs, d)
		if d == "." {
			return dirs
		}
	}
}

// HasEntity reports whether the path carries an entity with the given key.
func (p *Path) HasEntity(key string) bool {
	_, ok := p.EntityValue(key)
	return ok
}

// EntityValue returns the value of the entity with the given key.
func (p *Path) EntityValue(key string) (string, bool) {
	for _, entity := range p.entities {
		if entity.Key == key {
			return entity.Value, true
		}
	}
	return "", false
}

// IsMetadata reports whether the path's extension denotes a metadata file.
func (p *Path) IsMetadata(c MetadataClassifier) bool {
	return c.IsMetadata(p.extension)
}

// Equal reports path identity, which is relative-path equality.
func (p *Path) Equal(other *Path) bool { return p.rel == other.rel }

func (p *Path) String() string { return p.rel }

// IsSidecarPair reports whether two files form a sidecar pair: same
// directory, same stem, different extensions, and exactly one of the two a
// metadata file.
func IsSidecarPair(a, b *Path, c MetadataClassifier) bool {
	return a.dir == b.dir &&
		a.stem == b.stem &&
		a.extension != b.extension &&
		a.IsMetadata(c) != b.IsMetadata(c)
}

// properAncestorDir reports whether dir a strictly contains dir b.
// The dataset root "." contains every other directory.
func properAncestorDir(a, b string) bool {
	if a == b {
		return false
	}
	if a == "." {
		return true
	}
	return strings.HasPrefix(b, a+"/")
}

// AncestorOrSameDir reports whether directory a contains directory b or is
// directory b. Directories are slash-separated relative to the dataset root,
// with "." for the root itself.
func AncestorOrSameDir(a, b string) bool {
	return a == b || properAncestorDir(a, b)
}
