package convert

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// DefaultCandidateLimit bounds how many candidate paths one content group
// may enumerate before the redistribution search gives up.
const DefaultCandidateLimit = 65536

// maxSubsetBits bounds the entity count a single file may contribute to
// candidate enumeration; 2^n subsets past this point exceed any usable cap.
const maxSubsetBits = 30

// CandidateLimitError reports that the redistribution search gave up because
// one content group admitted more candidate paths than the configured cap.
type CandidateLimitError struct {
	Extension string
	Limit     int
}

func (e *CandidateLimitError) Error() string {
	return fmt.Sprintf("redistribution of %s content exceeded %d candidate paths; too many entities or directory levels to search",
		e.Extension, e.Limit)
}

// keyValueGroup is one unique key-value pair and the data files whose
// resolved content carries it. Values are grouped by canonical digest, so
// formatting differences do not split a group.
type keyValueGroup struct {
	key   string
	value json.RawMessage
	files []*layout.Path
}

// contentGroup is one unique non-JSON content rendering and the data files
// it resolves for.
type contentGroup struct {
	ext      string
	rendered []byte
	files    []*layout.Path
}

// placement is one derived metadata file of the redistributed output.
type placement struct {
	rel     string
	content []byte
}

// redistribute computes the metadata files of the no-overwrite layout:
// every unique piece of resolved content is assigned to new paths until all
// of its data files are covered, never touching a data file outside the
// group.
func (e *Exporter) redistribute(resolved *graph.ResolvedGraph, contents *sidecar.Contents) ([]placement, error) {
	kvGroups, contentGroups, err := e.groupContents(resolved, contents)
	if err != nil {
		return nil, err
	}
	all := resolved.DataFiles()

	var placements []placement

	// Key-value groups share files: each chosen path accumulates keys.
	fields := make(map[string]*orderedmap.OrderedMap[string, json.RawMessage])
	var fileOrder []string
	for _, group := range kvGroups {
		remaining := append([]*layout.Path(nil), group.files...)
		for len(remaining) > 0 {
			meta, err := e.bestMetadataPath(remaining, all, rules.JSONExtension)
			if err != nil {
				return nil, err
			}

			target := fields[meta.Rel()]
			if target == nil {
				target = orderedmap.New[string, json.RawMessage]()
				fields[meta.Rel()] = target
				fileOrder = append(fileOrder, meta.Rel())
			}
			if _, exists := target.Get(group.key); exists {
				return nil, fmt.Errorf("key %q assigned to %s twice: %w", group.key, meta.Rel(), stemma.ErrInternal)
			}
			target.Set(group.key, group.value)

			before := len(remaining)
			remaining, err = shrink(remaining, meta)
			if err != nil {
				return nil, err
			}
			e.logger.Verbose("%s carries key %q for %d data files", meta.Rel(), group.key, before-len(remaining))
		}
	}
	for _, rel := range fileOrder {
		rendered, err := sidecar.FormatKeyValues(fields[rel])
		if err != nil {
			return nil, err
		}
		placements = append(placements, placement{rel: rel, content: rendered})
	}

	// Non-JSON groups land as whole files; a path can be chosen only once.
	assigned := make(map[string]struct{})
	for _, group := range contentGroups {
		remaining := append([]*layout.Path(nil), group.files...)
		for len(remaining) > 0 {
			meta, err := e.bestMetadataPath(remaining, all, group.ext)
			if err != nil {
				return nil, err
			}

			if _, exists := assigned[meta.Rel()]; exists {
				return nil, fmt.Errorf("path %s assigned twice: %w", meta.Rel(), stemma.ErrInternal)
			}
			assigned[meta.Rel()] = struct{}{}
			placements = append(placements, placement{rel: meta.Rel(), content: group.rendered})

			before := len(remaining)
			remaining, err = shrink(remaining, meta)
			if err != nil {
				return nil, err
			}
			e.logger.Verbose("%s serves %d data files", meta.Rel(), before-len(remaining))
		}
	}

	return placements, nil
}

// groupContents indexes resolved content by identity: JSON key-value pairs
// by key and canonical value digest, other extensions by raw digest of the
// rendered bytes. Group order follows the data file walk, so output is
// deterministic.
func (e *Exporter) groupContents(resolved *graph.ResolvedGraph, contents *sidecar.Contents) ([]*keyValueGroup, []*contentGroup, error) {
	var kvGroups []*keyValueGroup
	kvIndex := make(map[string]map[string]*keyValueGroup)

	var cGroups []*contentGroup
	cIndex := make(map[string]map[string]*contentGroup)

	exts := resolved.Registry().Extensions()
	for _, data := range resolved.DataFiles() {
		byExt := contents.ForFile(data.Rel())
		for _, ext := range exts {
			content, ok := byExt[ext]
			if !ok {
				continue
			}

			if ext == rules.JSONExtension {
				kv, ok := content.KeyValues()
				if !ok {
					return nil, nil, fmt.Errorf("resolved %s content of %s is not key-value shaped: %w",
						ext, data.Rel(), stemma.ErrInternal)
				}
				for pair := kv.Oldest(); pair != nil; pair = pair.Next() {
					digest := e.calculator.CalculateCanonical(pair.Value)
					byDigest := kvIndex[pair.Key]
					if byDigest == nil {
						byDigest = make(map[string]*keyValueGroup)
						kvIndex[pair.Key] = byDigest
					}
					group := byDigest[digest]
					if group == nil {
						group = &keyValueGroup{key: pair.Key, value: pair.Value}
						byDigest[digest] = group
						kvGroups = append(kvGroups, group)
					}
					group.files = append(group.files, data)
				}
				continue
			}

			rendered, err := content.Format()
			if err != nil {
				return nil, nil, err
			}
			digest := e.calculator.CalculateRaw(rendered)
			byDigest := cIndex[ext]
			if byDigest == nil {
				byDigest = make(map[string]*contentGroup)
				cIndex[ext] = byDigest
			}
			group := byDigest[digest]
			if group == nil {
				group = &contentGroup{ext: ext, rendered: rendered}
				byDigest[digest] = group
				cGroups = append(cGroups, group)
			}
			group.files = append(group.files, data)
		}
	}

	return kvGroups, cGroups, nil
}

// bestMetadataPath returns the candidate covering the most remaining data
// files without applying to any file outside them. Ties go to the path
// closest to the root, then the fewest entities, then the lexicographically
// smallest path.
func (e *Exporter) bestMetadataPath(remaining, all []*layout.Path, ext string) (*layout.Path, error) {
	candidates, err := e.enumerateCandidates(remaining, ext)
	if err != nil {
		return nil, err
	}

	inRemaining := make(map[string]struct{}, len(remaining))
	for _, data := range remaining {
		inRemaining[data.Rel()] = struct{}{}
	}

	var best *layout.Path
	maxMatches := 0
	for _, cand := range candidates {
		matches := 0
		eligible := true
		for _, data := range all {
			if !layout.PathApplicable(data, cand) {
				continue
			}
			if _, ok := inRemaining[data.Rel()]; ok {
				matches++
			} else {
				eligible = false
				break
			}
		}
		if !eligible || matches < maxMatches {
			continue
		}
		if matches > maxMatches || best == nil || betterCandidate(cand, best) {
			maxMatches = matches
			best = cand
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no eligible metadata path for %d remaining data files: %w",
			len(remaining), stemma.ErrInternal)
	}
	return best, nil
}

// enumerateCandidates generates every metadata path that could serve a
// remaining data file: each ancestor directory crossed with each
// order-preserving subset of the file's entities, carrying the file's
// suffix and the target extension.
func (e *Exporter) enumerateCandidates(remaining []*layout.Path, ext string) (map[string]*layout.Path, error) {
	candidates := make(map[string]*layout.Path)
	for _, data := range remaining {
		entities := data.Entities()
		if len(entities) > maxSubsetBits {
			return nil, &CandidateLimitError{Extension: ext, Limit: e.candidateLimit}
		}
		suffix, hasSuffix := data.Suffix()
		for _, dir := range data.Ancestors() {
			for mask := 0; mask < 1<<len(entities); mask++ {
				subset := entitySubset(entities, mask)
				if len(subset) == 0 && !hasSuffix {
					continue // the candidate would have no name at all
				}
				cand := layout.New(dir, subset, suffix, hasSuffix, ext)
				if _, ok := candidates[cand.Rel()]; ok {
					continue
				}
				if len(candidates) >= e.candidateLimit {
					return nil, &CandidateLimitError{Extension: ext, Limit: e.candidateLimit}
				}
				candidates[cand.Rel()] = cand
			}
		}
	}
	return candidates, nil
}

// entitySubset picks the entities whose bit is set, preserving filename
// order.
func entitySubset(entities []layout.Entity, mask int) []layout.Entity {
	var subset []layout.Entity
	for i, entity := range entities {
		if mask&(1<<i) != 0 {
			subset = append(subset, entity)
		}
	}
	return subset
}

func betterCandidate(a, b *layout.Path) bool {
	if a.ParentCount() != b.ParentCount() {
		return a.ParentCount() < b.ParentCount()
	}
	if len(a.Entities()) != len(b.Entities()) {
		return len(a.Entities()) < len(b.Entities())
	}
	return a.Rel() < b.Rel()
}

// shrink removes the data files meta now covers. Coverage must be non-empty
// or the search would never terminate.
func shrink(remaining []*layout.Path, meta *layout.Path) ([]*layout.Path, error) {
	next := remaining[:0]
	for _, data := range remaining {
		if !layout.PathApplicable(data, meta) {
			next = append(next, data)
		}
	}
	if len(next) == len(remaining) {
		return nil, fmt.Errorf("candidate %s covers no remaining data file: %w", meta.Rel(), stemma.ErrInternal)
	}
	return next, nil
}
