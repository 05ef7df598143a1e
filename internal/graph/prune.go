package graph

import (
	"fmt"
	"strings"

	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// ResolvedEntry is the outcome of applying one extension's inheritance
// behaviour to one data file's candidate list.
type ResolvedEntry struct {
	paths  []*layout.Path
	single bool
}

// Single returns the resolved file when the behaviour selects exactly one,
// and false for a merge entry.
func (e ResolvedEntry) Single() (*layout.Path, bool) {
	if !e.single || len(e.paths) == 0 {
		return nil, false
	}
	return e.paths[0], true
}

// Paths returns every resolved file in application order, most distant
// first. A single-valued entry holds one element.
// The returned slice must not be modified.
func (e ResolvedEntry) Paths() []*layout.Path { return e.paths }

// ResolvedGraph is a Graph with every extension's inheritance behaviour
// applied and the data-for-metadata side rebuilt to match: a metadata file
// passed over by nearest selection no longer claims the data file.
type ResolvedGraph struct {
	registry *rules.Registry

	dataFiles     []*layout.Path
	metadataFiles []*layout.Path

	resolved        map[string]map[string]ResolvedEntry
	dataForMetadata map[string][]*layout.Path
}

// Prune resolves the graph under the registry's inheritance behaviours. It
// fails when a forbidden extension has more than one applicable file for
// some data file, or when a nearest extension has no unambiguous nearest.
func (g *Graph) Prune() (*ResolvedGraph, error) {
	rg := &ResolvedGraph{
		registry:        g.registry,
		dataFiles:       g.dataFiles,
		metadataFiles:   g.metadataFiles,
		resolved:        make(map[string]map[string]ResolvedEntry, len(g.candidates)),
		dataForMetadata: make(map[string][]*layout.Path, len(g.dataForMetadata)),
	}
	for _, meta := range g.metadataFiles {
		rg.dataForMetadata[meta.Rel()] = nil
	}

	for _, data := range g.dataFiles {
		byExt := g.candidates[data.Rel()]
		if len(byExt) == 0 {
			continue
		}
		entries := make(map[string]ResolvedEntry, len(byExt))
		for _, ext := range g.registry.Extensions() {
			candidates, ok := byExt[ext]
			if !ok {
				continue
			}
			entry, err := resolveExtension(data, ext, g.registry.Behaviour(ext), candidates)
			if err != nil {
				return nil, err
			}
			entries[ext] = entry
			for _, meta := range entry.paths {
				rg.dataForMetadata[meta.Rel()] = append(rg.dataForMetadata[meta.Rel()], data)
			}
		}
		rg.resolved[data.Rel()] = entries
	}

	return rg, nil
}

// resolveExtension applies one extension's behaviour to an ordered,
// non-empty candidate list.
func resolveExtension(data *layout.Path, ext string, behaviour rules.InheritanceBehaviour, candidates []*layout.Path) (ResolvedEntry, error) {
	switch behaviour {
	case rules.BehaviourForbidden:
		if len(candidates) > 1 {
			return ResolvedEntry{}, fmt.Errorf("inheritance is forbidden for %s yet %d files apply to %s: %s: %w",
				ext, len(candidates), data.Rel(), joinRels(candidates), stemma.ErrAssociation)
		}
		return ResolvedEntry{paths: candidates, single: true}, nil

	case rules.BehaviourNearest:
		if !layout.HasUnambiguousNearest(candidates) {
			a, b := candidates[len(candidates)-2], candidates[len(candidates)-1]
			return ResolvedEntry{}, fmt.Errorf("no unambiguous nearest %s file for %s: %s and %s are tied: %w",
				ext, data.Rel(), a.Rel(), b.Rel(), stemma.ErrAssociation)
		}
		return ResolvedEntry{paths: candidates[len(candidates)-1:], single: true}, nil

	case rules.BehaviourMerge:
		return ResolvedEntry{paths: candidates, single: false}, nil

	default:
		panic(fmt.Sprintf("graph: unhandled behaviour %d", behaviour))
	}
}

func joinRels(paths []*layout.Path) string {
	return strings.Join(relStrings(paths), ", ")
}

// Registry returns the extension registry the graph was built under.
func (rg *ResolvedGraph) Registry() *rules.Registry { return rg.registry }

// DataFiles returns the data files in scan order.
// The returned slice must not be modified.
func (rg *ResolvedGraph) DataFiles() []*layout.Path { return rg.dataFiles }

// MetadataFiles returns the metadata files in scan order.
// The returned slice must not be modified.
func (rg *ResolvedGraph) MetadataFiles() []*layout.Path { return rg.metadataFiles }

// ResolvedFor returns the resolved entries for one data path keyed by
// extension, or nil when nothing applies. The result must not be modified.
func (rg *ResolvedGraph) ResolvedFor(rel string) map[string]ResolvedEntry {
	return rg.resolved[rel]
}

// DataFor returns the data files one metadata path remains associated with
// after resolution, nil when none. The returned slice must not be modified.
func (rg *ResolvedGraph) DataFor(rel string) []*layout.Path {
	return rg.dataForMetadata[rel]
}
