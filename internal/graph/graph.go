package graph

import (
	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
)

// Graph is the unresolved association graph of one dataset: for every data
// file, every applicable metadata file per registered extension in
// inheritance order, and for every metadata file, every data file it applies
// to. Inheritance behaviours are not applied yet; that is Prune's job.
type Graph struct {
	registry *rules.Registry

	dataFiles     []*layout.Path
	metadataFiles []*layout.Path

	// candidates maps data path to extension to applicable metadata files,
	// nearest last. Extensions with no applicable file are absent.
	candidates map[string]map[string][]*layout.Path

	// dataForMetadata keys every metadata path, associated or not, and maps
	// it to the data files it applies to in scan order.
	dataForMetadata map[string][]*layout.Path
}

// Build scans the dataset once and assembles the association graph under the
// registry's extension set. Files are visited in deterministic scan order.
// A path that does not parse aborts the build.
func Build(ds *dataset.Dataset, registry *rules.Registry) (*Graph, error) {
	rels, err := ds.Files()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		registry:        registry,
		candidates:      make(map[string]map[string][]*layout.Path),
		dataForMetadata: make(map[string][]*layout.Path),
	}

	metaByDir := make(map[string][]*layout.Path)
	for _, rel := range rels {
		p, err := layout.Parse(rel)
		if err != nil {
			return nil, err
		}
		if p.IsMetadata(registry) {
			g.metadataFiles = append(g.metadataFiles, p)
			metaByDir[p.Dir()] = append(metaByDir[p.Dir()], p)
			g.dataForMetadata[p.Rel()] = nil
		} else {
			g.dataFiles = append(g.dataFiles, p)
		}
	}

	for _, data := range g.dataFiles {
		levels := data.Ancestors()
		reverse(levels)

		for _, ext := range registry.Extensions() {
			var applicable []*layout.Path
			for _, dir := range levels {
				var level []*layout.Path
				for _, meta := range metaByDir[dir] {
					if meta.Extension() != ext {
						continue
					}
					if layout.PathApplicable(data, meta) {
						level = append(level, meta)
					}
				}
				layout.SortPaths(level)
				applicable = append(applicable, level...)
			}
			if len(applicable) == 0 {
				continue
			}

			byExt := g.candidates[data.Rel()]
			if byExt == nil {
				byExt = make(map[string][]*layout.Path)
				g.candidates[data.Rel()] = byExt
			}
			byExt[ext] = applicable
			for _, meta := range applicable {
				g.dataForMetadata[meta.Rel()] = append(g.dataForMetadata[meta.Rel()], data)
			}
		}
	}

	return g, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Registry returns the extension registry the graph was built under.
func (g *Graph) Registry() *rules.Registry { return g.registry }

// DataFiles returns the data files in scan order.
// The returned slice must not be modified.
func (g *Graph) DataFiles() []*layout.Path { return g.dataFiles }

// MetadataFiles returns the metadata files in scan order.
// The returned slice must not be modified.
func (g *Graph) MetadataFiles() []*layout.Path { return g.metadataFiles }

// CandidatesFor returns the applicable metadata files for one data path,
// keyed by extension with the nearest file last, or nil when nothing
// applies. The result must not be modified.
func (g *Graph) CandidatesFor(rel string) map[string][]*layout.Path {
	return g.candidates[rel]
}

// DataFor returns the data files one metadata path applies to, nil when none
// do. The returned slice must not be modified.
func (g *Graph) DataFor(rel string) []*layout.Path {
	return g.dataForMetadata[rel]
}
