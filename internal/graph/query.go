package graph

import (
	"fmt"
	"io/fs"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// loadPaths parses every dataset file into data and metadata paths in scan
// order.
func loadPaths(ds *dataset.Dataset, registry *rules.Registry) (data, meta []*layout.Path, err error) {
	rels, err := ds.Files()
	if err != nil {
		return nil, nil, err
	}
	for _, rel := range rels {
		p, err := layout.Parse(rel)
		if err != nil {
			return nil, nil, err
		}
		if p.IsMetadata(registry) {
			meta = append(meta, p)
		} else {
			data = append(data, p)
		}
	}
	return data, meta, nil
}

func findPath(paths []*layout.Path, rel string) *layout.Path {
	for _, p := range paths {
		if p.Rel() == rel {
			return p
		}
	}
	return nil
}

// MetadataForDataFile resolves the metadata association of a single data
// file from scratch, without building the full graph. The result agrees
// with building and pruning the whole dataset.
func MetadataForDataFile(ds *dataset.Dataset, registry *rules.Registry, rel string) (map[string]ResolvedEntry, error) {
	data, meta, err := loadPaths(ds, registry)
	if err != nil {
		return nil, err
	}
	target := findPath(data, rel)
	if target == nil {
		if findPath(meta, rel) != nil {
			return nil, fmt.Errorf("%s is a metadata file: %w", rel, stemma.ErrUsage)
		}
		return nil, fmt.Errorf("data file %s: %w", rel, fs.ErrNotExist)
	}
	return resolveDataFile(target, meta, registry)
}

// resolveDataFile collects and resolves every applicable metadata file for
// one data path. Candidates in ancestor directories sort ahead of nearer
// ones, so a single sort reproduces the level-by-level build order.
func resolveDataFile(data *layout.Path, meta []*layout.Path, registry *rules.Registry) (map[string]ResolvedEntry, error) {
	byExt := make(map[string][]*layout.Path)
	for _, m := range meta {
		if layout.PathApplicable(data, m) {
			byExt[m.Extension()] = append(byExt[m.Extension()], m)
		}
	}
	if len(byExt) == 0 {
		return nil, nil
	}

	entries := make(map[string]ResolvedEntry, len(byExt))
	for ext, candidates := range byExt {
		layout.SortPaths(candidates)
		entry, err := resolveExtension(data, ext, registry.Behaviour(ext), candidates)
		if err != nil {
			return nil, err
		}
		entries[ext] = entry
	}
	return entries, nil
}

// DataFilesForMetadataFile computes, from scratch, every data file a single
// metadata file remains associated with after behaviour resolution. A
// candidate under a single-valued extension is dropped when resolving from
// the data file's side selects some other file.
func DataFilesForMetadataFile(ds *dataset.Dataset, registry *rules.Registry, rel string) ([]*layout.Path, error) {
	data, meta, err := loadPaths(ds, registry)
	if err != nil {
		return nil, err
	}
	target := findPath(meta, rel)
	if target == nil {
		if findPath(data, rel) != nil {
			return nil, fmt.Errorf("%s is not a metadata file: %w", rel, stemma.ErrUsage)
		}
		return nil, fmt.Errorf("metadata file %s: %w", rel, fs.ErrNotExist)
	}

	behaviour := registry.Behaviour(target.Extension())
	var associated []*layout.Path
	for _, d := range data {
		if !layout.PathApplicable(d, target) {
			continue
		}
		if behaviour != rules.BehaviourMerge {
			entries, err := resolveDataFile(d, meta, registry)
			if err != nil {
				return nil, err
			}
			selected, ok := entries[target.Extension()].Single()
			if !ok || !selected.Equal(target) {
				continue
			}
		}
		associated = append(associated, d)
	}
	return associated, nil
}
