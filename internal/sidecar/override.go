package sidecar

import (
	"encoding/json"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/rules"
)

// Overrides records, per data file and key, every applicable key-value file
// that sets the key when more than one does. The nearest file wins at merge
// time; the record keeps the full list most distant first.
type Overrides struct {
	byFile *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, []string]]
}

// FindOverrides scans every data file's applicable key-value files for keys
// set more than once. The graph is taken before pruning, so every applicable
// file counts, not just the merge survivors.
func FindOverrides(ds *dataset.Dataset, g *graph.Graph) (*Overrides, error) {
	cache := make(map[string]*orderedmap.OrderedMap[string, json.RawMessage])
	overrides := &Overrides{
		byFile: orderedmap.New[string, *orderedmap.OrderedMap[string, []string]](),
	}

	for _, data := range g.DataFiles() {
		candidates := g.CandidatesFor(data.Rel())[rules.JSONExtension]
		if len(candidates) < 2 {
			continue
		}

		byKey := orderedmap.New[string, []string]()
		for _, meta := range candidates {
			fields, ok := cache[meta.Rel()]
			if !ok {
				var err error
				fields, err = LoadJSON(ds, meta.Rel())
				if err != nil {
					return nil, err
				}
				cache[meta.Rel()] = fields
			}
			for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
				paths, _ := byKey.Get(pair.Key)
				byKey.Set(pair.Key, append(paths, meta.Rel()))
			}
		}

		fileOverrides := orderedmap.New[string, []string]()
		for pair := byKey.Oldest(); pair != nil; pair = pair.Next() {
			if len(pair.Value) > 1 {
				fileOverrides.Set(pair.Key, pair.Value)
			}
		}
		if fileOverrides.Len() > 0 {
			overrides.byFile.Set(data.Rel(), fileOverrides)
		}
	}

	return overrides, nil
}

// Empty reports whether no override was found.
func (o *Overrides) Empty() bool { return o.byFile.Len() == 0 }

// Len returns the number of overridden keys across all data files.
func (o *Overrides) Len() int {
	n := 0
	for file := o.byFile.Oldest(); file != nil; file = file.Next() {
		n += file.Value.Len()
	}
	return n
}

// Each calls fn for every override in data file scan order, keys in order of
// first appearance. Paths are most distant first.
func (o *Overrides) Each(fn func(dataRel, key string, paths []string)) {
	for file := o.byFile.Oldest(); file != nil; file = file.Next() {
		for key := file.Value.Oldest(); key != nil; key = key.Next() {
			fn(file.Key, key.Key, key.Value)
		}
	}
}

// MarshalJSON encodes the overrides as data file to key to contributing
// paths. An empty report encodes as an empty object.
func (o *Overrides) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.byFile)
}

// WriteJSON writes the override report as indented JSON followed by a
// newline, the empty report included.
func (o *Overrides) WriteJSON(w io.Writer) error {
	return writeIndented(w, o)
}
