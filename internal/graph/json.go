package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// MarshalJSON encodes the resolved graph as one object keyed by path: data
// files first, each mapping extension to a single path string or a merge
// list, then metadata files, each mapping to the data paths it serves. Path
// keys and path lists follow the ordering.
func (rg *ResolvedGraph) MarshalJSON() ([]byte, error) {
	root := orderedmap.New[string, json.RawMessage]()

	for _, data := range sortedCopy(rg.dataFiles) {
		entry := orderedmap.New[string, json.RawMessage]()
		entries := rg.resolved[data.Rel()]
		for _, ext := range rg.registry.Extensions() {
			resolved, ok := entries[ext]
			if !ok {
				continue
			}
			var encoded any
			if single, isSingle := resolved.Single(); isSingle {
				encoded = single.Rel()
			} else {
				encoded = relStrings(resolved.paths)
			}
			raw, err := json.Marshal(encoded)
			if err != nil {
				return nil, err
			}
			entry.Set(ext, raw)
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		root.Set(data.Rel(), raw)
	}

	for _, meta := range sortedCopy(rg.metadataFiles) {
		raw, err := json.Marshal(relStrings(sortedCopy(rg.dataForMetadata[meta.Rel()])))
		if err != nil {
			return nil, err
		}
		root.Set(meta.Rel(), raw)
	}

	return json.Marshal(root)
}

// WriteJSON writes the resolved graph as indented JSON followed by a
// newline.
func (rg *ResolvedGraph) WriteJSON(w io.Writer) error {
	data, err := json.Marshal(rg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// EquivalentReference reports whether a reference graph document describes
// this graph. A single-path entry may appear as either a string or a
// one-element list, and path lists may reorder freely within runs the
// ordering cannot distinguish; everything else must match exactly. The
// reference must parse, malformed content is an error rather than a
// mismatch.
func (rg *ResolvedGraph) EquivalentReference(reference []byte) (bool, error) {
	var ref map[string]json.RawMessage
	if err := json.Unmarshal(reference, &ref); err != nil {
		return false, fmt.Errorf("parse reference graph: %v: %w", err, stemma.ErrMalformedContent)
	}
	if len(ref) != len(rg.dataFiles)+len(rg.metadataFiles) {
		return false, nil
	}

	for _, data := range rg.dataFiles {
		raw, ok := ref[data.Rel()]
		if !ok {
			return false, nil
		}
		var refEntry map[string]json.RawMessage
		if err := json.Unmarshal(raw, &refEntry); err != nil {
			return false, fmt.Errorf("parse reference entry %s: %v: %w", data.Rel(), err, stemma.ErrMalformedContent)
		}
		entries := rg.resolved[data.Rel()]
		if len(refEntry) != len(entries) {
			return false, nil
		}
		for ext, entry := range entries {
			rawPaths, ok := refEntry[ext]
			if !ok {
				return false, nil
			}
			refPaths, err := parseReferencePaths(rawPaths)
			if err != nil {
				return false, err
			}
			if !layout.Equivalent(entry.paths, refPaths) {
				return false, nil
			}
		}
	}

	for _, meta := range rg.metadataFiles {
		raw, ok := ref[meta.Rel()]
		if !ok {
			return false, nil
		}
		refPaths, err := parseReferencePaths(raw)
		if err != nil {
			return false, err
		}
		if !layout.Equivalent(sortedCopy(rg.dataForMetadata[meta.Rel()]), refPaths) {
			return false, nil
		}
	}

	return true, nil
}

// parseReferencePaths decodes a reference value as either one path string or
// a list of path strings.
func parseReferencePaths(raw json.RawMessage) ([]*layout.Path, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		p, err := layout.Parse(single)
		if err != nil {
			return nil, err
		}
		return []*layout.Path{p}, nil
	}

	var rels []string
	if err := json.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("reference paths %s: %v: %w", string(raw), err, stemma.ErrMalformedContent)
	}
	paths := make([]*layout.Path, len(rels))
	for i, rel := range rels {
		p, err := layout.Parse(rel)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

func sortedCopy(paths []*layout.Path) []*layout.Path {
	sorted := append([]*layout.Path(nil), paths...)
	layout.SortPaths(sorted)
	return sorted
}

func relStrings(paths []*layout.Path) []string {
	rels := make([]string, len(paths))
	for i, p := range paths {
		rels[i] = p.Rel()
	}
	return rels
}
