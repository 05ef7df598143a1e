package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
)

// Content is the loaded content behind one resolved association: a key-value
// object, a string table, or a numeric matrix, depending on the extension.
type Content struct {
	keyValues *orderedmap.OrderedMap[string, json.RawMessage]
	rows      [][]string
	matrix    [][]float64
}

// KeyValues returns the merged key-value object of a JSON association.
// The result must not be modified.
func (c Content) KeyValues() (*orderedmap.OrderedMap[string, json.RawMessage], bool) {
	return c.keyValues, c.keyValues != nil
}

// Rows returns the table of a tab-separated association.
// The result must not be modified.
func (c Content) Rows() ([][]string, bool) {
	return c.rows, c.rows != nil
}

// Matrix returns the matrix of a numeric association.
// The result must not be modified.
func (c Content) Matrix() ([][]float64, bool) {
	return c.matrix, c.matrix != nil
}

// MarshalJSON encodes whichever shape the content holds.
func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.keyValues != nil:
		return json.Marshal(c.keyValues)
	case c.rows != nil:
		return json.Marshal(c.rows)
	case c.matrix != nil:
		return json.Marshal(c.matrix)
	default:
		return []byte("null"), nil
	}
}

// Contents is the resolved metadata content of every data file in a dataset.
type Contents struct {
	resolved *graph.ResolvedGraph
	byFile   map[string]map[string]Content
}

// ResolveContents loads the content behind every association of the resolved
// graph: key-value files merged most distant first, tables and matrices read
// from their single resolved file. Each metadata file is read once.
func ResolveContents(ds *dataset.Dataset, resolved *graph.ResolvedGraph) (*Contents, error) {
	load := newLoader(ds, resolved.Registry())
	byFile := make(map[string]map[string]Content)

	for _, data := range resolved.DataFiles() {
		entries := resolved.ResolvedFor(data.Rel())
		if len(entries) == 0 {
			continue
		}
		contents := make(map[string]Content, len(entries))
		for _, ext := range resolved.Registry().Extensions() {
			entry, ok := entries[ext]
			if !ok {
				continue
			}
			content, err := load.content(ext, entry)
			if err != nil {
				return nil, err
			}
			contents[ext] = content
		}
		byFile[data.Rel()] = contents
	}

	return &Contents{resolved: resolved, byFile: byFile}, nil
}

// ForFile returns the resolved content of one data path keyed by extension,
// nil when the file has no metadata. The result must not be modified.
func (c *Contents) ForFile(rel string) map[string]Content {
	return c.byFile[rel]
}

// MarshalJSON encodes the contents as one object per data file, keyed by
// path in ordering order, each mapping extension to resolved content.
func (c *Contents) MarshalJSON() ([]byte, error) {
	files := append([]*layout.Path(nil), c.resolved.DataFiles()...)
	layout.SortPaths(files)

	root := orderedmap.New[string, json.RawMessage]()
	for _, data := range files {
		entry := orderedmap.New[string, json.RawMessage]()
		for _, ext := range c.resolved.Registry().Extensions() {
			content, ok := c.byFile[data.Rel()][ext]
			if !ok {
				continue
			}
			raw, err := json.Marshal(content)
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
	return json.Marshal(root)
}

// WriteJSON writes the contents as indented JSON followed by a newline.
func (c *Contents) WriteJSON(w io.Writer) error {
	return writeIndented(w, c)
}

func writeIndented(w io.Writer, v any) error {
	data, err := json.Marshal(v)
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

// loader reads metadata files at most once each.
type loader struct {
	ds       *dataset.Dataset
	registry *rules.Registry

	keyValues map[string]*orderedmap.OrderedMap[string, json.RawMessage]
	tables    map[string][][]string
	matrices  map[string][][]float64
}

func newLoader(ds *dataset.Dataset, registry *rules.Registry) *loader {
	return &loader{
		ds:        ds,
		registry:  registry,
		keyValues: make(map[string]*orderedmap.OrderedMap[string, json.RawMessage]),
		tables:    make(map[string][][]string),
		matrices:  make(map[string][][]float64),
	}
}

func (l *loader) content(ext string, entry graph.ResolvedEntry) (Content, error) {
	registered, ok := l.registry.Lookup(ext)
	if !ok {
		panic(fmt.Sprintf("sidecar: extension %q is not registered", ext))
	}

	if single, isSingle := entry.Single(); isSingle {
		switch {
		case registered.NumericMatrix:
			matrix, err := l.matrix(single.Rel())
			return Content{matrix: matrix}, err
		case ext == rules.JSONExtension:
			fields, err := l.json(single.Rel())
			return Content{keyValues: fields}, err
		default:
			rows, err := l.table(single.Rel())
			return Content{rows: rows}, err
		}
	}

	// merge lists only exist for key-value extensions
	if ext != rules.JSONExtension {
		panic(fmt.Sprintf("sidecar: merge behaviour on non key-value extension %q", ext))
	}
	maps := make([]*orderedmap.OrderedMap[string, json.RawMessage], 0, len(entry.Paths()))
	for _, meta := range entry.Paths() {
		fields, err := l.json(meta.Rel())
		if err != nil {
			return Content{}, err
		}
		maps = append(maps, fields)
	}
	return Content{keyValues: MergeKeyValues(maps...)}, nil
}

func (l *loader) json(rel string) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	if fields, ok := l.keyValues[rel]; ok {
		return fields, nil
	}
	fields, err := LoadJSON(l.ds, rel)
	if err != nil {
		return nil, err
	}
	l.keyValues[rel] = fields
	return fields, nil
}

func (l *loader) table(rel string) ([][]string, error) {
	if rows, ok := l.tables[rel]; ok {
		return rows, nil
	}
	rows, err := LoadTable(l.ds, rel)
	if err != nil {
		return nil, err
	}
	l.tables[rel] = rows
	return rows, nil
}

func (l *loader) matrix(rel string) ([][]float64, error) {
	if matrix, ok := l.matrices[rel]; ok {
		return matrix, nil
	}
	matrix, err := LoadMatrix(l.ds, rel)
	if err != nil {
		return nil, err
	}
	l.matrices[rel] = matrix
	return matrix, nil
}
