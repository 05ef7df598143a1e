package sidecar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// LoadJSON reads a key-value metadata file, preserving key order. The top
// level must be a JSON object.
func LoadJSON(ds *dataset.Dataset, rel string) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	content, err := ds.ReadFile(rel)
	if err != nil {
		return nil, err
	}
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", rel, err, stemma.ErrMalformedContent)
	}
	return fields, nil
}

// LoadTable reads a tab-separated metadata file into rows of strings. Every
// row must have the width of the first.
func LoadTable(ds *dataset.Dataset, rel string) ([][]string, error) {
	content, err := ds.ReadFile(rel)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil, fmt.Errorf("table %s is empty: %w", rel, stemma.ErrMalformedContent)
	}

	lines := strings.Split(text, "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		row := strings.Split(line, "\t")
		if i > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("table %s row %d has %d columns, header has %d: %w",
				rel, i+1, len(row), len(rows[0]), stemma.ErrMalformedContent)
		}
		rows[i] = row
	}
	return rows, nil
}

// LoadMatrix reads a whitespace-separated numeric metadata file into a
// rectangular matrix.
func LoadMatrix(ds *dataset.Dataset, rel string) ([][]float64, error) {
	content, err := ds.ReadFile(rel)
	if err != nil {
		return nil, err
	}

	var matrix [][]float64
	for i, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(matrix) > 0 && len(fields) != len(matrix[0]) {
			return nil, fmt.Errorf("matrix %s line %d has %d values, first row has %d: %w",
				rel, i+1, len(fields), len(matrix[0]), stemma.ErrMalformedContent)
		}
		row := make([]float64, len(fields))
		for j, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("matrix %s line %d: %q is not a number: %w",
					rel, i+1, field, stemma.ErrMalformedContent)
			}
			row[j] = value
		}
		matrix = append(matrix, row)
	}

	if len(matrix) == 0 {
		return nil, fmt.Errorf("matrix %s is empty: %w", rel, stemma.ErrMalformedContent)
	}
	return matrix, nil
}

// MergeKeyValues merges key-value maps given most distant first. A later map
// wins on key collision while the key keeps its first-seen position.
func MergeKeyValues(maps ...*orderedmap.OrderedMap[string, json.RawMessage]) *orderedmap.OrderedMap[string, json.RawMessage] {
	merged := orderedmap.New[string, json.RawMessage]()
	for _, m := range maps {
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	return merged
}
