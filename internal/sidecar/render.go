package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// Format renders the content in its on-disk form: an indented key-value
// object, tab-separated lines, or exponential matrix rows.
func (c Content) Format() ([]byte, error) {
	switch {
	case c.keyValues != nil:
		return FormatKeyValues(c.keyValues)
	case c.rows != nil:
		return FormatRows(c.rows), nil
	case c.matrix != nil:
		return FormatMatrix(c.matrix), nil
	default:
		return nil, fmt.Errorf("format empty content: %w", stemma.ErrInternal)
	}
}

// FormatKeyValues renders a key-value object as indented JSON followed by a
// newline, keys in map order.
func FormatKeyValues(fields *orderedmap.OrderedMap[string, json.RawMessage]) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FormatRows renders a string table as tab-separated lines.
func FormatRows(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// FormatMatrix renders a numeric matrix as space-separated rows in
// exponential notation, matching the form numeric files are written in.
func FormatMatrix(matrix [][]float64) []byte {
	var buf bytes.Buffer
	for _, row := range matrix {
		for j, value := range row {
			if j > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%.18e", value)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
