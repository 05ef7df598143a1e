package dataset

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stemma-io/stemma/pkg/stemma"
)

const (
	schemaVersionKey  = "SchemaVersion"
	generatedByKey    = "GeneratedBy"
	sourceDatasetsKey = "SourceDatasets"
)

// Description is the parsed dataset description with key order preserved,
// so a rewritten file keeps the layout of its source.
type Description struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewDescription returns an empty description.
func NewDescription() *Description {
	return &Description{fields: orderedmap.New[string, json.RawMessage]()}
}

// ReadDescription reads and parses the dataset description file. A missing
// file surfaces the provider's not-exist error; invalid JSON surfaces
// ErrMalformedContent.
func (d *Dataset) ReadDescription() (*Description, error) {
	content, err := d.ReadFile(DescriptionFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DescriptionFilename, err)
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(content, fields); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", DescriptionFilename, err, stemma.ErrMalformedContent)
	}

	return &Description{fields: fields}, nil
}

// WriteDescription writes the description to the dataset root.
func (d *Dataset) WriteDescription(desc *Description) error {
	content, err := json.Marshal(desc.fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", DescriptionFilename, err)
	}
	return d.WriteFile(DescriptionFilename, content)
}

// Get returns the raw JSON value stored under key.
func (desc *Description) Get(key string) (json.RawMessage, bool) {
	return desc.fields.Get(key)
}

// Set stores value under key, keeping the key's existing position if it is
// already present.
func (desc *Description) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	desc.fields.Set(key, raw)
	return nil
}

// Keys returns the description's keys in file order.
func (desc *Description) Keys() []string {
	keys := make([]string, 0, desc.fields.Len())
	for pair := desc.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// SchemaVersion returns the declared schema version, if present and a
// string.
func (desc *Description) SchemaVersion() (string, bool) {
	raw, ok := desc.fields.Get(schemaVersionKey)
	if !ok {
		return "", false
	}
	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", false
	}
	return version, true
}

// AppendProvenance appends a GeneratedBy record and the source dataset
// path to the description, creating either list when absent. Existing keys
// keep their positions.
func (desc *Description) AppendProvenance(record stemma.GeneratedBy, sourcePath string) error {
	if err := desc.appendToList(generatedByKey, record); err != nil {
		return err
	}
	return desc.appendToList(sourceDatasetsKey, sourcePath)
}

func (desc *Description) appendToList(key string, value any) error {
	var list []json.RawMessage
	if raw, ok := desc.fields.Get(key); ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("%s is not a list: %w", key, stemma.ErrMalformedContent)
		}
	}

	entry, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s entry: %w", key, err)
	}
	list = append(list, entry)

	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	desc.fields.Set(key, raw)
	return nil
}
