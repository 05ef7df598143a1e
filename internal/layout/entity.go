package layout

import (
	"fmt"
	"strings"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// Entity is a key-value filename tag. Entities scope the applicability of a
// metadata file: a data file must carry every entity of the metadata file,
// with identical values, for the metadata file to apply.
type Entity struct {
	Key   string
	Value string
}

// parseEntity splits an underscore-delimited segment around its first hyphen.
// Both key and value must be non-empty. The value may itself contain hyphens.
func parseEntity(segment string) (Entity, error) {
	sep := strings.Index(segment, "-")
	if sep < 0 {
		return Entity{}, fmt.Errorf("segment %q has no key-value separator: %w", segment, stemma.ErrMalformedPath)
	}
	if sep == 0 {
		return Entity{}, fmt.Errorf("segment %q has an empty key: %w", segment, stemma.ErrMalformedPath)
	}
	if sep == len(segment)-1 {
		return Entity{}, fmt.Errorf("segment %q has an empty value: %w", segment, stemma.ErrMalformedPath)
	}
	return Entity{Key: segment[:sep], Value: segment[sep+1:]}, nil
}

func (e Entity) String() string {
	return e.Key + "-" + e.Value
}
