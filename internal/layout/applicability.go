package layout

import (
	"fmt"

	"github.com/stemma-io/stemma/pkg/stemma"
)

// entitiesApplicable reports whether every entity of meta appears in data
// with an identical value. Data may carry entities meta does not mention;
// an absent key or a differing value means not applicable.
func entitiesApplicable(data, meta *Path) bool {
	for _, entity := range meta.entities {
		value, ok := data.EntityValue(entity.Key)
		if !ok || value != entity.Value {
			return false
		}
	}
	return true
}

// NameApplicable reports whether meta could apply to data judged by file
// name alone. Both inputs must be bare file names with no directory
// component; anything else is a usage error.
func NameApplicable(data, meta *Path) (bool, error) {
	if data.ParentCount() != 1 || meta.ParentCount() != 1 {
		return false, fmt.Errorf("name applicability takes bare file names, got %q and %q: %w",
			data.rel, meta.rel, stemma.ErrUsage)
	}
	return entitiesApplicable(data, meta), nil
}

// NameMatches reports whether meta would apply to data were directory
// placement ignored: entity applicability plus, when meta carries a suffix,
// suffix equality. A metadata file that name-matches a data file without
// path-applying to it sits in the wrong branch of the tree.
func NameMatches(data, meta *Path) bool {
	if suffix, ok := meta.Suffix(); ok {
		dataSuffix, dataOk := data.Suffix()
		if !dataOk || dataSuffix != suffix {
			return false
		}
	}
	return entitiesApplicable(data, meta)
}

// PathApplicable reports whether meta applies to data: meta's directory must
// be data's directory or an ancestor of it, and the names must match. This
// is the sole admission test used by the graph builder.
func PathApplicable(data, meta *Path) bool {
	if !AncestorOrSameDir(meta.dir, data.dir) {
		return false
	}
	return NameMatches(data, meta)
}
