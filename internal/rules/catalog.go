package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// defaultSubjectKey is the entity key marking subject-scoped files in every
// built-in ruleset.
const defaultSubjectKey = "sub"

// catalog holds the built-in rulesets in presentation order.
var catalog = []Ruleset{
	{
		Name: "1.1.x",
		// Suffix must be present in all files, metadata files included
		CompulsorySuffix: true,
		// A data file can't have more than one applicable JSON in a single
		// directory, nor more than one of any other metadata extension
		JSONWithinDir:    layout.WithinDirUnique,
		NonJSONWithinDir: layout.WithinDirUnique,
		// JSON fields can be overridden from distant to nearest
		PermitJSONFieldOverwrite: true,
		// No limit on one data file having several applicable metadata files
		PermitMultipleMetadataPerData: true,
		// No limit on one metadata file applying to several data files
		PermitMultipleDataPerMetadata: true,
		// Metadata files don't strictly have to be sidecars
		PermitNonSidecar: true,
		// Subject-scoped files below root, everything else at root only
		PathCheck:  PathCheckSubjectScope,
		SubjectKey: defaultSubjectKey,
	},
	{
		Name:                          "1.7.x",
		CompulsorySuffix:              true,
		JSONWithinDir:                 layout.WithinDirUnique,
		NonJSONWithinDir:              layout.WithinDirUnique,
		PermitJSONFieldOverwrite:      true,
		PermitMultipleMetadataPerData: true,
		PermitMultipleDataPerMetadata: true,
		PermitNonSidecar:              true,
		// Placement is judged by reachability instead of subject scoping
		PathCheck:  PathCheckReachability,
		SubjectKey: defaultSubjectKey,
	},
	{
		Name:             "strict-order",
		CompulsorySuffix: true,
		// Several applicable files at one directory level are fine, but
		// only if entity counts order them unambiguously
		JSONWithinDir:                 layout.WithinDirOrdered,
		NonJSONWithinDir:              layout.WithinDirOrdered,
		PermitJSONFieldOverwrite:      true,
		PermitMultipleMetadataPerData: true,
		PermitMultipleDataPerMetadata: true,
		PermitNonSidecar:              true,
		PathCheck:                     PathCheckReachability,
		SubjectKey:                    defaultSubjectKey,
	},
	{
		Name:             "no-overwrite",
		CompulsorySuffix: true,
		// Any number of applicable JSONs per directory: with field
		// overwrite forbidden there is no precedence to disambiguate.
		// Other extensions still need an unambiguous nearest file.
		JSONWithinDir:                 layout.WithinDirAny,
		NonJSONWithinDir:              layout.WithinDirOrdered,
		PermitJSONFieldOverwrite:      false,
		PermitMultipleMetadataPerData: true,
		PermitMultipleDataPerMetadata: true,
		PermitNonSidecar:              true,
		PathCheck:                     PathCheckReachability,
		SubjectKey:                    defaultSubjectKey,
	},
	{
		// Precludes all metadata inheritance, expressed as a ruleset so the
		// tool can detect and report any manifestation of it
		Name:                          "forbidden",
		CompulsorySuffix:              true,
		JSONWithinDir:                 layout.WithinDirUnique,
		NonJSONWithinDir:              layout.WithinDirUnique,
		PermitJSONFieldOverwrite:      false,
		PermitMultipleMetadataPerData: false,
		PermitMultipleDataPerMetadata: false,
		// Every metadata file must be a sidecar to a data file
		PermitNonSidecar: false,
		PathCheck:        PathCheckReachability,
		SubjectKey:       defaultSubjectKey,
	},
}

// Catalog returns the built-in rulesets in presentation order.
func Catalog() []Ruleset {
	return append([]Ruleset(nil), catalog...)
}

// Names returns the built-in ruleset names in presentation order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, r := range catalog {
		names[i] = r.Name
	}
	return names
}

// Get returns the named built-in ruleset.
func Get(name string) (Ruleset, error) {
	for _, r := range catalog {
		if r.Name == name {
			return r, nil
		}
	}
	return Ruleset{}, fmt.Errorf("ruleset %q (known: %s): %w",
		name, strings.Join(Names(), ", "), stemma.ErrUnknownRuleset)
}

// ForSchemaVersion maps a dataset's declared schema version to the ruleset
// governing it. A value that names a catalog entry selects it directly;
// otherwise the value must look like MAJOR.MINOR[.PATCH], with versions
// before 1.7 governed by 1.1.x and later ones by 1.7.x.
func ForSchemaVersion(version string) (Ruleset, error) {
	for _, r := range catalog {
		if r.Name == version {
			return r, nil
		}
	}

	major, minor, ok := parseVersion(version)
	if !ok {
		return Ruleset{}, fmt.Errorf("schema version %q names no ruleset and is not MAJOR.MINOR[.PATCH]: %w",
			version, stemma.ErrUnknownRuleset)
	}
	if major < 1 || (major == 1 && minor < 7) {
		return Get("1.1.x")
	}
	return Get("1.7.x")
}

func parseVersion(version string) (major, minor int, ok bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return 0, 0, false
	}
	return major, minor, true
}
