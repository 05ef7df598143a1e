package evaluate

import (
	"fmt"
	"strings"

	"github.com/stemma-io/stemma/internal/dataset"
	"github.com/stemma-io/stemma/internal/graph"
	"github.com/stemma-io/stemma/internal/layout"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/sidecar"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// Check identifiers carried by diagnostics, stable so callers can filter.
const (
	CheckForbiddenInheritance    = "forbidden-inheritance"
	CheckNearestAmbiguity        = "nearest-ambiguity"
	CheckDirectoryAmbiguity      = "directory-ambiguity"
	CheckMultipleMetadataPerData = "multiple-metadata-per-data"
	CheckMultipleDataPerMetadata = "multiple-data-per-metadata"
	CheckNonSidecarPair          = "non-sidecar-pair"
	CheckInapplicableMetadata    = "inapplicable-metadata"
	CheckMetadataPlacement       = "metadata-placement"
	CheckJSONFieldOverride       = "json-field-override"
)

// Report is the outcome of evaluating one dataset against one ruleset.
type Report struct {
	// Verdict is the overall outcome; the most severe finding wins
	Verdict stemma.Verdict

	// Diagnostics holds every finding, grouped by check in priority order
	Diagnostics []stemma.Diagnostic

	// InheritanceFound reports whether any multi-file association exists at
	// all, independent of whether the ruleset permits it
	InheritanceFound bool

	// Overrides is the JSON field override report, nil when evaluation
	// stopped before the override check could run
	Overrides *sidecar.Overrides
}

func (r *Report) add(diags ...stemma.Diagnostic) {
	for _, d := range diags {
		r.Diagnostics = append(r.Diagnostics, d)
		r.Verdict = r.Verdict.Merge(verdictFor(d.Severity))
	}
}

func verdictFor(severity stemma.Severity) stemma.Verdict {
	switch severity {
	case stemma.SeverityWarning:
		return stemma.VerdictWarning
	case stemma.SeverityViolation:
		return stemma.VerdictViolation
	default:
		return stemma.VerdictSuccess
	}
}

// Run evaluates the un-pruned graph of a dataset against a ruleset. The
// returned error covers failures to evaluate, such as unreadable metadata
// contents; findings about the dataset itself are diagnostics in the Report.
func Run(ds *dataset.Dataset, g *graph.Graph, ruleset rules.Ruleset) (*Report, error) {
	if err := ruleset.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Verdict: stemma.VerdictSuccess}

	if diags := checkForbiddenInheritance(g); len(diags) > 0 {
		report.add(diags...)
		report.Verdict = stemma.VerdictMalformedInput
		return report, nil
	}

	report.add(checkNearestAmbiguity(g)...)
	report.add(checkDirectoryAmbiguity(g, ruleset)...)

	multiMeta, metaFound := checkMultipleMetadataPerData(g, ruleset)
	report.add(multiMeta...)
	multiData, dataFound := checkMultipleDataPerMetadata(g, ruleset)
	report.add(multiData...)
	report.InheritanceFound = metaFound || dataFound

	report.add(checkNonSidecarPairs(g, ruleset)...)
	report.add(checkInapplicableMetadata(g, ruleset)...)
	report.add(checkMetadataPlacement(g, ruleset)...)

	overrides, overrideDiags, err := checkOverrides(ds, g)
	if err != nil {
		return nil, err
	}
	report.add(overrideDiags...)
	report.Overrides = overrides

	return report, nil
}

// checkForbiddenInheritance finds data files with several applicable files
// of a forbidden-behaviour extension. Any hit means the graph itself has no
// valid resolution, which is why Run stops on it.
func checkForbiddenInheritance(g *graph.Graph) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	exts := g.Registry().Extensions()
	for _, data := range g.DataFiles() {
		candidates := g.CandidatesFor(data.Rel())
		for _, ext := range exts {
			metas := candidates[ext]
			if len(metas) <= 1 || g.Registry().Behaviour(ext) != rules.BehaviourForbidden {
				continue
			}
			diags = append(diags, stemma.Diagnostic{
				Check:    CheckForbiddenInheritance,
				Severity: stemma.SeverityViolation,
				Message: fmt.Sprintf("inheritance is forbidden for %s yet %d files apply to %s: %s",
					ext, len(metas), data.Rel(), joinRels(metas)),
				Paths: involved(data, metas),
			})
		}
	}
	return diags
}

func checkNearestAmbiguity(g *graph.Graph) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	exts := g.Registry().Extensions()
	for _, data := range g.DataFiles() {
		candidates := g.CandidatesFor(data.Rel())
		for _, ext := range exts {
			metas := candidates[ext]
			if g.Registry().Behaviour(ext) != rules.BehaviourNearest || layout.HasUnambiguousNearest(metas) {
				continue
			}
			tied := metas[len(metas)-2:]
			diags = append(diags, stemma.Diagnostic{
				Check:    CheckNearestAmbiguity,
				Severity: stemma.SeverityViolation,
				Message: fmt.Sprintf("no unambiguous nearest %s file for %s: %s and %s are tied",
					ext, data.Rel(), tied[0].Rel(), tied[1].Rel()),
				Paths: involved(data, tied),
			})
		}
	}
	return diags
}

func checkDirectoryAmbiguity(g *graph.Graph, ruleset rules.Ruleset) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	exts := g.Registry().Extensions()
	for _, data := range g.DataFiles() {
		candidates := g.CandidatesFor(data.Rel())
		for _, ext := range exts {
			metas := candidates[ext]
			policy := ruleset.WithinDir(ext)
			if !layout.HasOrderAmbiguity(metas, policy) {
				continue
			}
			diags = append(diags, stemma.Diagnostic{
				Check:    CheckDirectoryAmbiguity,
				Severity: stemma.SeverityViolation,
				Message: fmt.Sprintf("%s files applying to %s cannot be ordered within a single directory under the %s policy: %s",
					ext, data.Rel(), policy, joinRels(metas)),
				Paths: involved(data, metas),
			})
		}
	}
	return diags
}

// checkMultipleMetadataPerData reports each data file with more than one
// applicable file of a single extension. The second return value feeds
// Report.InheritanceFound regardless of whether the ruleset permits the
// multiplicity.
func checkMultipleMetadataPerData(g *graph.Graph, ruleset rules.Ruleset) ([]stemma.Diagnostic, bool) {
	var diags []stemma.Diagnostic
	found := false
	exts := g.Registry().Extensions()
	for _, data := range g.DataFiles() {
		candidates := g.CandidatesFor(data.Rel())
		for _, ext := range exts {
			metas := candidates[ext]
			if len(metas) <= 1 {
				continue
			}
			found = true
			d := stemma.Diagnostic{
				Check:    CheckMultipleMetadataPerData,
				Severity: stemma.SeverityInfo,
				Message: fmt.Sprintf("%d %s files apply to %s: %s",
					len(metas), ext, data.Rel(), joinRels(metas)),
				Paths: involved(data, metas),
			}
			if !ruleset.PermitMultipleMetadataPerData {
				d.Severity = stemma.SeverityViolation
				d.Message = fmt.Sprintf("%d %s files apply to %s, which ruleset %s does not permit: %s",
					len(metas), ext, data.Rel(), ruleset.Name, joinRels(metas))
			}
			diags = append(diags, d)
		}
	}
	return diags, found
}

func checkMultipleDataPerMetadata(g *graph.Graph, ruleset rules.Ruleset) ([]stemma.Diagnostic, bool) {
	var diags []stemma.Diagnostic
	found := false
	for _, meta := range g.MetadataFiles() {
		datas := g.DataFor(meta.Rel())
		if len(datas) <= 1 {
			continue
		}
		found = true
		d := stemma.Diagnostic{
			Check:    CheckMultipleDataPerMetadata,
			Severity: stemma.SeverityInfo,
			Message: fmt.Sprintf("%s applies to %d data files: %s",
				meta.Rel(), len(datas), joinRels(datas)),
			Paths: involved(meta, datas),
		}
		if !ruleset.PermitMultipleDataPerMetadata {
			d.Severity = stemma.SeverityViolation
			d.Message = fmt.Sprintf("%s applies to %d data files, which ruleset %s does not permit: %s",
				meta.Rel(), len(datas), ruleset.Name, joinRels(datas))
		}
		diags = append(diags, d)
	}
	return diags, found
}

// checkNonSidecarPairs finds exclusive one-to-one associations whose two
// sides are not a true sidecar pair: the metadata file is the only
// applicable file of its extension for the data file, the data file is the
// only file the metadata file applies to, and their stems differ.
func checkNonSidecarPairs(g *graph.Graph, ruleset rules.Ruleset) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	for _, meta := range g.MetadataFiles() {
		datas := g.DataFor(meta.Rel())
		if len(datas) != 1 {
			continue
		}
		data := datas[0]
		if len(g.CandidatesFor(data.Rel())[meta.Extension()]) != 1 {
			continue
		}
		if layout.IsSidecarPair(meta, data, g.Registry()) {
			continue
		}
		diags = append(diags, stemma.Diagnostic{
			Check:    CheckNonSidecarPair,
			Severity: permitSeverity(ruleset.PermitNonSidecar),
			Message: fmt.Sprintf("%s is exclusively paired with %s without being its sidecar",
				meta.Rel(), data.Rel()),
			Paths: []string{meta.Rel(), data.Rel()},
		})
	}
	return diags
}

func checkInapplicableMetadata(g *graph.Graph, ruleset rules.Ruleset) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	for _, meta := range g.MetadataFiles() {
		if len(g.DataFor(meta.Rel())) > 0 {
			continue
		}
		diags = append(diags, stemma.Diagnostic{
			Check:    CheckInapplicableMetadata,
			Severity: permitSeverity(ruleset.PermitNonSidecar),
			Message:  fmt.Sprintf("%s applies to no data file", meta.Rel()),
			Paths:    []string{meta.Rel()},
		})
	}
	return diags
}

// permitSeverity grades a finding the ruleset may tolerate: permitted means
// a warning, otherwise a violation.
func permitSeverity(permitted bool) stemma.Severity {
	if permitted {
		return stemma.SeverityWarning
	}
	return stemma.SeverityViolation
}

func checkMetadataPlacement(g *graph.Graph, ruleset rules.Ruleset) []stemma.Diagnostic {
	switch ruleset.PathCheck {
	case rules.PathCheckSubjectScope:
		return checkSubjectScope(g, ruleset.SubjectKey)
	case rules.PathCheckReachability:
		return checkReachability(g)
	default:
		panic(fmt.Sprintf("evaluate: unhandled path check %d", ruleset.PathCheck))
	}
}

// checkSubjectScope enforces the legacy placement rule: a metadata file
// whose first entity carries the subject key belongs below the dataset
// root, every other metadata file belongs at the root and nowhere else.
func checkSubjectScope(g *graph.Graph, subjectKey string) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	for _, meta := range g.MetadataFiles() {
		entities := meta.Entities()
		subjectScoped := len(entities) > 0 && entities[0].Key == subjectKey
		atRoot := meta.Dir() == "."
		var message string
		switch {
		case subjectScoped && atRoot:
			message = fmt.Sprintf("subject-scoped file %s must not reside at the dataset root", meta.Rel())
		case !subjectScoped && !atRoot:
			message = fmt.Sprintf("%s carries no leading %s entity and must reside at the dataset root", meta.Rel(), subjectKey)
		default:
			continue
		}
		diags = append(diags, stemma.Diagnostic{
			Check:    CheckMetadataPlacement,
			Severity: stemma.SeverityViolation,
			Message:  message,
			Paths:    []string{meta.Rel()},
		})
	}
	return diags
}

// checkReachability flags metadata files that match some data file by name
// alone while residing in a branch of the tree from which they can never
// apply to it.
func checkReachability(g *graph.Graph) []stemma.Diagnostic {
	var diags []stemma.Diagnostic
	for _, meta := range g.MetadataFiles() {
		associated := make(map[string]struct{})
		for _, data := range g.DataFor(meta.Rel()) {
			associated[data.Rel()] = struct{}{}
		}

		var unreachable []*layout.Path
		for _, data := range g.DataFiles() {
			if _, ok := associated[data.Rel()]; ok {
				continue
			}
			// An ancestor-or-same-directory placement was already judged by
			// the graph builder, so absence from the associations is final.
			if layout.AncestorOrSameDir(meta.Dir(), data.Dir()) {
				continue
			}
			if layout.NameMatches(data, meta) {
				unreachable = append(unreachable, data)
			}
		}
		if len(unreachable) == 0 {
			continue
		}
		diags = append(diags, stemma.Diagnostic{
			Check:    CheckMetadataPlacement,
			Severity: stemma.SeverityViolation,
			Message: fmt.Sprintf("%s matches %s by name but sits in a branch from which it can never apply",
				meta.Rel(), joinRels(unreachable)),
			Paths: involved(meta, unreachable),
		})
	}
	return diags
}

// checkOverrides loads every JSON file that takes part in a multi-file
// merge and reports fields set by more than one of them. Unreadable or
// malformed contents fail the run rather than the dataset.
func checkOverrides(ds *dataset.Dataset, g *graph.Graph) (*sidecar.Overrides, []stemma.Diagnostic, error) {
	overrides, err := sidecar.FindOverrides(ds, g)
	if err != nil {
		return nil, nil, err
	}
	var diags []stemma.Diagnostic
	overrides.Each(func(dataRel, key string, paths []string) {
		diags = append(diags, stemma.Diagnostic{
			Check:    CheckJSONFieldOverride,
			Severity: stemma.SeverityWarning,
			Message: fmt.Sprintf("field %q of %s is set by %d files: %s",
				key, dataRel, len(paths), strings.Join(paths, ", ")),
			Paths: append([]string{dataRel}, paths...),
		})
	})
	return overrides, diags, nil
}

// involved builds a diagnostic path list: the subject of the finding first,
// then the files it was judged against.
func involved(subject *layout.Path, rest []*layout.Path) []string {
	out := make([]string, 0, len(rest)+1)
	out = append(out, subject.Rel())
	for _, p := range rest {
		out = append(out, p.Rel())
	}
	return out
}

func joinRels(paths []*layout.Path) string {
	rels := make([]string, len(paths))
	for i, p := range paths {
		rels[i] = p.Rel()
	}
	return strings.Join(rels, ", ")
}
