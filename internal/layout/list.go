package layout

import "fmt"

// HasUnambiguousNearest reports whether the last entry of an ordered
// candidate list is a legitimate nearest match. With more than one
// candidate, the two most-proximal entries must be strictly ordered
// relative to each other; a tie means neither can be preferred.
func HasUnambiguousNearest(paths []*Path) bool {
	if len(paths) <= 1 {
		return true
	}
	return StrictlyOrdered(paths[len(paths)-2], paths[len(paths)-1])
}

// HasOrderAmbiguity reports whether a candidate list violates the given
// within-directory policy. Candidates are split by directory depth; under
// Unique any level holding more than one file is ambiguous, under Ordered a
// level is ambiguous only when two of its files share an entity count and so
// cannot be sorted, and under Any nothing is.
func HasOrderAmbiguity(paths []*Path, policy WithinDirPolicy) bool {
	if policy == WithinDirAny {
		return false
	}

	// Parent count is an adequate proxy for directory of residence here:
	// every path in one candidate list lies on a single root-to-leaf chain.
	byParentCount := make(map[int][]*Path)
	for _, p := range paths {
		n := p.ParentCount()
		byParentCount[n] = append(byParentCount[n], p)
	}

	switch policy {
	case WithinDirUnique:
		for _, level := range byParentCount {
			if len(level) > 1 {
				return true
			}
		}
		return false
	case WithinDirOrdered:
		for _, level := range byParentCount {
			if len(level) == 1 {
				continue
			}
			counts := make(map[int]struct{}, len(level))
			for _, p := range level {
				counts[len(p.entities)] = struct{}{}
			}
			if len(counts) < len(level) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("layout.HasOrderAmbiguity: unhandled policy %d", policy))
	}
}

// pathGroup is a run of consecutive paths sharing directory depth and entity
// count, within which the ordering cannot distinguish members.
type pathGroup struct {
	parentCount int
	entityCount int
	index       int
	paths       map[string]struct{}
}

func groupTies(paths []*Path) []pathGroup {
	var groups []pathGroup
	for i, p := range paths {
		pc, ec := p.ParentCount(), len(p.entities)
		if n := len(groups); n > 0 && groups[n-1].parentCount == pc && groups[n-1].entityCount == ec {
			groups[n-1].paths[p.rel] = struct{}{}
			continue
		}
		groups = append(groups, pathGroup{
			parentCount: pc,
			entityCount: ec,
			index:       i,
			paths:       map[string]struct{}{p.rel: {}},
		})
	}
	return groups
}

// Equivalent reports whether two ordered path lists agree up to arbitrary
// ordering of ties. Runs of equal (directory depth, entity count) form
// groups; the lists are equivalent when their groups align by start index
// and hold the same path sets.
func Equivalent(a, b []*Path) bool {
	if len(a) != len(b) {
		return false
	}

	groupsA, groupsB := groupTies(a), groupTies(b)
	if len(groupsA) != len(groupsB) {
		return false
	}
	for i := range groupsA {
		ga, gb := groupsA[i], groupsB[i]
		if ga.parentCount != gb.parentCount || ga.entityCount != gb.entityCount {
			return false
		}
		if ga.index != gb.index {
			return false
		}
		if len(ga.paths) != len(gb.paths) {
			return false
		}
		for rel := range ga.paths {
			if _, ok := gb.paths[rel]; !ok {
				return false
			}
		}
	}
	return true
}
