package layout

import "sort"

// Compare orders two paths by the criteria that carry meaning for nearest
// selection. It returns a negative number when p sorts first, positive when
// other does, and 0 when the two are tied:
//
//  1. a path whose directory strictly contains the other's sorts first;
//  2. paths in unrelated directories sort by full path string, so the first
//     differing component decides without locating the common ancestor;
//  3. within one directory, a suffix-less name sorts before one with a suffix;
//  4. then fewer entities sorts first.
//
// Two distinct paths in the same directory with the same suffix presence and
// entity count are tied. Sorting breaks such ties lexicographically (see
// Less), but a tie can never yield an unambiguous nearest match.
func (p *Path) Compare(other *Path) int {
	if p.rel == other.rel {
		return 0
	}
	if properAncestorDir(p.dir, other.dir) {
		return -1
	}
	if properAncestorDir(other.dir, p.dir) {
		return 1
	}
	if p.dir != other.dir {
		if p.rel < other.rel {
			return -1
		}
		return 1
	}
	if p.hasSuffix != other.hasSuffix {
		if !p.hasSuffix {
			return -1
		}
		return 1
	}
	switch d := len(p.entities) - len(other.entities); {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

// Less is Compare with a final lexicographic tiebreak on the full path
// string, making it a total order suitable for sorting.
func (p *Path) Less(other *Path) bool {
	if c := p.Compare(other); c != 0 {
		return c < 0
	}
	return p.rel < other.rel
}

// StrictlyOrdered reports whether the ordering distinguishes two paths on
// its own terms, without the lexicographic sort fallback. Paths it reports
// false for are interchangeable as far as nearest selection is concerned.
func StrictlyOrdered(a, b *Path) bool {
	return a.Compare(b) != 0
}

// SortPaths sorts paths in place by the ordering. The sort is stable so tied
// paths keep their insertion order.
func SortPaths(paths []*Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Less(paths[j])
	})
}
