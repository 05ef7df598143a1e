package layout

import (
	"reflect"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"same path", "sub-01/x_bold.json", "sub-01/x_bold.json", 0},
		{"ancestor directory first", "task-rest_bold.json", "sub-01/sub-01_task-rest_bold.json", -1},
		{"descendant directory last", "sub-01/sub-01_T1w.json", "T1w.json", 1},
		{"unrelated directories lexicographic", "sub-01/sub-01_T1w.nii", "sub-02/sub-02_T1w.nii", -1},
		{"suffix-less first", "sub-01_task-rest.json", "task-rest_bold.json", -1},
		{"fewer entities first", "task-rest_bold.json", "sub-01_task-rest_bold.json", -1},
		{"same dir same shape tied", "task-go_bold.json", "task-stop_bold.json", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := sign(a.Compare(b)); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := sign(b.Compare(a)); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestStrictlyOrdered(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"different depth", "task-rest_bold.json", "sub-01/sub-01_task-rest_bold.json", true},
		{"different entity count", "task-rest_bold.json", "sub-01_task-rest_bold.json", true},
		{"suffix presence differs", "sub-01_task-rest.json", "task-rest_bold.json", true},
		{"tie despite different names", "task-go_bold.json", "task-stop_bold.json", false},
		{"identical", "task-rest_bold.json", "task-rest_bold.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := StrictlyOrdered(a, b); got != tt.want {
				t.Errorf("StrictlyOrdered(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestLess_TotalOrder checks that the lexicographic fallback makes Less
// usable for sorting even across tied paths.
func TestLess_TotalOrder(t *testing.T) {
	a := mustParse(t, "task-go_bold.json")
	b := mustParse(t, "task-stop_bold.json")

	if !a.Less(b) || b.Less(a) {
		t.Error("tied paths must still order lexicographically under Less")
	}
	if a.Less(a) {
		t.Error("Less must be irreflexive")
	}
}

func TestSortPaths(t *testing.T) {
	rels := []string{
		"sub-01/ses-01/sub-01_ses-01_task-rest_bold.nii",
		"sub-01/sub-01_task-rest_bold.json",
		"task-rest_bold.json",
		"sub-01_task-rest.json",
		"sub-01/sub-01_task-rest.json",
		"bold.json",
	}
	paths := make([]*Path, len(rels))
	for i, rel := range rels {
		paths[i] = mustParse(t, rel)
	}

	SortPaths(paths)

	want := []string{
		// Root first; within the root, suffix-less before suffixed and
		// fewer entities before more.
		"sub-01_task-rest.json",
		"bold.json",
		"task-rest_bold.json",
		// Then the subject directory, then its session directory.
		"sub-01/sub-01_task-rest.json",
		"sub-01/sub-01_task-rest_bold.json",
		"sub-01/ses-01/sub-01_ses-01_task-rest_bold.nii",
	}
	got := make([]string, len(paths))
	for i, p := range paths {
		got[i] = p.Rel()
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortPaths() = %v, want %v", got, want)
	}
}
