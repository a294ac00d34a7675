package versioning

import (
	"testing"

	"github.com/bark/sirix/pkg/page"
)

func TestDifferential_FetchPlan(t *testing.T) {
	s := DifferentialStrategy[int, string]{}

	if plan := s.FetchPlan(6, 3); len(plan) != 1 || plan[0] != 6 {
		t.Fatalf("FetchPlan(6,3) on a full-dump revision = %v, want [6]", plan)
	}
	if plan := s.FetchPlan(7, 3); len(plan) != 2 || plan[0] != 7 || plan[1] != 6 {
		t.Fatalf("FetchPlan(7,3) = %v, want [7 6]", plan)
	}
	if plan := s.FetchPlan(8, 3); len(plan) != 2 || plan[0] != 8 || plan[1] != 6 {
		t.Fatalf("FetchPlan(8,3) = %v, want [8 6]", plan)
	}
}

// S3: DIFFERENTIAL read folds the latest delta over the full dump,
// first-writer-wins, and flags the result dirty.
func TestDifferential_CombineForRead(t *testing.T) {
	s := DifferentialStrategy[int, string]{}
	latest := newFragment(1, 10, []int{2, 5}, []string{"b'", "e"})
	fullDump := newFragment(1, 10, []int{1, 2, 3}, []string{"a", "b", "c"})

	out, err := s.CombineForRead([]*page.KeyValuePage[int, string]{latest, fullDump}, 3, fakeTrx{})
	if err != nil {
		t.Fatalf("CombineForRead: %v", err)
	}
	want := map[int]string{2: "b'", 5: "e", 1: "a", 3: "c"}
	if !mapsEqual(recordsOf(out), want) {
		t.Fatalf("combined = %v, want %v", recordsOf(out), want)
	}
	if !out.Dirty() {
		t.Fatalf("expected dirty=true when two fragments were supplied")
	}
}

func TestDifferential_CombineForRead_SingleFragmentNotDirty(t *testing.T) {
	s := DifferentialStrategy[int, string]{}
	frag := newFragment(1, 10, []int{1}, []string{"a"})

	out, err := s.CombineForRead([]*page.KeyValuePage[int, string]{frag}, 3, fakeTrx{})
	if err != nil {
		t.Fatalf("CombineForRead: %v", err)
	}
	if out.Dirty() {
		t.Fatalf("single-fragment read should not be dirty")
	}
}

// At a full-dump revision boundary, the next delta absorbs the entire
// reconstructed page rather than staying a small diff.
func TestDifferential_CombineForModify_FullDumpBoundary(t *testing.T) {
	s := DifferentialStrategy[int, string]{}
	latest := newFragment(1, 10, []int{2}, []string{"b'"})
	fullDump := newFragment(1, 10, []int{1, 2, 3}, []string{"a", "b", "c"})

	container, err := s.CombineForModify([]*page.KeyValuePage[int, string]{latest, fullDump}, 3, fakeTrx{rev: 6}, nil)
	if err != nil {
		t.Fatalf("CombineForModify: %v", err)
	}
	wantComplete := map[int]string{1: "a", 2: "b'", 3: "c"}
	if !mapsEqual(recordsOf(container.Complete), wantComplete) {
		t.Errorf("complete = %v, want %v", recordsOf(container.Complete), wantComplete)
	}
	// revision 6 is a full-dump boundary for revsToRestore=3, so modified
	// absorbs the full reconstructed content too.
	if !mapsEqual(recordsOf(container.Modified), wantComplete) {
		t.Errorf("modified = %v, want %v (full-dump boundary)", recordsOf(container.Modified), wantComplete)
	}
}

func TestDifferential_CombineForModify_NonBoundaryStaysSmall(t *testing.T) {
	s := DifferentialStrategy[int, string]{}
	latest := newFragment(1, 10, []int{2}, []string{"b'"})
	fullDump := newFragment(1, 10, []int{1, 2, 3}, []string{"a", "b", "c"})

	container, err := s.CombineForModify([]*page.KeyValuePage[int, string]{latest, fullDump}, 3, fakeTrx{rev: 7}, nil)
	if err != nil {
		t.Fatalf("CombineForModify: %v", err)
	}
	wantModified := map[int]string{2: "b'"}
	if !mapsEqual(recordsOf(container.Modified), wantModified) {
		t.Errorf("modified = %v, want %v (not a full-dump boundary)", recordsOf(container.Modified), wantModified)
	}
}
