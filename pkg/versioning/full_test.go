package versioning

import (
	"testing"

	"github.com/bark/sirix/pkg/page"
)

func TestFull_FetchPlan(t *testing.T) {
	s := FullStrategy[int, string]{}
	plan := s.FetchPlan(7, 3)
	if len(plan) != 1 || plan[0] != 7 {
		t.Fatalf("FetchPlan(7,3) = %v, want [7]", plan)
	}
}

// S1 from the reference scenarios: FULL read is the identity transform.
func TestFull_CombineForRead_Identity(t *testing.T) {
	s := FullStrategy[int, string]{}
	frag := newFragment(1, 10, []int{1, 2, 3}, []string{"a", "b", "c"})

	out, err := s.CombineForRead([]*page.KeyValuePage[int, string]{frag}, 1, fakeTrx{})
	if err != nil {
		t.Fatalf("CombineForRead: %v", err)
	}
	if out != frag {
		t.Fatalf("FULL CombineForRead must return the single fragment unchanged")
	}
}

func TestFull_CombineForRead_RejectsWrongFragmentCount(t *testing.T) {
	s := FullStrategy[int, string]{}
	if _, err := s.CombineForRead(nil, 1, fakeTrx{}); err != ErrInvariantViolation {
		t.Fatalf("expected ErrInvariantViolation for zero fragments, got %v", err)
	}
	two := []*page.KeyValuePage[int, string]{
		newFragment(1, 4, []int{1}, []string{"a"}),
		newFragment(1, 4, []int{2}, []string{"b"}),
	}
	if _, err := s.CombineForRead(two, 1, fakeTrx{}); err != ErrInvariantViolation {
		t.Fatalf("expected ErrInvariantViolation for two fragments, got %v", err)
	}
}

func TestFull_CombineForModify_SeedsBothFromSingleFragment(t *testing.T) {
	s := FullStrategy[int, string]{}
	frag := newFragment(1, 10, []int{1, 2}, []string{"a", "b"})

	container, err := s.CombineForModify([]*page.KeyValuePage[int, string]{frag}, 1, fakeTrx{rev: 5}, nil)
	if err != nil {
		t.Fatalf("CombineForModify: %v", err)
	}
	want := map[int]string{1: "a", 2: "b"}
	if !mapsEqual(recordsOf(container.Complete), want) {
		t.Errorf("complete = %v, want %v", recordsOf(container.Complete), want)
	}
	if !mapsEqual(recordsOf(container.Modified), want) {
		t.Errorf("modified = %v, want %v", recordsOf(container.Modified), want)
	}
}
