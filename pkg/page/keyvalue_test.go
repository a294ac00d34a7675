// ABOUTME: Tests for KeyValuePage capacity, ordering, and factory behavior

package page

import "testing"

type fakeTrx struct{ rev RevisionNumber }

func (f fakeTrx) Revision() RevisionNumber { return f.rev }

func TestKeyValuePage_PutAndGet(t *testing.T) {
	p := New[int, string](1, PageKindRecord, nil, fakeTrx{rev: 3}, 4)

	if err := p.PutRecord(1, "a"); err != nil {
		t.Fatalf("PutRecord: %v", err)
	}
	if err := p.PutReference(2, PageReference{PageKey: 9}); err != nil {
		t.Fatalf("PutReference: %v", err)
	}

	if got, ok := p.GetRecord(1); !ok || got != "a" {
		t.Fatalf("GetRecord(1) = %v, %v", got, ok)
	}
	if _, ok := p.GetRecord(2); ok {
		t.Fatalf("GetRecord(2) should miss, records and references are disjoint keyspaces")
	}
	if p.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", p.Size())
	}
}

func TestKeyValuePage_CapacityExceeded(t *testing.T) {
	p := New[int, string](1, PageKindRecord, nil, fakeTrx{}, 2)

	if err := p.PutRecord(1, "a"); err != nil {
		t.Fatalf("PutRecord(1): %v", err)
	}
	if err := p.PutReference(2, PageReference{}); err != nil {
		t.Fatalf("PutReference(2): %v", err)
	}
	if err := p.PutRecord(3, "c"); err != ErrCapacityExceeded {
		t.Fatalf("PutRecord(3) err = %v, want ErrCapacityExceeded", err)
	}

	// Overwriting an existing key never trips capacity.
	if err := p.PutRecord(1, "a2"); err != nil {
		t.Fatalf("overwrite should not exceed capacity: %v", err)
	}
}

func TestKeyValuePage_NewInstanceInheritsKindAndKey(t *testing.T) {
	back := &PageReference{PageKey: 5, Revision: 1}
	p := New[int, string](42, PageKindReference, nil, fakeTrx{}, 4)

	sibling := p.NewInstance(back, fakeTrx{rev: 2})

	if sibling.PageKey() != p.PageKey() {
		t.Errorf("PageKey mismatch: %v vs %v", sibling.PageKey(), p.PageKey())
	}
	if sibling.PageKind() != p.PageKind() {
		t.Errorf("PageKind mismatch: %v vs %v", sibling.PageKind(), p.PageKind())
	}
	if sibling.PreviousReference() != back {
		t.Errorf("expected inherited back-reference, got %+v", sibling.PreviousReference())
	}
	if sibling.Size() != 0 {
		t.Errorf("fresh sibling should be empty, got size %d", sibling.Size())
	}
}

func TestRecordPageContainer_Empty(t *testing.T) {
	c := Empty[int, string]()
	if !c.IsEmpty() {
		t.Fatal("Empty() container should report IsEmpty()")
	}
}
