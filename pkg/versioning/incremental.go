// ABOUTME: INCREMENTAL strategy: every revision holds a delta against its
// ABOUTME: immediate predecessor, bounded by a sliding window of width w

package versioning

import "github.com/bark/sirix/pkg/page"

type IncrementalStrategy[K comparable, V any] struct{}

func (IncrementalStrategy[K, V]) Kind() Kind { return Incremental }

// FetchPlan names up to revsToRestore revisions, newest-first, stopping
// at revision 0: len(FetchPlan(r, w)) == min(w, r+1).
func (IncrementalStrategy[K, V]) FetchPlan(previousRevision page.RevisionNumber, revsToRestore int) []page.RevisionNumber {
	n := revsToRestore
	if int(previousRevision)+1 < revsToRestore {
		n = int(previousRevision) + 1
	}
	out := make([]page.RevisionNumber, n)
	for i := 0; i < n; i++ {
		out[i] = previousRevision - page.RevisionNumber(i)
	}
	return out
}

// CombineForRead folds fragments newest-first, first-writer-wins. Dirty
// is set iff the fold consumed more than one fragment.
func (IncrementalStrategy[K, V]) CombineForRead(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	if len(fragments) == 0 {
		return nil, ErrInvariantViolation
	}
	return foldRead(fragments, fragments[0].PreviousReference(), trx), nil
}

// CombineForModify seeds complete and modified with the current
// transaction's own fragment (fragments[0]), then walks the older
// fragments newest-first. Every not-yet-present key always fills out
// complete; it additionally fills out modified only when this window is
// a full dump (fragments.len() == revsToRestore), the revision at which
// the chain would otherwise exceed the window and must be re-based.
func (IncrementalStrategy[K, V]) CombineForModify(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx, backRef *page.PageReference) (page.RecordPageContainer[K, V], error) {
	if len(fragments) == 0 {
		return page.Empty[K, V](), ErrInvariantViolation
	}
	current := fragments[0]
	complete := current.NewInstance(backRef, trx)
	modified := current.NewInstance(backRef, trx)
	copyAllInto(complete, current)
	copyAllInto(modified, current)

	isFullDump := len(fragments) == revsToRestore
	for i := 1; i < len(fragments); i++ {
		if complete.Full() {
			break
		}
		frag := fragments[i]
		for _, k := range frag.RecordKeys() {
			if complete.Full() {
				break
			}
			if complete.HasRecord(k) {
				continue
			}
			v, _ := frag.GetRecord(k)
			_ = complete.PutRecord(k, v)
			if isFullDump && !modified.Full() && !modified.HasRecord(k) {
				_ = modified.PutRecord(k, v)
			}
		}
		for _, k := range frag.ReferenceKeys() {
			if complete.Full() {
				break
			}
			if complete.HasReference(k) {
				continue
			}
			ref, _ := frag.GetReference(k)
			_ = complete.PutReference(k, ref)
			if isFullDump && !modified.Full() && !modified.HasReference(k) {
				_ = modified.PutReference(k, ref)
			}
		}
	}
	complete.SetDirty(len(fragments) > 1)
	return page.RecordPageContainer[K, V]{Complete: complete, Modified: modified}, nil
}
