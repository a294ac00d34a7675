// ABOUTME: SLIDING_SNAPSHOT strategy: like INCREMENTAL, but rescues entries
// ABOUTME: that are about to age out of the window instead of dropping them

package versioning

import "github.com/bark/sirix/pkg/page"

type SlidingSnapshotStrategy[K comparable, V any] struct{}

func (SlidingSnapshotStrategy[K, V]) Kind() Kind { return SlidingSnapshot }

// FetchPlan matches INCREMENTAL: up to revsToRestore revisions, newest-first.
func (s SlidingSnapshotStrategy[K, V]) FetchPlan(previousRevision page.RevisionNumber, revsToRestore int) []page.RevisionNumber {
	return IncrementalStrategy[K, V]{}.FetchPlan(previousRevision, revsToRestore)
}

// CombineForRead matches INCREMENTAL: fold newest-first, first-writer-wins.
func (s SlidingSnapshotStrategy[K, V]) CombineForRead(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	return IncrementalStrategy[K, V]{}.CombineForRead(fragments, revsToRestore, trx)
}

// CombineForModify seeds complete and modified with the current
// transaction's own fragment, then walks the remaining fragments
// newest-first maintaining an auxiliary reconstructed page folded from
// every fragment except the oldest (the view the window would have
// after the oldest fragment ages out). When the window is full
// (fragments.len() == revsToRestore), the oldest fragment's entries
// that reconstructed would NOT otherwise recover are rescued into
// modified -- without this they would become unreachable once the
// oldest fragment is no longer part of any future fetch_plan. Every
// fragment, including the oldest, still folds into complete
// first-writer-wins.
func (SlidingSnapshotStrategy[K, V]) CombineForModify(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx, backRef *page.PageReference) (page.RecordPageContainer[K, V], error) {
	if len(fragments) == 0 {
		return page.Empty[K, V](), ErrInvariantViolation
	}
	n := len(fragments)
	current := fragments[0]
	complete := current.NewInstance(backRef, trx)
	modified := current.NewInstance(backRef, trx)
	reconstructed := current.NewInstance(nil, trx)
	copyAllInto(complete, current)
	copyAllInto(modified, current)
	copyAllInto(reconstructed, current)

	for i := 1; i < n; i++ {
		frag := fragments[i]
		isOldest := i == n-1

		if !isOldest || n < revsToRestore {
			foldNotPresent(reconstructed, frag)
		}
		if isOldest && n == revsToRestore {
			foldNotPresentInto(modified, reconstructed, frag)
		}
		if !complete.Full() {
			foldNotPresent(complete, frag)
		}
	}
	complete.SetDirty(n > 1)
	return page.RecordPageContainer[K, V]{Complete: complete, Modified: modified}, nil
}
