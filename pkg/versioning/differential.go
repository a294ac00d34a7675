// ABOUTME: DIFFERENTIAL strategy: every revision holds a delta against the
// ABOUTME: most recent full-dump revision, a multiple of the window width

package versioning

import "github.com/bark/sirix/pkg/page"

type DifferentialStrategy[K comparable, V any] struct{}

func (DifferentialStrategy[K, V]) Kind() Kind { return Differential }

// FetchPlan names the requested revision and, unless it is itself a
// full-dump revision, the most recent full-dump revision behind it.
func (DifferentialStrategy[K, V]) FetchPlan(previousRevision page.RevisionNumber, revsToRestore int) []page.RevisionNumber {
	w := page.RevisionNumber(revsToRestore)
	lastFull := previousRevision - (previousRevision % w)
	if lastFull == previousRevision {
		return []page.RevisionNumber{lastFull}
	}
	return []page.RevisionNumber{previousRevision, lastFull}
}

// CombineForRead folds the (at most two) fragments newest-first,
// first-writer-wins. Dirty is set iff two fragments were supplied.
func (DifferentialStrategy[K, V]) CombineForRead(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	if len(fragments) == 0 || len(fragments) > 2 {
		return nil, ErrInvariantViolation
	}
	return foldRead(fragments, fragments[0].PreviousReference(), trx), nil
}

// CombineForModify seeds both complete and modified with the latest
// fragment's entries. If a full-dump fragment was also fetched, its
// missing keys fill out complete always, and fill out modified only
// when this commit is itself landing on a full-dump revision boundary
// (current_revision mod revsToRestore == 0) -- in which case the next
// on-disk fragment becomes a full redundant dump in its own right.
func (DifferentialStrategy[K, V]) CombineForModify(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx, backRef *page.PageReference) (page.RecordPageContainer[K, V], error) {
	if len(fragments) == 0 || len(fragments) > 2 {
		return page.Empty[K, V](), ErrInvariantViolation
	}
	latest := fragments[0]
	complete := latest.NewInstance(backRef, trx)
	modified := latest.NewInstance(backRef, trx)
	copyAllInto(complete, latest)
	copyAllInto(modified, latest)

	if len(fragments) == 2 {
		fullDump := fragments[1]
		isFullDump := trx.Revision()%page.RevisionNumber(revsToRestore) == 0
		for _, k := range fullDump.RecordKeys() {
			if complete.Full() {
				break
			}
			if !complete.HasRecord(k) {
				v, _ := fullDump.GetRecord(k)
				_ = complete.PutRecord(k, v)
				if isFullDump && !modified.Full() && !modified.HasRecord(k) {
					_ = modified.PutRecord(k, v)
				}
			}
		}
		for _, k := range fullDump.ReferenceKeys() {
			if complete.Full() {
				break
			}
			if !complete.HasReference(k) {
				ref, _ := fullDump.GetReference(k)
				_ = complete.PutReference(k, ref)
				if isFullDump && !modified.Full() && !modified.HasReference(k) {
					_ = modified.PutReference(k, ref)
				}
			}
		}
	}
	complete.SetDirty(len(fragments) > 1)
	return page.RecordPageContainer[K, V]{Complete: complete, Modified: modified}, nil
}
