// ABOUTME: FULL strategy: every revision holds a complete, standalone page
// ABOUTME: fetch_plan always names exactly the requested revision

package versioning

import "github.com/bark/sirix/pkg/page"

type FullStrategy[K comparable, V any] struct{}

func (FullStrategy[K, V]) Kind() Kind { return Full }

func (FullStrategy[K, V]) FetchPlan(previousRevision page.RevisionNumber, revsToRestore int) []page.RevisionNumber {
	return []page.RevisionNumber{previousRevision}
}

// CombineForRead asserts a single fragment and returns it unchanged: the
// identity transform.
func (FullStrategy[K, V]) CombineForRead(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	if len(fragments) != 1 {
		return nil, ErrInvariantViolation
	}
	return fragments[0], nil
}

// CombineForModify seeds both complete and modified with every entry of
// the single fragment: the next on-disk fragment is a full redundant
// copy, so nothing is ever reconstructed from older revisions.
func (FullStrategy[K, V]) CombineForModify(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx, backRef *page.PageReference) (page.RecordPageContainer[K, V], error) {
	if len(fragments) != 1 {
		return page.Empty[K, V](), ErrInvariantViolation
	}
	src := fragments[0]
	complete := src.NewInstance(backRef, trx)
	modified := src.NewInstance(backRef, trx)
	copyAllInto(complete, src)
	copyAllInto(modified, src)
	return page.RecordPageContainer[K, V]{Complete: complete, Modified: modified}, nil
}
