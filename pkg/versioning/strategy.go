// ABOUTME: Strategy is the common contract the four versioning policies implement
// ABOUTME: fetch_plan / combine_for_read / combine_for_modify, per spec section 4.1

package versioning

import (
	"github.com/bark/sirix/pkg/page"
)

// Kind identifies one of the four versioning policies. The family is a
// closed, tagged variant: a new member is a language change, not a
// runtime plug-in.
type Kind uint8

const (
	Full Kind = iota
	Differential
	Incremental
	SlidingSnapshot
)

func (k Kind) String() string {
	switch k {
	case Full:
		return "full"
	case Differential:
		return "differential"
	case Incremental:
		return "incremental"
	case SlidingSnapshot:
		return "sliding_snapshot"
	default:
		return "unknown"
	}
}

// Strategy is implemented by all four versioning policies for a given
// key/value pair. Every operation is pure with respect to its inputs:
// fragments are treated as read-only, fresh pages are always
// constructed for output.
type Strategy[K comparable, V any] interface {
	Kind() Kind

	// FetchPlan returns, newest-first, the revision roots whose
	// fragments the caller must load to reconstruct a page.
	FetchPlan(previousRevision page.RevisionNumber, revsToRestore int) []page.RevisionNumber

	// CombineForRead folds fragments (ordered per FetchPlan) into a
	// single complete page suitable for reading.
	CombineForRead(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error)

	// CombineForModify produces the (complete, modified) pair for a
	// page being written in the current transaction. fragments[0] is
	// the current transaction's own working fragment for this
	// revision; fragments[1:] are the prior on-disk fragments that
	// FetchPlan named for the previous revision.
	CombineForModify(fragments []*page.KeyValuePage[K, V], revsToRestore int, trx page.PageReadTrx, backRef *page.PageReference) (page.RecordPageContainer[K, V], error)
}

// New returns the Strategy implementation for kind.
func New[K comparable, V any](kind Kind) Strategy[K, V] {
	switch kind {
	case Full:
		return FullStrategy[K, V]{}
	case Differential:
		return DifferentialStrategy[K, V]{}
	case Incremental:
		return IncrementalStrategy[K, V]{}
	case SlidingSnapshot:
		return SlidingSnapshotStrategy[K, V]{}
	default:
		panic("versioning: unknown strategy kind")
	}
}
