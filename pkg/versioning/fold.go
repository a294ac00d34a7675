// ABOUTME: Shared first-writer-wins fold helpers used by all four strategies

package versioning

import "github.com/bark/sirix/pkg/page"

// copyAllInto copies every record and reference entry of src into dst,
// in src's own insertion order. Used to seed complete/modified from the
// current transaction's own working fragment.
func copyAllInto[K comparable, V any](dst, src *page.KeyValuePage[K, V]) {
	for _, k := range src.RecordKeys() {
		v, _ := src.GetRecord(k)
		_ = dst.PutRecord(k, v)
	}
	for _, k := range src.ReferenceKeys() {
		ref, _ := src.GetReference(k)
		_ = dst.PutReference(k, ref)
	}
}

// foldNotPresent installs every entry of src into dst that dst does not
// already hold, stopping each keyspace as soon as dst reaches capacity.
// This is the first-writer-wins rule: a key already present in dst (a
// newer fragment already contributed it) is never overwritten.
func foldNotPresent[K comparable, V any](dst, src *page.KeyValuePage[K, V]) {
	for _, k := range src.RecordKeys() {
		if dst.Full() {
			break
		}
		if dst.HasRecord(k) {
			continue
		}
		v, _ := src.GetRecord(k)
		_ = dst.PutRecord(k, v)
	}
	for _, k := range src.ReferenceKeys() {
		if dst.Full() {
			break
		}
		if dst.HasReference(k) {
			continue
		}
		ref, _ := src.GetReference(k)
		_ = dst.PutReference(k, ref)
	}
}

// foldNotPresentInto installs entries of src that are absent from both
// guard and dst into dst, stopping at dst's capacity. Used for the
// modified side of the sliding-snapshot rescue rule, where presence is
// also judged against a different page (reconstructed) than the one
// being written to.
func foldNotPresentInto[K comparable, V any](dst, guard, src *page.KeyValuePage[K, V]) {
	for _, k := range src.RecordKeys() {
		if dst.Full() {
			break
		}
		if guard.HasRecord(k) || dst.HasRecord(k) {
			continue
		}
		v, _ := src.GetRecord(k)
		_ = dst.PutRecord(k, v)
	}
	for _, k := range src.ReferenceKeys() {
		if dst.Full() {
			break
		}
		if guard.HasReference(k) || dst.HasReference(k) {
			continue
		}
		ref, _ := src.GetReference(k)
		_ = dst.PutReference(k, ref)
	}
}

// foldRead folds fragments (newest-first) into a single fresh page,
// first-writer-wins, stopping once the output reaches capacity. dirty is
// set iff more than one fragment contributed.
func foldRead[K comparable, V any](fragments []*page.KeyValuePage[K, V], backRef *page.PageReference, trx page.PageReadTrx) *page.KeyValuePage[K, V] {
	out := fragments[0].NewInstance(backRef, trx)
	for _, frag := range fragments {
		if out.Full() {
			break
		}
		foldNotPresent(out, frag)
	}
	out.SetDirty(len(fragments) > 1)
	return out
}
