// ABOUTME: Shared test fixtures for the versioning strategy family

package versioning

import "github.com/bark/sirix/pkg/page"

type fakeTrx struct{ rev page.RevisionNumber }

func (f fakeTrx) Revision() page.RevisionNumber { return f.rev }

// newFragment builds a KeyValuePage seeded with the given record
// entries, in iteration order over keys (callers pass keys in the order
// they want installed).
func newFragment(pageKey page.PageKey, capacity int, keys []int, vals []string) *page.KeyValuePage[int, string] {
	p := page.New[int, string](pageKey, page.PageKindRecord, nil, fakeTrx{}, capacity)
	for i, k := range keys {
		_ = p.PutRecord(k, vals[i])
	}
	return p
}

func recordsOf(p *page.KeyValuePage[int, string]) map[int]string {
	out := make(map[int]string)
	for _, k := range p.RecordKeys() {
		v, _ := p.GetRecord(k)
		out[k] = v
	}
	return out
}

func mapsEqual(a, b map[int]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
