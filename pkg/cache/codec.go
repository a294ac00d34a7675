// ABOUTME: Codec serializes a RecordPageContainer to bytes for the persistent
// ABOUTME: tier. KeyValuePage keeps its fields unexported, so a plain transfer
// ABOUTME: struct carries the public accessors across the gob boundary --
// ABOUTME: this stays on the standard library since no pack dependency
// ABOUTME: offers reflection-based encoding generic over an arbitrary V

package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bark/sirix/pkg/page"
)

// Codec converts a page container -- both the complete page and the
// delta meant for the next persisted revision -- to and from its
// on-disk byte representation.
type Codec[K comparable, V any] interface {
	Encode(c page.RecordPageContainer[K, V]) ([]byte, error)
	Decode(data []byte, trx page.PageReadTrx) (page.RecordPageContainer[K, V], error)
}

type refDTO struct {
	PageKey  page.PageKey
	Revision page.RevisionNumber
	Offset   int64
}

type pageDTO[K comparable, V any] struct {
	PageKey     page.PageKey
	PageKind    page.PageKind
	Capacity    int
	Dirty       bool
	HasPrevious bool
	Previous    refDTO
	RecordKeys  []K
	RecordVals  []V
	RefKeys     []K
	RefVals     []refDTO
}

// containerDTO carries both halves of a RecordPageContainer. Modified
// is frequently the same page as Complete (a fresh cache fill has
// nothing else to propagate), so it is only encoded when distinct.
type containerDTO[K comparable, V any] struct {
	Complete    pageDTO[K, V]
	HasModified bool
	Modified    pageDTO[K, V]
}

func toPageDTO[K comparable, V any](p *page.KeyValuePage[K, V]) pageDTO[K, V] {
	dto := pageDTO[K, V]{
		PageKey:  p.PageKey(),
		PageKind: p.PageKind(),
		Capacity: p.Capacity(),
		Dirty:    p.Dirty(),
	}
	if prev := p.PreviousReference(); prev != nil {
		dto.HasPrevious = true
		dto.Previous = refDTO{PageKey: prev.PageKey, Revision: prev.Revision, Offset: prev.Offset}
	}
	for _, k := range p.RecordKeys() {
		v, _ := p.GetRecord(k)
		dto.RecordKeys = append(dto.RecordKeys, k)
		dto.RecordVals = append(dto.RecordVals, v)
	}
	for _, k := range p.ReferenceKeys() {
		ref, _ := p.GetReference(k)
		dto.RefKeys = append(dto.RefKeys, k)
		dto.RefVals = append(dto.RefVals, refDTO{PageKey: ref.PageKey, Revision: ref.Revision, Offset: ref.Offset})
	}
	return dto
}

func fromPageDTO[K comparable, V any](dto pageDTO[K, V], trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	var previous *page.PageReference
	if dto.HasPrevious {
		previous = &page.PageReference{PageKey: dto.Previous.PageKey, Revision: dto.Previous.Revision, Offset: dto.Previous.Offset}
	}

	out := page.New[K, V](dto.PageKey, dto.PageKind, previous, trx, dto.Capacity)
	for i, k := range dto.RecordKeys {
		if err := out.PutRecord(k, dto.RecordVals[i]); err != nil {
			return nil, fmt.Errorf("cache: replay record %v: %w", k, err)
		}
	}
	for i, k := range dto.RefKeys {
		r := dto.RefVals[i]
		ref := page.PageReference{PageKey: r.PageKey, Revision: r.Revision, Offset: r.Offset}
		if err := out.PutReference(k, ref); err != nil {
			return nil, fmt.Errorf("cache: replay reference %v: %w", k, err)
		}
	}
	out.SetDirty(dto.Dirty)
	return out, nil
}

// GobCodec is the default Codec, built on encoding/gob.
type GobCodec[K comparable, V any] struct{}

func (GobCodec[K, V]) Encode(c page.RecordPageContainer[K, V]) ([]byte, error) {
	dto := containerDTO[K, V]{Complete: toPageDTO(c.Complete)}
	if c.Modified != c.Complete {
		dto.HasModified = true
		dto.Modified = toPageDTO(c.Modified)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dto); err != nil {
		return nil, fmt.Errorf("cache: encode container: %w", err)
	}
	return buf.Bytes(), nil
}

func (GobCodec[K, V]) Decode(data []byte, trx page.PageReadTrx) (page.RecordPageContainer[K, V], error) {
	var dto containerDTO[K, V]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dto); err != nil {
		return page.Empty[K, V](), fmt.Errorf("cache: decode container: %w", err)
	}

	complete, err := fromPageDTO(dto.Complete, trx)
	if err != nil {
		return page.Empty[K, V](), err
	}

	modified := complete
	if dto.HasModified {
		modified, err = fromPageDTO(dto.Modified, trx)
		if err != nil {
			return page.Empty[K, V](), err
		}
	}

	return page.RecordPageContainer[K, V]{Complete: complete, Modified: modified}, nil
}
