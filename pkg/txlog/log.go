// ABOUTME: SynchronizedTransactionLog is the thread-safe facade over the
// ABOUTME: two cache tiers for one transaction's page traffic: shared reads,
// ABOUTME: exclusive writes, over a sync.RWMutex

package txlog

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bark/sirix/pkg/cache"
	"github.com/bark/sirix/pkg/page"
)

// SynchronizedTransactionLog owns a bounded LRU tier and an unbounded
// persistent tier for a single transaction's snapshot revision. Reads
// (Get, GetAll) take a shared lock; writes (Put, PutAll, Remove, Clear,
// DrainToSecondary, Close) take the exclusive lock.
type SynchronizedTransactionLog[K comparable, V any] struct {
	mu        sync.RWMutex
	revision  page.RevisionNumber
	trx       page.PageReadTrx
	lru       *cache.LRUCache[K, V]
	secondary *cache.PersistenceCache[K, V]
	logger    zerolog.Logger
	closed    bool
}

// Config configures a SynchronizedTransactionLog.
type Config[K comparable, V any] struct {
	Trx          page.PageReadTrx
	LRUCapacity  int
	DBPath       string
	WALPath      string
	LogType      cache.LogType
	Codec        cache.Codec[K, V]
	Logger       zerolog.Logger
}

// New opens the persistent tier and wraps it with a bounded LRU tier
// whose eviction callback spills to it under the current revision.
func New[K comparable, V any](cfg Config[K, V]) (*SynchronizedTransactionLog[K, V], error) {
	secondary, err := cache.Open(cfg.DBPath, cfg.WALPath, cfg.LogType, cfg.Codec)
	if err != nil {
		return nil, err
	}

	revision := cfg.Trx.Revision()
	log := &SynchronizedTransactionLog[K, V]{
		revision:  revision,
		trx:       cfg.Trx,
		secondary: secondary,
		logger:    cfg.Logger,
	}
	log.lru = cache.NewLRUCache[K, V](cfg.LRUCapacity, func(pageKey page.PageKey, container page.RecordPageContainer[K, V]) {
		if err := secondary.Put(revision, pageKey, container); err != nil {
			log.logger.Error().Err(err).Uint64("page_key", uint64(pageKey)).Msg("spill to persistent tier failed")
			return
		}
		log.logger.Debug().Uint64("page_key", uint64(pageKey)).Msg("evicted from first tier, spilled to second tier")
	})
	return log, nil
}

// Get returns the container for pageKey, checking the LRU tier first
// and falling back to the persistent tier, promoting a persistent hit
// back into the LRU tier. Returns the EMPTY sentinel, not an error, on
// a miss in both tiers.
func (l *SynchronizedTransactionLog[K, V]) Get(pageKey page.PageKey) (page.RecordPageContainer[K, V], error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return page.Empty[K, V](), ErrClosed
	}
	if c, ok := l.lru.Get(pageKey); ok {
		return c, nil
	}

	container, err := l.secondary.Get(l.revision, pageKey, l.trx)
	if err == cache.ErrNotFound {
		return page.Empty[K, V](), nil
	}
	if err != nil {
		return page.Empty[K, V](), err
	}

	l.lru.Put(pageKey, container)
	return container, nil
}

// GetAll returns the container for each key in pageKeys that has one;
// keys with no entry in either tier are simply absent from the result.
func (l *SynchronizedTransactionLog[K, V]) GetAll(pageKeys []page.PageKey) (map[page.PageKey]page.RecordPageContainer[K, V], error) {
	out := make(map[page.PageKey]page.RecordPageContainer[K, V], len(pageKeys))
	for _, k := range pageKeys {
		c, err := l.Get(k)
		if err != nil {
			return nil, err
		}
		if !c.IsEmpty() {
			out[k] = c
		}
	}
	return out, nil
}

// Put installs container for pageKey in the LRU tier, evicting to the
// persistent tier if the LRU tier is now over capacity.
func (l *SynchronizedTransactionLog[K, V]) Put(pageKey page.PageKey, container page.RecordPageContainer[K, V]) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.lru.Put(pageKey, container)
	return nil
}

// PutAll installs every entry in entries.
func (l *SynchronizedTransactionLog[K, V]) PutAll(entries map[page.PageKey]page.RecordPageContainer[K, V]) error {
	for k, c := range entries {
		if err := l.Put(k, c); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes pageKey from both tiers.
func (l *SynchronizedTransactionLog[K, V]) Remove(pageKey page.PageKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.lru.Remove(pageKey)
	return l.secondary.Remove(l.revision, pageKey)
}

// Clear empties the LRU tier without touching the persistent tier.
func (l *SynchronizedTransactionLog[K, V]) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.lru.Clear()
	return nil
}

// DrainToSecondary copies every entry still held in the LRU tier into
// the persistent tier. It does not clear the LRU tier -- a page that
// was only ever written this transaction stays reachable from the fast
// tier after the copy. Called at the end of a transaction so no dirty
// page is left only in memory.
func (l *SynchronizedTransactionLog[K, V]) DrainToSecondary() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	for pageKey, container := range l.lru.AsMap() {
		if err := l.secondary.Put(l.revision, pageKey, container); err != nil {
			return err
		}
	}
	return nil
}

// Close drains no pages; call DrainToSecondary first if that is
// required. Close releases the persistent tier's file handles.
func (l *SynchronizedTransactionLog[K, V]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.lru.Clear()
	return l.secondary.Close()
}
