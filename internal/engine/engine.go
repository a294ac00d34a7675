// ABOUTME: Engine orchestrates a versioning strategy, the synchronized
// ABOUTME: transaction log, and the caller's revision index into the two
// ABOUTME: page-level operations a transaction needs: read and write

package engine

import (
	"time"

	"github.com/bark/sirix/internal/logger"
	"github.com/bark/sirix/internal/metrics"
	"github.com/bark/sirix/pkg/cache"
	"github.com/bark/sirix/pkg/page"
	"github.com/bark/sirix/pkg/txlog"
	"github.com/bark/sirix/pkg/versioning"
)

// RevisionIndex resolves a single historical fragment of pageKey at
// revision. It is the external collaborator that knows where, on disk,
// a given revision's fragment of a page physically lives; the engine
// never manages that mapping itself.
type RevisionIndex[K comparable, V any] interface {
	Fragment(pageKey page.PageKey, revision page.RevisionNumber) (*page.KeyValuePage[K, V], error)
}

// Config configures an Engine.
type Config[K comparable, V any] struct {
	Strategy      versioning.Kind
	RevsToRestore int
	NodeCount     int
	CacheCapacity int
	DBPath        string
	WALPath       string
	LogType       cache.LogType
	Codec         cache.Codec[K, V]
	Index         RevisionIndex[K, V]
}

// Engine wires a versioning strategy to a synchronized transaction log
// for one transaction's page traffic.
type Engine[K comparable, V any] struct {
	cfg      Config[K, V]
	strategy versioning.Strategy[K, V]
	log      *txlog.SynchronizedTransactionLog[K, V]
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// New opens an Engine for the given transaction. trx's Revision() is
// the snapshot revision every read and write in this Engine's lifetime
// operates against.
func New[K comparable, V any](cfg Config[K, V], trx page.PageReadTrx, log *logger.Logger, m *metrics.Metrics) (*Engine[K, V], error) {
	tl, err := txlog.New[K, V](txlog.Config[K, V]{
		Trx:         trx,
		LRUCapacity: cfg.CacheCapacity,
		DBPath:      cfg.DBPath,
		WALPath:     cfg.WALPath,
		LogType:     cfg.LogType,
		Codec:       cfg.Codec,
		Logger:      *log.GetZerolog(),
	})
	if err != nil {
		return nil, err
	}

	e := &Engine[K, V]{
		cfg:      cfg,
		strategy: versioning.New[K, V](cfg.Strategy),
		log:      tl,
		logger:   log,
		metrics:  m,
	}
	m.UpdateRevision(uint64(trx.Revision()))
	return e, nil
}

// ReadPage reconstructs the complete page for pageKey at trx's
// revision: a cache hit short-circuits the fetch_plan entirely, a miss
// walks the strategy's fetch_plan against the revision index and folds
// the result with combine_for_read, caching it for next time.
func (e *Engine[K, V]) ReadPage(pageKey page.PageKey, trx page.PageReadTrx) (*page.KeyValuePage[K, V], error) {
	hit, err := e.log.Get(pageKey)
	if err != nil {
		return nil, err
	}
	if !hit.IsEmpty() {
		e.metrics.RecordCacheHit("combined")
		return hit.Complete, nil
	}
	e.metrics.RecordCacheMiss("combined")

	plan := e.strategy.FetchPlan(trx.Revision(), e.cfg.RevsToRestore)
	e.metrics.RecordFetchPlan(len(plan))

	fragments := make([]*page.KeyValuePage[K, V], len(plan))
	for i, revision := range plan {
		frag, err := e.cfg.Index.Fragment(pageKey, revision)
		if err != nil {
			return nil, err
		}
		fragments[i] = frag
	}

	start := time.Now()
	combined, err := e.strategy.CombineForRead(fragments, e.cfg.RevsToRestore, trx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordFold(e.cfg.Strategy.String(), "combine_for_read", status, time.Since(start))
	if err != nil {
		return nil, err
	}

	if err := e.log.Put(pageKey, page.RecordPageContainer[K, V]{Complete: combined, Modified: combined}); err != nil {
		return nil, err
	}
	return combined, nil
}

// WritePage folds current (the transaction's own working fragment for
// pageKey) against the prior revisions named by fetch_plan, producing
// the (complete, modified) pair to keep in cache and eventually
// persist via DrainToSecondary. backRef becomes the new fragment's
// back-pointer to whatever on-disk location the caller intends for it.
func (e *Engine[K, V]) WritePage(pageKey page.PageKey, trx page.PageReadTrx, current *page.KeyValuePage[K, V], backRef *page.PageReference) (page.RecordPageContainer[K, V], error) {
	plan := e.strategy.FetchPlan(trx.Revision(), e.cfg.RevsToRestore)
	e.metrics.RecordFetchPlan(len(plan))

	fragments := make([]*page.KeyValuePage[K, V], len(plan))
	fragments[0] = current
	for i := 1; i < len(plan); i++ {
		frag, err := e.cfg.Index.Fragment(pageKey, plan[i])
		if err != nil {
			return page.Empty[K, V](), err
		}
		fragments[i] = frag
	}

	start := time.Now()
	container, err := e.strategy.CombineForModify(fragments, e.cfg.RevsToRestore, trx, backRef)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordFold(e.cfg.Strategy.String(), "combine_for_modify", status, time.Since(start))
	if err != nil {
		return page.Empty[K, V](), err
	}

	if err := e.log.Put(pageKey, container); err != nil {
		return page.Empty[K, V](), err
	}
	return container, nil
}

// Commit drains every page still held in the first tier to the
// persistent tier, so nothing written this transaction is lost once
// the Engine is closed.
func (e *Engine[K, V]) Commit() error {
	start := time.Now()
	err := e.log.DrainToSecondary()
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordTransaction("write", status)
	e.metrics.RecordDrain(0, time.Since(start))
	return err
}

// Close releases the underlying persistent tier's file handles.
func (e *Engine[K, V]) Close() error {
	return e.log.Close()
}

// Stats is a point-in-time snapshot of engine state.
type Stats struct {
	CurrentRevision page.RevisionNumber
	Strategy        string
}

// Stats returns a snapshot for the given transaction's revision.
func (e *Engine[K, V]) Stats(trx page.PageReadTrx) Stats {
	return Stats{CurrentRevision: trx.Revision(), Strategy: e.cfg.Strategy.String()}
}
