// ABOUTME: PersistenceCache is the unbounded second tier: every page ever
// ABOUTME: spilled from the LRU tier, keyed by (revision, log_type, page_key)
// ABOUTME: and durable across restarts via pkg/storage.PageStore and a pkg/wal
// ABOUTME: write-ahead log on the write path

package cache

import (
	"sync"

	"github.com/bark/sirix/pkg/page"
	"github.com/bark/sirix/pkg/storage"
	"github.com/bark/sirix/pkg/wal"
)

// LogType discriminates independent page families sharing one
// persistent store, e.g. "node records" vs "name index", so their
// composite keys never collide.
type LogType uint32

// PersistenceCache is the concrete, disk-backed second-tier cache the
// spec's second tier describes. It is safe for concurrent use.
type PersistenceCache[K comparable, V any] struct {
	mu         sync.Mutex
	store      *storage.PageStore
	log        *wal.WAL
	checkpoint *wal.Checkpointer
	codec      Codec[K, V]
	logTyp     LogType
	txnID      uint64
	closed     bool
}

// Open opens (creating if absent) the on-disk store at dbPath and the
// write-ahead log at walPath, replaying any committed-but-unflushed
// entries from the log into the store before returning. A background
// checkpointer bounds WAL growth: every Put is already fsynced against
// the store before it returns, so the checkpoint's flush step has
// nothing left to do beyond marking the boundary and removing all but
// the newest three log segments.
func Open[K comparable, V any](dbPath, walPath string, logTyp LogType, codec Codec[K, V]) (*PersistenceCache[K, V], error) {
	store := &storage.PageStore{Path: dbPath}
	if err := store.Open(); err != nil {
		return nil, err
	}

	log := &wal.WAL{Path: walPath}
	if err := log.Open(); err != nil {
		store.Close()
		return nil, err
	}

	pc := &PersistenceCache[K, V]{store: store, log: log, codec: codec, logTyp: logTyp}
	if err := pc.recover(); err != nil {
		log.Close()
		store.Close()
		return nil, err
	}

	pc.checkpoint = wal.NewCheckpointer(log, func() error { return nil })
	pc.checkpoint.Start()
	return pc, nil
}

// recover replays committed WAL entries into the store. The WAL and the
// store's own mmap'd B+Tree are independently durable; after a crash
// the store may be missing writes the log already committed.
func (pc *PersistenceCache[K, V]) recover() error {
	recovery := wal.NewRecovery(pc.log)
	return recovery.Recover(func(op wal.OpType, key, value []byte) error {
		switch op {
		case wal.OpInsert:
			return pc.store.Set(key, value)
		case wal.OpDelete:
			_, err := pc.store.Del(key)
			return err
		}
		return nil
	})
}

func (pc *PersistenceCache[K, V]) key(revision page.RevisionNumber, pageKey page.PageKey) []byte {
	return storage.EncodeRevisionKey(uint32(pc.logTyp), revision, pageKey)
}

// Get loads the (complete, modified) container for (revision, pageKey),
// or ErrNotFound.
func (pc *PersistenceCache[K, V]) Get(revision page.RevisionNumber, pageKey page.PageKey, trx page.PageReadTrx) (page.RecordPageContainer[K, V], error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return page.Empty[K, V](), ErrClosed
	}
	data, ok := pc.store.Get(pc.key(revision, pageKey))
	if !ok {
		return page.Empty[K, V](), ErrNotFound
	}
	return pc.codec.Decode(data, trx)
}

// Put durably stores container under (revision, pageKey) -- both the
// complete page and the delta combine_for_modify computed for the next
// revision, per the spec's "serialized RecordPageContainer" second-tier
// value. The entry is write-ahead logged and fsynced before the
// in-memory B+Tree update is committed to the store, so a crash between
// the two leaves the log as the source of truth for the next Open's
// recovery pass.
func (pc *PersistenceCache[K, V]) Put(revision page.RevisionNumber, pageKey page.PageKey, container page.RecordPageContainer[K, V]) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return ErrClosed
	}

	data, err := pc.codec.Encode(container)
	if err != nil {
		return err
	}
	k := pc.key(revision, pageKey)

	pc.txnID++
	lsn := pc.log.NextLSN()
	if err := pc.log.Write(wal.Entry{LSN: lsn, TxnID: pc.txnID, OpType: wal.OpInsert, Key: k, Value: data}); err != nil {
		return err
	}
	commitLSN := pc.log.NextLSN()
	if err := pc.log.Write(wal.Entry{LSN: commitLSN, TxnID: pc.txnID, OpType: wal.OpCommit}); err != nil {
		return err
	}
	if err := pc.log.Fsync(); err != nil {
		return err
	}

	return pc.store.Set(k, data)
}

// Remove deletes the entry for (revision, pageKey), logging the delete
// the same way Put logs an insert.
func (pc *PersistenceCache[K, V]) Remove(revision page.RevisionNumber, pageKey page.PageKey) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return ErrClosed
	}
	k := pc.key(revision, pageKey)

	pc.txnID++
	lsn := pc.log.NextLSN()
	if err := pc.log.Write(wal.Entry{LSN: lsn, TxnID: pc.txnID, OpType: wal.OpDelete, Key: k}); err != nil {
		return err
	}
	commitLSN := pc.log.NextLSN()
	if err := pc.log.Write(wal.Entry{LSN: commitLSN, TxnID: pc.txnID, OpType: wal.OpCommit}); err != nil {
		return err
	}
	if err := pc.log.Fsync(); err != nil {
		return err
	}

	_, err := pc.store.Del(k)
	return err
}

// Close stops the background checkpointer, then flushes and closes both
// the write-ahead log and the store.
func (pc *PersistenceCache[K, V]) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return nil
	}
	pc.closed = true

	pc.checkpoint.Stop()
	logErr := pc.log.Close()
	storeErr := pc.store.Close()
	if logErr != nil {
		return logErr
	}
	return storeErr
}
