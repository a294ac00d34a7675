// sirixd hosts the versioned page reconstruction engine and exposes its
// Prometheus metrics over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bark/sirix/internal/engine"
	"github.com/bark/sirix/internal/logger"
	"github.com/bark/sirix/internal/metrics"
	"github.com/bark/sirix/pkg/cache"
	"github.com/bark/sirix/pkg/page"
	"github.com/bark/sirix/pkg/versioning"
)

var (
	metricsAddr   = flag.String("metrics-addr", ":9090", "Address to serve Prometheus metrics on")
	dbPath        = flag.String("db", "sirix.db", "Page store file path")
	walPath       = flag.String("wal", "sirix.wal", "Write-ahead log file path")
	strategyFlag  = flag.String("strategy", "sliding_snapshot", "Versioning strategy: full, differential, incremental, sliding_snapshot")
	revsToRestore = flag.Int("revs-to-restore", 4, "Window width (w) for window-based strategies")
	nodeCount     = flag.Int("node-count", 512, "Page capacity (NDP_NODE_COUNT)")
	cacheCapacity = flag.Int("cache-capacity", 1024, "First-tier (LRU) cache capacity, in pages")
)

func parseStrategy(s string) (versioning.Kind, error) {
	switch s {
	case "full":
		return versioning.Full, nil
	case "differential":
		return versioning.Differential, nil
	case "incremental":
		return versioning.Incremental, nil
	case "sliding_snapshot":
		return versioning.SlidingSnapshot, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}

// fixedRevisionTrx is the minimal page.PageReadTrx this demo binary
// needs: a single fixed snapshot revision.
type fixedRevisionTrx struct{ revision page.RevisionNumber }

func (t fixedRevisionTrx) Revision() page.RevisionNumber { return t.revision }

// diskRevisionIndex resolves historical fragments directly out of the
// persistent cache tier. A miss is not an error here: a revision that
// was never written for this page simply contributes nothing to the fold.
type diskRevisionIndex struct {
	secondary *cache.PersistenceCache[uint64, []byte]
}

func (idx *diskRevisionIndex) Fragment(pageKey page.PageKey, revision page.RevisionNumber) (*page.KeyValuePage[uint64, []byte], error) {
	container, err := idx.secondary.Get(revision, pageKey, fixedRevisionTrx{revision: revision})
	if err == cache.ErrNotFound {
		return page.New[uint64, []byte](pageKey, page.PageKindRecord, nil, fixedRevisionTrx{revision: revision}, *nodeCount), nil
	}
	if err != nil {
		return nil, err
	}
	return container.Complete, nil
}

func main() {
	flag.Parse()

	log := logger.NewLogger(logger.Config{Level: "info", Pretty: true})
	m := metrics.NewMetrics()

	strategy, err := parseStrategy(*strategyFlag)
	if err != nil {
		log.Fatal("invalid strategy").Err(err).Send()
	}

	indexStore, err := cache.Open[uint64, []byte](*dbPath, *walPath, cache.LogType(1), cache.GobCodec[uint64, []byte]{})
	if err != nil {
		log.Fatal("failed to open revision index store").Err(err).Send()
	}
	index := &diskRevisionIndex{secondary: indexStore}

	trx := fixedRevisionTrx{revision: 0}
	eng, err := engine.New[uint64, []byte](engine.Config[uint64, []byte]{
		Strategy:      strategy,
		RevsToRestore: *revsToRestore,
		NodeCount:     *nodeCount,
		CacheCapacity: *cacheCapacity,
		DBPath:        *dbPath,
		WALPath:       *walPath,
		LogType:       cache.LogType(2),
		Codec:         cache.GobCodec[uint64, []byte]{},
		Index:         index,
	}, trx, log, m)
	if err != nil {
		log.Fatal("failed to start engine").Err(err).Send()
	}
	defer eng.Close()
	defer indexStore.Close()

	log.LogEngineStart(strategy.String(), *revsToRestore, *nodeCount)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: *metricsAddr, Handler: mux}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogEngineShutdown()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.LogEngineReady()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("metrics server failed").Err(err).Send()
	}
}
