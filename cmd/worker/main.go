// Package main implements the VoltForge export worker. It consumes validated
// canonical models from NATS, writes them to the Neo4j topology graph and
// indexes their fingerprints in the design library. Failed exports are
// retried with backoff; exhausted jobs go to a dead-letter subject.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/voltforge/voltforge/engine/export"
	"github.com/voltforge/voltforge/engine/library"
	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/pkg/fn"
	"github.com/voltforge/voltforge/pkg/metrics"
	"github.com/voltforge/voltforge/pkg/natsutil"
	"github.com/voltforge/voltforge/pkg/resilience"
)

const (
	exportSubject = "voltforge.models.export"
	deadSubject   = "voltforge.models.dead"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL     string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	QdrantURL   string
	Collection  string
	MetricsPort int
	ExportRate  float64
}

func loadConfig() Config {
	return Config{
		NATSURL:     envOr("NATS_URL", nats.DefaultURL),
		Neo4jURL:    envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		Collection:  envOr("QDRANT_COLLECTION", "voltforge"),
		MetricsPort: 9091,
		ExportRate:  10,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("voltforge-worker"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	lib, err := library.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer lib.Close()

	if err := lib.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("qdrant collection: %w", err)
	}

	reg := metrics.New()
	reg.ServeAsync(cfg.MetricsPort)

	w := &worker{
		nc:      nc,
		store:   export.New(driver),
		lib:     lib,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		pace:    rate.NewLimiter(rate.Limit(cfg.ExportRate), 1),
		log:     logger,

		exported: reg.Counter("models_exported_total", "Models written to the graph"),
		dead:     reg.Counter("models_dead_lettered_total", "Export jobs sent to the dead letter subject"),
		dur:      reg.Histogram("export_duration_seconds", "Export wall time", nil),
	}

	sub, err := natsutil.Subscribe(nc, exportSubject, w.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", exportSubject, err)
	}
	defer sub.Unsubscribe()

	logger.Info("worker started", "subject", exportSubject)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

type worker struct {
	nc      *nats.Conn
	store   *export.GraphStore
	lib     *library.Library
	breaker *resilience.Breaker
	pace    *rate.Limiter
	log     *slog.Logger

	exported *metrics.Counter
	dead     *metrics.Counter
	dur      *metrics.Histogram
}

func (w *worker) handle(ctx context.Context, m *normalize.Model) {
	if m == nil || m.Name == "" {
		return
	}
	if err := w.pace.Wait(ctx); err != nil {
		return
	}

	start := time.Now()
	res := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[struct{}] {
		err := w.breaker.Call(ctx, func(ctx context.Context) error {
			return w.store.SaveModel(ctx, m)
		})
		if err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	w.dur.Since(start)

	if _, err := res.Unwrap(); err != nil {
		w.log.Error("export failed, dead-lettering", "model", m.Name, "err", err)
		w.dead.Inc()
		if perr := natsutil.Publish(ctx, w.nc, deadSubject, m); perr != nil {
			w.log.Error("dead letter publish failed", "model", m.Name, "err", perr)
		}
		return
	}

	if err := w.lib.Add(ctx, m); err != nil {
		// Graph write succeeded; a missing fingerprint only degrades search.
		w.log.Warn("library index failed", "model", m.Name, "err", err)
	}

	w.exported.Inc()
	w.log.Info("model exported",
		"model", m.Name,
		"components", len(m.Components),
		"connections", len(m.Connections))
}
