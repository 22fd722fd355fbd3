// Package main implements the VoltForge API server: circuit validation over
// HTTP, similarity lookups against the design library, and export job
// submission to the worker queue.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/library"
	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/engine/pipeline"
	"github.com/voltforge/voltforge/pkg/metrics"
	"github.com/voltforge/voltforge/pkg/mid"
	"github.com/voltforge/voltforge/pkg/natsutil"
	"github.com/voltforge/voltforge/pkg/resilience"
)

// ExportSubject is the NATS subject the worker consumes validated models from.
const ExportSubject = "voltforge.models.export"

// maxBodyBytes caps request bodies; generator output never comes close.
const maxBodyBytes = 8 << 20

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	NATSURL    string
	QdrantURL  string
	Collection string
	CORSOrigin string
	RateLimit  float64
	RateBurst  int
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		NATSURL:    envOr("NATS_URL", nats.DefaultURL),
		QdrantURL:  envOr("QDRANT_URL", "localhost:6334"),
		Collection: envOr("QDRANT_COLLECTION", "voltforge"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		RateLimit:  envFloat("RATE_LIMIT", 50),
		RateBurst:  envInt("RATE_BURST", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("voltforge-api"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	lib, err := library.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer lib.Close()

	if err := lib.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("qdrant collection: %w", err)
	}

	reg := metrics.New()
	runner := pipeline.New(catalog.Default(), logger)
	limiter := resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RateLimit, Burst: cfg.RateBurst})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/validate", handleValidate(runner, reg))
	mux.HandleFunc("POST /api/models", handleSubmit(runner, nc, reg, logger))
	mux.HandleFunc("POST /api/similar", handleSimilar(runner, lib, reg, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("voltforge-api"),
		rateLimit(limiter, reg),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// rateLimit rejects requests with 429 once the token bucket is exhausted.
func rateLimit(l *resilience.Limiter, reg *metrics.Registry) mid.Middleware {
	limited := reg.Counter("http_rate_limited_total", "Requests rejected by the rate limiter")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				limited.Inc()
				http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// DiagnosticJSON is the wire form of one diagnostic.
type DiagnosticJSON struct {
	Severity string   `json:"severity"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Subjects []string `json:"subjects,omitempty"`
}

func diagJSON(list diag.List) []DiagnosticJSON {
	out := make([]DiagnosticJSON, 0, len(list))
	for _, d := range list {
		out = append(out, DiagnosticJSON{
			Severity: string(d.Severity),
			Kind:     string(d.Kind),
			Message:  d.Message,
			Subjects: d.Subjects,
		})
	}
	return out
}

func runPipeline(runner *pipeline.Runner, reg *metrics.Registry, w http.ResponseWriter, r *http.Request) (pipeline.Outcome, bool) {
	runs := reg.Counter("pipeline_runs_total", "Pipeline executions")
	dur := reg.Histogram("pipeline_duration_seconds", "Pipeline wall time", nil)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return pipeline.Outcome{}, false
	}

	start := time.Now()
	out, err := runner.RunBytes(r.Context(), raw)
	dur.Since(start)
	runs.Inc()
	if err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) || errors.Is(err, io.ErrUnexpectedEOF) {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return pipeline.Outcome{}, false
		}
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnprocessableEntity)
		return pipeline.Outcome{}, false
	}
	return out, true
}

// ValidateResponse is the JSON response for POST /api/validate.
type ValidateResponse struct {
	Valid       bool             `json:"valid"`
	Model       *normalize.Model `json:"model,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

func handleValidate(runner *pipeline.Runner, reg *metrics.Registry) http.HandlerFunc {
	invalid := reg.Counter("models_invalid_total", "Models rejected with errors")
	return func(w http.ResponseWriter, r *http.Request) {
		out, ok := runPipeline(runner, reg, w, r)
		if !ok {
			return
		}
		if !out.Valid() {
			invalid.Inc()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ValidateResponse{
			Valid:       out.Valid(),
			Model:       out.Model,
			Diagnostics: diagJSON(out.Diags),
		})
	}
}

// SubmitResponse is the JSON response for POST /api/models.
type SubmitResponse struct {
	Valid       bool             `json:"valid"`
	Queued      bool             `json:"queued"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// handleSubmit validates a document and, when clean, queues the canonical
// model for graph export and library indexing.
func handleSubmit(runner *pipeline.Runner, nc *nats.Conn, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	queued := reg.Counter("models_queued_total", "Models queued for export")
	return func(w http.ResponseWriter, r *http.Request) {
		out, ok := runPipeline(runner, reg, w, r)
		if !ok {
			return
		}

		resp := SubmitResponse{Valid: out.Valid(), Diagnostics: diagJSON(out.Diags)}
		status := http.StatusUnprocessableEntity
		if out.Valid() {
			if err := natsutil.Publish(r.Context(), nc, ExportSubject, out.Model); err != nil {
				logger.Error("export publish failed", "model", out.Model.Name, "err", err)
				http.Error(w, `{"error":"queue unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			queued.Inc()
			resp.Queued = true
			status = http.StatusAccepted
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// SimilarResponse is the JSON response for POST /api/similar.
type SimilarResponse struct {
	Matches []library.Match `json:"matches"`
}

// handleSimilar validates a document and searches the design library for
// structurally similar models.
func handleSimilar(runner *pipeline.Runner, lib *library.Library, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))

		out, ok := runPipeline(runner, reg, w, r)
		if !ok {
			return
		}
		if !out.Valid() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ValidateResponse{Diagnostics: diagJSON(out.Diags)})
			return
		}

		matches, err := lib.Similar(r.Context(), out.Model, topK)
		if err != nil {
			logger.Error("similarity search failed", "model", out.Model.Name, "err", err)
			http.Error(w, `{"error":"search unavailable"}`, http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SimilarResponse{Matches: matches})
	}
}
