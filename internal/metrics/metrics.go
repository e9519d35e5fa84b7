// Package metrics exposes ingestion counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bevents/internal/domain"
)

const namespace = "bevents"

// Sync records the outcome of every sync run.
type Sync struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	events      *prometheus.CounterVec
	categories  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

func NewSync() *Sync {
	m := &Sync{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by source and result",
		}, []string{"source", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_events_total",
			Help:      "Scraped events by source and outcome",
		}, []string{"source", "outcome"}),
		categories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_new_events_by_category_total",
			Help:      "Newly stored events by category",
		}, []string{"category"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time spent in a sync run",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"source"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.runs,
		m.events,
		m.categories,
		m.duration,
		m.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Sync) ObserveSync(stats *domain.SyncStats) {
	m.runs.WithLabelValues(stats.SourceID, "success").Inc()

	m.events.WithLabelValues(stats.SourceID, "fetched").Add(float64(stats.Fetched))
	m.events.WithLabelValues(stats.SourceID, "new").Add(float64(stats.New))
	m.events.WithLabelValues(stats.SourceID, "skipped").Add(float64(stats.Skipped))
	m.events.WithLabelValues(stats.SourceID, "error").Add(float64(stats.Errors))
	m.events.WithLabelValues(stats.SourceID, "published").Add(float64(stats.Published))

	for category, n := range stats.Categories {
		m.categories.WithLabelValues(string(category)).Add(float64(n))
	}

	m.duration.WithLabelValues(stats.SourceID).Observe(stats.Duration.Seconds())
	m.lastSuccess.WithLabelValues(stats.SourceID).SetToCurrentTime()
}

func (m *Sync) SyncFailed(sourceID string) {
	m.runs.WithLabelValues(sourceID, "failure").Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Sync) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics and /healthz on addr until ctx is cancelled.
func (m *Sync) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
