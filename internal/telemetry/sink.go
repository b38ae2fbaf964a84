package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"llmsaas/internal/caching"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Event is the metadata recorded for one completed inference, streaming or
// not. Raw prompt/response text is kept out of the metrics; only the redis
// event record carries lengths and identifiers.
type Event struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	UserID        uuid.UUID `json:"user_id"`
	Model         string    `json:"model"`
	PromptChars   int       `json:"prompt_chars"`
	ResponseChars int       `json:"response_chars"`
	LatencyMS     float64   `json:"latency_ms"`
	Mock          bool      `json:"mock"`
	Streamed      bool      `json:"streamed"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Sink records inference metadata. Implementations must never fail the
// caller: any internal error is logged and swallowed.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

const (
	// EventsKey is the redis list holding the most recent inference events.
	EventsKey = "llmsaas:inference:events"

	// EventsMaxLen caps the redis list; the background trimmer enforces it.
	EventsMaxLen = 10000

	redisTimeout = 2 * time.Second
)

// InferenceSink writes prometheus metrics synchronously and pushes a JSON
// event record to redis off the request path.
type InferenceSink struct {
	cache  caching.Cache
	logger *zap.Logger

	calls         *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	promptChars   *prometheus.HistogramVec
	responseChars *prometheus.HistogramVec
}

// NewInferenceSink builds the sink and registers its collectors. cache may
// be nil, in which case only metrics are recorded.
func NewInferenceSink(reg prometheus.Registerer, cache caching.Cache, logger *zap.Logger) *InferenceSink {
	s := &InferenceSink{
		cache:  cache,
		logger: logger,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_inference_total",
			Help: "Completed LLM inference calls.",
		}, []string{"tenant", "mode"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_inference_latency_seconds",
			Help:    "End-to-end LLM inference latency.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"tenant", "mode"}),
		promptChars: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_inference_prompt_chars",
			Help:    "Prompt length in characters.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		}, []string{"tenant"}),
		responseChars: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_inference_response_chars",
			Help:    "Response length in characters.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		}, []string{"tenant"}),
	}
	reg.MustRegister(s.calls, s.latency, s.promptChars, s.responseChars)
	return s
}

// Record is best-effort and non-blocking: metrics update in place, the redis
// write happens in its own goroutine with its own deadline. Failures are
// logged at Warn and never reach the caller.
func (s *InferenceSink) Record(_ context.Context, ev Event) {
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now().UTC()
	}

	tenant := ev.TenantID.String()
	mode := "live"
	if ev.Mock {
		mode = "mock"
	}
	s.calls.WithLabelValues(tenant, mode).Inc()
	s.latency.WithLabelValues(tenant, mode).Observe(ev.LatencyMS / 1000)
	s.promptChars.WithLabelValues(tenant).Observe(float64(ev.PromptChars))
	s.responseChars.WithLabelValues(tenant).Observe(float64(ev.ResponseChars))

	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("telemetry event marshal failed", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := s.cache.RPush(ctx, EventsKey, payload); err != nil {
			s.logger.Warn("telemetry event push failed", zap.Error(err))
		}
	}()
}

// PoolStats holds gauges sampled from the pgx pool by the background job.
type PoolStats struct {
	AcquiredConns prometheus.Gauge
	IdleConns     prometheus.Gauge
	TotalConns    prometheus.Gauge
	MaxConns      prometheus.Gauge
}

func NewPoolStats(reg prometheus.Registerer) *PoolStats {
	p := &PoolStats{
		AcquiredConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_acquired_conns",
			Help: "Connections currently checked out of the pool.",
		}),
		IdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_idle_conns",
			Help: "Idle connections in the pool.",
		}),
		TotalConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_total_conns",
			Help: "Total connections held by the pool.",
		}),
		MaxConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_max_conns",
			Help: "Configured pool ceiling.",
		}),
	}
	reg.MustRegister(p.AcquiredConns, p.IdleConns, p.TotalConns, p.MaxConns)
	return p
}
