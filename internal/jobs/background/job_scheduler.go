package background

import (
	"context"
	"time"

	"llmsaas/internal/caching"
	"llmsaas/internal/telemetry"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	poolSampleInterval = 30 * time.Second
	eventTrimInterval  = 10 * time.Minute
)

// JobScheduler runs the process's periodic maintenance: sampling connection
// pool stats into gauges and trimming the telemetry event buffer.
type JobScheduler struct {
	scheduler gocron.Scheduler
	pool      *pgxpool.Pool
	poolStats *telemetry.PoolStats
	cache     caching.Cache
	logger    *zap.Logger
}

func NewJobScheduler(pool *pgxpool.Pool, poolStats *telemetry.PoolStats, cache caching.Cache, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		pool:      pool,
		poolStats: poolStats,
		cache:     cache,
		logger:    logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(poolSampleInterval),
		gocron.NewTask(js.samplePoolStats),
		gocron.WithName("db-pool-stats"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	if js.cache != nil {
		_, err = js.scheduler.NewJob(
			gocron.DurationJob(eventTrimInterval),
			gocron.NewTask(js.trimTelemetryEvents),
			gocron.WithName("telemetry-event-trim"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) samplePoolStats() {
	stat := js.pool.Stat()
	js.poolStats.AcquiredConns.Set(float64(stat.AcquiredConns()))
	js.poolStats.IdleConns.Set(float64(stat.IdleConns()))
	js.poolStats.TotalConns.Set(float64(stat.TotalConns()))
	js.poolStats.MaxConns.Set(float64(stat.MaxConns()))
}

func (js *JobScheduler) trimTelemetryEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := js.cache.LTrim(ctx, telemetry.EventsKey, -telemetry.EventsMaxLen, -1); err != nil {
		js.logger.Warn("telemetry event trim failed", zap.Error(err))
	}
}
