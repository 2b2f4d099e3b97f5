package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Refresher forces a provider fetch for a coordinate. Both *weather.Service
// and *airquality.Service satisfy it.
type Refresher interface {
	Refresh(ctx context.Context, lat, lon float64) error
}

// Provider names used in results and statistics.
const (
	ProviderAirQuality = "airquality"
	ProviderWeather    = "weather"
)

// RefreshJobConfig holds the dependencies of a RefreshJob. A nil service is
// never refreshed.
type RefreshJobConfig struct {
	Config            RefreshConfig
	Logger            zerolog.Logger
	AirQualityService Refresher
	WeatherService    Refresher
}

type namedRefresher struct {
	name string
	svc  Refresher
}

// RefreshJob re-fetches provider data for a fixed set of cities. It is safe
// to call Run concurrently with MetricsSnapshot.
type RefreshJob struct {
	cfg       RefreshConfig
	log       zerolog.Logger
	providers []namedRefresher

	mu    sync.Mutex
	stats RefreshStats
}

// RefreshStats accumulates over every Run of a job.
type RefreshStats struct {
	Runs          int64
	Succeeded     int64
	Failed        int64
	Skipped       int64
	ByProvider    map[string]int64
	LastRunAt     time.Time
	LastDuration  time.Duration
	TotalDuration time.Duration
}

// NewRefreshJob creates a job, filling unset config values from
// DefaultRefreshConfig.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	c := cfg.Config
	defaults := DefaultRefreshConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = defaults.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}

	j := &RefreshJob{
		cfg:   c,
		log:   cfg.Logger,
		stats: RefreshStats{ByProvider: make(map[string]int64)},
	}
	if c.RefreshAirQuality && cfg.AirQualityService != nil {
		j.providers = append(j.providers, namedRefresher{ProviderAirQuality, cfg.AirQualityService})
	}
	if c.RefreshWeather && cfg.WeatherService != nil {
		j.providers = append(j.providers, namedRefresher{ProviderWeather, cfg.WeatherService})
	}
	return j
}

// RefreshResult describes one Run.
type RefreshResult struct {
	StartTime   time.Time
	Duration    time.Duration
	TotalPoints int

	// Successful and Failed count targets; a target fails when any provider
	// fails for it. Skipped targets were not attempted because ctx ended.
	Successful int
	Failed     int
	Skipped    int
	Errors     []RefreshError
}

// RefreshError records one provider failure for one target.
type RefreshError struct {
	Provider string
	Target   string
	Point    Point
	Error    string
}

// Start runs the job immediately and then on every interval tick until ctx
// is cancelled.
func (j *RefreshJob) Start(ctx context.Context) {
	j.log.Info().
		Dur("interval", j.cfg.Interval).
		Int("targets", len(j.cfg.Targets)).
		Msg("refresh worker started")

	j.Run(ctx)

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("refresh worker stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

// Run refreshes every target once, at most Concurrency at a time. Provider
// failures are collected, never returned: one bad city must not stop the rest.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	result := &RefreshResult{
		StartTime:   time.Now(),
		TotalPoints: j.cfg.TotalPoints(),
	}

	var (
		mu         sync.Mutex
		byProvider = make(map[string]int64)
		g          errgroup.Group
	)
	g.SetLimit(j.cfg.Concurrency)

	for _, target := range j.cfg.Targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			errs, ok := j.refreshTarget(ctx, target)

			mu.Lock()
			defer mu.Unlock()
			for name, n := range ok {
				byProvider[name] += n
			}
			if len(errs) > 0 {
				result.Failed++
				result.Errors = append(result.Errors, errs...)
			} else {
				result.Successful++
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Skipped = result.TotalPoints - result.Successful - result.Failed
	result.Duration = time.Since(result.StartTime)
	j.record(result, byProvider)

	event := j.log.Info()
	if result.Failed > 0 {
		event = j.log.Warn()
	}
	event.
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Msg("provider refresh completed")

	return result
}

func (j *RefreshJob) refreshTarget(ctx context.Context, target RefreshTarget) ([]RefreshError, map[string]int64) {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	var errs []RefreshError
	ok := make(map[string]int64, len(j.providers))
	for _, p := range j.providers {
		if err := p.svc.Refresh(ctx, target.Point.Lat, target.Point.Lon); err != nil {
			errs = append(errs, RefreshError{
				Provider: p.name,
				Target:   target.Name,
				Point:    target.Point,
				Error:    err.Error(),
			})
			continue
		}
		ok[p.name]++
	}
	return errs, ok
}

func (j *RefreshJob) record(result *RefreshResult, byProvider map[string]int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.stats.Runs++
	j.stats.Succeeded += int64(result.Successful)
	j.stats.Failed += int64(result.Failed)
	j.stats.Skipped += int64(result.Skipped)
	for name, n := range byProvider {
		j.stats.ByProvider[name] += n
	}
	j.stats.LastRunAt = result.StartTime.Add(result.Duration)
	j.stats.LastDuration = result.Duration
	j.stats.TotalDuration += result.Duration
}

// Stats returns a copy of the accumulated statistics.
func (j *RefreshJob) Stats() RefreshStats {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := j.stats
	s.ByProvider = make(map[string]int64, len(j.stats.ByProvider))
	for k, v := range j.stats.ByProvider {
		s.ByProvider[k] = v
	}
	return s
}

// MetricsSnapshot renders Stats for the ops status endpoint.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	s := j.Stats()
	snapshot := map[string]interface{}{
		"runs":                 s.Runs,
		"targets":              len(j.cfg.Targets),
		"succeeded":            s.Succeeded,
		"failed":               s.Failed,
		"skipped":              s.Skipped,
		"airquality_refreshes": s.ByProvider[ProviderAirQuality],
		"weather_refreshes":    s.ByProvider[ProviderWeather],
		"last_duration":        s.LastDuration.String(),
		"total_duration":       s.TotalDuration.String(),
	}
	if !s.LastRunAt.IsZero() {
		snapshot["last_run_at"] = s.LastRunAt.UTC().Format(time.RFC3339)
	}
	return snapshot
}
