package airquality

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/provider/geocache"
)

// Provider fetches a Snapshot from an upstream air quality API.
type Provider interface {
	// GetCurrent returns current readings and the hourly AQI series.
	GetCurrent(ctx context.Context, lat, lon float64) (*Snapshot, error)
	Name() string
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// CacheTTL defaults to 5 minutes; air quality moves faster than the
	// forecast.
	CacheTTL      time.Duration
	CacheGridSize float64

	// StaleIfErrorTTL defaults to 30 minutes.
	StaleIfErrorTTL time.Duration
	FetchTimeout    time.Duration

	Metrics geocache.Recorder
}

// Service caches provider snapshots per grid cell.
type Service struct {
	provider Provider
	log      zerolog.Logger
	cache    *geocache.Cache[*Snapshot]
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	stale := cfg.StaleIfErrorTTL
	if stale <= 0 {
		stale = 30 * time.Minute
	}

	return &Service{
		provider: cfg.Provider,
		log:      cfg.Logger,
		cache: geocache.New[*Snapshot](geocache.Config{
			Provider:     cfg.Provider.Name(),
			Operation:    "current",
			CellSize:     cfg.CacheGridSize,
			TTL:          ttl,
			StaleTTL:     stale,
			FetchTimeout: cfg.FetchTimeout,
			Metrics:      cfg.Metrics,
			Logger:       cfg.Logger,
		}),
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrent returns the snapshot for the cell containing the point.
func (s *Service) GetCurrent(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	if !geocache.ValidPoint(lat, lon) {
		return nil, ErrInvalidCoordinates
	}
	return s.cache.Get(ctx, lat, lon, s.fetcher(lat, lon))
}

// Refresh re-fetches the cell containing the point.
func (s *Service) Refresh(ctx context.Context, lat, lon float64) error {
	if !geocache.ValidPoint(lat, lon) {
		return ErrInvalidCoordinates
	}
	_, err := s.cache.Refresh(ctx, lat, lon, s.fetcher(lat, lon))
	return err
}

// fetcher rejects empty snapshots so they are never cached; a stale entry
// for the cell is preferred over an empty one.
func (s *Service) fetcher(lat, lon float64) geocache.FetchFunc[*Snapshot] {
	return func(ctx context.Context) (*Snapshot, error) {
		snapshot, err := s.provider.GetCurrent(ctx, lat, lon)
		if err != nil {
			s.log.Error().Err(err).
				Float64("lat", lat).
				Float64("lon", lon).
				Str("provider", s.provider.Name()).
				Msg("air quality fetch failed")
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		if len(snapshot.Readings) == 0 && len(snapshot.Hourly) == 0 {
			return nil, ErrNoMeasurements
		}

		s.log.Debug().
			Int("readings", len(snapshot.Readings)).
			Int("hourly", len(snapshot.Hourly)).
			Msg("air quality snapshot fetched")
		return snapshot, nil
	}
}

// InvalidateCache drops every cached snapshot.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

// CacheStatus describes the snapshot cache.
func (s *Service) CacheStatus() geocache.Stats {
	return s.cache.Stats()
}
