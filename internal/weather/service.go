package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/provider/geocache"
)

// Provider fetches a Report from an upstream forecast API.
type Provider interface {
	GetReport(ctx context.Context, lat, lon float64) (*Report, error)
	Name() string
}

// ServiceConfig configures a Service. CacheTTL defaults to 10 minutes and
// StaleIfErrorTTL to one hour. FetchTimeout bounds one provider call
// including retries.
type ServiceConfig struct {
	Provider        Provider
	Logger          zerolog.Logger
	CacheTTL        time.Duration
	CacheGridSize   float64
	StaleIfErrorTTL time.Duration
	FetchTimeout    time.Duration
	Metrics         geocache.Recorder
}

// Service caches provider reports per grid cell.
type Service struct {
	provider Provider
	log      zerolog.Logger
	cache    *geocache.Cache[*Report]
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		log:      cfg.Logger,
		cache: geocache.New[*Report](geocache.Config{
			Provider:     cfg.Provider.Name(),
			Operation:    "report",
			CellSize:     cfg.CacheGridSize,
			TTL:          cfg.CacheTTL,
			StaleTTL:     cfg.StaleIfErrorTTL,
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

// GetReport returns current conditions and forecasts for a point, from cache
// when the cell was fetched within CacheTTL.
func (s *Service) GetReport(ctx context.Context, lat, lon float64) (*Report, error) {
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

func (s *Service) fetcher(lat, lon float64) geocache.FetchFunc[*Report] {
	return func(ctx context.Context) (*Report, error) {
		s.log.Debug().
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", s.provider.Name()).
			Msg("fetching weather report")

		report, err := s.provider.GetReport(ctx, lat, lon)
		if err != nil {
			s.log.Error().Err(err).
				Float64("lat", lat).
				Float64("lon", lon).
				Msg("weather fetch failed")
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return report, nil
	}
}

// InvalidateCache drops every cached report.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

// CacheStats describes the report cache.
func (s *Service) CacheStats() geocache.Stats {
	return s.cache.Stats()
}
