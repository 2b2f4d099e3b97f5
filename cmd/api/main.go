// Package main provides the entrypoint for the airglance API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/airquality"
	aqopenmeteo "github.com/airglance/airglance/internal/airquality/openmeteo"
	"github.com/airglance/airglance/internal/api"
	"github.com/airglance/airglance/internal/api/middleware"
	"github.com/airglance/airglance/internal/config"
	"github.com/airglance/airglance/internal/dashboard"
	"github.com/airglance/airglance/internal/database"
	"github.com/airglance/airglance/internal/location"
	"github.com/airglance/airglance/internal/provider/resilience"
	"github.com/airglance/airglance/internal/telemetry"
	"github.com/airglance/airglance/internal/weather"
	wxopenmeteo "github.com/airglance/airglance/internal/weather/openmeteo"
	"github.com/airglance/airglance/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airglance-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting airglance API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	// Load the location index
	index, pool, err := loadLocations(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load locations")
	}
	if pool != nil {
		defer pool.Close()
	}
	log.Info().
		Int("locations", index.Len()).
		Str("source", cfg.CitySource).
		Bool("exhaustive", cfg.NearestExhaustive).
		Msg("location index loaded")

	// Upstream providers share one registry for /v1/ops/status
	registry := resilience.NewRegistry()
	newHTTPClient := func(name string) *resilience.Client {
		clientCfg := resilience.DefaultClientConfig(name)
		clientCfg.Timeout = cfg.ProviderTimeout
		clientCfg.Registry = registry
		clientCfg.Observers = []resilience.Observer{providerMetrics.Observe}
		clientCfg.Logger = log
		return resilience.NewClient(clientCfg)
	}

	// Cached fetches must finish inside the server's WriteTimeout
	fetchTimeout := 2 * cfg.ProviderTimeout

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: wxopenmeteo.NewClient(wxopenmeteo.ClientConfig{
			BaseURL:    cfg.WeatherBaseURL,
			HTTPClient: newHTTPClient(wxopenmeteo.ProviderName),
			Logger:     log,
		}),
		Logger:       log,
		CacheTTL:     cfg.CacheTTL,
		FetchTimeout: fetchTimeout,
		Metrics:      providerMetrics,
	})

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider: aqopenmeteo.NewClient(aqopenmeteo.ClientConfig{
			BaseURL:    cfg.AirQualityBaseURL,
			HTTPClient: newHTTPClient(aqopenmeteo.ProviderName),
			Logger:     log,
		}),
		Logger:       log,
		CacheTTL:     cfg.CacheTTL,
		FetchTimeout: fetchTimeout,
		Metrics:      providerMetrics,
	})

	dashboardService := dashboard.NewService(dashboard.ServiceConfig{
		Weather:    weatherService,
		AirQuality: airQualityService,
		Index:      index,
		Logger:     log,
	})
	log.Info().
		Strs("providers", registry.Names()).
		Msg("dashboard service initialized")

	routerCfg := api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		Metrics:     metrics,
		Index:       index,
		Dashboard:   dashboardService,
		Registry:    registry,
		RequireTLS:  cfg.RequireTLS,
		CORSOrigins: cfg.CORSOrigins,
	}
	if pool != nil {
		routerCfg.Database = pool
	}

	// Background cache warm-up
	if cfg.RefreshInterval > 0 {
		targets, missing := worker.ResolveTargets(index, cfg.RefreshCities)
		if len(missing) > 0 {
			log.Warn().Strs("cities", missing).Msg("refresh cities not found in location index")
		}

		refreshCfg := worker.DefaultRefreshConfig()
		refreshCfg.Targets = targets
		refreshCfg.Interval = cfg.RefreshInterval

		job := worker.NewRefreshJob(worker.RefreshJobConfig{
			Config:            refreshCfg,
			Logger:            log.With().Str("component", "refresh").Logger(),
			AirQualityService: airQualityService,
			WeatherService:    weatherService,
		})
		routerCfg.Refresh = job
		go job.Start(ctx)
	}

	router := api.NewRouter(routerCfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.ProviderTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// loadLocations builds the location index from the configured source. The
// returned pool is non-nil only for the Postgres source.
func loadLocations(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*location.Index, *pgxpool.Pool, error) {
	var opts []location.IndexOption
	if cfg.NearestExhaustive {
		opts = append(opts, location.WithExhaustiveScan())
	}

	if cfg.CitySource != config.CitySourcePostgres {
		index, err := location.LoadIndex(ctx, location.FileSource{Path: cfg.CitiesFile}, opts...)
		return index, nil, err
	}

	pool, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("database connected")

	index, err := location.LoadIndex(ctx, location.NewPostgresSource(pool), opts...)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return index, pool, nil
}
