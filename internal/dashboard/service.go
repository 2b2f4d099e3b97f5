package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/airglance/airglance/internal/airquality"
	"github.com/airglance/airglance/internal/classify"
	"github.com/airglance/airglance/internal/location"
	"github.com/airglance/airglance/internal/telemetry"
	"github.com/airglance/airglance/internal/weather"
)

const tracerName = "github.com/airglance/airglance/internal/dashboard"

// DefaultHourlyPoints is the length of the hourly AQI strip.
const DefaultHourlyPoints = 24

// WeatherSource supplies weather reports. *weather.Service satisfies it.
type WeatherSource interface {
	GetReport(ctx context.Context, lat, lon float64) (*weather.Report, error)
}

// AirQualitySource supplies air quality snapshots. *airquality.Service satisfies it.
type AirQualitySource interface {
	GetCurrent(ctx context.Context, lat, lon float64) (*airquality.Snapshot, error)
}

// ServiceConfig holds configuration for the dashboard service.
type ServiceConfig struct {
	Weather    WeatherSource
	AirQuality AirQualitySource

	// Index resolves the nearest city and city queries. May be empty.
	Index *location.Index

	Logger zerolog.Logger

	// HourlyPoints is the number of hourly AQI points (default: 24).
	HourlyPoints int

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Service builds dashboards.
type Service struct {
	weather      WeatherSource
	airQuality   AirQualitySource
	index        *location.Index
	logger       zerolog.Logger
	hourlyPoints int
	now          func() time.Time
}

// NewService creates a new dashboard service.
func NewService(cfg ServiceConfig) *Service {
	hourly := cfg.HourlyPoints
	if hourly <= 0 {
		hourly = DefaultHourlyPoints
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	index := cfg.Index
	if index == nil {
		index = location.NewIndex(nil)
	}

	return &Service{
		weather:      cfg.Weather,
		airQuality:   cfg.AirQuality,
		index:        index,
		logger:       cfg.Logger,
		hourlyPoints: hourly,
		now:          now,
	}
}

// Build fetches weather and air quality for the coordinates in parallel and
// assembles the dashboard. The first provider failure cancels the other
// fetch and fails the build.
func (s *Service) Build(ctx context.Context, lat, lon float64) (*Dashboard, error) {
	var city *location.Location
	if loc, ok := s.index.Nearest(lat, lon); ok {
		city = &loc
	}
	return s.build(ctx, lat, lon, city)
}

// BuildForCity builds the dashboard for the first location whose name starts
// with query.
func (s *Service) BuildForCity(ctx context.Context, query string) (*Dashboard, error) {
	loc, err := s.index.First(query)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return s.build(ctx, loc.Lat.Float64(), loc.Lon.Float64(), &loc)
}

func (s *Service) build(ctx context.Context, lat, lon float64, city *location.Location) (*Dashboard, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "dashboard.Build")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("location.lat", lat),
		attribute.Float64("location.lon", lon),
	)

	var (
		report   *weather.Report
		snapshot *airquality.Snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.weather.GetReport(gctx, lat, lon)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot, err = s.airQuality.GetCurrent(gctx, lat, lon)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to build dashboard")
		return nil, err
	}

	now := s.now()
	d := &Dashboard{
		Location: Place{
			Lat:      lat,
			Lon:      lon,
			Timezone: report.Timezone,
			City:     city,
		},
		AirQuality:  s.airQualitySection(snapshot, now),
		Weather:     weatherSection(report),
		GeneratedAt: now,
	}
	if d.Location.Timezone == "" {
		d.Location.Timezone = snapshot.Timezone
	}

	if city != nil {
		span.SetAttributes(attribute.String("location.city", city.Name))
	}

	return d, nil
}

func (s *Service) airQualitySection(snapshot *airquality.Snapshot, now time.Time) AirQuality {
	aq := AirQuality{
		Pollutants: make([]classify.Gauge, 0, len(classify.Pollutants())),
		ObservedAt: snapshot.ObservedAt,
		Provider:   snapshot.Provider,
	}

	if r, ok := snapshot.Reading(classify.AirQualityIndex); ok {
		g := classify.Display(r.Kind, r.Value)
		aq.Index = &g
	}

	for _, r := range snapshot.Pollutants() {
		aq.Pollutants = append(aq.Pollutants, classify.Display(r.Kind, r.Value))
	}

	points := snapshot.HourlyFrom(now.Truncate(time.Hour), s.hourlyPoints)
	aq.Hourly = make([]HourlyPoint, 0, len(points))
	for _, p := range points {
		aq.Hourly = append(aq.Hourly, HourlyPoint{
			Time:  p.Time,
			Value: p.Value,
			Tier:  classify.Classify(classify.AirQualityIndex, p.Value),
		})
	}

	return aq
}

func weatherSection(report *weather.Report) Weather {
	cur := report.Current
	w := Weather{
		Temperature:         cur.Temperature,
		ApparentTemperature: cur.ApparentTemperature,
		CloudCover:          cur.CloudCover,
		WindSpeed:           cur.WindSpeed,
		Condition:           cur.Condition,
		Description:         cur.Description,
		Icon:                cur.Icon,
		UVIndex:             gauge(classify.UVIndex, cur.UVIndex),
		Humidity:            gauge(classify.Humidity, cur.Humidity),
		Pressure:            gauge(classify.Pressure, cur.Pressure),
		Daily:               make([]DayForecast, 0, len(report.Daily)),
		ObservedAt:          cur.ObservedAt,
	}

	for _, day := range report.Daily {
		f := DayForecast{
			Date:           day.Date.Format(time.DateOnly),
			TemperatureMax: day.TemperatureMax,
			TemperatureMin: day.TemperatureMin,
			UVIndexMax:     day.UVIndexMax,
			Description:    day.Description,
			Icon:           day.Icon,
		}
		if day.UVIndexMax != nil {
			tier := classify.Classify(classify.UVIndex, *day.UVIndexMax)
			f.UVTier = &tier
		}
		w.Daily = append(w.Daily, f)
	}

	return w
}

// gauge classifies v, or returns nil when the provider reported no value.
func gauge(kind classify.MetricKind, v *float64) *classify.Gauge {
	if v == nil {
		return nil
	}
	g := classify.Display(kind, *v)
	return &g
}
