// Package openmeteo implements weather.Provider on the Open-Meteo forecast
// API (https://open-meteo.com/en/docs).
package openmeteo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/provider/resilience"
	"github.com/airglance/airglance/internal/weather"
	om "github.com/airglance/airglance/pkg/openmeteo"
)

const (
	ProviderName   = "open-meteo-forecast"
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
)

var (
	currentVars = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"precipitation",
		"weather_code",
		"cloud_cover",
		"wind_speed_10m",
		"pressure_msl",
		"uv_index",
	}
	hourlyVars = []string{"temperature_2m", "weather_code"}
	dailyVars  = []string{"temperature_2m_max", "temperature_2m_min", "weather_code", "uv_index_max"}
)

// ClientConfig configures a Client. BaseURL defaults to DefaultBaseURL and
// HTTPClient to a resilience client named ProviderName.
type ClientConfig struct {
	BaseURL    string
	HTTPClient om.Doer
	Logger     zerolog.Logger
}

// Client reads the Open-Meteo forecast API. It implements weather.Provider.
type Client struct {
	endpoint string
	http     om.Doer
	log      zerolog.Logger
}

// NewClient creates an Open-Meteo forecast client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{endpoint: cfg.BaseURL, http: cfg.HTTPClient, log: cfg.Logger}
	if c.endpoint == "" {
		c.endpoint = DefaultBaseURL
	}
	if c.http == nil {
		c.http = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// GetReport fetches current conditions with the hourly and daily forecasts.
func (c *Client) GetReport(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	var fr forecastResponse
	if err := om.Get(ctx, c.http, c.endpoint, om.Query(lat, lon, currentVars, hourlyVars, dailyVars), &fr); err != nil {
		return nil, err
	}
	return c.toReport(&fr)
}

// toReport converts an Open-Meteo forecast response to the domain model.
func (c *Client) toReport(resp *forecastResponse) (*weather.Report, error) {
	loc := resp.Location()

	report := &weather.Report{
		Lat:       resp.Latitude,
		Lon:       resp.Longitude,
		Timezone:  resp.Timezone,
		FetchedAt: time.Now(),
	}

	cur := resp.Current
	code := om.ValueOr(cur.WeatherCode, weather.UnknownWeatherCode)
	report.Current = weather.Observation{
		Temperature:         cur.Temperature,
		ApparentTemperature: cur.ApparentTemperature,
		Humidity:            cur.Humidity,
		Pressure:            cur.Pressure,
		Precipitation:       cur.Precipitation,
		CloudCover:          cur.CloudCover,
		WindSpeed:           cur.WindSpeed,
		UVIndex:             cur.UVIndex,
		WeatherCode:         code,
		Condition:           weather.ConditionFor(code),
		Description:         weather.Describe(code),
		Icon:                weather.IconFor(code),
	}
	if cur.Time != "" {
		observedAt, err := om.ParseTime(cur.Time, loc)
		if err != nil {
			return nil, err
		}
		report.Current.ObservedAt = observedAt
	}

	report.Daily = make([]weather.DailyForecast, 0, len(resp.Daily.Time))
	for i, ts := range resp.Daily.Time {
		date, err := om.ParseTime(ts, loc)
		if err != nil {
			return nil, err
		}
		code := om.ValueOr(om.At(resp.Daily.WeatherCode, i), weather.UnknownWeatherCode)
		report.Daily = append(report.Daily, weather.DailyForecast{
			Date:           date,
			TemperatureMax: om.At(resp.Daily.TemperatureMax, i),
			TemperatureMin: om.At(resp.Daily.TemperatureMin, i),
			UVIndexMax:     om.At(resp.Daily.UVIndexMax, i),
			WeatherCode:    code,
			Condition:      weather.ConditionFor(code),
			Description:    weather.Describe(code),
			Icon:           weather.IconFor(code),
		})
	}

	report.Hourly = make([]weather.HourlyForecast, 0, len(resp.Hourly.Time))
	for i, ts := range resp.Hourly.Time {
		at, err := om.ParseTime(ts, loc)
		if err != nil {
			return nil, err
		}
		code := om.ValueOr(om.At(resp.Hourly.WeatherCode, i), weather.UnknownWeatherCode)
		report.Hourly = append(report.Hourly, weather.HourlyForecast{
			Time:        at,
			Temperature: om.At(resp.Hourly.Temperature, i),
			WeatherCode: code,
			Condition:   weather.ConditionFor(code),
			Description: weather.Describe(code),
			Icon:        weather.IconFor(code),
		})
	}

	c.log.Debug().
		Float64("lat", report.Lat).
		Float64("lon", report.Lon).
		Int("daily", len(report.Daily)).
		Int("hourly", len(report.Hourly)).
		Msg("decoded forecast")

	return report, nil
}

type forecastResponse struct {
	om.Header
	Current struct {
		Time                string   `json:"time"`
		Temperature         *float64 `json:"temperature_2m"`
		Humidity            *float64 `json:"relative_humidity_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		Precipitation       *float64 `json:"precipitation"`
		WeatherCode         *int     `json:"weather_code"`
		CloudCover          *float64 `json:"cloud_cover"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		Pressure            *float64 `json:"pressure_msl"`
		UVIndex             *float64 `json:"uv_index"`
	} `json:"current"`
	Hourly struct {
		Time        []string   `json:"time"`
		Temperature []*float64 `json:"temperature_2m"`
		WeatherCode []*int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time           []string   `json:"time"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
		WeatherCode    []*int     `json:"weather_code"`
		UVIndexMax     []*float64 `json:"uv_index_max"`
	} `json:"daily"`
}
