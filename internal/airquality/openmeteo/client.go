// Package openmeteo implements the air quality provider backed by the
// Open-Meteo air quality API.
// API documentation: https://open-meteo.com/en/docs/air-quality-api
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/airquality"
	"github.com/airglance/airglance/internal/classify"
	"github.com/airglance/airglance/internal/provider/resilience"
	om "github.com/airglance/airglance/pkg/openmeteo"
)

const (
	ProviderName   = "open-meteo-air-quality"
	DefaultBaseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

// variables maps each requested Open-Meteo variable to its metric kind.
var variables = []struct {
	name string
	kind classify.MetricKind
}{
	{"european_aqi", classify.AirQualityIndex},
	{"pm10", classify.ParticulateMatter10},
	{"pm2_5", classify.ParticulateMatter2_5},
	{"carbon_monoxide", classify.CarbonMonoxide},
	{"nitrogen_dioxide", classify.NitrogenDioxide},
	{"sulphur_dioxide", classify.SulfurDioxide},
	{"ozone", classify.Ozone},
}

var hourlyVars = []string{"european_aqi"}

// ClientConfig configures a Client. BaseURL defaults to DefaultBaseURL and
// HTTPClient to a resilience client named ProviderName.
type ClientConfig struct {
	BaseURL    string
	HTTPClient om.Doer
	Logger     zerolog.Logger
}

// Client reads the Open-Meteo air quality API. It implements
// airquality.Provider.
type Client struct {
	endpoint string
	http     om.Doer
	log      zerolog.Logger
	current  []string
}

// NewClient creates an Open-Meteo air quality client requesting every
// variable in the pollutant table.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{endpoint: cfg.BaseURL, http: cfg.HTTPClient, log: cfg.Logger}
	if c.endpoint == "" {
		c.endpoint = DefaultBaseURL
	}
	if c.http == nil {
		c.http = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}
	for _, v := range variables {
		c.current = append(c.current, v.name)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// GetCurrent fetches current pollutant readings and the hourly european AQI.
func (c *Client) GetCurrent(ctx context.Context, lat, lon float64) (*airquality.Snapshot, error) {
	var ar airQualityResponse
	if err := om.Get(ctx, c.http, c.endpoint, om.Query(lat, lon, c.current, hourlyVars, nil), &ar); err != nil {
		return nil, err
	}
	return c.toSnapshot(&ar)
}

// toSnapshot converts an Open-Meteo air quality response to the domain model.
// Null values are left out of the snapshot.
func (c *Client) toSnapshot(resp *airQualityResponse) (*airquality.Snapshot, error) {
	loc := resp.Location()

	snapshot := airquality.NewSnapshot(ProviderName, resp.Latitude, resp.Longitude)
	snapshot.Timezone = resp.Timezone

	for _, v := range variables {
		raw, ok := resp.Current[v.name]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", v.name, err)
		}
		snapshot.SetReading(v.kind, value)
	}

	if raw, ok := resp.Current["time"]; ok {
		var ts string
		if err := json.Unmarshal(raw, &ts); err == nil && ts != "" {
			observedAt, err := om.ParseTime(ts, loc)
			if err != nil {
				return nil, err
			}
			snapshot.ObservedAt = observedAt
		}
	}

	snapshot.Hourly = make([]airquality.HourlyAQI, 0, len(resp.Hourly.Time))
	for i, ts := range resp.Hourly.Time {
		value := om.At(resp.Hourly.EuropeanAQI, i)
		if value == nil || !classify.Valid(*value) {
			continue
		}
		at, err := om.ParseTime(ts, loc)
		if err != nil {
			return nil, err
		}
		snapshot.Hourly = append(snapshot.Hourly, airquality.HourlyAQI{Time: at, Value: *value})
	}

	c.log.Debug().
		Float64("lat", snapshot.Lat).
		Float64("lon", snapshot.Lon).
		Int("readings", len(snapshot.Readings)).
		Int("hourly", len(snapshot.Hourly)).
		Msg("decoded air quality")

	return snapshot, nil
}

type airQualityResponse struct {
	om.Header
	Current map[string]json.RawMessage `json:"current"`
	Hourly  struct {
		Time        []string   `json:"time"`
		EuropeanAQI []*float64 `json:"european_aqi"`
	} `json:"hourly"`
}
