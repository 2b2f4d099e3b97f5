package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airglance/airglance/internal/provider/resilience"
	"github.com/airglance/airglance/internal/weather"
	"github.com/airglance/airglance/internal/weather/openmeteo"
	om "github.com/airglance/airglance/pkg/openmeteo"
)

const forecastPayload = `{
	"latitude": 38.72,
	"longitude": -9.14,
	"utc_offset_seconds": 3600,
	"timezone": "Europe/Lisbon",
	"timezone_abbreviation": "WEST",
	"current": {
		"time": "2024-05-01T14:00",
		"temperature_2m": 21.4,
		"relative_humidity_2m": 58,
		"apparent_temperature": 20.9,
		"precipitation": 0.0,
		"weather_code": 2,
		"cloud_cover": 40,
		"wind_speed_10m": 14.2,
		"pressure_msl": 1016.3,
		"uv_index": 6.1
	},
	"hourly": {
		"time": ["2024-05-01T14:00", "2024-05-01T15:00"],
		"temperature_2m": [21.4, null],
		"weather_code": [2, 61]
	},
	"daily": {
		"time": ["2024-05-01", "2024-05-02"],
		"temperature_2m_max": [23.0, 19.5],
		"temperature_2m_min": [14.1, 13.0],
		"weather_code": [2, 95],
		"uv_index_max": [6.5, 3.0]
	}
}`

func newTestClient(baseURL string) *openmeteo.Client {
	cfg := resilience.DefaultClientConfig("test")
	cfg.MaxRetries = 1
	cfg.InitialInterval = time.Millisecond
	return openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    baseURL,
		HTTPClient: resilience.NewClient(cfg),
	})
}

func TestClient_GetReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "38.720000", q.Get("latitude"))
		assert.Equal(t, "-9.140000", q.Get("longitude"))
		assert.Contains(t, q.Get("current"), "pressure_msl")
		assert.Contains(t, q.Get("current"), "uv_index")
		assert.Contains(t, q.Get("daily"), "temperature_2m_max")
		assert.Equal(t, "auto", q.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	report, err := newTestClient(server.URL).GetReport(context.Background(), 38.72, -9.14)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "Europe/Lisbon", report.Timezone)
	require.NotNil(t, report.Current.Temperature)
	require.NotNil(t, report.Current.Humidity)
	require.NotNil(t, report.Current.Pressure)
	require.NotNil(t, report.Current.UVIndex)
	assert.Equal(t, 21.4, *report.Current.Temperature)
	assert.Equal(t, 58.0, *report.Current.Humidity)
	assert.Equal(t, 1016.3, *report.Current.Pressure)
	assert.Equal(t, 6.1, *report.Current.UVIndex)
	require.NotNil(t, report.Current.Precipitation)
	assert.Zero(t, *report.Current.Precipitation)
	assert.Equal(t, 2, report.Current.WeatherCode)
	assert.Equal(t, "Partly Cloudy", report.Current.Description)
	assert.Equal(t, weather.IconCloud, report.Current.Icon)
	assert.Equal(t, weather.ConditionClouds, report.Current.Condition)
	assert.True(t, report.Current.ObservedAt.Equal(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)))

	require.Len(t, report.Daily, 2)
	require.NotNil(t, report.Daily[0].TemperatureMax)
	require.NotNil(t, report.Daily[1].TemperatureMin)
	assert.Equal(t, 23.0, *report.Daily[0].TemperatureMax)
	assert.Equal(t, 13.0, *report.Daily[1].TemperatureMin)
	assert.Equal(t, "Thunderstorm", report.Daily[1].Description)
	assert.Equal(t, weather.IconRain, report.Daily[1].Icon)

	require.Len(t, report.Hourly, 2)
	assert.Nil(t, report.Hourly[1].Temperature)
	assert.Equal(t, weather.ConditionRain, report.Hourly[1].Condition)
}

func TestClient_GetReport_NullValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"latitude": 38.72,
			"longitude": -9.14,
			"timezone": "GMT",
			"current": {
				"time": "2024-05-01T14:00",
				"temperature_2m": 21.4,
				"relative_humidity_2m": null,
				"pressure_msl": null,
				"weather_code": null
			},
			"daily": {
				"time": ["2024-05-01"],
				"temperature_2m_max": [null],
				"weather_code": [null],
				"uv_index_max": [null]
			}
		}`))
	}))
	defer server.Close()

	report, err := newTestClient(server.URL).GetReport(context.Background(), 38.72, -9.14)
	require.NoError(t, err)

	require.NotNil(t, report.Current.Temperature)
	assert.Nil(t, report.Current.Humidity)
	assert.Nil(t, report.Current.Pressure)
	assert.Nil(t, report.Current.UVIndex)
	assert.Equal(t, weather.UnknownWeatherCode, report.Current.WeatherCode)
	assert.Equal(t, weather.ConditionUnknown, report.Current.Condition)
	assert.Equal(t, "Unknown", report.Current.Description)

	require.Len(t, report.Daily, 1)
	assert.Nil(t, report.Daily[0].TemperatureMax)
	assert.Nil(t, report.Daily[0].TemperatureMin)
	assert.Nil(t, report.Daily[0].UVIndexMax)
	assert.Equal(t, weather.UnknownWeatherCode, report.Daily[0].WeatherCode)
}

func TestClient_GetReport_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetReport(context.Background(), 38.72, -9.14)

	var apiErr *om.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Latitude must be in range of -90 to 90°.", apiErr.Reason)
}

func TestClient_GetReport_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetReport(context.Background(), 38.72, -9.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, openmeteo.ProviderName, openmeteo.NewClient(openmeteo.ClientConfig{}).Name())
}
