package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airglance/airglance/internal/airquality/openmeteo"
	"github.com/airglance/airglance/internal/classify"
	"github.com/airglance/airglance/internal/provider/resilience"
)

const airQualityPayload = `{
	"latitude": 52.4,
	"longitude": 4.9,
	"utc_offset_seconds": 7200,
	"timezone": "Europe/Amsterdam",
	"timezone_abbreviation": "CEST",
	"current": {
		"time": "2024-05-01T14:00",
		"interval": 3600,
		"european_aqi": 34,
		"pm10": 12.1,
		"pm2_5": 7.4,
		"carbon_monoxide": 201.0,
		"nitrogen_dioxide": 18.2,
		"sulphur_dioxide": null,
		"ozone": 72.5
	},
	"hourly": {
		"time": ["2024-05-01T00:00", "2024-05-01T01:00", "2024-05-01T02:00"],
		"european_aqi": [28, null, 31]
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

func TestClient_GetCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "52.370000", q.Get("latitude"))
		assert.Equal(t, "4.890000", q.Get("longitude"))
		assert.Equal(t, "european_aqi", q.Get("hourly"))
		assert.True(t, strings.HasPrefix(q.Get("current"), "european_aqi,pm10,pm2_5"))
		assert.Contains(t, q.Get("current"), "sulphur_dioxide")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(airQualityPayload))
	}))
	defer server.Close()

	snapshot, err := newTestClient(server.URL).GetCurrent(context.Background(), 52.37, 4.89)
	require.NoError(t, err)

	assert.Equal(t, openmeteo.ProviderName, snapshot.Provider)
	assert.Equal(t, "Europe/Amsterdam", snapshot.Timezone)
	assert.Len(t, snapshot.Readings, 6)
	assert.Equal(t, 34.0, snapshot.Readings[classify.AirQualityIndex])
	assert.Equal(t, 7.4, snapshot.Readings[classify.ParticulateMatter2_5])
	assert.Equal(t, 72.5, snapshot.Readings[classify.Ozone])

	_, ok := snapshot.Reading(classify.SulfurDioxide)
	assert.False(t, ok, "null readings must be omitted")

	assert.True(t, snapshot.ObservedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	require.Len(t, snapshot.Hourly, 2)
	assert.Equal(t, 28.0, snapshot.Hourly[0].Value)
	assert.Equal(t, 31.0, snapshot.Hourly[1].Value)
	assert.Equal(t, 2, snapshot.Hourly[1].Time.Hour())
}

func TestClient_GetCurrent_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCurrent(context.Background(), 52.37, 4.89)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestClient_GetCurrent_BadValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current": {"ozone": "high"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCurrent(context.Background(), 52.37, 4.89)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding ozone")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "open-meteo-air-quality", openmeteo.NewClient(openmeteo.ClientConfig{}).Name())
}
