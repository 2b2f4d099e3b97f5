package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airglance/airglance/internal/airquality"
	"github.com/airglance/airglance/internal/classify"
	"github.com/airglance/airglance/internal/dashboard"
	"github.com/airglance/airglance/internal/location"
	"github.com/airglance/airglance/internal/weather"
)

var fixedNow = time.Date(2024, 5, 1, 10, 20, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

type mockWeather struct {
	err     error
	current *weather.Observation
}

func (m *mockWeather) GetReport(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	current := weather.Observation{
		Temperature: ptr(21.4),
		Humidity:    ptr(58),
		Pressure:    ptr(1016.3),
		CloudCover:  ptr(40),
		UVIndex:     ptr(6.1),
		Condition:   weather.ConditionClouds,
		Description: "Partly Cloudy",
		Icon:        weather.IconCloud,
	}
	if m.current != nil {
		current = *m.current
	}
	return &weather.Report{
		Lat:      lat,
		Lon:      lon,
		Timezone: "Europe/Lisbon",
		Current:  current,
		Daily: []weather.DailyForecast{
			{Date: fixedNow, TemperatureMax: ptr(23), TemperatureMin: ptr(14), UVIndexMax: ptr(8.2), Description: "Partly Cloudy", Icon: weather.IconCloud},
			{Date: fixedNow.AddDate(0, 0, 1), TemperatureMax: ptr(19), TemperatureMin: ptr(13), Description: "Rain", Icon: weather.IconRain},
		},
	}, nil
}

type mockAirQuality struct {
	err     error
	blockOn bool
}

func (m *mockAirQuality) GetCurrent(ctx context.Context, lat, lon float64) (*airquality.Snapshot, error) {
	if m.blockOn {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}

	s := airquality.NewSnapshot("test", lat, lon)
	s.Timezone = "Europe/Lisbon"
	s.SetReading(classify.AirQualityIndex, 34)
	s.SetReading(classify.SulfurDioxide, 3.2)
	s.SetReading(classify.Ozone, 72.5)
	s.SetReading(classify.ParticulateMatter2_5, 7.4)

	base := fixedNow.Truncate(24 * time.Hour)
	for i := 0; i < 48; i++ {
		s.Hourly = append(s.Hourly, airquality.HourlyAQI{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Value: float64(i),
		})
	}
	return s, nil
}

func testIndex() *location.Index {
	return location.NewIndex([]location.Location{
		{Name: "Lisbon", Country: "PT", Lat: 38.7223, Lon: -9.1393},
		{Name: "Porto", Country: "PT", Lat: 41.1579, Lon: -8.6291},
		{Name: "Lima", Country: "PE", Lat: -12.0464, Lon: -77.0428},
	})
}

func newTestService(w dashboard.WeatherSource, aq dashboard.AirQualitySource) *dashboard.Service {
	return dashboard.NewService(dashboard.ServiceConfig{
		Weather:    w,
		AirQuality: aq,
		Index:      testIndex(),
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return fixedNow },
	})
}

func TestService_Build(t *testing.T) {
	svc := newTestService(&mockWeather{}, &mockAirQuality{})

	d, err := svc.Build(context.Background(), 38.70, -9.14)
	require.NoError(t, err)

	require.NotNil(t, d.Location.City)
	assert.Equal(t, "Lisbon", d.Location.City.Name)
	assert.Equal(t, "Europe/Lisbon", d.Location.Timezone)
	assert.Equal(t, fixedNow, d.GeneratedAt)

	require.NotNil(t, d.AirQuality.Index)
	assert.Equal(t, "34", d.AirQuality.Index.Display)
	assert.Equal(t, classify.LabelFair, d.AirQuality.Index.Tier.Label)
	assert.NotEmpty(t, d.AirQuality.Index.Tier.Description)

	require.Len(t, d.AirQuality.Pollutants, 3)
	assert.Equal(t, classify.Ozone, d.AirQuality.Pollutants[0].Kind)
	assert.Equal(t, classify.ParticulateMatter2_5, d.AirQuality.Pollutants[1].Kind)
	assert.Equal(t, classify.SulfurDioxide, d.AirQuality.Pollutants[2].Kind)
	assert.Equal(t, "72.50 µg/m³", d.AirQuality.Pollutants[0].Display)

	require.Len(t, d.AirQuality.Hourly, dashboard.DefaultHourlyPoints)
	assert.Equal(t, 10, d.AirQuality.Hourly[0].Time.Hour())
	assert.Equal(t, 10.0, d.AirQuality.Hourly[0].Value)
	assert.Equal(t, classify.LabelGood, d.AirQuality.Hourly[0].Tier.Label)
	assert.Equal(t, classify.LabelFair, d.AirQuality.Hourly[11].Tier.Label)

	assert.Equal(t, ptr(40), d.Weather.CloudCover)
	assert.Equal(t, "Partly Cloudy", d.Weather.Description)
	require.NotNil(t, d.Weather.UVIndex)
	require.NotNil(t, d.Weather.Humidity)
	require.NotNil(t, d.Weather.Pressure)
	assert.Equal(t, "6", d.Weather.UVIndex.Display)
	assert.Equal(t, "58 %", d.Weather.Humidity.Display)
	assert.Equal(t, "1016 hPa", d.Weather.Pressure.Display)
	require.Len(t, d.Weather.Daily, 2)
	assert.Equal(t, "2024-05-01", d.Weather.Daily[0].Date)
	require.NotNil(t, d.Weather.Daily[0].UVTier)
	assert.Equal(t, "Very High", d.Weather.Daily[0].UVTier.Label)
	assert.Nil(t, d.Weather.Daily[1].UVTier)
	assert.Equal(t, weather.IconRain, d.Weather.Daily[1].Icon)
}

func TestService_Build_OmitsMissingWeatherValues(t *testing.T) {
	svc := newTestService(&mockWeather{current: &weather.Observation{
		Temperature: ptr(12),
		UVIndex:     ptr(0),
		Condition:   weather.ConditionUnknown,
	}}, &mockAirQuality{})

	d, err := svc.Build(context.Background(), 38.70, -9.14)
	require.NoError(t, err)

	assert.Nil(t, d.Weather.Humidity)
	assert.Nil(t, d.Weather.Pressure)
	assert.Nil(t, d.Weather.CloudCover)
	require.NotNil(t, d.Weather.UVIndex)
	assert.Equal(t, "Low", d.Weather.UVIndex.Tier.Label)

	body, err := json.Marshal(d.Weather)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"humidity"`)
	assert.NotContains(t, string(body), `"pressure"`)
	assert.Contains(t, string(body), `"uvIndex"`)
}

func TestService_Build_EmptyIndex(t *testing.T) {
	svc := dashboard.NewService(dashboard.ServiceConfig{
		Weather:    &mockWeather{},
		AirQuality: &mockAirQuality{},
		Logger:     zerolog.Nop(),
	})

	d, err := svc.Build(context.Background(), 38.70, -9.14)
	require.NoError(t, err)
	assert.Nil(t, d.Location.City)
}

func TestService_Build_ProviderFailure(t *testing.T) {
	boom := errors.New("boom")

	t.Run("weather fails", func(t *testing.T) {
		svc := newTestService(&mockWeather{err: boom}, &mockAirQuality{blockOn: true})
		_, err := svc.Build(context.Background(), 38.70, -9.14)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("air quality fails", func(t *testing.T) {
		svc := newTestService(&mockWeather{}, &mockAirQuality{err: airquality.ErrProviderUnavailable})
		_, err := svc.Build(context.Background(), 38.70, -9.14)
		assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)
	})
}

func TestService_BuildForCity(t *testing.T) {
	svc := newTestService(&mockWeather{}, &mockAirQuality{})

	d, err := svc.BuildForCity(context.Background(), "  por")
	require.NoError(t, err)
	require.NotNil(t, d.Location.City)
	assert.Equal(t, "Porto", d.Location.City.Name)
	assert.Equal(t, 41.1579, d.Location.Lat)

	_, err = svc.BuildForCity(context.Background(), "Zz")
	assert.ErrorIs(t, err, dashboard.ErrCityNotFound)

	_, err = svc.BuildForCity(context.Background(), "L")
	assert.ErrorIs(t, err, dashboard.ErrCityNotFound)
}
