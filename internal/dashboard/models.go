// Package dashboard assembles weather and air quality data for a location
// into classified, display-ready gauges.
package dashboard

import (
	"errors"
	"time"

	"github.com/airglance/airglance/internal/classify"
	"github.com/airglance/airglance/internal/location"
	"github.com/airglance/airglance/internal/weather"
)

// ErrCityNotFound is returned when a city query matches no known location.
var ErrCityNotFound = errors.New("city not found")

// Dashboard is the full view for one location.
type Dashboard struct {
	Location    Place      `json:"location"`
	AirQuality  AirQuality `json:"airQuality"`
	Weather     Weather    `json:"weather"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// Place identifies where the dashboard was built for.
type Place struct {
	Lat      float64            `json:"lat"`
	Lon      float64            `json:"lon"`
	Timezone string             `json:"timezone,omitempty"`
	City     *location.Location `json:"city,omitempty"`
}

// AirQuality is the air quality section.
type AirQuality struct {
	// Index is the european AQI gauge; nil when the provider had no value.
	Index      *classify.Gauge  `json:"index,omitempty"`
	Pollutants []classify.Gauge `json:"pollutants"`
	Hourly     []HourlyPoint    `json:"hourly"`
	ObservedAt time.Time        `json:"observedAt"`
	Provider   string           `json:"provider"`
}

// HourlyPoint is one entry of the hourly AQI strip.
type HourlyPoint struct {
	Time  time.Time     `json:"time"`
	Value float64       `json:"value"`
	Tier  classify.Tier `json:"tier"`
}

// Weather is the weather section. Measurements the provider did not report
// are omitted.
type Weather struct {
	Temperature         *float64          `json:"temperature,omitempty"`
	ApparentTemperature *float64          `json:"apparentTemperature,omitempty"`
	CloudCover          *float64          `json:"cloudCover,omitempty"`
	WindSpeed           *float64          `json:"windSpeed,omitempty"`
	Condition           weather.Condition `json:"condition"`
	Description         string            `json:"description"`
	Icon                weather.Icon      `json:"icon"`
	UVIndex             *classify.Gauge   `json:"uvIndex,omitempty"`
	Humidity            *classify.Gauge   `json:"humidity,omitempty"`
	Pressure            *classify.Gauge   `json:"pressure,omitempty"`
	Daily               []DayForecast     `json:"daily"`
	ObservedAt          time.Time         `json:"observedAt"`
}

// DayForecast is one entry of the daily forecast strip.
type DayForecast struct {
	Date           string         `json:"date"`
	TemperatureMax *float64       `json:"temperatureMax,omitempty"`
	TemperatureMin *float64       `json:"temperatureMin,omitempty"`
	UVIndexMax     *float64       `json:"uvIndexMax,omitempty"`
	UVTier         *classify.Tier `json:"uvTier,omitempty"`
	Description    string         `json:"description"`
	Icon           weather.Icon   `json:"icon"`
}
