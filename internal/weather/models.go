// Package weather provides current conditions and forecasts with caching.
package weather

import (
	"errors"
	"time"
)

// UnknownWeatherCode stands in for a missing WMO code.
const UnknownWeatherCode = -1

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Report is everything the dashboard needs from one forecast call.
type Report struct {
	// Location as resolved by the provider (grid cell center).
	Lat      float64
	Lon      float64
	Timezone string

	Current Observation
	Daily   []DailyForecast
	Hourly  []HourlyForecast

	FetchedAt time.Time
}

// Observation represents current conditions. A nil measurement means the
// provider reported no value.
type Observation struct {
	// Temperature in Celsius
	Temperature         *float64
	ApparentTemperature *float64

	// Relative humidity percentage (0-100)
	Humidity *float64

	// Mean sea level pressure in hPa
	Pressure *float64

	// Precipitation in mm
	Precipitation *float64

	// Cloud cover percentage (0-100)
	CloudCover *float64

	// Wind speed at 10m in km/h
	WindSpeed *float64

	UVIndex *float64

	// WMO weather interpretation code, UnknownWeatherCode when missing
	WeatherCode int
	Condition   Condition
	Description string
	Icon        Icon

	ObservedAt time.Time
}

// DailyForecast is one day of the forecast strip.
type DailyForecast struct {
	Date           time.Time
	TemperatureMax *float64
	TemperatureMin *float64
	UVIndexMax     *float64
	WeatherCode    int
	Condition      Condition
	Description    string
	Icon           Icon
}

// HourlyForecast is one hour of the forecast.
type HourlyForecast struct {
	Time        time.Time
	Temperature *float64
	WeatherCode int
	Condition   Condition
	Description string
	Icon        Icon
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionFog          Condition = "FOG"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionRain         Condition = "RAIN"
	ConditionSnow         Condition = "SNOW"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionUnknown      Condition = "UNKNOWN"
)

// Icon names the illustration used for a weather code.
type Icon string

const (
	IconSun   Icon = "SUN"
	IconCloud Icon = "CLOUD"
	IconRain  Icon = "RAIN"
)
