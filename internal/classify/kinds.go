// Package classify maps metric readings to ordinal severity tiers.
package classify

import (
	"errors"
	"strings"
)

// ErrUnknownKind is returned when a metric kind name is not recognised.
var ErrUnknownKind = errors.New("unknown metric kind")

// MetricKind identifies the physical quantity a reading represents.
type MetricKind string

const (
	AirQualityIndex      MetricKind = "AQI"
	Ozone                MetricKind = "O3"
	NitrogenDioxide      MetricKind = "NO2"
	ParticulateMatter2_5 MetricKind = "PM25"
	CarbonMonoxide       MetricKind = "CO"
	ParticulateMatter10  MetricKind = "PM10"
	SulfurDioxide        MetricKind = "SO2"
	UVIndex              MetricKind = "UV"
	Humidity             MetricKind = "HUMIDITY"
	Pressure             MetricKind = "PRESSURE"
)

// Kinds returns every supported metric kind in dashboard display order.
func Kinds() []MetricKind {
	return []MetricKind{
		AirQualityIndex,
		Ozone,
		NitrogenDioxide,
		ParticulateMatter2_5,
		CarbonMonoxide,
		ParticulateMatter10,
		SulfurDioxide,
		UVIndex,
		Humidity,
		Pressure,
	}
}

// Pollutants returns the pollutant kinds shown in the air quality detail panel.
func Pollutants() []MetricKind {
	return []MetricKind{
		Ozone,
		NitrogenDioxide,
		ParticulateMatter2_5,
		CarbonMonoxide,
		ParticulateMatter10,
		SulfurDioxide,
	}
}

var displayNames = map[MetricKind]string{
	AirQualityIndex:      "Air Quality Index",
	Ozone:                "Ozone",
	NitrogenDioxide:      "Nitrogen Dioxide",
	ParticulateMatter2_5: "PM2.5",
	CarbonMonoxide:       "Carbon Monoxide",
	ParticulateMatter10:  "PM10",
	SulfurDioxide:        "Sulfur Dioxide",
	UVIndex:              "UV Index",
	Humidity:             "Humidity",
	Pressure:             "Pressure",
}

// DisplayName returns the human-readable name of the kind.
func (k MetricKind) DisplayName() string {
	if name, ok := displayNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid reports whether k is a supported kind.
func (k MetricKind) Valid() bool {
	_, ok := tables[k]
	return ok
}

// ParseKind parses a kind identifier case-insensitively. Common aliases such
// as "pm2_5", "ozone" or "european_aqi" are accepted.
func ParseKind(s string) (MetricKind, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(".", "", "_", "", "-", "", " ", "").Replace(key)

	switch key {
	case "AQI", "AIRQUALITYINDEX", "EUROPEANAQI":
		return AirQualityIndex, nil
	case "O3", "OZONE":
		return Ozone, nil
	case "NO2", "NITROGENDIOXIDE":
		return NitrogenDioxide, nil
	case "PM25", "PARTICULATEMATTER25":
		return ParticulateMatter2_5, nil
	case "CO", "CARBONMONOXIDE":
		return CarbonMonoxide, nil
	case "PM10", "PARTICULATEMATTER10":
		return ParticulateMatter10, nil
	case "SO2", "SULFURDIOXIDE", "SULPHURDIOXIDE":
		return SulfurDioxide, nil
	case "UV", "UVINDEX":
		return UVIndex, nil
	case "HUMIDITY", "RELATIVEHUMIDITY":
		return Humidity, nil
	case "PRESSURE", "PRESSUREMSL":
		return Pressure, nil
	default:
		return "", ErrUnknownKind
	}
}
