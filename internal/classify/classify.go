package classify

import (
	"fmt"
	"math"
)

// Tier is the severity bucket a reading falls into.
type Tier struct {
	Kind        MetricKind `json:"kind"`
	Index       int        `json:"index"`
	Label       string     `json:"label"`
	Color       string     `json:"color"`
	Description string     `json:"description,omitempty"`
}

// Reading is a single metric value.
type Reading struct {
	Kind  MetricKind
	Value float64
}

// Classify returns the tier for the reading.
func (r Reading) Classify() Tier {
	return Classify(r.Kind, r.Value)
}

// Classify returns the severity tier of value for kind. Bands are tested in
// ascending order and the first match wins. A value that matches no band
// (NaN) lands in the last, most severe tier. Unknown kinds return the zero
// Tier.
func Classify(kind MetricKind, value float64) Tier {
	bands, ok := tables[kind]
	if !ok || len(bands) == 0 {
		return Tier{}
	}

	idx := len(bands) - 1
	for i, b := range bands {
		if b.matches(value) {
			idx = i
			break
		}
	}

	b := bands[idx]
	return Tier{
		Kind:        kind,
		Index:       idx,
		Label:       b.Label,
		Color:       b.Color,
		Description: b.Description,
	}
}

// Valid reports whether value is a finite number. Classify accepts any
// float, so callers that want to reject bad upstream data check this first.
func Valid(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// Gauge is the presentation form of a classified reading.
type Gauge struct {
	Kind    MetricKind `json:"kind"`
	Name    string     `json:"name"`
	Value   float64    `json:"value"`
	Display string     `json:"display"`
	Percent float64    `json:"percent"`
	Tier    Tier       `json:"tier"`
}

type displaySpec struct {
	max    float64
	format func(float64) string
}

func micrograms(v float64) string { return fmt.Sprintf("%.2f µg/m³", v) }

func rounded(v float64) string { return fmt.Sprintf("%d", int64(math.Round(v))) }

var displaySpecs = map[MetricKind]displaySpec{
	AirQualityIndex:      {max: 100, format: rounded},
	Ozone:                {max: 380, format: micrograms},
	NitrogenDioxide:      {max: 340, format: micrograms},
	ParticulateMatter2_5: {max: 75, format: micrograms},
	CarbonMonoxide:       {max: 30000, format: micrograms},
	ParticulateMatter10:  {max: 150, format: micrograms},
	SulfurDioxide:        {max: 750, format: micrograms},
	UVIndex:              {max: 11, format: rounded},
	Humidity: {max: 100, format: func(v float64) string {
		return rounded(v) + " %"
	}},
	Pressure: {max: 1100, format: func(v float64) string {
		return rounded(v) + " hPa"
	}},
}

// GaugeMax returns the value that maps to a full gauge for kind.
func GaugeMax(kind MetricKind) float64 {
	return displaySpecs[kind].max
}

// Display classifies value and formats it for a gauge. Percent is
// value/max*100 clamped to [0, 100]; NaN renders as an empty gauge.
func Display(kind MetricKind, value float64) Gauge {
	g := Gauge{
		Kind:  kind,
		Name:  kind.DisplayName(),
		Value: value,
		Tier:  Classify(kind, value),
	}

	disp, ok := displaySpecs[kind]
	if !ok {
		g.Display = fmt.Sprintf("%g", value)
		return g
	}

	if Valid(value) {
		g.Display = disp.format(value)
	} else {
		g.Display = "n/a"
	}
	g.Percent = percent(value, disp.max)
	return g
}

func percent(value, max float64) float64 {
	if max <= 0 || math.IsNaN(value) {
		return 0
	}
	p := value / max * 100
	switch {
	case p > 100:
		return 100
	case p < 0:
		return 0
	default:
		return p
	}
}
