package classify

import "math"

// Labels shared by the six-tier pollutant tables.
const (
	LabelGood          = "Good"
	LabelFair          = "Fair"
	LabelModerate      = "Moderate"
	LabelPoor          = "Poor"
	LabelVeryPoor      = "Very Poor"
	LabelExtremelyPoor = "Extremely Poor"
)

// Palette colors.
const (
	ColorGreen      = "#4cd964"
	ColorLightGreen = "#a0d568"
	ColorYellow     = "#FFD93B"
	ColorOrange     = "#ff9500"
	ColorRed        = "#ff3b30"
	ColorPurple     = "#8b00ff"
	ColorBlue       = "#0288D1"
)

// Band is one row of a threshold table. A reading falls in the band when it
// is <= UpperBound, or < UpperBound when Exclusive is set.
type Band struct {
	UpperBound  float64 `json:"upperBound"`
	Exclusive   bool    `json:"exclusive,omitempty"`
	Label       string  `json:"label"`
	Color       string  `json:"color"`
	Description string  `json:"description,omitempty"`
}

func (b Band) matches(value float64) bool {
	if b.Exclusive {
		return value < b.UpperBound
	}
	return value <= b.UpperBound
}

var inf = math.Inf(1)

// sixTier builds a Good..Extremely Poor table from five explicit bounds.
func sixTier(b1, b2, b3, b4, b5 float64) []Band {
	return []Band{
		{UpperBound: b1, Label: LabelGood, Color: ColorGreen},
		{UpperBound: b2, Label: LabelFair, Color: ColorLightGreen},
		{UpperBound: b3, Label: LabelModerate, Color: ColorYellow},
		{UpperBound: b4, Label: LabelPoor, Color: ColorOrange},
		{UpperBound: b5, Label: LabelVeryPoor, Color: ColorRed},
		{UpperBound: inf, Label: LabelExtremelyPoor, Color: ColorPurple},
	}
}

var tables = map[MetricKind][]Band{
	AirQualityIndex: {
		{UpperBound: 20, Label: LabelGood, Color: ColorGreen,
			Description: "Air quality is considered satisfactory, and air pollution poses little or no risk."},
		{UpperBound: 40, Label: LabelFair, Color: ColorLightGreen,
			Description: "Air quality is acceptable; however, there may be a moderate health concern for a very small number of people."},
		{UpperBound: 60, Label: LabelModerate, Color: ColorYellow,
			Description: "Members of sensitive groups may experience health effects. The general public is not likely to be affected."},
		{UpperBound: 80, Label: LabelPoor, Color: ColorOrange,
			Description: "Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects."},
		{UpperBound: 100, Label: LabelVeryPoor, Color: ColorRed,
			Description: "Health warnings of emergency conditions. The entire population is more likely to be affected."},
		{UpperBound: inf, Label: LabelExtremelyPoor, Color: ColorPurple,
			Description: "Health alert: everyone may experience more serious health effects."},
	},
	Ozone:                sixTier(50, 100, 130, 240, 380),
	NitrogenDioxide:      sixTier(40, 90, 120, 230, 340),
	ParticulateMatter2_5: sixTier(10, 20, 25, 50, 75),
	CarbonMonoxide:       sixTier(4000, 7000, 10000, 20000, 30000),
	ParticulateMatter10:  sixTier(20, 35, 50, 100, 150),
	SulfurDioxide:        sixTier(100, 200, 350, 500, 750),
	UVIndex: {
		{UpperBound: 2, Label: "Low", Color: ColorGreen},
		{UpperBound: 5, Label: "Moderate", Color: ColorYellow},
		{UpperBound: 7, Label: "High", Color: ColorOrange},
		{UpperBound: 10, Label: "Very High", Color: ColorRed},
		{UpperBound: inf, Label: "Extreme", Color: ColorPurple},
	},
	Humidity: {
		{UpperBound: 30, Exclusive: true, Label: "Dry", Color: ColorOrange},
		{UpperBound: 60, Label: "Normal", Color: ColorGreen},
		{UpperBound: inf, Label: "Humid", Color: ColorBlue},
	},
	Pressure: {
		{UpperBound: 1000, Exclusive: true, Label: "Low", Color: ColorOrange},
		{UpperBound: 1020, Label: "Normal", Color: ColorGreen},
		{UpperBound: inf, Label: "High", Color: ColorBlue},
	},
}

// Table returns a copy of the threshold table for kind, or nil when the kind
// is unknown.
func Table(kind MetricKind) []Band {
	bands, ok := tables[kind]
	if !ok {
		return nil
	}
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
