package weather

var descriptions = map[int]string{
	0:  "Clear",
	1:  "Mostly Clear",
	2:  "Partly Cloudy",
	3:  "Cloudy",
	45: "Foggy",
	48: "Foggy",
	51: "Drizzle",
	53: "Drizzle",
	55: "Drizzle",
	56: "Freezing Drizzle",
	57: "Freezing Drizzle",
	61: "Rain",
	63: "Rain",
	65: "Heavy Rain",
	66: "Freezing Rain",
	67: "Freezing Rain",
	71: "Snow",
	73: "Snow",
	75: "Heavy Snow",
	77: "Snow",
	80: "Rain Showers",
	81: "Rain Showers",
	82: "Heavy Rain Showers",
	85: "Snow Showers",
	86: "Snow Showers",
	95: "Thunderstorm",
	96: "Thunderstorm",
	99: "Thunderstorm",
}

// Describe returns the short description of a WMO weather code.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown"
}

// IconFor returns the icon for a WMO weather code. Snow is drawn as cloud;
// unknown codes fall back to the sun.
func IconFor(code int) Icon {
	switch {
	case code == 0 || code == 1:
		return IconSun
	case code == 2 || code == 3 || code == 45 || code == 48:
		return IconCloud
	case code >= 51 && code <= 67:
		return IconRain
	case code >= 80 && code <= 82:
		return IconRain
	case code >= 95 && code <= 99:
		return IconRain
	case code >= 71 && code <= 77:
		return IconCloud
	case code == 85 || code == 86:
		return IconCloud
	default:
		return IconSun
	}
}

// ConditionFor maps a WMO weather code to a coarse condition.
func ConditionFor(code int) Condition {
	switch {
	case code == 0 || code == 1:
		return ConditionClear
	case code == 2 || code == 3:
		return ConditionClouds
	case code == 45 || code == 48:
		return ConditionFog
	case code >= 51 && code <= 57:
		return ConditionDrizzle
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return ConditionRain
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return ConditionSnow
	case code >= 95 && code <= 99:
		return ConditionThunderstorm
	default:
		return ConditionUnknown
	}
}
