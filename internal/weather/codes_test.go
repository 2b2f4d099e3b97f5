package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airglance/airglance/internal/weather"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{0, "Clear"},
		{1, "Mostly Clear"},
		{3, "Cloudy"},
		{48, "Foggy"},
		{57, "Freezing Drizzle"},
		{65, "Heavy Rain"},
		{75, "Heavy Snow"},
		{82, "Heavy Rain Showers"},
		{86, "Snow Showers"},
		{99, "Thunderstorm"},
		{4, "Unknown"},
		{-1, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, weather.Describe(tt.code), "code %d", tt.code)
	}
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		code     int
		expected weather.Icon
	}{
		{0, weather.IconSun},
		{1, weather.IconSun},
		{2, weather.IconCloud},
		{45, weather.IconCloud},
		{51, weather.IconRain},
		{67, weather.IconRain},
		{71, weather.IconCloud},
		{77, weather.IconCloud},
		{81, weather.IconRain},
		{85, weather.IconCloud},
		{96, weather.IconRain},
		{42, weather.IconSun},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, weather.IconFor(tt.code), "code %d", tt.code)
	}
}

func TestConditionFor(t *testing.T) {
	tests := []struct {
		code     int
		expected weather.Condition
	}{
		{0, weather.ConditionClear},
		{3, weather.ConditionClouds},
		{45, weather.ConditionFog},
		{53, weather.ConditionDrizzle},
		{63, weather.ConditionRain},
		{80, weather.ConditionRain},
		{73, weather.ConditionSnow},
		{86, weather.ConditionSnow},
		{95, weather.ConditionThunderstorm},
		{100, weather.ConditionUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, weather.ConditionFor(tt.code), "code %d", tt.code)
	}
}
