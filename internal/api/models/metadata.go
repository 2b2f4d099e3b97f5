package models

import (
	"math"

	"github.com/airglance/airglance/internal/classify"
)

// ThresholdBand is one tier of a metric's threshold table.
type ThresholdBand struct {
	Index int `json:"index"`
	// UpperBound is null for the open-ended last band.
	UpperBound  *float64 `json:"upperBound"`
	Exclusive   bool     `json:"exclusive,omitempty"`
	Label       string   `json:"label"`
	Color       string   `json:"color"`
	Description string   `json:"description,omitempty"`
}

// MetricTable describes how a metric kind is classified and displayed.
type MetricTable struct {
	Kind     classify.MetricKind `json:"kind"`
	Name     string              `json:"name"`
	GaugeMax float64             `json:"gaugeMax"`
	Bands    []ThresholdBand     `json:"bands"`
}

// MetricTables is the response of the metric metadata endpoint.
type MetricTables struct {
	Items []MetricTable `json:"items"`
}

// NewMetricTable builds the table for kind.
func NewMetricTable(kind classify.MetricKind) MetricTable {
	bands := classify.Table(kind)
	table := MetricTable{
		Kind:     kind,
		Name:     kind.DisplayName(),
		GaugeMax: classify.GaugeMax(kind),
		Bands:    make([]ThresholdBand, 0, len(bands)),
	}

	for i, b := range bands {
		band := ThresholdBand{
			Index:       i,
			Exclusive:   b.Exclusive,
			Label:       b.Label,
			Color:       b.Color,
			Description: b.Description,
		}
		// JSON cannot carry infinity
		if !math.IsInf(b.UpperBound, 1) {
			upper := b.UpperBound
			band.UpperBound = &upper
		}
		table.Bands = append(table.Bands, band)
	}

	return table
}

// NewMetricTables builds tables for every supported kind.
func NewMetricTables() MetricTables {
	kinds := classify.Kinds()
	tables := MetricTables{Items: make([]MetricTable, 0, len(kinds))}
	for _, kind := range kinds {
		tables.Items = append(tables.Items, NewMetricTable(kind))
	}
	return tables
}
