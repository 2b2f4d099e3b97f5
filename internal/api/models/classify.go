package models

import "github.com/airglance/airglance/internal/classify"

// Classification is the response of the classify endpoint: the gauge for a
// single reading and the table it was classified against.
type Classification struct {
	Gauge classify.Gauge `json:"gauge"`
	Table MetricTable    `json:"table"`
}
