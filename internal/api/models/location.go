package models

import "github.com/airglance/airglance/internal/location"

// LocationList is the response of the city search endpoint.
type LocationList struct {
	Query string              `json:"query"`
	Items []location.Location `json:"items"`
}

// NearestLocation is the response of the nearest city endpoint.
type NearestLocation struct {
	Query    Point             `json:"query"`
	Location location.Location `json:"location"`
}
