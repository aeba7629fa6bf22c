package models

import "fmt"

// StationKind distinguishes the reference station tables.
type StationKind string

const (
	StationTide StationKind = "tide"
	StationWave StationKind = "wave"
	StationWind StationKind = "wind"
)

// Valid reports whether the kind is one of the known values.
func (k StationKind) Valid() bool {
	switch k {
	case StationTide, StationWave, StationWind:
		return true
	}
	return false
}

// Station is static reference data, immutable for the process lifetime.
type Station struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Kind      StationKind `json:"kind"`
	Verified  bool        `json:"verified"`
	Operator  string      `json:"operator"`
}

// Validate checks coordinate ranges and required fields.
func (s *Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}
	switch s.Kind {
	case StationTide, StationWave, StationWind:
	default:
		return fmt.Errorf("invalid station kind: %s", s.Kind)
	}
	return nil
}
