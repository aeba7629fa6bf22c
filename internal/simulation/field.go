package simulation

import (
	"math"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
)

const (
	// GridSize is the number of cells per grid side.
	GridSize = 8

	// gridSpacingM is the distance between adjacent grid cells.
	gridSpacingM = 500.0

	// shoreFalloffKm is the distance over which shore effects decay
	// linearly to zero.
	shoreFalloffKm = 8.0
)

// FieldGenerator expands a single condition pair into a spatially varying
// grid over the racing area.
type FieldGenerator struct {
	gen *Generator

	// ShorePoint is the nearest shoreline reference used for the
	// shore-effect blend.
	ShorePoint geo.LatLon
}

// NewFieldGenerator creates a field generator sharing the condition
// generator's randomness.
func NewFieldGenerator(gen *Generator, shore geo.LatLon) *FieldGenerator {
	return &FieldGenerator{gen: gen, ShorePoint: shore}
}

// Generate produces GridSize*GridSize data points centered on the racing
// area. Wave height never drops below 0.1 m and every coordinate stays
// inside the grid's bounding box.
func (f *FieldGenerator) Generate(weather models.WeatherCondition, marine models.MarineCondition, center geo.LatLon) []models.WeatherDataPoint {
	points := make([]models.WeatherDataPoint, 0, GridSize*GridSize)

	half := (GridSize - 1) / 2.0

	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			eastM := (float64(col) - half) * gridSpacingM
			northM := (float64(row) - half) * gridSpacingM
			cell := geo.OffsetMeters(center, eastM, northM)

			shoreKm := geo.DistanceKm(cell, f.ShorePoint)
			shore := shoreBlend(shoreKm)
			open := 1 - shore

			// Shore turbulence knocks wind down and bends it; open
			// water builds the sea state.
			speed := weather.WindSpeedKn * (1 - 0.25*shore)
			speed += f.gen.uniform(-1, 1)
			if speed < 0 {
				speed = 0
			}

			direction := models.NormalizeDirection(
				weather.WindDirection + 15*shore*f.gen.uniform(-1, 1) + f.gen.uniform(-5, 5))

			wave := marine.WaveHeightM * (0.6 + 0.4*open)
			wave += f.gen.uniform(-0.1, 0.1)
			if wave < 0.1 {
				wave = 0.1
			}

			tide := marine.TideHeightM + f.gen.uniform(-0.05, 0.05)
			current := marine.Current.SpeedKn * (0.8 + 0.4*open)
			temperature := weather.TemperatureC + 0.5*shore + f.gen.uniform(-0.3, 0.3)

			points = append(points, models.WeatherDataPoint{
				Latitude:      cell.Lat,
				Longitude:     cell.Lon,
				WindSpeedKn:   round1(speed),
				WindDirection: round1(direction),
				WaveHeightM:   round2(wave),
				TideHeightM:   round2(tide),
				CurrentKn:     round2(current),
				TemperatureC:  round1(temperature),
				Intensity:     round2(intensity(speed)),
			})
		}
	}

	return points
}

// Bounds returns the bounding box of the grid around a center.
func Bounds(center geo.LatLon) (southWest, northEast geo.LatLon) {
	half := (GridSize - 1) / 2.0
	extent := half * gridSpacingM

	southWest = geo.OffsetMeters(center, -extent, -extent)
	northEast = geo.OffsetMeters(center, extent, extent)
	return
}

// shoreBlend is 1 at the shoreline decaying linearly to 0 at
// shoreFalloffKm offshore.
func shoreBlend(distanceKm float64) float64 {
	b := 1 - distanceKm/shoreFalloffKm
	return math.Max(0, math.Min(1, b))
}

// intensity normalizes wind speed to 0..1 against a 30 kn rendering cap.
func intensity(windSpeedKn float64) float64 {
	return math.Max(0, math.Min(1, windSpeedKn/30))
}
