package models

import (
	"math"
	"time"
)

// Season identifies the seasonal regime used by the simulator.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// Monsoon identifies the prevailing-wind regime.
type Monsoon string

const (
	MonsoonNortheast  Monsoon = "northeast"
	MonsoonSouthwest  Monsoon = "southwest"
	MonsoonTransition Monsoon = "transition"
)

// TimeOfDay buckets the clock hour for thermal modelling.
type TimeOfDay string

const (
	TimeNight     TimeOfDay = "night"
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
)

// WindPattern is the seasonal context every simulated condition derives from.
// It is a pure function of the wall clock, see simulation.PatternFor.
type WindPattern struct {
	Season        Season    `json:"season"`
	Monsoon       Monsoon   `json:"monsoon"`
	TimeOfDay     TimeOfDay `json:"time_of_day"`
	SeaBreeze     bool      `json:"sea_breeze"`
	ThermalEffect float64   `json:"thermal_effect"` // 0..1
}

// WeatherCondition is one simulated or observed atmospheric snapshot.
// Regenerated on every tick, never mutated in place.
type WeatherCondition struct {
	TemperatureC  float64 `json:"temperature_c"`
	WindSpeedKn   float64 `json:"wind_speed_kn"`
	WindDirection float64 `json:"wind_direction"` // degrees true, [0,360)
	WindGustKn    float64 `json:"wind_gust_kn"`
	VisibilityKm  float64 `json:"visibility_km"`
	PressureHpa   float64 `json:"pressure_hpa"`
	Humidity      float64 `json:"humidity"` // percent
	Conditions    string  `json:"conditions"`
}

// TideState describes the phase of the tide at snapshot time.
type TideState string

const (
	TideRising  TideState = "rising"
	TideFalling TideState = "falling"
	TideHigh    TideState = "high"
	TideLow     TideState = "low"
)

// Current is a water current vector.
type Current struct {
	SpeedKn   float64 `json:"speed_kn"`
	Direction float64 `json:"direction"`
}

// MarineCondition is the sea-state companion to WeatherCondition.
type MarineCondition struct {
	WaveHeightM    float64   `json:"wave_height_m"` // clamped >= 0.1
	SwellPeriodS   float64   `json:"swell_period_s"`
	SwellDirection float64   `json:"swell_direction"`
	TideHeightM    float64   `json:"tide_height_m"`
	TideTime       time.Time `json:"tide_time"` // next high/low water
	TideType       TideState `json:"tide_type"`
	Current        Current   `json:"current"`
}

// WeatherDataPoint is one cell of the spatial racing-area grid, carrying
// interpolated values plus a 0..1 intensity scalar for rendering.
type WeatherDataPoint struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	WindSpeedKn   float64 `json:"wind_speed_kn"`
	WindDirection float64 `json:"wind_direction"`
	WaveHeightM   float64 `json:"wave_height_m"`
	TideHeightM   float64 `json:"tide_height_m"`
	CurrentKn     float64 `json:"current_kn"`
	TemperatureC  float64 `json:"temperature_c"`
	Intensity     float64 `json:"intensity"`
}

// ConditionSnapshot bundles everything one simulation tick produces.
type ConditionSnapshot struct {
	Weather     WeatherCondition   `json:"weather"`
	Marine      MarineCondition    `json:"marine"`
	Grid        []WeatherDataPoint `json:"grid"`
	GeneratedAt time.Time          `json:"generated_at"`
	Source      string             `json:"source"` // "live", "cached", "simulated"
}

// NormalizeDirection wraps a bearing into [0,360).
func NormalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// DouglasSeaState maps a wave height to the Douglas scale degree 0-9
// and its display label.
func DouglasSeaState(waveHeightM float64) (int, string) {
	scale := []struct {
		maxHeight float64
		label     string
	}{
		{0.01, "Calm (glassy)"},
		{0.1, "Calm (rippled)"},
		{0.5, "Smooth"},
		{1.25, "Slight"},
		{2.5, "Moderate"},
		{4.0, "Rough"},
		{6.0, "Very rough"},
		{9.0, "High"},
		{14.0, "Very high"},
	}

	for degree, band := range scale {
		if waveHeightM < band.maxHeight {
			return degree, band.label
		}
	}
	return 9, "Phenomenal"
}
