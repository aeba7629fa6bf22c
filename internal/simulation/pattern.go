package simulation

import (
	"math"
	"time"

	"regatta-server/internal/models"
)

// PatternFor derives the seasonal wind pattern from a timestamp.
// Pure function: the same instant always yields the same pattern.
//
// The regime follows the South China coast: the northeast monsoon
// dominates October through March, the southwest monsoon May through
// August, with April and September as transition months.
func PatternFor(t time.Time) models.WindPattern {
	month := t.Month()
	hour := t.Hour()

	var season models.Season
	switch {
	case month == time.December || month <= time.February:
		season = models.SeasonWinter
	case month <= time.May:
		season = models.SeasonSpring
	case month <= time.August:
		season = models.SeasonSummer
	default:
		season = models.SeasonAutumn
	}

	var monsoon models.Monsoon
	switch {
	case month >= time.October || month <= time.March:
		monsoon = models.MonsoonNortheast
	case month >= time.May && month <= time.August:
		monsoon = models.MonsoonSouthwest
	default:
		monsoon = models.MonsoonTransition
	}

	var timeOfDay models.TimeOfDay
	switch {
	case hour < 6:
		timeOfDay = models.TimeNight
	case hour < 12:
		timeOfDay = models.TimeMorning
	case hour < 18:
		timeOfDay = models.TimeAfternoon
	default:
		timeOfDay = models.TimeEvening
	}

	// Thermal gradient peaks mid-afternoon and vanishes overnight.
	thermal := 1 - math.Abs(float64(hour)-14)/8
	if thermal < 0 {
		thermal = 0
	}

	// Onshore sea breeze develops on warm afternoons outside the
	// depths of the northeast monsoon.
	seaBreeze := timeOfDay == models.TimeAfternoon &&
		month >= time.April && month <= time.October

	return models.WindPattern{
		Season:        season,
		Monsoon:       monsoon,
		TimeOfDay:     timeOfDay,
		SeaBreeze:     seaBreeze,
		ThermalEffect: thermal,
	}
}
