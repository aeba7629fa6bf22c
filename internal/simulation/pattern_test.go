package simulation

import (
	"testing"
	"time"

	"regatta-server/internal/models"
)

func TestPatternFor(t *testing.T) {
	tests := []struct {
		name        string
		at          time.Time
		checkValues func(*testing.T, models.WindPattern)
	}{
		{
			name: "january afternoon is northeast monsoon without sea breeze",
			at:   time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.Season != models.SeasonWinter {
					t.Errorf("Season = %v, want %v", p.Season, models.SeasonWinter)
				}
				if p.Monsoon != models.MonsoonNortheast {
					t.Errorf("Monsoon = %v, want %v", p.Monsoon, models.MonsoonNortheast)
				}
				if p.SeaBreeze {
					t.Error("SeaBreeze should not develop in January")
				}
				if p.ThermalEffect != 1 {
					t.Errorf("ThermalEffect = %v, want 1 at 14:00", p.ThermalEffect)
				}
			},
		},
		{
			name: "july afternoon is southwest monsoon with sea breeze",
			at:   time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.Season != models.SeasonSummer {
					t.Errorf("Season = %v, want %v", p.Season, models.SeasonSummer)
				}
				if p.Monsoon != models.MonsoonSouthwest {
					t.Errorf("Monsoon = %v, want %v", p.Monsoon, models.MonsoonSouthwest)
				}
				if !p.SeaBreeze {
					t.Error("SeaBreeze should develop on a July afternoon")
				}
			},
		},
		{
			name: "april is a transition month",
			at:   time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.Monsoon != models.MonsoonTransition {
					t.Errorf("Monsoon = %v, want %v", p.Monsoon, models.MonsoonTransition)
				}
				if p.TimeOfDay != models.TimeMorning {
					t.Errorf("TimeOfDay = %v, want %v", p.TimeOfDay, models.TimeMorning)
				}
			},
		},
		{
			name: "september is a transition month",
			at:   time.Date(2026, 9, 20, 13, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.Monsoon != models.MonsoonTransition {
					t.Errorf("Monsoon = %v, want %v", p.Monsoon, models.MonsoonTransition)
				}
			},
		},
		{
			name: "overnight thermal effect vanishes",
			at:   time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.TimeOfDay != models.TimeNight {
					t.Errorf("TimeOfDay = %v, want %v", p.TimeOfDay, models.TimeNight)
				}
				if p.ThermalEffect != 0 {
					t.Errorf("ThermalEffect = %v, want 0 at 03:00", p.ThermalEffect)
				}
				if p.SeaBreeze {
					t.Error("SeaBreeze should not develop at night")
				}
			},
		},
		{
			name: "october afternoon keeps the sea breeze under the early northeast monsoon",
			at:   time.Date(2026, 10, 12, 14, 0, 0, 0, time.UTC),
			checkValues: func(t *testing.T, p models.WindPattern) {
				if p.Monsoon != models.MonsoonNortheast {
					t.Errorf("Monsoon = %v, want %v", p.Monsoon, models.MonsoonNortheast)
				}
				if !p.SeaBreeze {
					t.Error("SeaBreeze should still develop in October")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkValues(t, PatternFor(tt.at))
		})
	}
}

func TestPatternFor_Deterministic(t *testing.T) {
	at := time.Date(2026, 3, 8, 11, 30, 0, 0, time.UTC)

	first := PatternFor(at)
	for i := 0; i < 10; i++ {
		if got := PatternFor(at); got != first {
			t.Fatalf("PatternFor is not deterministic: %+v != %+v", got, first)
		}
	}
}
