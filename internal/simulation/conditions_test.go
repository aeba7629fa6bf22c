package simulation

import (
	"testing"
	"time"

	"regatta-server/internal/models"
)

func TestGenerator_Weather_Invariants(t *testing.T) {
	patterns := []models.WindPattern{
		PatternFor(time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)),
		PatternFor(time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)),
		PatternFor(time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)),
		PatternFor(time.Date(2026, 10, 12, 2, 0, 0, 0, time.UTC)),
	}

	for seed := int64(1); seed <= 50; seed++ {
		gen := NewGenerator(seed)

		for _, pattern := range patterns {
			w := gen.Weather(pattern)

			if w.WindSpeedKn < 0 {
				t.Errorf("seed %d: WindSpeedKn = %v, want >= 0", seed, w.WindSpeedKn)
			}
			if w.WindDirection < 0 || w.WindDirection >= 360 {
				t.Errorf("seed %d: WindDirection = %v, want [0,360)", seed, w.WindDirection)
			}
			if w.WindGustKn < w.WindSpeedKn {
				t.Errorf("seed %d: WindGustKn = %v below WindSpeedKn = %v", seed, w.WindGustKn, w.WindSpeedKn)
			}
			if w.VisibilityKm <= 0 {
				t.Errorf("seed %d: VisibilityKm = %v, want > 0", seed, w.VisibilityKm)
			}
			if w.Humidity < 0 || w.Humidity > 100 {
				t.Errorf("seed %d: Humidity = %v, want [0,100]", seed, w.Humidity)
			}
			if w.Conditions == "" {
				t.Errorf("seed %d: Conditions description is empty", seed)
			}
		}
	}
}

func TestGenerator_Weather_SeaBreezeStrengthens(t *testing.T) {
	// Identical patterns apart from the sea breeze flag: averaged over many
	// draws, the sea breeze run must come out windier.
	base := models.WindPattern{
		Season:        models.SeasonSummer,
		Monsoon:       models.MonsoonSouthwest,
		TimeOfDay:     models.TimeAfternoon,
		SeaBreeze:     false,
		ThermalEffect: 1,
	}
	breeze := base
	breeze.SeaBreeze = true

	const runs = 200
	var calmSum, breezeSum float64

	calmGen := NewGenerator(7)
	breezeGen := NewGenerator(7)
	for i := 0; i < runs; i++ {
		calmSum += calmGen.Weather(base).WindSpeedKn
		breezeSum += breezeGen.Weather(breeze).WindSpeedKn
	}

	if breezeSum <= calmSum {
		t.Errorf("mean sea breeze speed %.2f not above baseline %.2f", breezeSum/runs, calmSum/runs)
	}
}

func TestGenerator_Marine_Invariants(t *testing.T) {
	now := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)

	for seed := int64(1); seed <= 50; seed++ {
		gen := NewGenerator(seed)
		pattern := PatternFor(now)
		weather := gen.Weather(pattern)
		m := gen.Marine(pattern, weather, now)

		if m.WaveHeightM < 0.1 {
			t.Errorf("seed %d: WaveHeightM = %v, want >= 0.1", seed, m.WaveHeightM)
		}
		if m.SwellDirection < 0 || m.SwellDirection >= 360 {
			t.Errorf("seed %d: SwellDirection = %v, want [0,360)", seed, m.SwellDirection)
		}
		if m.TideHeightM < 0.5 || m.TideHeightM > 2.3 {
			t.Errorf("seed %d: TideHeightM = %v outside the 1.4 +/- 0.9 envelope", seed, m.TideHeightM)
		}
		if !m.TideTime.After(now) {
			t.Errorf("seed %d: TideTime = %v, want after %v", seed, m.TideTime, now)
		}
		switch m.TideType {
		case models.TideRising, models.TideFalling, models.TideHigh, models.TideLow:
		default:
			t.Errorf("seed %d: unknown TideType %q", seed, m.TideType)
		}
		if m.Current.SpeedKn < 0 {
			t.Errorf("seed %d: current SpeedKn = %v, want >= 0", seed, m.Current.SpeedKn)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	now := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)
	pattern := PatternFor(now)

	genA := NewGenerator(42)
	genB := NewGenerator(42)

	weatherA := genA.Weather(pattern)
	weatherB := genB.Weather(pattern)
	if weatherA != weatherB {
		t.Errorf("same seed produced different weather:\n%+v\n%+v", weatherA, weatherB)
	}

	marineA := genA.Marine(pattern, weatherA, now)
	marineB := genB.Marine(pattern, weatherB, now)
	if marineA != marineB {
		t.Errorf("same seed produced different marine state:\n%+v\n%+v", marineA, marineB)
	}
}

func TestBlendDirection(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		w        float64
		want     float64
	}{
		{"zero weight keeps from", 40, 160, 0, 40},
		{"full weight reaches to", 40, 160, 1, 160},
		{"midpoint", 40, 160, 0.5, 100},
		{"shortest arc across north", 350, 10, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blendDirection(tt.from, tt.to, tt.w); got != tt.want {
				t.Errorf("blendDirection(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.w, got, tt.want)
			}
		})
	}
}
