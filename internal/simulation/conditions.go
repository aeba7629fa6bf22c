package simulation

import (
	"math"
	"math/rand"
	"time"

	"regatta-server/internal/models"
)

// windRange is the base envelope a monsoon regime draws from.
type windRange struct {
	minSpeedKn float64
	maxSpeedKn float64
	minDirDeg  float64
	maxDirDeg  float64
}

// Base wind envelopes per monsoon regime. The transition regime has no
// prevailing direction, so it spans the full circle.
var monsoonWinds = map[models.Monsoon]windRange{
	models.MonsoonNortheast:  {minSpeedKn: 12, maxSpeedKn: 22, minDirDeg: 40, maxDirDeg: 90},
	models.MonsoonSouthwest:  {minSpeedKn: 8, maxSpeedKn: 16, minDirDeg: 200, maxDirDeg: 250},
	models.MonsoonTransition: {minSpeedKn: 5, maxSpeedKn: 12, minDirDeg: 0, maxDirDeg: 360},
}

// Afternoon onshore breeze direction on the racing area.
const seaBreezeDirection = 160.0

// Generator produces weather and marine conditions from a wind pattern.
// Randomness is the only source of variation; generation never fails.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a condition generator seeded from the given source.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// uniform returns a value in [min,max).
func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// Weather generates one atmospheric snapshot for the pattern.
func (g *Generator) Weather(pattern models.WindPattern) models.WeatherCondition {
	base := monsoonWinds[pattern.Monsoon]

	speed := g.uniform(base.minSpeedKn, base.maxSpeedKn)
	direction := g.uniform(base.minDirDeg, base.maxDirDeg)

	if pattern.SeaBreeze {
		// Additive onshore component pulls both speed and direction.
		breeze := g.uniform(3, 6)
		speed += breeze
		direction = blendDirection(direction, seaBreezeDirection, 0.4)
	}

	speed *= 1 + 0.3*pattern.ThermalEffect
	speed += g.uniform(-1.5, 1.5)
	if speed < 0 {
		speed = 0
	}

	direction = models.NormalizeDirection(direction + g.uniform(-10, 10))

	gust := speed * g.uniform(1.15, 1.4)

	return models.WeatherCondition{
		TemperatureC:  g.temperature(pattern),
		WindSpeedKn:   round1(speed),
		WindDirection: round1(direction),
		WindGustKn:    round1(gust),
		VisibilityKm:  round1(g.visibility(pattern)),
		PressureHpa:   round1(g.pressure(pattern)),
		Humidity:      math.Round(g.humidity(pattern)),
		Conditions:    describeConditions(speed, pattern),
	}
}

// Marine generates the sea state consistent with the weather snapshot.
func (g *Generator) Marine(pattern models.WindPattern, weather models.WeatherCondition, now time.Time) models.MarineCondition {
	wave := weather.WindSpeedKn*0.08 + g.uniform(-0.2, 0.3)
	if wave < 0.1 {
		wave = 0.1
	}

	swellDir := models.NormalizeDirection(weather.WindDirection + g.uniform(-30, 30))

	tideHeight, tideType, tideTime := g.tide(now)

	return models.MarineCondition{
		WaveHeightM:    round2(wave),
		SwellPeriodS:   round1(g.uniform(4, 9)),
		SwellDirection: round1(swellDir),
		TideHeightM:    round2(tideHeight),
		TideTime:       tideTime,
		TideType:       tideType,
		Current: models.Current{
			SpeedKn:   round2(g.uniform(0.2, 1.2)),
			Direction: round1(models.NormalizeDirection(swellDir + g.uniform(-45, 45))),
		},
	}
}

// tide models a semi-diurnal cycle (12.42 h period) around a 1.4 m mean.
func (g *Generator) tide(now time.Time) (float64, models.TideState, time.Time) {
	const periodHours = 12.42
	const meanHeight = 1.4
	const amplitude = 0.9

	phase := math.Mod(float64(now.Unix())/3600.0, periodHours) / periodHours * 2 * math.Pi
	height := meanHeight + amplitude*math.Sin(phase)

	// Derivative of the sine decides rising vs falling; the extremes get
	// their own state near the turn.
	slope := math.Cos(phase)

	var state models.TideState
	switch {
	case math.Abs(slope) < 0.1 && height > meanHeight:
		state = models.TideHigh
	case math.Abs(slope) < 0.1:
		state = models.TideLow
	case slope > 0:
		state = models.TideRising
	default:
		state = models.TideFalling
	}

	// Next turn of the tide: the remaining fraction of the half period.
	halfPeriod := periodHours / 2
	hoursIntoHalf := math.Mod(float64(now.Unix())/3600.0, halfPeriod)
	next := now.Add(time.Duration((halfPeriod - hoursIntoHalf) * float64(time.Hour)))

	return height, state, next
}

func (g *Generator) temperature(pattern models.WindPattern) float64 {
	var base, span float64
	switch pattern.Season {
	case models.SeasonWinter:
		base, span = 15, 5
	case models.SeasonSpring:
		base, span = 20, 6
	case models.SeasonSummer:
		base, span = 27, 5
	default:
		base, span = 22, 6
	}

	t := g.uniform(base, base+span)

	switch pattern.TimeOfDay {
	case models.TimeNight:
		t -= 2
	case models.TimeAfternoon:
		t += 1.5 * pattern.ThermalEffect
	}

	return round1(t)
}

func (g *Generator) visibility(pattern models.WindPattern) float64 {
	// Winter haze over the Pearl River estuary shortens visibility.
	if pattern.Season == models.SeasonWinter {
		return g.uniform(5, 11)
	}
	return g.uniform(8, 16)
}

func (g *Generator) pressure(pattern models.WindPattern) float64 {
	if pattern.Monsoon == models.MonsoonNortheast {
		return g.uniform(1014, 1024)
	}
	return g.uniform(1004, 1014)
}

func (g *Generator) humidity(pattern models.WindPattern) float64 {
	if pattern.Season == models.SeasonSummer {
		return g.uniform(75, 95)
	}
	return g.uniform(60, 85)
}

func describeConditions(windSpeedKn float64, pattern models.WindPattern) string {
	switch {
	case windSpeedKn < 4:
		return "Light airs"
	case windSpeedKn < 10:
		if pattern.SeaBreeze {
			return "Light sea breeze"
		}
		return "Light breeze"
	case windSpeedKn < 16:
		return "Moderate breeze"
	case windSpeedKn < 22:
		return "Fresh breeze"
	default:
		return "Strong breeze"
	}
}

// blendDirection mixes two bearings along the shortest arc.
// w is the weight of the target direction.
func blendDirection(from, to, w float64) float64 {
	diff := math.Mod(to-from+540, 360) - 180
	return models.NormalizeDirection(from + diff*w)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
