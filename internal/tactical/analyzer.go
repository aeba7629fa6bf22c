package tactical

import (
	"fmt"
	"math"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
)

// FavoredEnd names the advantaged end of the start line.
type FavoredEnd string

const (
	EndPort      FavoredEnd = "port"
	EndStarboard FavoredEnd = "starboard"
	EndNeutral   FavoredEnd = "neutral"
)

// Confidence buckets how decisive a classification is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Stability classifies recent wind direction behavior.
type Stability string

const (
	WindSteady      Stability = "steady"
	WindOscillating Stability = "oscillating"
	WindShifty      Stability = "shifty"
)

// CurrentImpact grades how much the water current matters against the wind.
type CurrentImpact string

const (
	CurrentNegligible  CurrentImpact = "negligible"
	CurrentModerate    CurrentImpact = "moderate"
	CurrentSignificant CurrentImpact = "significant"
)

// Config holds the classification thresholds. They are racing heuristics,
// not derived constants, so deployments may tune them.
type Config struct {
	// NeutralBandDeg: below this line-to-wind angle the line is square.
	NeutralBandDeg float64
	// SquareBandDeg: boundary between the direct and the
	// supplementary-angle bias rules.
	SquareBandDeg float64
	// HighBiasDeg and MediumBiasDeg bucket bias magnitude into confidence.
	HighBiasDeg   float64
	MediumBiasDeg float64
	// SteadyBandDeg / OscillatingBandDeg bucket direction swing.
	SteadyBandDeg      float64
	OscillatingBandDeg float64
	// ModerateCurrentRatio / SignificantCurrentRatio bucket current speed
	// relative to wind speed.
	ModerateCurrentRatio    float64
	SignificantCurrentRatio float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		NeutralBandDeg:          10,
		SquareBandDeg:           90,
		HighBiasDeg:             15,
		MediumBiasDeg:           8,
		SteadyBandDeg:           10,
		OscillatingBandDeg:      25,
		ModerateCurrentRatio:    0.05,
		SignificantCurrentRatio: 0.15,
	}
}

// StartLineAnalysis is the verdict for one start line and wind.
type StartLineAnalysis struct {
	FavoredEnd FavoredEnd `json:"favored_end"`
	BiasAngle  float64    `json:"bias_angle"`
	Confidence Confidence `json:"confidence"`
	Advice     string     `json:"advice"`
}

// StabilityAnalysis is the wind-behavior verdict.
type StabilityAnalysis struct {
	Stability Stability `json:"stability"`
	SwingDeg  float64   `json:"swing_deg"`
	Advice    string    `json:"advice"`
}

// CurrentAnalysis is the current-impact verdict.
type CurrentAnalysis struct {
	Impact CurrentImpact `json:"impact"`
	Ratio  float64       `json:"ratio"`
	Advice string        `json:"advice"`
}

// Analyzer performs rule-based tactical classification. Stateless given
// its inputs.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// StartLine classifies the favored end of a start line.
//
// lineBearing is the bearing from the port (pin) end to the starboard
// (committee boat) end. A positive wind-to-line angle within the square
// band favors the end the wind has rotated toward; beyond it the
// supplementary angle applies and the verdict flips.
func (a *Analyzer) StartLine(windDirection, lineBearing float64) StartLineAnalysis {
	delta := geo.Wrap180(windDirection - lineBearing)
	abs := math.Abs(delta)

	var end FavoredEnd
	var bias float64

	switch {
	case abs < a.cfg.NeutralBandDeg:
		end = EndNeutral
		bias = abs
	case abs < a.cfg.SquareBandDeg:
		bias = abs
		if delta > 0 {
			end = EndStarboard
		} else {
			end = EndPort
		}
	default:
		bias = 180 - abs
		if delta > 0 {
			end = EndPort
		} else {
			end = EndStarboard
		}
		if bias < a.cfg.NeutralBandDeg {
			end = EndNeutral
		}
	}

	confidence := a.biasConfidence(bias)

	return StartLineAnalysis{
		FavoredEnd: end,
		BiasAngle:  round1(bias),
		Confidence: confidence,
		Advice:     startLineAdvice(end, confidence, bias),
	}
}

func (a *Analyzer) biasConfidence(bias float64) Confidence {
	switch {
	case bias >= a.cfg.HighBiasDeg:
		return ConfidenceHigh
	case bias >= a.cfg.MediumBiasDeg:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func startLineAdvice(end FavoredEnd, confidence Confidence, bias float64) string {
	switch end {
	case EndNeutral:
		return "Line is square. Start where you find clear air and can sail your own race."
	case EndPort:
		if confidence == ConfidenceHigh {
			return fmt.Sprintf("Pin end strongly favored by %.0f°. Expect a crowd; set up early and protect the hole to leeward.", bias)
		}
		return fmt.Sprintf("Pin end favored by %.0f°. Worth starting down the line if traffic allows.", bias)
	case EndStarboard:
		if confidence == ConfidenceHigh {
			return fmt.Sprintf("Committee boat end strongly favored by %.0f°. Start at the boat and tack onto the lift early.", bias)
		}
		return fmt.Sprintf("Committee boat end favored by %.0f°. A boat-end start keeps options open to the right.", bias)
	}
	return ""
}

// Stability classifies wind behavior from a series of recent direction
// samples. With fewer than two samples the wind reads as steady.
func (a *Analyzer) Stability(directions []float64) StabilityAnalysis {
	swing := maxSwing(directions)

	var s Stability
	switch {
	case swing < a.cfg.SteadyBandDeg:
		s = WindSteady
	case swing < a.cfg.OscillatingBandDeg:
		s = WindOscillating
	default:
		s = WindShifty
	}

	return StabilityAnalysis{
		Stability: s,
		SwingDeg:  round1(swing),
		Advice:    stabilityAdvice(s),
	}
}

func stabilityAdvice(s Stability) string {
	switch s {
	case WindSteady:
		return "Breeze is steady. Boat speed and lane choice decide this one."
	case WindOscillating:
		return "Regular oscillations. Tack on the headers and stay near the middle."
	default:
		return "Large unstable shifts. Keep your head out of the boat and bank gains early."
	}
}

// CurrentImpact grades the current against the wind speed.
func (a *Analyzer) CurrentImpact(current models.Current, windSpeedKn float64) CurrentAnalysis {
	var ratio float64
	if windSpeedKn > 0 {
		ratio = current.SpeedKn / windSpeedKn
	} else if current.SpeedKn > 0 {
		ratio = 1
	}

	var impact CurrentImpact
	switch {
	case ratio < a.cfg.ModerateCurrentRatio:
		impact = CurrentNegligible
	case ratio < a.cfg.SignificantCurrentRatio:
		impact = CurrentModerate
	default:
		impact = CurrentSignificant
	}

	return CurrentAnalysis{
		Impact: impact,
		Ratio:  round2(ratio),
		Advice: currentAdvice(impact),
	}
}

func currentAdvice(impact CurrentImpact) string {
	switch impact {
	case CurrentNegligible:
		return "Current is not a factor today."
	case CurrentModerate:
		return "Allow for the current on the start line and at mark roundings."
	default:
		return "Strong current relative to the breeze. Check transits before the start and overstand laylines accordingly."
	}
}

// maxSwing returns the largest angular spread among the samples.
func maxSwing(directions []float64) float64 {
	if len(directions) < 2 {
		return 0
	}

	ref := directions[0]
	min, max := 0.0, 0.0
	for _, d := range directions[1:] {
		diff := geo.Wrap180(d - ref)
		if diff < min {
			min = diff
		}
		if diff > max {
			max = diff
		}
	}

	return max - min
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
