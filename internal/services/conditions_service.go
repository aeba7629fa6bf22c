package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"regatta-server/internal/events"
	"regatta-server/internal/models"
	"regatta-server/internal/notify"
	"regatta-server/internal/simulation"
	"regatta-server/internal/stream"
	"regatta-server/internal/tactical"
	"regatta-server/internal/windfield"
	"regatta-server/pkg/cache"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

const (
	cacheKeyConditions = "conditions:last"
	conditionsCacheTTL = 30 * time.Minute

	// maxDirectionSamples bounds the wind history used for stability
	// classification. Twelve samples at the 5-minute tick is one hour.
	maxDirectionSamples = 12
)

// Marker is one renderable grid annotation for the racing-area map.
type Marker struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Icon      string  `json:"icon"`
	Rotation  float64 `json:"rotation"` // wind direction, degrees true
	Color     string  `json:"color"`
	Label     string  `json:"label"`
}

// TacticalReport bundles the pre-start verdicts for one start line.
type TacticalReport struct {
	StartLine     tactical.StartLineAnalysis `json:"start_line"`
	Wind          tactical.StabilityAnalysis `json:"wind"`
	Current       tactical.CurrentAnalysis   `json:"current"`
	WindSpeedKn   float64                    `json:"wind_speed_kn"`
	WindDirection float64                    `json:"wind_direction"`
	SeaState      int                        `json:"sea_state"`
	SeaStateLabel string                     `json:"sea_state_label"`
	Source        string                     `json:"source"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// ConditionsService produces the racing-area conditions every other
// feature reads from. Reads resolve live wind -> cached snapshot ->
// simulation; the simulation tier always answers, so a conditions read
// never fails.
type ConditionsService struct {
	engine   *simulation.Engine
	wind     *windfield.Provider
	cache    *cache.RedisCache
	broker   *stream.Broker
	events   *events.Publisher
	notifier notify.Notifier
	analyzer *tactical.Analyzer
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector

	mu          sync.Mutex
	liveHealthy bool
	directions  []float64
	lastSample  time.Time
}

// NewConditionsService creates the conditions service. wind and cache may
// be nil; the service then starts at the corresponding fallback tier.
func NewConditionsService(
	engine *simulation.Engine,
	wind *windfield.Provider,
	redisCache *cache.RedisCache,
	broker *stream.Broker,
	publisher *events.Publisher,
	notifier notify.Notifier,
	analyzer *tactical.Analyzer,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ConditionsService {
	return &ConditionsService{
		engine:      engine,
		wind:        wind,
		cache:       redisCache,
		broker:      broker,
		events:      publisher,
		notifier:    notifier,
		analyzer:    analyzer,
		logger:      logger,
		metrics:     metricsCollector,
		liveHealthy: true,
	}
}

// Current returns the freshest conditions snapshot available.
func (s *ConditionsService) Current(ctx context.Context) *models.ConditionSnapshot {
	snap := s.resolve(ctx)
	s.metrics.ConditionsSource.WithLabelValues(snap.Source).Inc()
	return snap
}

// resolve walks the fallback chain. The simulated baseline is always
// generated first: it carries the marine state and spatial grid that a
// live wind reading only adjusts.
func (s *ConditionsService) resolve(ctx context.Context) *models.ConditionSnapshot {
	base := s.engine.Current()
	s.recordDirection(base)

	if s.wind == nil {
		return base
	}

	center := s.engine.Center()
	direction, speedKn, err := s.wind.WindAt(center.Lat, center.Lon)
	if err == nil {
		live := overlayLiveWind(base, direction, speedKn)
		s.markLiveHealth(ctx, true, nil)

		if s.cache != nil {
			if cacheErr := s.cache.SetJSON(ctx, cacheKeyConditions, live, conditionsCacheTTL); cacheErr != nil {
				s.logger.Warn(ctx, "[CONDITIONS_CACHE] Failed to store live snapshot", logging.Fields{}, cacheErr)
			}
		}

		return live
	}

	s.markLiveHealth(ctx, false, err)

	if s.cache != nil {
		var cached models.ConditionSnapshot
		if cacheErr := s.cache.GetJSON(ctx, cacheKeyConditions, &cached); cacheErr == nil {
			s.metrics.RecordFallback("conditions", "cache")
			cached.Source = "cached"
			return &cached
		}
	}

	s.metrics.RecordFallback("conditions", "simulated")
	return base
}

// Refresh regenerates the snapshot regardless of age and pushes it to
// subscribers. trigger labels the tick for metrics: "scheduled" from the
// cron job, "forced" from the manual refresh endpoint.
func (s *ConditionsService) Refresh(ctx context.Context, trigger string) *models.ConditionSnapshot {
	timer := s.metrics.NewTimer(s.metrics.SimulationDuration)
	s.engine.Force()
	timer.ObserveDuration()

	s.metrics.SimulationTicksTotal.WithLabelValues(trigger).Inc()
	s.metrics.FieldPointsGenerated.Add(float64(simulation.GridSize * simulation.GridSize))

	snap := s.Current(ctx)

	s.broker.Publish(stream.KeyConditions, snap)
	if err := s.events.Publish(events.SubjectConditions, snap); err != nil {
		s.logger.Warn(ctx, "[CONDITIONS_EVENT] Failed to publish snapshot", logging.Fields{}, err)
	}

	s.logger.Info(ctx, "[CONDITIONS_REFRESH] Snapshot regenerated", logging.Fields{
		"trigger":        trigger,
		"source":         snap.Source,
		"wind_speed_kn":  snap.Weather.WindSpeedKn,
		"wind_direction": snap.Weather.WindDirection,
		"wave_height_m":  snap.Marine.WaveHeightM,
	})

	return snap
}

// ScheduledRefresh is the cron entry point: reload any new wind files,
// then regenerate and broadcast.
func (s *ConditionsService) ScheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.wind != nil {
		if err := s.wind.Reload(); err != nil && err != windfield.ErrNoData {
			s.logger.Warn(ctx, "[CONDITIONS_WIND] Failed to reload wind files", logging.Fields{}, err)
		}
	}

	s.Refresh(ctx, "scheduled")
}

// Grid returns the spatial racing-area field of the current snapshot.
func (s *ConditionsService) Grid(ctx context.Context) []models.WeatherDataPoint {
	return s.Current(ctx).Grid
}

// Markers converts the current grid into renderable map annotations.
func (s *ConditionsService) Markers(ctx context.Context) []Marker {
	grid := s.Current(ctx).Grid

	markers := make([]Marker, 0, len(grid))
	for _, p := range grid {
		markers = append(markers, Marker{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Icon:      "wind-arrow",
			Rotation:  p.WindDirection,
			Color:     windColor(p.WindSpeedKn),
			Label:     fmt.Sprintf("%.0f kn", p.WindSpeedKn),
		})
	}
	return markers
}

// Tactical analyzes the start line against the current conditions.
// lineBearing is the bearing from the pin end to the committee boat.
func (s *ConditionsService) Tactical(ctx context.Context, lineBearing float64) TacticalReport {
	snap := s.Current(ctx)

	startLine := s.analyzer.StartLine(snap.Weather.WindDirection, lineBearing)
	stability := s.analyzer.Stability(s.directionHistory())
	current := s.analyzer.CurrentImpact(snap.Marine.Current, snap.Weather.WindSpeedKn)

	s.metrics.TacticalAnalysesTotal.WithLabelValues(string(startLine.FavoredEnd)).Inc()

	degree, label := models.DouglasSeaState(snap.Marine.WaveHeightM)

	return TacticalReport{
		StartLine:     startLine,
		Wind:          stability,
		Current:       current,
		WindSpeedKn:   snap.Weather.WindSpeedKn,
		WindDirection: snap.Weather.WindDirection,
		SeaState:      degree,
		SeaStateLabel: label,
		Source:        snap.Source,
		GeneratedAt:   snap.GeneratedAt,
	}
}

// LiveWindActive reports whether the last live wind read succeeded.
// Always false when no wind provider is configured.
func (s *ConditionsService) LiveWindActive() bool {
	if s.wind == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveHealthy
}

// markLiveHealth tracks live-feed transitions and alerts the race officer
// over XMPP when the feed degrades or recovers.
func (s *ConditionsService) markLiveHealth(ctx context.Context, healthy bool, cause error) {
	s.mu.Lock()
	changed := s.liveHealthy != healthy
	s.liveHealthy = healthy
	s.mu.Unlock()

	if !changed {
		return
	}

	if healthy {
		s.logger.Info(ctx, "[CONDITIONS_LIVE] Live wind feed recovered", logging.Fields{})
		s.alert("Regatta server: live wind feed recovered, conditions are live again.")
		return
	}

	s.logger.Warn(ctx, "[CONDITIONS_LIVE] Live wind feed degraded", logging.Fields{}, cause)
	s.alert("Regatta server: live wind feed unavailable, serving cached or simulated conditions.")
}

func (s *ConditionsService) alert(message string) {
	if !s.notifier.Configured() {
		return
	}

	// XMPP dial is slow; never block a conditions read on it.
	go func() {
		if err := s.notifier.Send(message); err != nil {
			s.logger.Warn(context.Background(), "[CONDITIONS_ALERT] Failed to send alert", logging.Fields{}, err)
		}
	}()
}

// recordDirection appends the snapshot wind direction to the rolling
// stability window, one sample per generated snapshot.
func (s *ConditionsService) recordDirection(snap *models.ConditionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.GeneratedAt.Equal(s.lastSample) {
		return
	}
	s.lastSample = snap.GeneratedAt

	s.directions = append(s.directions, snap.Weather.WindDirection)
	if len(s.directions) > maxDirectionSamples {
		s.directions = s.directions[len(s.directions)-maxDirectionSamples:]
	}
}

func (s *ConditionsService) directionHistory() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, len(s.directions))
	copy(out, s.directions)
	return out
}

// overlayLiveWind adjusts the simulated snapshot with an observed wind
// vector: the uniform wind fields are replaced and the spatial grid is
// rotated and rescaled so its shore gradients survive.
func overlayLiveWind(base *models.ConditionSnapshot, direction, speedKn float64) *models.ConditionSnapshot {
	out := *base
	out.Source = "live"

	delta := direction - base.Weather.WindDirection
	ratio := 1.0
	if base.Weather.WindSpeedKn > 0 {
		ratio = speedKn / base.Weather.WindSpeedKn
	}

	out.Weather.WindDirection = roundTo(models.NormalizeDirection(direction), 1)
	out.Weather.WindSpeedKn = roundTo(speedKn, 1)
	out.Weather.WindGustKn = roundTo(speedKn*1.3, 1)

	grid := make([]models.WeatherDataPoint, len(base.Grid))
	for i, p := range base.Grid {
		p.WindSpeedKn = roundTo(p.WindSpeedKn*ratio, 1)
		p.WindDirection = roundTo(models.NormalizeDirection(p.WindDirection+delta), 1)
		p.Intensity = roundTo(math.Min(1, math.Max(0, p.WindSpeedKn/30)), 2)
		grid[i] = p
	}
	out.Grid = grid

	return &out
}

// windColor buckets wind speed into the map palette.
func windColor(speedKn float64) string {
	switch {
	case speedKn < 6:
		return "#4FC3F7" // light
	case speedKn < 12:
		return "#2196F3" // moderate
	case speedKn < 18:
		return "#FF9800" // fresh
	default:
		return "#F44336" // strong
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
