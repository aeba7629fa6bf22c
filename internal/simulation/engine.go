package simulation

import (
	"sync"
	"time"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
)

// DefaultTTL is how long a snapshot stays current before a read
// regenerates it.
const DefaultTTL = 5 * time.Minute

// Engine owns the only mutable simulation state: the last generated
// snapshot. Reads within the TTL return the identical snapshot; Force
// regenerates regardless of age.
type Engine struct {
	mu sync.Mutex

	gen    *Generator
	field  *FieldGenerator
	center geo.LatLon
	ttl    time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time

	snapshot *models.ConditionSnapshot
}

// NewEngine creates a simulation engine for the given racing area.
// Seed 0 selects a time-based seed so restarts do not replay the same
// condition sequence.
func NewEngine(seed int64, center, shore geo.LatLon, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := NewGenerator(seed)

	return &Engine{
		gen:    gen,
		field:  NewFieldGenerator(gen, shore),
		center: center,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock replaces the engine clock. Test hook.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Center returns the racing-area center coordinate.
func (e *Engine) Center() geo.LatLon {
	return e.center
}

// Current returns the cached snapshot, regenerating it first if it has
// aged past the TTL.
func (e *Engine) Current() *models.ConditionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapshot != nil && e.now().Sub(e.snapshot.GeneratedAt) < e.ttl {
		return e.snapshot
	}

	return e.regenerate()
}

// Force discards the cached snapshot and generates a fresh one.
func (e *Engine) Force() *models.ConditionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.regenerate()
}

// Age reports how old the cached snapshot is, and false when no snapshot
// has been generated yet.
func (e *Engine) Age() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapshot == nil {
		return 0, false
	}
	return e.now().Sub(e.snapshot.GeneratedAt), true
}

// regenerate builds a new snapshot. Caller holds the lock.
func (e *Engine) regenerate() *models.ConditionSnapshot {
	now := e.now()
	pattern := PatternFor(now)

	weather := e.gen.Weather(pattern)
	marine := e.gen.Marine(pattern, weather, now)
	grid := e.field.Generate(weather, marine, e.center)

	e.snapshot = &models.ConditionSnapshot{
		Weather:     weather,
		Marine:      marine,
		Grid:        grid,
		GeneratedAt: now,
		Source:      "simulated",
	}

	return e.snapshot
}
