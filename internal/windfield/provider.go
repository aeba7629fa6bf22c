package windfield

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nilsmagnus/grib/griblib"
)

// ErrNoData is returned when no usable GRIB file covers the request.
var ErrNoData = errors.New("no live wind data available")

const metersPerSecondToKnots = 1.94384

// windGrid is the 10 m U/V wind field decoded from one GRIB2 file.
type windGrid struct {
	file string
	lat0 float64
	lon0 float64
	dLat float64
	dLon float64
	nLat uint32
	nLon uint32
	u    [][]float64
	v    [][]float64
}

// Provider serves live wind observations from GRIB2 forecast files
// dropped into a directory. Absence of files is not an error at
// construction time; WindAt degrades with ErrNoData instead.
type Provider struct {
	mu   sync.RWMutex
	dir  string
	grid *windGrid
}

// NewProvider creates a provider reading from dir.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Reload scans the directory and decodes the newest GRIB file.
func (p *Provider) Reload() error {
	if p.dir == "" {
		return ErrNoData
	}

	matches, err := filepath.Glob(filepath.Join(p.dir, "*.grb2"))
	if err != nil {
		return fmt.Errorf("failed to scan grib directory: %w", err)
	}
	if len(matches) == 0 {
		return ErrNoData
	}

	// Lexical order matches the cycle naming convention, newest last.
	sort.Strings(matches)
	grid, err := loadGrid(matches[len(matches)-1])
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.grid = grid
	p.mu.Unlock()

	return nil
}

// Available reports whether a decoded wind field is loaded.
func (p *Provider) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.grid != nil && p.grid.u != nil && p.grid.v != nil
}

// WindAt interpolates wind at a coordinate. Returns direction in degrees
// true and speed in knots.
func (p *Provider) WindAt(lat, lon float64) (direction, speedKn float64, err error) {
	p.mu.RLock()
	grid := p.grid
	p.mu.RUnlock()

	if grid == nil || grid.u == nil || grid.v == nil {
		return 0, 0, ErrNoData
	}

	u, v, err := grid.interpolate(lat, lon)
	if err != nil {
		return 0, 0, err
	}

	speed := math.Sqrt(u*u + v*v)
	if speed == 0 {
		return 0, 0, nil
	}

	dir := math.Atan2(u/speed, v/speed)*180/math.Pi + 180

	return dir, speed * metersPerSecondToKnots, nil
}

// loadGrid decodes the 10 m wind message pair from a GRIB2 file.
func loadGrid(path string) (*windGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grib file: %w", err)
	}
	defer f.Close()

	messages, err := griblib.ReadMessages(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read grib messages: %w", err)
	}

	grid := &windGrid{file: filepath.Base(path)}

	for _, message := range messages {
		tpl := message.Section4.ProductDefinitionTemplate
		if message.Section0.Discipline != 0 || tpl.ParameterCategory != 2 {
			continue
		}
		if tpl.FirstSurface.Type != 103 || tpl.FirstSurface.Value != 10 {
			continue
		}

		grid0, ok := message.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}

		grid.lat0 = float64(grid0.La1 / 1e6)
		grid.lon0 = float64(grid0.Lo1 / 1e6)
		grid.dLat = float64(grid0.Di / 1e6)
		grid.dLon = float64(grid0.Dj / 1e6)
		grid.nLat = grid0.Nj
		grid.nLon = grid0.Ni

		switch tpl.ParameterNumber {
		case 2:
			grid.u = grid.buildGrid(message.Section7.Data)
		case 3:
			grid.v = grid.buildGrid(message.Section7.Data)
		}
	}

	if grid.u == nil || grid.v == nil {
		return nil, fmt.Errorf("%s: missing 10m wind components", filepath.Base(path))
	}

	return grid, nil
}

// buildGrid reshapes flat message data into rows, duplicating the first
// column when the grid wraps the full circle of longitude.
func (g *windGrid) buildGrid(data []float64) [][]float64 {
	isContinuous := math.Floor(float64(g.nLon)*g.dLon) >= 360

	nLon := g.nLon
	if isContinuous {
		nLon++
	}

	grid := make([][]float64, g.nLat)

	p := 0
	for j := uint32(0); j < g.nLat; j++ {
		grid[j] = make([]float64, nLon)
		for i := uint32(0); i < g.nLon; i++ {
			grid[j][i] = data[p]
			p++
		}
		if isContinuous {
			grid[j][g.nLon] = grid[j][0]
		}
	}

	return grid
}

func floorMod(a, n float64) float64 {
	return a - n*math.Floor(a/n)
}

func (g *windGrid) interpolate(lat, lon float64) (float64, float64, error) {
	i := math.Abs((lat - g.lat0) / g.dLat)
	j := floorMod(lon-g.lon0, 360.0) / g.dLon

	fi := uint32(i)
	fj := uint32(j)

	if fi+1 >= uint32(len(g.u)) || fj+1 >= uint32(len(g.u[0])) {
		return 0, 0, fmt.Errorf("coordinate (%f, %f) outside wind grid", lat, lon)
	}

	x := j - float64(fj)
	y := i - float64(fi)
	rx := 1 - x
	ry := 1 - y

	a := rx * ry
	b := x * ry
	c := rx * y
	d := x * y

	u := g.u[fi][fj]*a + g.u[fi][fj+1]*b + g.u[fi+1][fj]*c + g.u[fi+1][fj+1]*d
	v := g.v[fi][fj]*a + g.v[fi][fj+1]*b + g.v[fi+1][fj]*c + g.v[fi+1][fj+1]*d

	return u, v, nil
}
