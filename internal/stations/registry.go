package stations

import (
	"sort"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
)

// DefaultMinDistanceKm collapses stations of the same kind closer than
// this into a single entry.
const DefaultMinDistanceKm = 2.0

// hongKongStations is the static reference table for the racing waters.
// Immutable for the process lifetime.
var hongKongStations = []models.Station{
	// Tide gauges
	{ID: "QUB", Name: "Quarry Bay", Latitude: 22.291, Longitude: 114.213, Kind: models.StationTide, Verified: true, Operator: "HKO"},
	{ID: "TPK", Name: "Tai Po Kau", Latitude: 22.442, Longitude: 114.184, Kind: models.StationTide, Verified: true, Operator: "HKO"},
	{ID: "TBT", Name: "Tsim Bei Tsui", Latitude: 22.487, Longitude: 114.013, Kind: models.StationTide, Verified: true, Operator: "HKO"},
	{ID: "WAG", Name: "Waglan Island", Latitude: 22.183, Longitude: 114.303, Kind: models.StationTide, Verified: true, Operator: "HKO"},
	{ID: "SPW", Name: "Shek Pik", Latitude: 22.220, Longitude: 113.894, Kind: models.StationTide, Verified: false, Operator: "HKO"},
	{ID: "KLW", Name: "Ko Lau Wan", Latitude: 22.459, Longitude: 114.361, Kind: models.StationTide, Verified: false, Operator: "HKO"},

	// Wave buoys
	{ID: "KYC", Name: "Kau Yi Chau", Latitude: 22.281, Longitude: 114.066, Kind: models.StationWave, Verified: true, Operator: "CEDD"},
	{ID: "WLB", Name: "West Lamma Channel", Latitude: 22.193, Longitude: 114.089, Kind: models.StationWave, Verified: false, Operator: "CEDD"},

	// Anemometers
	{ID: "WGL-W", Name: "Waglan Island", Latitude: 22.182, Longitude: 114.303, Kind: models.StationWind, Verified: true, Operator: "HKO"},
	{ID: "CCH", Name: "Cheung Chau", Latitude: 22.201, Longitude: 114.027, Kind: models.StationWind, Verified: true, Operator: "HKO"},
	{ID: "CPH", Name: "Central Pier", Latitude: 22.289, Longitude: 114.156, Kind: models.StationWind, Verified: true, Operator: "HKO"},
	{ID: "SHA", Name: "Sha Chau", Latitude: 22.346, Longitude: 113.891, Kind: models.StationWind, Verified: false, Operator: "HKO"},
	{ID: "GRI", Name: "Green Island", Latitude: 22.285, Longitude: 114.113, Kind: models.StationWind, Verified: true, Operator: "HKO"},
	{ID: "KAT", Name: "Kai Tak", Latitude: 22.309, Longitude: 114.213, Kind: models.StationWind, Verified: false, Operator: "HKO"},
}

// Registry serves the static station tables after deduplication.
type Registry struct {
	stations []models.Station
}

// NewRegistry builds a registry from the built-in tables using the
// default dedup distance.
func NewRegistry() *Registry {
	return NewRegistryFrom(hongKongStations, DefaultMinDistanceKm)
}

// NewRegistryFrom builds a registry from the given stations.
func NewRegistryFrom(stations []models.Station, minDistanceKm float64) *Registry {
	return &Registry{stations: Deduplicate(stations, minDistanceKm)}
}

// Deduplicate drops stations of the same kind within minDistanceKm of an
// earlier entry. First listed wins: the tables order verified stations
// before unverified ones.
func Deduplicate(stations []models.Station, minDistanceKm float64) []models.Station {
	kept := make([]models.Station, 0, len(stations))

	for _, candidate := range stations {
		duplicate := false
		for _, existing := range kept {
			if existing.Kind != candidate.Kind {
				continue
			}
			d := geo.DistanceKm(
				geo.LatLon{Lat: existing.Latitude, Lon: existing.Longitude},
				geo.LatLon{Lat: candidate.Latitude, Lon: candidate.Longitude},
			)
			if d < minDistanceKm {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	return kept
}

// All returns every station.
func (r *Registry) All() []models.Station {
	out := make([]models.Station, len(r.stations))
	copy(out, r.stations)
	return out
}

// ByKind returns stations of one kind.
func (r *Registry) ByKind(kind models.StationKind) []models.Station {
	var out []models.Station
	for _, s := range r.stations {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Nearest returns the closest station of the given kind and its distance
// in kilometers. ok is false when no station of that kind exists.
func (r *Registry) Nearest(kind models.StationKind, from geo.LatLon) (models.Station, float64, bool) {
	var best models.Station
	bestDist := -1.0

	for _, s := range r.stations {
		if s.Kind != kind {
			continue
		}
		d := geo.DistanceKm(from, geo.LatLon{Lat: s.Latitude, Lon: s.Longitude})
		if bestDist < 0 || d < bestDist {
			best = s
			bestDist = d
		}
	}

	return best, bestDist, bestDist >= 0
}

// WithinRadius returns stations of a kind within radiusKm, nearest first.
func (r *Registry) WithinRadius(kind models.StationKind, from geo.LatLon, radiusKm float64) []models.Station {
	type withDist struct {
		station models.Station
		dist    float64
	}

	var matches []withDist
	for _, s := range r.stations {
		if s.Kind != kind {
			continue
		}
		d := geo.DistanceKm(from, geo.LatLon{Lat: s.Latitude, Lon: s.Longitude})
		if d <= radiusKm {
			matches = append(matches, withDist{station: s, dist: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]models.Station, len(matches))
	for i, m := range matches {
		out[i] = m.station
	}
	return out
}
