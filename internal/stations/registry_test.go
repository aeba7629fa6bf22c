package stations

import (
	"testing"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
)

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name     string
		stations []models.Station
		minKm    float64
		wantIDs  []string
	}{
		{
			name: "near-identical coordinates collapse to the first entry",
			stations: []models.Station{
				{ID: "A", Latitude: 22.20, Longitude: 114.00, Kind: models.StationTide},
				{ID: "B", Latitude: 22.2001, Longitude: 114.0001, Kind: models.StationTide},
			},
			minKm:   2.0,
			wantIDs: []string{"A"},
		},
		{
			name: "distinct sites both survive",
			stations: []models.Station{
				{ID: "A", Latitude: 22.20, Longitude: 114.00, Kind: models.StationTide},
				{ID: "B", Latitude: 22.30, Longitude: 114.10, Kind: models.StationTide},
			},
			minKm:   2.0,
			wantIDs: []string{"A", "B"},
		},
		{
			name: "different kinds never collapse",
			stations: []models.Station{
				{ID: "A", Latitude: 22.20, Longitude: 114.00, Kind: models.StationTide},
				{ID: "B", Latitude: 22.20, Longitude: 114.00, Kind: models.StationWind},
			},
			minKm:   2.0,
			wantIDs: []string{"A", "B"},
		},
		{
			name: "chain keeps the earliest of each cluster",
			stations: []models.Station{
				{ID: "A", Latitude: 22.20, Longitude: 114.00, Kind: models.StationWave},
				{ID: "B", Latitude: 22.205, Longitude: 114.002, Kind: models.StationWave},
				{ID: "C", Latitude: 22.40, Longitude: 114.20, Kind: models.StationWave},
				{ID: "D", Latitude: 22.401, Longitude: 114.201, Kind: models.StationWave},
			},
			minKm:   2.0,
			wantIDs: []string{"A", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.stations, tt.minKm)

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("kept %d stations, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("station[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestRegistry_BuiltInTable(t *testing.T) {
	registry := NewRegistry()

	all := registry.All()
	if len(all) == 0 {
		t.Fatal("built-in registry is empty")
	}

	// The shipped table must already be conflict-free.
	if deduped := Deduplicate(all, DefaultMinDistanceKm); len(deduped) != len(all) {
		t.Errorf("built-in table loses %d stations to deduplication", len(all)-len(deduped))
	}

	for _, s := range all {
		if err := s.Validate(); err != nil {
			t.Errorf("station %s invalid: %v", s.ID, err)
		}
	}

	for _, kind := range []models.StationKind{models.StationTide, models.StationWave, models.StationWind} {
		if len(registry.ByKind(kind)) == 0 {
			t.Errorf("no %s stations in the built-in table", kind)
		}
	}
}

func TestRegistry_Nearest(t *testing.T) {
	registry := NewRegistryFrom([]models.Station{
		{ID: "NEAR", Latitude: 22.21, Longitude: 114.01, Kind: models.StationTide},
		{ID: "FAR", Latitude: 22.50, Longitude: 114.40, Kind: models.StationTide},
		{ID: "WIND", Latitude: 22.20, Longitude: 114.00, Kind: models.StationWind},
	}, DefaultMinDistanceKm)

	from := geo.LatLon{Lat: 22.20, Lon: 114.00}

	station, distanceKm, ok := registry.Nearest(models.StationTide, from)
	if !ok {
		t.Fatal("Nearest found no tide station")
	}
	if station.ID != "NEAR" {
		t.Errorf("Nearest = %q, want NEAR", station.ID)
	}
	if distanceKm <= 0 || distanceKm > 3 {
		t.Errorf("distance = %v km, want a small positive value", distanceKm)
	}

	if _, _, ok := registry.Nearest(models.StationWave, from); ok {
		t.Error("Nearest reported a wave station where none exists")
	}
}

func TestRegistry_WithinRadius(t *testing.T) {
	registry := NewRegistryFrom([]models.Station{
		{ID: "A", Latitude: 22.21, Longitude: 114.01, Kind: models.StationWind},
		{ID: "B", Latitude: 22.25, Longitude: 114.05, Kind: models.StationWind},
		{ID: "C", Latitude: 22.90, Longitude: 114.80, Kind: models.StationWind},
	}, DefaultMinDistanceKm)

	from := geo.LatLon{Lat: 22.20, Lon: 114.00}

	got := registry.WithinRadius(models.StationWind, from, 20)
	if len(got) != 2 {
		t.Fatalf("got %d stations within 20 km, want 2", len(got))
	}
	if got[0].ID != "A" || got[1].ID != "B" {
		t.Errorf("stations not ordered nearest first: %q, %q", got[0].ID, got[1].ID)
	}
}
