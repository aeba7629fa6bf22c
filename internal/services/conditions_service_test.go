package services

import (
	"context"
	"testing"
	"time"

	"regatta-server/internal/events"
	"regatta-server/internal/geo"
	"regatta-server/internal/notify"
	"regatta-server/internal/simulation"
	"regatta-server/internal/stream"
	"regatta-server/internal/tactical"
)

func newSimulatedConditionsService(broker *stream.Broker) *ConditionsService {
	center := geo.LatLon{Lat: 22.20, Lon: 114.00}
	shore := geo.LatLon{Lat: 22.225, Lon: 114.015}
	engine := simulation.NewEngine(1, center, shore, 5*time.Minute)
	publisher := events.NewPublisher(testLogger, testMetrics)
	analyzer := tactical.NewAnalyzer(tactical.DefaultConfig())

	return NewConditionsService(engine, nil, nil, broker, publisher, notify.Notifier{}, analyzer, testLogger, testMetrics)
}

func TestConditionsService_CurrentIsSimulatedWithoutLiveWind(t *testing.T) {
	svc := newSimulatedConditionsService(stream.NewBroker())
	ctx := context.Background()

	snap := svc.Current(ctx)
	if snap == nil {
		t.Fatal("Current returned nil")
	}
	if snap.Source != "simulated" {
		t.Errorf("Source = %q, want simulated", snap.Source)
	}
	if len(snap.Grid) != simulation.GridSize*simulation.GridSize {
		t.Errorf("grid has %d points, want %d", len(snap.Grid), simulation.GridSize*simulation.GridSize)
	}

	// A second read inside the TTL serves the identical snapshot.
	if again := svc.Current(ctx); again != snap {
		t.Error("snapshot regenerated inside the TTL")
	}
}

func TestConditionsService_RefreshBroadcasts(t *testing.T) {
	broker := stream.NewBroker()
	svc := newSimulatedConditionsService(broker)
	ctx := context.Background()

	sub := broker.Subscribe(stream.KeyConditions)
	defer sub.Unsubscribe()

	first := svc.Current(ctx)
	refreshed := svc.Refresh(ctx, "forced")

	if refreshed == first {
		t.Error("Refresh returned the cached snapshot")
	}

	select {
	case msg := <-sub.C:
		if msg.Key != stream.KeyConditions {
			t.Errorf("broadcast key = %q, want %q", msg.Key, stream.KeyConditions)
		}
	case <-time.After(time.Second):
		t.Fatal("Refresh did not broadcast to subscribers")
	}
}

func TestConditionsService_Markers(t *testing.T) {
	svc := newSimulatedConditionsService(stream.NewBroker())
	ctx := context.Background()

	markers := svc.Markers(ctx)
	if len(markers) != simulation.GridSize*simulation.GridSize {
		t.Fatalf("got %d markers, want %d", len(markers), simulation.GridSize*simulation.GridSize)
	}

	for i, m := range markers {
		if m.Icon != "wind-arrow" {
			t.Errorf("marker %d icon = %q", i, m.Icon)
		}
		if m.Rotation < 0 || m.Rotation >= 360 {
			t.Errorf("marker %d rotation = %v, want [0,360)", i, m.Rotation)
		}
		if m.Color == "" || m.Label == "" {
			t.Errorf("marker %d missing color or label", i)
		}
	}
}

func TestConditionsService_Tactical(t *testing.T) {
	svc := newSimulatedConditionsService(stream.NewBroker())
	ctx := context.Background()

	snap := svc.Current(ctx)
	report := svc.Tactical(ctx, snap.Weather.WindDirection)

	// Line bearing equal to the wind direction means a square line.
	if report.StartLine.FavoredEnd != tactical.EndNeutral {
		t.Errorf("FavoredEnd = %v, want neutral for a square line", report.StartLine.FavoredEnd)
	}
	if report.WindDirection != snap.Weather.WindDirection {
		t.Errorf("WindDirection = %v, want %v", report.WindDirection, snap.Weather.WindDirection)
	}
	if report.SeaState < 0 || report.SeaState > 9 {
		t.Errorf("SeaState = %d, want 0..9", report.SeaState)
	}
	if report.SeaStateLabel == "" {
		t.Error("SeaStateLabel is empty")
	}
	if report.Source != "simulated" {
		t.Errorf("Source = %q, want simulated", report.Source)
	}
}

func TestWindColor(t *testing.T) {
	tests := []struct {
		speedKn float64
		want    string
	}{
		{3, "#4FC3F7"},
		{8, "#2196F3"},
		{15, "#FF9800"},
		{25, "#F44336"},
	}

	for _, tt := range tests {
		if got := windColor(tt.speedKn); got != tt.want {
			t.Errorf("windColor(%v) = %q, want %q", tt.speedKn, got, tt.want)
		}
	}
}

func TestOverlayLiveWind(t *testing.T) {
	svc := newSimulatedConditionsService(stream.NewBroker())
	base := svc.Current(context.Background())

	live := overlayLiveWind(base, 45, 18)

	if live.Source != "live" {
		t.Errorf("Source = %q, want live", live.Source)
	}
	if live.Weather.WindDirection != 45 {
		t.Errorf("WindDirection = %v, want 45", live.Weather.WindDirection)
	}
	if live.Weather.WindSpeedKn != 18 {
		t.Errorf("WindSpeedKn = %v, want 18", live.Weather.WindSpeedKn)
	}
	if live.Weather.WindGustKn <= live.Weather.WindSpeedKn {
		t.Errorf("WindGustKn = %v, want above %v", live.Weather.WindGustKn, live.Weather.WindSpeedKn)
	}

	// The base snapshot must stay untouched.
	if base.Source != "simulated" {
		t.Errorf("base Source mutated to %q", base.Source)
	}
	if len(live.Grid) != len(base.Grid) {
		t.Fatalf("grid size changed from %d to %d", len(base.Grid), len(live.Grid))
	}

	for i, p := range live.Grid {
		if p.WindDirection < 0 || p.WindDirection >= 360 {
			t.Errorf("grid %d direction = %v, want [0,360)", i, p.WindDirection)
		}
		if p.Intensity < 0 || p.Intensity > 1 {
			t.Errorf("grid %d intensity = %v, want [0,1]", i, p.Intensity)
		}
		// Non-wind fields carry over from the simulation.
		if p.WaveHeightM != base.Grid[i].WaveHeightM {
			t.Errorf("grid %d wave height changed", i)
		}
	}
}
