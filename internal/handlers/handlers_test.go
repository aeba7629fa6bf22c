package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"regatta-server/internal/events"
	"regatta-server/internal/geo"
	"regatta-server/internal/notify"
	"regatta-server/internal/services"
	"regatta-server/internal/simulation"
	"regatta-server/internal/stations"
	"regatta-server/internal/stream"
	"regatta-server/internal/tactical"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// Shared fixtures. The metrics collector registers against the global
// prometheus registry, so the package gets exactly one.
var (
	testLogger  = logging.NewStructuredLogger("handlers-test", "0.0.0", logging.ErrorLevel)
	testMetrics = metrics.NewCollector("regatta_handlers_test")
)

// newTestRouter wires the full API in degraded mode: no database, no
// cache, no live wind. Every read must still answer.
func newTestRouter() *mux.Router {
	center := geo.LatLon{Lat: 22.20, Lon: 114.00}
	shore := geo.LatLon{Lat: 22.225, Lon: 114.015}
	engine := simulation.NewEngine(1, center, shore, 5*time.Minute)

	broker := stream.NewBroker()
	publisher := events.NewPublisher(testLogger, testMetrics)
	analyzer := tactical.NewAnalyzer(tactical.DefaultConfig())

	conditionsService := services.NewConditionsService(
		engine, nil, nil, broker, publisher, notify.Notifier{}, analyzer, testLogger, testMetrics)
	boardService := services.NewBoardService(nil, nil, broker, publisher, testLogger, testMetrics)
	calendarService := services.NewCalendarService(testLogger)

	router := mux.NewRouter()
	NewConditionsHandler(conditionsService, stations.NewRegistry(), testLogger, testMetrics).RegisterRoutes(router)
	NewBoardHandler(boardService, calendarService, testLogger, testMetrics).RegisterRoutes(router)
	NewHealthHandler(boardService, conditionsService, nil, publisher, testLogger).RegisterRoutes(router)

	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestGetConditions(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/conditions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Weather struct {
			WindSpeedKn   float64 `json:"wind_speed_kn"`
			WindDirection float64 `json:"wind_direction"`
		} `json:"weather"`
		Grid   []json.RawMessage `json:"grid"`
		Source string            `json:"source"`
	}
	decodeBody(t, rec, &body)

	if body.Source != "simulated" {
		t.Errorf("source = %q, want simulated", body.Source)
	}
	if len(body.Grid) != simulation.GridSize*simulation.GridSize {
		t.Errorf("grid has %d points, want %d", len(body.Grid), simulation.GridSize*simulation.GridSize)
	}
	if body.Weather.WindDirection < 0 || body.Weather.WindDirection >= 360 {
		t.Errorf("wind direction = %v", body.Weather.WindDirection)
	}
}

func TestRefreshConditions(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "POST", "/api/conditions/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetTactical(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/tactical?line_bearing=90")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report struct {
		StartLine struct {
			FavoredEnd string  `json:"favored_end"`
			BiasAngle  float64 `json:"bias_angle"`
			Confidence string  `json:"confidence"`
			Advice     string  `json:"advice"`
		} `json:"start_line"`
		SeaStateLabel string `json:"sea_state_label"`
	}
	decodeBody(t, rec, &report)

	switch report.StartLine.FavoredEnd {
	case "port", "starboard", "neutral":
	default:
		t.Errorf("favored_end = %q", report.StartLine.FavoredEnd)
	}
	if report.StartLine.Advice == "" {
		t.Error("advice is empty")
	}
	if report.SeaStateLabel == "" {
		t.Error("sea_state_label is empty")
	}
}

func TestGetTactical_BadRequest(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		path string
	}{
		{"no parameters", "/api/tactical"},
		{"unparseable bearing", "/api/tactical?line_bearing=northish"},
		{"partial coordinates", "/api/tactical?pin_lat=22.2&pin_lon=114.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, "GET", tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetTactical_LineFromCoordinates(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/tactical?pin_lat=22.20&pin_lon=114.00&boat_lat=22.20&boat_lon=114.02")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetStations(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/stations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Stations []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"stations"`
		Count int `json:"count"`
	}
	decodeBody(t, rec, &body)

	if body.Count == 0 || len(body.Stations) != body.Count {
		t.Errorf("count = %d with %d stations", body.Count, len(body.Stations))
	}

	rec = doRequest(t, router, "GET", "/api/stations?kind=tide")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	decodeBody(t, rec, &body)
	for _, s := range body.Stations {
		if s.Kind != "tide" {
			t.Errorf("station %s has kind %q, want tide", s.ID, s.Kind)
		}
	}

	rec = doRequest(t, router, "GET", "/api/stations?kind=lighthouse")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown kind", rec.Code)
	}
}

func TestGetStations_WithinRadius(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/stations?kind=tide&radius_km=15&lat=22.28&lon=114.18")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Stations []struct {
			ID        string  `json:"id"`
			Kind      string  `json:"kind"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"stations"`
		Count int `json:"count"`
	}
	decodeBody(t, rec, &body)

	var all struct {
		Count int `json:"count"`
	}
	decodeBody(t, doRequest(t, router, "GET", "/api/stations?kind=tide"), &all)

	if body.Count == 0 {
		t.Fatal("no tide stations within 15 km of Victoria Harbour")
	}
	if body.Count >= all.Count {
		t.Errorf("radius filter returned %d of %d stations, expected a narrower list", body.Count, all.Count)
	}
	for _, s := range body.Stations {
		if s.Kind != "tide" {
			t.Errorf("station %s has kind %q, want tide", s.ID, s.Kind)
		}
	}

	tests := []struct {
		name string
		path string
	}{
		{"radius without kind", "/api/stations?radius_km=15&lat=22.28&lon=114.18"},
		{"radius without coordinates", "/api/stations?kind=tide&radius_km=15"},
		{"non-positive radius", "/api/stations?kind=tide&radius_km=0&lat=22.28&lon=114.18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, "GET", tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetNearestStation(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/stations/nearest?kind=wind&lat=22.20&lon=114.00")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Station    struct{ ID string } `json:"station"`
		DistanceKm float64             `json:"distance_km"`
	}
	decodeBody(t, rec, &body)
	if body.Station.ID == "" {
		t.Error("no station returned")
	}
	if body.DistanceKm < 0 {
		t.Errorf("distance_km = %v", body.DistanceKm)
	}

	rec = doRequest(t, router, "GET", "/api/stations/nearest?kind=wind")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without coordinates", rec.Code)
	}
}

func TestGetNotices_DegradedMode(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/notices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body PaginatedResponse
	decodeBody(t, rec, &body)

	if body.Source != "demo" {
		t.Errorf("source = %q, want demo without a backend", body.Source)
	}
	if !body.Degraded {
		t.Error("degraded flag not set")
	}
	if body.Total == 0 {
		t.Error("no notices in degraded mode")
	}

	rec = doRequest(t, router, "GET", "/api/notices?category=nonsense")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown category", rec.Code)
	}
}

func TestMarkNoticeRead_DegradedMode(t *testing.T) {
	router := newTestRouter()

	// Writes need the backend; degraded mode refuses them.
	rec := doRequest(t, router, "POST", "/api/notices/9001/read")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a backend", rec.Code)
	}
}

func TestGetCompetitors_DegradedMode(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/competitors?class=Dragon")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body PaginatedResponse
	decodeBody(t, rec, &body)
	if body.Source != "demo" || !body.Degraded {
		t.Errorf("source = %q degraded = %v, want demo/true", body.Source, body.Degraded)
	}

	rec = doRequest(t, router, "GET", "/api/competitors?payment=iou")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown payment status", rec.Code)
	}
}

func TestExportCalendarEvent(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/api/calendar/event?title=Race+3&start=2026-09-12T13:55&location=Victoria+Harbour")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, want text/calendar", ct)
	}
	if !strings.Contains(rec.Body.String(), "BEGIN:VEVENT") {
		t.Error("response is not an iCalendar document")
	}

	rec = doRequest(t, router, "GET", "/api/calendar/event?title=Race+3&start=2026-09-12T13:55&format=text")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}

	rec = doRequest(t, router, "GET", "/api/calendar/event?title=Race+3&start=whenever")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a bad start time", rec.Code)
	}
}

func TestHealthCheck_DegradedMode(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, "GET", "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when degraded", rec.Code)
	}

	var body struct {
		Status     string            `json:"status"`
		Subsystems map[string]string `json:"subsystems"`
	}
	decodeBody(t, rec, &body)

	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded without a database", body.Status)
	}
	if body.Subsystems["database"] != "down" {
		t.Errorf("database = %q, want down", body.Subsystems["database"])
	}
	if body.Subsystems["cache"] != "disabled" {
		t.Errorf("cache = %q, want disabled", body.Subsystems["cache"])
	}
	if body.Subsystems["live_wind"] != "simulated" {
		t.Errorf("live_wind = %q, want simulated", body.Subsystems["live_wind"])
	}
}
