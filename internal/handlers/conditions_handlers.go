package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"regatta-server/internal/geo"
	"regatta-server/internal/models"
	"regatta-server/internal/services"
	"regatta-server/internal/stations"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// ConditionsHandler handles the conditions, tactical, and station endpoints
type ConditionsHandler struct {
	conditions *services.ConditionsService
	registry   *stations.Registry
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewConditionsHandler creates a new conditions handler
func NewConditionsHandler(
	conditionsService *services.ConditionsService,
	registry *stations.Registry,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ConditionsHandler {
	return &ConditionsHandler{
		conditions: conditionsService,
		registry:   registry,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// GetConditions handles GET /api/conditions
func (h *ConditionsHandler) GetConditions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/conditions").Observe(time.Since(startTime).Seconds())
	}()

	snapshot := h.conditions.Current(ctx)

	h.metrics.RecordAPIRequest("/api/conditions", "GET", "200")
	sendJSON(w, snapshot, http.StatusOK)
}

// RefreshConditions handles POST /api/conditions/refresh
func (h *ConditionsHandler) RefreshConditions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/conditions/refresh").Observe(time.Since(startTime).Seconds())
	}()

	snapshot := h.conditions.Refresh(ctx, "forced")

	h.logger.Info(ctx, "[API_REFRESH_CONDITIONS] Manual refresh requested", logging.Fields{
		"source": snapshot.Source,
	})

	h.metrics.RecordAPIRequest("/api/conditions/refresh", "POST", "200")
	sendJSON(w, snapshot, http.StatusOK)
}

// GetGrid handles GET /api/conditions/grid
func (h *ConditionsHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/conditions/grid").Observe(time.Since(startTime).Seconds())
	}()

	grid := h.conditions.Grid(ctx)

	h.metrics.RecordAPIRequest("/api/conditions/grid", "GET", "200")
	sendJSON(w, map[string]interface{}{
		"points": grid,
		"count":  len(grid),
	}, http.StatusOK)
}

// GetMarkers handles GET /api/conditions/markers
func (h *ConditionsHandler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/conditions/markers").Observe(time.Since(startTime).Seconds())
	}()

	markers := h.conditions.Markers(ctx)

	h.metrics.RecordAPIRequest("/api/conditions/markers", "GET", "200")
	sendJSON(w, map[string]interface{}{
		"markers": markers,
		"count":   len(markers),
	}, http.StatusOK)
}

// GetTactical handles GET /api/tactical
//
// The start line is given either directly as line_bearing, or as the pin
// and committee boat positions (pin_lat, pin_lon, boat_lat, boat_lon).
func (h *ConditionsHandler) GetTactical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/tactical").Observe(time.Since(startTime).Seconds())
	}()

	lineBearing, err := h.parseLineBearing(r)
	if err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/tactical")
		sendError(w, r, h.metrics, err.Error(), http.StatusBadRequest)
		return
	}

	report := h.conditions.Tactical(ctx, lineBearing)

	h.metrics.RecordAPIRequest("/api/tactical", "GET", "200")
	sendJSON(w, report, http.StatusOK)
}

func (h *ConditionsHandler) parseLineBearing(r *http.Request) (float64, error) {
	q := r.URL.Query()

	if raw := q.Get("line_bearing"); raw != "" {
		bearing, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &models.ValidationError{Field: "line_bearing", Value: raw, Message: "line_bearing must be a number"}
		}
		return models.NormalizeDirection(bearing), nil
	}

	coords := [4]string{"pin_lat", "pin_lon", "boat_lat", "boat_lon"}
	values := [4]float64{}
	for i, name := range coords {
		raw := q.Get(name)
		if raw == "" {
			return 0, &models.ValidationError{Field: name, Message: "provide line_bearing, or all of pin_lat, pin_lon, boat_lat, boat_lon"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &models.ValidationError{Field: name, Value: raw, Message: name + " must be a number"}
		}
		values[i] = v
	}

	pin := geo.LatLon{Lat: values[0], Lon: values[1]}
	boat := geo.LatLon{Lat: values[2], Lon: values[3]}
	return geo.BearingTo(pin, boat), nil
}

// GetStations handles GET /api/stations
//
// With radius_km, lat, and lon the result narrows to stations of the
// given kind within that radius, nearest first.
func (h *ConditionsHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/stations").Observe(time.Since(startTime).Seconds())
	}()

	q := r.URL.Query()

	var kind *models.StationKind
	if raw := q.Get("kind"); raw != "" {
		k := models.StationKind(raw)
		if !k.Valid() {
			h.metrics.RecordAPIError("bad_request", "/api/stations")
			sendError(w, r, h.metrics, "kind must be one of tide, wave, wind", http.StatusBadRequest)
			return
		}
		kind = &k
	}

	var list []models.Station
	if raw := q.Get("radius_km"); raw != "" {
		radiusKm, err := strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 {
			h.metrics.RecordAPIError("bad_request", "/api/stations")
			sendError(w, r, h.metrics, "radius_km must be a positive number", http.StatusBadRequest)
			return
		}
		if kind == nil {
			h.metrics.RecordAPIError("bad_request", "/api/stations")
			sendError(w, r, h.metrics, "radius_km requires kind", http.StatusBadRequest)
			return
		}
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			h.metrics.RecordAPIError("bad_request", "/api/stations")
			sendError(w, r, h.metrics, "radius_km requires lat and lon", http.StatusBadRequest)
			return
		}
		list = h.registry.WithinRadius(*kind, geo.LatLon{Lat: lat, Lon: lon}, radiusKm)
	} else if kind != nil {
		list = h.registry.ByKind(*kind)
	} else {
		list = h.registry.All()
	}

	h.metrics.RecordAPIRequest("/api/stations", "GET", "200")
	sendJSON(w, map[string]interface{}{
		"stations": list,
		"count":    len(list),
	}, http.StatusOK)
}

// GetNearestStation handles GET /api/stations/nearest
func (h *ConditionsHandler) GetNearestStation(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/stations/nearest").Observe(time.Since(startTime).Seconds())
	}()

	q := r.URL.Query()

	kind := models.StationKind(q.Get("kind"))
	if !kind.Valid() {
		h.metrics.RecordAPIError("bad_request", "/api/stations/nearest")
		sendError(w, r, h.metrics, "kind must be one of tide, wave, wind", http.StatusBadRequest)
		return
	}

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		h.metrics.RecordAPIError("bad_request", "/api/stations/nearest")
		sendError(w, r, h.metrics, "lat and lon are required numbers", http.StatusBadRequest)
		return
	}

	station, distanceKm, ok := h.registry.Nearest(kind, geo.LatLon{Lat: lat, Lon: lon})
	if !ok {
		sendError(w, r, h.metrics, "no station of that kind is registered", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest("/api/stations/nearest", "GET", "200")
	sendJSON(w, map[string]interface{}{
		"station":     station,
		"distance_km": distanceKm,
	}, http.StatusOK)
}

// RegisterRoutes registers the conditions, tactical, and station routes
func (h *ConditionsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/conditions", h.GetConditions).Methods("GET")
	router.HandleFunc("/api/conditions/refresh", h.RefreshConditions).Methods("POST")
	router.HandleFunc("/api/conditions/grid", h.GetGrid).Methods("GET")
	router.HandleFunc("/api/conditions/markers", h.GetMarkers).Methods("GET")
	router.HandleFunc("/api/tactical", h.GetTactical).Methods("GET")
	router.HandleFunc("/api/stations", h.GetStations).Methods("GET")
	router.HandleFunc("/api/stations/nearest", h.GetNearestStation).Methods("GET")
}
