package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"regatta-server/internal/events"
	"regatta-server/internal/services"
	"regatta-server/pkg/cache"
	"regatta-server/pkg/logging"
)

// HealthHandler reports per-subsystem health. The service is designed to
// keep answering in degraded mode, so a down backend yields status
// "degraded" with HTTP 200, never a failed health check.
type HealthHandler struct {
	board      *services.BoardService
	conditions *services.ConditionsService
	cache      *cache.RedisCache
	events     *events.Publisher
	logger     *logging.StructuredLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	boardService *services.BoardService,
	conditionsService *services.ConditionsService,
	redisCache *cache.RedisCache,
	publisher *events.Publisher,
	logger *logging.StructuredLogger,
) *HealthHandler {
	return &HealthHandler{
		board:      boardService,
		conditions: conditionsService,
		cache:      redisCache,
		events:     publisher,
		logger:     logger,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subsystems := map[string]string{}
	status := "healthy"

	if err := h.board.HealthCheck(ctx); err != nil {
		subsystems["database"] = "down"
		status = "degraded"
	} else {
		subsystems["database"] = "up"
	}

	if h.cache == nil {
		subsystems["cache"] = "disabled"
	} else if err := h.cache.HealthCheck(ctx); err != nil {
		subsystems["cache"] = "down"
		status = "degraded"
	} else {
		subsystems["cache"] = "up"
	}

	if h.events.IsConnected() {
		subsystems["events"] = "up"
	} else {
		subsystems["events"] = "disabled"
	}

	if h.conditions.LiveWindActive() {
		subsystems["live_wind"] = "up"
	} else {
		subsystems["live_wind"] = "simulated"
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{
		"status": status,
	})

	sendJSON(w, map[string]interface{}{
		"status":     status,
		"subsystems": subsystems,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// RegisterRoutes registers the health and documentation routes
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
