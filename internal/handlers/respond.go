package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"regatta-server/internal/models"
	"regatta-server/internal/repository"
	"regatta-server/pkg/metrics"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
	Source     string      `json:"source,omitempty"`
	Degraded   bool        `json:"degraded,omitempty"`
}

// sendJSON sends a JSON response
func sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func sendError(w http.ResponseWriter, r *http.Request, m *metrics.Collector, message string, statusCode int) {
	m.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	sendJSON(w, response, statusCode)
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch err.(type) {
	case *repository.NotFoundError:
		return http.StatusNotFound
	case *models.ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parsePagination reads page and limit query parameters with defaults.
func parsePagination(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = 50

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	offset = (page - 1) * limit
	return page, limit, offset
}
