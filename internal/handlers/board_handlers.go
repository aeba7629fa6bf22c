package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"regatta-server/internal/models"
	"regatta-server/internal/repository"
	"regatta-server/internal/services"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// BoardHandler handles the notice board, document, entry list, and
// calendar export endpoints
type BoardHandler struct {
	board    *services.BoardService
	calendar *services.CalendarService
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(
	boardService *services.BoardService,
	calendarService *services.CalendarService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *BoardHandler {
	return &BoardHandler{
		board:    boardService,
		calendar: calendarService,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// GetNotices handles GET /api/notices
func (h *BoardHandler) GetNotices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/notices").Observe(time.Since(startTime).Seconds())
	}()

	page, limit, offset := parsePagination(r)
	q := r.URL.Query()

	filter := repository.NoticeFilter{
		Limit:      limit,
		Offset:     offset,
		UnreadOnly: q.Get("unread") == "true",
		Bookmarked: q.Get("bookmarked") == "true",
	}

	if raw := q.Get("category"); raw != "" {
		category := models.NoticeCategory(raw)
		if !category.Valid() {
			h.metrics.RecordAPIError("bad_request", "/api/notices")
			sendError(w, r, h.metrics, "unknown notice category: "+raw, http.StatusBadRequest)
			return
		}
		filter.Category = &category
	}

	list, err := h.board.ListNotices(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_NOTICES_ERROR] Failed to list notices", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/notices")
		sendError(w, r, h.metrics, "failed to retrieve notices", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       list.Notices,
		Total:      list.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: (list.Total + limit - 1) / limit,
		Source:     list.Source,
		Degraded:   list.Degraded,
	}

	h.metrics.RecordAPIRequest("/api/notices", "GET", "200")
	sendJSON(w, response, http.StatusOK)
}

// GetNotice handles GET /api/notices/{id}
func (h *BoardHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := noticeID(r)
	if err != nil {
		sendError(w, r, h.metrics, "invalid notice id", http.StatusBadRequest)
		return
	}

	notice, err := h.board.GetNotice(ctx, id)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_GET_NOTICE_ERROR] Failed to get notice", logging.Fields{
				"notice_id": id,
			}, err)
			h.metrics.RecordAPIError("internal_error", "/api/notices/{id}")
		}
		sendError(w, r, h.metrics, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/notices/{id}", "GET", "200")
	sendJSON(w, notice, http.StatusOK)
}

// PostNotice handles POST /api/notices
func (h *BoardHandler) PostNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var notice models.Notice
	if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
		sendError(w, r, h.metrics, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.board.PostNotice(ctx, &notice); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_POST_NOTICE_ERROR] Failed to post notice", logging.Fields{}, err)
			h.metrics.RecordAPIError("internal_error", "/api/notices")
		}
		sendError(w, r, h.metrics, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/notices", "POST", "201")
	sendJSON(w, notice, http.StatusCreated)
}

// MarkNoticeRead handles POST /api/notices/{id}/read
func (h *BoardHandler) MarkNoticeRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := noticeID(r)
	if err != nil {
		sendError(w, r, h.metrics, "invalid notice id", http.StatusBadRequest)
		return
	}

	if err := h.board.MarkNoticeRead(ctx, id); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_MARK_READ_ERROR] Failed to mark notice read", logging.Fields{
				"notice_id": id,
			}, err)
			h.metrics.RecordAPIError("internal_error", "/api/notices/{id}/read")
		}
		sendError(w, r, h.metrics, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/notices/{id}/read", "POST", "200")
	sendJSON(w, map[string]interface{}{"id": id, "read": true}, http.StatusOK)
}

// ToggleBookmark handles POST /api/notices/{id}/bookmark
func (h *BoardHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := noticeID(r)
	if err != nil {
		sendError(w, r, h.metrics, "invalid notice id", http.StatusBadRequest)
		return
	}

	bookmarked, err := h.board.ToggleBookmark(ctx, id)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_BOOKMARK_ERROR] Failed to toggle bookmark", logging.Fields{
				"notice_id": id,
			}, err)
			h.metrics.RecordAPIError("internal_error", "/api/notices/{id}/bookmark")
		}
		sendError(w, r, h.metrics, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/notices/{id}/bookmark", "POST", "200")
	sendJSON(w, map[string]interface{}{"id": id, "bookmarked": bookmarked}, http.StatusOK)
}

// RefreshNotices handles POST /api/notices/refresh
func (h *BoardHandler) RefreshNotices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.board.RefreshNotices(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_REFRESH_NOTICES_ERROR] Failed to refresh notices", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/notices/refresh")
		sendError(w, r, h.metrics, "failed to refresh notices", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/notices/refresh", "POST", "200")
	sendJSON(w, list, http.StatusOK)
}

// GetDocuments handles GET /api/documents
func (h *BoardHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/documents").Observe(time.Since(startTime).Seconds())
	}()

	var kind *models.DocumentKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k := models.DocumentKind(raw)
		kind = &k
	}

	list, err := h.board.ListDocuments(ctx, kind)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_DOCUMENTS_ERROR] Failed to list documents", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/documents")
		sendError(w, r, h.metrics, "failed to retrieve documents", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/documents", "GET", "200")
	sendJSON(w, list, http.StatusOK)
}

// GetCompetitors handles GET /api/competitors
func (h *BoardHandler) GetCompetitors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/competitors").Observe(time.Since(startTime).Seconds())
	}()

	page, limit, offset := parsePagination(r)
	q := r.URL.Query()

	filter := repository.CompetitorFilter{
		Limit:  limit,
		Offset: offset,
	}

	if raw := q.Get("class"); raw != "" {
		filter.BoatClass = &raw
	}
	if raw := q.Get("registration"); raw != "" {
		status := models.RegistrationStatus(raw)
		if !status.Valid() {
			sendError(w, r, h.metrics, "unknown registration status: "+raw, http.StatusBadRequest)
			return
		}
		filter.Registration = &status
	}
	if raw := q.Get("payment"); raw != "" {
		status := models.PaymentStatus(raw)
		if !status.Valid() {
			sendError(w, r, h.metrics, "unknown payment status: "+raw, http.StatusBadRequest)
			return
		}
		filter.Payment = &status
	}

	list, err := h.board.ListCompetitors(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_COMPETITORS_ERROR] Failed to list competitors", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/competitors")
		sendError(w, r, h.metrics, "failed to retrieve competitors", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       list.Competitors,
		Total:      list.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: (list.Total + limit - 1) / limit,
		Source:     list.Source,
		Degraded:   list.Degraded,
	}

	h.metrics.RecordAPIRequest("/api/competitors", "GET", "200")
	sendJSON(w, response, http.StatusOK)
}

// PostCompetitor handles POST /api/competitors
func (h *BoardHandler) PostCompetitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var competitor models.Competitor
	if err := json.NewDecoder(r.Body).Decode(&competitor); err != nil {
		sendError(w, r, h.metrics, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.board.RegisterCompetitor(ctx, &competitor); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "[API_POST_COMPETITOR_ERROR] Failed to register competitor", logging.Fields{
				"sail_number": competitor.SailNumber,
			}, err)
			h.metrics.RecordAPIError("internal_error", "/api/competitors")
		}
		sendError(w, r, h.metrics, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest("/api/competitors", "POST", "201")
	sendJSON(w, competitor, http.StatusCreated)
}

// ExportCalendarEvent handles GET /api/calendar/event
//
// format=ics (default) returns a downloadable iCalendar document;
// format=text returns the plain-text fallback.
func (h *BoardHandler) ExportCalendarEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	event, err := h.calendar.BuildEvent(ctx,
		q.Get("title"),
		q.Get("location"),
		q.Get("notes"),
		q.Get("start"),
		q.Get("end"),
	)
	if err != nil {
		sendError(w, r, h.metrics, err.Error(), statusForError(err))
		return
	}

	h.metrics.RecordAPIRequest("/api/calendar/event", "GET", "200")

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(event.Text()))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(event.ICS()))
}

func noticeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// RegisterRoutes registers the board API routes
func (h *BoardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/notices", h.GetNotices).Methods("GET")
	router.HandleFunc("/api/notices", h.PostNotice).Methods("POST")
	router.HandleFunc("/api/notices/refresh", h.RefreshNotices).Methods("POST")
	router.HandleFunc("/api/notices/{id:[0-9]+}", h.GetNotice).Methods("GET")
	router.HandleFunc("/api/notices/{id:[0-9]+}/read", h.MarkNoticeRead).Methods("POST")
	router.HandleFunc("/api/notices/{id:[0-9]+}/bookmark", h.ToggleBookmark).Methods("POST")
	router.HandleFunc("/api/documents", h.GetDocuments).Methods("GET")
	router.HandleFunc("/api/competitors", h.GetCompetitors).Methods("GET")
	router.HandleFunc("/api/competitors", h.PostCompetitor).Methods("POST")
	router.HandleFunc("/api/calendar/event", h.ExportCalendarEvent).Methods("GET")
}
