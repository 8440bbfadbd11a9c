package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/juniperhall/taskpoints/internal/calendar"
)

type CalendarHandler struct {
	calendarSvc *calendar.Service
	logger      *slog.Logger
}

func NewCalendarHandler(cs *calendar.Service, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{calendarSvc: cs, logger: logger}
}

func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	if !h.calendarSvc.Configured() {
		writeJSON(w, http.StatusOK, map[string]any{"configured": false, "authenticated": false})
		return
	}

	status, err := h.calendarSvc.Status(tenantID)
	if err != nil {
		h.logger.Error("calendar status", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"configured":         true,
		"authenticated":      status.Authenticated,
		"selected_calendars": status.SelectedCalendars,
	})
}

// Auth returns the Google consent URL. The tenant rides along in the OAuth
// state parameter so the callback knows whose tokens to store.
func (h *CalendarHandler) Auth(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}
	if !h.calendarSvc.Configured() {
		writeError(w, http.StatusServiceUnavailable, "calendar integration not configured")
		return
	}

	url := h.calendarSvc.AuthURL(strconv.FormatInt(tenantID, 10))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Callback handles the OAuth redirect from Google and stores the tenant's
// tokens. Google calls this endpoint, so it redirects back to the app
// instead of returning JSON.
func (h *CalendarHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errMsg := q.Get("error"); errMsg != "" {
		http.Redirect(w, r, "/settings?calendar=denied", http.StatusFound)
		return
	}

	tenantID, err := strconv.ParseInt(q.Get("state"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.calendarSvc.Exchange(r.Context(), tenantID, code); err != nil {
		h.logger.Error("oauth exchange", "tenant_id", tenantID, "error", err)
		http.Redirect(w, r, "/settings?calendar=error", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/settings?calendar=connected", http.StatusFound)
}

func (h *CalendarHandler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	calendars, err := h.calendarSvc.ListCalendars(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list calendars", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list calendars")
		return
	}
	if calendars == nil {
		calendars = []calendar.CalendarInfo{}
	}
	writeJSON(w, http.StatusOK, calendars)
}

// SelectCalendars stores which calendars to include in the events feed.
func (h *CalendarHandler) SelectCalendars(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	var req struct {
		CalendarIDs string `json:"calendarIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.calendarSvc.SelectCalendars(tenantID, req.CalendarIDs); err != nil {
		h.logger.Error("select calendars", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save selection")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Events returns the tenant's events for the caller's local date.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}
	day, err := localDateQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid localDate")
		return
	}

	events, err := h.calendarSvc.EventsForDay(r.Context(), tenantID, day)
	if err != nil {
		h.logger.Error("calendar events", "tenant_id", tenantID, "date", day.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch events")
		return
	}
	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	if err := h.calendarSvc.Disconnect(tenantID); err != nil {
		h.logger.Error("calendar disconnect", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
