package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store sentinels to HTTP statuses; anything else is a 500
// with a generic message so internals never leak to clients.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// tenantIDQuery reads the required tenantId query parameter.
func tenantIDQuery(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get("tenantId"), 10, 64)
}

// localDateQuery reads the client's localDate parameter. Clients send their
// wall-clock date so day boundaries follow the household, not the server;
// when absent the server's date is a best-effort fallback.
func localDateQuery(r *http.Request) (dates.Date, error) {
	raw := r.URL.Query().Get("localDate")
	if raw == "" {
		return dates.FromTime(time.Now()), nil
	}
	return dates.Parse(raw)
}
