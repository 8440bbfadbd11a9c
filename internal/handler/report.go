package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/juniperhall/taskpoints/internal/report"
	"github.com/juniperhall/taskpoints/internal/store"
)

type ReportHandler struct {
	reports *report.Service
	logger  *slog.Logger
}

func NewReportHandler(rs *report.Service, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, logger: logger}
}

// Monthly returns one person's report for a calendar month. The caller's
// localDate decides whether the month is truncated at today or runs to its
// last day.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}
	personID, err := strconv.ParseInt(r.PathValue("personId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid personId")
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	asOf, err := localDateQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid localDate")
		return
	}

	monthly, err := h.reports.Monthly(tenantID, personID, year, month, asOf)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "year or month out of range")
			return
		}
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrAccessDenied) {
			h.logger.Error("monthly report", "person_id", personID, "error", err)
		}
		writeStoreError(w, err, "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, monthly)
}
