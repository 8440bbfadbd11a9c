package handler

import (
	"log/slog"
	"net/http"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/store"
)

type StatsHandler struct {
	tenantStore *store.TenantStore
	logger      *slog.Logger
}

func NewStatsHandler(ts *store.TenantStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{tenantStore: ts, logger: logger}
}

// Monthly returns per-tenant usage for the month containing the caller's
// local date: people and task counts plus the number of distinct days with
// activity.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	today, err := localDateQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid localDate")
		return
	}

	start := dates.MonthStart(today.Year, today.Month)
	end := dates.MonthEnd(today.Year, today.Month)

	stats, err := h.tenantStore.MonthlyStats(start, end)
	if err != nil {
		h.logger.Error("monthly stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if stats == nil {
		stats = []store.TenantStats{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":    today.Year,
		"month":   today.Month,
		"tenants": stats,
	})
}
