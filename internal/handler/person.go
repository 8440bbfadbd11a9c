package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/progress"
	"github.com/juniperhall/taskpoints/internal/store"
	"github.com/juniperhall/taskpoints/internal/websocket"
)

type PersonHandler struct {
	personStore *store.PersonStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewPersonHandler(ps *store.PersonStore, hub *websocket.Hub, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{personStore: ps, hub: hub, logger: logger}
}

func (h *PersonHandler) broadcast(tenantID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(tenantID, msg)
	}
}

type personRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// personListItem annotates a person with their prorated goal progress for
// the current month. MonthProgress is null when the person has no goal.
type personListItem struct {
	model.PersonWithPoints
	MonthProgress *int `json:"month_progress"`
}

// List returns the tenant's people with their point totals and prorated
// goal progress for the month containing the caller's local date.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}
	today, err := localDateQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid localDate")
		return
	}

	start := dates.MonthStart(today.Year, today.Month)
	end := dates.MonthEnd(today.Year, today.Month)

	people, err := h.personStore.ListWithPoints(tenantID, start, end)
	if err != nil {
		h.logger.Error("list people", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list people")
		return
	}

	items := make([]personListItem, 0, len(people))
	for _, p := range people {
		item := personListItem{PersonWithPoints: p}
		if pct, ok := progress.MonthProgress(p.PointGoal, p.CurrentMonthPoints, today); ok {
			item.MonthProgress = &pct
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	person, err := h.personStore.Create(tenantID, req.Name, req.Color)
	if err != nil {
		h.logger.Error("create person", "tenant_id", tenantID, "error", err)
		writeStoreError(w, err, "failed to create person")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("person", "created", person.ID, nil))

	writeJSON(w, http.StatusCreated, person)
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, person, ok := h.ownedPerson(w, r)
	if !ok {
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := h.personStore.Update(person.ID, req.Name, req.Color)
	if err != nil {
		h.logger.Error("update person", "person_id", person.ID, "error", err)
		writeStoreError(w, err, "failed to update person")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("person", "updated", person.ID, nil))

	writeJSON(w, http.StatusOK, updated)
}

// UpdateGoal sets the person's monthly point goal. Zero clears the goal.
func (h *PersonHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	tenantID, person, ok := h.ownedPerson(w, r)
	if !ok {
		return
	}

	var req struct {
		PointGoal int `json:"pointGoal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.PointGoal < 0 {
		writeError(w, http.StatusBadRequest, "pointGoal must not be negative")
		return
	}

	updated, err := h.personStore.UpdateGoal(person.ID, req.PointGoal)
	if err != nil {
		h.logger.Error("update goal", "person_id", person.ID, "error", err)
		writeStoreError(w, err, "failed to update goal")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("person", "updated", person.ID, nil))

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the person along with their tasks and completions.
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, person, ok := h.ownedPerson(w, r)
	if !ok {
		return
	}

	if err := h.personStore.Delete(person.ID); err != nil {
		h.logger.Error("delete person", "person_id", person.ID, "error", err)
		writeStoreError(w, err, "failed to delete person")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("person", "deleted", person.ID, nil))

	w.WriteHeader(http.StatusNoContent)
}

// ownedPerson resolves the {id} path parameter and enforces that the person
// belongs to the caller's tenant. On failure it writes the response and
// returns ok=false.
func (h *PersonHandler) ownedPerson(w http.ResponseWriter, r *http.Request) (int64, *model.Person, bool) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return 0, nil, false
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, nil, false
	}

	person, err := h.personStore.GetByID(id)
	if err != nil {
		h.logger.Error("get person", "person_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get person")
		return 0, nil, false
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "person not found")
		return 0, nil, false
	}
	if person.TenantID != tenantID {
		writeError(w, http.StatusForbidden, "access denied")
		return 0, nil, false
	}
	return tenantID, person, true
}
