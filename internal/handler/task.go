package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/schedule"
	"github.com/juniperhall/taskpoints/internal/store"
	"github.com/juniperhall/taskpoints/internal/websocket"
)

type TaskHandler struct {
	taskStore       *store.TaskStore
	personStore     *store.PersonStore
	completionStore *store.CompletionStore
	hub             *websocket.Hub
	logger          *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, ps *store.PersonStore, cs *store.CompletionStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, personStore: ps, completionStore: cs, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(tenantID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(tenantID, msg)
	}
}

type taskRequest struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	IsRecurring  bool     `json:"is_recurring"`
	ActiveDays   string   `json:"active_days"`
	Points       *int     `json:"points"`
	Money        *float64 `json:"money"`
	AssignedToID *int64   `json:"assigned_to_id"`
}

// fields validates the request and normalizes it into store fields.
// It returns a client-facing error message when validation fails.
func (req taskRequest) fields() (store.TaskFields, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return store.TaskFields{}, "title is required"
	}
	active, err := schedule.ParseActiveDays(req.ActiveDays)
	if err != nil {
		return store.TaskFields{}, "invalid active_days"
	}
	if req.Points != nil && *req.Points < 0 {
		return store.TaskFields{}, "points must not be negative"
	}
	if req.Money != nil && *req.Money < 0 {
		return store.TaskFields{}, "money must not be negative"
	}
	return store.TaskFields{
		Title:        title,
		Description:  req.Description,
		IsRecurring:  req.IsRecurring,
		ActiveDays:   active.String(),
		Points:       req.Points,
		Money:        req.Money,
		AssignedToID: req.AssignedToID,
	}, ""
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	var personID *int64
	if raw := r.URL.Query().Get("personId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid personId")
			return
		}
		personID = &id
	}

	tasks, err := h.taskStore.ListByTenant(tenantID, personID)
	if err != nil {
		h.logger.Error("list tasks", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields, msg := req.fields()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if fields.AssignedToID != nil && !h.assigneeInTenant(w, *fields.AssignedToID, tenantID) {
		return
	}

	task, err := h.taskStore.Create(fields)
	if err != nil {
		h.logger.Error("create task", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("task", "created", task.ID, nil))

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields, msg := req.fields()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if fields.AssignedToID != nil && !h.assigneeInTenant(w, *fields.AssignedToID, tenantID) {
		return
	}

	updated, err := h.taskStore.Update(task.ID, fields)
	if err != nil {
		h.logger.Error("update task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("task", "updated", task.ID, nil))

	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(task.ID); err != nil {
		h.logger.Error("delete task", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("task", "deleted", task.ID, nil))

	w.WriteHeader(http.StatusNoContent)
}

// Complete toggles the completion cell for (task, date). Repeating the same
// status clears the cell; sending the other status updates it in place.
// Completing a non-recurring task deletes the task and reports deleted:true.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	tenantID, task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req struct {
		CompletedDate string `json:"completedDate"`
		Status        string `json:"status"`
	}
	// An empty body is a valid toggle: today, completed.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	date, err := localDateFallback(req.CompletedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid completedDate")
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusCompleted
	}
	if status != model.StatusCompleted && status != model.StatusExcluded {
		writeError(w, http.StatusBadRequest, "status must be completed or excluded")
		return
	}

	result, err := h.completionStore.Toggle(task.ID, date, status)
	if err != nil {
		h.logger.Error("toggle completion", "task_id", task.ID, "date", date.String(), "error", err)
		writeStoreError(w, err, "failed to toggle completion")
		return
	}

	action := "completed"
	if result.Deleted {
		action = "deleted"
	}
	h.broadcast(tenantID, websocket.NewMessage("task", action, task.ID, nil))

	writeJSON(w, http.StatusOK, result)
}

// Completions returns the task's completion rows for a calendar month.
func (h *TaskHandler) Completions(w http.ResponseWriter, r *http.Request) {
	_, task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	completions, err := h.completionStore.ListForTaskInMonth(task.ID, year, month)
	if err != nil {
		h.logger.Error("list completions", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.TaskCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// Reorder applies a new display order for the tenant's tasks atomically.
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenantId")
		return
	}

	var req struct {
		Orders []store.TaskOrder `json:"orders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, http.StatusBadRequest, "orders is required")
		return
	}

	if err := h.taskStore.Reorder(tenantID, req.Orders); err != nil {
		h.logger.Error("reorder tasks", "tenant_id", tenantID, "error", err)
		writeStoreError(w, err, "failed to reorder tasks")
		return
	}

	h.broadcast(tenantID, websocket.NewMessage("task", "reordered", 0, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownedTask resolves {id} and enforces tenant ownership through the assigned
// person. A task with no assignee has no tenant to check and is reachable by
// any authenticated tenant.
func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (int64, *model.Task, bool) {
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

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return 0, nil, false
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return 0, nil, false
	}

	if task.AssignedToID != nil {
		person, err := h.personStore.GetByID(*task.AssignedToID)
		if err != nil {
			h.logger.Error("get assignee", "person_id", *task.AssignedToID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check assignee")
			return 0, nil, false
		}
		if person == nil || person.TenantID != tenantID {
			writeError(w, http.StatusForbidden, "access denied")
			return 0, nil, false
		}
	}
	return tenantID, task, true
}

// assigneeInTenant rejects assignment to a person outside the tenant. It
// writes the error response itself and reports whether the check passed.
func (h *TaskHandler) assigneeInTenant(w http.ResponseWriter, personID, tenantID int64) bool {
	person, err := h.personStore.GetByID(personID)
	if err != nil {
		h.logger.Error("get assignee", "person_id", personID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check assignee")
		return false
	}
	if person == nil {
		writeError(w, http.StatusBadRequest, "assigned person not found")
		return false
	}
	if person.TenantID != tenantID {
		writeError(w, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func localDateFallback(raw string) (dates.Date, error) {
	if raw == "" {
		return dates.FromTime(time.Now()), nil
	}
	return dates.Parse(raw)
}
