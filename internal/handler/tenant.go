package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/store"
)

type TenantHandler struct {
	tenantStore *store.TenantStore
	logger      *slog.Logger
}

func NewTenantHandler(ts *store.TenantStore, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenantStore: ts, logger: logger}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenantStore.List()
	if err != nil {
		h.logger.Error("list tenants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	if tenants == nil {
		tenants = []model.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.EqualFold(req.Name, "admin") {
		writeError(w, http.StatusBadRequest, "name is reserved")
		return
	}
	if len(req.Password) < 4 {
		writeError(w, http.StatusBadRequest, "password must be at least 4 characters")
		return
	}

	tenant, err := h.tenantStore.Create(req.Name, req.Password)
	if err != nil {
		h.logger.Error("create tenant", "name", req.Name, "error", err)
		writeStoreError(w, err, "failed to create tenant")
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

// ChangePassword verifies the current password before setting the new one.
func (h *TenantHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.NewPassword) < 4 {
		writeError(w, http.StatusBadRequest, "password must be at least 4 characters")
		return
	}

	if err := h.tenantStore.ChangePassword(id, req.CurrentPassword, req.NewPassword); err != nil {
		writeStoreError(w, err, "failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
