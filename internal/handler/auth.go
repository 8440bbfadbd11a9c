package handler

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/juniperhall/taskpoints/internal/store"
)

type AuthHandler struct {
	tenantStore   *store.TenantStore
	adminPassword string
	logger        *slog.Logger
}

func NewAuthHandler(ts *store.TenantStore, adminPassword string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tenantStore: ts, adminPassword: adminPassword, logger: logger}
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Login authenticates a tenant by name (case-insensitive) and password.
// The reserved name "admin" checks against the configured admin password
// instead and unlocks the admin endpoints.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name and password are required")
		return
	}

	if strings.EqualFold(req.Name, "admin") {
		if h.adminPassword == "" ||
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"admin": true})
		return
	}

	tenant, err := h.tenantStore.VerifyCredentials(req.Name, req.Password)
	if err != nil {
		h.logger.Error("verify credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify credentials")
		return
	}
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tenant": tenant})
}
