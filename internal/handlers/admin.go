package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

// AdminHandler serves moderation endpoints.
type AdminHandler struct {
	admin *services.AdminService
	log   *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, log: log}
}

// AdminRouter registers admin routes behind requireAuth and RequireAdmin.
func AdminRouter(r chi.Router, h *AdminHandler, requireAuth func(http.Handler) http.Handler) {
	r.Use(requireAuth, RequireAdmin)
	r.Get("/dashboard", h.Dashboard)
	r.Post("/ban/{userID}", h.Ban)
	r.Post("/unban/{userID}", h.Unban)
	r.Get("/users", h.ListUsers)
}

type BanRequest struct {
	Reason string `json:"reason"`
}

type BanResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type UnbanResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Ban accepts an optional JSON body carrying the reason.
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req BanRequest
	if err := decodeJSON(w, r, &req, false); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, _ := CurrentUser(r.Context())
	user, err := h.admin.Ban(r.Context(), id, req.Reason, admin)
	if err != nil {
		writeServiceError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, BanResponse{
		Success: true,
		Message: fmt.Sprintf("%s has been banned", user.Email),
		User:    user,
	})
}

func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, _ := CurrentUser(r.Context())
	user, err := h.admin.Unban(r.Context(), id, admin)
	if err != nil {
		writeServiceError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, UnbanResponse{
		Message: fmt.Sprintf("%s has been unbanned", user.Email),
		User:    user,
	})
}

// ListUsers honours ?banned=true|false; any other value lists everyone.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var filter types.UserFilter
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("banned"))) {
	case "true":
		banned := true
		filter.Banned = &banned
	case "false":
		banned := false
		filter.Banned = &banned
	}

	users, err := h.admin.ListUsers(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.log, err, "user")
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
