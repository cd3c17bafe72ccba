package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler lets administrators see users and assign their profiles.
type AdminHandler struct {
	Users       *services.UserService
	Log         zerolog.Logger
	DefaultLang string
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

func userID(r *http.Request) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || n == 0 {
		return 0, &services.ValidationError{Violations: map[string]string{"id": "invalid_id"}}
	}
	return uint(n), nil
}

// ListUsers: GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

// ListProfiles: GET /admin/profiles
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Users.Profiles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

type assignProfileRequest struct {
	ProfileID *uint `json:"profile_id"`
}

// AssignProfile: PUT /admin/users/{id}/profile {"profile_id": 2} or null to clear.
func (h *AdminHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req assignProfileRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.Users.AssignProfile(r.Context(), id, req.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Activate: PATCH /admin/users/{id}/activate
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate: PATCH /admin/users/{id}/deactivate
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, _ := auth.UserIDFromContext(r.Context())
	u, err := h.Users.SetActive(r.Context(), actor, id, active)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// DeleteUser: DELETE /admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, _ := auth.UserIDFromContext(r.Context())
	if err := h.Users.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
