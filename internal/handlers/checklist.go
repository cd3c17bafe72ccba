package handlers

import (
	"net/http"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChecklistHandler serves per-project checklist items.
type ChecklistHandler struct {
	Svc         *services.ChecklistService
	Log         zerolog.Logger
	DefaultLang string
}

func (h *ChecklistHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ChecklistInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	item, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// List: GET /checklists?project_id=
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	var projectID uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.fail(w, r, &services.ValidationError{Violations: map[string]string{"project_id": "invalid_id"}})
			return
		}
		projectID = id
	}
	items, err := h.Svc.List(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"checklists": items})
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in services.ChecklistInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	item, err := h.Svc.Update(r.Context(), id, uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Toggle: POST /checklists/{id}/toggle
func (h *ChecklistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	item, err := h.Svc.Toggle(r.Context(), id, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
