package handlers

import (
	"net/http"

	"github.com/diewo77/go-workhours/gate"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// MasterHandler serves one lookup table. Each table gets its own instance.
type MasterHandler[T any, P services.MasterPtr[T]] struct {
	Svc         *services.MasterService[T, P]
	Log         zerolog.Logger
	DefaultLang string
}

func (h *MasterHandler[T, P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

// Routes mounts list/get/create/update/delete, each behind require(action).
func (h *MasterHandler[T, P]) Routes(require func(gate.Action) func(http.Handler) http.Handler) chi.Router {
	rt := chi.NewRouter()
	rt.With(require(gate.ActionList)).Get("/", h.List)
	rt.With(require(gate.ActionView)).Get("/{id}", h.Get)
	rt.With(require(gate.ActionCreate)).Post("/", h.Create)
	rt.With(require(gate.ActionUpdate)).Put("/{id}", h.Update)
	rt.With(require(gate.ActionDelete)).Delete("/{id}", h.Delete)
	return rt
}

func (h *MasterHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.List(r.Context(), queryBool(r, "include_inactive"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "total": len(rows)})
}

func (h *MasterHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *MasterHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	row := h.Svc.New()
	if err := httpx.Decode(w, r, row); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Svc.Create(r.Context(), row); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

// Update replaces the row; omitted fields take their defaults.
func (h *MasterHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row := h.Svc.New()
	if err := httpx.Decode(w, r, row); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.Svc.Update(r.Context(), id, row)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *MasterHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
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
