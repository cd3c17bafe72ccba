package handlers

import (
	"net/http"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/rs/zerolog"
)

type ProjectHandler struct {
	Svc         *services.ProjectService
	Log         zerolog.Logger
	DefaultLang string
}

func (h *ProjectHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	p, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// List: GET /projects?page&per_page&management_no&machine_no&include_inactive
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.ProjectFilter{
		ManagementNo:    q.Get("management_no"),
		MachineNo:       q.Get("machine_no"),
		IncludeInactive: queryBool(r, "include_inactive"),
		Page:            services.NewPage(queryInt(r, "page"), queryInt(r, "per_page")),
	}
	projects, total, err := h.Svc.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pageResponse("projects", projects, total, f.Page))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in services.ProjectInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete deactivates the project; its logged time stays billable.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
