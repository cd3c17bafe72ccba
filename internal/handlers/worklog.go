package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/gate"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/policy"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WorkLogHandler serves the time-entry ledger. Update and delete load the
// entry first so the ownership policy can see who logged it.
type WorkLogHandler struct {
	Svc         *services.WorkLogService
	Gate        *policy.AuthGate
	Log         zerolog.Logger
	DefaultLang string
}

func (h *WorkLogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

func (h *WorkLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.WorkLogInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	wl, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wl)
}

func (h *WorkLogHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseWorkLogFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logs, total, err := h.Svc.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pageResponse("worklogs", logs, total, services.NewPage(f.Page.Page, f.Page.PerPage)))
}

func parseWorkLogFilter(r *http.Request) (services.WorkLogFilter, error) {
	q := r.URL.Query()
	f := services.WorkLogFilter{Page: services.Page{Page: queryInt(r, "page"), PerPage: queryInt(r, "per_page")}}
	bad := map[string]string{}
	if s := q.Get("project_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			bad["project_id"] = "invalid_id"
		}
		f.ProjectID = id
	}
	if s := q.Get("user_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			bad["user_id"] = "invalid_id"
		}
		f.UserID = uint(n)
	}
	if s := q.Get("work_date"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			bad["work_date"] = "invalid_date"
		}
		f.WorkDate = &d
	}
	if len(bad) > 0 {
		return f, &services.ValidationError{Violations: bad}
	}
	return f, nil
}

// load checks the caller's profile for action, then fetches the {id} entry
// and runs the ownership check on it. Callers without the permission get
// 403 whether or not the entry exists.
func (h *WorkLogHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.WorkLog, bool) {
	if !h.Gate.Check(w, r, action, policy.ResourceWorkLog, nil) {
		return nil, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	wl, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if !h.Gate.Check(w, r, action, policy.ResourceWorkLog, wl) {
		return nil, false
	}
	return wl, true
}

func (h *WorkLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, wl)
}

func (h *WorkLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var in services.WorkLogInput
	if err := httpx.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.Svc.Update(r.Context(), wl, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *WorkLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.load(w, r, gate.ActionDelete)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), wl); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary: GET /worklogs/summary/{project_id}
func (h *WorkLogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "project_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sum, err := h.Svc.Summary(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}
