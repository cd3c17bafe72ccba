package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/rs/zerolog"
)

// InvoiceHandler serves the monthly invoice workflow and the invoice reader.
type InvoiceHandler struct {
	Aggregator *services.Aggregator
	Closer     *services.Closer
	Exporter   *services.Exporter
	Invoices   *services.InvoiceService
	Log        zerolog.Logger
	// DefaultLang is used for CSV headers and messages when the request names none.
	DefaultLang string
}

func (h *InvoiceHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.Log, h.DefaultLang, err, false)
}

// Preview: GET /invoices/preview?month=YYYY-MM
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.Aggregator.Preview(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Close: POST /invoices/close?month=YYYY-MM
func (h *InvoiceHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.Closer.Close(r.Context(), r.URL.Query().Get("month"), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Export: GET /invoices/export?month=YYYY-MM&lang=en|ja
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	out, err := h.Exporter.ExportCSV(r.Context(), r.URL.Query().Get("month"), lang(r, h.DefaultLang))
	if err != nil {
		writeServiceError(w, r, h.Log, h.DefaultLang, err, true)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+out.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

// List: GET /invoices?status=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Invoices.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invs, "total": len(invs)})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.Invoices.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus: PATCH /invoices/{id} {"status": "paid"}
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	actor, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.Invoices.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, _ := auth.UserIDFromContext(r.Context())
	if err := h.Invoices.Delete(r.Context(), id, actor); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
