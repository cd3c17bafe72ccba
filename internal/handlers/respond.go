// Package handlers exposes the services over JSON/HTTP. Routing and
// permission middleware live in cmd/server; handlers only decode, call a
// service and map its errors.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/i18n"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// errorBody is the details object of every error response.
type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// lang picks the response language from ?lang= or Accept-Language.
func lang(r *http.Request, def string) string {
	return i18n.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), def)
}

// writeServiceError maps service sentinels to statuses. Anything unrecognised
// is logged with its cause and answered with an opaque 500.
// notFoundOnEmpty turns ErrNothingToInvoice into a 404 (export).
func writeServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, defLang string, err error, notFoundOnEmpty bool) {
	l := lang(r, defLang)
	status, code := classify(err, notFoundOnEmpty)
	body := errorBody{Message: i18n.T(l, code)}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Fields = make(map[string]string, len(verr.Violations))
		for field, v := range verr.Violations {
			body.Fields[field] = i18n.T(l, v)
		}
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str(logger.FieldRequestID, middleware.GetReqID(r.Context())).
			Str(logger.FieldMethod, r.Method).
			Str(logger.FieldPath, r.URL.Path).
			Msg("request failed")
	}
	httpx.JSONError(w, status, code, body)
}

func classify(err error, notFoundOnEmpty bool) (int, string) {
	switch {
	case errors.Is(err, services.ErrNothingToInvoice):
		if notFoundOnEmpty {
			return http.StatusNotFound, "nothing_to_invoice"
		}
		return http.StatusBadRequest, "nothing_to_invoice"
	case errors.Is(err, services.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	// Conflicts arrive wrapped in persistence failures, so they are checked first.
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrAlreadyClosed):
		return http.StatusConflict, "already_closed"
	case errors.Is(err, services.ErrSequenceExhausted):
		return http.StatusConflict, "sequence_exhausted"
	// A store's not-found inside a failed close or preview is still a server fault.
	case errors.Is(err, services.ErrPersistenceFailed), errors.Is(err, services.ErrAggregationFailed):
		return http.StatusInternalServerError, "internal_error"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, httpx.ErrBadBody):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &services.ValidationError{Violations: map[string]string{name: "invalid_id"}}
	}
	return id, nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// pageResponse is the envelope of paginated listings.
func pageResponse(key string, items any, total int64, p services.Page) map[string]any {
	return map[string]any{
		key:        items,
		"total":    total,
		"page":     p.Page,
		"per_page": p.PerPage,
	}
}
