package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	wrapped := &services.OpError{Op: "close", Month: "2025-10", Kind: services.ErrPersistenceFailed, Err: services.ErrConflict}
	readBack := &services.OpError{Op: "close", Month: "2025-10", Kind: services.ErrPersistenceFailed, Err: services.ErrNotFound}
	aggregation := &services.OpError{Op: "preview", Month: "2025-10", Kind: services.ErrAggregationFailed, Err: services.ErrNotFound}
	tests := []struct {
		name            string
		err             error
		notFoundOnEmpty bool
		status          int
		code            string
	}{
		{"nothing", services.ErrNothingToInvoice, false, http.StatusBadRequest, "nothing_to_invoice"},
		{"nothing on export", services.ErrNothingToInvoice, true, http.StatusNotFound, "nothing_to_invoice"},
		{"invalid", fmt.Errorf("%w: month", services.ErrInvalidArgument), false, http.StatusBadRequest, "invalid_argument"},
		{"validation", &services.ValidationError{}, false, http.StatusBadRequest, "invalid_argument"},
		{"not found", services.ErrNotFound, false, http.StatusNotFound, "not_found"},
		{"conflict inside persistence", wrapped, false, http.StatusConflict, "conflict"},
		{"already closed", services.ErrAlreadyClosed, false, http.StatusConflict, "already_closed"},
		{"exhausted", services.ErrSequenceExhausted, false, http.StatusConflict, "sequence_exhausted"},
		{"bad body", httpx.ErrBadBody, false, http.StatusBadRequest, "bad_request"},
		{"persistence", services.ErrPersistenceFailed, false, http.StatusInternalServerError, "internal_error"},
		{"read-back missing after close", readBack, false, http.StatusInternalServerError, "internal_error"},
		{"aggregation", aggregation, false, http.StatusInternalServerError, "internal_error"},
		{"unknown", errors.New("boom"), false, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err, tt.notFoundOnEmpty)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteServiceErrorTranslatesFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/worklogs?lang=ja", nil)
	rec := httptest.NewRecorder()
	err := &services.ValidationError{Violations: map[string]string{"duration_minutes": "must_be_positive"}}

	writeServiceError(rec, req, logger.Nop(), "en", err, false)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error   string    `json:"error"`
		Details errorBody `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_argument", body.Error)
	assert.Equal(t, "リクエストが不正です", body.Details.Message)
	assert.Equal(t, "正の値を指定してください", body.Details.Fields["duration_minutes"])
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	rec := httptest.NewRecorder()

	writeServiceError(rec, req, logger.Nop(), "en", errors.New("pq: password authentication failed"), false)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestPathID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nope")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextWithRoute(req, rctx))

	_, err := pathID(req, "id")
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
