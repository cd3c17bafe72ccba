package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusConflict, "conflict", map[string]string{"field": "name"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"conflict","details":{"field":"name"}}`, rec.Body.String())
}

func TestJSONNil(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "null", rec.Body.String())
}

func TestDecode(t *testing.T) {
	var v struct {
		Status string `json:"status"`
	}
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"paid"}`))
	require.NoError(t, Decode(httptest.NewRecorder(), req, &v))
	assert.Equal(t, "paid", v.Status)

	for _, body := range []string{"", "{", "[1,2]"} {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
		err := Decode(httptest.NewRecorder(), req, &v)
		assert.True(t, errors.Is(err, ErrBadBody), "body %q", body)
	}
}
