package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	err := Setup(Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestSetup_DefaultConfig(t *testing.T) {
	require.NoError(t, Setup(DefaultConfig()))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestMiddleware_LogsStatus(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	h := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	assert.Equal(t, "/api/invoices", inside[FieldPath])
	assert.Equal(t, float64(http.StatusTeapot), access[FieldStatus])
	assert.Equal(t, "GET", access[FieldMethod])
}
