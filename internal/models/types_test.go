package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoursFromMinutes(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{0, "0.00"},
		{45, "0.75"},
		{60, "1.00"},
		{89, "1.48"},
		{90, "1.50"},
		{91, "1.52"},
		{1, "0.02"},  // 0.01666...
		{3, "0.05"},  // exactly 0.05
		{20, "0.33"}, // 0.3333...
		{40, "0.67"}, // 0.6666...
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HoursFromMinutes(tt.minutes).String())
		})
	}
}

func TestNewHours_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, "0.01", NewHours(decimal.RequireFromString("0.005")).String())
	assert.Equal(t, "2.25", NewHours(decimal.RequireFromString("2.245")).String())
}

func TestHours_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		H Hours `json:"h"`
	}{HoursFromMinutes(90)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":1.50}`, string(b))
	assert.Contains(t, string(b), "1.50")
}

func TestDate_JSONRoundTrip(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-10-31"`), &d))
	assert.Equal(t, "2025-10-31", d.String())

	require.Error(t, json.Unmarshal([]byte(`"31/10/2025"`), &d))
	require.Error(t, json.Unmarshal([]byte(`20251031`), &d))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 12, 1, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12-01", d.String())

	require.NoError(t, d.Scan("2026-01-02 00:00:00+00:00"))
	assert.Equal(t, "2026-01-02", d.String())

	require.NoError(t, d.Scan([]byte("2026-02-03")))
	assert.Equal(t, "2026-02-03", d.String())

	require.Error(t, d.Scan(42))
}

func TestInvoiceStatus_Valid(t *testing.T) {
	assert.True(t, InvoiceStatusSent.Valid())
	assert.True(t, InvoiceStatusPaid.Valid())
	assert.True(t, InvoiceStatusCancelled.Valid())
	assert.False(t, InvoiceStatus("draft").Valid())
}

func TestWorkLog_GetUserID(t *testing.T) {
	w := &WorkLog{UserID: 42}
	if got := w.GetUserID(); got != 42 {
		t.Errorf("GetUserID() = %d, want 42", got)
	}
}
