package gaps

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswierk/allocator/internal/domain"
)

func postAnalyze(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	handler := NewHandler(NewAnalyzer(zerolog.Nop()), zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/optimize/gap-analysis", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.HandleAnalyze(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	rec := postAnalyze(t, map[string]interface{}{
		"current_allocation": map[string]float64{"US": 50, "Gold": 10},
		"target_allocation":  map[string]float64{"US": 62, "Gold": 12},
		"valuations":         map[string]string{"Gold": "favorable"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	require.Len(t, analysis.Rows, 2)
	assert.Equal(t, domain.RegionUS, analysis.Rows[0].Region)
	assert.Equal(t, PriorityHigh, analysis.Rows[0].Priority)
	assert.Equal(t, PriorityConsider, analysis.Rows[1].Priority)
}

func TestHandleAnalyze_EmptyBodyRejected(t *testing.T) {
	rec := postAnalyze(t, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_InvalidSignalRejected(t *testing.T) {
	rec := postAnalyze(t, map[string]interface{}{
		"current_allocation": map[string]float64{"US": 50},
		"target_allocation":  map[string]float64{"US": 60},
		"valuations":         map[string]string{"US": "cheap"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
