package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go401-gateway/internal/response"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) TestConnection(ctx context.Context) error { return f(ctx) }

type staticStats map[string]interface{}

func (s staticStats) GetMetrics() map[string]interface{} { return s }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestReady(t *testing.T) {
	healthy := checkerFunc(func(context.Context) error { return nil })
	broken := checkerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all healthy", func(t *testing.T) {
		handler := Ready(map[string]Checker{"bigquery": healthy}, map[string]StatsSource{"catalog_cache": staticStats{"hits": 1}})
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"bigquery":"healthy"`)
		assert.Contains(t, rec.Body.String(), `"catalog_cache"`)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		handler := Ready(map[string]Checker{"bigquery": healthy, "sessions": broken}, nil)
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body response.StandardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, "sessions: connection refused", body.Error.Details)
	})
}
