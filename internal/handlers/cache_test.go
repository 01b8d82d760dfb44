package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	err         error
	invalidated int
}

func (f *fakeCatalog) InvalidateCache(context.Context) error {
	f.invalidated++
	return f.err
}

func (f *fakeCatalog) GetMetrics() map[string]interface{} {
	return map[string]interface{}{"hits": 3, "misses": 1}
}

type fakeBackend struct{}

func (fakeBackend) Stats(context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"type": "memory"}, nil
}

func TestCacheStats(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheStats(fakeBackend{}, &fakeCatalog{})(rec, httptest.NewRequest(http.MethodGet, "/catalog/cache", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hits":3`)
	assert.Contains(t, rec.Body.String(), `"type":"memory"`)
}

func TestInvalidateCatalog(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "success", expected: http.StatusOK},
		{name: "backend failure", err: errors.New("redis down"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{err: tt.err}
			rec := httptest.NewRecorder()
			InvalidateCatalog(catalog, zap.NewNop())(rec, httptest.NewRequest(http.MethodDelete, "/catalog/cache", nil))

			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, 1, catalog.invalidated)
		})
	}
}
