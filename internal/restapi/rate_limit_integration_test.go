package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter.routing.org/internal/models"
)

// createRateLimitedApi serves the seed network allowing five requests per second per key.
func createRateLimitedApi(t *testing.T) *RestAPI {
	t.Helper()

	base := createTestApi(t)
	return newTestApiWithSource(t, base.TransitManager, base.TransitManager, 5)
}

func TestRateLimitingPerAPIKey(t *testing.T) {
	api := createRateLimitedApi(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	get := func(endpoint string) int {
		resp, err := http.Get(server.URL + endpoint)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	hitLimit := false
	for i := 0; i < 20; i++ {
		if get("/api/where/current-time.json?key=TEST") == http.StatusTooManyRequests {
			hitLimit = true
			break
		}
	}
	require.True(t, hitLimit, "TEST key should hit rate limit within 20 requests")

	// The limit follows the key across endpoints.
	assert.Equal(t, http.StatusTooManyRequests, get("/api/where/stops.json?key=TEST"))

	// Other keys keep their own budget.
	assert.Equal(t, http.StatusOK, get("/api/where/current-time.json?key=test-rate-limit"))

	// The health check is never limited.
	assert.Equal(t, http.StatusOK, get("/healthz"))
}

func TestRateLimitingWithoutAPIKey(t *testing.T) {
	api := createRateLimitedApi(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	for i := 0; i < 10; i++ {
		resp, err := http.Get(server.URL + "/api/where/current-time.json?key=unknown")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			"unknown keys are rejected before they reach the limiter")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("blocks after the burst", func(t *testing.T) {
		limiter := NewRateLimitMiddleware(2, time.Minute)
		defer limiter.Stop()
		handler := limiter.Handler(ok)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?key=k", nil))
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("rate limited response format", func(t *testing.T) {
		limiter := NewRateLimitMiddleware(1, time.Minute)
		defer limiter.Stop()
		handler := limiter.Handler(ok)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?key=k", nil))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?key=k", nil))

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var model models.ResponseModel
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&model))
		assert.Equal(t, http.StatusTooManyRequests, model.Code)
		assert.Contains(t, model.Text, "Rate limit exceeded")
		assert.Equal(t, 2, model.Version)
	})

	t.Run("exempt keys are never limited", func(t *testing.T) {
		limiter := NewRateLimitMiddleware(1, time.Minute, "kiosk")
		defer limiter.Stop()
		handler := limiter.Handler(ok)

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?key=kiosk", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		limiter := NewRateLimitMiddleware(0, time.Second)
		defer limiter.Stop()
		handler := limiter.Handler(ok)

		for i := 0; i < 50; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimitMiddleware(1, time.Second)
		limiter.Stop()
		limiter.Stop()
	})
}
