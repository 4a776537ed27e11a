package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCancellationHandling(t *testing.T) {
	api := createTestApi(t)
	handler := api.Handler()

	t.Run("canceled plan reports a timeout", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, "/api/where/plan-trip.json?key=TEST&fromStopId=cubao&toStopId=parang", nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("canceled shortest path reports a timeout", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, "/api/where/shortest-path/cubao/parang?key=TEST", nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("reasonable timeout completes", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, "/api/where/plan-trip.json?key=TEST&fromStopId=cubao&toStopId=parang", nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
