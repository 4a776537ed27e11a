package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter.routing.org/internal/logging"
)

func TestRequestLoggingMiddleware(t *testing.T) {
	t.Run("logs request details with a request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		var contextLogger *slog.Logger
		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contextLogger = logging.FromContext(r.Context())
			_, _ = w.Write([]byte("test response"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/where/stops.json?key=test", nil)
		req.Header.Set("User-Agent", "test-client/1.0")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		requestID := rec.Header().Get(requestIDHeader)
		assert.Len(t, requestID, 36)
		require.NotNil(t, contextLogger)

		output := buf.String()
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Contains(t, output, `"method":"GET"`)
		assert.Contains(t, output, `"path":"/api/where/stops.json"`)
		assert.Contains(t, output, `"status":200`)
		assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
		assert.Contains(t, output, `"request_id":"`+requestID+`"`)
		assert.Contains(t, output, `"component":"http_server"`)
		assert.NotContains(t, output, "key=test")
	})

	t.Run("keeps the caller request id and logs server errors at error level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		req.Header.Set(requestIDHeader, "trace-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"status":500`)
		assert.Contains(t, output, `"request_id":"trace-123"`)
	})

	t.Run("replaces oversized request ids", func(t *testing.T) {
		handler := NewRequestLoggingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Len(t, rec.Header().Get(requestIDHeader), 36)
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test response"))
	})

	t.Run("sets headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securityHeaders(handler, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		headers := rec.Header()
		assert.Equal(t, "test response", rec.Body.String())
		assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
		assert.Equal(t, "default-src 'none'; frame-ancestors 'none';", headers.Get("Content-Security-Policy"))
		assert.Empty(t, headers.Get("Strict-Transport-Security"))
		assert.Empty(t, headers.Get("Access-Control-Allow-Origin"))
	})

	t.Run("strict transport in production", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securityHeaders(handler, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/where/plan-trip.json", nil)
		req.Header.Set("Origin", "https://commuter.example")
		rec := httptest.NewRecorder()
		securityHeaders(handler, false).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"test": "data"}`, 1000)
	jsonHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	})

	t.Run("compresses large json when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		CompressionMiddleware(jsonHandler).ServeHTTP(rec, req)

		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Less(t, rec.Body.Len(), len(large))

		reader, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()
		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, large, string(decompressed))
	})

	t.Run("does not compress without gzip", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CompressionMiddleware(jsonHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})

	t.Run("does not compress small responses", func(t *testing.T) {
		small := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		CompressionMiddleware(small).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("skips other content types", func(t *testing.T) {
		text := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(large))
		})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		CompressionMiddleware(text).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})
}
