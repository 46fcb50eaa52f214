package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newNoopLoggerLimit() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRateLimitMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	newRequest := func(remoteAddr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remoteAddr
		return req
	}

	t.Run("allows requests within burst", func(t *testing.T) {
		handler := RateLimitMiddleware(newNoopLoggerLimit(), 1, 5)(testHandler)
		for range 5 {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("10.0.0.1:5000"))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "success", w.Body.String())
		}
	})

	t.Run("blocks requests exceeding rate limit", func(t *testing.T) {
		handler := RateLimitMiddleware(newNoopLoggerLimit(), 1, 1)(testHandler)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("10.0.0.1:5000"))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("10.0.0.1:5001"))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("limits each address separately", func(t *testing.T) {
		handler := RateLimitMiddleware(newNoopLoggerLimit(), 1, 1)(testHandler)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("10.0.0.1:5000"))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("10.0.0.2:5000"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		handler := RateLimitMiddleware(newNoopLoggerLimit(), 0, 0)(testHandler)
		for range 20 {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("10.0.0.1:5000"))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:4321"
	assert.Equal(t, "192.168.1.10", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}
