package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowAll(t *testing.T) {
	h := NewCORSMiddleware([]string{"*"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://anywhere.example.com" {
		t.Fatalf("missing allow-origin header")
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := NewCORSMiddleware([]string{"https://app.example.com"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be echoed back")
	}
}

func TestCORSSubdomainBoundary(t *testing.T) {
	h := NewCORSMiddleware([]string{"example.com"}).Handler(okHandler())

	send := func(origin string) string {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Header().Get("Access-Control-Allow-Origin")
	}

	if send("app.example.com") != "app.example.com" {
		t.Fatalf("subdomain of an allowed origin should pass")
	}
	if send("evil-example.com") != "" {
		t.Fatalf("suffix without a dot boundary must not pass")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := NewCORSMiddleware([]string{"*"}).Handler(next)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight should return 204, got %d", rec.Code)
	}
	if called {
		t.Fatalf("preflight must not reach the next handler")
	}
}

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)
	h := rl.Handler(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if send("10.0.0.1:1234") != http.StatusOK || send("10.0.0.1:1234") != http.StatusOK {
		t.Fatalf("burst requests should pass")
	}
	if send("10.0.0.1:1234") != http.StatusTooManyRequests {
		t.Fatalf("third request should be throttled")
	}
	if send("10.0.0.2:1234") != http.StatusOK {
		t.Fatalf("another client must not be affected")
	}
}
