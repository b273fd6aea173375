package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFloodGuardAllowsWithinBurst(t *testing.T) {
	fg := NewFloodGuard(1, 3)
	for i := 0; i < 3; i++ {
		if !fg.Allow("203.0.113.1") {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if fg.Allow("203.0.113.1") {
		t.Fatalf("expected 4th request to be throttled")
	}
}

func TestFloodGuardPerIP(t *testing.T) {
	fg := NewFloodGuard(1, 1)
	if !fg.Allow("203.0.113.1") {
		t.Fatalf("expected first IP to be allowed")
	}
	if !fg.Allow("203.0.113.2") {
		t.Fatalf("expected second IP to have its own bucket")
	}
}

func TestThrottleMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := Throttle(0.01, 1)

	req := httptest.NewRequest(http.MethodPost, "/intake/contact", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.9")

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec.Code)
	}
}
