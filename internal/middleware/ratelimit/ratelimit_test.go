package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	l := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(l.Stop)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_Allow(t *testing.T) {
	l, now := newTestLimiter(t, 2)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request in the window should be rejected")
	}
	if !l.Allow("b") {
		t.Error("other clients have their own window")
	}

	*now = now.Add(time.Minute)
	if !l.Allow("a") {
		t.Error("new window should allow again")
	}
	if got := l.GetMetrics(); got.Rejected != 1 || got.ClientCount != 2 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, now := newTestLimiter(t, 5)
	l.Allow("old")
	*now = now.Add(11 * time.Minute)
	l.Allow("new")

	l.cleanup()
	if got := l.GetMetrics().ClientCount; got != 1 {
		t.Errorf("ClientCount = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	l, now := newTestLimiter(t, 1)
	h := l.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	*now = now.Add(20 * time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "40" {
		t.Errorf("Retry-After = %q, want 40", got)
	}
}

func TestLimiter_MiddlewarePassesKeyToOnLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	extracted := 0
	var limitedKey string
	h := l.Middleware(
		func(*http.Request) string { extracted++; return "203.0.113.7" },
		func(w http.ResponseWriter, r *http.Request, key string) {
			limitedKey = key
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/export.pdf", nil))
	}
	if limitedKey != "203.0.113.7" {
		t.Errorf("onLimit key = %q, want 203.0.113.7", limitedKey)
	}
	if extracted != 2 {
		t.Errorf("key extracted %d times, want once per request", extracted)
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(Config{})
	l.Stop()
	l.Stop()
	if l.requestsPerMinute != 60 {
		t.Errorf("default requests per minute = %d", l.requestsPerMinute)
	}
}
