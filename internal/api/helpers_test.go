package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-graph-atlas/internal/apperr"
)

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	r.RemoteAddr = "10.0.0.1:5555"

	if got := clientIP(r); got != "203.0.113.5" {
		t.Fatalf("clientIP = %q, want 203.0.113.5", got)
	}
}

func TestClientIP_FallsBackToRemoteAddr(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:9999"

	if got := clientIP(r); got != "198.51.100.7" {
		t.Fatalf("clientIP = %q, want 198.51.100.7", got)
	}
}

func TestParseLimitOffset_DefaultsAndBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=50", 50},
		{"limit=0", 20},
		{"limit=-5", 20},
		{"limit=5000", 20},
		{"limit=abc", 20},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", "/?"+c.query, nil)
		if got := parseLimitOffset(r, 20); got != c.want {
			t.Errorf("parseLimitOffset(%q) = %d, want %d", c.query, got, c.want)
		}
	}
}

func TestTimeframeWindow_DefaultsAndParses(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/?timeframe_window=14", nil)
	if got := timeframeWindow(r); got != 14 {
		t.Fatalf("timeframeWindow = %d, want 14", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := timeframeWindow(r); got != defaultTimeframeDays {
		t.Fatalf("timeframeWindow default = %d, want %d", got, defaultTimeframeDays)
	}

	r = httptest.NewRequest("GET", "/?timeframe_window=-1", nil)
	if got := timeframeWindow(r); got != defaultTimeframeDays {
		t.Fatalf("negative timeframe_window should fall back to default, got %d", got)
	}
}

func TestIPLimiter_AllowsUpToBurstThenBlocks(t *testing.T) {
	t.Parallel()

	l := newIPLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatalf("request beyond burst should be rejected")
	}
}

func TestIPLimiter_TracksClientsIndependently(t *testing.T) {
	t.Parallel()

	l := newIPLimiter(1, 1, time.Minute)

	if !l.allow("a") {
		t.Fatalf("first request for client a should be allowed")
	}
	if !l.allow("b") {
		t.Fatalf("first request for client b should be allowed, independent bucket from a")
	}
	if l.allow("a") {
		t.Fatalf("second immediate request for client a should be rejected")
	}
}

func TestWriteError_MapsApperrKindsToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err      error
		wantCode int
	}{
		{apperr.NotFound("run missing"), http.StatusNotFound},
		{apperr.Validation("bad input", nil), http.StatusUnprocessableEntity},
		{apperr.UpstreamTransient("fetch", errors.New("timeout")), http.StatusBadGateway},
		{apperr.UpstreamHard(403, "forbidden"), http.StatusBadGateway},
		{apperr.Internal("boom", errors.New("x")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		writeError(w, c.err)
		if w.Code != c.wantCode {
			t.Errorf("writeError(%v) status = %d, want %d", c.err, w.Code, c.wantCode)
		}
	}
}

func TestCommonMiddleware_HandlesOptionsWithoutCallingNext(t *testing.T) {
	t.Parallel()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	r := httptest.NewRequest("OPTIONS", "/", nil)
	w := httptest.NewRecorder()
	commonMiddleware(next).ServeHTTP(w, r)

	if called {
		t.Fatalf("OPTIONS request should short-circuit before reaching next handler")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("OPTIONS status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header not set")
	}
}
