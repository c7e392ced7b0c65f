package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mylog "github.com/mohammed-shakir/stac-aoi-proxy/internal/logger"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestCORS_Preflight(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})
	req := httptest.NewRequest(http.MethodOptions, "/stac/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom, Content-Type")
	rr := httptest.NewRecorder()

	CORS()(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin=%q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "X-Custom, Content-Type" {
		t.Fatalf("allow-headers=%q", got)
	}
}

func TestCORS_SimpleRequestWithoutOrigin(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	CORS()(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !called {
		t.Fatal("handler not called")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q want *", got)
	}
}

func TestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = mylog.RequestID(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr := httptest.NewRecorder()

	Logging(discard())(next).ServeHTTP(rr, req)

	if seen != "abc" {
		t.Fatalf("request id in ctx=%q want abc", seen)
	}
	if rr.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("response header=%q", rr.Header().Get("X-Request-ID"))
	}
}

func TestRecover_Returns500(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()
	Recover(discard())(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
}
