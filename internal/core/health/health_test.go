package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLiveness_Handler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	Liveness()(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	ct := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type=%q want application/json", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("body=%v want ok=true", body)
	}
}

func TestReadiness_ReportsFailedChecks(t *testing.T) {
	h := Readiness(map[string]Checker{
		"aoi": CheckerFunc(func(context.Context) error { return errors.New("AOI file missing") }),
		"ok":  CheckerFunc(func(context.Context) error { return nil }),
	})
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"aoi":"AOI file missing"`) {
		t.Fatalf("body=%s", rr.Body.String())
	}
}

func TestReadiness_AllPass(t *testing.T) {
	h := Readiness(map[string]Checker{"ok": CheckerFunc(func(context.Context) error { return nil })})
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
}
