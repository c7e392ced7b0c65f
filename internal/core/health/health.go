// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Liveness always answers {"ok": true}; it touches neither the AOI nor the catalog.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

// Checker reports whether a dependency can serve requests.
type Checker interface {
	Check(ctx context.Context) error
}

type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Readiness runs every named check with a short deadline and answers 503 if any fails.
func Readiness(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status string            `json:"status"`
			Failed map[string]string `json:"failed,omitempty"`
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		out := resp{Status: "ready"}
		for name, c := range checks {
			if err := c.Check(ctx); err != nil {
				if out.Failed == nil {
					out.Failed = map[string]string{}
				}
				out.Failed[name] = err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if len(out.Failed) > 0 {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
