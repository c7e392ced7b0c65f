// Package router parses and validates HTTP requests and renders responses for the API routes.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/aoi"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/apperr"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/config"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/observability"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/search"
)

const fingerprintHeader = "X-Query-Fingerprint"

// Searcher runs a validated search.
type Searcher interface {
	Search(ctx context.Context, f model.SearchFilter) (search.Result, error)
}

// AOILoader returns the AOI as loaded from its source.
type AOILoader interface {
	Load(ctx context.Context) (aoi.AreaOfInterest, error)
}

// Instrument records request count and latency for route.
func Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandleSearch validates the query string and runs the search.
func HandleSearch(logger *slog.Logger, cfg config.Config, s Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ParseSearchRequest(r, cfg)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		res, err := s.Search(r.Context(), f)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		if res.Fingerprint != "" {
			w.Header().Set(fingerprintHeader, res.Fingerprint)
		}
		items := res.Items
		if items == nil {
			items = []model.ResultItem{}
		}
		writeJSON(w, http.StatusOK, model.SearchResponse{Items: items})
	}
}

// HandleAOI serves the AOI bytes unchanged.
func HandleAOI(logger *slog.Logger, l AOILoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := l.Load(r.Context())
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.Raw)
	}
}

// ParseSearchRequest reads the /stac/search query string, filling defaults from cfg.
func ParseSearchRequest(r *http.Request, cfg config.Config) (model.SearchFilter, error) {
	q := r.URL.Query()

	f := model.SearchFilter{
		Collections: parseCollections(q["collections"]),
		Limit:       cfg.DefaultLimit,
		CloudCover:  cfg.DefaultCloudCover,
		Datetime:    q.Get("datetime"),
	}
	if len(f.Collections) == 0 {
		f.Collections = []string{cfg.DefaultCollection}
	}

	if v, ok := q["limit"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil || n <= 0 {
			return model.SearchFilter{}, fmt.Errorf("%w: limit must be a positive integer, got %q", apperr.ErrInvalidArgument, v[0])
		}
		f.Limit = n
	}
	if v, ok := q["cloud_cover"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil {
			return model.SearchFilter{}, fmt.Errorf("%w: cloud_cover must be an integer, got %q", apperr.ErrInvalidArgument, v[0])
		}
		f.CloudCover = n
	}
	if v, ok := q["bbox"]; ok {
		raw := v[0]
		f.BBox = &raw
	}
	return f, nil
}

// parseCollections accepts repeated params and comma-separated lists.
func parseCollections(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		logger.InfoContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorBody{Detail: apperr.Detail(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
