// Package aoi loads the default area of interest and derives its bounding box.
package aoi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/apperr"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/observability"
)

// ErrNoCoordinates means the AOI has no Polygon or MultiPolygon coordinates.
var ErrNoCoordinates = errors.New("aoi has no polygon coordinates")

// AreaOfInterest is the AOI feature collection exactly as loaded.
type AreaOfInterest struct {
	Raw json.RawMessage
}

// Source provides the AOI. Implementations read fresh on every call.
type Source interface {
	Load(ctx context.Context) (AreaOfInterest, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (AreaOfInterest, error) {
	if err := ctx.Err(); err != nil {
		return AreaOfInterest{}, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return AreaOfInterest{}, fmt.Errorf("read aoi %s: %w", s.Path, apperr.ErrAOIMissing)
		}
		return AreaOfInterest{}, fmt.Errorf("read aoi %s: %w: %w", s.Path, apperr.ErrAOIMissing, err)
	}
	if !json.Valid(b) {
		return AreaOfInterest{}, fmt.Errorf("read aoi %s: %w", s.Path, apperr.ErrAOIInvalid)
	}
	return AreaOfInterest{Raw: b}, nil
}

// ExtractBBox pools every ring coordinate of the Polygon and MultiPolygon features
// and returns their min/max. Other geometry types are ignored.
func ExtractBBox(a AreaOfInterest) (model.BBox, error) {
	geoms, err := featureGeometries(a.Raw)
	if err != nil {
		return model.BBox{}, err
	}

	var (
		bound orb.Bound
		seen  bool
	)
	add := func(rings []orb.Ring) {
		for _, ring := range rings {
			for _, p := range ring {
				if !seen {
					bound = orb.Bound{Min: p, Max: p}
					seen = true
					continue
				}
				bound = bound.Extend(p)
			}
		}
	}

	for _, geom := range geoms {
		switch g := geom.(type) {
		case orb.Polygon:
			add(g)
		case orb.MultiPolygon:
			for _, poly := range g {
				add(poly)
			}
		}
	}
	if !seen {
		return model.BBox{}, ErrNoCoordinates
	}
	return model.BBox{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}, nil
}

// looseCollection is a feature collection with only features[].geometry read.
type looseCollection struct {
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// featureGeometries returns the geometry of every feature. A document orb rejects
// as a FeatureCollection (no "type" members) is read again as a looseCollection.
func featureGeometries(raw []byte) ([]orb.Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err == nil {
		out := make([]orb.Geometry, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f != nil {
				out = append(out, f.Geometry)
			}
		}
		return out, nil
	}

	var loose looseCollection
	if lerr := json.Unmarshal(raw, &loose); lerr != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	out := make([]orb.Geometry, 0, len(loose.Features))
	for i, f := range loose.Features {
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		g, gerr := geojson.UnmarshalGeometry(f.Geometry)
		if gerr != nil {
			return nil, fmt.Errorf("parse feature %d geometry: %w", i, gerr)
		}
		out = append(out, g.Geometry())
	}
	return out, nil
}

// DeriveBBox is ExtractBBox with every failure collapsed to false.
func DeriveBBox(a AreaOfInterest) (model.BBox, bool) {
	bb, err := ExtractBBox(a)
	if err != nil {
		return model.BBox{}, false
	}
	return bb, true
}

// Resolver supplies the search bbox when the caller gives none.
type Resolver struct {
	src    Source
	logger *slog.Logger
}

func NewResolver(src Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, logger: logger}
}

func (r *Resolver) Load(ctx context.Context) (AreaOfInterest, error) {
	return r.src.Load(ctx)
}

// ResolveBBox returns the AOI bbox, or model.DefaultBBox when none can be derived.
// A load failure is returned as is.
func (r *Resolver) ResolveBBox(ctx context.Context) (model.BBox, error) {
	a, err := r.src.Load(ctx)
	if err != nil {
		return model.BBox{}, err
	}
	bb, err := ExtractBBox(a)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, ErrNoCoordinates) {
			reason = "no_coordinates"
		}
		// still a fallback, but corrupt AOI data should show up somewhere
		r.logger.WarnContext(ctx, "aoi bbox unavailable; using default region",
			"reason", reason, "err", err, "bbox", model.DefaultBBox.String())
		observability.IncAOIFallback(reason)
		return model.DefaultBBox, nil
	}
	return bb, nil
}
