// Package search runs a catalog search for a caller filter: it resolves the bbox,
// builds the STAC payload, calls the catalog and normalizes the result.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/logger"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/stac"
)

// BBoxResolver supplies the bbox when the filter has none.
type BBoxResolver interface {
	ResolveBBox(ctx context.Context) (model.BBox, error)
}

type Service struct {
	logger   *slog.Logger
	resolver BBoxResolver
	catalog  stac.Catalog
}

type Result struct {
	Items       []model.ResultItem
	BBox        model.BBox
	Fingerprint string
}

func New(logger *slog.Logger, resolver BBoxResolver, catalog stac.Catalog) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, resolver: resolver, catalog: catalog}
}

// Search runs f against the catalog. A malformed bbox fails before the catalog is called.
func (s *Service) Search(ctx context.Context, f model.SearchFilter) (Result, error) {
	bbox, err := s.resolveBBox(ctx, f.BBox)
	if err != nil {
		return Result{}, err
	}

	payload := stac.BuildPayload(f, bbox)
	fp, err := stac.Fingerprint(payload)
	if err != nil {
		return Result{}, err
	}
	if len(f.Collections) > 0 {
		ctx = logger.WithCollection(ctx, f.Collections[0])
	}
	s.logger.DebugContext(ctx, "stac search",
		"fingerprint", fp,
		"bbox", bbox.String(),
		"limit", f.Limit,
		"cloud_cover", f.CloudCover,
		"datetime", f.Datetime)

	page, err := s.catalog.Search(ctx, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "stac search failed", "fingerprint", fp, "err", err)
		return Result{}, fmt.Errorf("catalog search: %w", err)
	}
	return Result{
		Items:       stac.Normalize(page.Features),
		BBox:        bbox,
		Fingerprint: fp,
	}, nil
}

func (s *Service) resolveBBox(ctx context.Context, raw *string) (model.BBox, error) {
	if raw != nil {
		return model.ParseBBox(*raw)
	}
	bb, err := s.resolver.ResolveBBox(ctx)
	if err != nil {
		return model.BBox{}, fmt.Errorf("resolve aoi bbox: %w", err)
	}
	return bb, nil
}
