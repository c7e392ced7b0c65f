// Package model defines core domain types shared across the service.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/apperr"
)

// BBox is [minX, minY, maxX, maxY] in lon/lat degrees.
type BBox [4]float64

// DefaultBBox is the region searched when neither the caller nor the AOI yields a box.
var DefaultBBox = BBox{34.7, -1.8, 35.4, -1.0}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b[0], b[1], b[2], b[3])
}

// Valid reports min<=max on both axes.
func (b BBox) Valid() bool {
	return b[0] <= b[2] && b[1] <= b[3]
}

// ParseBBox parses "minX,minY,maxX,maxY". Anything other than four finite numbers
// is an invalid argument.
func ParseBBox(raw string) (BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("%w: bbox expects 4 comma-separated numbers, got %d", apperr.ErrInvalidArgument, len(parts))
	}
	var bb BBox
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("%w: bbox[%d]: %q is not a number", apperr.ErrInvalidArgument, i, p)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return BBox{}, fmt.Errorf("%w: bbox[%d]: %q is not finite", apperr.ErrInvalidArgument, i, p)
		}
		bb[i] = f
	}
	return bb, nil
}

type SearchFilter struct {
	Collections []string
	Limit       int
	BBox        *string // raw "minX,minY,maxX,maxY"; nil means use the AOI
	CloudCover  int
	Datetime    string // opaque, passed through
}

// ResultItem is the normalized search result returned to clients. Every field except
// VisualHref holds the upstream JSON verbatim; absent fields encode as null.
type ResultItem struct {
	ID         json.RawMessage `json:"id"`
	Datetime   json.RawMessage `json:"datetime"`
	CloudCover json.RawMessage `json:"cloud_cover"`
	Geometry   json.RawMessage `json:"geometry"`
	Collection json.RawMessage `json:"collection"`
	VisualHref *string         `json:"visual_href"`
}

type SearchResponse struct {
	Items []ResultItem `json:"items"`
}
