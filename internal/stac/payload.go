// Package stac builds STAC item-search requests, talks to the catalog and
// normalizes the returned items.
package stac

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
)

const (
	cloudCoverProperty = "eo:cloud_cover"
	datetimeField      = "properties.datetime"
)

type SearchPayload struct {
	Collections []string   `json:"collections"`
	Limit       int        `json:"limit"`
	BBox        model.BBox `json:"bbox"`
	Query       Query      `json:"query"`
	Sort        []SortBy   `json:"sort"`
	Datetime    string     `json:"datetime,omitempty"`
}

// Query is the STAC query-extension object; only cloud cover is constrained.
type Query map[string]Comparison

type Comparison struct {
	LTE int `json:"lte"`
}

type SortBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// BuildPayload assembles the upstream search body. bbox is already resolved.
func BuildPayload(f model.SearchFilter, bbox model.BBox) SearchPayload {
	cols := make([]string, len(f.Collections))
	copy(cols, f.Collections)
	return SearchPayload{
		Collections: cols,
		Limit:       f.Limit,
		BBox:        bbox,
		Query:       Query{cloudCoverProperty: {LTE: f.CloudCover}},
		Sort:        []SortBy{{Field: datetimeField, Direction: "desc"}},
		Datetime:    f.Datetime,
	}
}

// Fingerprint is a stable hash of the encoded payload, used to correlate logs.
func Fingerprint(p SearchPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), nil
}
