package stac

import (
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/observability"
)

// Normalize maps upstream items to result items, keeping upstream order.
func Normalize(items []Item) []model.ResultItem {
	out := make([]model.ResultItem, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeItem(it))
	}
	return out
}

func NormalizeItem(it Item) model.ResultItem {
	href, rule := ResolvePreview(it.Assets)
	observability.IncPreviewResolution(rule)
	return model.ResultItem{
		ID:         it.ID,
		Datetime:   it.Properties["datetime"],
		CloudCover: it.Properties[cloudCoverProperty],
		Geometry:   it.Geometry,
		Collection: it.Collection,
		VisualHref: href,
	}
}
