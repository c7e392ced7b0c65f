package stac

import "strings"

// Rule names, also used as metric labels.
const (
	RuleNamedAsset = "named_asset"
	RuleGeoTIFF    = "geotiff"
	RuleNone       = "none"
)

// previewKeys are the asset keys collections use for a display-ready image, in priority order.
var previewKeys = []string{"visual", "rendered_preview", "true_color"}

// previewRule returns the href and true when it resolves the preview. Returning false
// hands over to the next rule.
type previewRule struct {
	name    string
	resolve func(Assets) (string, bool)
}

var previewRules = []previewRule{
	{name: RuleNamedAsset, resolve: firstNamedAsset(previewKeys...)},
	{name: RuleGeoTIFF, resolve: firstHrefWithSuffix(".tif", ".tiff")},
}

// firstNamedAsset picks the first key present in assets. Only that key is consulted:
// when its href is empty the rule gives up rather than trying the next key.
func firstNamedAsset(keys ...string) func(Assets) (string, bool) {
	return func(a Assets) (string, bool) {
		for _, k := range keys {
			if asset, ok := a.Get(k); ok {
				return asset.Href, asset.Href != ""
			}
		}
		return "", false
	}
}

func firstHrefWithSuffix(suffixes ...string) func(Assets) (string, bool) {
	return func(a Assets) (string, bool) {
		for _, na := range a {
			for _, s := range suffixes {
				if strings.HasSuffix(na.Asset.Href, s) {
					return na.Asset.Href, true
				}
			}
		}
		return "", false
	}
}

// ResolvePreview applies the preview rules in order. It returns a nil href and
// RuleNone when no rule matches.
func ResolvePreview(a Assets) (*string, string) {
	for _, r := range previewRules {
		if href, ok := r.resolve(a); ok {
			return &href, r.name
		}
	}
	return nil, RuleNone
}
