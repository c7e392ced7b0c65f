package stac

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAssets(t *testing.T, raw string) Assets {
	t.Helper()
	var a Assets
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	return a
}

func TestResolvePreview_VisualBeatsGenericTIFF(t *testing.T) {
	a := decodeAssets(t, `{
		"B04": {"href": "https://x/B04.tif"},
		"visual": {"href": "https://x/TCI.jp2"}
	}`)
	href, rule := ResolvePreview(a)
	require.NotNil(t, href)
	assert.Equal(t, "https://x/TCI.jp2", *href)
	assert.Equal(t, RuleNamedAsset, rule)
}

func TestResolvePreview_KeyPriority(t *testing.T) {
	a := decodeAssets(t, `{
		"true_color": {"href": "https://x/tc.png"},
		"rendered_preview": {"href": "https://x/preview.png"}
	}`)
	href, _ := ResolvePreview(a)
	require.NotNil(t, href)
	assert.Equal(t, "https://x/preview.png", *href)
}

func TestResolvePreview_TIFFSuffixFallback(t *testing.T) {
	a := decodeAssets(t, `{"data": {"href": "https://x/data.tiff"}}`)
	href, rule := ResolvePreview(a)
	require.NotNil(t, href)
	assert.Equal(t, "https://x/data.tiff", *href)
	assert.Equal(t, RuleGeoTIFF, rule)
}

func TestResolvePreview_FirstTIFFInDocumentOrder(t *testing.T) {
	a := decodeAssets(t, `{
		"thumbnail": {"href": "https://x/thumb.jpg"},
		"zzz": {"href": "https://x/z.tif"},
		"aaa": {"href": "https://x/a.tif"}
	}`)
	href, _ := ResolvePreview(a)
	require.NotNil(t, href)
	assert.Equal(t, "https://x/z.tif", *href)
}

func TestResolvePreview_None(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`null`,
		`{"thumbnail": {"href": "https://x/thumb.jpg"}, "meta": {"href": "https://x/meta.xml"}}`,
		`{"data": {"href": "https://x/data.TIF"}}`,
	} {
		href, rule := ResolvePreview(decodeAssets(t, raw))
		assert.Nil(t, href, raw)
		assert.Equal(t, RuleNone, rule, raw)
	}
}

func TestResolvePreview_EmptyNamedHrefFallsThroughToTIFF(t *testing.T) {
	a := decodeAssets(t, `{
		"visual": {"title": "no href"},
		"rendered_preview": {"href": "https://x/preview.png"},
		"B02": {"href": "https://x/B02.tif"}
	}`)
	href, rule := ResolvePreview(a)
	require.NotNil(t, href)
	assert.Equal(t, "https://x/B02.tif", *href)
	assert.Equal(t, RuleGeoTIFF, rule)
}

func TestAssets_DecodeKeepsOrderAndTolerance(t *testing.T) {
	a := decodeAssets(t, `{
		"b": {"href": "https://x/b.tif", "roles": ["data"]},
		"a": "not-an-object",
		"c": {"href": 42},
		"b": {"href": "https://x/b2.tif"}
	}`)
	require.Len(t, a, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{a[0].Key, a[1].Key, a[2].Key})
	assert.Equal(t, "https://x/b2.tif", a[0].Asset.Href)
	assert.Empty(t, a[1].Asset.Href)
	assert.Empty(t, a[2].Asset.Href)
}

func TestAssets_NonObjectDecodesEmpty(t *testing.T) {
	a := decodeAssets(t, `["x"]`)
	assert.Empty(t, a)
}
