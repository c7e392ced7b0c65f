package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/apperr"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/model"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/stac"
)

type stubCatalog struct {
	calls int
	got   stac.SearchPayload
	page  *stac.ItemCollection
	err   error
}

func (s *stubCatalog) Search(_ context.Context, p stac.SearchPayload) (*stac.ItemCollection, error) {
	s.calls++
	s.got = p
	return s.page, s.err
}

type stubResolver struct {
	bb    model.BBox
	err   error
	calls int
}

func (s *stubResolver) ResolveBBox(context.Context) (model.BBox, error) {
	s.calls++
	return s.bb, s.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func baseFilter() model.SearchFilter {
	return model.SearchFilter{Collections: []string{"sentinel-2-l2a"}, Limit: 5, CloudCover: 20}
}

func TestSearch_UsesResolverWhenNoBBox(t *testing.T) {
	cat := &stubCatalog{page: &stac.ItemCollection{}}
	res := &stubResolver{bb: model.BBox{0, 0, 1, 1}}

	out, err := New(discard(), res, cat).Search(context.Background(), baseFilter())
	require.NoError(t, err)

	assert.Equal(t, 1, res.calls)
	assert.Equal(t, model.BBox{0, 0, 1, 1}, cat.got.BBox)
	assert.Equal(t, model.BBox{0, 0, 1, 1}, out.BBox)
	assert.NotEmpty(t, out.Fingerprint)
	assert.Empty(t, out.Items)
}

func TestSearch_ExplicitBBoxSkipsResolver(t *testing.T) {
	cat := &stubCatalog{page: &stac.ItemCollection{}}
	res := &stubResolver{err: errors.New("must not be called")}

	f := baseFilter()
	raw := "10,20,11,21"
	f.BBox = &raw
	_, err := New(discard(), res, cat).Search(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 0, res.calls)
	assert.Equal(t, model.BBox{10, 20, 11, 21}, cat.got.BBox)
}

func TestSearch_MalformedBBoxNoUpstreamCall(t *testing.T) {
	cat := &stubCatalog{page: &stac.ItemCollection{}}
	f := baseFilter()
	raw := "10,20,eleven,21"
	f.BBox = &raw

	_, err := New(discard(), &stubResolver{}, cat).Search(context.Background(), f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	assert.Equal(t, 0, cat.calls)
}

func TestSearch_ResolverFailurePropagates(t *testing.T) {
	cat := &stubCatalog{page: &stac.ItemCollection{}}
	_, err := New(discard(), &stubResolver{err: apperr.ErrAOIMissing}, cat).Search(context.Background(), baseFilter())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAOIMissing))
	assert.Equal(t, 0, cat.calls)
}

func TestSearch_UpstreamErrorPropagates(t *testing.T) {
	cat := &stubCatalog{err: &apperr.UpstreamError{Status: 502}}
	_, err := New(discard(), &stubResolver{bb: model.DefaultBBox}, cat).Search(context.Background(), baseFilter())

	var ue *apperr.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 502, ue.Status)
	assert.Equal(t, 1, cat.calls)
}

func TestSearch_PayloadCarriesFilter(t *testing.T) {
	cat := &stubCatalog{page: &stac.ItemCollection{}}
	f := baseFilter()
	f.Limit = 1
	f.CloudCover = 5
	f.Datetime = "2024-06-01/2024-06-30"

	_, err := New(discard(), &stubResolver{bb: model.DefaultBBox}, cat).Search(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, cat.got.Limit)
	assert.Equal(t, stac.Query{"eo:cloud_cover": {LTE: 5}}, cat.got.Query)
	assert.Equal(t, "2024-06-01/2024-06-30", cat.got.Datetime)
	assert.Equal(t, []stac.SortBy{{Field: "properties.datetime", Direction: "desc"}}, cat.got.Sort)
}
