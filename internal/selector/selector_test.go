package selector

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiki0138/leadfive-sub000/internal/provider"
)

type fakeSearcher struct {
	photos []provider.Photo
	err    error
	reqs   []provider.SearchRequest
}

func (f *fakeSearcher) Search(ctx context.Context, req provider.SearchRequest) ([]provider.Photo, error) {
	f.reqs = append(f.reqs, req)
	return f.photos, f.err
}

func photos(ids ...string) []provider.Photo {
	out := make([]provider.Photo, 0, len(ids))
	for _, id := range ids {
		out = append(out, provider.Photo{ID: id, URLs: provider.PhotoURLs{Regular: "https://img/" + id}})
	}
	return out
}

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestSelectExcludesRecentPhotos(t *testing.T) {
	t.Parallel()

	fs := &fakeSearcher{photos: photos("a", "b", "c", "d")}
	s := New(fs, Config{}, rand.New(rand.NewSource(1)), nil)

	for i := 0; i < 50; i++ {
		p := s.Select(context.Background(), "seo", set("a", "b", "d"))
		require.NotNil(t, p)
		assert.Equal(t, "c", p.ID)
	}
}

func TestSelectAllExcludedFallsBackToFirst(t *testing.T) {
	t.Parallel()

	fs := &fakeSearcher{photos: photos("a", "b", "c")}
	s := New(fs, Config{}, rand.New(rand.NewSource(7)), nil)

	p := s.Select(context.Background(), "seo", set("a", "b", "c", "zzz"))
	require.NotNil(t, p)
	assert.Equal(t, "a", p.ID)
}

func TestSelectProviderErrorReturnsNil(t *testing.T) {
	t.Parallel()

	fs := &fakeSearcher{err: errors.New("dial tcp: connection refused")}
	s := New(fs, Config{}, rand.New(rand.NewSource(1)), nil)

	assert.Nil(t, s.Select(context.Background(), "seo", nil))
}

func TestSelectNoCandidatesReturnsNil(t *testing.T) {
	t.Parallel()

	s := New(&fakeSearcher{}, Config{}, rand.New(rand.NewSource(1)), nil)
	assert.Nil(t, s.Select(context.Background(), "seo", nil))
}

func TestSelectRequestShape(t *testing.T) {
	t.Parallel()

	fs := &fakeSearcher{photos: photos("a")}
	s := New(fs, Config{PerPage: 10, MaxPage: 2, Orientation: "squarish"}, rand.New(rand.NewSource(3)), nil)

	for i := 0; i < 20; i++ {
		s.Select(context.Background(), "Digital Marketing", nil)
	}

	require.Len(t, fs.reqs, 20)
	for _, req := range fs.reqs {
		assert.Equal(t, "digital marketing strategy laptop", req.Query)
		assert.Equal(t, 10, req.PerPage)
		assert.Equal(t, "squarish", req.Orientation)
		assert.GreaterOrEqual(t, req.Page, 1)
		assert.LessOrEqual(t, req.Page, 2)
	}
}

func TestSelectIsUniformOverFreshCandidates(t *testing.T) {
	t.Parallel()

	fs := &fakeSearcher{photos: photos("a", "b", "c", "d")}
	s := New(fs, Config{}, rand.New(rand.NewSource(99)), nil)

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		counts[s.Select(context.Background(), "seo", set("d")).ID]++
	}

	assert.Zero(t, counts["d"])
	for _, id := range []string{"a", "b", "c"} {
		assert.InDelta(t, 1000, counts[id], 150, "photo %s picked %d times", id, counts[id])
	}
}

func TestChoose(t *testing.T) {
	t.Parallel()

	first := func(n int) int { return 0 }
	last := func(n int) int { return n - 1 }

	assert.Nil(t, Choose(nil, nil, first))
	assert.Equal(t, "b", Choose(photos("a", "b", "c"), set("a"), first).ID)
	assert.Equal(t, "c", Choose(photos("a", "b", "c"), set("a"), last).ID)
	assert.Equal(t, "a", Choose(photos("a", "b"), set("a", "b"), last).ID)
}

func TestQueryFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		keyword string
		want    string
	}{
		{keyword: "SEO", want: "search engine optimization analytics"},
		{keyword: "  social media  ", want: "social media marketing smartphone"},
		{keyword: "advanced seo tips", want: "search engine optimization analytics"},
		{keyword: "ai marketing trends", want: "artificial intelligence marketing data"},
		{keyword: "email marketing", want: "email newsletter laptop"},
		{keyword: "email automation", want: GenericQuery},
		{keyword: "デジタルマーケティング入門", want: "digital marketing strategy laptop"},
		{keyword: "gardening", want: GenericQuery},
		{keyword: "", want: GenericQuery},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QueryFor(tt.keyword), "keyword %q", tt.keyword)
	}
}
