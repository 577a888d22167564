// Package selector picks a provider photo for a post while avoiding photos
// used recently.
package selector

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/Shiki0138/leadfive-sub000/internal/provider"
)

const (
	DefaultPerPage     = 30
	DefaultMaxPage     = 3
	DefaultOrientation = "landscape"
)

// Searcher is the part of the provider client the selector needs
type Searcher interface {
	Search(ctx context.Context, req provider.SearchRequest) ([]provider.Photo, error)
}

// Config tunes the search request
type Config struct {
	PerPage     int
	MaxPage     int
	Orientation string
}

// Selector chooses one candidate photo per call
type Selector struct {
	search Searcher
	cfg    Config
	log    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a selector. A nil rng seeds a fresh source.
func New(search Searcher, cfg Config, rng *rand.Rand, log *zap.Logger) *Selector {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.MaxPage <= 0 {
		cfg.MaxPage = DefaultMaxPage
	}
	if cfg.Orientation == "" {
		cfg.Orientation = DefaultOrientation
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{search: search, cfg: cfg, rng: rng, log: log}
}

// Select returns a photo for keyword that is not in excluded, or nil when no
// photo could be obtained. Provider errors are logged and reported as nil.
//
// When every candidate is excluded the first raw candidate is returned: a
// repeat is preferred over no image.
func (s *Selector) Select(ctx context.Context, keyword string, excluded map[string]struct{}) *provider.Photo {
	query := QueryFor(keyword)
	page := 1 + s.intn(s.cfg.MaxPage)

	candidates, err := s.search.Search(ctx, provider.SearchRequest{
		Query:       query,
		Page:        page,
		PerPage:     s.cfg.PerPage,
		Orientation: s.cfg.Orientation,
	})
	if err != nil {
		s.log.Warn("photo search failed",
			zap.String("keyword", keyword),
			zap.String("query", query),
			zap.Error(err))
		return nil
	}

	photo := Choose(candidates, excluded, s.intn)
	if photo == nil {
		s.log.Info("photo search returned no candidates",
			zap.String("query", query),
			zap.Int("page", page))
		return nil
	}

	s.log.Debug("photo selected",
		zap.String("photo_id", photo.ID),
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))
	return photo
}

// Choose applies the exclusion rule to candidates. intn must return a value
// in [0, n).
func Choose(candidates []provider.Photo, excluded map[string]struct{}, intn func(n int) int) *provider.Photo {
	if len(candidates) == 0 {
		return nil
	}

	fresh := make([]provider.Photo, 0, len(candidates))
	for _, c := range candidates {
		if _, used := excluded[c.ID]; !used {
			fresh = append(fresh, c)
		}
	}

	if len(fresh) == 0 {
		first := candidates[0]
		return &first
	}

	picked := fresh[intn(len(fresh))]
	return &picked
}

func (s *Selector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
