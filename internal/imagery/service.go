// Package imagery gets a featured image for a post: a fresh provider photo
// when possible, a generated placeholder otherwise.
package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"

	"github.com/Shiki0138/leadfive-sub000/internal/fallback"
	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
	"github.com/Shiki0138/leadfive-sub000/internal/provider"
	"github.com/Shiki0138/leadfive-sub000/internal/storage"
)

const (
	DateLayout   = "2006-01-02"
	ProviderName = "Unsplash"

	defaultDownloadWidth = 1200
)

// PhotoSelector picks a provider photo, returning nil when none is available
type PhotoSelector interface {
	Select(ctx context.Context, keyword string, excluded map[string]struct{}) *provider.Photo
}

// PhotoFetcher downloads a selected photo and reports its use
type PhotoFetcher interface {
	Download(ctx context.Context, photo provider.Photo, width int) ([]byte, error)
	TrackDownload(ctx context.Context, photo provider.Photo) error
}

// Request identifies the post that needs an image
type Request struct {
	Title   string `json:"title"`
	Keyword string `json:"keyword"`
	Date    string `json:"date"`
	Slug    string `json:"slug"`
}

// Credit is the attribution written next to provider images
type Credit struct {
	Photographer string `json:"photographer"`
	Username     string `json:"username,omitempty"`
	ProfileURL   string `json:"profile_url,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	PhotoID      string `json:"photo_id"`
	Provider     string `json:"provider"`
}

// Result describes the image attached to a post
type Result struct {
	PhotoID    string  `json:"photo_id"`
	Path       string  `json:"path"`
	CreditPath string  `json:"credit_path,omitempty"`
	Alt        string  `json:"alt"`
	Generated  bool    `json:"generated"`
	Credit     *Credit `json:"credit,omitempty"`
}

// Config holds the service's dependencies
type Config struct {
	Store         ledger.Store
	Selector      PhotoSelector
	Fetcher       PhotoFetcher
	Sink          storage.Sink
	Window        time.Duration
	DownloadWidth int
	// Font draws placeholder text; nil uses the bundled Latin font
	Font  *opentype.Font
	Now   func() time.Time
	NewID func() string
	Log   *zap.Logger
}

// Service runs the image pipeline
type Service struct {
	store    ledger.Store
	selector PhotoSelector
	fetcher  PhotoFetcher
	sink     storage.Sink
	window   time.Duration
	width    int
	font     *opentype.Font
	now      func() time.Time
	newID    func() string
	log      *zap.Logger
}

// NewService creates a Service. Selector and Fetcher may be nil, in which
// case every post gets a generated image.
func NewService(cfg Config) *Service {
	s := &Service{
		store:    cfg.Store,
		selector: cfg.Selector,
		fetcher:  cfg.Fetcher,
		sink:     cfg.Sink,
		window:   cfg.Window,
		width:    cfg.DownloadWidth,
		font:     cfg.Font,
		now:      cfg.Now,
		newID:    cfg.NewID,
		log:      cfg.Log,
	}
	if s.window <= 0 {
		s.window = ledger.DefaultWindow
	}
	if s.width <= 0 {
		s.width = defaultDownloadWidth
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Validate checks the request fields the pipeline depends on
func (r Request) Validate() error {
	if r.Slug == "" {
		return errors.New("slug is required")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// BaseName returns the artifact name shared by the image and its credit file
func (r Request) BaseName() string {
	return fmt.Sprintf("%s-%s-featured", r.Date, r.Slug)
}

// ImageForPost selects, stores and records an image for the post in req.
//
// Provider failures degrade to a generated image. Errors writing the image,
// the credit file or the ledger are returned.
func (s *Service) ImageForPost(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	now := s.now()
	records := s.store.Load(ctx)
	recent := ledger.RecentIDsWithin(records, now, s.window)

	photo, data := s.providerImage(ctx, req, recent)

	var result Result
	if photo != nil {
		result = Result{
			PhotoID: photo.ID,
			Alt:     photo.Alt(),
			Credit: &Credit{
				Photographer: photo.User.Name,
				Username:     photo.User.Username,
				ProfileURL:   photo.User.Links.HTML,
				PhotoURL:     photo.Links.HTML,
				PhotoID:      photo.ID,
				Provider:     ProviderName,
			},
		}
	} else {
		generated, err := fallback.Generate(req.Title, req.Date, s.placeholderOptions(req))
		if err != nil {
			return Result{}, fmt.Errorf("failed to generate placeholder: %w", err)
		}
		data = generated
		result = Result{
			PhotoID:   ledger.GeneratedPrefix + s.newID(),
			Alt:       req.Title,
			Generated: true,
		}
	}
	if result.Alt == "" {
		result.Alt = req.Title
	}

	base := req.BaseName()
	path, err := s.sink.Put(ctx, base+".jpg", data, "image/jpeg")
	if err != nil {
		return Result{}, fmt.Errorf("failed to save featured image: %w", err)
	}
	result.Path = path

	if result.Credit != nil {
		creditJSON, err := json.MarshalIndent(result.Credit, "", "  ")
		if err != nil {
			return Result{}, fmt.Errorf("failed to marshal credit: %w", err)
		}
		creditPath, err := s.sink.Put(ctx, base+"-credit.json", creditJSON, "application/json")
		if err != nil {
			return Result{}, fmt.Errorf("failed to save image credit: %w", err)
		}
		result.CreditPath = creditPath
	}

	records = ledger.Append(records, ledger.NewRecord(result.PhotoID, result.Path, req.Slug, now))
	records = ledger.PruneWithin(records, now, s.window)
	if err := s.store.Save(ctx, records); err != nil {
		return Result{}, fmt.Errorf("failed to update image ledger: %w", err)
	}

	s.log.Info("featured image ready",
		zap.String("post", req.Slug),
		zap.String("photo_id", result.PhotoID),
		zap.Bool("generated", result.Generated),
		zap.String("path", result.Path))

	return result, nil
}

// placeholderOptions lets the keyword, then the slug, stand in for a title
// the font cannot draw
func (s *Service) placeholderOptions(req Request) fallback.Options {
	return fallback.Options{
		Font:       s.font,
		Alternates: []string{req.Keyword, req.Slug},
	}
}

// providerImage returns a downloaded provider photo, or nil when the
// provider is unavailable, exhausted or failing.
func (s *Service) providerImage(ctx context.Context, req Request, recent map[string]struct{}) (*provider.Photo, []byte) {
	if s.selector == nil || s.fetcher == nil {
		return nil, nil
	}

	photo := s.selector.Select(ctx, req.Keyword, recent)
	if photo == nil {
		return nil, nil
	}

	data, err := s.fetcher.Download(ctx, *photo, s.width)
	if err != nil {
		s.log.Warn("photo download failed, using placeholder",
			zap.String("photo_id", photo.ID),
			zap.Error(err))
		return nil, nil
	}

	if err := s.fetcher.TrackDownload(ctx, *photo); err != nil {
		s.log.Warn("download tracking failed",
			zap.String("photo_id", photo.ID),
			zap.Error(err))
	}

	return photo, data
}
