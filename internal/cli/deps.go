package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"

	"github.com/Shiki0138/leadfive-sub000/internal/config"
	"github.com/Shiki0138/leadfive-sub000/internal/fallback"
	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
	"github.com/Shiki0138/leadfive-sub000/internal/provider"
	"github.com/Shiki0138/leadfive-sub000/internal/selector"
	"github.com/Shiki0138/leadfive-sub000/internal/storage"
)

func openLedger(cfg *config.Config) (ledger.Store, error) {
	return ledger.Open(ledger.Options{
		Backend: cfg.Ledger.Backend,
		Path:    cfg.Ledger.Path,
	}, logger)
}

func newSink(ctx context.Context, cfg *config.Config) (storage.Sink, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		s3cfg := storage.S3Config{
			Endpoint:      cfg.Storage.S3.Endpoint,
			AccessKey:     cfg.Secrets.S3AccessKey,
			SecretKey:     cfg.Secrets.S3SecretKey,
			Bucket:        cfg.Storage.S3.Bucket,
			Prefix:        cfg.Storage.S3.Prefix,
			UseSSL:        cfg.Storage.S3.UseSSL,
			PublicBaseURL: cfg.Storage.S3.PublicBaseURL,
		}
		client, err := s3cfg.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Sink(client, s3cfg, logger), nil
	default:
		return storage.NewLocalSink(cfg.Site.ImageDir, cfg.Site.ImageURLPrefix, logger), nil
	}
}

func newProviderClient(cfg *config.Config) *provider.Client {
	return provider.NewClient(cfg.Secrets.UnsplashAccessKey,
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		provider.WithLogger(logger))
}

// newImageService wires the image pipeline. Without an access key every post
// gets a generated image; out receives the warning.
func newImageService(ctx context.Context, cfg *config.Config, store ledger.Store, out io.Writer) (*imagery.Service, error) {
	sink, err := newSink(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up image storage: %w", err)
	}

	typeface, err := placeholderFont(cfg)
	if err != nil {
		return nil, err
	}

	svcCfg := imagery.Config{
		Store:         store,
		Sink:          sink,
		Window:        cfg.Ledger.Window,
		DownloadWidth: cfg.Provider.DownloadWidth,
		Font:          typeface,
		Now:           now,
		Log:           logger,
	}

	if cfg.Secrets.UnsplashAccessKey == "" {
		fmt.Fprintln(out, "⚠ UNSPLASH_ACCESS_KEY is not set, using generated images")
	} else {
		client := newProviderClient(cfg)
		svcCfg.Selector = selector.New(client, selector.Config{
			PerPage:     cfg.Provider.PerPage,
			MaxPage:     cfg.Provider.MaxPage,
			Orientation: cfg.Provider.Orientation,
		}, nil, logger)
		svcCfg.Fetcher = client
	}

	return imagery.NewService(svcCfg), nil
}

// placeholderFont loads fallback.font_path, or the first installed system
// font with Japanese glyphs. A nil font means the bundled Latin one.
func placeholderFont(cfg *config.Config) (*opentype.Font, error) {
	if path := cfg.Fallback.FontPath; path != "" {
		f, err := fallback.LoadFont(path)
		if err != nil {
			return nil, fmt.Errorf("fallback.font_path: %w", err)
		}
		return f, nil
	}

	path := fallback.FindFont(fallback.SystemFontPaths)
	if path == "" {
		logger.Debug("no Japanese font installed, placeholders show the keyword for Japanese titles")
		return nil, nil
	}
	f, err := fallback.LoadFont(path)
	if err != nil {
		logger.Warn("ignoring unreadable system font", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	logger.Debug("placeholder font", zap.String("path", path))
	return f, nil
}

func reportImage(out io.Writer, res imagery.Result) {
	if res.Generated {
		fmt.Fprintf(out, "⚠ No stock photo available, generated placeholder: %s\n", res.Path)
		return
	}
	fmt.Fprintf(out, "✓ Featured image: %s\n", res.Path)
	if res.Credit != nil {
		fmt.Fprintf(out, "  Photo by %s on %s (%s)\n", res.Credit.Photographer, res.Credit.Provider, res.PhotoID)
	}
}

func closeStore(store ledger.Store) {
	if err := store.Close(); err != nil {
		logger.Warn("failed to close ledger", zap.Error(err))
	}
}
