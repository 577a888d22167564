// Package web serves the ledger, posts and image pipeline over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
)

const shutdownTimeout = 5 * time.Second

var ginMode sync.Once

// ImageService runs the featured image pipeline
type ImageService interface {
	ImageForPost(ctx context.Context, req imagery.Request) (imagery.Result, error)
}

// Deps are the components the handlers read and drive
type Deps struct {
	Ledger   ledger.Store
	Images   ImageService
	PostsDir string
	Window   time.Duration
	Now      func() time.Time
	Log      *zap.Logger
}

// Server is the LeadFive HTTP API
type Server struct {
	deps   Deps
	router *gin.Engine

	// serializes ledger read-modify-write cycles
	imageMu sync.Mutex
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	if deps.Window <= 0 {
		deps.Window = ledger.DefaultWindow
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	ginMode.Do(func() { gin.SetMode(gin.ReleaseMode) })
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Log))

	s := &Server{
		deps:   deps,
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/ledger", s.handleLedger)
		api.GET("/ledger/recent", s.handleLedgerRecent)
		api.POST("/images", s.handleCreateImage)
		api.GET("/posts", s.handlePosts)
	}

	return s
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		// image requests wait on the provider download
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.deps.Log.Info("starting http server", zap.String("addr", addr))

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.deps.Log.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.deps.Log.Error("failed to shutdown http server", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)

		c.Next()

		log.Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
