package web

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
	"github.com/Shiki0138/leadfive-sub000/internal/post"
)

const maxPostsLimit = 500

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLedger(c *gin.Context) {
	records := s.deps.Ledger.Load(c.Request.Context())
	if records == nil {
		records = []ledger.UsageRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"stats":   ledger.Summarize(records, s.deps.Now(), s.deps.Window),
	})
}

func (s *Server) handleLedgerRecent(c *gin.Context) {
	records := s.deps.Ledger.Load(c.Request.Context())
	recent := ledger.RecentIDsWithin(records, s.deps.Now(), s.deps.Window)

	ids := make([]string, 0, len(recent))
	for id := range recent {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ids,
		"count":   len(ids),
		"window":  s.deps.Window.String(),
	})
}

func (s *Server) handleCreateImage(c *gin.Context) {
	if s.deps.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "image pipeline not configured",
		})
		return
	}

	var req imagery.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.Slug == "" && req.Title != "" {
		req.Slug = post.SlugFor(req.Title, req.Keyword)
	}
	if req.Date == "" {
		req.Date = s.deps.Now().Format(imagery.DateLayout)
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.imageMu.Lock()
	res, err := s.deps.Images.ImageForPost(c.Request.Context(), req)
	s.imageMu.Unlock()
	if err != nil {
		s.deps.Log.Error("image pipeline failed", zap.String("slug", req.Slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    res,
	})
}

func (s *Server) handlePosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > maxPostsLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "limit must be between 1 and 500",
		})
		return
	}

	posts, err := post.List(s.deps.PostsDir, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if posts == nil {
		posts = []post.Summary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}
