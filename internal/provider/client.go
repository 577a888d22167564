package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"
	DefaultTimeout = 30 * time.Second

	searchPath    = "/search/photos"
	maxImageBytes = 20 << 20 // 20MB
)

// Client talks to an Unsplash-compatible photo API
type Client struct {
	accessKey string
	baseURL   string
	client    *http.Client
	log       *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the client's logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a new provider client
func NewClient(accessKey string, opts ...Option) *Client {
	c := &Client{
		accessKey: accessKey,
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: DefaultTimeout},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page of photos matching req
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Photo, error) {
	if c.accessKey == "" {
		return nil, ErrMissingAccessKey
	}

	q := url.Values{}
	q.Set("query", req.Query)
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(req.PerPage))
	}
	if req.Orientation != "" {
		q.Set("orientation", req.Orientation)
	}

	body, status, err := c.get(ctx, c.baseURL+searchPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ResponseError{StatusCode: status, Reason: err.Error(), Preview: truncateString(string(body), 200)}
	}
	if resp.Results == nil {
		return nil, &ResponseError{StatusCode: status, Reason: "missing results", Preview: truncateString(string(body), 200)}
	}

	photos := *resp.Results
	for _, p := range photos {
		if err := p.validate(); err != nil {
			return nil, &ResponseError{StatusCode: status, Reason: err.Error(), Preview: truncateString(string(body), 200)}
		}
	}

	c.log.Debug("provider search",
		zap.String("query", req.Query),
		zap.Int("page", req.Page),
		zap.Int("results", len(photos)),
		zap.Int("total", resp.Total))

	return photos, nil
}

// TrackDownload notifies the provider that photo was used
func (c *Client) TrackDownload(ctx context.Context, photo Photo) error {
	if c.accessKey == "" {
		return ErrMissingAccessKey
	}
	if photo.Links.DownloadLocation == "" {
		return fmt.Errorf("photo %s has no download_location", photo.ID)
	}

	_, _, err := c.get(ctx, photo.Links.DownloadLocation)
	return err
}

// Download fetches the photo's regular rendition resized to width pixels
func (c *Client) Download(ctx context.Context, photo Photo, width int) ([]byte, error) {
	u, err := url.Parse(photo.URLs.Regular)
	if err != nil {
		return nil, fmt.Errorf("invalid image url for %s: %w", photo.ID, err)
	}

	q := u.Query()
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	q.Set("q", "80")
	q.Set("fm", "jpg")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncateString(string(preview), 200)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", photo.ID, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", photo.ID)
	}
	if err := checkImage(resp, data); err != nil {
		return nil, err
	}

	return data, nil
}

// checkImage rejects bodies that are not images, such as HTML error pages
// served with a 200 by a CDN. Both the declared and the sniffed type must be
// image/*; a missing or generic declared type defers to sniffing.
func checkImage(resp *http.Response, data []byte) error {
	declared := resp.Header.Get("Content-Type")
	sniffed := http.DetectContentType(data)

	reason := ""
	switch {
	case declared != "" && !strings.HasPrefix(declared, "image/") && !strings.HasPrefix(declared, "application/octet-stream"):
		reason = "content type " + declared
	case !strings.HasPrefix(sniffed, "image/"):
		reason = "body looks like " + sniffed
	default:
		return nil
	}

	return &ResponseError{
		StatusCode: resp.StatusCode,
		Reason:     "image download is not an image: " + reason,
		Preview:    truncateString(string(data), 200),
	}
}

// get performs an authenticated GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("provider returned non-2xx status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body_preview", truncateString(string(body), 200)))

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncateString(string(body), 500)}
		var errBody apiErrorBody
		if json.Unmarshal(body, &errBody) == nil {
			apiErr.Messages = errBody.Errors
		}
		return nil, resp.StatusCode, apiErr
	}

	return body, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
