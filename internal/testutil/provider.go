package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakePhoto is a search result served by FakeProvider
type FakePhoto struct {
	ID           string
	Photographer string
}

// FakeProvider is an in-process stand-in for the Unsplash API. It serves
// search results, image bytes and download tracking.
type FakeProvider struct {
	Server *httptest.Server

	mu       sync.Mutex
	photos   []FakePhoto
	searches []string
	tracked  []string
	fail     bool
}

// NewFakeProvider starts a fake provider serving photos. It is closed when
// the test ends.
func NewFakeProvider(t *testing.T, photos ...FakePhoto) *FakeProvider {
	t.Helper()

	f := &FakeProvider{photos: photos}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure the client with
func (f *FakeProvider) URL() string {
	return f.Server.URL
}

// SetFailing makes every request return 503
func (f *FakeProvider) SetFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// Searches returns the query strings received so far
func (f *FakeProvider) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// Tracked returns the photo IDs whose download was reported
func (f *FakeProvider) Tracked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tracked...)
}

// ImageBytes is the body served for a photo download. It starts with the
// JPEG marker so content sniffing accepts it.
func ImageBytes(id string) []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, "fake-jpeg-"+id...)
}

func (f *FakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"errors": ["service unavailable"]}`, http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.URL.Path == "/search/photos":
		f.searches = append(f.searches, r.URL.Query().Get("query"))
		f.writeSearch(w)
	case strings.HasPrefix(r.URL.Path, "/images/"):
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(ImageBytes(strings.TrimPrefix(r.URL.Path, "/images/")))
	case strings.HasPrefix(r.URL.Path, "/photos/") && strings.HasSuffix(r.URL.Path, "/download"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/photos/"), "/download")
		f.tracked = append(f.tracked, id)
		w.Write([]byte(`{"url": "ok"}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeProvider) writeSearch(w http.ResponseWriter) {
	base := f.Server.URL
	results := make([]map[string]any, 0, len(f.photos))
	for _, p := range f.photos {
		results = append(results, map[string]any{
			"id":              p.ID,
			"alt_description": "photo " + p.ID,
			"urls": map[string]string{
				"regular": base + "/images/" + p.ID,
			},
			"user": map[string]any{
				"name":     p.Photographer,
				"username": strings.ToLower(strings.ReplaceAll(p.Photographer, " ", "")),
				"links":    map[string]string{"html": "https://unsplash.com/@" + p.ID},
			},
			"links": map[string]string{
				"html":              "https://unsplash.com/photos/" + p.ID,
				"download_location": base + "/photos/" + p.ID + "/download",
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total":       len(results),
		"total_pages": 1,
		"results":     results,
	})
}
