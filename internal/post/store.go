package post

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Write saves d into dir as {date}-{slug}.md. An existing file is kept and
// ErrExists returned unless force is set.
func Write(dir string, d Draft, force bool) (string, error) {
	content, err := Render(d)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create posts directory: %w", err)
	}

	path := filepath.Join(dir, d.Filename())

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", fmt.Errorf("failed to create post file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write post file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write post file: %w", err)
	}

	return path, nil
}

// Summary is a post found on disk
type Summary struct {
	Filename    string      `json:"filename"`
	FrontMatter FrontMatter `json:"front_matter"`
}

// List reads the front matter of the posts in dir, newest first. Files that
// do not parse are skipped. A limit of zero or less returns everything.
func List(dir string, limit int) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var posts []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		fm, _, err := Parse(content)
		if err != nil {
			continue
		}
		posts = append(posts, Summary{Filename: name, FrontMatter: fm})
	}

	// File names lead with the date, so name order is date order
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Filename > posts[j].Filename
	})

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
