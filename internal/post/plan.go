package post

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
)

const (
	DefaultLayout   = "post"
	DefaultAuthor   = "LeadFive"
	DefaultCategory = "マーケティング"

	// FrontMatterDateLayout is how dates appear in the post's front matter
	FrontMatterDateLayout = "2006-01-02 15:04:05 -0700"
)

var (
	// ErrTitleRequired is returned when the answers carry no title
	ErrTitleRequired = errors.New("title is required")

	// ErrExists is returned when a post file is already present
	ErrExists = errors.New("post already exists")
)

// Answers is the input collected by the wizard. Empty fields take defaults.
type Answers struct {
	Keyword     string
	Title       string
	Description string
	Category    string
	Tags        []string
	Author      string
	Layout      string
	// Date is YYYY-MM-DD; empty means today
	Date string
}

// Image is the featured image attached to a draft
type Image struct {
	Path      string
	Alt       string
	Credit    string
	CreditURL string
	Generated bool
}

// Draft is a fully resolved post. Values are never modified in place.
type Draft struct {
	Title       string
	Description string
	Keyword     string
	Slug        string
	Layout      string
	Author      string
	Categories  []string
	Tags        []string
	Keywords    []string
	Date        time.Time
	Image       *Image
}

// Plan resolves answers into a Draft, applying defaults relative to now
func Plan(a Answers, now time.Time) (Draft, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return Draft{}, ErrTitleRequired
	}
	keyword := strings.TrimSpace(a.Keyword)

	date := now
	if a.Date != "" {
		day, err := time.ParseInLocation(imagery.DateLayout, a.Date, now.Location())
		if err != nil {
			return Draft{}, fmt.Errorf("invalid date %q: %w", a.Date, err)
		}
		date = time.Date(day.Year(), day.Month(), day.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, now.Location())
	}

	slug := SlugFor(title, keyword)

	d := Draft{
		Title:       title,
		Description: strings.TrimSpace(a.Description),
		Keyword:     keyword,
		Slug:        slug,
		Layout:      orDefault(a.Layout, DefaultLayout),
		Author:      orDefault(a.Author, DefaultAuthor),
		Categories:  []string{orDefault(a.Category, DefaultCategory)},
		Tags:        cleanList(a.Tags),
		Date:        date.Truncate(time.Second),
	}

	if d.Description == "" {
		if keyword != "" {
			d.Description = fmt.Sprintf("%sについて、実践的なポイントをわかりやすく解説します。", keyword)
		} else {
			d.Description = title
		}
	}
	if len(d.Tags) == 0 && keyword != "" {
		d.Tags = []string{keyword}
	}
	if keyword != "" {
		d.Keywords = []string{keyword}
	}
	for _, tag := range d.Tags {
		if !contains(d.Keywords, tag) {
			d.Keywords = append(d.Keywords, tag)
		}
	}

	return d, nil
}

// Day returns the draft date as YYYY-MM-DD
func (d Draft) Day() string {
	return d.Date.Format(imagery.DateLayout)
}

// Filename returns the Jekyll post file name, {date}-{slug}.md
func (d Draft) Filename() string {
	return fmt.Sprintf("%s-%s.md", d.Day(), d.Slug)
}

// ImageRequest describes the featured image this draft needs
func (d Draft) ImageRequest() imagery.Request {
	return imagery.Request{
		Title:   d.Title,
		Keyword: d.Keyword,
		Date:    d.Day(),
		Slug:    d.Slug,
	}
}

// WithImage returns a copy of d carrying the image described by res
func (d Draft) WithImage(res imagery.Result) Draft {
	img := &Image{
		Path:      res.Path,
		Alt:       res.Alt,
		Generated: res.Generated,
	}
	if res.Credit != nil {
		img.Credit = res.Credit.Photographer
		img.CreditURL = res.Credit.ProfileURL
	}
	d.Image = img
	d.Categories = append([]string(nil), d.Categories...)
	d.Tags = append([]string(nil), d.Tags...)
	d.Keywords = append([]string(nil), d.Keywords...)
	return d
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// SplitList parses a comma separated answer, accepting the full-width comma
func SplitList(s string) []string {
	return cleanList(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，'
	}))
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
