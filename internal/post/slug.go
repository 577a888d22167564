package post

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLen  = 60
	hashLen     = 8
	DefaultSlug = "post"
)

// Slugify turns a title into a URL-safe file name component. Accents are
// folded to their base letters; characters outside a-z and 0-9 become dashes.
// Titles with letters that cannot be spelled that way, such as Japanese, get
// a short hash of the title appended so distinct titles never share a slug.
func Slugify(title string) string {
	return SlugFor(title, "")
}

// SlugFor is Slugify with keyword as the base when the title has no a-z or
// 0-9 characters at all. An empty base becomes DefaultSlug.
func SlugFor(title, keyword string) string {
	title = strings.TrimSpace(title)

	slug, lossy := slugify(title)
	if slug == "" {
		slug, _ = slugify(keyword)
	}
	if slug == "" {
		slug = DefaultSlug
	}
	if !lossy {
		return slug
	}

	if limit := maxSlugLen - hashLen - 1; len(slug) > limit {
		slug = strings.TrimRight(slug[:limit], "-")
	}
	return slug + "-" + titleHash(title)
}

func titleHash(title string) string {
	h := fnv.New32a()
	h.Write([]byte(title))
	return fmt.Sprintf("%0*x", hashLen, h.Sum32())
}

// slugify reports whether any letter or digit of s was dropped
func slugify(s string) (string, bool) {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	lossy := false
	n := 0
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if n < maxSlugLen {
				b.WriteRune(r)
				dash = false
				n++
			}
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			lossy = true
		}
		if !dash && b.Len() > 0 && n < maxSlugLen {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	return strings.Trim(b.String(), "-"), lossy
}
