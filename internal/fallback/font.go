package fallback

import (
	"fmt"
	"os"

	"golang.org/x/image/font/opentype"
)

// SystemFontPaths are common install locations of fonts with Japanese glyphs
var SystemFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/System/Library/Fonts/ヒラギノ角ゴシック W6.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	`C:\Windows\Fonts\YuGothB.ttc`,
	`C:\Windows\Fonts\msgothic.ttc`,
}

// LoadFont reads a TrueType or OpenType font. For a collection (.ttc, .otc)
// the first font is used.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}

	coll, collErr := opentype.ParseCollection(data)
	if collErr != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	f, err = coll.Font(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s from collection: %w", path, err)
	}
	return f, nil
}

// FindFont returns the first of paths that is a regular file, or ""
func FindFont(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}
