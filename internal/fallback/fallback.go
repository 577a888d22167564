// Package fallback renders a placeholder featured image when no provider
// photo is available.
//
// Output is a pure function of (title, date, options): the colour seed, the
// overlay pattern and the encoded JPEG bytes are all identical for identical
// input. The title is drawn with the configured font; text the font has no
// glyphs for is replaced by the first drawable alternate, such as the keyword.
package fallback

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width   = 1200
	Height  = 630
	Quality = 90

	margin     = 80
	titleSize  = 52
	titleLead  = 66
	labelSize  = 28
	maxLines   = 3
	bandTop    = Height - 300
	titleTop   = bandTop + 70
	dateLine   = Height - 40
	brandLabel = "LeadFive"
	ellipsis   = "..."
)

// Pattern is the decorative overlay drawn on the gradient
type Pattern int

const (
	PatternStripes Pattern = iota
	PatternCircles
	PatternGrid
)

func (p Pattern) String() string {
	switch p {
	case PatternStripes:
		return "stripes"
	case PatternCircles:
		return "circles"
	case PatternGrid:
		return "grid"
	default:
		return fmt.Sprintf("pattern(%d)", int(p))
	}
}

// Options adjust the overlay text
type Options struct {
	// Font draws every label. Nil uses the bundled Go Bold font, which has
	// Latin, Greek and Cyrillic glyphs but no Japanese ones.
	Font *opentype.Font

	// Alternates replace the title when Font cannot draw it, in order of
	// preference
	Alternates []string
}

var goBold = sync.OnceValue(func() *opentype.Font {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		panic(fmt.Sprintf("fallback: bundled font: %v", err))
	}
	return f
})

func (o Options) typeface() *opentype.Font {
	if o.Font != nil {
		return o.Font
	}
	return goBold()
}

// Seed derives the colour seed for a post
func Seed(title, date string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(title + date))
	return h.Sum32()
}

// PatternFor returns the overlay pattern chosen by seed
func PatternFor(seed uint32) Pattern {
	return Pattern(seed % 3)
}

// Palette returns the two gradient endpoints for seed
func Palette(seed uint32) (color.RGBA, color.RGBA) {
	h1 := float64(seed % 360)
	h2 := math.Mod(h1+40+float64((seed>>9)%80), 360)
	return hsv(h1, 0.65, 0.55), hsv(h2, 0.70, 0.35)
}

// Generate renders and encodes the placeholder as JPEG
func Generate(title, date string, opts Options) ([]byte, error) {
	img, err := Render(title, date, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws the placeholder image
func Render(title, date string, opts Options) (*image.RGBA, error) {
	face, err := newFace(opts.typeface(), titleSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	candidates := append([]string{title}, opts.Alternates...)
	return paint(title, date, caption(face, candidates), opts.typeface())
}

// paint draws the background seeded by (title, date) with text as the
// headline
func paint(title, date, text string, f *opentype.Font) (*image.RGBA, error) {
	titleFace, err := newFace(f, titleSize)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	labelFace, err := newFace(f, labelSize)
	if err != nil {
		return nil, err
	}
	defer labelFace.Close()

	seed := Seed(title, date)
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	from, to := Palette(seed)
	drawGradient(img, from, to)

	switch PatternFor(seed) {
	case PatternStripes:
		drawStripes(img, 24+int(seed>>3)%24)
	case PatternCircles:
		cx := int(seed>>4) % Width
		cy := int(seed>>12) % Height
		drawCircles(img, cx, cy, 36+int(seed>>5)%30)
	case PatternGrid:
		drawGrid(img, 48+int(seed>>6)%40)
	}

	shadeBand(img, bandTop, Height)

	y := titleTop
	for _, line := range wrap(titleFace, text, fixed.I(Width-2*margin), maxLines) {
		drawText(img, titleFace, line, margin, y)
		y += titleLead
	}
	drawText(img, labelFace, keep(labelFace, date), margin, dateLine)

	labelWidth := font.MeasureString(labelFace, brandLabel).Ceil()
	drawText(img, labelFace, brandLabel, Width-margin-labelWidth, margin-20)

	return img, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func drawGradient(img *image.RGBA, from, to color.RGBA) {
	b := img.Bounds()
	span := float64(b.Dx() + b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / span
			img.SetRGBA(x, y, lerp(from, to, t))
		}
	}
}

func drawStripes(img *image.RGBA, spacing int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x+y)%spacing < spacing/4 {
				blend(img, x, y, color.RGBA{255, 255, 255, 255}, 0.08)
			}
		}
	}
}

func drawCircles(img *image.RGBA, cx, cy, spacing int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			d := int(math.Sqrt(dx*dx + dy*dy))
			if d%spacing < 3 {
				blend(img, x, y, color.RGBA{255, 255, 255, 255}, 0.12)
			}
		}
	}
}

func drawGrid(img *image.RGBA, spacing int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if x%spacing < 2 || y%spacing < 2 {
				blend(img, x, y, color.RGBA{255, 255, 255, 255}, 0.10)
			}
		}
	}
}

func shadeBand(img *image.RGBA, top, bottom int) {
	for y := top; y < bottom; y++ {
		alpha := 0.45 * float64(y-top) / float64(bottom-top)
		for x := 0; x < Width; x++ {
			blend(img, x, y, color.RGBA{0, 0, 0, 255}, alpha)
		}
	}
}

// drawText draws s in white with its baseline at y
func drawText(img *image.RGBA, face font.Face, s string, x, y int) {
	if s == "" {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawable(face font.Face, r rune) bool {
	_, ok := face.GlyphAdvance(r)
	return ok
}

// keep drops the runes face has no glyph for and collapses whitespace
func keep(face font.Face, s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || drawable(face, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// caption picks the headline: the first candidate face can draw completely,
// else the drawable remainder of the first candidate that has one
func caption(face font.Face, candidates []string) string {
	for _, c := range candidates {
		c = strings.Join(strings.Fields(c), " ")
		if c != "" && keep(face, c) == c {
			return c
		}
	}
	for _, c := range candidates {
		if k := keep(face, c); k != "" {
			return k
		}
	}
	return ""
}

// segment is a unit the wrapper does not split unless it overflows a line
type segment struct {
	text  string
	space bool
}

// segments splits s into words, giving each rune of scripts written without
// spaces its own segment
func segments(s string) []segment {
	var segs []segment
	for _, word := range strings.Fields(s) {
		space := len(segs) > 0
		var run strings.Builder
		flush := func() {
			if run.Len() > 0 {
				segs = append(segs, segment{text: run.String(), space: space})
				space = false
				run.Reset()
			}
		}
		for _, r := range word {
			if !isWide(r) {
				run.WriteRune(r)
				continue
			}
			flush()
			segs = append(segs, segment{text: string(r), space: space})
			space = false
		}
		flush()
	}
	return segs
}

func isWide(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) ||
		(r >= 0x3000 && r <= 0x303f) || (r >= 0xff00 && r <= 0xffef)
}

// wrap splits s into at most maxLines lines no wider than width
func wrap(face font.Face, s string, width fixed.Int26_6, maxLines int) []string {
	var lines []string
	cur := ""
	for _, seg := range segments(s) {
		joined := seg.text
		if cur != "" {
			sep := ""
			if seg.space {
				sep = " "
			}
			joined = cur + sep + seg.text
		}
		if font.MeasureString(face, joined) <= width {
			cur = joined
			continue
		}

		if cur != "" {
			lines = append(lines, cur)
		}
		cur = seg.text
		for font.MeasureString(face, cur) > width {
			head, tail := fit(face, cur, width)
			lines = append(lines, head)
			cur = tail
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = ellipsize(face, lines[maxLines-1], width)
	}
	return lines
}

// fit splits s after the longest prefix of at least one rune that fits width
func fit(face font.Face, s string, width fixed.Int26_6) (string, string) {
	rs := []rune(s)
	n := 1
	for n < len(rs) && font.MeasureString(face, string(rs[:n+1])) <= width {
		n++
	}
	return string(rs[:n]), string(rs[n:])
}

func ellipsize(face font.Face, s string, width fixed.Int26_6) string {
	rs := []rune(s)
	for len(rs) > 0 && font.MeasureString(face, string(rs)+ellipsis) > width {
		rs = rs[:len(rs)-1]
	}
	return strings.TrimRight(string(rs), " ") + ellipsis
}

func blend(img *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	img.SetRGBA(x, y, lerp(img.RGBAAt(x, y), c, alpha))
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// hsv converts hue in degrees, saturation and value in [0,1] to RGBA
func hsv(h, s, v float64) color.RGBA {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := v - c
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return color.RGBA{to8(r), to8(g), to8(b), 255}
}
