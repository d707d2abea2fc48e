package engine

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/ivlev/visionocr/internal/analyzer"
	"github.com/ivlev/visionocr/internal/config"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Template cell geometry of basicfont.Face7x13.
const (
	templateCellW  = 7
	templateCellH  = 13
	templateAscent = 11
)

type glyph struct {
	sym  string
	w, h int
	bits []bool
}

// TemplateRecognizer reads fixed-pitch text by splitting a line crop into
// ink columns and matching each glyph against bitmaps rendered from the
// dictionary. It needs no native libraries and is fully deterministic.
type TemplateRecognizer struct {
	glyphs   []glyph
	thresh   int
	spaceGap int
}

// NewTemplateRecognizer renders a template for every dictionary symbol the
// template face can draw. Symbols it cannot draw are skipped.
func NewTemplateRecognizer(dict []string, m config.RecManifest) (*TemplateRecognizer, error) {
	r := &TemplateRecognizer{thresh: m.BinaryThresh, spaceGap: m.SpaceGap}
	if r.thresh <= 0 {
		r.thresh = 128
	}
	if r.spaceGap <= 0 {
		r.spaceGap = 8
	}

	for _, sym := range dict {
		if g, ok := renderGlyph(sym); ok {
			r.glyphs = append(r.glyphs, g)
		}
	}
	if len(r.glyphs) == 0 {
		return nil, fmt.Errorf("dictionary of %d symbols has no renderable glyphs", len(dict))
	}
	return r, nil
}

func (r *TemplateRecognizer) Name() string { return "template" }

// Recognize reads one text line. An image without ink yields an empty string
// with score 0.
func (r *TemplateRecognizer) Recognize(img image.Image) (Text, error) {
	b := img.Bounds()
	if b.Empty() {
		return Text{}, nil
	}
	w, h := b.Dx(), b.Dy()

	mask := image.NewGray(image.Rect(0, 0, w, h))
	analyzer.Binarize(img, mask, r.thresh, false)
	if inkShare(mask) > 0.5 {
		invertMask(mask)
	}

	cols := make([]bool, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] != 0 {
				cols[x] = true
			}
		}
	}

	var sb strings.Builder
	var sum float64
	n := 0
	prevEnd := -1
	for x := 0; x < w; {
		if !cols[x] {
			x++
			continue
		}
		start := x
		for x < w && cols[x] {
			x++
		}

		bits, gw, gh := tightBits(mask, image.Rect(start, 0, x, h))
		sym, score := r.best(bits, gw, gh)

		if prevEnd >= 0 && start-prevEnd >= r.spaceGap {
			sb.WriteByte(' ')
		}
		sb.WriteString(sym)
		sum += score
		n++
		prevEnd = x
	}

	if n == 0 {
		return Text{}, nil
	}
	return Text{Value: sb.String(), Score: sum / float64(n)}, nil
}

func (r *TemplateRecognizer) Close() error { return nil }

// best returns the most similar glyph; earlier dictionary entries win ties
func (r *TemplateRecognizer) best(bits []bool, w, h int) (string, float64) {
	sym, score := "", -1.0
	for _, g := range r.glyphs {
		if s := g.similarity(bits, w, h); s > score {
			sym, score = g.sym, s
		}
	}
	return sym, score
}

// similarity samples the candidate at template resolution and scales the
// pixel agreement by how close the two sizes are. Identical bitmaps score 1.
func (g glyph) similarity(bits []bool, w, h int) float64 {
	if w == 0 || h == 0 {
		return 0
	}
	match := 0
	for ty := 0; ty < g.h; ty++ {
		sy := ty * h / g.h
		for tx := 0; tx < g.w; tx++ {
			sx := tx * w / g.w
			if bits[sy*w+sx] == g.bits[ty*g.w+tx] {
				match++
			}
		}
	}
	s := float64(match) / float64(g.w*g.h)
	return s * sizeRatio(w, g.w) * sizeRatio(h, g.h)
}

func sizeRatio(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}

func renderGlyph(sym string) (glyph, bool) {
	runes := []rune(sym)
	if len(runes) != 1 || runes[0] <= ' ' || runes[0] > '~' {
		return glyph{}, false
	}

	cell := image.NewGray(image.Rect(0, 0, templateCellW, templateCellH))
	draw.Draw(cell, cell.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  cell,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, templateAscent),
	}
	d.DrawString(sym)

	mask := image.NewGray(cell.Bounds())
	analyzer.Binarize(cell, mask, 128, false)
	bits, w, h := tightBits(mask, mask.Bounds())
	if w == 0 {
		return glyph{}, false
	}
	return glyph{sym: sym, w: w, h: h, bits: bits}, true
}

// tightBits crops the ink inside area to its bounding box
func tightBits(mask *image.Gray, area image.Rectangle) ([]bool, int, int) {
	minX, minY := area.Max.X, area.Max.Y
	maxX, maxY := area.Min.X-1, area.Min.Y-1
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if mask.Pix[y*mask.Stride+x] != 0 {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	if maxX < minX {
		return nil, 0, 0
	}

	w, h := maxX-minX+1, maxY-minY+1
	bits := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bits[y*w+x] = mask.Pix[(minY+y)*mask.Stride+minX+x] != 0
		}
	}
	return bits, w, h
}

func inkShare(mask *image.Gray) float64 {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	if w*h == 0 {
		return 0
	}
	ink := 0
	for y := 0; y < h; y++ {
		for _, v := range mask.Pix[y*mask.Stride : y*mask.Stride+w] {
			if v != 0 {
				ink++
			}
		}
	}
	return float64(ink) / float64(w*h)
}

func invertMask(mask *image.Gray) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for i, v := range row {
			row[i] = 255 - v
		}
	}
}
