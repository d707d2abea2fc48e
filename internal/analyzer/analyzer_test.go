package analyzer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/system"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func page(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return img
}

func drawText(img *image.RGBA, fg color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: fg},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func TestContrastDetectorLines(t *testing.T) {
	img := page(240, 120, color.White)
	drawText(img, color.Black, 10, 30, "HELLO 123")
	drawText(img, color.Black, 10, 70, "second line")
	drawText(img, color.Black, 150, 70, "right")

	detector := NewContrastDetector()
	blocks, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(blocks) != 3 {
		for i, b := range blocks {
			t.Logf("Block %d: %v (confidence: %.2f)", i, b.Rect, b.Confidence)
		}
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	// Reading order: first line, then left and right of the second line
	if !(blocks[0].Rect.Min.Y < blocks[1].Rect.Min.Y) {
		t.Errorf("first line should come first: %v %v", blocks[0].Rect, blocks[1].Rect)
	}
	if !(blocks[1].Rect.Min.X < blocks[2].Rect.Min.X) {
		t.Errorf("same-line blocks should be left to right: %v %v", blocks[1].Rect, blocks[2].Rect)
	}

	// "HELLO 123" is 9 glyphs of 7 pixels
	if w := blocks[0].Rect.Dx(); w < 60 || w > 72 {
		t.Errorf("first line width %d out of range", w)
	}
	for i, b := range blocks {
		if b.Confidence <= 0 || b.Confidence > 1 {
			t.Errorf("block %d confidence %.2f out of (0,1]", i, b.Confidence)
		}
		if b.Quad != QuadFromRect(b.Rect) {
			t.Errorf("block %d quad %v does not match rect %v", i, b.Quad, b.Rect)
		}
	}
}

func TestContrastDetectorBlank(t *testing.T) {
	blocks, err := NewContrastDetector().Detect(page(64, 64, color.White))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("Expected no blocks on a blank page, got %d", len(blocks))
	}
}

func TestContrastDetectorInverted(t *testing.T) {
	img := page(120, 40, color.Black)
	drawText(img, color.White, 5, 25, "NIGHT")

	d := NewContrastDetector()
	d.Invert = true
	blocks, err := d.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
}

func TestContrastDetectorOffsetBounds(t *testing.T) {
	img := page(100, 40, color.White)
	drawText(img, color.Black, 20, 25, "SUB")
	sub := img.SubImage(image.Rect(10, 5, 100, 40))

	blocks, err := NewContrastDetector().Detect(sub)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Rect.In(sub.Bounds()) {
		t.Errorf("block %v escapes sub-image bounds %v", blocks[0].Rect, sub.Bounds())
	}
	if blocks[0].Rect.Min.X < 18 {
		t.Errorf("block not in source coordinates: %v", blocks[0].Rect)
	}
}

func TestContrastDetectorScratchReuse(t *testing.T) {
	pool := system.NewGrayPool(2)
	d := NewContrastDetector()
	d.Scratch = pool

	img := page(80, 30, color.White)
	drawText(img, color.Black, 5, 20, "ABC")

	first, _ := d.Detect(img)
	second, _ := d.Detect(img)
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Errorf("repeated detection differs: %v vs %v", first, second)
	}
	if pool.Idle() != 1 {
		t.Errorf("Idle = %d, want 1", pool.Idle())
	}
}

func TestSortReadingOrder(t *testing.T) {
	blocks := []Block{
		{Rect: image.Rect(100, 12, 150, 25)},
		{Rect: image.Rect(10, 10, 60, 25)},
		{Rect: image.Rect(10, 50, 60, 65)},
	}
	SortReadingOrder(blocks, 10)

	want := []int{10, 100, 10}
	for i, b := range blocks {
		if b.Rect.Min.X != want[i] {
			t.Errorf("position %d: x=%d, want %d", i, b.Rect.Min.X, want[i])
		}
	}
}

func TestQuad(t *testing.T) {
	r := image.Rect(5, 6, 15, 10)
	q := QuadFromRect(r)
	if got := q.Ints(); got != [8]int{5, 6, 14, 6, 14, 9, 5, 9} {
		t.Errorf("Ints = %v", got)
	}
	if q.Bounds() != r {
		t.Errorf("Bounds = %v, want %v", q.Bounds(), r)
	}

	degenerate := QuadFromRect(image.Rect(3, 3, 3, 3))
	for _, p := range degenerate {
		if p != (image.Point{X: 3, Y: 3}) {
			t.Errorf("degenerate quad corner %v", p)
		}
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"contrast", false},
		{"", false}, // default
		{"db", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			detector, err := NewDetector(config.DetManifest{Backend: tt.backend, MergeGap: 5}, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if cd, ok := detector.(*ContrastDetector); !ok || cd.MergeGap != 5 {
				t.Errorf("manifest not applied: %#v", detector)
			}
		})
	}
}
