package analyzer

import (
	"image"
	"image/color"
	"sort"

	"github.com/ivlev/visionocr/internal/system"
)

// ContrastDetector finds text lines by binarizing the image, smearing ink
// horizontally so glyphs of one line join, and taking connected components.
type ContrastDetector struct {
	BinaryThresh int  // Gray level below which a pixel counts as ink
	Invert       bool // Light text on a dark background
	MergeGap     int  // Widest blank run bridged inside a line
	MinArea      int  // Minimum component area in pixels²
	Padding      int  // Pixels added around each box
	RowTolerance int  // Max top offset for two boxes to share a line

	// Scratch supplies the mask buffer. Nil allocates per call.
	Scratch *system.GrayPool
}

// NewContrastDetector creates a detector tuned for dark text on a light page
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		BinaryThresh: 128,
		MergeGap:     12,
		MinArea:      20,
		Padding:      2,
		RowTolerance: 10,
	}
}

// stackGap is the vertical distance under which components overlapping in x
// are joined, so dotted glyphs (i, j, :) stay with their line.
const stackGap = 2

// Detect returns text regions in reading order
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}
	frame := image.Rect(0, 0, b.Dx(), b.Dy())

	// Step 1: Ink mask
	mask := d.getMask(frame)
	defer d.putMask(mask)
	Binarize(img, mask, d.BinaryThresh, d.Invert)

	// Step 2: Join glyphs along each row
	smearRows(mask, d.MergeGap)

	// Step 3: Connected components, then re-attach stacked fragments
	rects := mergeStacked(findComponents(mask), stackGap)

	// Step 4: Filter, pad and translate back to image coordinates
	blocks := []Block{}
	for _, rect := range rects {
		if rect.Dx()*rect.Dy() < d.MinArea {
			continue
		}
		score := density(mask, rect)
		rect = rect.Inset(-d.Padding).Intersect(frame).Add(b.Min)
		blocks = append(blocks, Block{
			Rect:       rect,
			Quad:       QuadFromRect(rect),
			Confidence: score,
		})
	}

	SortReadingOrder(blocks, d.RowTolerance)
	return blocks, nil
}

func (d *ContrastDetector) getMask(frame image.Rectangle) *image.Gray {
	if d.Scratch == nil {
		return image.NewGray(frame)
	}
	return d.Scratch.Get(frame)
}

func (d *ContrastDetector) putMask(mask *image.Gray) {
	if d.Scratch != nil {
		d.Scratch.Put(mask)
	}
}

// Binarize writes 255 for ink and 0 for background into dst, whose rectangle
// must start at the origin and match img's size.
func Binarize(img image.Image, dst *image.Gray, thresh int, invert bool) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range row {
			g := int(color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y)
			ink := g < thresh
			if invert {
				ink = g >= thresh
			}
			if ink {
				row[x] = 255
			} else {
				row[x] = 0
			}
		}
	}
}

// smearRows fills blank runs of at most gap pixels between ink pixels
func smearRows(mask *image.Gray, gap int) {
	if gap <= 0 {
		return
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		last := -1
		for x := 0; x < w; x++ {
			if row[x] == 0 {
				continue
			}
			if last >= 0 && x-last-1 > 0 && x-last-1 <= gap {
				for i := last + 1; i < x; i++ {
					row[i] = 255
				}
			}
			last = x
		}
	}
}

// findComponents returns bounding rectangles of 8-connected ink regions in
// row-major discovery order
func findComponents(mask *image.Gray) []image.Rectangle {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	visited := make([]bool, w*h)
	contours := []image.Rectangle{}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] > 128 && !visited[y*w+x] {
				contours = append(contours, floodFill(mask, visited, x, y))
			}
		}
	}
	return contours
}

// floodFill marks the component containing (startX, startY) and returns its
// bounding rectangle
func floodFill(mask *image.Gray, visited []bool, startX, startY int) image.Rectangle {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*w+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if visited[ny*w+nx] || mask.Pix[ny*mask.Stride+nx] <= 128 {
					continue
				}
				visited[ny*w+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// mergeStacked unions rectangles that overlap horizontally and lie within
// gap pixels of each other vertically. The earlier rectangle absorbs the later
// one, so the result order follows the input order.
func mergeStacked(rects []image.Rectangle, gap int) []image.Rectangle {
	out := append([]image.Rectangle(nil), rects...)
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out) && !merged; i++ {
			grown := image.Rect(out[i].Min.X, out[i].Min.Y-gap, out[i].Max.X, out[i].Max.Y+gap)
			for j := i + 1; j < len(out); j++ {
				if grown.Overlaps(out[j]) {
					out[i] = out[i].Union(out[j])
					out = append(out[:j], out[j+1:]...)
					merged = true
					break
				}
			}
		}
	}
	return out
}

// density is the share of ink pixels inside rect
func density(mask *image.Gray, rect image.Rectangle) float64 {
	area := rect.Dx() * rect.Dy()
	if area == 0 {
		return 0
	}
	ink := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if mask.Pix[y*mask.Stride+x] > 128 {
				ink++
			}
		}
	}
	return float64(ink) / float64(area)
}

// SortReadingOrder orders blocks top-to-bottom, then left-to-right for boxes
// whose tops are within tolerance pixels of each other. The ordering depends
// only on the box geometry, so equal inputs always sort the same way.
func SortReadingOrder(blocks []Block, tolerance int) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i].Rect.Min, blocks[j].Rect.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	// Same row: sort by X
	for i := 0; i < len(blocks)-1; i++ {
		for j := i; j >= 0; j-- {
			a, b := blocks[j].Rect.Min, blocks[j+1].Rect.Min
			if abs(b.Y-a.Y) < tolerance && b.X < a.X {
				blocks[j], blocks[j+1] = blocks[j+1], blocks[j]
			} else {
				break
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
