package analyzer

import "image"

// Quad is a text-region quadrilateral, clockwise from the top-left corner,
// in inclusive pixel coordinates of the source image.
type Quad [4]image.Point

// QuadFromRect returns the axis-aligned quad covering r.
func QuadFromRect(r image.Rectangle) Quad {
	maxX, maxY := r.Max.X-1, r.Max.Y-1
	if maxX < r.Min.X {
		maxX = r.Min.X
	}
	if maxY < r.Min.Y {
		maxY = r.Min.Y
	}
	return Quad{
		{X: r.Min.X, Y: r.Min.Y},
		{X: maxX, Y: r.Min.Y},
		{X: maxX, Y: maxY},
		{X: r.Min.X, Y: maxY},
	}
}

// Ints flattens the quad as x0,y0,x1,y1,x2,y2,x3,y3.
func (q Quad) Ints() [8]int {
	var out [8]int
	for i, p := range q {
		out[2*i] = p.X
		out[2*i+1] = p.Y
	}
	return out
}

// Bounds returns the smallest rectangle containing every corner.
func (q Quad) Bounds() image.Rectangle {
	r := image.Rectangle{Min: q[0], Max: q[0]}
	for _, p := range q[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Point{X: 1, Y: 1})
	return r
}

// Block is a detected text region
type Block struct {
	Rect       image.Rectangle
	Quad       Quad
	Confidence float64 // 0.0-1.0
}

// Detector finds text regions and returns them in reading order
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
