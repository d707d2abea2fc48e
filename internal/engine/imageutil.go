package engine

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Crop returns the part of img inside rect, sharing pixels when the image
// supports sub-images.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// Rotate180 returns a copy of img turned upside down, anchored at the origin.
func Rotate180(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	dst := image.NewRGBA(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := y*src.Stride + x*4
			di := (h-1-y)*dst.Stride + (w-1-x)*4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// ScaleToHeight resizes img so that it is height pixels tall, keeping the
// aspect ratio. Images already at least that tall are returned unchanged.
func ScaleToHeight(img image.Image, height int) image.Image {
	b := img.Bounds()
	if b.Dy() == 0 || b.Dy() >= height {
		return img
	}
	width := b.Dx() * height / b.Dy()
	if width < 1 {
		width = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
