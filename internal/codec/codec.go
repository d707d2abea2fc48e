// Package codec turns encoded image bytes into pixel grids and back.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the decoded image size; larger inputs are rejected before
// the pixel buffer is allocated.
const MaxPixels = 100_000_000

var (
	ErrEmpty    = errors.New("empty image buffer")
	ErrTooLarge = errors.New("image dimensions exceed limit")
)

// Decode decodes a PNG, JPEG, GIF, BMP, TIFF or WebP buffer and reports the
// detected format name.
func Decode(buf []byte) (image.Image, string, error) {
	if len(buf) == 0 {
		return nil, "", ErrEmpty
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, format, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, format, fmt.Errorf("decode %s: %w", format, err)
	}
	return img, format, nil
}

// EncodePNG encodes img as PNG, the interchange format of the boundary.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
