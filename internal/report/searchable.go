package report

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/ivlev/visionocr/internal/codec"
	"golang.org/x/text/encoding/charmap"
)

// FontConfig is the font of the hidden text layer.
type FontConfig struct {
	Name        string
	Size        float64
	AscentRatio float64 // share of the font size above the baseline
}

// DefaultFont is a core PDF font, so nothing has to be embedded.
var DefaultFont = FontConfig{Name: "Helvetica", Size: 10, AscentRatio: 0.718}

// PDFOptions controls searchable PDF output.
type PDFOptions struct {
	DPI       int    // resolution of the page images; 72 maps one pixel to one point
	LayerName string // page number is appended
	Debug     bool   // draw the text layer visibly in red with boxes
	Font      FontConfig
}

// DefaultPDFOptions returns options for images rendered at dpi.
func DefaultPDFOptions(dpi int) PDFOptions {
	return PDFOptions{DPI: dpi, LayerName: "OCR Text", Font: DefaultFont}
}

// PDFPage is a page image and the regions recognized on it.
type PDFPage struct {
	Image   []byte
	Regions []Region
}

// WriteSearchablePDF writes one PDF page per image with the recognized text
// drawn invisibly over its box, so that the document can be searched and
// copied from.
func WriteSearchablePDF(w io.Writer, pages []PDFPage, opts PDFOptions) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages")
	}
	if opts.DPI <= 0 {
		opts.DPI = 72
	}
	if opts.Font.Name == "" {
		opts.Font = DefaultFont
	}
	scale := 72.0 / float64(opts.DPI)

	pdf := fpdf.New("P", "pt", "A4", "")
	enc := charmap.ISO8859_1.NewEncoder()

	for i, page := range pages {
		data, imageType, cfg, err := pdfImage(page.Image)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		wPt, hPt := float64(cfg.Width)*scale, float64(cfg.Height)*scale

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: wPt, Ht: hPt})
		name := fmt.Sprintf("img%d", i)
		imgOpts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, wPt, hPt, false, imgOpts, 0, "")

		layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", opts.LayerName, i+1), true)
		pdf.BeginLayer(layer)
		pdf.SetFont(opts.Font.Name, "", opts.Font.Size)
		if opts.Debug {
			pdf.SetTextColor(255, 0, 0)
			pdf.SetDrawColor(255, 0, 0)
		} else {
			pdf.SetAlpha(0.0, "Normal")
		}
		for _, r := range page.Regions {
			drawRegion(pdf, enc.String, r, scale, opts)
		}
		if !opts.Debug {
			pdf.SetAlpha(1.0, "Normal")
		}
		pdf.EndLayer()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

func drawRegion(pdf *fpdf.Fpdf, encode func(string) (string, error), r Region, scale float64, opts PDFOptions) {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return
	}
	// Core fonts only cover Latin-1.
	latin1, err := encode(text)
	if err != nil {
		latin1 = strings.Map(func(c rune) rune {
			if c > 0xff {
				return '?'
			}
			return c
		}, text)
		latin1, _ = encode(latin1)
	}

	x0, y0, x1, y1 := r.Box.Bounds()
	x, y := float64(x0)*scale, float64(y0)*scale
	width, height := float64(x1-x0+1)*scale, float64(y1-y0+1)*scale

	if sw := pdf.GetStringWidth(latin1); sw > 0 {
		pdf.SetFontSize(opts.Font.Size * width / sw)
	}
	size, _ := pdf.GetFontSize()
	pdf.Text(x, y+size*opts.Font.AscentRatio, latin1)
	pdf.SetFontSize(opts.Font.Size)

	if opts.Debug {
		pdf.Rect(x, y, width, height, "D")
	}
}

// pdfImage returns data in a format fpdf embeds, re-encoding to PNG when
// needed.
func pdfImage(data []byte) ([]byte, string, image.Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", cfg, fmt.Errorf("failed to decode image config: %w", err)
	}
	switch format {
	case "png", "jpeg", "gif":
		return data, strings.ToUpper(format), cfg, nil
	}

	img, _, err := codec.Decode(data)
	if err != nil {
		return nil, "", cfg, err
	}
	png, err := codec.EncodePNG(img)
	if err != nil {
		return nil, "", cfg, err
	}
	return png, "PNG", cfg, nil
}
