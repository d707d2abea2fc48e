// Package source yields encoded pages from image files, image directories
// and PDF documents for the front end.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ivlev/visionocr/internal/codec"
)

// Source is an ordered list of pages. PageBytes returns an encoded image
// that can be handed to the OCR boundary as is.
type Source interface {
	PageCount() int
	PageName(index int) string
	PageBytes(index int) ([]byte, error)
	Close() error
}

// Open picks the source for path by its extension. dpi only applies to PDF
// documents.
func Open(path string, dpi int) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzPDFSource(path, dpi)
	}
	return NewImageSource(path)
}

// FitzPDFSource renders PDF pages to PNG with MuPDF.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PageName(index int) string {
	return fmt.Sprintf("%s#%d", filepath.Base(f.path), index+1)
}

// PageBytes renders one page. Every call opens its own document so pages can
// be rendered from several goroutines.
func (f *FitzPDFSource) PageBytes(index int) ([]byte, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index+1, err)
	}
	return codec.EncodePNG(img)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
