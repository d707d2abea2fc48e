package engine

import (
	"fmt"
	"image"
	"strings"

	"github.com/ivlev/visionocr/internal/codec"
	"github.com/ivlev/visionocr/internal/config"
	"github.com/otiai10/gosseract/v2"
)

// minTesseractHeight is the crop height below which crops are upscaled;
// Tesseract reads small glyphs poorly.
const minTesseractHeight = 48

// TesseractRecognizer recognizes text lines with libtesseract through a
// single long-lived gosseract client.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseractRecognizer configures a client and runs one warm-up
// recognition so that missing language data fails here rather than on the
// first pipeline call.
func NewTesseractRecognizer(dict []string, m config.RecManifest) (*TesseractRecognizer, error) {
	c := gosseract.NewClient()

	if err := c.SetLanguage(m.Languages...); err != nil {
		c.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if m.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(m.PageSegMode)); err != nil {
			c.Close()
			return nil, fmt.Errorf("set psm: %w", err)
		}
	}
	if len(dict) > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_char_whitelist"), strings.Join(dict, "")+" "); err != nil {
			c.Close()
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}

	t := &TesseractRecognizer{client: c}
	blank := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}
	if _, err := t.Recognize(blank); err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract warm-up: %w", err)
	}
	return t, nil
}

func (t *TesseractRecognizer) Name() string { return "tesseract" }

func (t *TesseractRecognizer) Recognize(img image.Image) (Text, error) {
	if img.Bounds().Empty() {
		return Text{}, nil
	}

	buf, err := codec.EncodePNG(ScaleToHeight(img, minTesseractHeight))
	if err != nil {
		return Text{}, err
	}
	if err := t.client.SetImageFromBytes(buf); err != nil {
		return Text{}, fmt.Errorf("set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return Text{}, fmt.Errorf("recognize text: %w", err)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Text{}, nil
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return Text{Value: text}, nil
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	score := sum / float64(len(boxes))
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return Text{Value: text, Score: score}, nil
}

func (t *TesseractRecognizer) Close() error {
	return t.client.Close()
}
