package engine

import (
	"fmt"
	"image"

	"github.com/ivlev/visionocr/internal/config"
)

// Text is the recognition result for one crop.
type Text struct {
	Value string
	Score float64 // 0.0-1.0
}

// Recognizer converts a single text-line crop into a string.
type Recognizer interface {
	Name() string
	Recognize(img image.Image) (Text, error)
	Close() error
}

// Orientation is a classifier decision.
type Orientation struct {
	Angle int // 0 or 180
	Score float64
}

// Classifier decides whether a crop is upside down.
type Classifier interface {
	Classify(img image.Image) (Orientation, error)
}

// NewRecognizer creates the recognition backend named in the manifest
func NewRecognizer(m config.RecManifest, dict []string) (Recognizer, error) {
	switch m.Backend {
	case "template", "":
		return NewTemplateRecognizer(dict, m)
	case "tesseract":
		return NewTesseractRecognizer(dict, m)
	default:
		return nil, fmt.Errorf("unknown recognizer backend: %s", m.Backend)
	}
}

// NewClassifier creates the orientation classifier named in the manifest.
// Classifiers score candidate orientations with rec.
func NewClassifier(m config.ClsManifest, rec Recognizer) (Classifier, error) {
	switch m.Backend {
	case "flip", "":
		return &FlipClassifier{Rec: rec, Thresh: m.ClsThresh}, nil
	default:
		return nil, fmt.Errorf("unknown classifier backend: %s", m.Backend)
	}
}

// FlipClassifier recognizes a crop as-is and rotated by 180° and picks the
// rotation when it reads clearly better.
type FlipClassifier struct {
	Rec    Recognizer
	Thresh float64
}

func (c *FlipClassifier) Classify(img image.Image) (Orientation, error) {
	upright, err := c.Rec.Recognize(img)
	if err != nil {
		return Orientation{}, err
	}
	flipped, err := c.Rec.Recognize(Rotate180(img))
	if err != nil {
		return Orientation{}, err
	}
	if flipped.Score > upright.Score && flipped.Score >= c.Thresh {
		return Orientation{Angle: 180, Score: flipped.Score}, nil
	}
	return Orientation{Angle: 0, Score: upright.Score}, nil
}
