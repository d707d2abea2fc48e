// Package engine holds loaded OCR models and runs the detection,
// classification and recognition stages over a decoded image.
//
// An Engine keeps mutable scratch state and a possibly stateful recognizer
// backend; it must not be used from more than one goroutine at a time.
package engine

import (
	"fmt"
	"image"
	"time"

	"github.com/ivlev/visionocr/internal/analyzer"
	"github.com/ivlev/visionocr/internal/config"
	ocrerrors "github.com/ivlev/visionocr/internal/errors"
	"github.com/ivlev/visionocr/internal/logging"
	"github.com/ivlev/visionocr/internal/system"
)

// Stage names a pipeline step.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageDetect    Stage = "detect"
	StageClassify  Stage = "classify"
	StageRecognize Stage = "recognize"
)

// MaxStages is the largest number of timings a single call produces.
const MaxStages = 4

// Timing is the wall time spent in one stage.
type Timing struct {
	Stage    Stage
	Duration time.Duration
}

// Region is one recognized text region.
type Region struct {
	Quad  analyzer.Quad
	Text  string
	Score float64
	Angle int // 0 or 180, as decided by the classifier
}

// Engine is a set of loaded models.
type Engine struct {
	Profile string

	det     analyzer.Detector
	cls     Classifier
	rec     Recognizer
	scratch *system.GrayPool
	log     *logging.Logger
}

// Load builds every backend named by set. All model loading happens here.
func Load(set *config.ModelSet, log *logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Discard()
	}
	scratch := system.NewGrayPool(2)

	det, err := analyzer.NewDetector(set.Det, scratch)
	if err != nil {
		return nil, ocrerrors.Config(err, "load detection model")
	}

	rec, err := NewRecognizer(set.Rec, set.Dictionary)
	if err != nil {
		return nil, ocrerrors.Config(err, "load recognition model")
	}

	var cls Classifier
	if set.Cls != nil {
		cls, err = NewClassifier(*set.Cls, rec)
		if err != nil {
			rec.Close()
			return nil, ocrerrors.Config(err, "load classification model")
		}
	}

	log.Debug("engine loaded",
		"profile", set.Profile,
		"det", set.Det.Backend,
		"rec", rec.Name(),
		"cls", set.Cls != nil,
		"dict", len(set.Dictionary))

	return &Engine{
		Profile: set.Profile,
		det:     det,
		cls:     cls,
		rec:     rec,
		scratch: scratch,
		log:     log,
	}, nil
}

// HasClassifier reports whether an orientation classifier is loaded.
func (e *Engine) HasClassifier() bool {
	return e.cls != nil
}

// System runs detection, the optional classification and recognition. The
// classifier is not touched when withCls is false or none is loaded.
func (e *Engine) System(img image.Image, withCls bool) ([]Region, []Timing, error) {
	timings := make([]Timing, 0, MaxStages-1)

	start := time.Now()
	blocks, err := e.det.Detect(img)
	if err != nil {
		return nil, nil, ocrerrors.Inference(string(StageDetect), err)
	}
	timings = append(timings, Timing{Stage: StageDetect, Duration: time.Since(start)})

	crops := make([]image.Image, len(blocks))
	for i, b := range blocks {
		crops[i] = Crop(img, b.Rect)
	}

	angles := make([]int, len(blocks))
	if withCls && e.cls == nil {
		e.log.Debug("classification requested but no classifier loaded", "profile", e.Profile)
	}
	if withCls && e.cls != nil {
		start = time.Now()
		for i := range crops {
			o, err := e.cls.Classify(crops[i])
			if err != nil {
				return nil, nil, ocrerrors.Inference(string(StageClassify), fmt.Errorf("region %d: %w", i, err))
			}
			if o.Angle == 180 {
				crops[i] = Rotate180(crops[i])
				angles[i] = 180
			}
		}
		timings = append(timings, Timing{Stage: StageClassify, Duration: time.Since(start)})
	}

	start = time.Now()
	regions := make([]Region, 0, len(blocks))
	for i, b := range blocks {
		t, err := e.rec.Recognize(crops[i])
		if err != nil {
			return nil, nil, ocrerrors.Inference(string(StageRecognize), fmt.Errorf("region %d: %w", i, err))
		}
		regions = append(regions, Region{
			Quad:  b.Quad,
			Text:  t.Value,
			Score: t.Score,
			Angle: angles[i],
		})
	}
	timings = append(timings, Timing{Stage: StageRecognize, Duration: time.Since(start)})

	return regions, timings, nil
}

// Recognize treats the whole image as a single text line.
func (e *Engine) Recognize(img image.Image) (Region, []Timing, error) {
	start := time.Now()
	t, err := e.rec.Recognize(img)
	if err != nil {
		return Region{}, nil, ocrerrors.Inference(string(StageRecognize), err)
	}
	return Region{Text: t.Value, Score: t.Score}, []Timing{{Stage: StageRecognize, Duration: time.Since(start)}}, nil
}

// Close releases the recognizer backend and scratch buffers.
func (e *Engine) Close() error {
	e.scratch.Release()
	return e.rec.Close()
}
