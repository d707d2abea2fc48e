package visionocr

import (
	"image"
	"time"

	"github.com/ivlev/visionocr/internal/codec"
	"github.com/ivlev/visionocr/internal/engine"
	ocrerrors "github.com/ivlev/visionocr/internal/errors"
)

// Region is one recognized text region. Box holds the quadrilateral as
// x0,y0,x1,y1,x2,y2,x3,y3 clockwise from the top-left corner; it is zero for
// recognition-only results.
type Region struct {
	Box   [8]int
	Text  string
	Score float64
	Angle int
}

// Result is the payload of a successful call. Timings are in execution
// order, starting with decode.
type Result struct {
	Regions []Region
	Timings []engine.Timing
}

// System runs decode, detection, optional classification and recognition.
// Regions come back in reading order.
func (h *Handle) System(image []byte, useCls bool) (Result, error) {
	img, decode, err := h.decode(image)
	if err != nil {
		return Result{}, err
	}

	regions, timings, err := h.engine.System(img, useCls)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Regions: make([]Region, len(regions)),
		Timings: append([]engine.Timing{decode}, timings...),
	}
	for i, r := range regions {
		res.Regions[i] = Region{Box: r.Quad.Ints(), Text: r.Text, Score: r.Score, Angle: r.Angle}
	}
	h.log.Debug("system", "regions", len(res.Regions), "cls", useCls)
	return res, nil
}

// RecognizeText reads the whole image as one text line. The result always
// has exactly one region.
func (h *Handle) RecognizeText(image []byte) (Result, error) {
	img, decode, err := h.decode(image)
	if err != nil {
		return Result{}, err
	}

	r, timings, err := h.engine.Recognize(img)
	if err != nil {
		return Result{}, err
	}
	h.log.Debug("recognize", "text", r.Text, "score", r.Score)
	return Result{
		Regions: []Region{{Text: r.Text, Score: r.Score}},
		Timings: append([]engine.Timing{decode}, timings...),
	}, nil
}

// RunSystem is System writing into caller storage. On failure out is left
// untouched.
func (h *Handle) RunSystem(image []byte, useCls bool, out *Output) Status {
	res, err := h.System(image, useCls)
	if err != nil {
		h.log.Error("system failed", "code", ocrerrors.CodeOf(err), "error", err)
		return Failure
	}
	if out != nil {
		out.write(res, true)
	}
	return Success
}

// Recognize is RecognizeText writing into caller storage. Boxes are not
// touched. On failure out is left untouched.
func (h *Handle) Recognize(image []byte, out *Output) Status {
	res, err := h.RecognizeText(image)
	if err != nil {
		h.log.Error("recognize failed", "code", ocrerrors.CodeOf(err), "error", err)
		return Failure
	}
	if out != nil {
		out.write(res, false)
	}
	return Success
}

func (h *Handle) decode(buf []byte) (image.Image, engine.Timing, error) {
	start := time.Now()
	img, format, err := codec.Decode(buf)
	if err != nil {
		return nil, engine.Timing{}, ocrerrors.Decode(err)
	}
	h.log.Debug("decoded", "format", format, "size", img.Bounds().Size())
	return img, engine.Timing{Stage: engine.StageDecode, Duration: time.Since(start)}, nil
}
