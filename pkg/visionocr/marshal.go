package visionocr

import (
	"unicode/utf8"

	"github.com/ivlev/visionocr/internal/engine"
)

// BoxInts is the number of integers describing one box.
const BoxInts = 8

// MaxTimings is the largest number of timings a call records.
const MaxTimings = engine.MaxStages

// Output is caller-owned storage for one call. The length of each slice is
// its declared capacity; nothing is ever written beyond it and no slice is
// grown or replaced.
//
// On success Count receives the number of regions written and, when Timings
// is not nil, TimingCount the number of timings written. Boxes[8i:8i+8],
// Texts[i] and Scores[i] always describe the same region. When there are more
// regions than capacity the first ones in reading order are kept.
type Output struct {
	Boxes  []int32
	Texts  [][]byte // each slot receives a NUL-terminated string
	Scores []float32
	Count  int

	// Timings receives stage durations in milliseconds. When it is shorter
	// than the number of executed stages no timing is written and
	// TimingCount is 0.
	Timings     []float64
	TimingCount int

	// Stages, when it has room, receives the name of each written timing.
	// It is filled together with Timings or not at all.
	Stages []engine.Stage
}

// NewOutput allocates storage for regions results with textSize bytes per
// string, including the terminator, and room for every timing.
func NewOutput(regions, textSize int) *Output {
	o := &Output{
		Boxes:   make([]int32, regions*BoxInts),
		Texts:   make([][]byte, regions),
		Scores:  make([]float32, regions),
		Timings: make([]float64, MaxTimings),
		Stages:  make([]engine.Stage, MaxTimings),
	}
	for i := range o.Texts {
		o.Texts[i] = make([]byte, textSize)
	}
	return o
}

// Capacity is the number of regions o can hold. Boxes only count when they
// are written.
func (o *Output) Capacity(withBoxes bool) int {
	n := min(len(o.Texts), len(o.Scores))
	if withBoxes {
		n = min(n, len(o.Boxes)/BoxInts)
	}
	return n
}

// Text returns the string written to slot i, up to its terminator.
func (o *Output) Text(i int) string {
	b := o.Texts[i]
	for j, c := range b {
		if c == 0 {
			return string(b[:j])
		}
	}
	return string(b)
}

func (o *Output) write(res Result, withBoxes bool) {
	n := min(len(res.Regions), o.Capacity(withBoxes))
	for i := 0; i < n; i++ {
		r := res.Regions[i]
		if withBoxes {
			box := o.Boxes[i*BoxInts : (i+1)*BoxInts]
			for j, v := range r.Box {
				box[j] = int32(v)
			}
		}
		WriteText(o.Texts[i], r.Text)
		o.Scores[i] = float32(clamp01(r.Score))
	}
	o.Count = n
	o.writeTimings(res.Timings)
}

func (o *Output) writeTimings(timings []engine.Timing) {
	if o.Timings == nil {
		return
	}
	if len(o.Timings) < len(timings) {
		o.TimingCount = 0
		return
	}
	named := len(o.Stages) >= len(timings)
	for i, t := range timings {
		o.Timings[i] = float64(t.Duration.Nanoseconds()) / 1e6
		if named {
			o.Stages[i] = t.Stage
		}
	}
	o.TimingCount = len(timings)
}

// WriteText copies s into dst followed by a NUL byte, cutting s at a rune
// boundary so that both fit. It returns the number of text bytes written. A
// zero-length dst is left alone.
func WriteText(dst []byte, s string) int {
	if len(dst) == 0 {
		return 0
	}
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
	}
	copy(dst, s[:n])
	dst[n] = 0
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
