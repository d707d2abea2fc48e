// Command libvisionocr builds the OCR boundary as a C shared library:
//
//	go build -buildmode=c-shared -o libvisionocr.so ./cmd/libvisionocr
//
// Handles are opaque uintptr_t values. *out_size and *out_times_size carry
// the caller's capacities on entry and the written counts on success; on
// failure no output is touched. Each string slot holds max_text_size bytes
// including the terminator. *out_size is a capacity, not a placeholder: a
// caller that passes 0 gets no regions back.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/ivlev/visionocr/pkg/visionocr"
)

const (
	ocrSuccess = C.int(visionocr.Success)
	ocrFailure = C.int(visionocr.Failure)
)

func main() {}

//export PaddleOcrCreate
func PaddleOcrCreate(detModelDir, recModelDir, charListFile, clsModelDir *C.char) C.uintptr_t {
	h := visionocr.CreateFromPaths(goString(detModelDir), goString(recModelDir), goString(charListFile), goString(clsModelDir))
	if h == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(h))
}

//export PaddleOcrDestroy
func PaddleOcrDestroy(ocr C.uintptr_t) {
	ch := cgo.Handle(ocr)
	visionocr.Destroy(ch.Value().(*visionocr.Handle))
	ch.Delete()
}

//export PaddleOcrRec
func PaddleOcrRec(ocr C.uintptr_t, encodeBuf *C.uint8_t, encodeBufSize C.size_t,
	outStrs **C.char, maxTextSize C.size_t, outScores *C.float, outSize *C.size_t,
	outTimes *C.double, outTimesSize *C.size_t) C.int {

	if ocr == 0 || outSize == nil {
		return ocrFailure
	}
	h := cgo.Handle(ocr).Value().(*visionocr.Handle)

	n := int(*outSize)
	out := &visionocr.Output{
		Texts:   textSlots(outStrs, n, maxTextSize),
		Scores:  cSlice[float32](unsafe.Pointer(outScores), n),
		Timings: timingSlots(outTimes, outTimesSize),
	}
	st := h.Recognize(cSlice[byte](unsafe.Pointer(encodeBuf), int(encodeBufSize)), out)
	return finish(st, out, outSize, outTimesSize)
}

//export PaddleOcrSystem
func PaddleOcrSystem(ocr C.uintptr_t, encodeBuf *C.uint8_t, encodeBufSize C.size_t, withCls C.int,
	outBoxes *C.int, outStrs **C.char, maxTextSize C.size_t, outScores *C.float, outSize *C.size_t,
	outTimes *C.double, outTimesSize *C.size_t) C.int {

	if ocr == 0 || outSize == nil {
		return ocrFailure
	}
	h := cgo.Handle(ocr).Value().(*visionocr.Handle)

	n := int(*outSize)
	out := &visionocr.Output{
		Boxes:   cSlice[int32](unsafe.Pointer(outBoxes), n*visionocr.BoxInts),
		Texts:   textSlots(outStrs, n, maxTextSize),
		Scores:  cSlice[float32](unsafe.Pointer(outScores), n),
		Timings: timingSlots(outTimes, outTimesSize),
	}
	st := h.RunSystem(cSlice[byte](unsafe.Pointer(encodeBuf), int(encodeBufSize)), withCls != 0, out)
	return finish(st, out, outSize, outTimesSize)
}

func finish(st visionocr.Status, out *visionocr.Output, outSize, outTimesSize *C.size_t) C.int {
	timesSize := 0
	if outTimesSize != nil {
		timesSize = int(*outTimesSize)
	}
	n, times := visionocr.Counts(st, out, int(*outSize), timesSize)
	*outSize = C.size_t(n)
	if outTimesSize != nil {
		*outTimesSize = C.size_t(times)
	}
	if st != visionocr.Success {
		return ocrFailure
	}
	return ocrSuccess
}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

// cSlice views n elements of C memory at p. A nil pointer yields a nil slice.
func cSlice[T any](p unsafe.Pointer, n int) []T {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// textSlots views the caller's n string buffers. Missing buffers become
// zero-capacity slots.
func textSlots(strs **C.char, n int, size C.size_t) [][]byte {
	ptrs := cSlice[*C.char](unsafe.Pointer(strs), n)
	if ptrs == nil {
		return nil
	}
	slots := make([][]byte, n)
	for i, p := range ptrs {
		slots[i] = cSlice[byte](unsafe.Pointer(p), int(size))
	}
	return slots
}

func timingSlots(times *C.double, size *C.size_t) []float64 {
	present := times != nil && size != nil
	var buf []float64
	if present {
		buf = cSlice[float64](unsafe.Pointer(times), int(*size))
	}
	return visionocr.TimingDest(buf, present)
}
