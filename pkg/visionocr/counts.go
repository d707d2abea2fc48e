package visionocr

// TimingDest picks the timing destination for a caller that passes a buffer
// together with an in/out count. When either is missing the result is nil,
// so nothing is written and the count stays as it was. A present buffer of
// zero entries still receives a count of 0.
func TimingDest(buf []float64, present bool) []float64 {
	if !present {
		return nil
	}
	if buf == nil {
		return []float64{}
	}
	return buf
}

// Counts returns what a caller's in/out count arguments hold after a call
// that was given size regions and timesSize timings. On success they become
// the written counts; timesSize is kept when no timing destination was
// given. On failure both are returned unchanged.
func Counts(st Status, out *Output, size, timesSize int) (int, int) {
	if st != Success || out == nil {
		return size, timesSize
	}
	if out.Timings != nil {
		timesSize = out.TimingCount
	}
	return out.Count, timesSize
}
