package analyzer

import (
	"fmt"

	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/system"
)

// NewDetector creates a detector for the backend named in the manifest
func NewDetector(m config.DetManifest, scratch *system.GrayPool) (Detector, error) {
	switch m.Backend {
	case "contrast", "":
		d := NewContrastDetector()
		if m.BinaryThresh > 0 {
			d.BinaryThresh = m.BinaryThresh
		}
		if m.MergeGap > 0 {
			d.MergeGap = m.MergeGap
		}
		if m.MinArea > 0 {
			d.MinArea = m.MinArea
		}
		if m.RowTolerance > 0 {
			d.RowTolerance = m.RowTolerance
		}
		d.Padding = m.Padding
		d.Invert = m.Invert
		d.Scratch = scratch
		return d, nil
	default:
		return nil, fmt.Errorf("unknown detector backend: %s", m.Backend)
	}
}
