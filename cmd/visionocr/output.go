package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ivlev/visionocr/internal/engine"
	"github.com/ivlev/visionocr/internal/report"
	"github.com/ivlev/visionocr/pkg/visionocr"
)

// formatRegion prints region i as
// "i\tdet boxes: [[x,y],[x,y],[x,y],[x,y]] rec text: T rec score: S".
func formatRegion(i int, out *visionocr.Output) string {
	b := out.Boxes[i*visionocr.BoxInts : (i+1)*visionocr.BoxInts]
	return fmt.Sprintf("%d\tdet boxes: [[%d,%d],[%d,%d],[%d,%d],[%d,%d]] rec text: %s rec score: %.6g",
		i, b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], out.Text(i), out.Scores[i])
}

// stageNames returns the names of the stages that actually ran, in the order
// their timings were written.
func stageNames(out *visionocr.Output) []engine.Stage {
	if out.TimingCount <= 0 || len(out.Stages) < out.TimingCount {
		return nil
	}
	return out.Stages[:out.TimingCount]
}

func formatTimings(out *visionocr.Output) string {
	names := stageNames(out)
	parts := make([]string, 0, len(names))
	for i, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.2fms", name, out.Timings[i]))
	}
	return "times: " + strings.Join(parts, " ")
}

func reportRegions(out *visionocr.Output) []report.Region {
	regions := make([]report.Region, out.Count)
	for i := range regions {
		var q report.Quad
		for j := range q {
			q[j] = int(out.Boxes[i*visionocr.BoxInts+j])
		}
		regions[i] = report.Region{Box: q, Text: out.Text(i), Score: round4(float64(out.Scores[i]))}
	}
	return regions
}

func buildReport(input, profile string, results []pageResult) *report.Report {
	r := &report.Report{
		Version: report.Version,
		Input:   input,
		Profile: profile,
		Created: time.Now().UTC().Format(time.RFC3339),
	}
	for i, res := range results {
		page := report.Page{ID: i + 1, Input: res.name, Status: res.status.String()}
		if res.status == visionocr.Success {
			page.Regions = reportRegions(res.out)
			for j, name := range stageNames(res.out) {
				page.Timings = append(page.Timings, report.Timing{Stage: string(name), Millis: round4(res.out.Timings[j])})
			}
		}
		r.Pages = append(r.Pages, page)
	}
	return r
}

// reportPath resolves the -report flag. "auto" places a generated name under
// dir, creating it when needed.
func reportPath(flagValue, input, dir string) (string, error) {
	if flagValue != "auto" {
		return flagValue, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return report.GeneratePath(dir, input), nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
