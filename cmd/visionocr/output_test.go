package main

import (
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/visionocr/internal/codec"
	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/engine"
	"github.com/ivlev/visionocr/pkg/visionocr"
)

func sampleOutput() *visionocr.Output {
	out := visionocr.NewOutput(2, 32)
	copy(out.Boxes, []int32{8, 37, 74, 37, 74, 53, 8, 53})
	visionocr.WriteText(out.Texts[0], "HELLO 123")
	out.Scores[0] = 0.975
	out.Count = 1
	copy(out.Timings, []float64{0.5, 1.25, 3})
	copy(out.Stages, []engine.Stage{engine.StageDecode, engine.StageDetect, engine.StageRecognize})
	out.TimingCount = 3
	return out
}

func TestFormatRegion(t *testing.T) {
	got := formatRegion(0, sampleOutput())
	want := "0\tdet boxes: [[8,37],[74,37],[74,53],[8,53]] rec text: HELLO 123 rec score: 0.975"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestFormatTimings(t *testing.T) {
	if got := formatTimings(sampleOutput()); got != "times: decode=0.50ms detect=1.25ms recognize=3.00ms" {
		t.Errorf("got %q", got)
	}
}

func TestTimingsFollowExecutedStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	err := os.WriteFile(path, []byte("profiles:\n  NoCls:\n    no_cls: true\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	h, err := visionocr.New(config.Options{Profile: "NoCls", ProfilesFile: path, LogLevel: "off"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer visionocr.Destroy(h)

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	data, err := codec.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}

	out := visionocr.NewOutput(4, 16)
	if st := h.RunSystem(data, true, out); st != visionocr.Success {
		t.Fatalf("status = %v", st)
	}

	line := formatTimings(out)
	t.Logf("%s", line)
	if strings.Contains(line, "classify") || !strings.Contains(line, "recognize=") {
		t.Errorf("timings line = %q, want decode, detect and recognize only", line)
	}

	r := buildReport("blank.png", "NoCls", []pageResult{{name: "blank.png", status: visionocr.Success, out: out}})
	var stages []string
	for _, tm := range r.Pages[0].Timings {
		stages = append(stages, tm.Stage)
	}
	if !reflect.DeepEqual(stages, []string{"decode", "detect", "recognize"}) {
		t.Errorf("report stages = %v", stages)
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		profile string
		file    string
		ok      bool
	}{
		{[]string{"a.png"}, config.DefaultProfile, "a.png", true},
		{[]string{"PaddleCharOCR", "a.png"}, "PaddleCharOCR", "a.png", true},
		{nil, "", "", false},
		{[]string{"a", "b", "c"}, "", "", false},
	}
	for _, tt := range tests {
		profile, file, ok := parseArgs(tt.args)
		if profile != tt.profile || file != tt.file || ok != tt.ok {
			t.Errorf("parseArgs(%q) = %q, %q, %v", tt.args, profile, file, ok)
		}
	}
}

func TestBuildReport(t *testing.T) {
	results := []pageResult{
		{name: "a.png", status: visionocr.Success, out: sampleOutput()},
		{name: "b.png", status: visionocr.Failure},
	}
	r := buildReport("dir", config.DefaultProfile, results)

	if len(r.Pages) != 2 {
		t.Fatalf("pages = %d", len(r.Pages))
	}
	p := r.Pages[0]
	if p.Status != "SUCCESS" || len(p.Regions) != 1 || p.Regions[0].Text != "HELLO 123" || p.Regions[0].Score != 0.975 {
		t.Errorf("page 1 = %+v", p)
	}
	if len(p.Timings) != 3 || p.Timings[2].Stage != "recognize" {
		t.Errorf("timings = %+v", p.Timings)
	}
	if r.Pages[1].Status != "FAILURE" || r.Pages[1].Regions != nil {
		t.Errorf("page 2 = %+v", r.Pages[1])
	}
	if _, err := time.Parse(time.RFC3339, r.Created); err != nil {
		t.Errorf("created = %q: %v", r.Created, err)
	}
}

func TestReportPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	if got, err := reportPath("out.yaml", "scan.png", dir); err != nil || got != "out.yaml" {
		t.Errorf("explicit path = %q, %v", got, err)
	}

	got, err := reportPath("auto", "scan.png", dir)
	if err != nil {
		t.Fatalf("auto path: %v", err)
	}
	if filepath.Dir(got) != dir || !strings.HasPrefix(filepath.Base(got), "scan_") {
		t.Errorf("auto path = %q", got)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("report directory not created: %v", err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := reportPath("auto", "scan.png", blocker); err == nil {
		t.Error("expected error when the report directory is a file")
	}
}
