package engine

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/visionocr/internal/config"
)

func builtin(t *testing.T, name string) []string {
	t.Helper()
	dict, err := config.BuiltinDictionary(name)
	if err != nil {
		t.Fatal(err)
	}
	return dict
}

func TestTemplateRecognizer(t *testing.T) {
	rec, err := NewTemplateRecognizer(builtin(t, config.DictGeneral), config.RecManifest{})
	if err != nil {
		t.Fatalf("NewTemplateRecognizer failed: %v", err)
	}

	tests := []struct {
		name string
		text string
	}{
		{"upper", "HELLO"},
		{"digits", "2468"},
		{"words", "go fmt"},
		{"punct", "a+b=c;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := textImage(120, 24, map[int]string{16: tt.text})
			got, err := rec.Recognize(img)
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if got.Value != tt.text {
				t.Errorf("got %q, want %q", got.Value, tt.text)
			}
			if math.Abs(got.Score-1) > 1e-9 {
				t.Errorf("score = %.4f, want 1", got.Score)
			}
			t.Logf("%q -> %q (%.3f)", tt.text, got.Value, got.Score)
		})
	}
}

func TestTemplateRecognizerInverted(t *testing.T) {
	rec, err := NewTemplateRecognizer(builtin(t, config.DictAlnum), config.RecManifest{})
	if err != nil {
		t.Fatal(err)
	}
	img := textImage(60, 20, map[int]string{14: "OK7"})
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 255-img.Pix[i], 255-img.Pix[i+1], 255-img.Pix[i+2]
	}

	got, err := rec.Recognize(img)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != "OK7" {
		t.Errorf("got %q, want %q", got.Value, "OK7")
	}
}

func TestTemplateRecognizerEmpty(t *testing.T) {
	rec, err := NewTemplateRecognizer([]string{"a"}, config.RecManifest{})
	if err != nil {
		t.Fatal(err)
	}

	for name, img := range map[string]image.Image{
		"blank": textImage(30, 20, nil),
		"zero":  image.NewGray(image.Rect(0, 0, 0, 0)),
	} {
		got, err := rec.Recognize(img)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Value != "" || got.Score != 0 {
			t.Errorf("%s: got %+v, want empty", name, got)
		}
	}
}

func TestTemplateRecognizerNoGlyphs(t *testing.T) {
	if _, err := NewTemplateRecognizer([]string{"€", "ab", " "}, config.RecManifest{}); err == nil {
		t.Error("expected error for a dictionary without drawable symbols")
	}
}

func TestFlipClassifier(t *testing.T) {
	rec, err := NewTemplateRecognizer(builtin(t, config.DictGeneral), config.RecManifest{})
	if err != nil {
		t.Fatal(err)
	}
	cls := &FlipClassifier{Rec: rec, Thresh: 0.9}
	upright := textImage(80, 20, map[int]string{14: "Text 42"})

	o, err := cls.Classify(upright)
	if err != nil {
		t.Fatal(err)
	}
	if o.Angle != 0 {
		t.Errorf("upright line classified as %d", o.Angle)
	}

	o, err = cls.Classify(Rotate180(upright))
	if err != nil {
		t.Fatal(err)
	}
	if o.Angle != 180 {
		t.Errorf("rotated line classified as %d (score %.3f)", o.Angle, o.Score)
	}

	cls.Thresh = 1.1
	if o, _ := cls.Classify(Rotate180(upright)); o.Angle != 0 {
		t.Errorf("threshold above any score should keep the crop upright, got %d", o.Angle)
	}
}

func TestRotate180(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})

	dst := Rotate180(src)
	if dst.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(2, 1); got.R != 255 {
		t.Errorf("corner pixel not moved: %v", got)
	}
	if got := dst.RGBAAt(0, 0); got.R != 0 {
		t.Errorf("origin should be empty, got %v", got)
	}
}

func TestScaleToHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	if got := ScaleToHeight(img, 40).Bounds(); got != image.Rect(0, 0, 160, 40) {
		t.Errorf("scaled bounds = %v", got)
	}
	if got := ScaleToHeight(img, 8); got != image.Image(img) {
		t.Error("tall enough images should be returned unchanged")
	}
}

func TestCropIntersects(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if got := Crop(img, image.Rect(5, 5, 20, 20)).Bounds(); got != image.Rect(5, 5, 10, 10) {
		t.Errorf("crop bounds = %v", got)
	}
}
