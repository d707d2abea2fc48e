package source

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
)

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	names := []string{"b.png", "a.PNG", "c.txt", "d.webp"}
	for _, n := range names {
		data, err := qrcode.Encode(n, qrcode.Medium, 64)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, n), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	os.Mkdir(filepath.Join(dir, "sub.png"), 0755)

	src, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 3 {
		t.Fatalf("pages = %d, want 3", src.PageCount())
	}
	want := []string{"a.PNG", "b.png", "d.webp"}
	for i, w := range want {
		if got := src.PageName(i); got != w {
			t.Errorf("page %d = %s, want %s", i, got, w)
		}
	}

	data, err := src.PageBytes(1)
	if err != nil {
		t.Fatal(err)
	}
	onDisk, _ := os.ReadFile(filepath.Join(dir, "b.png"))
	if !bytes.Equal(data, onDisk) {
		t.Error("image bytes should be served unchanged")
	}
	if _, err := src.PageBytes(3); err == nil {
		t.Error("expected error for an out-of-range page")
	}
}

func TestImageSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.png")
	if err := qrcode.WriteFile("one", qrcode.Low, 32, path); err != nil {
		t.Fatal(err)
	}
	src, err := NewImageSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if src.PageCount() != 1 || src.PageName(0) != "one.png" {
		t.Errorf("count = %d name = %s", src.PageCount(), src.PageName(0))
	}

	if _, err := NewImageSource(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFitzPDFSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	pdf := fpdf.New("P", "pt", "", "")
	for _, s := range []string{"first page", "second page"} {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: 144, Ht: 72})
		pdf.SetFont("Helvetica", "", 24)
		pdf.Text(10, 40, s)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := Open(path, 144)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 2 {
		t.Fatalf("pages = %d, want 2", src.PageCount())
	}
	if src.PageName(1) != "doc.pdf#2" {
		t.Errorf("name = %s", src.PageName(1))
	}

	data, err := src.PageBytes(0)
	if err != nil {
		t.Fatalf("PageBytes failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("page is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 288 || b.Dy() != 144 {
		t.Errorf("rendered size = %v, want 288x144 at 144 dpi", b.Size())
	}
}
