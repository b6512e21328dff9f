package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadShrinksKeepingAspect(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 60))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	writePNG(t, filepath.Join(dir, "flag.png"), img)

	el, err := NewLoader(dir, nil).Load("flag", "flag.png", image.Pt(60, 40))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if el.Width() != 60 || el.Height() != 30 {
		t.Fatalf("expected 60x30, got %dx%d", el.Width(), el.Height())
	}
}

func TestLoadNeverEnlarges(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dot.png"), image.NewNRGBA(image.Rect(0, 0, 10, 8)))

	el, err := NewLoader(dir, nil).Load("dot", "dot.png", image.Pt(50, 50))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if el.Size() != image.Pt(10, 8) {
		t.Fatalf("expected original size, got %v", el.Size())
	}
}

func TestMaskFollowsTransparency(t *testing.T) {
	rgba := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	rgba.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	el := FromImage("dove", rgba, image.Point{})
	if el.Mask == nil {
		t.Fatalf("expected mask for translucent image")
	}
	if el.Mask.AlphaAt(1, 1).A != 255 || el.Mask.AlphaAt(0, 0).A != 0 {
		t.Fatalf("unexpected mask values")
	}

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	if el := FromImage("plain", gray, image.Point{}); el.Mask != nil {
		t.Fatalf("opaque image must not carry a mask")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir, nil)
	for _, src := range []string{"", "missing.png", "broken.png"} {
		_, err := l.Load("x", src, image.Pt(10, 10))
		var ae *AssetError
		if !errors.As(err, &ae) || !errors.Is(err, ErrAsset) {
			t.Fatalf("%q: expected AssetError, got %v", src, err)
		}
		if ae.Src != src {
			t.Fatalf("%q: error should name the configured source, got %q", src, ae.Src)
		}
	}
	if _, err := Decode("x", bytes.NewReader(nil), image.Point{}); !errors.Is(err, ErrAsset) {
		t.Fatalf("expected AssetError from Decode, got %v", err)
	}
}
