package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/corpus"
	"github.com/ByLCY/inkverse/fonts"
	"github.com/ByLCY/inkverse/layout"
)

func buildScene(t *testing.T, r *Renderer) *layout.Scene {
	t.Helper()
	flag := image.NewNRGBA(image.Rect(0, 0, 60, 40))
	images := map[string]*assets.Element{"Flag": assets.FromImage("Flag", flag, image.Point{})}
	verse := corpus.VersePair{Reference: "Phil 4:13", Body: "I can do all things through Christ which strengtheneth me."}
	scene, err := layout.Build(layout.DefaultProfile(), verse, layout.BuildOptions{Typesetter: r, Images: images})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return scene
}

func TestFaceMeasuresInScenePixels(t *testing.T) {
	r := NewRenderer(".")
	f, err := r.Face(layout.FontResource{Name: "Body", Src: "builtin:goregular", Size: 24})
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	w, h := f.Measure("Ay")
	// 24px 字号的两个字形，高度应接近字号，宽度不会超过两个 em
	if h < 20 || h > 36 || w <= 0 || w > 48 {
		t.Fatalf("unexpected metrics w=%d h=%d", w, h)
	}
	if f.Ascent() <= 0 || f.Ascent() >= h {
		t.Fatalf("ascent %d should be within line height %d", f.Ascent(), h)
	}
}

func TestFaceErrors(t *testing.T) {
	r := NewRenderer(t.TempDir())
	if _, err := r.Face(layout.FontResource{Name: "Missing", Src: "missing.ttf", Size: 12}); !errors.Is(err, fonts.ErrFont) {
		t.Fatalf("expected font error, got %v", err)
	}
	if _, err := r.Face(layout.FontResource{Name: "Fb", Src: "missing.ttf", Fallback: "builtin:gobold", Size: 12}); err != nil {
		t.Fatalf("fallback should be used: %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer(".")
	data, err := r.Render(buildScene(t, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF output, got %q", data[:min(len(data), 8)])
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewRendererWithOptions(Options{BaseDir: ".", Format: FormatPNG, Scale: 2})
	data, err := r.Render(buildScene(t, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 960 {
		t.Fatalf("expected 1600x960 preview, got %v", b)
	}
}

func TestRenderRejectsNilScene(t *testing.T) {
	if _, err := NewRenderer(".").Render(nil); err == nil {
		t.Fatalf("expected error for nil scene")
	}
}
