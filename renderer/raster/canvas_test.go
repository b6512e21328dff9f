package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/palette"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

func countIndex(img *image.Paletted, r image.Rectangle, idx uint8) int {
	n := 0
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.ColorIndexAt(x, y) == idx {
				n++
			}
		}
	}
	return n
}

func TestFillBackground(t *testing.T) {
	c := NewCanvas(20, 10, palette.Inky7)
	c.FillBackground(white)
	img, err := c.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	idx := palette.Inky7.Index(white)
	if got := countIndex(img, img.Rect, idx); got != 200 {
		t.Fatalf("expected all 200 pixels white, got %d", got)
	}
}

func TestDrawTextIsOpaqueAndClipped(t *testing.T) {
	c := NewCanvas(60, 20, palette.Inky7)
	c.FillBackground(white)
	c.DrawText(image.Pt(2, 2), "Hello", black, basicfont.Face7x13)
	c.DrawText(image.Pt(-10, -8), "clipped", black, basicfont.Face7x13)
	c.DrawText(image.Pt(55, 15), "offscreen", black, basicfont.Face7x13)
	img, _ := c.Finalize()

	bg, fg := palette.Inky7.Index(white), palette.Inky7.Index(black)
	inked := countIndex(img, img.Rect, fg)
	if inked == 0 {
		t.Fatalf("expected glyph pixels")
	}
	if inked+countIndex(img, img.Rect, bg) != 60*20 {
		t.Fatalf("text must not blend into intermediate inks")
	}
}

func TestPasteMaskedHonoursMask(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 0 // red, fully transparent
	}
	src.SetNRGBA(1, 1, red)
	src.SetNRGBA(2, 2, red)
	el := assets.FromImage("dot", src, image.Point{})

	c := NewCanvas(10, 10, palette.Inky7)
	c.FillBackground(white)
	c.PasteMasked(image.Pt(3, 3), el)
	img, _ := c.Finalize()

	redIdx := palette.Inky7.Index(red)
	if got := countIndex(img, img.Rect, redIdx); got != 2 {
		t.Fatalf("expected exactly the 2 opaque pixels, got %d", got)
	}
	if img.ColorIndexAt(4, 4) != redIdx || img.ColorIndexAt(5, 5) != redIdx {
		t.Fatalf("masked pixels landed in the wrong place")
	}
}

func TestPasteOpaqueIgnoresAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	src.SetNRGBA(0, 0, red)
	el := assets.FromImage("block", src, image.Point{})

	c := NewCanvas(10, 10, palette.Inky7)
	c.FillBackground(white)
	c.PasteOpaque(image.Pt(8, 8), el) // partly off-canvas
	img, _ := c.Finalize()

	// 透明像素 (0,0,0,0) 也会被写入，吸附为黑色
	if got := countIndex(img, image.Rect(8, 8, 10, 10), palette.Inky7.Index(black)); got != 3 {
		t.Fatalf("expected 3 black pixels from transparent source, got %d", got)
	}
	if img.ColorIndexAt(8, 8) != palette.Inky7.Index(red) {
		t.Fatalf("expected red at paste origin")
	}
}

func TestPasteWithoutMaskIsWhole(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	el := assets.FromImage("plain", gray, image.Point{})
	c := NewCanvas(4, 4, palette.Mono)
	c.FillBackground(white)
	c.PasteMasked(image.Pt(-1, -1), el)
	img, _ := c.Finalize()
	if got := countIndex(img, img.Rect, palette.Mono.Index(black)); got != 1 {
		t.Fatalf("expected 1 clipped black pixel, got %d", got)
	}
}

func TestFinalizeOnce(t *testing.T) {
	c := NewCanvas(4, 4, palette.Inky7)
	c.FillBackground(white)
	img, err := c.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	c.FillBackground(black)
	c.DrawText(image.Pt(0, 0), "x", black, basicfont.Face7x13)
	if countIndex(img, img.Rect, palette.Inky7.Index(white)) != 16 {
		t.Fatalf("mutations after Finalize must be ignored")
	}
	if _, err := c.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}
}
