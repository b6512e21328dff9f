// Package raster composites a layout scene onto a paletted e-paper frame.
package raster

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/palette"
)

// ErrFinalized is returned by a second Finalize on the same canvas.
var ErrFinalized = errors.New("raster: canvas already finalized")

// coverageThreshold 以上的字形覆盖率才着色，文字不做抗锯齿混合。
const coverageThreshold = 0x80

// Canvas 是单次渲染独占的调色板画布。所有操作按调用顺序生效，越界部分静默裁剪；
// Finalize 之后的任何修改都会被忽略。
type Canvas struct {
	img       *image.Paletted
	pal       *palette.Palette
	finalized bool
}

// NewCanvas creates a w×h canvas filled with palette index 0.
func NewCanvas(w, h int, pal *palette.Palette) *Canvas {
	if pal == nil {
		pal = palette.Inky7
	}
	return &Canvas{
		img: image.NewPaletted(image.Rect(0, 0, w, h), pal.Colors()),
		pal: pal,
	}
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

// FillBackground paints every pixel with the ink nearest to col.
func (c *Canvas) FillBackground(col color.Color) {
	if c.finalized {
		return
	}
	idx := c.pal.Index(col)
	for i := range c.img.Pix {
		c.img.Pix[i] = idx
	}
}

// DrawText draws text with its line box's top-left corner at pt. Pixels with at
// least half glyph coverage take the ink nearest to col; nothing is blended.
func (c *Canvas) DrawText(pt image.Point, text string, col color.Color, face font.Face) {
	if c.finalized || text == "" || face == nil {
		return
	}
	dot := fixed.Point26_6{
		X: fixed.I(pt.X),
		Y: fixed.I(pt.Y) + face.Metrics().Ascent,
	}
	bounds, _ := font.BoundString(face, text)
	area := image.Rect(
		(dot.X + bounds.Min.X).Floor(),
		(dot.Y + bounds.Min.Y).Floor(),
		(dot.X + bounds.Max.X).Ceil(),
		(dot.Y + bounds.Max.Y).Ceil(),
	).Intersect(c.img.Rect)
	if area.Empty() {
		return
	}

	mask := image.NewAlpha(area)
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: dot}
	d.DrawString(text)

	idx := c.pal.Index(col)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if mask.AlphaAt(x, y).A >= coverageThreshold {
				c.img.SetColorIndex(x, y, idx)
			}
		}
	}
}

// PasteOpaque copies every pixel of el to pt, ignoring transparency.
func (c *Canvas) PasteOpaque(pt image.Point, el *assets.Element) {
	c.paste(pt, el, false)
}

// PasteMasked copies only the pixels of el whose mask alpha is non-zero. An
// element without a mask is pasted whole.
func (c *Canvas) PasteMasked(pt image.Point, el *assets.Element) {
	c.paste(pt, el, true)
}

func (c *Canvas) paste(pt image.Point, el *assets.Element, masked bool) {
	if c.finalized || el == nil || el.Image == nil {
		return
	}
	src := el.Image.Bounds()
	dst := image.Rectangle{Min: pt, Max: pt.Add(src.Size())}.Intersect(c.img.Rect)
	if dst.Empty() {
		return
	}
	offset := src.Min.Sub(pt)
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			sx, sy := x+offset.X, y+offset.Y
			if masked && el.Mask != nil && el.Mask.AlphaAt(sx, sy).A == 0 {
				continue
			}
			c.img.SetColorIndex(x, y, c.pal.Index(el.Image.NRGBAAt(sx, sy)))
		}
	}
}

// Finalize hands the frame over. The canvas must not be reused afterwards.
func (c *Canvas) Finalize() (*image.Paletted, error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	c.finalized = true
	return c.img, nil
}
