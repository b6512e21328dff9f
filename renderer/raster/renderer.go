package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/ByLCY/inkverse/fonts"
	"github.com/ByLCY/inkverse/layout"
	"github.com/ByLCY/inkverse/logging"
	"github.com/ByLCY/inkverse/palette"
	"github.com/ByLCY/inkverse/renderer"
)

// Renderer draws scenes onto a paletted canvas and measures text with the same
// faces it draws with.
type Renderer struct {
	baseDir string
	logger  *slog.Logger

	fontMu sync.Mutex
	parsed map[string]*opentype.Font // by src
	faces  map[faceKey]*Face
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	src, fallback string
	size          float64
}

// NewRenderer creates a renderer that resolves font paths against baseDir.
func NewRenderer(baseDir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		baseDir: baseDir,
		logger:  logging.OrDiscard(logger),
		parsed:  map[string]*opentype.Font{},
		faces:   map[faceKey]*Face{},
	}
}

// Face 包装 x/image 字体面，实现 layout.Face。
type Face struct {
	face   font.Face
	ascent int
}

// Measure returns the advance width and the distance from the top of the line
// box to the lowest ink of text.
func (f *Face) Measure(text string) (int, int) {
	bounds, advance := font.BoundString(f.face, text)
	bottom := bounds.Max.Y.Ceil()
	if bottom < 0 {
		bottom = 0
	}
	return advance.Ceil(), f.ascent + bottom
}

// Ascent implements layout.Face.
func (f *Face) Ascent() int { return f.ascent }

// FontFace exposes the underlying face for drawing.
func (f *Face) FontFace() font.Face { return f.face }

// Face implements layout.Typesetter. Faces are cached per source and size.
func (r *Renderer) Face(res layout.FontResource) (layout.Face, error) {
	return r.face(res)
}

func (r *Renderer) face(res layout.FontResource) (*Face, error) {
	if res.Size <= 0 {
		return nil, &fonts.FontError{Src: res.Src, Err: fmt.Errorf("字号无效：%g", res.Size)}
	}
	key := faceKey{src: res.Src, fallback: res.Fallback, size: res.Size}

	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	otf, err := r.parse(res.Src)
	if err != nil && res.Fallback != "" {
		r.logger.Warn("font unavailable, using fallback", "font", res.Name, "src", res.Src, "fallback", res.Fallback, "error", err)
		otf, err = r.parse(res.Fallback)
	}
	if err != nil {
		return nil, err
	}
	ff, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    res.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &fonts.FontError{Src: res.Src, Err: err}
	}
	f := &Face{face: ff, ascent: ff.Metrics().Ascent.Ceil()}
	r.faces[key] = f
	return f, nil
}

// parse must be called with fontMu held.
func (r *Renderer) parse(src string) (*opentype.Font, error) {
	if otf, ok := r.parsed[src]; ok {
		return otf, nil
	}
	data, err := fonts.Load(src, r.baseDir)
	if err != nil {
		return nil, err
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, &fonts.FontError{Src: src, Err: err}
	}
	r.parsed[src] = otf
	return otf, nil
}

// Compose executes the scene's operations in order and returns the finalized
// frame. Image operations whose asset is missing are skipped.
func (r *Renderer) Compose(scene *layout.Scene) (*image.Paletted, error) {
	if scene == nil {
		return nil, fmt.Errorf("渲染场景为空")
	}
	pal, ok := palette.ByName(scene.Palette)
	if !ok {
		return nil, fmt.Errorf("未知调色板：%s", scene.Palette)
	}

	c := NewCanvas(scene.Width, scene.Height, pal)
	c.FillBackground(scene.Background.NRGBA())
	for i, op := range scene.Ops {
		pt := image.Pt(op.X, op.Y)
		switch op.Kind {
		case layout.OpText:
			res, ok := scene.Resources.Fonts[op.Font]
			if !ok {
				return nil, &fonts.FontError{Src: op.Font, Err: fmt.Errorf("操作 %d 引用了未定义的字体", i)}
			}
			f, err := r.face(res)
			if err != nil {
				return nil, err
			}
			c.DrawText(pt, op.Text, op.Color.NRGBA(), f.face)
		case layout.OpImage:
			el := scene.Assets[op.Image]
			if el == nil {
				r.logger.Warn("image operation skipped, asset not loaded", "image", op.Image)
				continue
			}
			if op.Paste == layout.PasteOpaque {
				c.PasteOpaque(pt, el)
			} else {
				c.PasteMasked(pt, el)
			}
		}
	}
	return c.Finalize()
}

// Render composes the scene and encodes it as a paletted PNG.
func (r *Renderer) Render(scene *layout.Scene) ([]byte, error) {
	frame, err := r.Compose(scene)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
