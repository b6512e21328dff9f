package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/fonts"
	"github.com/ByLCY/inkverse/layout"
	"github.com/ByLCY/inkverse/logging"
	"github.com/ByLCY/inkverse/renderer"
)

// Format 选择预览输出格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// Renderer draws scenes via github.com/tdewolff/canvas for previewing a profile
// outside the panel. One scene pixel maps to one canvas unit (mm), so the
// output keeps the panel's proportions.
type Renderer struct {
	baseDir string
	format  Format
	scale   float64 // PNG 输出时每个场景像素对应的位图像素
	logger  *slog.Logger

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  Format
	Scale   float64
	Logger  *slog.Logger
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving fonts.
func NewRenderer(baseDir string) *Renderer {
	return NewRendererWithOptions(Options{BaseDir: baseDir})
}

// NewRendererWithOptions creates a renderer with the given output format.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	opts.Logger = logging.OrDiscard(opts.Logger)
	return &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		scale:        opts.Scale,
		logger:       opts.Logger,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// Render renders the scene into PDF or PNG bytes.
func (r *Renderer) Render(scene *layout.Scene) ([]byte, error) {
	if scene == nil {
		return nil, fmt.Errorf("渲染场景为空")
	}
	w, h := float64(scene.Width), float64(scene.Height)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawScene(ctx, scene); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.format {
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(r.scale), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	case FormatPDF:
		writer := pdf.New(&buf, w, h, nil)
		writer.SetInfo(scene.Meta.Title, scene.Meta.Reference, "", "", "inkverse")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的预览格式：%s", r.format)
	}
	return buf.Bytes(), nil
}

// Face 实现 layout.Face：宽度与高度单位都是场景像素。
type Face struct {
	face *canvas.FontFace
}

// Measure implements layout.Face.
func (f *Face) Measure(text string) (int, int) {
	m := f.face.Metrics()
	return int(math.Ceil(f.face.TextWidth(text))), int(math.Ceil(m.Ascent + math.Abs(m.Descent)))
}

// Ascent implements layout.Face.
func (f *Face) Ascent() int { return int(math.Ceil(f.face.Metrics().Ascent)) }

// Face 实现 layout.Typesetter 接口。
func (r *Renderer) Face(font layout.FontResource) (layout.Face, error) {
	face, err := r.fontFace(font, layout.Color{})
	if err != nil {
		return nil, err
	}
	return &Face{face: face}, nil
}

func (r *Renderer) drawScene(ctx *canvas.Context, scene *layout.Scene) error {
	ctx.SetFillColor(colorFromLayout(scene.Background))
	ctx.DrawPath(0, 0, canvas.Rectangle(float64(scene.Width), float64(scene.Height)))

	for i, op := range scene.Ops {
		switch op.Kind {
		case layout.OpText:
			font, ok := scene.Resources.Fonts[op.Font]
			if !ok {
				return &fonts.FontError{Src: op.Font, Err: fmt.Errorf("操作 %d 引用了未定义的字体", i)}
			}
			face, err := r.fontFace(font, op.Color)
			if err != nil {
				return err
			}
			// 基线位置：行顶加字体上升部
			baseline := float64(op.Y) + face.Metrics().Ascent
			ctx.DrawText(float64(op.X), baseline, canvas.NewTextLine(face, op.Text, canvas.Left))
		case layout.OpImage:
			el := scene.Assets[op.Image]
			if el == nil {
				r.logger.Warn("image operation skipped, asset not loaded", "image", op.Image)
				continue
			}
			ctx.DrawImage(float64(op.X), float64(op.Y), previewImage(el, op.Paste), canvas.DPMM(1))
		}
	}
	return nil
}

// previewImage 对整块粘贴的图片去掉透明度，与面板上的效果保持一致。
func previewImage(el *assets.Element, paste layout.PasteMode) image.Image {
	if paste != layout.PasteOpaque {
		return el.Image
	}
	out := image.NewNRGBA(el.Image.Bounds())
	copy(out.Pix, el.Image.Pix)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

func (r *Renderer) fontFace(font layout.FontResource, col layout.Color) (*canvas.FontFace, error) {
	if font.Size <= 0 {
		return nil, &fonts.FontError{Src: font.Src, Err: fmt.Errorf("字号无效：%g", font.Size)}
	}
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	// 场景像素即 canvas 的 mm 单位，字号需要换算成 pt。
	return family.Face(font.Size*layout.MmToPt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := font.Src + "|" + font.Fallback
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(font.Name)
	err := r.loadFontIntoFamily(family, font.Src)
	if err != nil && font.Fallback != "" {
		r.logger.Warn("font unavailable, using fallback", "font", font.Name, "src", font.Src, "fallback", font.Fallback, "error", err)
		err = r.loadFontIntoFamily(family, font.Fallback)
	}
	if err != nil {
		return nil, err
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string) error {
	data, err := fonts.Load(src, r.baseDir)
	if err != nil {
		return err
	}
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return &fonts.FontError{Src: src, Err: err}
	}
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
