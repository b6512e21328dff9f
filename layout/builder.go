package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/ByLCY/inkverse/assets"
	"github.com/ByLCY/inkverse/binding"
	"github.com/ByLCY/inkverse/corpus"
	"github.com/ByLCY/inkverse/fonts"
	"github.com/ByLCY/inkverse/logging"
	"github.com/ByLCY/inkverse/palette"
)

// Build 根据显示配置与选中的经文生成场景：背景、按图层顺序排列的绘制操作，
// 以及经文块的居中排版结果。
//
// 字体不可用时返回错误，调用方不应呈现任何画面；图片缺失只会跳过对应图层。
func Build(p *Profile, verse corpus.VersePair, opts BuildOptions) (*Scene, error) {
	if p == nil {
		return nil, fmt.Errorf("layout: 配置为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	pal, ok := palette.ByName(p.Palette)
	if !ok {
		return nil, fmt.Errorf("layout: 未知调色板 %s", p.Palette)
	}
	logger := logging.OrDiscard(opts.Logger)

	bg, err := p.ResolveColor(pal, p.Background)
	if err != nil {
		return nil, err
	}
	border, err := p.ResolveColor(pal, p.Border)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Width:      p.Width,
		Height:     p.Height,
		Palette:    p.Palette,
		Background: bg,
		Border:     border,
		Resources: ResourceSet{
			Fonts:  maps.Clone(p.Fonts),
			Images: maps.Clone(p.Images),
		},
		Meta: SceneMeta{
			Title:     p.Title,
			Reference: verse.Reference,
			Body:      verse.Body,
		},
		Assets: map[string]*assets.Element{},
	}

	b := &sceneBuilder{
		profile: p,
		palette: pal,
		scene:   scene,
		ts:      opts.Typesetter,
		images:  opts.Images,
		data:    bindingData(p, verse, opts.Data),
		logger:  logger,
		faces:   map[string]Face{},
	}
	for i, layer := range p.Layers {
		var err error
		switch layer.Kind {
		case LayerImage:
			err = b.image(layer)
		case LayerText:
			err = b.text(layer)
		case LayerVerse:
			err = b.verse(verse)
		default:
			err = fmt.Errorf("未知图层类型 %q", layer.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("layout: 图层 %d (%s %s): %w", i, layer.Kind, layer.Name, err)
		}
	}
	return scene, nil
}

type sceneBuilder struct {
	profile *Profile
	palette *palette.Palette
	scene   *Scene
	ts      Typesetter
	images  map[string]*assets.Element
	data    map[string]any
	logger  *slog.Logger
	faces   map[string]Face
}

func bindingData(p *Profile, verse corpus.VersePair, extra map[string]any) map[string]any {
	data := map[string]any{}
	maps.Copy(data, extra)
	data["verse"] = verse
	data["profile"] = map[string]any{"name": p.Name, "title": p.Title}
	return data
}

func (b *sceneBuilder) face(name string) (Face, error) {
	if f, ok := b.faces[name]; ok {
		return f, nil
	}
	font, err := resolveFontResource(name, b.profile.Fonts)
	if err != nil {
		return nil, err
	}
	f, err := b.ts.Face(font)
	if err != nil {
		return nil, err
	}
	b.faces[name] = f
	return f, nil
}

// fontName is the declared font a face lookup for name resolves to.
func (b *sceneBuilder) fontName(name string) string {
	if font, err := resolveFontResource(name, b.profile.Fonts); err == nil {
		return font.Name
	}
	return name
}

func (b *sceneBuilder) color(value, fallback string) (Color, error) {
	if value == "" {
		value = fallback
	}
	return b.profile.ResolveColor(b.palette, value)
}

func (b *sceneBuilder) image(layer Layer) error {
	el := b.images[layer.Name]
	if el == nil || el.Image == nil {
		b.logger.Warn("decoration omitted, asset unavailable", "image", layer.Name)
		b.scene.Meta.Omitted = append(b.scene.Meta.Omitted, layer.Name)
		return nil
	}
	w, h := el.Width(), el.Height()
	x, y := anchorPoint(layer, b.scene.Width, b.scene.Height, w, h)
	paste := layer.Paste
	if paste == "" {
		paste = PasteMasked
	}
	b.scene.Assets[layer.Name] = el
	b.scene.Ops = append(b.scene.Ops, Op{
		Kind:   OpImage,
		Role:   "decoration",
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Image:  layer.Name,
		Paste:  paste,
	})
	return nil
}

func (b *sceneBuilder) text(layer Layer) error {
	face, err := b.face(layer.Name)
	if err != nil {
		return err
	}
	col, err := b.color(layer.Color, "foreground")
	if err != nil {
		return err
	}
	content := binding.Interpolate(layer.Text, b.data)
	if strings.TrimSpace(content) == "" {
		return nil
	}
	w, h := face.Measure(content)
	x, y := anchorPoint(layer, b.scene.Width, b.scene.Height, w, h)
	b.scene.Ops = append(b.scene.Ops, Op{
		Kind:   OpText,
		Role:   "decoration",
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Text:   content,
		Font:   b.fontName(layer.Name),
		Color:  col,
	})
	return nil
}

func (b *sceneBuilder) verse(verse corpus.VersePair) error {
	spec := b.profile.Verse
	region := spec.Region
	if region.Empty() {
		region = Region{Width: b.scene.Width, Height: b.scene.Height}
	}
	maxWidth := spec.MaxWidth
	if maxWidth <= 0 {
		maxWidth = region.Width - 2*spec.Padding
	}
	refFace, err := b.face(spec.ReferenceFont)
	if err != nil {
		return err
	}
	bodyFace, err := b.face(spec.BodyFont)
	if err != nil {
		return err
	}
	col, err := b.color(spec.Color, "foreground")
	if err != nil {
		return err
	}

	refBlock := Block{Lines: Wrap(verse.Reference, maxWidth, refFace, spec.Spacing), Face: refFace}
	bodyBlock := Block{Lines: Wrap(verse.Body, maxWidth, bodyFace, spec.Spacing), Face: bodyFace}
	gap := spec.Gap.Pixels(b.profile.DPI, float64(bodyBlock.Lines.LineHeight))

	var blocks []Block
	var roles []string
	var gaps []int
	for i, blk := range []Block{refBlock, bodyBlock} {
		if blk.Lines.Count() == 0 {
			continue
		}
		if len(blocks) > 0 {
			gaps = append(gaps, gap)
		}
		blocks = append(blocks, blk)
		roles = append(roles, [...]string{"reference", "body"}[i])
	}

	start, lines, overflow := PlaceCentered(blocks, region, gaps)
	b.scene.Meta.Region = region
	b.scene.Meta.StartY = start.Y
	b.scene.Meta.TotalHeight = StackHeight(blocks, gaps)
	b.scene.Meta.Overflow = overflow
	if overflow {
		b.logger.Warn("verse overflows text region",
			"reference", verse.Reference,
			"height", b.scene.Meta.TotalHeight,
			"region_height", region.Height,
			"start_y", start.Y)
	}

	fontOf := map[string]string{"reference": b.fontName(spec.ReferenceFont), "body": b.fontName(spec.BodyFont)}
	for _, line := range lines {
		if line.Text == "" {
			continue
		}
		role := roles[line.Block]
		b.scene.Ops = append(b.scene.Ops, Op{
			Kind:   OpText,
			Role:   role,
			X:      line.X,
			Y:      line.Y,
			Width:  line.Width,
			Height: blocks[line.Block].Lines.LineHeight,
			Text:   line.Text,
			Font:   fontOf[role],
			Color:  col,
		})
	}
	return nil
}

// anchorPoint 计算装饰元素左上角：距锚定边缘固定 margin，*-center 水平居中。
func anchorPoint(layer Layer, canvasW, canvasH, w, h int) (int, int) {
	m := layer.Margin
	var x, y int
	switch layer.Anchor {
	case TopCenter, Center, BottomCenter:
		x = floorDiv(canvasW-w, 2)
	case TopRight, BottomRight:
		x = canvasW - w - m
	default:
		x = m
	}
	switch layer.Anchor {
	case BottomLeft, BottomCenter, BottomRight:
		y = canvasH - h - m
	case Center:
		y = floorDiv(canvasH-h, 2)
	default:
		y = m
	}
	return x + layer.OffsetX, y + layer.OffsetY
}

func resolveFontResource(name string, declared map[string]FontResource) (FontResource, error) {
	if font, ok := declared[name]; ok {
		return font, nil
	}
	if font, ok := declared["Body"]; ok {
		return font, nil
	}
	return FontResource{}, &fonts.FontError{Src: name, Err: errors.New("字体未定义，且没有可用的默认字体")}
}
