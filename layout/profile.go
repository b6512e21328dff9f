package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/inkverse/dsl"
	"github.com/ByLCY/inkverse/palette"
)

// Anchor 是装饰元素相对画布边缘的定位方式。
type Anchor string

const (
	TopLeft      Anchor = "top-left"
	TopCenter    Anchor = "top-center"
	TopRight     Anchor = "top-right"
	Center       Anchor = "center"
	BottomLeft   Anchor = "bottom-left"
	BottomCenter Anchor = "bottom-center"
	BottomRight  Anchor = "bottom-right"
)

var anchors = map[Anchor]bool{
	TopLeft: true, TopCenter: true, TopRight: true, Center: true,
	BottomLeft: true, BottomCenter: true, BottomRight: true,
}

// LayerKind 区分图层类型。
type LayerKind string

const (
	LayerImage LayerKind = "image"
	LayerText  LayerKind = "text"
	LayerVerse LayerKind = "verse"
)

// Layer 是一个按声明顺序绘制的图层。Name 对 image 指图片资源，对 text 指字体资源。
type Layer struct {
	Kind    LayerKind `json:"kind"`
	Name    string    `json:"name,omitempty"`
	Text    string    `json:"text,omitempty"`
	Anchor  Anchor    `json:"anchor,omitempty"`
	Margin  int       `json:"margin"`
	OffsetX int       `json:"offsetX,omitempty"`
	OffsetY int       `json:"offsetY,omitempty"`
	Color   string    `json:"color,omitempty"` // 颜色角色、调色板名称或 #hex
	Paste   PasteMode `json:"paste,omitempty"`
}

// VerseSpec 描述经文块的区域、字体与间距。
type VerseSpec struct {
	Region        Region `json:"region"`   // 为空时使用整个画布
	MaxWidth      int    `json:"maxWidth"` // 为 0 时取 region 宽度减去两侧 Padding
	Padding       int    `json:"padding"`
	Spacing       int    `json:"spacing"`
	Gap           Length `json:"gap"` // 引用与正文之间的距离，x 表示正文行高的倍数
	ReferenceFont string `json:"referenceFont"`
	BodyFont      string `json:"bodyFont"`
	Color         string `json:"color,omitempty"`
}

// Profile 是一个显示配置：画布、调色板角色、字体、图片以及图层顺序。
type Profile struct {
	Name       string                   `json:"name"`
	Title      string                   `json:"title,omitempty"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	DPI        float64                  `json:"dpi"`
	Palette    string                   `json:"palette"`
	Background string                   `json:"background"`
	Foreground string                   `json:"foreground"`
	Accent     string                   `json:"accent"`
	Border     string                   `json:"border"`
	Colors     map[string]string        `json:"colors,omitempty"` // resources 中声明的具名颜色
	Fonts      map[string]FontResource  `json:"fonts"`
	Images     map[string]ImageResource `json:"images"`
	Verse      VerseSpec                `json:"verse"`
	Layers     []Layer                  `json:"layers"`
}

// DefaultProfile 复刻经典的 Inky 经文画面：左上角旗帜、顶部居中的鸽子、
// 右上角三个十字、居中的经文以及底部的祝福语。
func DefaultProfile() *Profile {
	p := baseProfile()
	p.Name = "classic"
	p.Fonts = map[string]FontResource{
		"Body":     {Name: "Body", Src: "builtin:goregular", Size: 24},
		"Symbols":  {Name: "Symbols", Src: "builtin:gobold", Size: 36},
		"Blessing": {Name: "Blessing", Src: "builtin:gobold", Size: 30},
	}
	p.Images = map[string]ImageResource{
		"Flag": {Name: "Flag", Src: "canada_flag.png", Width: 60, Height: 40},
		"Dove": {Name: "Dove", Src: "dove.png", Width: 50, Height: 50},
	}
	p.Layers = []Layer{
		{Kind: LayerImage, Name: "Flag", Anchor: TopLeft, Margin: 10, Paste: PasteMasked},
		{Kind: LayerImage, Name: "Dove", Anchor: TopCenter, Margin: 10, Paste: PasteOpaque},
		{Kind: LayerText, Name: "Symbols", Text: "†  †  †", Anchor: TopRight, Margin: 10, Color: "foreground"},
		{Kind: LayerVerse},
		{Kind: LayerText, Name: "Blessing", Text: "Have A Blessed Day!!!", Anchor: BottomCenter, Margin: 10, Color: "accent"},
	}
	return p
}

func baseProfile() *Profile {
	return &Profile{
		Width:      800,
		Height:     480,
		DPI:        DefaultDPI,
		Palette:    "inky7",
		Background: "white",
		Foreground: "black",
		Accent:     "green",
		Border:     "white",
		Colors:     map[string]string{},
		Fonts:      map[string]FontResource{},
		Images:     map[string]ImageResource{},
		Verse: VerseSpec{
			Padding:       20,
			Spacing:       DefaultLineSpacing,
			Gap:           Length{Value: 2, Unit: UnitFactor},
			ReferenceFont: "Body",
			BodyFont:      "Body",
		},
	}
}

// ResolveProfile 将 DSL 文档转换为 Profile。未声明的画布属性沿用默认值，
// 图层只来自文档本身。
func ResolveProfile(doc *dsl.Document) (*Profile, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	canvas := doc.Canvas()
	if canvas == nil {
		return nil, fmt.Errorf("文档中缺少 canvas 段落")
	}

	p := baseProfile()
	p.Name = doc.Name
	p.Title = collectTitle(doc)

	if err := applyCanvasSpec(p, canvas.Params); err != nil {
		return nil, err
	}
	if err := collectResources(doc, p); err != nil {
		return nil, err
	}
	if canvas.Block == nil {
		return nil, fmt.Errorf("canvas 段落缺少内容")
	}

	for _, stmt := range canvas.Block.Statements {
		switch {
		case stmt.Assignment != nil:
			if err := applyCanvasAssignment(p, stmt.Assignment); err != nil {
				return nil, err
			}
		case stmt.Command != nil:
			layer, err := parseLayer(p, stmt.Command)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", stmt.Command.Pos, err)
			}
			p.Layers = append(p.Layers, layer)
		}
	}
	return p, p.Validate()
}

// Validate 检查图层引用的资源与颜色是否存在。
func (p *Profile) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("画布尺寸无效：%dx%d", p.Width, p.Height)
	}
	pal, ok := palette.ByName(p.Palette)
	if !ok {
		return fmt.Errorf("未知调色板：%s", p.Palette)
	}
	for _, role := range []string{p.Background, p.Foreground, p.Accent, p.Border} {
		if _, err := p.ResolveColor(pal, role); err != nil {
			return err
		}
	}
	verses := 0
	for i, l := range p.Layers {
		switch l.Kind {
		case LayerImage:
			if _, ok := p.Images[l.Name]; !ok {
				return fmt.Errorf("图层 %d：图片 %s 未定义", i, l.Name)
			}
		case LayerText:
			if _, ok := p.Fonts[l.Name]; !ok {
				return fmt.Errorf("图层 %d：字体 %s 未定义", i, l.Name)
			}
		case LayerVerse:
			verses++
			for _, name := range []string{p.Verse.ReferenceFont, p.Verse.BodyFont} {
				if _, ok := p.Fonts[name]; !ok {
					return fmt.Errorf("经文字体 %s 未定义", name)
				}
			}
		}
		if l.Color != "" {
			if _, err := p.ResolveColor(pal, l.Color); err != nil {
				return fmt.Errorf("图层 %d：%w", i, err)
			}
		}
	}
	if verses > 1 {
		return fmt.Errorf("只允许一个 verse 图层，实际 %d 个", verses)
	}
	return nil
}

// ResolveColor 将颜色角色（background/foreground/accent/border）、resources 中的
// 具名颜色、调色板名称或 #hex 解析为调色板中的颜色。
func (p *Profile) ResolveColor(pal *palette.Palette, value string) (Color, error) {
	v := strings.TrimSpace(value)
	for depth := 0; depth < 4; depth++ {
		switch strings.ToLower(v) {
		case "background":
			v = p.Background
			continue
		case "foreground":
			v = p.Foreground
			continue
		case "accent":
			v = p.Accent
			continue
		case "border":
			v = p.Border
			continue
		}
		if named, ok := p.Colors[v]; ok {
			v = named
			continue
		}
		break
	}
	c, err := pal.Resolve(v)
	if err != nil {
		return Color{}, fmt.Errorf("颜色 %q 无法解析: %w", value, err)
	}
	return colorOf(c), nil
}

func collectTitle(doc *dsl.Document) string {
	for key, val := range doc.Meta() {
		if strings.EqualFold(key, "title") {
			return val
		}
	}
	return ""
}

// applyCanvasSpec 解析 `canvas 800 480 palette inky7 dpi 127` 形式的参数。
func applyCanvasSpec(p *Profile, params []*dsl.Arg) error {
	dims := 0
	for i := 0; i < len(params); i++ {
		tok := params[i]
		if tok.Type == "Number" && dims < 2 {
			n, err := strconv.Atoi(strings.TrimSuffix(tok.Value, "px"))
			if err != nil || n <= 0 {
				return fmt.Errorf("画布尺寸无效：%s", tok.Value)
			}
			if dims == 0 {
				p.Width = n
			} else {
				p.Height = n
			}
			dims++
			continue
		}
		if i+1 >= len(params) {
			return fmt.Errorf("canvas 参数 %s 缺少取值", tok.Value)
		}
		val := params[i+1].Value
		switch strings.ToLower(tok.Value) {
		case "palette":
			p.Palette = val
		case "dpi":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("dpi 无效：%s", val)
			}
			p.DPI = f
		case "border":
			p.Border = val
		default:
			return fmt.Errorf("未知的 canvas 参数：%s", tok.Value)
		}
		i++
	}
	if dims == 1 {
		return fmt.Errorf("canvas 需要同时给出宽和高")
	}
	return nil
}

func applyCanvasAssignment(p *Profile, a *dsl.Assignment) error {
	val := a.Value.Text()
	switch strings.ToLower(a.Key) {
	case "background":
		p.Background = val
	case "foreground":
		p.Foreground = val
	case "accent":
		p.Accent = val
	case "border":
		p.Border = val
	default:
		return fmt.Errorf("未知的 canvas 属性：%s", a.Key)
	}
	return nil
}

func collectResources(doc *dsl.Document, p *Profile) error {
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, cmd := range section.Resources.Block.Commands() {
			switch cmd.Name {
			case "font":
				font, err := parseFontResource(cmd, p.DPI)
				if err != nil {
					return err
				}
				p.Fonts[font.Name] = font
			case "image":
				img, err := parseImageResource(cmd, p.DPI)
				if err != nil {
					return err
				}
				p.Images[img.Name] = img
			case "color":
				name, value := parseColorResource(cmd)
				if name == "" || value == "" {
					return fmt.Errorf("%s: color 需要名称与取值", cmd.Pos)
				}
				p.Colors[name] = value
			}
		}
	}
	if _, ok := p.Fonts["Body"]; !ok {
		p.Fonts["Body"] = FontResource{Name: "Body", Src: "builtin:goregular", Size: 24}
	}
	return nil
}

func parseFontResource(cmd *dsl.Command, dpi float64) (FontResource, error) {
	if len(cmd.Args) == 0 {
		return FontResource{}, fmt.Errorf("%s: font 缺少名称", cmd.Pos)
	}
	font := FontResource{Name: cmd.Args[0].Value, Size: 24}
	if cmd.Block == nil {
		return font, fmt.Errorf("%s: font %s 缺少 src", cmd.Pos, font.Name)
	}
	for _, a := range cmd.Block.Assignments() {
		switch a.Key {
		case "src":
			font.Src = a.Value.Text()
		case "fallback":
			font.Fallback = a.Value.Text()
		case "size":
			l, ok := parseLength(a.Value.Text())
			if !ok || l.Relative() || l.Value <= 0 {
				return font, fmt.Errorf("%s: font %s 字号无效", cmd.Pos, font.Name)
			}
			font.Size = l.Float(dpi, 0)
		}
	}
	if font.Src == "" {
		return font, fmt.Errorf("%s: font %s 缺少 src", cmd.Pos, font.Name)
	}
	return font, nil
}

func parseImageResource(cmd *dsl.Command, dpi float64) (ImageResource, error) {
	if len(cmd.Args) == 0 {
		return ImageResource{}, fmt.Errorf("%s: image 缺少名称", cmd.Pos)
	}
	image := ImageResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return image, fmt.Errorf("%s: image %s 缺少 src", cmd.Pos, image.Name)
	}
	for _, a := range cmd.Block.Assignments() {
		switch a.Key {
		case "src":
			image.Src = a.Value.Text()
		case "width":
			if l, ok := parseLength(a.Value.Text()); ok {
				image.Width = l.Pixels(dpi, 0)
			}
		case "height":
			if l, ok := parseLength(a.Value.Text()); ok {
				image.Height = l.Pixels(dpi, 0)
			}
		}
	}
	if image.Src == "" {
		return image, fmt.Errorf("%s: image %s 缺少 src", cmd.Pos, image.Name)
	}
	return image, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

// parseLayer 解析画布中的图层命令：
//
//	image Flag top-left margin 10 [offset 0 4] [masked|opaque]
//	text Symbols top-right margin 10 [color accent] { "†  †  †" }
//	verse [region x y w h] [width 760] [padding 20] [spacing 5] [gap 2x] [color c] { reference: Body  body: Body }
func parseLayer(p *Profile, cmd *dsl.Command) (Layer, error) {
	kind := LayerKind(strings.ToLower(cmd.Name))
	switch kind {
	case LayerImage, LayerText:
	case LayerVerse:
		return Layer{Kind: LayerVerse}, parseVerse(p, cmd)
	default:
		return Layer{}, fmt.Errorf("未知图层：%s", cmd.Name)
	}
	if len(cmd.Args) == 0 {
		return Layer{}, fmt.Errorf("%s 图层缺少资源名", kind)
	}

	layer := Layer{Kind: kind, Name: cmd.Args[0].Value, Anchor: TopLeft}
	if kind == LayerImage {
		layer.Paste = PasteMasked
	} else {
		layer.Color = "foreground"
		layer.Text = cmd.Block.Text()
	}

	args := cmd.Args[1:]
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i].Value)
		switch {
		case anchors[Anchor(key)]:
			layer.Anchor = Anchor(key)
		case key == string(PasteMasked) || key == string(PasteOpaque):
			if kind != LayerImage {
				return layer, fmt.Errorf("%s 只适用于 image 图层", key)
			}
			layer.Paste = PasteMode(key)
		case key == "margin":
			n, err := intArg(args, i+1, p.DPI)
			if err != nil {
				return layer, err
			}
			layer.Margin = n
			i++
		case key == "offset":
			dx, err := intArg(args, i+1, p.DPI)
			if err != nil {
				return layer, err
			}
			dy, err := intArg(args, i+2, p.DPI)
			if err != nil {
				return layer, err
			}
			layer.OffsetX, layer.OffsetY = dx, dy
			i += 2
		case key == "color":
			if i+1 >= len(args) {
				return layer, fmt.Errorf("color 缺少取值")
			}
			layer.Color = args[i+1].Value
			i++
		default:
			return layer, fmt.Errorf("未知的图层参数：%s", args[i].Value)
		}
	}
	return layer, nil
}

func parseVerse(p *Profile, cmd *dsl.Command) error {
	v := &p.Verse
	args := cmd.Args
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i].Value)
		var err error
		switch key {
		case "region":
			var vals [4]int
			for j := range vals {
				if vals[j], err = intArg(args, i+1+j, p.DPI); err != nil {
					return err
				}
			}
			v.Region = Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
			i += 4
		case "width":
			v.MaxWidth, err = intArg(args, i+1, p.DPI)
			i++
		case "padding":
			v.Padding, err = intArg(args, i+1, p.DPI)
			i++
		case "spacing":
			v.Spacing, err = intArg(args, i+1, p.DPI)
			i++
		case "gap":
			if i+1 >= len(args) {
				return fmt.Errorf("gap 缺少取值")
			}
			l, ok := parseLength(args[i+1].Value)
			if !ok || l.Unit == UnitPercent {
				return fmt.Errorf("gap 无效：%s", args[i+1].Value)
			}
			v.Gap = l
			i++
		case "color":
			if i+1 >= len(args) {
				return fmt.Errorf("color 缺少取值")
			}
			v.Color = args[i+1].Value
			i++
		default:
			return fmt.Errorf("未知的 verse 参数：%s", args[i].Value)
		}
		if err != nil {
			return err
		}
	}
	if cmd.Block == nil {
		return nil
	}
	for _, a := range cmd.Block.Assignments() {
		switch strings.ToLower(a.Key) {
		case "reference":
			v.ReferenceFont = a.Value.Text()
		case "body":
			v.BodyFont = a.Value.Text()
		case "font":
			v.ReferenceFont = a.Value.Text()
			v.BodyFont = v.ReferenceFont
		}
	}
	return nil
}

func intArg(args []*dsl.Arg, i int, dpi float64) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("参数缺少数值")
	}
	l, ok := parseLength(args[i].Value)
	if !ok || l.Relative() {
		return 0, fmt.Errorf("无效的数值：%s", args[i].Value)
	}
	return l.Pixels(dpi, 0), nil
}
