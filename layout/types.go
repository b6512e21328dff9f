package layout

import (
	"image/color"

	"github.com/ByLCY/inkverse/assets"
)

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。

// Scene 保存一次渲染所需的全部绘制操作，坐标单位为像素，原点在左上角。
type Scene struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Palette    string      `json:"palette"`
	Background Color       `json:"background"`
	Border     Color       `json:"border"`
	Ops        []Op        `json:"ops"`
	Resources  ResourceSet `json:"resources"`
	Meta       SceneMeta   `json:"meta"`

	// Assets 保存已解码的装饰图片，渲染器按 Op.Image 取用。
	Assets map[string]*assets.Element `json:"-"`
}

// SceneMeta 记录经文与排版过程中的状态，便于调试。
type SceneMeta struct {
	Title       string   `json:"title,omitempty"`
	Reference   string   `json:"reference"`
	Body        string   `json:"body"`
	Region      Region   `json:"region"`
	TotalHeight int      `json:"totalHeight"`
	StartY      int      `json:"startY"`
	Overflow    bool     `json:"overflow"`
	Omitted     []string `json:"omitted,omitempty"` // 因资源缺失被跳过的装饰
}

// ResourceSet 记录解析出的字体与图片定义。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Images map[string]ImageResource `json:"images"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式；Size 以像素为单位。
type FontResource struct {
	Name     string  `json:"name"`
	Src      string  `json:"src"`
	Size     float64 `json:"size"`
	Fallback string  `json:"fallback,omitempty"`
}

// ImageResource 记录图片资源及其目标尺寸（像素）。
type ImageResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// NRGBA converts c to an opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

func colorOf(c color.NRGBA) Color {
	return Color{R: int(c.R), G: int(c.G), B: int(c.B)}
}

// OpKind 区分绘制操作类型。
type OpKind string

const (
	OpText  OpKind = "text"
	OpImage OpKind = "image"
)

// PasteMode 决定图片如何合成到画布上。
type PasteMode string

const (
	PasteMasked PasteMode = "masked" // 只复制遮罩非零的像素
	PasteOpaque PasteMode = "opaque" // 忽略透明度整块覆盖
)

// Op 是一个已经定位好的绘制操作，按 Scene.Ops 的顺序执行，后者覆盖前者。
type Op struct {
	Kind   OpKind    `json:"kind"`
	Role   string    `json:"role,omitempty"` // reference/body/decoration
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Text   string    `json:"text,omitempty"`
	Font   string    `json:"font,omitempty"`
	Color  Color     `json:"color"`
	Image  string    `json:"image,omitempty"`
	Paste  PasteMode `json:"paste,omitempty"`
}
