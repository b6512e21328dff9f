package layout

import (
	"log/slog"

	"github.com/ByLCY/inkverse/assets"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与已加载的装饰图片。
type BuildOptions struct {
	Typesetter Typesetter
	// Images 以资源名索引已加载的图片；缺失的图片对应的图层会被跳过。
	Images map[string]*assets.Element
	// Data 会与 verse 一起暴露给文本中的 ${...} 绑定。
	Data   map[string]any
	Logger *slog.Logger
}

// Face 是某个字体在固定字号下的度量能力。必须与最终绘制使用同一字形。
type Face interface {
	// Measure 返回文本的宽度与从行顶到最低字形底部的高度（像素）。
	Measure(text string) (width, height int)
	// Ascent 是行顶到基线的距离。
	Ascent() int
}

// Typesetter 根据字体资源返回可度量的 Face，字体不可用时返回 *fonts.FontError。
type Typesetter interface {
	Face(font FontResource) (Face, error)
}
