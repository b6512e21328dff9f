package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrFont 表示字体资源不可用，可用 errors.Is 判断。
var ErrFont = errors.New("font unavailable")

// FontError 描述一次字体加载或解析失败。
type FontError struct {
	Src string
	Err error
}

func (e *FontError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("字体 %s 不可用: %v", e.Src, e.Err)
	}
	return fmt.Sprintf("字体 %s 不可用", e.Src)
}

func (e *FontError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrFont) 成立。
func (e *FontError) Is(target error) bool { return target == ErrFont }

var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
}

// Builtin 返回内置字体名称列表（已排序）。
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回字体的字节数据。src 可写为 "builtin:goregular"（"embed:" 前缀等价）、
// 绝对路径，或相对 baseDir 的路径。
func Load(src, baseDir string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &FontError{Src: src, Err: fmt.Errorf("缺少 src")}
	}
	for _, prefix := range []string{"builtin:", "built-in:", "embed:"} {
		if strings.HasPrefix(src, prefix) {
			name := strings.ToLower(strings.TrimPrefix(src, prefix))
			data, ok := builtin[name]
			if !ok {
				return nil, &FontError{Src: src, Err: fmt.Errorf("找不到内置字体 %s，可用：%s", name, strings.Join(Builtin(), ", "))}
			}
			return data, nil
		}
	}

	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontError{Src: src, Err: err}
	}
	return data, nil
}
