package layout

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/inkverse/fonts"
)

// stubFace 是等宽的测试字体：每个字符（或每个单词）固定宽度，高度恒定。
type stubFace struct {
	unit    int
	height  int
	ascent  int
	perWord bool
}

func (f stubFace) Measure(text string) (int, int) {
	if f.perWord {
		return len(strings.Fields(text)) * f.unit, f.height
	}
	return utf8.RuneCountInString(text) * f.unit, f.height
}

func (f stubFace) Ascent() int { return f.ascent }

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
type stubTypesetter struct {
	face    Face
	missing map[string]bool
	calls   int
}

func (s *stubTypesetter) Face(font FontResource) (Face, error) {
	s.calls++
	if s.missing[font.Name] {
		return nil, &fonts.FontError{Src: font.Src, Err: errors.New("stub: missing")}
	}
	if s.face == nil {
		return stubFace{unit: 10, height: 20, ascent: 16}, nil
	}
	return s.face, nil
}
