// Package binding fills ${path} placeholders in decoration text, e.g.
// "${verse.reference}" or "${extra.tags[0]}".
package binding

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookuper 允许结构体以键名暴露字段，例如 corpus.VersePair。
type Lookuper interface {
	Lookup(key string) (any, bool)
}

// step is one hop of a path: a key lookup or, when key is empty, an index.
type step struct {
	key   string
	index int
}

// piece is a literal run or a placeholder; raw keeps the placeholder text so
// unresolved paths render unchanged.
type piece struct {
	literal string
	raw     string
	path    []step
}

// Template is text with its placeholders parsed once.
type Template struct {
	pieces []piece
}

// Compile splits text into literals and placeholders. Malformed placeholders
// are kept as literal text.
func Compile(text string) *Template {
	t := &Template{}
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			break
		}
		end += start
		if start > 0 {
			t.pieces = append(t.pieces, piece{literal: rest[:start]})
		}
		raw := rest[start : end+1]
		if path, ok := parsePath(strings.TrimSpace(rest[start+2 : end])); ok {
			t.pieces = append(t.pieces, piece{raw: raw, path: path})
		} else {
			t.pieces = append(t.pieces, piece{literal: raw})
		}
		rest = rest[end+1:]
	}
	if rest != "" {
		t.pieces = append(t.pieces, piece{literal: rest})
	}
	return t
}

// HasPlaceholders reports whether any placeholder was found.
func (t *Template) HasPlaceholders() bool {
	for _, p := range t.pieces {
		if p.path != nil {
			return true
		}
	}
	return false
}

// Execute renders the template against data.
func (t *Template) Execute(data any) string {
	var sb strings.Builder
	for _, p := range t.pieces {
		if p.path == nil {
			sb.WriteString(p.literal)
			continue
		}
		if val, ok := walk(data, p.path); ok && val != nil {
			sb.WriteString(fmt.Sprint(val))
		} else {
			sb.WriteString(p.raw)
		}
	}
	return sb.String()
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return Compile(text).Execute(data)
}

// parsePath accepts dotted keys with optional [n] suffixes: a.b[0][1].c
func parsePath(s string) ([]step, bool) {
	if s == "" {
		return nil, false
	}
	var path []step
	for _, seg := range strings.Split(s, ".") {
		name := seg
		idx := strings.IndexByte(seg, '[')
		if idx >= 0 {
			name = seg[:idx]
		}
		if name != "" {
			path = append(path, step{key: name})
		} else if idx != 0 {
			return nil, false
		}
		for rest := seg[len(name):]; rest != ""; {
			if rest[0] != '[' {
				return nil, false
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			n, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, false
			}
			path = append(path, step{index: n})
			rest = rest[end+1:]
		}
	}
	return path, len(path) > 0
}

func walk(current any, path []step) (any, bool) {
	for _, s := range path {
		var ok bool
		if s.key != "" {
			current, ok = byKey(current, s.key)
		} else {
			current, ok = byIndex(current, s.index)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func byKey(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	case Lookuper:
		return c.Lookup(key)
	}
	return nil, false
}

func byIndex(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx >= 0 && idx < len(c) {
			return c[idx], true
		}
	case []string:
		if idx >= 0 && idx < len(c) {
			return c[idx], true
		}
	}
	return nil, false
}
