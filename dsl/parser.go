// Package dsl parses display profile files.
//
// A profile has one root block holding meta, resources and canvas sections.
// Blocks contain three kinds of statements: `key: value` assignments,
// commands (a name, bare arguments, optional nested block) and string
// literals used as the text of the enclosing command.
package dsl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	profileLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|px|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;=,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames = func() map[lexer.TokenType]string {
		out := map[lexer.TokenType]string{}
		for name, tt := range profileLexer.Symbols() {
			out[tt] = name
		}
		return out
	}()

	profileParser = participle.MustBuild[Document](
		participle.Lexer(profileLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root of a display profile:
//
//	display Inkverse v1 {
//	  meta { title: "Daily verse" }
//	  resources { font Body { src: "builtin:goregular" size: 24px } }
//	  canvas 800 480 palette inky7 { ... }
//	}
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'display' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of meta, resources or canvas.
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Canvas    *CanvasSection    `parser:"| @@"`
}

// Kind names the section.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Canvas != nil:
		return "canvas"
	}
	return "unknown"
}

type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// CanvasSection describes the panel surface and the ordered layers drawn on it.
type CanvasSection struct {
	Params []*Arg `parser:"'canvas' @@*"`
	Block  *Block `parser:"@@"`
}

// Canvas returns the first canvas section, or nil.
func (d *Document) Canvas() *CanvasSection {
	if d == nil {
		return nil
	}
	for _, section := range d.Sections {
		if section.Canvas != nil {
			return section.Canvas
		}
	}
	return nil
}

// Meta returns the assignments of every meta section, later keys winning.
func (d *Document) Meta() map[string]string {
	out := map[string]string{}
	if d == nil {
		return out
	}
	for _, section := range d.Sections {
		if section.Meta == nil {
			continue
		}
		for _, a := range section.Meta.Block.Assignments() {
			out[a.Key] = a.Value.Text()
		}
	}
	return out
}

type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignments returns the block's key: value statements in order.
func (b *Block) Assignments() []*Assignment {
	if b == nil {
		return nil
	}
	var out []*Assignment
	for _, stmt := range b.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}

// Commands returns the block's commands in order.
func (b *Block) Commands() []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, stmt := range b.Statements {
		if stmt.Command != nil {
			out = append(out, stmt.Command)
		}
	}
	return out
}

// Text concatenates the block's string literals.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			sb.WriteString(string(*stmt.Text))
		}
	}
	return sb.String()
}

type Statement struct {
	Assignment *Assignment    `parser:"  @@"`
	Command    *Command       `parser:"| @@"`
	Text       *StringLiteral `parser:"| @String"`
}

// Assignment is `key: value`.
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Command is a name followed by bare arguments and an optional block, e.g.
// `image Flag top-left margin 10 masked`.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Arg         `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// Value is a scalar assignment value.
type Value struct {
	Str    *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Word   *string        `parser:"| @Ident"`
}

// Text returns the value as written, with strings unquoted.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return string(*v.Str)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

// Arg is one bare command argument. Arguments run until a newline, a block,
// a ';' or the end of the enclosing block.
type Arg struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable.
func (a *Arg) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok.EOF() {
		return participle.NextMatch
	}
	typ := tokenNames[tok.Type]
	switch typ {
	case "Newline", "LBrace", "RBrace":
		return participle.NextMatch
	case "Punct":
		if tok.Value == ";" {
			return participle.NextMatch
		}
	}
	tok = lex.Next()
	val := tok.Value
	if typ == "String" {
		s, err := strconv.Unquote(val)
		if err != nil {
			return fmt.Errorf("%s: %w", tok.Pos, err)
		}
		val = s
	}
	*a = Arg{Type: typ, Value: val, Pos: tok.Pos}
	return nil
}

// Args joins argument values with single spaces.
func Args(args []*Arg) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.Value)
	}
	return strings.Join(parts, " ")
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a profile from r.
func Parse(r io.Reader) (*Document, error) {
	return profileParser.Parse("", r)
}

// ParseFile reads and parses a profile file; positions in errors carry its name.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}
	defer f.Close()
	return profileParser.Parse(path, f)
}

// ParseString parses a profile held in a string.
func ParseString(input string) (*Document, error) {
	return profileParser.ParseString("", input)
}
