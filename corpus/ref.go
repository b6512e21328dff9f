package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is a parsed scripture reference.
type Ref struct {
	Book     string `json:"book"`               // English book name, e.g. "1 John"
	Chapter  int    `json:"chapter,omitempty"`  // 0 for whole-book references
	Verse    int    `json:"verse,omitempty"`    // 0 for whole-chapter references
	VerseEnd int    `json:"verseEnd,omitempty"` // last verse of a range
}

// String renders the reference the way it is shown on the display: "John 3:16",
// "Psalms 23", "1 John 4:7-8".
func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(r.Book)
	if r.Chapter > 0 {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			b.WriteString(":")
			b.WriteString(strconv.Itoa(r.Verse))
			if r.VerseEnd > r.Verse {
				b.WriteString("-")
				b.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}
	return b.String()
}

// Equal compares references ignoring book-name case.
func (r Ref) Equal(o Ref) bool {
	return strings.EqualFold(r.Book, o.Book) && r.Chapter == o.Chapter &&
		r.Verse == o.Verse && r.VerseEnd == o.VerseEnd
}

// refGrammar accepts both OSIS ids and the human form:
// "Gen.1.1", "1John.3.16", "John 3:16", "1 John 4:7-8", "Song of Solomon 2".
type refGrammar struct {
	Prefix  *int         `parser:"@Int?"`
	Words   []string     `parser:"@Word+"`
	Chapter *chapterPart `parser:"( '.'? @@ )?"`
}

type chapterPart struct {
	Number int        `parser:"@Int"`
	Verse  *versePart `parser:"( ( ':' | '.' ) @@ )?"`
}

type versePart struct {
	Number int  `parser:"@Int"`
	End    *int `parser:"( '-' @Int )?"`
}

var (
	refLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Word", Pattern: `[A-Za-z]+`},
		{Name: "Punct", Pattern: `[.:\-]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	refParser = participle.MustBuild[refGrammar](
		participle.Lexer(refLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseReference parses an OSIS id or a human-readable reference. Known book
// names and OSIS abbreviations are normalized to the English name.
func ParseReference(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("corpus: empty reference")
	}
	g, err := refParser.ParseString("", s)
	if err != nil {
		return Ref{}, fmt.Errorf("corpus: invalid reference %q: %w", s, err)
	}

	book := strings.Join(g.Words, " ")
	if g.Prefix != nil {
		book = strconv.Itoa(*g.Prefix) + " " + book
	}
	ref := Ref{Book: BookName(book)}
	if g.Chapter != nil {
		ref.Chapter = g.Chapter.Number
		if v := g.Chapter.Verse; v != nil {
			ref.Verse = v.Number
			if v.End != nil {
				ref.VerseEnd = *v.End
			}
		}
	}
	return ref, nil
}

// FormatReference builds the display reference for a keyed record.
func FormatReference(book string, chapter, verse int) string {
	return Ref{Book: BookName(book), Chapter: chapter, Verse: verse}.String()
}
