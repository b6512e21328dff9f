// Package corpus holds the passages available for display and picks one of them.
//
// Every source shape (flat "reference - body" strings, keyed records, OSIS XML,
// SQLite tables) is normalized into VersePair before selection.
package corpus

import (
	"math/rand/v2"
	"strings"
)

// Delimiter separates reference and body in flat source lines.
const Delimiter = " - "

// VersePair is one reference/body unit selected for display.
type VersePair struct {
	Reference string `json:"reference"`
	Body      string `json:"body"`
}

// Fallback is returned when there is nothing to select from. It is a valid
// passage, not an error: the display still gets a complete frame.
var Fallback = VersePair{
	Reference: "No verses found.",
	Body:      "Please check the JSON file.",
}

// SplitLine normalizes a flat "reference - body" line. A line without the
// delimiter becomes the body with an empty reference.
func SplitLine(line string) VersePair {
	reference, body, ok := strings.Cut(line, Delimiter)
	if !ok {
		return VersePair{Body: line}
	}
	return VersePair{Reference: reference, Body: body}
}

// Lookup exposes the pair to text bindings such as ${verse.reference}.
func (v VersePair) Lookup(key string) (any, bool) {
	switch strings.ToLower(key) {
	case "reference", "ref":
		return v.Reference, true
	case "body", "text":
		return v.Body, true
	}
	return nil, false
}

// Corpus is the read-only collection loaded once per run. It is safe to share
// between goroutines as long as nobody mutates it.
type Corpus []VersePair

// Find returns the first pair whose reference matches ref. References are
// compared in canonical form when both sides parse ("Gen.1.1" matches
// "Genesis 1:1"), and case-insensitively otherwise.
func (c Corpus) Find(ref string) (VersePair, bool) {
	want, err := ParseReference(ref)
	for _, v := range c {
		if err == nil {
			if got, gerr := ParseReference(v.Reference); gerr == nil && got.Equal(want) {
				return v, true
			}
		}
		if strings.EqualFold(strings.TrimSpace(v.Reference), strings.TrimSpace(ref)) {
			return v, true
		}
	}
	return VersePair{}, false
}

// Selector picks passages uniformly at random from an injected source, so a
// fixed seed yields a reproducible sequence.
type Selector struct {
	rng *rand.Rand
}

// NewSelector wraps src. A nil src uses a randomly seeded PCG.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{rng: rand.New(src)}
}

// NewSeededSelector is a convenience for NewSelector(rand.NewPCG(seed, seed)).
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.NewPCG(seed, seed))
}

// Select returns one pair chosen uniformly from c, or Fallback when c is empty.
func (s *Selector) Select(c Corpus) VersePair {
	if len(c) == 0 {
		return Fallback
	}
	return c[s.rng.IntN(len(c))]
}

// Select picks from c using src; see Selector.Select.
func Select(c Corpus, src rand.Source) VersePair {
	return NewSelector(src).Select(c)
}
