package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// record is the keyed source shape: either a ready reference or its parts.
type record struct {
	Reference string `json:"reference"`
	Ref       string `json:"ref"`
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Text      string `json:"text"`
	Body      string `json:"body"`
	ID        string `json:"id"` // OSIS id such as "Gen.1.1"
}

func (r record) pair() VersePair {
	body := r.Text
	if body == "" {
		body = r.Body
	}
	ref := r.Reference
	if ref == "" {
		ref = r.Ref
	}
	switch {
	case ref != "":
	case r.Book != "":
		ref = FormatReference(r.Book, r.Chapter, r.Verse)
	case r.ID != "":
		if parsed, err := ParseReference(r.ID); err == nil {
			ref = parsed.String()
		} else {
			ref = r.ID
		}
	}
	return VersePair{Reference: strings.TrimSpace(ref), Body: strings.TrimSpace(body)}
}

// bibleDocument is the nested books/chapters/verses export shape.
type bibleDocument struct {
	Books []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Chapters []struct {
			Number int      `json:"number"`
			Verses []record `json:"verses"`
		} `json:"chapters"`
	} `json:"books"`
}

// ParseJSON decodes every supported JSON shape:
//
//	["John 3:16 - For God so loved ...", ...]
//	[{"book": "John", "chapter": 3, "verse": 16, "text": "..."}, ...]
//	{"John 3:16": "For God so loved ...", ...}
//	{"verses": [...]}                       (either list shape)
//	{"books": [{"chapters": [{"verses": [...]}]}]}
func ParseJSON(data []byte) (Corpus, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	switch trimmed[0] {
	case '[':
		return parseJSONList(trimmed)
	case '{':
		return parseJSONObject(trimmed)
	default:
		return nil, fmt.Errorf("expected JSON array or object, found %q", trimmed[0])
	}
}

func parseJSONList(data []byte) (Corpus, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make(Corpus, 0, len(items))
	for i, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var line string
			if err := json.Unmarshal(raw, &line); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			out = append(out, SplitLine(line))
		case '{':
			var rec record
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if p := rec.pair(); p.Body != "" {
				out = append(out, p)
			}
		default:
			return nil, fmt.Errorf("entry %d: expected string or object", i)
		}
	}
	return out, nil
}

func parseJSONObject(data []byte) (Corpus, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if _, ok := fields["books"]; ok {
		return parseBibleDocument(data)
	}
	if verses, ok := fields["verses"]; ok {
		return parseJSONList(verses)
	}

	// keyed map: reference -> body. Keys are sorted so that a seeded selector is
	// reproducible regardless of map iteration order.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Corpus, 0, len(keys))
	for _, k := range keys {
		var body string
		if err := json.Unmarshal(fields[k], &body); err != nil {
			return nil, fmt.Errorf("key %q: expected string body: %w", k, err)
		}
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, VersePair{Reference: strings.TrimSpace(k), Body: strings.TrimSpace(body)})
	}
	return out, nil
}

func parseBibleDocument(data []byte) (Corpus, error) {
	var doc bibleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var out Corpus
	for _, book := range doc.Books {
		name := book.Name
		if name == "" {
			name = book.ID
		}
		for _, ch := range book.Chapters {
			for _, v := range ch.Verses {
				if v.Book == "" && v.Reference == "" && v.ID == "" {
					v.Book = name
				}
				if v.Chapter == 0 {
					v.Chapter = ch.Number
				}
				if p := v.pair(); p.Body != "" {
					out = append(out, p)
				}
			}
		}
	}
	return out, nil
}
