package corpus

import (
	"errors"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// errNoVerses is returned for a well-formed document without any readable verse.
var errNoVerses = errors.New("no verses found in OSIS document")

// rootExpr matches the document element.
var rootExpr = xpath.MustCompile("/*")

// ParseOSIS reads OSIS verses in both encodings:
//
//	container: <verse osisID="Gen.1.1">text</verse>
//	milestone: <verse sID="Gen.1.1" osisID="Gen.1.1"/>text<verse eID="Gen.1.1"/>
//
// Notes are not part of the verse text. A document that parses but yields no
// verse is an error, so a corpus in an unexpected shape is reported rather
// than shown as empty.
func ParseOSIS(r io.Reader) (Corpus, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	root := xmlquery.QuerySelector(doc, rootExpr)
	if root == nil {
		return nil, nil
	}

	w := &osisWalker{open: map[string]*milestone{}}
	w.walk(root)
	w.flush()
	if len(w.out) == 0 {
		return nil, errNoVerses
	}
	return w.out, nil
}

// milestone collects the text between a verse's sID and eID markers.
type milestone struct {
	ids  []string
	text strings.Builder
}

type osisWalker struct {
	open  map[string]*milestone
	order []string // sIDs in opening order
	out   Corpus
}

func (w *osisWalker) walk(n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			for _, m := range w.open {
				m.text.WriteString(c.Data)
			}
		case xmlquery.ElementNode:
			switch c.Data {
			case "note":
				continue
			case "verse":
				w.verse(c)
				continue
			}
			w.walk(c)
		}
	}
}

func (w *osisWalker) verse(n *xmlquery.Node) {
	switch {
	case n.SelectAttr("sID") != "":
		sid := n.SelectAttr("sID")
		ids := strings.Fields(n.SelectAttr("osisID"))
		if len(ids) == 0 {
			ids = []string{sid}
		}
		w.open[sid] = &milestone{ids: ids}
		w.order = append(w.order, sid)
	case n.SelectAttr("eID") != "":
		w.close(n.SelectAttr("eID"))
	default:
		w.add(strings.Fields(n.SelectAttr("osisID")), n.InnerText())
	}
}

func (w *osisWalker) close(sid string) {
	m, ok := w.open[sid]
	if !ok {
		return
	}
	delete(w.open, sid)
	w.add(m.ids, m.text.String())
}

// flush closes milestones whose eID never appeared, in opening order.
func (w *osisWalker) flush() {
	for _, sid := range w.order {
		w.close(sid)
	}
}

func (w *osisWalker) add(ids []string, text string) {
	body := strings.Join(strings.Fields(text), " ")
	if body == "" || len(ids) == 0 {
		return
	}
	ref, err := ParseReference(ids[0])
	if err != nil {
		w.out = append(w.out, VersePair{Reference: ids[0], Body: body})
		return
	}
	if len(ids) > 1 {
		if last, err := ParseReference(ids[len(ids)-1]); err == nil && last.Chapter == ref.Chapter {
			ref.VerseEnd = last.Verse
		}
	}
	w.out = append(w.out, VersePair{Reference: ref.String(), Body: body})
}
