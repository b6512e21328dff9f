// Package palette describes the fixed colour set of a limited-palette e-paper panel
// and snaps arbitrary colours onto it.
package palette

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Entry is one named ink of the panel.
type Entry struct {
	Name  string
	Color color.NRGBA
}

// Palette is an ordered, immutable set of inks. Index positions match the
// panel's native colour indexes.
type Palette struct {
	entries []Entry
	lab     []colorful.Color

	mu    sync.Mutex
	cache map[color.NRGBA]uint8
}

// Inky7 is the seven-colour Inky Impression panel in its native index order.
var Inky7 = New(
	Entry{Name: "black", Color: color.NRGBA{0, 0, 0, 255}},
	Entry{Name: "white", Color: color.NRGBA{255, 255, 255, 255}},
	Entry{Name: "green", Color: color.NRGBA{0, 255, 0, 255}},
	Entry{Name: "blue", Color: color.NRGBA{0, 0, 255, 255}},
	Entry{Name: "red", Color: color.NRGBA{255, 0, 0, 255}},
	Entry{Name: "yellow", Color: color.NRGBA{255, 255, 0, 255}},
	Entry{Name: "orange", Color: color.NRGBA{255, 140, 0, 255}},
)

// Mono is a black and white panel.
var Mono = New(
	Entry{Name: "black", Color: color.NRGBA{0, 0, 0, 255}},
	Entry{Name: "white", Color: color.NRGBA{255, 255, 255, 255}},
)

// New builds a palette from entries. It panics when entries is empty or holds
// more than 256 inks, both of which are programming errors.
func New(entries ...Entry) *Palette {
	if len(entries) == 0 || len(entries) > 256 {
		panic(fmt.Sprintf("palette: invalid entry count %d", len(entries)))
	}
	p := &Palette{
		entries: append([]Entry(nil), entries...),
		lab:     make([]colorful.Color, len(entries)),
		cache:   map[color.NRGBA]uint8{},
	}
	for i, e := range p.entries {
		p.lab[i] = toColorful(e.Color)
	}
	return p
}

// ByName returns a builtin palette ("inky7", "mono").
func ByName(name string) (*Palette, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "inky7", "inky", "7color":
		return Inky7, true
	case "mono", "bw":
		return Mono, true
	}
	return nil, false
}

// Len returns the number of inks.
func (p *Palette) Len() int { return len(p.entries) }

// Entries returns a copy of the inks.
func (p *Palette) Entries() []Entry { return append([]Entry(nil), p.entries...) }

// Colors returns the palette as an image/color palette for image.Paletted.
func (p *Palette) Colors() color.Palette {
	out := make(color.Palette, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Color
	}
	return out
}

// Lookup returns the ink with the given name.
func (p *Palette) Lookup(name string) (color.NRGBA, bool) {
	for _, e := range p.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Color, true
		}
	}
	return color.NRGBA{}, false
}

// Index returns the index of the ink perceptually nearest to c (CIE Lab distance).
// The alpha channel is ignored: callers decide separately whether a pixel is drawn.
func (p *Palette) Index(c color.Color) uint8 {
	key := opaque(c)

	p.mu.Lock()
	defer p.mu.Unlock()
	if idx, ok := p.cache[key]; ok {
		return idx
	}
	target := toColorful(key)
	best, bestDist := 0, -1.0
	for i, ink := range p.lab {
		d := target.DistanceLab(ink)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	p.cache[key] = uint8(best)
	return uint8(best)
}

// Snap returns the ink nearest to c.
func (p *Palette) Snap(c color.Color) color.NRGBA {
	return p.entries[p.Index(c)].Color
}

// Resolve turns a colour value into an ink. value may be an ink name ("green")
// or a hex literal ("#0f0", "#00ff00"); hex values are snapped to the palette.
func (p *Palette) Resolve(value string) (color.NRGBA, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return color.NRGBA{}, fmt.Errorf("palette: empty colour value")
	}
	if c, ok := p.Lookup(v); ok {
		return c, nil
	}
	c, err := ParseHex(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	return p.Snap(c), nil
}

// ParseHex parses "#rgb" or "#rrggbb" into an opaque colour.
func ParseHex(value string) (color.NRGBA, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	// go-colorful only understands the 3 and 6 digit forms; drop a trailing alpha pair.
	if len(v) == 9 {
		v = v[:7]
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("palette: cannot parse colour %q: %w", value, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
