package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths written in the profile.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone    Unit = iota // bare numbers, read as pixels
	UnitPX                  // pixels
	UnitPT                  // points
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitPercent             // percent of a reference length
	UnitFactor              // multiple of a reference length, e.g. 2x
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// DefaultDPI makes pt and px coincide.
const DefaultDPI = 72

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPercent:
		return "%"
	case UnitFactor:
		return "x"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Relative reports whether the length depends on a reference length.
func (l Length) Relative() bool { return l.Unit == UnitPercent || l.Unit == UnitFactor }

// Float converts this length to pixels at dpi; ref is the reference length for
// relative units.
func (l Length) Float(dpi, ref float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch l.Unit {
	case UnitPT:
		return l.Value * dpi / 72
	case UnitMM:
		return l.Value * dpi / 25.4
	case UnitCM:
		return l.Value * 10 * dpi / 25.4
	case UnitIN:
		return l.Value * dpi
	case UnitPercent:
		return ref * l.Value / 100
	case UnitFactor:
		return ref * l.Value
	default:
		return l.Value
	}
}

// Pixels is Float rounded to the nearest whole pixel.
func (l Length) Pixels(dpi, ref float64) int {
	return int(math.Round(l.Float(dpi, ref)))
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"%", UnitPercent}, {"x", UnitFactor}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// parseLength parses value and reports whether it was numeric at all.
func parseLength(value string) (Length, bool) {
	l := ParseRawLengthStr(value)
	if l.Value == 0 {
		num := strings.TrimRight(strings.ToLower(strings.TrimSpace(value)), "pxtmcin%")
		if _, err := strconv.ParseFloat(num, 64); err != nil {
			return Length{}, false
		}
	}
	return l, true
}
