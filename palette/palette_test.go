package palette

import (
	"image/color"
	"testing"
)

func TestIndexExactInks(t *testing.T) {
	for i, e := range Inky7.Entries() {
		if got := Inky7.Index(e.Color); int(got) != i {
			t.Fatalf("ink %s: expected index %d, got %d", e.Name, i, got)
		}
	}
}

func TestIndexNearestInk(t *testing.T) {
	cases := []struct {
		in   color.Color
		want string
	}{
		{color.NRGBA{20, 20, 20, 255}, "black"},
		{color.NRGBA{240, 240, 235, 255}, "white"},
		{color.NRGBA{10, 200, 30, 255}, "green"},
		{color.NRGBA{200, 20, 10, 255}, "red"},
		// alpha is ignored: a transparent white pixel is still white
		{color.NRGBA{255, 255, 255, 0}, "white"},
	}
	for _, tc := range cases {
		idx := Inky7.Index(tc.in)
		if name := Inky7.Entries()[idx].Name; name != tc.want {
			t.Fatalf("colour %#v: expected %s, got %s", tc.in, tc.want, name)
		}
	}
}

func TestResolve(t *testing.T) {
	got, err := Inky7.Resolve("Green")
	if err != nil || got != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("Resolve(Green) = %v, %v", got, err)
	}
	got, err = Inky7.Resolve("#0022ee")
	if err != nil || got != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("Resolve(#0022ee) = %v, %v", got, err)
	}
	if _, err := Inky7.Resolve("not-a-colour"); err == nil {
		t.Fatalf("expected error for unknown colour")
	}
}

func TestParseHexShortForm(t *testing.T) {
	c, err := ParseHex("#f00")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("unexpected colour %v", c)
	}
}

func TestByName(t *testing.T) {
	if p, ok := ByName("mono"); !ok || p.Len() != 2 {
		t.Fatalf("expected mono palette")
	}
	if _, ok := ByName("cmyk"); ok {
		t.Fatalf("unexpected palette")
	}
}
