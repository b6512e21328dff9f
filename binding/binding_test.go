package binding

import "testing"

type pair struct{ ref, body string }

func (p pair) Lookup(key string) (any, bool) {
	switch key {
	case "reference":
		return p.ref, true
	case "body":
		return p.body, true
	}
	return nil, false
}

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"verse": pair{ref: "John 3:16", body: "For God so loved the world"},
		"tags":  []any{"daily", "hope"},
		"names": map[string]string{"panel": "inky"},
		"count": 3,
	}
	cases := []struct {
		in, want string
	}{
		{"${verse.reference}", "John 3:16"},
		{"[${ verse.body }]", "[For God so loved the world]"},
		{"${tags[1]} x${count}", "hope x3"},
		{"${names.panel}", "inky"},
		{"${verse.missing}", "${verse.missing}"},
		{"${tags[5]}", "${tags[5]}"},
		{"${}", "${}"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${verse.reference}", nil); got != "${verse.reference}" {
		t.Fatalf("expected placeholder preserved, got %q", got)
	}
}

func TestCompile(t *testing.T) {
	tpl := Compile("Have a blessed ${day}, ${who[0]}! ${bad[x]} ${open")
	if !tpl.HasPlaceholders() {
		t.Fatalf("expected placeholders")
	}
	got := tpl.Execute(map[string]any{"day": "Sunday", "who": []string{"friend"}})
	if want := "Have a blessed Sunday, friend! ${bad[x]} ${open"; got != want {
		t.Fatalf("Execute = %q, want %q", got, want)
	}
	if Compile("Have A Blessed Day!!!").HasPlaceholders() {
		t.Fatalf("plain text has no placeholders")
	}
}
