package corpus

import "testing"

func TestParseReference(t *testing.T) {
	cases := []struct {
		in   string
		want Ref
		str  string
	}{
		{"Gen.1.1", Ref{Book: "Genesis", Chapter: 1, Verse: 1}, "Genesis 1:1"},
		{"1John.4.7", Ref{Book: "1 John", Chapter: 4, Verse: 7}, "1 John 4:7"},
		{"John 3:16", Ref{Book: "John", Chapter: 3, Verse: 16}, "John 3:16"},
		{"1 Cor 13:4-7", Ref{Book: "1 Corinthians", Chapter: 13, Verse: 4, VerseEnd: 7}, "1 Corinthians 13:4-7"},
		{"Song of Solomon 2", Ref{Book: "Song of Solomon", Chapter: 2}, "Song of Solomon 2"},
		{"Ps", Ref{Book: "Psalms"}, "Psalms"},
		{"Wisdom 1:1", Ref{Book: "Wisdom", Chapter: 1, Verse: 1}, "Wisdom 1:1"},
	}
	for _, tc := range cases {
		got, err := ParseReference(tc.in)
		if err != nil {
			t.Fatalf("ParseReference(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseReference(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
		if s := got.String(); s != tc.str {
			t.Fatalf("String(%q) = %q, want %q", tc.in, s, tc.str)
		}
	}
}

func TestParseReferenceRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "3:16", "John 3:"} {
		if _, err := ParseReference(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatReference(t *testing.T) {
	if got := FormatReference("Rom", 8, 28); got != "Romans 8:28" {
		t.Fatalf("unexpected reference %q", got)
	}
	if got := FormatReference("Psalm", 23, 0); got != "Psalms 23" {
		t.Fatalf("unexpected reference %q", got)
	}
}
