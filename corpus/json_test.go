package corpus

import "testing"

func TestParseJSONFlatList(t *testing.T) {
	c, err := ParseJSON([]byte(`["John 3:16 - For God so loved the world", "", "Rejoice always"]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := Corpus{
		{Reference: "John 3:16", Body: "For God so loved the world"},
		{Reference: "", Body: "Rejoice always"},
	}
	assertCorpus(t, c, want)
}

func TestParseJSONRecords(t *testing.T) {
	data := `{"verses": [
		{"book": "Gen", "chapter": 1, "verse": 1, "text": "In the beginning"},
		{"reference": "Ps 46:10", "text": "Be still"},
		{"id": "Matt.5.9", "body": "Blessed are the peacemakers"},
		{"book": "Gen", "chapter": 1, "verse": 2, "text": ""}
	]}`
	c, err := ParseJSON([]byte(data))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	assertCorpus(t, c, Corpus{
		{Reference: "Genesis 1:1", Body: "In the beginning"},
		{Reference: "Ps 46:10", Body: "Be still"},
		{Reference: "Matthew 5:9", Body: "Blessed are the peacemakers"},
	})
}

func TestParseJSONKeyedMapIsSorted(t *testing.T) {
	c, err := ParseJSON([]byte(`{"Rom 8:28": "all things", "John 1:1": "In the beginning was the Word"}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	assertCorpus(t, c, Corpus{
		{Reference: "John 1:1", Body: "In the beginning was the Word"},
		{Reference: "Rom 8:28", Body: "all things"},
	})
}

func TestParseJSONBibleDocument(t *testing.T) {
	data := `{"meta": {"id": "kjv"}, "books": [
		{"id": "Gen", "name": "Genesis", "chapters": [
			{"number": 1, "verses": [{"verse": 1, "text": "In the beginning"}, {"verse": 3, "text": "Let there be light"}]}
		]}
	]}`
	c, err := ParseJSON([]byte(data))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	assertCorpus(t, c, Corpus{
		{Reference: "Genesis 1:1", Body: "In the beginning"},
		{Reference: "Genesis 1:3", Body: "Let there be light"},
	})
}

func TestParseJSONMalformed(t *testing.T) {
	for _, in := range []string{``, `42`, `[1, 2]`, `{"a": 1}`, `["unterminated`} {
		if _, err := ParseJSON([]byte(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func assertCorpus(t *testing.T, got, want Corpus) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %#v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %#v, want %#v", i, got[i], want[i])
		}
	}
}
