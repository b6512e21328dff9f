package corpus

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verses.json")
	if err := os.WriteFile(path, []byte(`["Rom 12:12 - Be joyful in hope"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertCorpus(t, c, Corpus{{Reference: "Rom 12:12", Body: "Be joyful in hope"}})
}

func TestLoadFileCompressed(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(`{"Isa 40:31": "They shall mount up with wings as eagles"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "verses.json.xz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(context.Background(), path, "")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertCorpus(t, c, Corpus{{Reference: "Isa 40:31", Body: "They shall mount up with wings as eagles"}})
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(bad, []byte(`{"verses": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	notXZ := filepath.Join(dir, "plain.json.xz")
	if err := os.WriteFile(notXZ, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	empty := filepath.Join(dir, "empty.osis")
	if err := os.WriteFile(empty, []byte(`<osis><osisText/></osis>`), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		path string
		op   string
	}{
		{"empty path", "", "open"},
		{"missing file", filepath.Join(dir, "nope.json"), "open"},
		{"missing db", filepath.Join(dir, "nope.db"), "open"},
		{"unsupported", filepath.Join(dir, "verses.txt"), "open"},
		{"malformed", bad, "parse"},
		{"no verses", empty, "parse"},
		{"not xz", notXZ, "decompress"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(context.Background(), tc.path, "")
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %v", err)
			}
			if le.Op != tc.op {
				t.Fatalf("expected op %q, got %q", tc.op, le.Op)
			}
		})
	}
}

func TestLoadOrEmptyFallsBack(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	c := LoadOrEmpty(context.Background(), FileSource{Path: "/does/not/exist.json"}, logger)
	if len(c) != 0 {
		t.Fatalf("expected empty corpus, got %d entries", len(c))
	}
	if !strings.Contains(logs.String(), "corpus unavailable") {
		t.Fatalf("expected warning to be logged, got %q", logs.String())
	}
	if got := NewSeededSelector(1).Select(c); got != Fallback {
		t.Fatalf("expected fallback, got %#v", got)
	}

	static := Static{{Reference: "Ps 1:1", Body: "Blessed is the man"}}
	if got := LoadOrEmpty(context.Background(), static, nil); len(got) != 1 {
		t.Fatalf("expected static corpus to pass through, got %#v", got)
	}
}
