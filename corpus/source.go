package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Source is the capability that produces a corpus. Implementations return a
// *LoadError when the backing resource is missing, unreadable or malformed.
type Source interface {
	Load(ctx context.Context) (Corpus, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Corpus, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) (Corpus, error) { return f(ctx) }

// Static serves an in-memory corpus.
type Static Corpus

// Load implements Source.
func (s Static) Load(context.Context) (Corpus, error) { return Corpus(s), nil }

// FileSource loads a corpus file, choosing the decoder from its extension:
// .json, .xml/.osis, .db/.sqlite/.sqlite3, each optionally compressed as .xz
// (except SQLite, which must be stored uncompressed).
type FileSource struct {
	Path  string
	Table string // SQLite table; DefaultTable when empty
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (Corpus, error) {
	return LoadFile(ctx, s.Path, s.Table)
}

// LoadFile is FileSource{Path: path, Table: table}.Load.
func LoadFile(ctx context.Context, path, table string) (Corpus, error) {
	if path == "" {
		return nil, loadErr("open", path, fmt.Errorf("no corpus path configured"))
	}
	name := strings.ToLower(path)
	compressed := strings.HasSuffix(name, ".xz")
	ext := filepath.Ext(strings.TrimSuffix(name, ".xz"))

	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		if compressed {
			return nil, loadErr("open", path, fmt.Errorf("compressed SQLite corpora are not supported"))
		}
		if _, err := os.Stat(path); err != nil {
			return nil, loadErr("open", path, err)
		}
		return LoadSQLite(ctx, path, table)
	case ".json", ".xml", ".osis":
	default:
		return nil, loadErr("open", path, fmt.Errorf("unsupported corpus format %q", ext))
	}

	data, err := readFile(path, compressed)
	if err != nil {
		return nil, err
	}

	var c Corpus
	if ext == ".json" {
		c, err = ParseJSON(data)
	} else {
		c, err = ParseOSIS(bytes.NewReader(data))
	}
	if err != nil {
		return nil, loadErr("parse", path, err)
	}
	return c, nil
}

func readFile(path string, compressed bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, loadErr("decompress", path, err)
		}
		r = xzr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		op := "read"
		if compressed {
			op = "decompress"
		}
		return nil, loadErr(op, path, err)
	}
	return data, nil
}

// LoadOrEmpty loads from src and degrades any failure to an empty corpus,
// which the selector turns into the Fallback passage. The error is logged, not
// returned: a missing corpus must never prevent a frame from being drawn.
func LoadOrEmpty(ctx context.Context, src Source, logger *slog.Logger) Corpus {
	if src == nil {
		return nil
	}
	c, err := src.Load(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("corpus unavailable, using fallback passage", "error", err)
		}
		return nil
	}
	return c
}
