package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultTable is the table read by LoadSQLite when none is given.
const DefaultTable = "verses"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads passages from a SQLite table. The table must have a text
// column ("text" or "body") and either a "reference" column or
// "book"/"chapter"/"verse" columns.
func LoadSQLite(ctx context.Context, path, table string) (Corpus, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identPattern.MatchString(table) {
		return nil, loadErr("query", path, fmt.Errorf("invalid table name %q", table))
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, loadErr("open", path, err)
	}
	defer db.Close()

	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, loadErr("query", path, err)
	}
	if len(cols) == 0 {
		return nil, loadErr("query", path, fmt.Errorf("table %s not found", table))
	}

	textCol := ""
	for _, c := range []string{"text", "body"} {
		if cols[c] {
			textCol = c
			break
		}
	}
	if textCol == "" {
		return nil, loadErr("parse", path, fmt.Errorf("table %s has no text column", table))
	}

	switch {
	case cols["reference"]:
		q := fmt.Sprintf("SELECT reference, %s FROM %s ORDER BY rowid", textCol, table)
		return scanPairs(ctx, db, path, q, func(rows *sql.Rows) (VersePair, error) {
			var ref, body sql.NullString
			err := rows.Scan(&ref, &body)
			return VersePair{Reference: strings.TrimSpace(ref.String), Body: strings.TrimSpace(body.String)}, err
		})
	case cols["book"] && cols["chapter"] && cols["verse"]:
		q := fmt.Sprintf("SELECT book, chapter, verse, %s FROM %s ORDER BY rowid", textCol, table)
		return scanPairs(ctx, db, path, q, func(rows *sql.Rows) (VersePair, error) {
			var rec record
			var body sql.NullString
			if err := rows.Scan(&rec.Book, &rec.Chapter, &rec.Verse, &body); err != nil {
				return VersePair{}, err
			}
			rec.Text = body.String
			return rec.pair(), nil
		})
	default:
		return nil, loadErr("parse", path, fmt.Errorf("table %s has neither reference nor book/chapter/verse columns", table))
	}
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   sql.NullString
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func scanPairs(ctx context.Context, db *sql.DB, path, query string, scan func(*sql.Rows) (VersePair, error)) (Corpus, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, loadErr("query", path, err)
	}
	defer rows.Close()

	var out Corpus
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, loadErr("read", path, err)
		}
		if p.Body == "" {
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr("read", path, err)
	}
	return out, nil
}

// readOnlyDSN builds a read-only SQLite URI. The path is made absolute and
// escaped so '#' and '?' in directory or file names stay part of the path.
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}).String()
}
