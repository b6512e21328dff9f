package corpus

import (
	"errors"
	"fmt"
)

// ErrLoad marks every failure to produce a corpus from its backing resource.
var ErrLoad = errors.New("corpus unavailable")

// LoadError reports a missing, unreadable or malformed corpus resource.
type LoadError struct {
	Op   string // "open", "read", "decompress", "parse", "query"
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corpus: failed to %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("corpus: failed to %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) hold for any *LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func loadErr(op, path string, err error) error {
	return &LoadError{Op: op, Path: path, Err: err}
}
