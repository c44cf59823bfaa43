// Package input reads document files into memory for parsing.
package input

import (
	"errors"
	"fmt"
)

// DefaultMaxSize bounds how much of a single document is loaded.
const DefaultMaxSize = 64 << 20

// ErrTooLarge reports a document larger than the reader's limit.
var ErrTooLarge = errors.New("document too large")

// ReadResult holds the data read from a file and a cleanup function.
// Data is only valid until Closer is called.
type ReadResult struct {
	Data   []byte
	Closer func() error
}

// noopCloser is a package-level no-op closer to avoid allocating a func literal per file.
func noopCloser() error { return nil }

// Reader reads document content into a byte slice.
type Reader interface {
	Read(path string) (ReadResult, error)
}

// StdinPath names standard input on the command line.
const StdinPath = "-"

// ForPath returns the reader for path: stdin for "-", files otherwise.
func ForPath(path string, maxSize int64) Reader {
	if path == StdinPath {
		return NewStdinReader(maxSize)
	}
	return NewBufferedReader(maxSize)
}

func tooLarge(path string, size, limit int64) error {
	return fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, size, limit)
}
