package input

import (
	"io"
	"os"
)

// StdinReader reads a whole document from stdin.
type StdinReader struct {
	in      io.Reader
	maxSize int64
}

// NewStdinReader creates a StdinReader. maxSize <= 0 selects DefaultMaxSize.
func NewStdinReader(maxSize int64) *StdinReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &StdinReader{in: os.Stdin, maxSize: maxSize}
}

func (r *StdinReader) Read(_ string) (ReadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r.in, r.maxSize+1))
	if err != nil {
		return ReadResult{}, err
	}
	if int64(len(data)) > r.maxSize {
		return ReadResult{}, tooLarge("<stdin>", int64(len(data)), r.maxSize)
	}
	return ReadResult{Data: data, Closer: noopCloser}, nil
}
