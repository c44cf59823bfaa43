package matcher

import (
	"context"
	"fmt"
	"sync"

	"go.elara.ws/pcre"
)

// PCREStrategy matches using PCRE2-compatible regexes via the pure Go pcre
// package. Supports lookaround, backreferences and atomic groups.
type PCREStrategy struct {
	mu sync.Mutex
	re *pcre.Regexp
}

// NewPCREStrategy compiles a PCRE2 pattern, caseless unless matchCase.
func NewPCREStrategy(pattern string, matchCase bool) (*PCREStrategy, error) {
	var opts pcre.CompileOption
	if !matchCase {
		opts |= pcre.Caseless
	}

	re, err := pcre.CompileOpts(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &PCREStrategy{re: re}, nil
}

func (s *PCREStrategy) Name() string { return "regex" }

func (s *PCREStrategy) FindAll(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.re == nil {
		return nil, nil
	}
	return spansFromLocs(s.re.FindAllIndex([]byte(text), -1), len(text)), nil
}

// Close releases the compiled pattern.
func (s *PCREStrategy) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.re != nil {
		s.re.Close()
		s.re = nil
	}
	return nil
}
