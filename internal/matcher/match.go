package matcher

import (
	"context"
	"io"
)

// Options select and tune the strategy used for one search pass.
// UseRegex wins over ExactMatch, which wins over the normalized default.
type Options struct {
	MatchCase  bool // compare case-sensitively
	WholeWord  bool // keep only spans that start and end on word boundaries
	UseRegex   bool // treat the keyword as a pattern
	ExactMatch bool // literal search without variant normalization
}

// Span is a half-open byte range [Start, End) of the text a strategy ran on.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Strategy finds keyword occurrences in a single text. Implementations are
// built once per search pass and may be called from several goroutines.
type Strategy interface {
	// Name identifies the strategy in logs ("regex", "exact", "variant").
	Name() string

	// FindAll returns non-overlapping, non-empty spans in ascending order.
	FindAll(ctx context.Context, text string) ([]Span, error)
}

// Release frees resources held by s, if any.
func Release(s Strategy) {
	if c, ok := s.(io.Closer); ok {
		c.Close()
	}
}

// none matches nothing. Used when the strategy cannot run, so a pass
// degrades to zero matches.
type none struct{ name string }

func (n none) Name() string { return n.name }

func (none) FindAll(context.Context, string) ([]Span, error) { return nil, nil }
