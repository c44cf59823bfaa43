package matcher

import (
	"context"

	"github.com/rivo/uniseg"
)

// wordBoundaries marks every offset of text that is a Unicode word
// boundary (UAX #29). The result has len(text)+1 entries.
func wordBoundaries(text string) []bool {
	b := make([]bool, len(text)+1)
	b[0] = true
	off := 0
	state := -1
	rest := text
	var word string
	for len(rest) > 0 {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		off += len(word)
		b[off] = true
	}
	return b
}

// wholeWords keeps the spans that start and end on word boundaries.
func wholeWords(text string, spans []Span) []Span {
	if len(spans) == 0 {
		return spans
	}
	b := wordBoundaries(text)
	kept := spans[:0]
	for _, s := range spans {
		if s.Start < s.End && b[s.Start] && b[s.End] {
			kept = append(kept, s)
		}
	}
	return kept
}

// wordFilter applies the whole-word rule on top of any strategy.
type wordFilter struct {
	Strategy
}

func (w wordFilter) FindAll(ctx context.Context, text string) ([]Span, error) {
	spans, err := w.Strategy.FindAll(ctx, text)
	if err != nil {
		return nil, err
	}
	return wholeWords(text, spans), nil
}

func (w wordFilter) Close() error {
	Release(w.Strategy)
	return nil
}
