package matcher

import (
	"context"

	"github.com/dl/vsearch/internal/normalize"
)

// ExactStrategy is a literal substring search without variant
// normalization. Case-insensitive search runs over case-folded text and maps
// hits back through the fold's source map.
type ExactStrategy struct {
	keyword   string // folded when matchCase is false
	matchCase bool
}

// NewExactStrategy prepares keyword for literal search.
func NewExactStrategy(ctx context.Context, keyword string, matchCase bool) (*ExactStrategy, error) {
	if !matchCase {
		folded, err := normalize.String(ctx, nil, keyword, true)
		if err != nil {
			return nil, err
		}
		keyword = folded
	}
	return &ExactStrategy{keyword: keyword, matchCase: matchCase}, nil
}

func (s *ExactStrategy) Name() string { return "exact" }

func (s *ExactStrategy) FindAll(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.matchCase {
		offsets := IndexAll(text, s.keyword)
		spans := make([]Span, 0, len(offsets))
		for _, off := range offsets {
			spans = append(spans, Span{Start: off, End: off + len(s.keyword)})
		}
		return spans, nil
	}

	res, err := normalize.Normalize(ctx, nil, text, true)
	if err != nil {
		return nil, err
	}
	return mapSpans(res, IndexAll(res.Normalized, s.keyword), len(s.keyword)), nil
}

// mapSpans translates hits of length n in res.Normalized to original spans.
// Hits that collapse to nothing or overlap the previous span are dropped.
func mapSpans(res normalize.Result, offsets []int, n int) []Span {
	spans := make([]Span, 0, len(offsets))
	last := 0
	for _, off := range offsets {
		start, end := res.Map.Span(off, n)
		if end <= start || start < last {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
		last = end
	}
	return spans
}
