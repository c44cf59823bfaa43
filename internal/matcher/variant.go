package matcher

import (
	"context"

	"github.com/dl/vsearch/internal/convert"
	"github.com/dl/vsearch/internal/normalize"
)

// VariantStrategy is the default strategy: keyword and text are both
// normalized through the variant converter (case folded first unless
// matchCase), the keyword is searched literally in the normalized text and
// every hit is mapped back to the original through the source map.
//
// The match end is computed from the normalized keyword's length in
// normalized bytes, since conversion can change the keyword's length too.
type VariantStrategy struct {
	conv    convert.Converter // nil normalizes by case folding alone
	keyword string            // normalized
	fold    bool
}

// NewVariantStrategy normalizes keyword through conv. A converter that is
// not ready yields convert.ErrNotReady.
func NewVariantStrategy(ctx context.Context, conv convert.Converter, keyword string, matchCase bool) (*VariantStrategy, error) {
	fold := !matchCase
	nkw, err := normalize.String(ctx, conv, keyword, fold)
	if err != nil {
		return nil, err
	}
	return &VariantStrategy{conv: conv, keyword: nkw, fold: fold}, nil
}

func (s *VariantStrategy) Name() string { return "variant" }

func (s *VariantStrategy) FindAll(ctx context.Context, text string) ([]Span, error) {
	if s.keyword == "" {
		return nil, nil
	}
	res, err := normalize.Normalize(ctx, s.conv, text, s.fold)
	if err != nil {
		return nil, err
	}
	return mapSpans(res, IndexAll(res.Normalized, s.keyword), len(s.keyword)), nil
}
