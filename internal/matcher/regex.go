package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RegexStrategy matches with Go's RE2 engine. The keyword is the pattern;
// variants are not normalized.
type RegexStrategy struct {
	re      *regexp.Regexp
	literal string // required literal, empty when none
}

// NewRegexStrategy compiles pattern, case-insensitively unless matchCase.
func NewRegexStrategy(pattern string, matchCase bool) (*RegexStrategy, error) {
	s := &RegexStrategy{}
	if matchCase {
		s.literal, _ = requiredLiteral(pattern)
	} else {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	s.re = re
	return s, nil
}

func (s *RegexStrategy) Name() string { return "regex" }

func (s *RegexStrategy) FindAll(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.literal != "" && !strings.Contains(text, s.literal) {
		return nil, nil
	}
	return spansFromLocs(s.re.FindAllStringIndex(text, -1), len(text)), nil
}

// spansFromLocs converts engine match locations to spans, dropping
// zero-length matches and clamping to the text length.
func spansFromLocs(locs [][]int, n int) []Span {
	var spans []Span
	for _, loc := range locs {
		start, end := loc[0], min(loc[1], n)
		if end <= start {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}
