// Package normalize converts text to its canonical search form and records
// where every byte of the converted text came from in the original.
package normalize

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/dl/vsearch/internal/convert"
)

// SourceMap translates offsets in normalized text back to the original.
// Entry i of Starts is the original offset of the character that produced
// normalized byte i; entry i of ends is where that character ends. Both are
// non-decreasing.
type SourceMap struct {
	starts  []int
	ends    []int
	origLen int
}

// Len returns the length of the normalized text the map describes.
func (m SourceMap) Len() int { return len(m.starts) }

// Starts returns the raw start table. Callers must not modify it.
func (m SourceMap) Starts() []int { return m.starts }

// Start maps a normalized offset to the start of its source character.
// Offsets at or past the end of the map map to the original length.
func (m SourceMap) Start(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(m.starts) {
		return m.origLen
	}
	return m.starts[i]
}

// Span maps normalized bytes [i, i+n) to original bytes [start, end). The
// end covers the whole source character of the last normalized byte, so a
// match that stops inside a one-to-many expansion still covers the
// character that produced it.
func (m SourceMap) Span(i, n int) (start, end int) {
	start = m.Start(i)
	if n <= 0 {
		return start, start
	}
	last := i + n - 1
	if last >= len(m.ends) {
		return start, m.origLen
	}
	return start, m.ends[last]
}

// Result is a normalized string plus its source map.
type Result struct {
	Original   string
	Normalized string
	Map        SourceMap
}

// Identity returns s unchanged with the identity map.
func Identity(s string) Result {
	starts := make([]int, len(s))
	ends := make([]int, len(s))
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for j := i; j < i+size; j++ {
			starts[j] = j
			ends[j] = i + size
		}
		i += size
	}
	return Result{Original: s, Normalized: s, Map: SourceMap{starts: starts, ends: ends, origLen: len(s)}}
}

// Normalize converts s through conv, case folding first when fold is set.
// With a nil converter and no folding the input comes back unchanged with
// the identity map. A converter that is not ready yields
// convert.ErrNotReady.
//
// The whole string is converted once for the normalized value, then every
// original character is converted on its own to learn how many normalized
// bytes it accounts for; conversion is neither length preserving nor
// invertible, so offsets cannot be derived from the whole-string result.
// When per-character lengths disagree with the whole-string conversion
// (phrase entries) the map is truncated, or padded with the original length.
func Normalize(ctx context.Context, conv convert.Converter, s string, fold bool) (Result, error) {
	if conv == nil && !fold {
		return Identity(s), nil
	}
	if conv != nil && !convert.Ready(conv) {
		return Result{}, convert.ErrNotReady
	}

	transform := transformer(ctx, conv, fold)

	normalized, err := transform(s)
	if err != nil {
		return Result{}, fmt.Errorf("normalize: %w", err)
	}

	starts := make([]int, 0, len(normalized))
	ends := make([]int, 0, len(normalized))
	for i := 0; i < len(s) && len(starts) < len(normalized); {
		_, size := utf8.DecodeRuneInString(s[i:])
		ch := s[i : i+size]
		out, err := transform(ch)
		if err != nil {
			return Result{}, fmt.Errorf("normalize %q: %w", ch, err)
		}
		for range len(out) {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		i += size
	}
	if len(starts) > len(normalized) {
		starts, ends = starts[:len(normalized)], ends[:len(normalized)]
	}
	for len(starts) < len(normalized) {
		starts = append(starts, len(s))
		ends = append(ends, len(s))
	}

	return Result{
		Original:   s,
		Normalized: normalized,
		Map:        SourceMap{starts: starts, ends: ends, origLen: len(s)},
	}, nil
}

// String normalizes s without building a map. Used for keywords.
func String(ctx context.Context, conv convert.Converter, s string, fold bool) (string, error) {
	if conv != nil && !convert.Ready(conv) {
		return "", convert.ErrNotReady
	}
	out, err := transformer(ctx, conv, fold)(s)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}

func transformer(ctx context.Context, conv convert.Converter, fold bool) func(string) (string, error) {
	var caser cases.Caser
	if fold {
		caser = cases.Fold()
	}
	return func(text string) (string, error) {
		if fold {
			text = caser.String(text)
		}
		if conv == nil {
			return text, nil
		}
		return conv.Convert(ctx, text)
	}
}
