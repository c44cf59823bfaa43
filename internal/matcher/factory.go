package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dl/vsearch/internal/convert"
	"github.com/dl/vsearch/internal/document"
)

// ErrInvalidPattern reports a keyword that does not compile as a regex.
var ErrInvalidPattern = errors.New("invalid pattern")

// RegexEngine selects the regex implementation.
type RegexEngine string

const (
	RE2  RegexEngine = "re2"
	PCRE RegexEngine = "pcre"
)

// EngineOptions configure an Engine.
type EngineOptions struct {
	// Converter normalizes variants for the default strategy. nil falls
	// back to case folding alone.
	Converter convert.Converter
	Regex     RegexEngine
	Logger    *log.Logger
}

// Engine builds strategies and runs them over document text nodes.
type Engine struct {
	conv   convert.Converter
	regex  RegexEngine
	logger *log.Logger
}

// NewEngine creates an Engine. The converter is wrapped so that concurrent
// strategies never interleave a mode change with another's conversion.
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{regex: opts.Regex, logger: opts.Logger}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.regex == "" {
		e.regex = RE2
	}
	if opts.Converter != nil {
		e.conv = convert.NewSerialized(opts.Converter).WithMode(convert.ModeOneToOne)
	}
	return e
}

// NewStrategy creates the strategy for keyword.
// Selection logic:
//   - UseRegex -> RegexStrategy (RE2) or PCREStrategy
//   - ExactMatch -> ExactStrategy
//   - Otherwise -> VariantStrategy
//
// A blank keyword returns a nil strategy. An invalid pattern is logged and
// returned as ErrInvalidPattern. A converter that is still loading yields a
// strategy that matches nothing.
func (e *Engine) NewStrategy(ctx context.Context, keyword string, opts Options) (Strategy, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, nil
	}

	var (
		s   Strategy
		err error
	)
	switch {
	case opts.UseRegex && e.regex == PCRE:
		s, err = NewPCREStrategy(keyword, opts.MatchCase)
	case opts.UseRegex:
		s, err = NewRegexStrategy(keyword, opts.MatchCase)
	case opts.ExactMatch:
		s, err = NewExactStrategy(ctx, keyword, opts.MatchCase)
	default:
		s, err = e.newVariant(ctx, keyword, opts.MatchCase)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidPattern) {
			e.logger.Warn("invalid pattern", "pattern", keyword, "err", err)
		}
		return nil, fmt.Errorf("keyword %q: %w", keyword, err)
	}

	if opts.WholeWord {
		s = wordFilter{s}
	}
	return s, nil
}

func (e *Engine) newVariant(ctx context.Context, keyword string, matchCase bool) (Strategy, error) {
	s, err := NewVariantStrategy(ctx, e.conv, keyword, matchCase)
	if errors.Is(err, convert.ErrNotReady) {
		e.logger.Debug("converter not ready, variant search yields no matches", "keyword", keyword)
		return none{name: "variant"}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Find runs s over node's current text and anchors the spans to node.
// Strategy failures for a single node are logged and yield no spans; only
// context cancellation is returned.
func (e *Engine) Find(ctx context.Context, s Strategy, node *document.Text) ([]document.Range, error) {
	if s == nil || node == nil {
		return nil, nil
	}
	spans, err := s.FindAll(ctx, node.Data())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, convert.ErrNotReady) {
			e.logger.Debug("converter not ready", "strategy", s.Name())
		} else {
			e.logger.Warn("match failed", "strategy", s.Name(), "err", err)
		}
		return nil, nil
	}
	if len(spans) == 0 {
		return nil, nil
	}
	ranges := make([]document.Range, len(spans))
	for i, sp := range spans {
		ranges[i] = document.Range{Node: node, Start: sp.Start, End: sp.End}
	}
	return ranges, nil
}

// Collect returns the matches of keyword in one text node. An invalid
// pattern or a blank keyword yields no matches and no error.
func (e *Engine) Collect(ctx context.Context, keyword string, node *document.Text, opts Options) ([]document.Range, error) {
	s, err := e.NewStrategy(ctx, keyword, opts)
	if errors.Is(err, ErrInvalidPattern) {
		return nil, nil
	}
	if err != nil || s == nil {
		return nil, err
	}
	defer Release(s)
	return e.Find(ctx, s, node)
}
