package matcher

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dl/vsearch/internal/convert"
	"github.com/dl/vsearch/internal/document"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func tradToSimp() *convert.Table {
	return convert.NewTable(map[string][]string{
		"資":  {"资"},
		"訊":  {"讯"},
		"術":  {"术"},
		"資訊": {"信息"},
		"體":  {"体"},
		"後":  {"后"},
	})
}

func textNode(data string) *document.Text {
	d := document.New()
	t := d.NewText(data)
	p := d.NewElement("p")
	d.AppendChild(d.Root(), p)
	d.AppendChild(p, t)
	return t
}

func TestEngine_Collect(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		opts    Options
		input   string
		want    []Span
	}{
		{
			name:    "exact case insensitive",
			keyword: "world",
			opts:    Options{ExactMatch: true},
			input:   "Hello World",
			want:    []Span{{6, 11}},
		},
		{
			name:    "exact case sensitive miss",
			keyword: "world",
			opts:    Options{ExactMatch: true, MatchCase: true},
			input:   "Hello World",
		},
		{
			name:    "exact non-overlapping",
			keyword: "aa",
			opts:    Options{ExactMatch: true, MatchCase: true},
			input:   "aaaaa",
			want:    []Span{{0, 2}, {2, 4}},
		},
		{
			name:    "variant traditional text simplified keyword",
			keyword: "信息技术",
			input:   "資訊技術",
			want:    []Span{{0, 12}},
		},
		{
			name:    "variant inside mixed text",
			keyword: "体系",
			input:   "the 體系 is",
			want:    []Span{{4, 10}},
		},
		{
			name:    "variant with latin-1 byte",
			keyword: "ok",
			input:   "caf\xe9 ok",
			want:    []Span{{5, 7}},
		},
		{
			name:    "variant phrase after invalid byte",
			keyword: "信息",
			opts:    Options{MatchCase: true},
			input:   "caf\xe9 資訊",
			want:    []Span{{5, 11}},
		},
		{
			name:    "variant keyword in traditional form",
			keyword: "後來",
			input:   "后來 and 後來",
			want:    []Span{{0, 6}, {11, 17}},
		},
		{
			name:    "variant folds case",
			keyword: "HELLO",
			input:   "say hello",
			want:    []Span{{4, 9}},
		},
		{
			name:    "variant match case",
			keyword: "HELLO",
			opts:    Options{MatchCase: true},
			input:   "say hello",
		},
		{
			name:    "regex case insensitive",
			keyword: `w\w+`,
			opts:    Options{UseRegex: true},
			input:   "Hello World wide",
			want:    []Span{{6, 11}, {12, 16}},
		},
		{
			name:    "regex beats exact",
			keyword: "a.c",
			opts:    Options{UseRegex: true, ExactMatch: true},
			input:   "abc a.c",
			want:    []Span{{0, 3}, {4, 7}},
		},
		{
			name:    "exact beats variant",
			keyword: "信息",
			opts:    Options{ExactMatch: true},
			input:   "資訊",
		},
		{
			name:    "regex skips zero-length",
			keyword: "a*",
			opts:    Options{UseRegex: true},
			input:   "bbb",
		},
		{
			name:    "regex does not normalize variants",
			keyword: "信息",
			opts:    Options{UseRegex: true},
			input:   "資訊",
		},
		{
			name:    "invalid pattern yields nothing",
			keyword: "a(",
			opts:    Options{UseRegex: true},
			input:   "a(",
		},
		{
			name:    "blank keyword",
			keyword: "  \t",
			input:   "  \t",
		},
	}

	e := NewEngine(EngineOptions{Converter: tradToSimp(), Logger: quietLogger()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := textNode(tt.input)
			got, err := e.Collect(context.Background(), tt.keyword, node, tt.opts)
			if err != nil {
				t.Fatalf("Collect() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches %v, want %d", len(got), got, len(tt.want))
			}
			for i, r := range got {
				if r.Node != node {
					t.Errorf("match[%d] anchored to wrong node", i)
				}
				if r.Start != tt.want[i].Start || r.End != tt.want[i].End {
					t.Errorf("match[%d] = [%d,%d), want [%d,%d)", i, r.Start, r.End, tt.want[i].Start, tt.want[i].End)
				}
			}
		})
	}
}

func TestEngine_WholeWord(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		opts    Options
		input   string
		want    []Span
	}{
		{
			name:    "exact",
			keyword: "cat",
			opts:    Options{ExactMatch: true, WholeWord: true},
			input:   "cat concat cat.",
			want:    []Span{{0, 3}, {11, 14}},
		},
		{
			name:    "regex",
			keyword: "cat",
			opts:    Options{UseRegex: true, WholeWord: true},
			input:   "cats cat",
			want:    []Span{{5, 8}},
		},
		{
			name:    "variant",
			keyword: "cat",
			opts:    Options{WholeWord: true},
			input:   "Cat catalog",
			want:    []Span{{0, 3}},
		},
		{
			name:    "variant han",
			keyword: "信息",
			opts:    Options{WholeWord: true},
			input:   "資訊",
			want:    []Span{{0, 6}},
		},
	}

	e := NewEngine(EngineOptions{Converter: tradToSimp(), Logger: quietLogger()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Collect(context.Background(), tt.keyword, textNode(tt.input), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Start != tt.want[i].Start || r.End != tt.want[i].End {
					t.Errorf("match[%d] = [%d,%d), want [%d,%d)", i, r.Start, r.End, tt.want[i].Start, tt.want[i].End)
				}
			}
		})
	}
}

func TestEngine_NewStrategy(t *testing.T) {
	e := NewEngine(EngineOptions{Logger: quietLogger()})
	ctx := context.Background()

	s, err := e.NewStrategy(ctx, "   ", Options{})
	if err != nil || s != nil {
		t.Errorf("blank keyword: got (%v, %v), want (nil, nil)", s, err)
	}

	if _, err := e.NewStrategy(ctx, "[", Options{UseRegex: true}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("invalid pattern: error = %v, want ErrInvalidPattern", err)
	}

	names := []struct {
		opts Options
		want string
	}{
		{Options{UseRegex: true, ExactMatch: true}, "regex"},
		{Options{ExactMatch: true}, "exact"},
		{Options{}, "variant"},
		{Options{WholeWord: true}, "variant"},
	}
	for _, tt := range names {
		s, err := e.NewStrategy(ctx, "abc", tt.opts)
		if err != nil {
			t.Fatal(err)
		}
		if s.Name() != tt.want {
			t.Errorf("NewStrategy(%+v) = %s, want %s", tt.opts, s.Name(), tt.want)
		}
		Release(s)
	}
}

func TestEngine_NilConverterDegradesToIdentity(t *testing.T) {
	e := NewEngine(EngineOptions{Logger: quietLogger()})
	got, err := e.Collect(context.Background(), "資訊", textNode("資訊 and 资讯"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Start != 0 || got[0].End != 6 {
		t.Errorf("got %v, want one match at [0,6)", got)
	}
}

func TestEngine_ConverterNotReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lazy := convert.Load(ctx, func(ctx context.Context) (convert.Converter, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	e := NewEngine(EngineOptions{Converter: lazy, Logger: quietLogger()})
	got, err := e.Collect(context.Background(), "信息", textNode("資訊 信息"), Options{})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d matches before converter loaded, want 0", len(got))
	}

	// Exact and regex do not depend on the converter.
	got, err = e.Collect(context.Background(), "信息", textNode("資訊 信息"), Options{ExactMatch: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("exact: got %d matches, want 1", len(got))
	}
}

func TestEngine_ConverterBecomesReady(t *testing.T) {
	release := make(chan struct{})
	lazy := convert.Load(context.Background(), func(ctx context.Context) (convert.Converter, error) {
		<-release
		return tradToSimp(), nil
	})
	e := NewEngine(EngineOptions{Converter: lazy, Logger: quietLogger()})

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := lazy.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := e.Collect(context.Background(), "信息", textNode("資訊"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d matches after load, want 1", len(got))
	}
}

func TestEngine_FindCancelled(t *testing.T) {
	e := NewEngine(EngineOptions{Logger: quietLogger()})
	s, err := e.NewStrategy(context.Background(), "x", Options{ExactMatch: true})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Find(ctx, s, textNode("xxx")); !errors.Is(err, context.Canceled) {
		t.Errorf("Find() error = %v, want context.Canceled", err)
	}
}

func TestRegexStrategy_ZeroLength(t *testing.T) {
	s, err := NewRegexStrategy("a*", true)
	if err != nil {
		t.Fatal(err)
	}
	text := "bbabb"
	spans, err := s.FindAll(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 1 || spans[0] != (Span{2, 3}) {
		t.Errorf("spans = %v, want [{2 3}]", spans)
	}
	for _, sp := range spans {
		if sp.End > len(text) {
			t.Errorf("span %v exceeds text length %d", sp, len(text))
		}
	}
}

func TestRegexStrategy_Prefilter(t *testing.T) {
	s, err := NewRegexStrategy(`timeout\d+`, true)
	if err != nil {
		t.Fatal(err)
	}
	if s.literal != "timeout" {
		t.Errorf("literal = %q, want timeout", s.literal)
	}
	spans, _ := s.FindAll(context.Background(), "a timeout42 b")
	if len(spans) != 1 || spans[0] != (Span{2, 11}) {
		t.Errorf("spans = %v, want [{2 11}]", spans)
	}

	ci, err := NewRegexStrategy(`timeout\d+`, false)
	if err != nil {
		t.Fatal(err)
	}
	if ci.literal != "" {
		t.Errorf("case-insensitive literal = %q, want none", ci.literal)
	}
	spans, _ = ci.FindAll(context.Background(), "TIMEOUT7")
	if len(spans) != 1 {
		t.Errorf("case-insensitive got %d spans, want 1", len(spans))
	}
}

func TestExactStrategy_FoldChangesLength(t *testing.T) {
	s, err := NewExactStrategy(context.Background(), "İstanbul", false)
	if err != nil {
		t.Fatal(err)
	}
	text := "go to İSTANBUL now"
	spans, err := s.FindAll(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := text[spans[0].Start:spans[0].End]; got != "İSTANBUL" {
		t.Errorf("span text = %q, want İSTANBUL", got)
	}
}
