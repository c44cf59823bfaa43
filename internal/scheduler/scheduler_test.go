package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dl/vsearch/internal/convert"
	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/matcher"
)

func newEngine(conv convert.Converter) *matcher.Engine {
	return matcher.NewEngine(matcher.EngineOptions{
		Converter: conv,
		Logger:    log.NewWithOptions(io.Discard, log.Options{}),
	})
}

func nodes(n int) (*document.Document, []*document.Text) {
	d := document.New()
	var out []*document.Text
	for i := range n {
		p := d.NewElement("p")
		d.AppendChild(d.Root(), p)
		t := d.NewText(fmt.Sprintf("node %d key", i))
		d.AppendChild(p, t)
		out = append(out, t)
	}
	return d, out
}

func TestMatches_PreservesNodeOrder(t *testing.T) {
	// Each conversion sleeps a random amount so calls finish out of order.
	jitter := convert.Func(func(ctx context.Context, s string) (string, error) {
		time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond)
		return s, nil
	})
	e := newEngine(jitter)
	_, ns := nodes(50)

	strategy, err := e.NewStrategy(context.Background(), "key", matcher.Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := New(8).Matches(context.Background(), e, strategy, ns)
	if err != nil {
		t.Fatalf("Matches() error: %v", err)
	}
	if len(got) != len(ns) {
		t.Fatalf("got %d matches, want %d", len(got), len(ns))
	}
	for i, r := range got {
		if r.Node != ns[i] {
			t.Fatalf("match %d anchored to the wrong node", i)
		}
		if r.Text() != "key" {
			t.Errorf("match %d text = %q, want key", i, r.Text())
		}
	}
}

func TestMatches_Cancelled(t *testing.T) {
	e := newEngine(nil)
	_, ns := nodes(10)
	strategy, err := e.NewStrategy(context.Background(), "key", matcher.Options{ExactMatch: true})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(2).Matches(ctx, e, strategy, ns); !errors.Is(err, context.Canceled) {
		t.Errorf("Matches() error = %v, want context.Canceled", err)
	}
}

func TestMatches_Empty(t *testing.T) {
	e := newEngine(nil)
	strategy, _ := e.NewStrategy(context.Background(), "key", matcher.Options{})
	got, err := New(0).Matches(context.Background(), e, strategy, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Matches(no nodes) = (%v, %v)", got, err)
	}
}

func TestDocuments(t *testing.T) {
	dir := t.TempDir()
	html := filepath.Join(dir, "a.html")
	text := filepath.Join(dir, "b.txt")
	bin := filepath.Join(dir, "c.dat")
	missing := filepath.Join(dir, "missing.html")
	os.WriteFile(html, []byte("<html><body><p>資訊</p></body></html>"), 0644)
	os.WriteFile(text, []byte("line one\nline two\n"), 0644)
	os.WriteFile(bin, []byte("ab\x00cd"), 0644)

	got, err := New(4).Documents(context.Background(), []string{html, text, bin, missing}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4", len(got))
	}
	for i, want := range []string{html, text, bin, missing} {
		if got[i].Path != want {
			t.Errorf("result %d path = %s, want %s", i, got[i].Path, want)
		}
	}
	if got[0].Err != nil || got[0].Doc == nil {
		t.Errorf("html: %+v", got[0])
	}
	if got[1].Err != nil || got[1].Doc == nil {
		t.Errorf("text: %+v", got[1])
	}
	if !got[2].Binary || got[2].Doc != nil {
		t.Errorf("binary: %+v", got[2])
	}
	if !errors.Is(got[3].Err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want not exist", got[3].Err)
	}
}
