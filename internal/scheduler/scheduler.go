// Package scheduler runs per-item work concurrently while keeping results
// in issue order.
package scheduler

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/input"
	"github.com/dl/vsearch/internal/matcher"
	"github.com/dl/vsearch/internal/walker"
)

// Scheduler bounds how many per-item operations run at once.
type Scheduler struct {
	workers int
}

// New creates a Scheduler with the given number of workers.
// If workers is 0, defaults to NumCPU * 2.
func New(workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &Scheduler{workers: workers}
}

// Workers returns the concurrency limit.
func (s *Scheduler) Workers() int { return s.workers }

// Matches runs strategy over every node as one batch and returns the spans
// concatenated in node order, whatever order the calls complete in. Only
// context cancellation fails the batch.
func (s *Scheduler) Matches(ctx context.Context, e *matcher.Engine, strategy matcher.Strategy, nodes []*document.Text) ([]document.Range, error) {
	perNode := make([][]document.Range, len(nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, node := range nodes {
		g.Go(func() error {
			ranges, err := e.Find(ctx, strategy, node)
			if err != nil {
				return err
			}
			perNode[i] = ranges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(perNode...), nil
}

// Loaded is one document file read and parsed by Documents.
type Loaded struct {
	Path   string
	Doc    *document.Document
	Binary bool // skipped: content looks binary
	Err    error
}

// Documents reads and parses paths concurrently. Results are in path order;
// per-file failures are reported in Loaded.Err and do not stop the batch.
func (s *Scheduler) Documents(ctx context.Context, paths []string, maxSize int64) ([]Loaded, error) {
	out := make([]Loaded, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = load(path, input.ForPath(path, maxSize))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func load(path string, r input.Reader) Loaded {
	result := Loaded{Path: path}

	res, err := r.Read(path)
	if err != nil {
		result.Err = err
		return result
	}
	defer res.Closer()

	// Binary detection: skip binary files entirely (like ripgrep)
	if walker.IsBinary(res.Data) {
		result.Binary = true
		return result
	}

	result.Doc, result.Err = document.Load(path, res.Data)
	return result
}
