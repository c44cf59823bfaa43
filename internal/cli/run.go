package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/dl/vsearch/internal/convert"
	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/input"
	"github.com/dl/vsearch/internal/matcher"
	"github.com/dl/vsearch/internal/output"
	"github.com/dl/vsearch/internal/scheduler"
	"github.com/dl/vsearch/internal/session"
	"github.com/dl/vsearch/internal/settings"
	"github.com/dl/vsearch/internal/walker"
)

// Streams are the destinations of a run.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// Run executes the search with the given config.
// Returns exit code: 0 = match found, 1 = no match, 2 = error.
func Run(ctx context.Context, cfg Config) int {
	return RunWith(ctx, cfg, Streams{Out: output.NewWriter(), Err: os.Stderr})
}

// RunWith is Run with explicit output streams.
func RunWith(ctx context.Context, cfg Config, st Streams) int {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(st.Err, log.Options{Level: level})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid arguments", "err", err)
		return 2
	}

	store, err := loadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Error("failed to load settings", "err", err)
		return 2
	}

	conv, err := loadConverter(ctx, cfg.Dictionary)
	if err != nil {
		logger.Error("failed to load dictionary", "path", cfg.Dictionary, "err", err)
		return 2
	}

	engine := matcher.NewEngine(matcher.EngineOptions{
		Converter: conv,
		Regex:     cfg.RegexEngine(),
		Logger:    logger,
	})

	// Reject a bad pattern once here rather than once per document.
	strategy, err := engine.NewStrategy(ctx, cfg.Keyword, cfg.Options())
	if err != nil {
		logger.Error("invalid pattern", "keyword", cfg.Keyword, "err", err)
		return 2
	}
	matcher.Release(strategy)

	paths, err := expandPaths(cfg)
	if errors.Is(err, walker.ErrBadGlob) {
		logger.Error("invalid glob", "err", err)
		return 2
	}
	if err != nil {
		logger.Warn("walk error", "err", err)
	}

	sched := scheduler.New(cfg.Workers)
	loaded, err := sched.Documents(ctx, paths, cfg.MaxSize)
	if err != nil {
		logger.Error("failed to load documents", "err", err)
		return 2
	}

	formatter := newFormatter(cfg, store.Snapshot())
	ow := output.NewOrderedWriter(st.Out, formatter, len(paths) > 1)

	r := &runner{
		cfg:    cfg,
		engine: engine,
		sched:  sched,
		store:  store,
		ow:     ow,
		logger: logger,
		stderr: st.Err,
	}
	views := r.open(loaded)
	defer func() {
		for _, v := range views {
			if v.sess != nil {
				v.sess.Close()
			}
		}
	}()

	if err := r.searchAll(ctx, views); err != nil {
		logger.Error("search failed", "err", err)
		return 2
	}

	if cfg.WatchMode {
		if err := r.follow(ctx, views); err != nil {
			logger.Error("watch failed", "err", err)
			return 2
		}
	}

	if r.matched.Load() {
		return 0
	}
	return 1
}

// view is one loaded document with its search session.
type view struct {
	seq  int
	path string
	doc  *document.Document
	sess *session.Session
	err  error
}

type runner struct {
	cfg     Config
	engine  *matcher.Engine
	sched   *scheduler.Scheduler
	store   *settings.Store
	ow      *output.OrderedWriter
	logger  *log.Logger
	stderr  io.Writer
	matched atomic.Bool
}

// open creates a session for every document that loaded. Failed and
// binary files keep their slot so output stays in path order.
func (r *runner) open(loaded []scheduler.Loaded) []*view {
	views := make([]*view, 0, len(loaded))
	for i, l := range loaded {
		v := &view{seq: i + 1, path: l.Path, doc: l.Doc, err: l.Err}
		switch {
		case l.Err != nil:
			r.logger.Warn("error", "path", l.Path, "err", l.Err)
		case l.Binary:
			r.logger.Debug("skipping binary file", "path", l.Path)
			v.err = errSkipped
		default:
			var exclude *document.Element
			if r.cfg.ExcludeID != "" {
				exclude = l.Doc.ElementByID(r.cfg.ExcludeID)
			}
			v.sess = session.New(session.Options{
				Engine:    r.engine,
				Document:  l.Doc,
				Exclude:   exclude,
				Scheduler: r.sched,
				Logger:    r.logger,
			})
		}
		views = append(views, v)
	}
	return views
}

var errSkipped = errors.New("skipped")

// searchAll runs the keyword over every document concurrently and writes
// the results in path order.
func (r *runner) searchAll(ctx context.Context, views []*view) error {
	results := make(chan output.Result, len(views))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.sched.Workers())
	for _, v := range views {
		g.Go(func() error {
			res := output.Result{FilePath: v.path, SeqNum: v.seq, Current: -1, Err: v.err}
			if v.sess != nil {
				snap, err := v.sess.Run(gctx, r.cfg.Keyword, r.cfg.Options(), session.Manual)
				if err != nil {
					return fmt.Errorf("%s: %w", v.path, err)
				}
				res.Matches, res.Current = snap.Matches, snap.Current
			}
			results <- res
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- r.ow.WriteOrdered(results, func(res output.Result) {
			if res.Err == nil && res.HasMatch() {
				r.matched.Store(true)
			}
		})
	}()

	err := g.Wait()
	close(results)
	if werr := <-done; err == nil {
		err = werr
	}
	return err
}

func loadSettings(path string) (*settings.Store, error) {
	if path == "" {
		return settings.NewStore(settings.Default()), nil
	}
	s, err := settings.Load(path)
	if err != nil {
		return nil, err
	}
	return settings.NewStore(s), nil
}

// loadConverter loads the variant dictionary in the background and waits
// for it, so the first search already folds variants.
func loadConverter(ctx context.Context, path string) (convert.Converter, error) {
	if path == "" {
		return nil, nil
	}
	lazy := convert.Load(ctx, func(ctx context.Context) (convert.Converter, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return convert.ReadTable(f)
	})
	if err := lazy.Wait(ctx); err != nil {
		return nil, err
	}
	return lazy, nil
}

// expandPaths turns the command-line paths into document files. No paths
// means standard input.
func expandPaths(cfg Config) ([]string, error) {
	if len(cfg.Paths) == 0 {
		return []string{input.StdinPath}, nil
	}
	var roots, out []string
	var errs []error
	flush := func() {
		if len(roots) == 0 {
			return
		}
		files, err := walker.Files(roots, walker.FileOptions{Glob: cfg.Glob, NoIgnore: cfg.NoIgnore, Hidden: cfg.Hidden})
		out = append(out, files...)
		if err != nil {
			errs = append(errs, err)
		}
		roots = roots[:0]
	}
	for _, p := range cfg.Paths {
		if p == input.StdinPath {
			flush()
			out = append(out, p)
			continue
		}
		roots = append(roots, p)
	}
	flush()
	return out, errors.Join(errs...)
}

func newFormatter(cfg Config, s settings.Settings) output.Formatter {
	if cfg.JSONOutput {
		return output.NewJSONFormatter()
	}

	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
		lipgloss.SetColorProfile(termenv.TrueColor)
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = output.StdoutIsTerminal()
	}
	return output.NewTextFormatter(cfg.CountOnly, cfg.FileNamesOnly, useColor, cfg.MaxColumns).
		WithStyles(output.StylesFrom(s.Style()))
}
