// Package session owns one search over one document: the keyword and
// options last searched, the committed matches, the current match and the
// generation counter that keeps only the latest search's results.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/matcher"
	"github.com/dl/vsearch/internal/scheduler"
	"github.com/dl/vsearch/internal/walker"
)

const (
	DefaultInputDelay    = 200 * time.Millisecond
	DefaultMutationDelay = 500 * time.Millisecond
)

var (
	// ErrSuperseded is returned by Run when a newer search started before
	// this one finished. Its results were discarded.
	ErrSuperseded = errors.New("session: search superseded")
	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("session: closed")
)

// State is the controller state.
type State int

const (
	Idle      State = iota // no keyword
	Searching              // a search is in flight
	Settled                // matches committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Settled:
		return "settled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Trigger says why a search runs.
type Trigger int

const (
	Manual Trigger = iota // the user typed or submitted a keyword
	Auto                  // the document changed under a settled search
)

func (t Trigger) String() string {
	if t == Auto {
		return "auto"
	}
	return "manual"
}

// Options configure a Session.
type Options struct {
	Engine    *matcher.Engine
	Document  *document.Document
	Exclude   *document.Element // the tool's own UI, never searched
	Scheduler *scheduler.Scheduler

	InputDelay    time.Duration // debounce for Input, default 200ms
	MutationDelay time.Duration // debounce for document changes, default 500ms

	Logger *log.Logger
}

// Session is the search controller. All methods are safe for concurrent use.
type Session struct {
	engine        *matcher.Engine
	doc           *document.Document
	exclude       *document.Element
	sched         *scheduler.Scheduler
	inputDelay    time.Duration
	mutationDelay time.Duration
	logger        *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.Mutex
	generation    uint64
	state         State
	keyword       string
	opts          matcher.Options
	matches       []document.Range
	current       int
	err           error
	visible       bool
	closed        bool
	inputTimer    *time.Timer
	mutationTimer *time.Timer
	subs          map[int]chan Snapshot
	nextSub       int
}

// New creates a Session and starts watching the document for changes.
func New(opts Options) *Session {
	s := &Session{
		engine:        opts.Engine,
		doc:           opts.Document,
		exclude:       opts.Exclude,
		sched:         opts.Scheduler,
		inputDelay:    opts.InputDelay,
		mutationDelay: opts.MutationDelay,
		logger:        opts.Logger,
		current:       -1,
		subs:          make(map[int]chan Snapshot),
		done:          make(chan struct{}),
	}
	if s.engine == nil {
		s.engine = matcher.NewEngine(matcher.EngineOptions{Logger: opts.Logger})
	}
	if s.sched == nil {
		s.sched = scheduler.New(0)
	}
	if s.inputDelay <= 0 {
		s.inputDelay = DefaultInputDelay
	}
	if s.mutationDelay <= 0 {
		s.mutationDelay = DefaultMutationDelay
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	changes, unsubscribe := s.doc.Subscribe()
	go s.watch(changes, unsubscribe)
	return s
}

// Run searches for keyword now. Every call starts a new generation; when it
// completes, its results are committed only if no newer search started in
// the meantime, otherwise they are dropped and ErrSuperseded is returned.
//
// A manual search selects the first match. An automatic re-search keeps
// the previously current match selected if an identical span (same node and
// offsets) is still found, and falls back to the first match otherwise.
//
// An invalid pattern commits an empty result with Snapshot.Err set. Any
// other failure leaves the committed matches untouched.
func (s *Session) Run(ctx context.Context, keyword string, opts matcher.Options, trigger Trigger) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	s.generation++
	gen := s.generation

	if strings.TrimSpace(keyword) == "" {
		s.keyword, s.opts = "", opts
		s.matches, s.current, s.err = nil, -1, nil
		s.state = Idle
		snap := s.snapshotLocked()
		s.publishLocked(snap)
		s.mu.Unlock()
		return snap, nil
	}

	var prev document.Range
	keep := trigger == Auto && s.current >= 0 && s.current < len(s.matches)
	if keep {
		prev = s.matches[s.current]
	}
	before := s.state
	s.state = Searching
	s.mu.Unlock()

	ranges, searchErr, err := s.search(ctx, keyword, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale results", "generation", gen, "current", s.generation)
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		s.state = before
		return Snapshot{}, err
	}

	current := -1
	if len(ranges) > 0 {
		current = 0
		if keep {
			for i, r := range ranges {
				if r.Same(prev) {
					current = i
					break
				}
			}
		}
	}
	s.keyword, s.opts = keyword, opts
	s.matches, s.current, s.err = ranges, current, searchErr
	s.state = Settled
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	s.logger.Debug("search settled", "keyword", keyword, "trigger", trigger, "matches", len(ranges), "generation", gen)
	return snap, nil
}

// search runs one pass. searchErr is an invalid pattern, reported with an
// empty result; err aborts the pass.
func (s *Session) search(ctx context.Context, keyword string, opts matcher.Options) (ranges []document.Range, searchErr, err error) {
	strategy, err := s.engine.NewStrategy(ctx, keyword, opts)
	if errors.Is(err, matcher.ErrInvalidPattern) {
		return nil, err, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if strategy == nil {
		return nil, nil, nil
	}
	defer matcher.Release(strategy)

	nodes := walker.CollectTextNodes(s.doc.Root(), walker.NodeOptions{Exclude: s.exclude})
	ranges, err = s.sched.Matches(ctx, s.engine, strategy, nodes)
	if err != nil {
		return nil, nil, err
	}
	return ranges, nil, nil
}

// Input records a keystroke. The search runs as a manual search once no
// further input arrives for the input delay.
func (s *Session) Input(keyword string, opts matcher.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.inputTimer != nil {
		s.inputTimer.Stop()
	}
	s.inputTimer = time.AfterFunc(s.inputDelay, func() {
		s.runLogged(keyword, opts, Manual)
	})
}

// SetVisible reports whether the result panel is shown. Document changes
// only trigger re-searches while it is.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

// Navigate moves the current match by step, wrapping around both ends.
// It does nothing when there are no matches.
func (s *Session) Navigate(step int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.matches); n > 0 {
		s.current = ((s.current+step)%n + n) % n
		s.publishLocked(s.snapshotLocked())
	}
	return s.snapshotLocked()
}

// Label returns "{current}/{total}" with a 1-based current, or "0".
func (s *Session) Label() string {
	return s.Snapshot().Label()
}

// Snapshot returns the committed state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Generation: s.generation,
		State:      s.state,
		Keyword:    s.keyword,
		Options:    s.opts,
		Matches:    s.matches,
		Current:    s.current,
		Err:        s.err,
	}
}

// watch schedules automatic re-searches for content changes.
func (s *Session) watch(changes <-chan document.Change, unsubscribe func()) {
	defer close(s.done)
	defer unsubscribe()
	for {
		select {
		case <-s.ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if c.Kind.Content() {
				s.scheduleAuto()
			}
		}
	}
}

func (s *Session) scheduleAuto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.mutationTimer != nil {
		s.mutationTimer.Stop()
	}
	s.mutationTimer = time.AfterFunc(s.mutationDelay, s.autoSearch)
}

func (s *Session) autoSearch() {
	s.mu.Lock()
	if !s.visible || s.keyword == "" || s.closed {
		s.mu.Unlock()
		return
	}
	keyword, opts := s.keyword, s.opts
	s.mu.Unlock()
	s.runLogged(keyword, opts, Auto)
}

func (s *Session) runLogged(keyword string, opts matcher.Options, trigger Trigger) {
	_, err := s.Run(s.ctx, keyword, opts, trigger)
	switch {
	case err == nil, errors.Is(err, ErrSuperseded), errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
	default:
		s.logger.Warn("search failed", "keyword", keyword, "trigger", trigger, "err", err)
	}
}

// Close stops pending debounced searches and the document watch, and
// closes every subscription channel.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.inputTimer != nil {
		s.inputTimer.Stop()
	}
	if s.mutationTimer != nil {
		s.mutationTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	<-s.done

	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
}
