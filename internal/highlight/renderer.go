package highlight

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dl/vsearch/internal/document"
)

// DefaultFrame is the minimum spacing between two paints.
const DefaultFrame = 16 * time.Millisecond

// Style is how overlays are drawn. Current applies to the current match,
// Match to every other one.
type Style struct {
	Match   lipgloss.Style
	Current lipgloss.Style
	Outline bool
}

// DefaultStyle is a yellow background with an orange current match.
func DefaultStyle() Style {
	return Style{
		Match:   lipgloss.NewStyle().Background(lipgloss.Color("#ffff00")).Foreground(lipgloss.Color("#000000")),
		Current: lipgloss.NewStyle().Background(lipgloss.Color("#ff9632")).Foreground(lipgloss.Color("#000000")),
	}
}

// Layer is the drawing surface. Paint replaces everything previously
// painted; Clear removes it.
type Layer interface {
	Clear()
	Paint(overlays []Overlay, style Style)
}

// Options configure a Renderer.
type Options struct {
	Layer  Layer
	Frame  time.Duration // default DefaultFrame
	Style  Style
	Logger *log.Logger
}

// Renderer repaints the layer from the latest match list. Requests that
// arrive while a paint is pending are folded into it.
type Renderer struct {
	layer   Layer
	limiter *rate.Limiter
	logger  *log.Logger

	mu      sync.Mutex
	matches []document.Range
	current int
	style   Style
	pending bool

	// paintMu orders paints against immediate clears.
	paintMu sync.Mutex

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Renderer and starts its paint loop. Close stops it.
func New(opts Options) *Renderer {
	frame := opts.Frame
	if frame <= 0 {
		frame = DefaultFrame
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	r := &Renderer{
		layer:   opts.Layer,
		limiter: rate.NewLimiter(rate.Every(frame), 1),
		logger:  logger,
		current: -1,
		style:   opts.Style,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	go r.loop()
	return r
}

// Render schedules a full redraw of matches with current highlighted. An
// empty list clears the layer before Render returns.
func (r *Renderer) Render(matches []document.Range, current int) {
	r.mu.Lock()
	r.matches, r.current = matches, current
	if len(matches) == 0 {
		r.pending = false
		r.mu.Unlock()

		r.paintMu.Lock()
		r.layer.Clear()
		r.paintMu.Unlock()
		return
	}
	if r.pending {
		r.mu.Unlock()
		return
	}
	r.pending = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Refresh redraws the last matches, for scrolls and resizes that move them.
func (r *Renderer) Refresh() {
	r.mu.Lock()
	matches, current := r.matches, r.current
	r.mu.Unlock()
	if len(matches) == 0 {
		return
	}
	r.Render(matches, current)
}

// SetStyle changes the overlay style and repaints.
func (r *Renderer) SetStyle(s Style) {
	r.mu.Lock()
	r.style = s
	r.mu.Unlock()
	r.Refresh()
}

func (r *Renderer) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.wake:
		}
		if err := r.limiter.Wait(r.ctx); err != nil {
			return
		}
		r.paint()
	}
}

func (r *Renderer) paint() {
	r.paintMu.Lock()
	defer r.paintMu.Unlock()

	r.mu.Lock()
	matches, current, style := r.matches, r.current, r.style
	r.pending = false
	r.mu.Unlock()

	if len(matches) == 0 {
		r.layer.Clear()
		return
	}
	overlays := Overlays(matches, current)
	r.logger.Debug("paint", "matches", len(matches), "overlays", len(overlays))
	r.layer.Paint(overlays, style)
}

// Close stops the paint loop. A pending paint is dropped.
func (r *Renderer) Close() {
	r.cancel()
	<-r.done
}
