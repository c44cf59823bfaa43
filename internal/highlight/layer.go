package highlight

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TextLayer draws each frame as a block of lines, one per overlay.
type TextLayer struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewTextLayer creates a TextLayer that writes to w.
func NewTextLayer(w io.Writer) *TextLayer {
	return &TextLayer{w: w}
}

func (l *TextLayer) Clear() {
	l.write("-- no matches\n")
}

func (l *TextLayer) Paint(overlays []Overlay, style Style) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- %d overlays\n", len(overlays))
	for _, o := range overlays {
		s := style.Match
		marker := " "
		if o.Current {
			s = style.Current
			marker = ">"
		}
		if style.Outline {
			s = s.Border(lipgloss.NormalBorder(), false, false, true, false)
		}
		fmt.Fprintf(&sb, "%s %d (%g,%g %gx%g) %s\n",
			marker, o.Index+1, o.Rect.Left, o.Rect.Top, o.Rect.Width(), o.Rect.Height(), s.Render(o.Text))
	}
	l.write(sb.String())
}

func (l *TextLayer) write(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}
	_, l.err = io.WriteString(l.w, s)
}

// Err returns the first write error.
func (l *TextLayer) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Recorder keeps the last painted frame in memory.
type Recorder struct {
	mu       sync.Mutex
	overlays []Overlay
	style    Style
	paints   int
	clears   int
	notify   chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.overlays = nil
	r.clears++
	r.mu.Unlock()
	r.signal()
}

func (r *Recorder) Paint(overlays []Overlay, style Style) {
	r.mu.Lock()
	r.overlays = slices.Clone(overlays)
	r.style = style
	r.paints++
	r.mu.Unlock()
	r.signal()
}

func (r *Recorder) signal() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Frame returns the overlays currently on the layer.
func (r *Recorder) Frame() []Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.overlays)
}

// Style returns the style of the last paint.
func (r *Recorder) Style() Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// Counts returns how many paints and clears the layer has seen.
func (r *Recorder) Counts() (paints, clears int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paints, r.clears
}

// Updated receives a value after a paint or clear. Bursts are coalesced.
func (r *Recorder) Updated() <-chan struct{} { return r.notify }
