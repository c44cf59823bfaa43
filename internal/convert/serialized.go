package convert

import (
	"context"
	"sync"
)

// Serialized guards a converter whose mode is shared state. A call made
// through a view returned by WithMode never sees another caller's SetMode
// between its own SetMode and Convert. Calls in the mode that is already
// set run concurrently under a read lock; switching modes takes the write
// lock, so the wrapped converter must allow concurrent Convert calls.
type Serialized struct {
	mu   sync.RWMutex
	conv Converter
	mode Mode // last mode set on conv; empty before the first call
}

// NewSerialized wraps conv.
func NewSerialized(conv Converter) *Serialized {
	return &Serialized{conv: conv}
}

// Ready reports whether the wrapped converter is ready.
func (s *Serialized) Ready() bool { return Ready(s.conv) }

func (s *Serialized) convert(ctx context.Context, mode Mode, text string) (string, error) {
	s.mu.RLock()
	if s.mode == mode {
		defer s.mu.RUnlock()
		return s.conv.Convert(ctx, text)
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != mode {
		s.conv.SetMode(mode)
		s.mode = mode
	}
	return s.conv.Convert(ctx, text)
}

// WithMode returns a Converter that always converts in mode.
func (s *Serialized) WithMode(mode Mode) Converter {
	return &modeView{s: s, mode: mode}
}

type modeView struct {
	s    *Serialized
	mode Mode
}

func (v *modeView) Convert(ctx context.Context, text string) (string, error) {
	return v.s.convert(ctx, v.mode, text)
}

// SetMode is a no-op: a view's mode is fixed.
func (v *modeView) SetMode(Mode) {}

func (v *modeView) Ready() bool { return v.s.Ready() }
