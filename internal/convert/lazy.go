package convert

import (
	"context"
	"errors"
	"sync"
)

// ErrNoConverter is the load error of a Loader that returned neither a
// converter nor an error.
var ErrNoConverter = errors.New("convert: loader returned no converter")

// Loader builds a converter, typically by reading a large dictionary.
type Loader func(ctx context.Context) (Converter, error)

// Lazy is a converter handle that is usable before its engine has loaded.
// Until loading completes Convert returns ErrNotReady, so callers degrade
// instead of blocking on a cold start.
type Lazy struct {
	mu    sync.RWMutex
	conv  Converter
	err   error
	mode  Mode
	ready chan struct{}
}

// Load starts load in the background and returns immediately.
func Load(ctx context.Context, load Loader) *Lazy {
	l := &Lazy{ready: make(chan struct{}), mode: ModeOneToOne}
	go func() {
		defer close(l.ready)
		conv, err := load(ctx)
		l.mu.Lock()
		defer l.mu.Unlock()
		if err == nil && conv == nil {
			err = ErrNoConverter
		}
		if err != nil {
			l.err = err
			return
		}
		conv.SetMode(l.mode)
		l.conv = conv
	}()
	return l
}

// Ready reports whether the engine has loaded successfully.
func (l *Lazy) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.conv != nil
}

// Wait blocks until loading finishes and returns the load error, if any.
func (l *Lazy) Wait(ctx context.Context) error {
	select {
	case <-l.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Lazy) Convert(ctx context.Context, text string) (string, error) {
	l.mu.RLock()
	conv := l.conv
	l.mu.RUnlock()
	if conv == nil {
		return "", ErrNotReady
	}
	return conv.Convert(ctx, text)
}

// SetMode applies immediately when loaded and is remembered otherwise.
func (l *Lazy) SetMode(mode Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
	if l.conv != nil {
		l.conv.SetMode(mode)
	}
}
