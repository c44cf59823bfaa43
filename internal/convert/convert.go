// Package convert adapts Chinese character-variant conversion engines. The
// engines themselves are external; this package defines the capability the
// search core consumes and a few wrappers around it.
package convert

import (
	"context"
	"errors"
)

// ErrNotReady is returned by converters whose backing engine has not
// finished loading.
var ErrNotReady = errors.New("convert: converter not ready")

// Mode selects how a source character with several variant candidates is
// rendered.
type Mode string

const (
	// ModeOneToOne emits the first candidate only.
	ModeOneToOne Mode = "one2one"
	// ModeOneToMany emits every candidate in dictionary order.
	ModeOneToMany Mode = "one2many"
)

// Converter is a variant conversion engine. Convert may be slow; SetMode
// changes shared state, see Serialized.
type Converter interface {
	Convert(ctx context.Context, text string) (string, error)
	SetMode(mode Mode)
}

// Ready reports whether c can be used right now. A nil converter is never
// ready; converters that do not report readiness are always ready.
func Ready(c Converter) bool {
	if c == nil {
		return false
	}
	if r, ok := c.(interface{ Ready() bool }); ok {
		return r.Ready()
	}
	return true
}

// Func adapts a plain function to Converter. SetMode is ignored.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Convert(ctx context.Context, text string) (string, error) { return f(ctx, text) }

func (f Func) SetMode(Mode) {}
