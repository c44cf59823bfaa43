// Package highlight turns match ranges into clipped overlay rectangles and
// paints them through a Layer at most once per frame.
package highlight

import (
	"github.com/dl/vsearch/internal/document"
)

// Overlay is one painted rectangle. A match that wraps across lines
// produces one overlay per visible line fragment, all with the same Index.
type Overlay struct {
	Rect    document.Rect
	Index   int // position of the match in the list passed to Render
	Current bool
	Text    string
}

// Overlays computes the overlays for matches. Each fragment is clipped to
// every ancestor that does not let its content overflow; fragments left
// with no area are dropped. Stale ranges contribute nothing.
func Overlays(matches []document.Range, current int) []Overlay {
	var out []Overlay
	for i, m := range matches {
		rects := m.Rects()
		if len(rects) == 0 {
			continue
		}
		clips := clipBoxes(m.Node)
		text := m.Text()
		for _, r := range rects {
			r, ok := clip(r, clips)
			if !ok {
				continue
			}
			out = append(out, Overlay{Rect: r, Index: i, Current: i == current, Text: text})
		}
	}
	return out
}

// clipBoxes returns the boxes of every clipping ancestor of n, nearest first.
func clipBoxes(n *document.Text) []document.Rect {
	var boxes []document.Rect
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Style().Overflow == document.OverflowVisible {
			continue
		}
		boxes = append(boxes, p.Box())
	}
	return boxes
}

func clip(r document.Rect, boxes []document.Rect) (document.Rect, bool) {
	for _, b := range boxes {
		r = r.Intersect(b)
		if r.Empty() {
			return r, false
		}
	}
	return r, !r.Empty()
}
