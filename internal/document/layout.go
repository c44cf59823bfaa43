package document

import (
	"github.com/mattn/go-runewidth"
)

// run is one line fragment of a text node: bytes [start, end) laid out in
// rect (document coordinates, before any scrolling).
type run struct {
	start, end int
	rect       Rect
}

// flow is the inline cursor inside a block's content box.
type flow struct {
	left, right float64
	x, y        float64
}

func (f *flow) breakLine(lineHeight float64) {
	if f.x > f.left {
		f.x = f.left
		f.y += lineHeight
	}
}

// Layout reflows the document if anything changed since the last pass.
// Geometry queries call it implicitly.
func (d *Document) Layout() {
	d.mu.RLock()
	dirty := d.dirty
	d.mu.RUnlock()
	if !dirty {
		return
	}
	d.mu.Lock()
	if d.dirty {
		d.layoutBlock(d.root, 0, 0, d.width)
		d.dirty = false
	}
	d.mu.Unlock()
}

// layoutBlock lays out e as a block starting at (left, top) and returns its
// bottom edge. A fixed height lets content overflow the box.
func (d *Document) layoutBlock(e *Element, left, top, width float64) float64 {
	if e.style.Width > 0 && e.style.Width < width {
		width = e.style.Width
	}
	f := &flow{left: left, right: left + width, x: left, y: top}
	for _, c := range e.children {
		d.layoutNode(c, f)
	}
	bottom := f.y
	if f.x > f.left {
		bottom += d.lineHeight
	}
	if e.style.Height > 0 {
		bottom = top + e.style.Height
	}
	e.box = Rect{Left: left, Top: top, Right: left + width, Bottom: bottom}
	return bottom
}

func (d *Document) layoutNode(n Node, f *flow) {
	switch n := n.(type) {
	case *Text:
		d.layoutText(n, f)
	case *Element:
		switch n.style.Display {
		case DisplayNone:
			clearLayout(n)
		case DisplayInline:
			startX, startY := f.x, f.y
			for _, c := range n.children {
				d.layoutNode(c, f)
			}
			if f.y == startY {
				n.box = Rect{Left: startX, Top: startY, Right: f.x, Bottom: startY + d.lineHeight}
			} else {
				n.box = Rect{Left: f.left, Top: startY, Right: f.right, Bottom: f.y + d.lineHeight}
			}
		default:
			f.breakLine(d.lineHeight)
			bottom := d.layoutBlock(n, f.left, f.y, f.right-f.left)
			f.x, f.y = f.left, bottom
		}
	}
}

func (d *Document) layoutText(t *Text, f *flow) {
	t.runs = t.runs[:0]
	runStart, runX := 0, f.x
	for i, r := range t.data {
		w := d.runeWidth(r)
		if f.x+w > f.right && f.x > f.left {
			if i > runStart {
				t.runs = append(t.runs, run{start: runStart, end: i, rect: Rect{Left: runX, Top: f.y, Right: f.x, Bottom: f.y + d.lineHeight}})
			}
			f.x = f.left
			f.y += d.lineHeight
			runStart, runX = i, f.x
		}
		f.x += w
	}
	if len(t.data) > runStart {
		t.runs = append(t.runs, run{start: runStart, end: len(t.data), rect: Rect{Left: runX, Top: f.y, Right: f.x, Bottom: f.y + d.lineHeight}})
	}
}

func clearLayout(e *Element) {
	e.box = Rect{}
	for _, c := range e.children {
		switch c := c.(type) {
		case *Text:
			c.runs = c.runs[:0]
		case *Element:
			clearLayout(c)
		}
	}
}

func (d *Document) runeWidth(r rune) float64 {
	switch r {
	case '\n', '\r', '\t':
		return d.cellWidth
	}
	return float64(runewidth.RuneWidth(r)) * d.cellWidth
}

func (d *Document) stringWidth(s string) float64 {
	var w float64
	for _, r := range s {
		w += d.runeWidth(r)
	}
	return w
}

// scrollOffsetLocked sums the scroll offsets of every ancestor of n
// (excluding n itself) plus the viewport scroll.
func (d *Document) scrollOffsetLocked(n Node) (dx, dy float64) {
	dx, dy = d.scrollX, d.scrollY
	for p := parentLocked(n); p != nil; p = p.parent {
		dx += p.scrollX
		dy += p.scrollY
	}
	return dx, dy
}

// Box returns the element's border box in viewport coordinates.
func (e *Element) Box() Rect {
	d := e.doc
	d.Layout()
	d.mu.RLock()
	defer d.mu.RUnlock()
	dx, dy := d.scrollOffsetLocked(e)
	return e.box.Translate(-dx, -dy)
}
