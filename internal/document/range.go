package document

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Range addresses bytes [Start, End) of a text node's content as it was
// when the range was created. It goes stale when the node is detached or
// its content changes underneath it; stale ranges report no geometry.
type Range struct {
	Node  *Text
	Start int
	End   int
}

// Valid reports whether the range still fits its node's live content.
func (r Range) Valid() bool {
	if r.Node == nil {
		return false
	}
	d := r.Node.doc
	d.mu.RLock()
	defer d.mu.RUnlock()
	return r.validLocked()
}

func (r Range) validLocked() bool {
	data := r.Node.data
	if r.Start < 0 || r.End < r.Start || r.End > len(data) {
		return false
	}
	if !r.Node.attachedLocked() {
		return false
	}
	return boundary(data, r.Start) && boundary(data, r.End)
}

func boundary(s string, i int) bool {
	return i == len(s) || utf8.RuneStart(s[i])
}

// Same reports whether r and o address the same node and offsets.
func (r Range) Same(o Range) bool {
	return r.Node == o.Node && r.Start == o.Start && r.End == o.End
}

// Text returns the addressed content, or "" for a stale range.
func (r Range) Text() string {
	if !r.Valid() {
		return ""
	}
	return r.Node.Data()[r.Start:r.End]
}

// UTF16Start returns Start measured in UTF-16 code units, or -1 for a
// stale range.
func (r Range) UTF16Start() int {
	return r.utf16Offset(r.Start)
}

// UTF16End returns End measured in UTF-16 code units, or -1 for a stale
// range.
func (r Range) UTF16End() int {
	return r.utf16Offset(r.End)
}

func (r Range) utf16Offset(byteOff int) int {
	if r.Node == nil {
		return -1
	}
	d := r.Node.doc
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !r.validLocked() {
		return -1
	}
	return utf16Len(r.Node.data, byteOff)
}

func utf16Len(s string, byteOff int) int {
	n := 0
	for _, c := range s[:byteOff] {
		n += utf16.RuneLen(c)
	}
	return n
}

// Rects returns the range's line fragments in viewport coordinates,
// unclipped. A stale range yields nil.
func (r Range) Rects() []Rect {
	if r.Node == nil {
		return nil
	}
	d := r.Node.doc
	d.Layout()
	d.mu.RLock()
	defer d.mu.RUnlock()
	return r.rectsLocked()
}

func (r Range) rectsLocked() []Rect {
	if !r.validLocked() {
		return nil
	}
	d := r.Node.doc
	dx, dy := d.scrollOffsetLocked(r.Node)
	data := r.Node.data
	var out []Rect
	for _, ru := range r.Node.runs {
		if r.End <= ru.start || r.Start >= ru.end {
			continue
		}
		s := max(r.Start, ru.start)
		e := min(r.End, ru.end)
		left := ru.rect.Left + d.stringWidth(data[ru.start:s])
		right := left + d.stringWidth(data[s:e])
		rect := Rect{Left: left, Top: ru.rect.Top, Right: right, Bottom: ru.rect.Bottom}
		out = append(out, rect.Translate(-dx, -dy))
	}
	return out
}

// ScrollIntoView scrolls every scrollable ancestor and then the viewport
// so the first fragment of r becomes visible, centring it vertically in
// the viewport when the viewport has to move.
func (r Range) ScrollIntoView() error {
	if r.Node == nil {
		return ErrDetached
	}
	d := r.Node.doc
	d.Layout()

	d.mu.Lock()
	rects := r.rectsLocked()
	if len(rects) == 0 {
		d.mu.Unlock()
		return ErrDetached
	}
	target := rects[0]
	for p := r.Node.parent; p != nil; p = p.parent {
		if !p.style.Overflow.Scrolls() {
			continue
		}
		pdx, pdy := d.scrollOffsetLocked(p)
		box := p.box.Translate(-pdx, -pdy)
		var shift float64
		switch {
		case target.Top < box.Top:
			shift = target.Top - box.Top
		case target.Bottom > box.Bottom:
			shift = min(target.Bottom-box.Bottom, target.Top-box.Top)
		}
		if shift != 0 {
			newY := max(p.scrollY+shift, 0)
			target = target.Translate(0, -(newY - p.scrollY))
			p.scrollY = newY
		}
	}
	if target.Top < 0 || target.Bottom > d.height {
		newY := max(d.scrollY+target.Top-d.height/2, 0)
		d.scrollY = newY
	}
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeScroll, Target: r.Node})
	return nil
}
