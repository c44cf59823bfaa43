package document

// Rect is an axis-aligned rectangle. Coordinates grow right and down.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the horizontal extent, which is negative for inverted rects.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent, which is negative for inverted rects.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r covers no area (zero-sized or inverted).
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Intersect returns the overlap of r and o. The result may be inverted;
// check Empty before using it.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Display controls how an element participates in layout.
type Display int

const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayNone
)

// Overflow is the computed overflow of an element. Anything other than
// OverflowVisible clips descendants to the element's box.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowClip
	OverflowScroll
	OverflowAuto
)

// Scrolls reports whether the element can be scrolled programmatically.
func (o Overflow) Scrolls() bool {
	return o == OverflowScroll || o == OverflowAuto || o == OverflowHidden
}

// Style is the subset of computed style the layout engine understands.
// Width and Height are in pixels; zero means auto.
type Style struct {
	Display  Display
	Overflow Overflow
	Width    float64
	Height   float64
}
