// Package document is an in-memory, mutable document tree of elements and
// text nodes. It carries just enough layout to answer geometry queries for
// text ranges and publishes a change feed for observers.
package document

import (
	"errors"
	"strings"
	"sync"
)

// ErrDetached is returned when an operation targets a node that is no longer
// attached to its document.
var ErrDetached = errors.New("document: node is detached")

// ErrForeignNode is returned when a node from another document is inserted.
var ErrForeignNode = errors.New("document: node belongs to another document")

const (
	defaultCellWidth  = 8
	defaultLineHeight = 16
	defaultWidth      = 800
	defaultHeight     = 600
)

// Node is either an *Element or a *Text.
type Node interface {
	Parent() *Element
	Document() *Document
	setParent(*Element)
	adopt(*Document)
}

// Document owns a tree rooted at an <html>-like element, the viewport
// geometry and the subscriber list. All node state is guarded by one lock.
type Document struct {
	mu   sync.RWMutex
	root *Element

	width, height    float64
	scrollX, scrollY float64
	cellWidth        float64
	lineHeight       float64
	dirty            bool

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// New returns an empty document with a bare root element.
func New() *Document {
	d := &Document{
		width:      defaultWidth,
		height:     defaultHeight,
		cellWidth:  defaultCellWidth,
		lineHeight: defaultLineHeight,
		dirty:      true,
		subs:       make(map[int]chan Change),
	}
	d.root = d.NewElement("html")
	return d
}

// Root returns the root element.
func (d *Document) Root() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// NewElement creates a detached element owned by d.
func (d *Document) NewElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return &Element{
		doc:   d,
		tag:   tag,
		attrs: make(map[string]string),
		style: defaultStyle(tag),
	}
}

// NewText creates a detached text node owned by d.
func (d *Document) NewText(data string) *Text {
	return &Text{doc: d, data: data}
}

// AppendChild attaches child as the last child of parent, detaching it
// from any previous parent first.
func (d *Document) AppendChild(parent *Element, child Node) error {
	if parent.Document() != d || child.Document() != d {
		return ErrForeignNode
	}
	d.mu.Lock()
	if old := parentLocked(child); old != nil {
		old.removeChild(child)
	}
	parent.children = append(parent.children, child)
	child.setParent(parent)
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeChildList, Target: parent})
	return nil
}

// InsertBefore attaches child to parent immediately before ref. A nil ref
// appends.
func (d *Document) InsertBefore(parent *Element, child, ref Node) error {
	if ref == nil {
		return d.AppendChild(parent, child)
	}
	if parent.Document() != d || child.Document() != d {
		return ErrForeignNode
	}
	d.mu.Lock()
	if old := parentLocked(child); old != nil {
		old.removeChild(child)
	}
	idx := parent.indexOf(ref)
	if idx < 0 {
		d.mu.Unlock()
		return ErrDetached
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = child
	child.setParent(parent)
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeChildList, Target: parent})
	return nil
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (d *Document) Remove(n Node) {
	d.mu.Lock()
	parent := parentLocked(n)
	if parent == nil {
		d.mu.Unlock()
		return
	}
	parent.removeChild(n)
	n.setParent(nil)
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeChildList, Target: parent})
}

// SetText replaces the content of t.
func (d *Document) SetText(t *Text, data string) {
	d.mu.Lock()
	if t.data == data {
		d.mu.Unlock()
		return
	}
	t.data = data
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeText, Target: t})
}

// SetStyle replaces the computed style of e.
func (d *Document) SetStyle(e *Element, s Style) {
	d.mu.Lock()
	e.style = s
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeLayout, Target: e})
}

// SetScroll sets the scroll offset of e, or of the viewport when e is nil.
// Offsets are clamped at zero.
func (d *Document) SetScroll(e *Element, x, y float64) {
	x, y = max(x, 0), max(y, 0)
	d.mu.Lock()
	if e == nil {
		d.scrollX, d.scrollY = x, y
	} else {
		e.scrollX, e.scrollY = x, y
	}
	d.mu.Unlock()

	var target Node
	if e != nil {
		target = e
	}
	d.notify(Change{Kind: ChangeScroll, Target: target})
}

// Scroll returns the viewport scroll offset.
func (d *Document) Scroll() (x, y float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scrollX, d.scrollY
}

// Resize changes the viewport size, which reflows the document.
func (d *Document) Resize(width, height float64) {
	d.mu.Lock()
	d.width, d.height = width, height
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeResize})
}

// Viewport returns the visible area in viewport coordinates.
func (d *Document) Viewport() Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Rect{Right: d.width, Bottom: d.height}
}

// SetMetrics sets the monospace cell width and line height used by layout.
func (d *Document) SetMetrics(cellWidth, lineHeight float64) {
	d.mu.Lock()
	if cellWidth > 0 {
		d.cellWidth = cellWidth
	}
	if lineHeight > 0 {
		d.lineHeight = lineHeight
	}
	d.dirty = true
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeLayout})
}

// ElementByID returns the first element in document order with the given id.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var found *Element
	var visit func(e *Element) bool
	visit = func(e *Element) bool {
		if e.id == id {
			found = e
			return true
		}
		for _, c := range e.children {
			if ce, ok := c.(*Element); ok && visit(ce) {
				return true
			}
		}
		return false
	}
	visit(d.root)
	return found
}

// Element is a tagged container node.
type Element struct {
	doc      *Document
	parent   *Element
	children []Node
	tag      string
	id       string
	attrs    map[string]string
	style    Style

	box              Rect
	scrollX, scrollY float64
}

func (e *Element) Parent() *Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.parent
}

func (e *Element) Document() *Document { return e.doc }

func (e *Element) setParent(p *Element) { e.parent = p }

func (e *Element) adopt(d *Document) {
	e.doc = d
	for _, c := range e.children {
		c.adopt(d)
	}
}

// Tag returns the lower-cased tag name.
func (e *Element) Tag() string { return e.tag }

// ID returns the id attribute.
func (e *Element) ID() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.id
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets an attribute. The id attribute also updates ID.
func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	e.attrs[name] = value
	if name == "id" {
		e.id = value
	}
	e.doc.mu.Unlock()
}

// Style returns the computed style.
func (e *Element) Style() Style {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.style
}

// Children returns a snapshot of the child list.
func (e *Element) Children() []Node {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// Contains reports whether n is e or a descendant of e.
func (e *Element) Contains(n Node) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	for cur := n; cur != nil; {
		if el, ok := cur.(*Element); ok && el == e {
			return true
		}
		p := parentLocked(cur)
		if p == nil {
			return false
		}
		cur = p
	}
	return false
}

// ScrollOffset returns the element's own scroll offset.
func (e *Element) ScrollOffset() (x, y float64) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.scrollX, e.scrollY
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) removeChild(n Node) {
	if i := e.indexOf(n); i >= 0 {
		e.children = append(e.children[:i], e.children[i+1:]...)
	}
}

// Text is a leaf holding character data.
type Text struct {
	doc    *Document
	parent *Element
	data   string
	runs   []run
}

func (t *Text) Parent() *Element {
	t.doc.mu.RLock()
	defer t.doc.mu.RUnlock()
	return t.parent
}

func (t *Text) Document() *Document { return t.doc }

func (t *Text) setParent(p *Element) { t.parent = p }

func (t *Text) adopt(d *Document) { t.doc = d }

// Data returns the current text content.
func (t *Text) Data() string {
	t.doc.mu.RLock()
	defer t.doc.mu.RUnlock()
	return t.data
}

// Attached reports whether t is still reachable from the document root.
func (t *Text) Attached() bool {
	t.doc.mu.RLock()
	defer t.doc.mu.RUnlock()
	return t.attachedLocked()
}

func (t *Text) attachedLocked() bool {
	for p := t.parent; p != nil; p = p.parent {
		if p == t.doc.root {
			return true
		}
	}
	return false
}

func parentLocked(n Node) *Element {
	switch n := n.(type) {
	case *Element:
		return n.parent
	case *Text:
		return n.parent
	}
	return nil
}

func defaultStyle(tag string) Style {
	switch tag {
	case "head", "script", "style", "noscript", "template", "title", "meta", "link":
		return Style{Display: DisplayNone}
	}
	if _, ok := inlineTags[tag]; ok {
		return Style{Display: DisplayInline}
	}
	return Style{Display: DisplayBlock}
}

var inlineTags = map[string]struct{}{
	"a": {}, "abbr": {}, "b": {}, "bdi": {}, "bdo": {}, "cite": {}, "code": {},
	"em": {}, "i": {}, "kbd": {}, "label": {}, "mark": {}, "q": {}, "ruby": {},
	"s": {}, "samp": {}, "small": {}, "span": {}, "strong": {}, "sub": {},
	"sup": {}, "time": {}, "u": {}, "var": {},
}
