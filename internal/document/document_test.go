package document

import (
	"strings"
	"testing"
	"time"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return d
}

// texts returns every text node in document order.
func texts(e *Element) []*Text {
	var out []*Text
	for _, c := range e.Children() {
		switch c := c.(type) {
		case *Text:
			out = append(out, c)
		case *Element:
			out = append(out, texts(c)...)
		}
	}
	return out
}

func TestParse_BuildsTree(t *testing.T) {
	d := mustParse(t, `<html><body><p id="a">Hello <b>bold</b> world</p><script>var x;</script></body></html>`)

	p := d.ElementByID("a")
	if p == nil {
		t.Fatal("ElementByID(a) = nil")
	}
	if p.Tag() != "p" {
		t.Errorf("tag = %q, want p", p.Tag())
	}

	got := texts(d.Root())
	want := []string{"Hello ", "bold", " world", "var x;"}
	if len(got) != len(want) {
		t.Fatalf("got %d text nodes, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Data() != w {
			t.Errorf("text[%d] = %q, want %q", i, got[i].Data(), w)
		}
	}
}

func TestParse_InlineStyle(t *testing.T) {
	d := mustParse(t, `<html><body><div id="box" style="overflow: auto; height: 32px; width:100"></div><div id="gone" hidden></div></body></html>`)

	s := d.ElementByID("box").Style()
	if s.Overflow != OverflowAuto {
		t.Errorf("overflow = %v, want auto", s.Overflow)
	}
	if s.Height != 32 || s.Width != 100 {
		t.Errorf("size = %vx%v, want 100x32", s.Width, s.Height)
	}
	if d.ElementByID("gone").Style().Display != DisplayNone {
		t.Error("hidden attribute should set display none")
	}
}

func TestRange_Rects(t *testing.T) {
	d := mustParse(t, `<html><body><p>Hello World</p></body></html>`)
	node := texts(d.Root())[0]

	rects := Range{Node: node, Start: 6, End: 11}.Rects()
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
	want := Rect{Left: 48, Top: 0, Right: 88, Bottom: 16}
	if rects[0] != want {
		t.Errorf("rect = %+v, want %+v", rects[0], want)
	}
}

func TestRange_RectsWrap(t *testing.T) {
	d := mustParse(t, `<html><body><p>Hello World</p></body></html>`)
	d.Resize(40, 600)
	node := texts(d.Root())[0]

	rects := Range{Node: node, Start: 6, End: 11}.Rects()
	want := []Rect{
		{Left: 8, Top: 16, Right: 40, Bottom: 32},
		{Left: 0, Top: 32, Right: 8, Bottom: 48},
	}
	if len(rects) != len(want) {
		t.Fatalf("got %d rects (%+v), want %d", len(rects), rects, len(want))
	}
	for i := range want {
		if rects[i] != want[i] {
			t.Errorf("rect[%d] = %+v, want %+v", i, rects[i], want[i])
		}
	}
}

func TestRange_WideRunes(t *testing.T) {
	d := mustParse(t, `<html><body><p>資訊技術</p></body></html>`)
	node := texts(d.Root())[0]

	// Each ideograph is two cells wide and three bytes long.
	rects := Range{Node: node, Start: 3, End: 9}.Rects()
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
	if rects[0].Left != 16 || rects[0].Right != 48 {
		t.Errorf("rect = %+v, want left 16 right 48", rects[0])
	}
}

func TestRange_ScrollOffsets(t *testing.T) {
	d := mustParse(t, `<html><body><div id="box" style="overflow:auto;height:32"><p>one</p><p>two</p><p>three</p></div></body></html>`)
	box := d.ElementByID("box")
	three := texts(d.Root())[2]

	r := Range{Node: three, Start: 0, End: 5}
	if got := r.Rects()[0].Top; got != 32 {
		t.Fatalf("unscrolled top = %v, want 32", got)
	}

	d.SetScroll(box, 0, 16)
	if got := r.Rects()[0].Top; got != 16 {
		t.Errorf("scrolled top = %v, want 16", got)
	}

	d.SetScroll(nil, 0, 10)
	if got := r.Rects()[0].Top; got != 6 {
		t.Errorf("viewport scrolled top = %v, want 6", got)
	}
}

func TestRange_ScrollIntoView(t *testing.T) {
	d := mustParse(t, `<html><body><div id="box" style="overflow:auto;height:32"><p>one</p><p>two</p><p>three</p><p>four</p></div></body></html>`)
	box := d.ElementByID("box")
	four := texts(d.Root())[3]

	r := Range{Node: four, Start: 0, End: 4}
	if err := r.ScrollIntoView(); err != nil {
		t.Fatalf("ScrollIntoView() error: %v", err)
	}
	_, y := box.ScrollOffset()
	if y != 32 {
		t.Errorf("box scrollY = %v, want 32", y)
	}
	rect := r.Rects()[0]
	if visible := rect.Intersect(box.Box()); visible.Empty() {
		t.Errorf("range %+v still outside box %+v", rect, box.Box())
	}
}

func TestRange_Stale(t *testing.T) {
	d := mustParse(t, `<html><body><p>Hello World</p></body></html>`)
	node := texts(d.Root())[0]
	r := Range{Node: node, Start: 6, End: 11}

	d.SetText(node, "Hi")
	if r.Valid() {
		t.Error("range should be invalid after text shrank")
	}
	if rects := r.Rects(); rects != nil {
		t.Errorf("stale range rects = %v, want nil", rects)
	}

	d.SetText(node, "Hello World")
	d.Remove(node)
	if r.Valid() {
		t.Error("range should be invalid after detach")
	}
	if err := r.ScrollIntoView(); err != ErrDetached {
		t.Errorf("ScrollIntoView() = %v, want ErrDetached", err)
	}
}

func TestRange_UTF16(t *testing.T) {
	d := New()
	p := d.NewElement("p")
	if err := d.AppendChild(d.Root(), p); err != nil {
		t.Fatal(err)
	}
	node := d.NewText("a😀資b")
	if err := d.AppendChild(p, node); err != nil {
		t.Fatal(err)
	}

	// "a" 1 byte, emoji 4 bytes / 2 units, 資 3 bytes / 1 unit.
	r := Range{Node: node, Start: 5, End: 8}
	if r.UTF16Start() != 3 || r.UTF16End() != 4 {
		t.Errorf("utf16 = [%d,%d), want [3,4)", r.UTF16Start(), r.UTF16End())
	}
	if r.Text() != "資" {
		t.Errorf("text = %q, want 資", r.Text())
	}
}

func TestRange_UTF16Stale(t *testing.T) {
	d := New()
	p := d.NewElement("p")
	if err := d.AppendChild(d.Root(), p); err != nil {
		t.Fatal(err)
	}
	node := d.NewText("a😀資b")
	if err := d.AppendChild(p, node); err != nil {
		t.Fatal(err)
	}
	r := Range{Node: node, Start: 5, End: 8}

	d.SetText(node, "a資")
	if r.UTF16Start() != -1 || r.UTF16End() != -1 {
		t.Errorf("shrunk text: utf16 = [%d,%d), want -1", r.UTF16Start(), r.UTF16End())
	}

	d.SetText(node, "a😀資b")
	d.Remove(node)
	if r.UTF16Start() != -1 || r.UTF16End() != -1 {
		t.Errorf("detached: utf16 = [%d,%d), want -1", r.UTF16Start(), r.UTF16End())
	}
}

func TestSubscribe_Changes(t *testing.T) {
	d := New()
	ch, cancel := d.Subscribe()
	defer cancel()

	p := d.NewElement("p")
	if err := d.AppendChild(d.Root(), p); err != nil {
		t.Fatal(err)
	}
	node := d.NewText("x")
	if err := d.AppendChild(p, node); err != nil {
		t.Fatal(err)
	}
	d.SetText(node, "y")
	d.SetScroll(nil, 0, 5)

	want := []ChangeKind{ChangeChildList, ChangeChildList, ChangeText, ChangeScroll}
	for i, k := range want {
		select {
		case c := <-ch:
			if c.Kind != k {
				t.Errorf("change[%d] = %v, want %v", i, c.Kind, k)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for change %d", i)
		}
	}
}

func TestAppendChild_Foreign(t *testing.T) {
	a, b := New(), New()
	if err := a.AppendChild(a.Root(), b.NewText("x")); err != ErrForeignNode {
		t.Errorf("AppendChild() = %v, want ErrForeignNode", err)
	}
}

func TestSync_PreservesUnchangedNodes(t *testing.T) {
	d := mustParse(t, `<html><body><p>alpha</p><p>beta</p></body></html>`)
	before := texts(d.Root())

	d.Sync(mustParse(t, `<html><body><p>alpha</p><p>gamma</p></body></html>`))
	after := texts(d.Root())

	if len(after) != 2 {
		t.Fatalf("got %d text nodes, want 2", len(after))
	}
	if after[0] != before[0] || after[1] != before[1] {
		t.Error("Sync should keep node identity when shape is unchanged")
	}
	if after[1].Data() != "gamma" {
		t.Errorf("text = %q, want gamma", after[1].Data())
	}
}

func TestSync_ReplacesChangedShape(t *testing.T) {
	d := mustParse(t, `<html><body><p>alpha</p></body></html>`)
	d.Sync(mustParse(t, `<html><body><p>alpha</p><div>new</div></body></html>`))

	got := texts(d.Root())
	if len(got) != 2 || got[1].Data() != "new" {
		t.Fatalf("unexpected texts after sync: %d", len(got))
	}
	if got[1].Document() != d {
		t.Error("adopted node should belong to the target document")
	}
	if !got[1].Attached() {
		t.Error("adopted node should be attached")
	}
}

func TestParseText(t *testing.T) {
	d := ParseText([]byte("first\r\n\nsecond\n"))
	got := texts(d.Root())
	if len(got) != 2 || got[0].Data() != "first" || got[1].Data() != "second" {
		t.Fatalf("unexpected texts: %v", got)
	}
}
