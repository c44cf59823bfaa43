package document

import "maps"

// Sync morphs d into the shape of src, reusing every existing node whose
// position and tag still match so that ranges into unchanged text stay
// addressable. Text that differs is updated in place; child lists whose
// shape differs are replaced with src's nodes. src must not be used
// afterwards.
func (d *Document) Sync(src *Document) {
	src.mu.Lock()
	srcRoot := src.root
	src.mu.Unlock()

	d.mu.Lock()
	var changes []Change
	if d.root.tag != srcRoot.tag {
		srcRoot.adopt(d)
		d.root = srcRoot
		changes = append(changes, Change{Kind: ChangeChildList, Target: srcRoot})
	} else {
		changes = d.morph(d.root, srcRoot, changes)
	}
	if len(changes) > 0 {
		d.dirty = true
	}
	d.mu.Unlock()

	for _, c := range changes {
		d.notify(c)
	}
}

func (d *Document) morph(dst, src *Element, changes []Change) []Change {
	if !maps.Equal(dst.attrs, src.attrs) || dst.style != src.style {
		dst.attrs = src.attrs
		dst.id = src.id
		dst.style = src.style
		changes = append(changes, Change{Kind: ChangeLayout, Target: dst})
	}
	if !sameShape(dst.children, src.children) {
		for _, c := range dst.children {
			c.setParent(nil)
		}
		dst.children = dst.children[:0]
		for _, c := range src.children {
			c.adopt(d)
			attach(dst, c)
		}
		return append(changes, Change{Kind: ChangeChildList, Target: dst})
	}
	for i, c := range dst.children {
		switch c := c.(type) {
		case *Text:
			s := src.children[i].(*Text)
			if c.data != s.data {
				c.data = s.data
				changes = append(changes, Change{Kind: ChangeText, Target: c})
			}
		case *Element:
			changes = d.morph(c, src.children[i].(*Element), changes)
		}
	}
	return changes
}

func sameShape(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch x := a[i].(type) {
		case *Text:
			if _, ok := b[i].(*Text); !ok {
				return false
			}
		case *Element:
			y, ok := b[i].(*Element)
			if !ok || x.tag != y.tag {
				return false
			}
		}
	}
	return true
}
