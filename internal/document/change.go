package document

// ChangeKind classifies a document mutation.
type ChangeKind int

const (
	ChangeChildList ChangeKind = iota // nodes added or removed
	ChangeText                        // text content replaced
	ChangeLayout                      // style or metrics changed
	ChangeScroll                      // viewport or element scrolled
	ChangeResize                      // viewport resized
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeChildList:
		return "childList"
	case ChangeText:
		return "text"
	case ChangeLayout:
		return "layout"
	case ChangeScroll:
		return "scroll"
	case ChangeResize:
		return "resize"
	}
	return "unknown"
}

// Content reports whether the change can alter which text matches a search.
// Scroll, resize and layout changes only move existing matches.
func (k ChangeKind) Content() bool {
	return k == ChangeChildList || k == ChangeText
}

// Change describes one mutation. Target is nil for viewport-wide changes.
type Change struct {
	Kind   ChangeKind
	Target Node
}

const subscriberBuffer = 64

// Subscribe registers for change notifications. Delivery is best effort:
// when a subscriber falls behind, further changes are dropped until it
// catches up, so consumers must treat a change as "something happened"
// rather than an exact log. The returned func unsubscribes and closes the
// channel.
func (d *Document) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)
	d.subMu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch
	d.subMu.Unlock()

	return ch, func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		if c, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(c)
		}
	}
}

func (d *Document) notify(c Change) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
