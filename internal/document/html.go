package document

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a document from HTML. Comments and doctypes are dropped;
// style attributes are reduced to the properties layout understands.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := New()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			d.root = d.fromHTML(c)
			break
		}
	}
	return d, nil
}

// ParseText builds a document from plain text: one block per line, so a
// long file reflows like a page of paragraphs.
func ParseText(data []byte) *Document {
	d := New()
	body := d.NewElement("body")
	attach(d.root, body)
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		p := d.NewElement("p")
		attach(body, p)
		if len(line) > 0 {
			attach(p, d.NewText(string(bytes.TrimRight(line, "\r"))))
		}
	}
	return d
}

// Load picks Parse or ParseText based on a file name and the content.
func Load(name string, data []byte) (*Document, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") || looksLikeHTML(data) {
		return Parse(bytes.NewReader(data))
	}
	return ParseText(data), nil
}

func looksLikeHTML(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}

func (d *Document) fromHTML(n *html.Node) *Element {
	e := d.NewElement(n.Data)
	for _, a := range n.Attr {
		e.attrs[a.Key] = a.Val
		switch a.Key {
		case "id":
			e.id = a.Val
		case "hidden":
			e.style.Display = DisplayNone
		case "style":
			e.style = applyInlineStyle(e.style, a.Val)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			attach(e, d.fromHTML(c))
		case html.TextNode:
			attach(e, d.NewText(c.Data))
		}
	}
	return e
}

// attach links child under parent without locking or notifying; only for
// trees that are not yet shared.
func attach(parent *Element, child Node) {
	parent.children = append(parent.children, child)
	child.setParent(parent)
}

func applyInlineStyle(s Style, decl string) Style {
	for _, part := range strings.Split(decl, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(value))
		switch name {
		case "display":
			switch value {
			case "none":
				s.Display = DisplayNone
			case "inline", "inline-block":
				s.Display = DisplayInline
			default:
				s.Display = DisplayBlock
			}
		case "overflow", "overflow-y":
			s.Overflow = parseOverflow(value)
		case "width":
			s.Width = parseLength(value)
		case "height", "max-height":
			s.Height = parseLength(value)
		}
	}
	return s
}

func parseOverflow(v string) Overflow {
	switch v {
	case "hidden":
		return OverflowHidden
	case "clip":
		return OverflowClip
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	}
	return OverflowVisible
}

func parseLength(v string) float64 {
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
