// Package walker enumerates what a search runs over: the eligible text nodes
// of a document, and the document files named on the command line.
package walker

import (
	"strings"

	"github.com/dl/vsearch/internal/document"
)

// NodeOptions configures text node enumeration.
type NodeOptions struct {
	// Exclude is the root of the tool's own UI. Nothing beneath it is
	// searched.
	Exclude *document.Element
}

// skippedTags hold text that is never rendered as content.
var skippedTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// CollectTextNodes returns the eligible text nodes under root in document
// order, depth first. Text under the excluded subtree, under hidden or
// non-content elements, and text that is blank after trimming is skipped.
//
// Each element's child list is snapshotted as it is visited, so the walk
// tolerates concurrent mutation: nodes moved mid-walk may be missed or seen
// at their old position, and the next search pass restores correctness.
func CollectTextNodes(root *document.Element, opts NodeOptions) []*document.Text {
	if root == nil || (opts.Exclude != nil && opts.Exclude.Contains(root)) {
		return nil
	}
	var nodes []*document.Text
	var visit func(e *document.Element)
	visit = func(e *document.Element) {
		if !eligible(e, opts) {
			return
		}
		for _, child := range e.Children() {
			switch n := child.(type) {
			case *document.Element:
				visit(n)
			case *document.Text:
				if strings.TrimSpace(n.Data()) != "" {
					nodes = append(nodes, n)
				}
			}
		}
	}
	visit(root)
	return nodes
}

func eligible(e *document.Element, opts NodeOptions) bool {
	if opts.Exclude != nil && e == opts.Exclude {
		return false
	}
	if _, ok := skippedTags[e.Tag()]; ok {
		return false
	}
	return e.Style().Display != document.DisplayNone
}
