package convert

// trieNode is a node in the byte trie of dictionary keys.
type trieNode struct {
	children   [256]*trieNode
	candidates []string // set when a key ends at this node
	depth      int
}

// insert adds key and reports whether it was new.
func (n *trieNode) insert(key string, candidates []string) bool {
	node := n
	for i := 0; i < len(key); i++ {
		b := key[i]
		if node.children[b] == nil {
			node.children[b] = &trieNode{depth: node.depth + 1}
		}
		node = node.children[b]
	}
	added := node.candidates == nil
	node.candidates = candidates
	return added
}

// longestPrefix walks s byte by byte and returns the length of the longest
// key that prefixes s, with its candidates. The length is 0 when no key
// matches.
func (n *trieNode) longestPrefix(s string) (int, []string) {
	var best *trieNode
	node := n
	for i := 0; i < len(s); i++ {
		node = node.children[s[i]]
		if node == nil {
			break
		}
		if node.candidates != nil {
			best = node
		}
	}
	if best == nil {
		return 0, nil
	}
	return best.depth, best.candidates
}
