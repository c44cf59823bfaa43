package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// Table is a dictionary converter. Keys may be single characters or whole
// phrases; conversion is greedy longest-match from left to right over a
// byte trie of the keys. Text that is not valid UTF-8 passes through one
// byte at a time.
type Table struct {
	mu    sync.RWMutex
	root  *trieNode
	count int
	mode  Mode
}

// NewTable builds a converter from key -> candidates. Entries with no
// candidates are ignored.
func NewTable(entries map[string][]string) *Table {
	t := &Table{root: &trieNode{}, mode: ModeOneToOne}
	for k, v := range entries {
		t.add(k, v)
	}
	return t
}

func (t *Table) add(key string, candidates []string) {
	if key == "" || len(candidates) == 0 {
		return
	}
	if t.root.insert(key, candidates) {
		t.count++
	}
}

// ReadTable parses an OpenCC-style dictionary: one entry per line, the key,
// a tab, then space separated candidates. Blank lines and lines starting
// with # are skipped.
func ReadTable(r io.Reader) (*Table, error) {
	t := NewTable(nil)
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, rest, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("dictionary line %d: missing tab separator", lineNum)
		}
		candidates := strings.Fields(rest)
		if key == "" || len(candidates) == 0 {
			return nil, fmt.Errorf("dictionary line %d: empty key or value", lineNum)
		}
		t.add(key, candidates)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

func (t *Table) SetMode(mode Mode) {
	t.mu.Lock()
	t.mode = mode
	t.mu.Unlock()
}

func (t *Table) Convert(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		n, candidates := t.root.longestPrefix(text[i:])
		if n == 0 {
			_, size := utf8.DecodeRuneInString(text[i:])
			b.WriteString(text[i : i+size])
			i += size
			continue
		}
		if t.mode == ModeOneToMany {
			for _, c := range candidates {
				b.WriteString(c)
			}
		} else {
			b.WriteString(candidates[0])
		}
		i += n
	}
	return b.String(), nil
}
