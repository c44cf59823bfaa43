package matcher

import "strings"

// IndexAll returns the byte offsets of non-overlapping occurrences of pattern
// in text, scanning left to right and resuming after each full match.
//
// Uses the Horspool algorithm: candidate windows are checked on their first
// and last bytes before the middle is compared, and a miss shifts by the
// bad-character distance of the window's last byte. Byte-wise matching of
// valid UTF-8 only ever hits character boundaries.
func IndexAll(text, pattern string) []int {
	plen := len(pattern)
	switch {
	case plen == 0, plen > len(text):
		return nil
	case plen == 1:
		return indexAllByte(text, pattern[0])
	}

	var skip [256]int
	for i := range skip {
		skip[i] = plen
	}
	for i := 0; i < plen-1; i++ {
		skip[pattern[i]] = plen - 1 - i
	}

	first, last := pattern[0], pattern[plen-1]
	middle := pattern[1 : plen-1]

	var offsets []int
	for i := 0; i+plen <= len(text); {
		c := text[i+plen-1]
		if c == last && text[i] == first && text[i+1:i+plen-1] == middle {
			offsets = append(offsets, i)
			i += plen
			continue
		}
		i += skip[c]
	}
	return offsets
}

func indexAllByte(text string, b byte) []int {
	var offsets []int
	for off := 0; off < len(text); {
		idx := strings.IndexByte(text[off:], b)
		if idx < 0 {
			break
		}
		offsets = append(offsets, off+idx)
		off += idx + 1
	}
	return offsets
}
