package output

import "github.com/dl/vsearch/internal/document"

// Result aggregates the matches found in a single document.
type Result struct {
	FilePath string
	SeqNum   int
	Matches  []document.Range
	// Current is the index of the current match, or -1.
	Current int
	Err     error
}

// Count returns the number of matches in this result.
func (r *Result) Count() int {
	return len(r.Matches)
}

// HasMatch returns true if this result has at least one match.
func (r *Result) HasMatch() bool {
	return len(r.Matches) > 0
}
