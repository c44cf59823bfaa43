package output

import (
	"encoding/json"
)

// JSONFormatter formats results as JSON Lines (one JSON object per match).
type JSONFormatter struct{}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// jsonMatch is the JSON serialization format for a match. Offsets are
// bytes into the node's text; the utf16 pair counts UTF-16 code units and
// is left out when the node changed after the search.
type jsonMatch struct {
	Type       string `json:"type"`
	File       string `json:"file,omitempty"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Current    bool   `json:"current,omitempty"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	UTF16Start *int   `json:"utf16_start,omitempty"`
	UTF16End   *int   `json:"utf16_end,omitempty"`
	Text       string `json:"text"`
	Context    string `json:"context"`
}

func (f *JSONFormatter) Format(buf []byte, result Result, multiFile bool) []byte {
	if len(result.Matches) == 0 {
		return buf
	}

	for i, m := range result.Matches {
		jm := jsonMatch{
			Type:       "match",
			File:       result.FilePath,
			Index:      i,
			Total:      len(result.Matches),
			Current:    i == result.Current,
			Start:      m.Start,
			End:        m.End,
			Text:       m.Text(),
			Context:    m.Node.Data(),
		}
		if start, end := m.UTF16Start(), m.UTF16End(); start >= 0 && end >= 0 {
			jm.UTF16Start, jm.UTF16End = &start, &end
		}
		data, _ := json.Marshal(jm)
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return buf
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
