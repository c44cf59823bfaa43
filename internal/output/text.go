package output

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dl/vsearch/internal/document"
)

// TextFormatter formats results as human-readable text, one line per match:
//
//	[file:]index/total:context
//
// The separator after the index is '>' for the current match.
type TextFormatter struct {
	countOnly  bool
	filesOnly  bool
	useColor   bool
	maxColumns int
	styles     Styles
}

// NewTextFormatter creates a TextFormatter. maxColumns > 0 trims each
// context to a window of that many bytes centred on the match.
func NewTextFormatter(countOnly bool, filesOnly bool, useColor bool, maxColumns int) *TextFormatter {
	styles := NoStyles()
	if useColor {
		styles = NewStyles()
	}
	return &TextFormatter{
		countOnly:  countOnly,
		filesOnly:  filesOnly,
		useColor:   useColor,
		maxColumns: maxColumns,
		styles:     styles,
	}
}

// WithStyles replaces the styles used when color is on.
func (f *TextFormatter) WithStyles(s Styles) *TextFormatter {
	if f.useColor {
		f.styles = s
	}
	return f
}

func (f *TextFormatter) Format(buf []byte, result Result, multiFile bool) []byte {
	if f.filesOnly {
		if result.HasMatch() {
			buf = append(buf, result.FilePath...)
			buf = append(buf, '\n')
		}
		return buf
	}

	if f.countOnly {
		if multiFile {
			buf = append(buf, result.FilePath...)
			buf = append(buf, ':')
		}
		buf = strconv.AppendInt(buf, int64(result.Count()), 10)
		buf = append(buf, '\n')
		return buf
	}

	for i, m := range result.Matches {
		buf = f.formatMatch(buf, result, i, m, multiFile)
	}
	return buf
}

func (f *TextFormatter) formatMatch(buf []byte, result Result, i int, m document.Range, multiFile bool) []byte {
	current := i == result.Current
	sep := ":"
	if current {
		sep = ">"
	}

	if multiFile {
		buf = append(buf, f.styles.Filename.Render(result.FilePath)...)
		buf = append(buf, f.styles.Separator.Render(":")...)
	}

	label := strconv.Itoa(i+1) + "/" + strconv.Itoa(len(result.Matches))
	buf = append(buf, f.styles.Index.Render(label)...)
	buf = append(buf, f.styles.Separator.Render(sep)...)

	line := m.Node.Data()
	start, end := m.Start, m.End
	if end > len(line) {
		end = len(line)
	}
	if start > end {
		start = end
	}
	winStart, winEnd := f.window(line, start, end)
	start, end = max(start, winStart), min(end, winEnd)

	style := f.styles.Match
	if current {
		style = f.styles.Current
	}
	buf = append(buf, flatten(line[winStart:start])...)
	if end > start {
		buf = append(buf, style.Render(flatten(line[start:end]))...)
	}
	buf = append(buf, flatten(line[max(end, winStart):winEnd])...)
	buf = append(buf, '\n')
	return buf
}

// window returns the byte range of line to show, centred on [start, end)
// and aligned to rune boundaries.
func (f *TextFormatter) window(line string, start, end int) (int, int) {
	if f.maxColumns <= 0 || len(line) <= f.maxColumns {
		return 0, len(line)
	}
	center := (start + end) / 2
	ws := center - f.maxColumns/2
	ws = max(0, min(ws, len(line)-f.maxColumns))
	we := ws + f.maxColumns
	for ws < len(line) && !utf8.RuneStart(line[ws]) {
		ws++
	}
	for we > ws && we < len(line) && !utf8.RuneStart(line[we]) {
		we--
	}
	return ws, we
}

var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// flatten keeps a node's text on one output line.
func flatten(s string) string {
	return flattener.Replace(s)
}
