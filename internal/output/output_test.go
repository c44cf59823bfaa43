package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dl/vsearch/internal/document"
)

// makeResult builds a result with one match per (text, start, end) triple,
// each in its own node.
func makeResult(path string, current int, spans ...any) Result {
	d := document.New()
	r := Result{FilePath: path, Current: current}
	for i := 0; i+2 < len(spans); i += 3 {
		t := d.NewText(spans[i].(string))
		d.AppendChild(d.Root(), t)
		r.Matches = append(r.Matches, document.Range{Node: t, Start: spans[i+1].(int), End: spans[i+2].(int)})
	}
	return r
}

func TestTextFormatter_SingleFile(t *testing.T) {
	f := NewTextFormatter(false, false, false, 0)
	result := makeResult("test.txt", 1,
		"hello world", 0, 5,
		"hello again", 6, 11,
	)

	got := string(f.Format(nil, result, false))
	want := "1/2:hello world\n2/2>hello again\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_MultiFile(t *testing.T) {
	f := NewTextFormatter(false, false, false, 0)
	result := makeResult("test.txt", -1, "match\tline\nnext", 0, 5)

	got := string(f.Format(nil, result, true))
	want := "test.txt:1/1:match line next\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_CountOnly(t *testing.T) {
	f := NewTextFormatter(true, false, false, 0)
	result := makeResult("test.txt", 0, "a", 0, 1, "b", 0, 1, "c", 0, 1)

	// Single file
	got := string(f.Format(nil, result, false))
	if got != "3\n" {
		t.Errorf("count single: got %q, want %q", got, "3\n")
	}

	// Multi file
	got = string(f.Format(nil, result, true))
	if got != "test.txt:3\n" {
		t.Errorf("count multi: got %q, want %q", got, "test.txt:3\n")
	}
}

func TestTextFormatter_FilesOnly(t *testing.T) {
	f := NewTextFormatter(false, true, false, 0)

	// Has matches
	result := makeResult("test.txt", 0, "abc", 0, 1)
	got := string(f.Format(nil, result, true))
	if got != "test.txt\n" {
		t.Errorf("got %q, want %q", got, "test.txt\n")
	}

	// No matches
	result.Matches = nil
	got = string(f.Format(nil, result, true))
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestTextFormatter_MaxColumns(t *testing.T) {
	tests := []struct {
		name       string
		maxColumns int
		line       string
		start, end int
		want       string
	}{
		{
			name:       "window at start",
			maxColumns: 20,
			line:       "this is a very long line that exceeds the max columns limit",
			start:      0, end: 4,
			want: "1/1:this is a very long \n",
		},
		{
			// center=8, window centered: start=3, end=13
			name:       "centred",
			maxColumns: 10,
			line:       "hello world and more stuff",
			start:      6, end: 11,
			want: "1/1:lo world a\n",
		},
		{
			name:       "short line untouched",
			maxColumns: 60,
			line:       "short",
			start:      0, end: 5,
			want: "1/1:short\n",
		},
		{
			// Window edges that split a multi-byte rune move inward.
			name:       "rune aligned",
			maxColumns: 7,
			line:       "資訊技術資訊",
			start:      6, end: 12,
			want: "1/1:技術\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTextFormatter(false, false, false, tt.maxColumns)
			got := string(f.Format(nil, makeResult("t", -1, tt.line, tt.start, tt.end), false))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter_StaleRangeClamped(t *testing.T) {
	f := NewTextFormatter(false, false, false, 0)
	result := makeResult("t", 0, "hi", 0, 2)
	d := result.Matches[0].Node.Document()
	d.SetText(result.Matches[0].Node, "h")

	got := string(f.Format(nil, result, false))
	if got != "1/1>h\n" {
		t.Errorf("got %q", got)
	}
}

func TestOrderedWriter(t *testing.T) {
	var buf bytes.Buffer
	ow := NewOrderedWriter(&buf, NewTextFormatter(false, true, false, 0), true)

	results := make(chan Result, 4)
	a := makeResult("a", 0, "x", 0, 1)
	a.SeqNum = 1
	b := makeResult("b", 0, "x", 0, 1)
	b.SeqNum = 2
	c := makeResult("c", 0)
	c.SeqNum = 3
	d := makeResult("d", 0, "x", 0, 1)
	d.SeqNum = 4
	results <- d
	results <- b
	results <- c
	results <- a
	close(results)

	var seen int
	if err := ow.WriteOrdered(results, func(Result) { seen++ }); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a\nb\nd\n" {
		t.Errorf("got %q, want files in sequence order", got)
	}
	if seen != 4 {
		t.Errorf("onResult saw %d results, want 4", seen)
	}
}

func TestNoStyles(t *testing.T) {
	s := NoStyles()
	if strings.Contains(s.Match.Render("x"), "\x1b") {
		t.Error("NoStyles should not emit escape codes")
	}
}
