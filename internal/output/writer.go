package output

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Writer writes formatted output to a file descriptor, using writev for batching.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// Write writes the given bytes using writev, retrying short writes.
func (w *Writer) Write(data []byte) (int, error) {
	total := 0
	for len(data) > 0 {
		iovs := [][]byte{data}
		n, err := unix.Writev(w.fd, iovs)
		total += n
		if err != nil {
			return total, err
		}
		data = data[n:]
	}
	return total, nil
}

// OrderedWriter receives results from a channel and writes them in sequence order.
// This ensures output is deterministic even with parallel workers.
type OrderedWriter struct {
	writer    io.Writer
	formatter Formatter
	multiFile bool
	buf       []byte
	err       error
}

// NewOrderedWriter creates an OrderedWriter.
func NewOrderedWriter(w io.Writer, f Formatter, multiFile bool) *OrderedWriter {
	return &OrderedWriter{
		writer:    w,
		formatter: f,
		multiFile: multiFile,
	}
}

// WriteOrdered consumes results from the channel, buffering out-of-order results
// and writing them in sequence-number order. Sequence numbers start at 1.
// onResult, if set, sees every result as it arrives.
func (ow *OrderedWriter) WriteOrdered(results <-chan Result, onResult func(Result)) error {
	nextSeq := 1
	pending := make(map[int]Result)

	for r := range results {
		if onResult != nil {
			onResult(r)
		}

		if r.SeqNum != nextSeq {
			pending[r.SeqNum] = r
			continue
		}
		ow.writeResult(r)
		nextSeq++
		// Flush any consecutive pending results
		for {
			p, ok := pending[nextSeq]
			if !ok {
				break
			}
			ow.writeResult(p)
			delete(pending, nextSeq)
			nextSeq++
		}
	}
	return ow.err
}

// WriteResult formats and writes a single result immediately.
func (ow *OrderedWriter) WriteResult(r Result) error {
	ow.writeResult(r)
	return ow.err
}

func (ow *OrderedWriter) writeResult(r Result) {
	if r.Err != nil || ow.err != nil {
		return
	}
	ow.buf = ow.formatter.Format(ow.buf[:0], r, ow.multiFile)
	if len(ow.buf) == 0 {
		return
	}
	_, ow.err = ow.writer.Write(ow.buf)
}
