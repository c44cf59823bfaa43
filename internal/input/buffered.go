package input

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// bufPool pools read buffers to reduce per-document heap allocations.
// Buffers are stored as *[]byte so the pool can reuse the backing array
// even when the slice grows beyond its original capacity.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64*1024)
		return &b
	},
}

// BufferedReader reads files with O_NOATIME and pread into pooled buffers.
// Parsing copies what it keeps, so the buffer goes back to the pool once
// the document is built.
type BufferedReader struct {
	maxSize int64
}

// NewBufferedReader creates a BufferedReader. maxSize <= 0 selects
// DefaultMaxSize.
func NewBufferedReader(maxSize int64) *BufferedReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &BufferedReader{maxSize: maxSize}
}

func (r *BufferedReader) Read(path string) (ReadResult, error) {
	fd, err := openFile(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return ReadResult{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.Mode&unix.S_IFMT == unix.S_IFDIR {
		return ReadResult{}, fmt.Errorf("read %s: %w", path, unix.EISDIR)
	}
	if stat.Size == 0 {
		return ReadResult{Data: nil, Closer: noopCloser}, nil
	}
	if stat.Size > r.maxSize {
		return ReadResult{}, tooLarge(path, stat.Size, r.maxSize)
	}

	bp := bufPool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < int(stat.Size) {
		buf = make([]byte, stat.Size)
	} else {
		buf = buf[:stat.Size]
	}
	release := func() error {
		*bp = buf[:0]
		bufPool.Put(bp)
		return nil
	}

	// pread keeps no seek state; a file that shrinks mid-read stops at EOF.
	total := 0
	for total < len(buf) {
		n, err := unix.Pread(fd, buf[total:], int64(total))
		if err != nil {
			release()
			return ReadResult{}, fmt.Errorf("read %s: %w", path, err)
		}
		if n == 0 {
			break
		}
		total += n
	}

	return ReadResult{Data: buf[:total], Closer: release}, nil
}

func openFile(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME|unix.O_CLOEXEC, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	}
	return fd, err
}
