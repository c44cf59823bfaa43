// Package watch reports changes to document files so they can be reloaded
// into their live documents.
package watch

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Event represents a file change event.
type Event struct {
	Path string
	Type EventType
	Err  error
}

// EventType identifies the kind of file change.
type EventType int

const (
	EventModified EventType = iota
	EventCreated
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

// Watcher watches files and directories for changes using raw inotify + epoll.
// Files are watched through their parent directory so that editors that
// save by renaming a temporary file over the original keep being seen.
type Watcher struct {
	inotifyFd int
	epollFd   int

	mu    sync.Mutex
	dirs  map[int]string      // wd -> directory
	wds   map[string]int      // directory -> wd
	files map[string]struct{} // files of interest
	whole map[string]struct{} // directories added directly: every entry is of interest

	done      chan struct{}
	closeOnce sync.Once
}

const watchMask = unix.IN_CLOSE_WRITE | unix.IN_CREATE | unix.IN_MOVED_TO |
	unix.IN_DELETE | unix.IN_MOVED_FROM | unix.IN_DELETE_SELF

// New creates a new inotify-based file watcher.
func New() (*Watcher, error) {
	ifd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	efd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	// Register inotify fd with epoll
	event := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(ifd),
	}
	if err := unix.EpollCtl(efd, unix.EPOLL_CTL_ADD, ifd, &event); err != nil {
		unix.Close(efd)
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_ctl: %w", err)
	}

	return &Watcher{
		inotifyFd: ifd,
		epollFd:   efd,
		dirs:      make(map[int]string),
		wds:       make(map[string]int),
		files:     make(map[string]struct{}),
		whole:     make(map[string]struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Add adds a path to watch. A directory reports changes to any entry; a
// file reports changes to itself only.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	dir := absPath
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.wds[dir]; !ok {
		wd, err := unix.InotifyAddWatch(w.inotifyFd, dir, watchMask)
		if err != nil {
			return fmt.Errorf("inotify_add_watch %s: %w", dir, err)
		}
		w.dirs[wd] = dir
		w.wds[dir] = wd
	}
	if info.IsDir() {
		w.whole[absPath] = struct{}{}
	} else {
		w.files[absPath] = struct{}{}
	}
	return nil
}

// Events returns a channel of file events. The channel is closed after Close.
func (w *Watcher) Events() <-chan Event {
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		buf := make([]byte, 4096)
		events := make([]unix.EpollEvent, 1)

		for {
			select {
			case <-w.done:
				return
			default:
			}

			// Wait for events with 100ms timeout
			n, err := unix.EpollWait(w.epollFd, events, 100)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				w.send(ch, Event{Err: fmt.Errorf("epoll_wait: %w", err)})
				return
			}
			if n == 0 {
				continue
			}

			// Read inotify events
			nbytes, err := unix.Read(w.inotifyFd, buf)
			if err != nil {
				if err == unix.EAGAIN {
					continue
				}
				w.send(ch, Event{Err: fmt.Errorf("read inotify: %w", err)})
				return
			}

			// Parse inotify events from buffer
			for _, evt := range w.parseEvents(buf[:nbytes]) {
				if !w.send(ch, evt) {
					return
				}
			}
		}
	}()
	return ch
}

func (w *Watcher) send(ch chan<- Event, evt Event) bool {
	select {
	case ch <- evt:
		return true
	case <-w.done:
		return false
	}
}

// inotify event header layout:
//
//	int32  wd       (offset 0)
//	uint32 mask     (offset 4)
//	uint32 cookie   (offset 8)
//	uint32 len      (offset 12)
//	char   name[]   (offset 16)
const inotifyEventSize = 16

func (w *Watcher) parseEvents(buf []byte) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Event
	offset := 0
	for offset+inotifyEventSize <= len(buf) {
		wd := int32(binary.LittleEndian.Uint32(buf[offset:]))
		mask := binary.LittleEndian.Uint32(buf[offset+4:])
		// cookie at offset+8 (unused)
		nameLen := int(binary.LittleEndian.Uint32(buf[offset+12:]))

		var name string
		if nameLen > 0 {
			nameStart := offset + inotifyEventSize
			nameEnd := nameStart + nameLen
			if nameEnd > len(buf) {
				break
			}
			nameBytes := buf[nameStart:nameEnd]
			// Trim NUL padding
			for i, b := range nameBytes {
				if b == 0 {
					nameBytes = nameBytes[:i]
					break
				}
			}
			name = string(nameBytes)
		}

		offset += inotifyEventSize + nameLen

		dirPath, ok := w.dirs[int(wd)]
		if !ok {
			continue
		}
		path := dirPath
		if name != "" {
			path = filepath.Join(dirPath, name)
		}
		if !w.interesting(dirPath, path) {
			continue
		}

		switch {
		case mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0:
			out = append(out, Event{Path: path, Type: EventCreated})
		case mask&unix.IN_CLOSE_WRITE != 0:
			out = append(out, Event{Path: path, Type: EventModified})
		case mask&(unix.IN_DELETE|unix.IN_MOVED_FROM|unix.IN_DELETE_SELF) != 0:
			out = append(out, Event{Path: path, Type: EventDeleted})
		}
	}
	return out
}

func (w *Watcher) interesting(dir, path string) bool {
	if _, ok := w.whole[dir]; ok {
		return true
	}
	_, ok := w.files[path]
	return ok
}

// Close stops the watcher and releases resources. It is safe to call twice.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		unix.Close(w.epollFd)
		err = unix.Close(w.inotifyFd)
	})
	return err
}
