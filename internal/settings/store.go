package settings

import (
	"fmt"
	"strings"
	"sync"
)

// Store holds the current settings and fans out changes.
type Store struct {
	mu      sync.Mutex
	cur     Settings
	subs    map[int]chan Settings
	nextSub int
}

// NewStore creates a Store holding s.
func NewStore(s Settings) *Store {
	return &Store{cur: s, subs: make(map[int]chan Settings)}
}

// Snapshot returns the current settings.
func (st *Store) Snapshot() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur
}

// Set validates s and makes it current. Subscribers are notified only when
// something changed.
func (st *Store) Set(s Settings) error {
	if errs := s.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s == st.cur {
		return nil
	}
	st.cur = s
	for _, ch := range st.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
	return nil
}

// Update applies fn to a copy of the current settings and stores the result.
func (st *Store) Update(fn func(*Settings)) error {
	s := st.Snapshot()
	fn(&s)
	return st.Set(s)
}

// Reload reads path and stores its settings.
func (st *Store) Reload(path string) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	return st.Set(s)
}

// Subscribe returns a channel receiving the settings after each change.
// Only the latest value is buffered.
func (st *Store) Subscribe() (<-chan Settings, func()) {
	ch := make(chan Settings, 1)
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = ch
	st.mu.Unlock()

	return ch, func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if c, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(c)
		}
	}
}
