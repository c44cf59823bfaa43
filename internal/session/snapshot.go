package session

import (
	"strconv"

	"github.com/dl/vsearch/internal/document"
	"github.com/dl/vsearch/internal/matcher"
)

// Snapshot is the committed state of a session at one point in time.
// Matches is shared with the session and must not be modified.
type Snapshot struct {
	Generation uint64
	State      State
	Keyword    string
	Options    matcher.Options
	Matches    []document.Range
	Current    int   // -1 when there are no matches
	Err        error // invalid pattern of the committed search, if any
}

// Label returns "{current}/{total}" with a 1-based current, or "0" when
// there are no matches.
func (s Snapshot) Label() string {
	if len(s.Matches) == 0 || s.Current < 0 {
		return "0"
	}
	return strconv.Itoa(s.Current+1) + "/" + strconv.Itoa(len(s.Matches))
}

// CurrentMatch returns the current match, if any.
func (s Snapshot) CurrentMatch() (document.Range, bool) {
	if s.Current < 0 || s.Current >= len(s.Matches) {
		return document.Range{}, false
	}
	return s.Matches[s.Current], true
}

// Subscribe returns a channel that receives a snapshot after every commit
// and navigation. Only the latest snapshot is kept for a slow reader. The
// returned func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publishLocked replaces any undelivered snapshot with snap.
func (s *Session) publishLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
