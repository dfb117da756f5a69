package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/outline"
)

// Outline is the applied outline of a tab.
type Outline struct {
	TabID     string          `json:"tab_id"`
	ScanID    string          `json:"scan_id"`
	Sequence  uint64          `json:"sequence"`
	Options   heading.Options `json:"options"`
	Result    outline.Result  `json:"result"`
	AppliedAt time.Time       `json:"applied_at"`
}

type session struct {
	userID   string
	opened   uint64 // first sequence issued since the tab was (re)opened
	applied  uint64 // sequence of the current outline
	outline  *Outline
	headings []heading.Record // last raw scan, kept for option rebuilds
}

// Sessions tracks per-tab outlines. Sequences come from one counter shared
// by all tabs and are issued in the order scans arrive; an outline is only
// replaced by one built from a newer sequence, so a slow build never
// overwrites a faster, newer one. The counter survives Close, so a build
// started before a tab was closed can never apply to the reopened tab.
type Sessions struct {
	mu   sync.Mutex
	seq  uint64
	tabs map[string]*session
}

func NewSessions() *Sessions {
	return &Sessions{tabs: make(map[string]*session)}
}

// Next issues the next sequence for tabID and remembers the raw headings.
func (s *Sessions) Next(tabID, userID string, headings []heading.Record) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sess := s.tabs[tabID]
	if sess == nil {
		sess = &session{opened: s.seq}
		s.tabs[tabID] = sess
	}
	if userID != "" {
		sess.userID = userID
	}
	sess.headings = headings
	return s.seq
}

// Apply installs o if its sequence is newer than the current outline and
// was issued during the tab's current lifetime. It reports false when o is
// stale.
func (s *Sessions) Apply(o *Outline) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.tabs[o.TabID]
	if sess == nil || o.Sequence < sess.opened || o.Sequence <= sess.applied {
		return false
	}
	sess.applied = o.Sequence
	sess.outline = o
	return true
}

// Get returns the current outline for tabID, or nil.
func (s *Sessions) Get(tabID string) *Outline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.tabs[tabID]; sess != nil {
		return sess.outline
	}
	return nil
}

// Headings returns the last raw scan for tabID.
func (s *Sessions) Headings(tabID string) ([]heading.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.tabs[tabID]
	if sess == nil {
		return nil, false
	}
	return sess.headings, true
}

// TabsForUser lists the tabs whose last scan came from userID.
func (s *Sessions) TabsForUser(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tabs []string
	for id, sess := range s.tabs {
		if sess.userID == userID {
			tabs = append(tabs, id)
		}
	}
	return tabs
}

// Close forgets a tab.
func (s *Sessions) Close(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tabs, tabID)
}
