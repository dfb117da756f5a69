package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/google/uuid"
)

// ScanStatus represents the state of a submitted page scan.
type ScanStatus string

const (
	StatusQueued     ScanStatus = "queued"
	StatusBuilding   ScanStatus = "building"
	StatusApplied    ScanStatus = "applied"
	StatusSuperseded ScanStatus = "superseded"
	StatusFailed     ScanStatus = "failed"
)

// Scan is one page-scan result waiting to be turned into an outline.
type Scan struct {
	mu sync.Mutex

	ID       string `json:"scan_id"`
	TabID    string `json:"tab_id"`
	UserID   string `json:"user_id"`
	Sequence uint64 `json:"sequence"`

	Status ScanStatus `json:"status"`
	Count  int        `json:"count"`
	Errors []string   `json:"errors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	headings []heading.Record
	opts     heading.Options
}

// NewScan creates a queued scan with a fresh id.
func NewScan(tabID, userID string, headings []heading.Record, opts heading.Options) *Scan {
	now := time.Now()
	return &Scan{
		ID:        uuid.NewString(),
		TabID:     tabID,
		UserID:    userID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		headings:  headings,
		opts:      opts,
	}
}

// SetStatus updates scan status atomically.
func (s *Scan) SetStatus(status ScanStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.UpdatedAt = time.Now()
}

// AddError records a problem found while building.
func (s *Scan) AddError(err string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, err)
	s.UpdatedAt = time.Now()
}

func (s *Scan) setCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Count = n
}

// ScanSnapshot is a read-only, JSON-safe copy of scan state.
type ScanSnapshot struct {
	ID       string     `json:"scan_id"`
	TabID    string     `json:"tab_id"`
	UserID   string     `json:"user_id"`
	Sequence uint64     `json:"sequence"`
	Status   ScanStatus `json:"status"`
	Count    int        `json:"count"`
	Errors   []string   `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the scan state.
func (s *Scan) Snapshot() ScanSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := make([]string, len(s.Errors))
	copy(errs, s.Errors)
	return ScanSnapshot{
		ID:       s.ID,
		TabID:    s.TabID,
		UserID:   s.UserID,
		Sequence: s.Sequence,
		Status:   s.Status,
		Count:    s.Count,
		Errors:   errs,
	}
}

// ScanStore is a thread-safe in-memory scan registry with TTL eviction.
type ScanStore struct {
	mu    sync.Mutex
	scans map[string]*Scan
	ttl   time.Duration
}

func NewScanStore(ttl time.Duration) *ScanStore {
	return &ScanStore{
		scans: make(map[string]*Scan),
		ttl:   ttl,
	}
}

func (s *ScanStore) Put(scan *Scan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[scan.ID] = scan
}

func (s *ScanStore) Get(id string) *Scan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans[id]
}

// Cleanup removes expired scans.
func (s *ScanStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, scan := range s.scans {
		scan.mu.Lock()
		updated := scan.UpdatedAt
		scan.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.scans, id)
		}
	}
}
