package pipeline

import (
	"slices"
	"sync"
	"time"
)

// build is one filter-and-build run of a scan.
type build struct {
	at      time.Time
	us      int64 // wall time in microseconds
	records int   // raw heading records in the scan
	nodes   int   // tree nodes produced
}

// StatsSnapshot summarises the builds inside the stats window.
type StatsSnapshot struct {
	Count int `json:"count"`

	MinUs int64   `json:"min_us"`
	MaxUs int64   `json:"max_us"`
	AvgUs float64 `json:"avg_us"`
	P50Us float64 `json:"p50_us"`
	P95Us float64 `json:"p95_us"`
	P99Us float64 `json:"p99_us"`

	// Scan sizes, so latency can be read against input volume.
	MaxRecords int     `json:"max_records"`
	AvgRecords float64 `json:"avg_records"`
	Nodes      int     `json:"nodes"`
}

// BuildStats keeps the builds of the last window for the stats endpoint.
type BuildStats struct {
	mu     sync.Mutex
	builds []build
	window time.Duration
}

func NewBuildStats(window time.Duration) *BuildStats {
	if window <= 0 {
		window = time.Hour
	}
	return &BuildStats{window: window}
}

// Record adds one build of a scan with the given number of heading records
// that produced nodes tree nodes.
func (s *BuildStats) Record(d time.Duration, records, nodes int) {
	b := build{
		at:      time.Now(),
		us:      max(d.Microseconds(), 0),
		records: max(records, 0),
		nodes:   max(nodes, 0),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(b.at)
	s.builds = append(s.builds, b)
}

func (s *BuildStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(time.Now())
	builds := slices.Clone(s.builds)
	s.mu.Unlock()

	if len(builds) == 0 {
		return StatsSnapshot{}
	}

	latencies := make([]int64, len(builds))
	var totalUs int64
	var totalRecords int
	snap := StatsSnapshot{Count: len(builds)}
	for i, b := range builds {
		latencies[i] = b.us
		totalUs += b.us
		totalRecords += b.records
		snap.Nodes += b.nodes
		snap.MaxRecords = max(snap.MaxRecords, b.records)
	}
	slices.Sort(latencies)

	n := float64(len(builds))
	snap.MinUs = latencies[0]
	snap.MaxUs = latencies[len(latencies)-1]
	snap.AvgUs = float64(totalUs) / n
	snap.AvgRecords = float64(totalRecords) / n
	snap.P50Us = quantile(latencies, 0.50)
	snap.P95Us = quantile(latencies, 0.95)
	snap.P99Us = quantile(latencies, 0.99)
	return snap
}

// expire drops builds older than the window. Caller holds s.mu.
func (s *BuildStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	s.builds = slices.DeleteFunc(s.builds, func(b build) bool {
		return b.at.Before(cutoff)
	})
}

// quantile interpolates linearly between the two closest ranks of sorted.
func quantile(sorted []int64, q float64) float64 {
	last := len(sorted) - 1
	switch {
	case last < 0:
		return 0
	case q <= 0:
		return float64(sorted[0])
	case q >= 1:
		return float64(sorted[last])
	}
	pos := float64(last) * q
	i := int(pos)
	if i >= last {
		return float64(sorted[last])
	}
	lo, hi := float64(sorted[i]), float64(sorted[i+1])
	return lo + (hi-lo)*(pos-float64(i))
}
