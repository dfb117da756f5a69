package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/outline"
)

// Worker builds the outline for a single scan.
type Worker struct {
	sessions *Sessions
	stats    *BuildStats
	log      *slog.Logger
}

func NewWorker(sessions *Sessions, stats *BuildStats, log *slog.Logger) *Worker {
	return &Worker{
		sessions: sessions,
		stats:    stats,
		log:      log,
	}
}

// Process filters and builds the scan, then applies it unless a newer scan
// of the same tab has already been applied.
func (w *Worker) Process(ctx context.Context, scan *Scan) {
	log := w.log.With("scan_id", scan.ID, "tab_id", scan.TabID, "sequence", scan.Sequence)

	if err := ctx.Err(); err != nil {
		scan.AddError(err.Error())
		scan.SetStatus(StatusFailed)
		return
	}

	scan.SetStatus(StatusBuilding)

	// The builder does not validate; record problems so they are visible in
	// the scan status, then build whatever arrived.
	if err := heading.Validate(scan.headings); err != nil {
		problems := heading.Problems(err)
		for _, p := range problems {
			scan.AddError(p)
		}
		log.Warn("malformed scan", "problems", len(problems), "first", problems[0])
	}

	start := time.Now()
	res := outline.New(scan.headings, scan.opts)
	w.stats.Record(time.Since(start), len(scan.headings), res.Count)
	scan.setCount(res.Count)

	applied := w.sessions.Apply(&Outline{
		TabID:     scan.TabID,
		ScanID:    scan.ID,
		Sequence:  scan.Sequence,
		Options:   scan.opts,
		Result:    res,
		AppliedAt: time.Now(),
	})
	if !applied {
		log.Info("discarding stale outline")
		scan.SetStatus(StatusSuperseded)
		return
	}

	log.Info("outline applied", "count", res.Count, "records", len(scan.headings))
	scan.SetStatus(StatusApplied)
}
