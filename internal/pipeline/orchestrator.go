package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/outliner/internal/config"
	"github.com/dgallion1/outliner/internal/heading"
)

var (
	// ErrQueueFull is returned when the build queue cannot take more scans.
	ErrQueueFull = errors.New("scan queue is full")
	// ErrUnknownTab is returned when rebuilding a tab that never sent a scan.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("pipeline stopped")
)

// Orchestrator turns submitted scans into per-tab outlines.
type Orchestrator struct {
	scans    *ScanStore
	sessions *Sessions
	stats    *BuildStats
	queue    chan *Scan
	log      *slog.Logger
	cfg      config.Config

	mu      sync.Mutex
	stopped bool

	cancel  context.CancelFunc
	workers sync.WaitGroup
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		scans:    NewScanStore(cfg.ScanTTL),
		sessions: NewSessions(),
		stats:    NewBuildStats(cfg.StatsWindow),
		queue:    make(chan *Scan, cfg.MaxQueueSize),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o.sessions, o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case scan, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, scan)
				}
			}
		}()
	}

	// Start scan store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.scans.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Workers finish the scans already
// queued; scans they could not take (the parent context was cancelled, or
// the pipeline was never started) are marked failed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	o.workers.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	for scan := range o.queue {
		scan.AddError(ErrStopped.Error())
		scan.SetStatus(StatusFailed)
	}
}

// Submit assigns the scan its tab sequence and queues it for building.
// Sequences follow submission order, which is the order scans completed.
func (o *Orchestrator) Submit(scan *Scan) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}

	scan.Sequence = o.sessions.Next(scan.TabID, scan.UserID, scan.headings)
	o.scans.Put(scan)
	select {
	case o.queue <- scan:
		return nil
	default:
		scan.SetStatus(StatusFailed)
		scan.AddError("queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Rebuild resubmits the last scan of tabID with new display options.
func (o *Orchestrator) Rebuild(tabID string, opts heading.Options) (*Scan, error) {
	headings, ok := o.sessions.Headings(tabID)
	if !ok {
		return nil, fmt.Errorf("rebuild %s: %w", tabID, ErrUnknownTab)
	}
	scan := NewScan(tabID, "", headings, opts)
	if err := o.Submit(scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// RebuildUser rebuilds every tab last scanned by userID.
func (o *Orchestrator) RebuildUser(userID string, opts heading.Options) ([]*Scan, error) {
	var out []*Scan
	for _, tabID := range o.sessions.TabsForUser(userID) {
		scan, err := o.Rebuild(tabID, opts)
		if err != nil {
			return out, err
		}
		out = append(out, scan)
	}
	return out, nil
}

// Outline returns the current outline for tabID, or nil.
func (o *Orchestrator) Outline(tabID string) *Outline {
	return o.sessions.Get(tabID)
}

// CloseTab drops all state for tabID.
func (o *Orchestrator) CloseTab(tabID string) {
	o.sessions.Close(tabID)
}

// GetScan returns a scan by ID.
func (o *Orchestrator) GetScan(id string) *Scan {
	return o.scans.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the build latency snapshot.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
