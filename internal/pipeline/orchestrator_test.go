package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/outliner/internal/config"
	"github.com/dgallion1/outliner/internal/heading"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:  2,
		MaxQueueSize: 10,
		ScanTTL:      time.Hour,
		StatsWindow:  time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(level, ordinal int, name string) heading.Record {
	return heading.Record{Level: level, Ordinal: ordinal, Name: name, VisibleOnScreen: true, VisibleToAT: true}
}

func waitStatus(t *testing.T, scan *Scan, want ScanStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if scan.Snapshot().Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("scan %s: expected status %q, got %q", scan.ID, want, scan.Snapshot().Status)
}

func TestWorker_ProcessApplies(t *testing.T) {
	sessions := NewSessions()
	stats := NewBuildStats(time.Hour)
	w := NewWorker(sessions, stats, discardLogger())

	scan := NewScan("tab", "", []heading.Record{rec(1, 1, "A"), rec(2, 2, "B")}, heading.Options{})
	scan.Sequence = sessions.Next(scan.TabID, "", scan.headings)
	w.Process(context.Background(), scan)

	snap := scan.Snapshot()
	if snap.Status != StatusApplied {
		t.Fatalf("expected applied, got %q", snap.Status)
	}
	if snap.Count != 2 {
		t.Errorf("expected count 2, got %d", snap.Count)
	}
	out := sessions.Get("tab")
	if out == nil || len(out.Result.Nodes) != 1 || out.Result.Nodes[0].Descendants != 1 {
		t.Errorf("unexpected outline: %+v", out)
	}
	if stats.Snapshot().Count != 1 {
		t.Error("expected one build sample")
	}
}

func TestWorker_StaleScanSuperseded(t *testing.T) {
	sessions := NewSessions()
	w := NewWorker(sessions, NewBuildStats(time.Hour), discardLogger())

	older := NewScan("tab", "", []heading.Record{rec(1, 1, "Old")}, heading.Options{})
	older.Sequence = sessions.Next("tab", "", older.headings)
	newer := NewScan("tab", "", []heading.Record{rec(1, 1, "New")}, heading.Options{})
	newer.Sequence = sessions.Next("tab", "", newer.headings)

	w.Process(context.Background(), newer)
	w.Process(context.Background(), older)

	if got := older.Snapshot().Status; got != StatusSuperseded {
		t.Errorf("expected older scan superseded, got %q", got)
	}
	if got := sessions.Get("tab").Result.Nodes[0].Name; got != "New" {
		t.Errorf("expected outline from newer scan, got %q", got)
	}
}

func TestWorker_MalformedRecordsStillBuild(t *testing.T) {
	sessions := NewSessions()
	w := NewWorker(sessions, NewBuildStats(time.Hour), discardLogger())

	scan := NewScan("tab", "", []heading.Record{rec(9, 1, "Deep"), rec(1, 2, "Top")}, heading.Options{})
	scan.Sequence = sessions.Next("tab", "", scan.headings)
	w.Process(context.Background(), scan)

	snap := scan.Snapshot()
	if snap.Status != StatusApplied {
		t.Fatalf("expected applied, got %q", snap.Status)
	}
	if len(snap.Errors) == 0 {
		t.Error("expected validation problems to be recorded")
	}
}

func TestWorker_CancelledContext(t *testing.T) {
	sessions := NewSessions()
	w := NewWorker(sessions, NewBuildStats(time.Hour), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scan := NewScan("tab", "", nil, heading.Options{})
	scan.Sequence = sessions.Next("tab", "", nil)
	w.Process(ctx, scan)

	if got := scan.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected failed, got %q", got)
	}
}

func TestOrchestrator_SubmitAndRebuild(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	recs := []heading.Record{
		rec(1, 1, "Shown"),
		{Level: 2, Ordinal: 2, Name: "Offscreen", VisibleOnScreen: false, VisibleToAT: true},
	}
	scan := NewScan("tab", "user", recs, heading.Options{})
	if err := o.Submit(scan); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitStatus(t, scan, StatusApplied)
	if got := o.Outline("tab").Result.Count; got != 1 {
		t.Fatalf("expected 1 heading by default, got %d", got)
	}
	if o.GetScan(scan.ID) != scan {
		t.Error("expected scan to be retrievable")
	}

	rebuilt, err := o.RebuildUser("user", heading.Options{IncludeHiddenAT: true})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(rebuilt) != 1 {
		t.Fatalf("expected one rebuilt tab, got %d", len(rebuilt))
	}
	waitStatus(t, rebuilt[0], StatusApplied)
	if got := o.Outline("tab").Result.Count; got != 2 {
		t.Errorf("expected 2 headings with hidden included, got %d", got)
	}
	if o.Stats().Count < 2 {
		t.Error("expected build samples")
	}
}

func TestOrchestrator_RebuildUnknownTab(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	if _, err := o.Rebuild("ghost", heading.Options{}); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("expected ErrUnknownTab, got %v", err)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(cfg, discardLogger())

	if err := o.Submit(NewScan("tab", "", nil, heading.Options{})); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewScan("tab", "", nil, heading.Options{})
	if err := o.Submit(second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if got := second.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected failed status, got %q", got)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	if err := o.Submit(NewScan("tab", "", nil, heading.Options{})); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestOrchestrator_StopFailsUnstartedScans(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())

	first := NewScan("tab", "", []heading.Record{rec(1, 1, "A")}, heading.Options{})
	second := NewScan("other", "", nil, heading.Options{})
	for _, scan := range []*Scan{first, second} {
		if err := o.Submit(scan); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	o.Stop()

	for _, scan := range []*Scan{first, second} {
		snap := scan.Snapshot()
		if snap.Status != StatusFailed {
			t.Errorf("scan %s: expected failed, got %q", scan.ID, snap.Status)
		}
		if len(snap.Errors) != 1 || snap.Errors[0] != ErrStopped.Error() {
			t.Errorf("scan %s: expected stopped error, got %v", scan.ID, snap.Errors)
		}
	}
	if o.QueueDepth() != 0 {
		t.Errorf("expected drained queue, got depth %d", o.QueueDepth())
	}
}

func TestOrchestrator_StopAfterParentCancelLeavesNothingQueued(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(ctx)
	cancel()

	var scans []*Scan
	for i := range 5 {
		scan := NewScan("tab", "", []heading.Record{rec(1, i+1, "A")}, heading.Options{})
		if err := o.Submit(scan); err != nil {
			t.Fatalf("submit: %v", err)
		}
		scans = append(scans, scan)
	}
	o.Stop()

	for _, scan := range scans {
		if got := scan.Snapshot().Status; got != StatusFailed {
			t.Errorf("scan %s: expected failed, got %q", scan.ID, got)
		}
	}
}
