package runlog

import (
	"testing"
	"time"
)

func TestStore_WriteGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	rec := &RunRecord{
		RunID:         "run-1",
		Name:          "demo",
		State:         RunStateRunning,
		ScenarioPath:  "/tmp/scenario.yaml",
		Basename:      "fire",
		SegmentsTotal: 6,
		CreatedAt:     now,
		StartedAt:     &now,
	}

	if err := s.Write(rec); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := s.Get("run-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.RunID != rec.RunID {
		t.Fatalf("run_id mismatch: got=%q want=%q", got.RunID, rec.RunID)
	}
	if got.State != rec.State {
		t.Fatalf("state mismatch: got=%q want=%q", got.State, rec.State)
	}
	if got.Basename != "fire" || got.SegmentsTotal != 6 {
		t.Fatalf("summary fields not persisted: %+v", got)
	}
}

func TestStore_ListSortsNewestFirst(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	t1 := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 20, 13, 0, 0, 0, time.UTC)

	if err := s.Write(&RunRecord{RunID: "run-1", State: RunStateSucceeded, ScenarioPath: "/tmp/a", CreatedAt: t1, StartedAt: &t1}); err != nil {
		t.Fatalf("Write run-1: %v", err)
	}
	if err := s.Write(&RunRecord{RunID: "run-2", State: RunStateSucceeded, ScenarioPath: "/tmp/b", CreatedAt: t2, StartedAt: &t2}); err != nil {
		t.Fatalf("Write run-2: %v", err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected run count: %d", len(got))
	}
	if got[0].RunID != "run-2" {
		t.Fatalf("expected newest first, got[0]=%q", got[0].RunID)
	}
}

func TestStore_ZombieDetection(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	// PID 1 is init and always alive; an absurdly high pid is not.
	if err := s.Write(&RunRecord{RunID: "run-1", State: RunStateRunning, ScenarioPath: "/tmp/a", PID: 1 << 22, CreatedAt: now}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != RunStateUnknown {
		t.Fatalf("expected unknown state for dead pid, got %q", got.State)
	}
}

func TestRunState_Terminal(t *testing.T) {
	if !RunStateSucceeded.Terminal() || !RunStateAborted.Terminal() {
		t.Fatal("succeeded and aborted are terminal")
	}
	if RunStateRunning.Terminal() || RunStatePending.Terminal() || RunStateUnknown.Terminal() {
		t.Fatal("non-terminal states reported terminal")
	}
}
