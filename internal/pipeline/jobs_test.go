package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", "2", true)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusDiscovering, "discovering"},
		{StatusChunking, "chunking"},
		{StatusWriting, "writing index"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestNewJob_Queued(t *testing.T) {
	job := NewJob("j", "7", false)
	snap := job.Snapshot()
	if snap.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, snap.Status)
	}
	if snap.RunID != "7" {
		t.Errorf("expected run id %q, got %q", "7", snap.RunID)
	}
	if job.WriteIndex {
		t.Error("expected WriteIndex false")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("depth_1/a.md: bad encoding")
	job.AddError("depth_2/b.md: timeout")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "depth_1/a.md: bad encoding" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestJob_RecordOutcome(t *testing.T) {
	job := &Job{ID: "outcome-test", UpdatedAt: time.Now()}
	job.SetTotalDocuments(4)
	job.RecordOutcome(Outcome{FilePath: "a.md", Chunks: 3})
	job.RecordOutcome(Outcome{FilePath: "b.md", Chunks: 2})
	job.RecordOutcome(Outcome{FilePath: "c.md"})
	job.RecordOutcome(Outcome{FilePath: "d.md", Err: errors.New("boom")})

	p := job.Snapshot().Progress
	if p.TotalDocuments != 4 {
		t.Errorf("expected 4 total documents, got %d", p.TotalDocuments)
	}
	if p.DocumentsProcessed != 4 {
		t.Errorf("expected 4 processed, got %d", p.DocumentsProcessed)
	}
	if p.DocumentsWritten != 2 {
		t.Errorf("expected 2 written, got %d", p.DocumentsWritten)
	}
	if p.ChunksWritten != 5 {
		t.Errorf("expected 5 chunks, got %d", p.ChunksWritten)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_Report(t *testing.T) {
	job := &Job{ID: "rep"}
	if job.Report() != nil {
		t.Fatal("expected nil report before run")
	}
	job.SetReport(&Report{RunID: "2", TotalChunks: 9})
	if got := job.Report(); got == nil || got.TotalChunks != 9 {
		t.Errorf("unexpected report %+v", got)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}

func TestValidRunID(t *testing.T) {
	for id, want := range map[string]bool{
		"2":         true,
		"run-2026":  true,
		"":          false,
		".":         false,
		"..":        false,
		"a/b":       false,
		`a\b`:       false,
		"../escape": false,
	} {
		if got := ValidRunID(id); got != want {
			t.Errorf("ValidRunID(%q) = %v, want %v", id, got, want)
		}
	}
}
