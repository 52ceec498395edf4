package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zeptools/print-core/printjobs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := &Store{Conf: &printjobs.Conf{Type: "memory"}}
	if err := s.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func submitJob(t *testing.T, s *Store, id string) string {
	t.Helper()
	jobID, err := s.Submit(context.Background(), &printjobs.PrintJob{
		ID:          id,
		PrinterName: "Front-Desk-Printer",
		Artifact:    printjobs.Artifact{DocumentURL: "http://files.local/doc.pdf"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return jobID
}

func TestSubmitStartsPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Submit(ctx, &printjobs.PrintJob{
		PrinterName: "Front-Desk-Printer",
		Status:      printjobs.StatusCompleted, // caller cannot pre-set status
		Artifact:    printjobs.Artifact{DocumentURL: "http://files.local/doc.pdf"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id == "" {
		t.Fatal("submit returned empty id")
	}
	j, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.Status != printjobs.StatusPending {
		t.Errorf("new job status: got %q want %q", j.Status, printjobs.StatusPending)
	}
	if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on submit")
	}
}

func TestSubmitDuplicateID(t *testing.T) {
	s := newTestStore(t)
	submitJob(t, s, "job-1")
	if _, err := s.Submit(context.Background(), &printjobs.PrintJob{ID: "job-1", PrinterName: "p"}); err == nil {
		t.Fatal("duplicate submit should fail")
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ids := []string{"job-a", "job-b", "job-c"}
	for _, id := range ids {
		submitJob(t, s, id)
	}
	jobs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != len(ids) {
		t.Fatalf("list length: got %d want %d", len(jobs), len(ids))
	}
	for i, j := range jobs {
		if j.ID != ids[i] {
			t.Errorf("jobs[%d].ID: got %q want %q", i, j.ID, ids[i])
		}
	}
}

func TestClaimCompareAndSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, s, "")

	ok, err := s.Claim(ctx, id, "agent-1")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !ok {
		t.Fatal("first claim should win")
	}
	ok, err = s.Claim(ctx, id, "agent-2")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatal("second claim must lose")
	}
	j, _ := s.Get(ctx, id)
	if j.ClaimedBy.ForceValue() != "agent-1" {
		t.Errorf("claimed_by: got %q want %q", j.ClaimedBy.ForceValue(), "agent-1")
	}
	if !j.LeaseExpiresAt.Valid {
		t.Error("claim did not stamp a lease")
	}
}

func TestClaimUnknownID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Claim(context.Background(), "nope", "agent-1"); !errors.Is(err, printjobs.ErrNotFound) {
		t.Fatalf("claim unknown id: got %v want ErrNotFound", err)
	}
}

func TestSetStatusUnknownIDNoPhantom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.SetStatus(ctx, "nope", printjobs.StatusProcessing, "")
	if !errors.Is(err, printjobs.ErrNotFound) {
		t.Fatalf("set status on unknown id: got %v want ErrNotFound", err)
	}
	jobs, _ := s.List(ctx)
	if len(jobs) != 0 {
		t.Fatalf("phantom job created: %d jobs in store", len(jobs))
	}
}

func TestSetStatusLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, s, "")

	if err := s.SetStatus(ctx, id, printjobs.StatusCompleted, ""); !errors.Is(err, printjobs.ErrBadTransition) {
		t.Fatalf("pending->completed: got %v want ErrBadTransition", err)
	}
	if err := s.SetStatus(ctx, id, printjobs.StatusProcessing, ""); err != nil {
		t.Fatalf("pending->processing: %v", err)
	}
	if err := s.SetStatus(ctx, id, printjobs.StatusFailed, "out of paper"); err != nil {
		t.Fatalf("processing->failed: %v", err)
	}
	j, _ := s.Get(ctx, id)
	if j.Error.ForceValue() != "out of paper" {
		t.Errorf("error message: got %q want %q", j.Error.ForceValue(), "out of paper")
	}
	if err := s.SetStatus(ctx, id, printjobs.StatusPending, ""); !errors.Is(err, printjobs.ErrBadTransition) {
		t.Fatalf("failed->pending: got %v want ErrBadTransition", err)
	}
}

func TestErrorClearedOnRequeue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, s, "")
	if ok, _ := s.Claim(ctx, id, "agent-1"); !ok {
		t.Fatal("claim lost")
	}
	if err := s.SetStatus(ctx, id, printjobs.StatusPending, "ignored"); err != nil {
		t.Fatalf("processing->pending: %v", err)
	}
	j, _ := s.Get(ctx, id)
	if j.Error.Valid {
		t.Errorf("error should be clear after requeue, got %q", j.Error.String)
	}
	if j.ClaimedBy.Valid || j.LeaseExpiresAt.Valid {
		t.Error("claim bookkeeping should be clear after requeue")
	}
}

func TestLeaseExpiryReapsOnRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }
	s.Conf.LeaseTTLSec = 60

	id := submitJob(t, s, "")
	if ok, _ := s.Claim(ctx, id, "agent-1"); !ok {
		t.Fatal("claim lost")
	}

	// lease still live
	s.Now = func() time.Time { return base.Add(30 * time.Second) }
	j, _ := s.Get(ctx, id)
	if j.Status != printjobs.StatusProcessing {
		t.Fatalf("status before expiry: got %q want %q", j.Status, printjobs.StatusProcessing)
	}

	// lease lapsed, the next read reverts the job
	s.Now = func() time.Time { return base.Add(2 * time.Minute) }
	j, _ = s.Get(ctx, id)
	if j.Status != printjobs.StatusPending {
		t.Fatalf("status after expiry: got %q want %q", j.Status, printjobs.StatusPending)
	}
	if j.ClaimedBy.Valid {
		t.Error("claimed_by should be clear after reap")
	}

	// the job is claimable again
	if ok, err := s.Claim(ctx, id, "agent-2"); err != nil || !ok {
		t.Fatalf("re-claim after reap: ok=%v err=%v", ok, err)
	}
}

func TestDirectProcessingReportGetsLease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, s, "")
	if err := s.SetStatus(ctx, id, printjobs.StatusProcessing, ""); err != nil {
		t.Fatalf("pending->processing: %v", err)
	}
	j, _ := s.Get(ctx, id)
	if !j.LeaseExpiresAt.Valid {
		t.Error("direct processing report should stamp a lease")
	}
}

func TestClearFinished(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := submitJob(t, s, "job-done")
	failed := submitJob(t, s, "job-failed")
	stuck := submitJob(t, s, "job-stuck")
	queued := submitJob(t, s, "job-queued")

	mustSet := func(id string, sts ...printjobs.Status) {
		t.Helper()
		for _, st := range sts {
			if err := s.SetStatus(ctx, id, st, "boom"); err != nil {
				t.Fatalf("set %s -> %s: %v", id, st, err)
			}
		}
	}
	mustSet(done, printjobs.StatusProcessing, printjobs.StatusCompleted)
	mustSet(failed, printjobs.StatusProcessing, printjobs.StatusFailed)
	mustSet(stuck, printjobs.StatusProcessing)

	// reset mode reverts stuck jobs and removes nothing
	n, err := s.ClearFinished(ctx, true)
	if err != nil {
		t.Fatalf("clear finished (reset): %v", err)
	}
	if n != 1 {
		t.Fatalf("reset count: got %d want 1", n)
	}
	j, _ := s.Get(ctx, stuck)
	if j.Status != printjobs.StatusPending {
		t.Errorf("stuck job after reset: got %q want %q", j.Status, printjobs.StatusPending)
	}
	if jobs, _ := s.List(ctx); len(jobs) != 4 {
		t.Fatalf("reset mode must not remove jobs, %d left", len(jobs))
	}

	// delete mode removes terminal jobs only
	n, err = s.ClearFinished(ctx, false)
	if err != nil {
		t.Fatalf("clear finished: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed count: got %d want 2", n)
	}
	if _, err = s.Get(ctx, done); !errors.Is(err, printjobs.ErrNotFound) {
		t.Error("completed job should be removed")
	}
	if _, err = s.Get(ctx, queued); err != nil {
		t.Errorf("pending job should survive: %v", err)
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	submitJob(t, s, "job-a")
	submitJob(t, s, "job-b")
	n, err := s.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if n != 2 {
		t.Fatalf("cleared count: got %d want 2", n)
	}
	if jobs, _ := s.List(ctx); len(jobs) != 0 {
		t.Fatalf("store should be empty, %d jobs left", len(jobs))
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, s, "")
	j, _ := s.Get(ctx, id)
	j.Status = printjobs.StatusCompleted // mutate the snapshot
	again, _ := s.Get(ctx, id)
	if again.Status != printjobs.StatusPending {
		t.Error("mutating a returned job leaked into the store")
	}
}
