package admin

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/printjobs/impls/memory"
	"github.com/zeptools/print-core/sec"
)

func newTestStore(t *testing.T) printjobs.Store {
	t.Helper()
	store := &memory.Store{Conf: &printjobs.Conf{Type: "memory"}}
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}

func submitJob(t *testing.T, store printjobs.Store, printer string) string {
	t.Helper()
	id, err := store.Submit(context.Background(), &printjobs.PrintJob{
		PrinterName: printer,
		Artifact:    printjobs.Artifact{DocumentURL: "http://blob/doc.pdf"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return id
}

func TestJobsListCommand(t *testing.T) {
	store := newTestStore(t)
	id := submitJob(t, store, "HP-Front-Desk")
	cmds := NewJobCommandMap(context.Background(), store)

	var out bytes.Buffer
	if err := cmds["jobs.list"].Fn(nil, &out); err != nil {
		t.Fatalf("jobs.list: %v", err)
	}
	if !strings.Contains(out.String(), id) {
		t.Fatalf("listing does not mention job %s: %q", id, out.String())
	}
	if !strings.Contains(out.String(), "pending") {
		t.Fatalf("listing does not show status: %q", out.String())
	}
}

func TestJobsListEmpty(t *testing.T) {
	cmds := NewJobCommandMap(context.Background(), newTestStore(t))
	var out bytes.Buffer
	if err := cmds["jobs.list"].Fn(nil, &out); err != nil {
		t.Fatalf("jobs.list: %v", err)
	}
	if !strings.Contains(out.String(), "no jobs") {
		t.Fatalf("got %q want a no-jobs notice", out.String())
	}
}

func TestJobsClearFinishedCommand(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, store, "HP-Front-Desk")
	if _, err := store.Claim(ctx, id, "agent-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := store.SetStatus(ctx, id, printjobs.StatusCompleted, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	submitJob(t, store, "HP-Front-Desk")

	cmds := NewJobCommandMap(ctx, store)
	var out bytes.Buffer
	if err := cmds["jobs.clear-finished"].Fn(nil, &out); err != nil {
		t.Fatalf("jobs.clear-finished: %v", err)
	}
	if !strings.Contains(out.String(), "removed 1") {
		t.Fatalf("got %q want removed 1", out.String())
	}
	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs left: got %d want 1", len(jobs))
	}
}

func TestJobsResetStuckCommand(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := submitJob(t, store, "HP-Front-Desk")
	if _, err := store.Claim(ctx, id, "agent-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	cmds := NewJobCommandMap(ctx, store)
	var out bytes.Buffer
	if err := cmds["jobs.reset-stuck"].Fn(nil, &out); err != nil {
		t.Fatalf("jobs.reset-stuck: %v", err)
	}
	if !strings.Contains(out.String(), "reset 1") {
		t.Fatalf("got %q want reset 1", out.String())
	}
	job, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != printjobs.StatusPending {
		t.Fatalf("status after reset: got %q want %q", job.Status, printjobs.StatusPending)
	}
}

func TestJobsClearAllNeedsConfirm(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	submitJob(t, store, "HP-Front-Desk")

	cmds := NewJobCommandMap(ctx, store)
	var out bytes.Buffer
	if err := cmds["jobs.clear-all"].Fn(nil, &out); err != nil {
		t.Fatalf("jobs.clear-all without confirm: %v", err)
	}
	if !strings.Contains(out.String(), "refusing") {
		t.Fatalf("got %q want a refusal", out.String())
	}
	jobs, _ := store.List(ctx)
	if len(jobs) != 1 {
		t.Fatalf("queue touched without confirm: %d job(s) left", len(jobs))
	}

	out.Reset()
	if err := cmds["jobs.clear-all"].Fn([]string{"confirm"}, &out); err != nil {
		t.Fatalf("jobs.clear-all confirm: %v", err)
	}
	if !strings.Contains(out.String(), "removed 1") {
		t.Fatalf("got %q want removed 1", out.String())
	}
	jobs, _ = store.List(ctx)
	if len(jobs) != 0 {
		t.Fatalf("queue not wiped: %d job(s) left", len(jobs))
	}
}

func TestAgentTokenCommand(t *testing.T) {
	secret := []byte("admin-test-secret")
	cmds := NewAgentCommandMap(secret, time.Hour)

	var out bytes.Buffer
	if err := cmds["agents.token"].Fn([]string{"agent-9"}, &out); err != nil {
		t.Fatalf("agents.token: %v", err)
	}
	token := strings.TrimSpace(out.String())
	agentID, err := sec.ParseHMACSignedAgentToken(token, secret)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if agentID != "agent-9" {
		t.Fatalf("agent id: got %q want %q", agentID, "agent-9")
	}

	out.Reset()
	if err := cmds["agents.token"].Fn(nil, &out); err != nil {
		t.Fatalf("agents.token usage: %v", err)
	}
	if !strings.Contains(out.String(), "usage:") {
		t.Fatalf("got %q want usage text", out.String())
	}
}
