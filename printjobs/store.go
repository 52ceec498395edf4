package printjobs

import (
	"context"
	"errors"
)

var (
	// ErrNotFound - unknown job id. Distinct from "job is pending/queued"
	// and never a silent no-op.
	ErrNotFound = errors.New("printjobs: job not found")
	// ErrBadTransition - the requested status change violates the lifecycle
	ErrBadTransition = errors.New("printjobs: invalid status transition")
)

// Store - the system of record for what print work exists and its status.
// Producers (submission handlers) and consumers (agent status reports) share
// it; every operation is atomic with respect to other operations on the
// same job. Implementations must never partially update a record: a status
// transition updates status, timestamp and error together, or not at all.
type Store interface {
	Init() error
	Close() error
	GetConf() *Conf

	// Submit assigns an id if absent, forces status to pending and stamps
	// created/updated timestamps. Returns the job id.
	Submit(ctx context.Context, job *PrintJob) (string, error)

	// List returns a full snapshot in insertion order. Expired leases are
	// reaped first, so a crashed agent's jobs reappear as pending.
	List(ctx context.Context) ([]*PrintJob, error)

	// Get returns one job by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*PrintJob, error)

	// Claim is a compare-and-swap from pending to processing on behalf of
	// agentID. Returns false (no error) when the job was not pending, so
	// two agents can never both win the same job.
	Claim(ctx context.Context, id string, agentID string) (bool, error)

	// SetStatus applies one lifecycle transition. errMsg is recorded only
	// when status becomes failed. Unknown id -> ErrNotFound, disallowed
	// transition -> ErrBadTransition.
	SetStatus(ctx context.Context, id string, status Status, errMsg string) error

	// ReapExpired reverts every processing job with a lapsed lease back to
	// pending. Returns how many were reverted.
	ReapExpired(ctx context.Context) (int, error)

	// ClearFinished with resetStuck reverts every processing job to pending
	// and deletes nothing; otherwise it removes every job in a terminal
	// state. Returns the number of jobs affected.
	ClearFinished(ctx context.Context, resetStuck bool) (int, error)

	// ClearAll removes every job regardless of state. The audited,
	// rarely-used escape hatch.
	ClearAll(ctx context.Context) (int, error)
}
