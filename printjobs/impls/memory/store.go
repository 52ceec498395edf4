package memory

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeptools/print-core/orm"
	"github.com/zeptools/print-core/printjobs"
)

// Store - in-process job store. Insertion order comes from the ordered
// collection; a single mutex makes every operation atomic with respect to
// the others.
type Store struct {
	Conf *printjobs.Conf

	// Now is swappable for lease-expiry tests
	Now func() time.Time

	mu   sync.Mutex
	jobs *orm.Collection[*printjobs.PrintJob, string]
}

// Ensure memory.Store implements printjobs.Store interface
var _ printjobs.Store = (*Store)(nil)

func Register() {
	printjobs.RegisterFactory("memory", func(conf *printjobs.Conf) (printjobs.Store, error) {
		return &Store{Conf: conf}, nil
	})
}

func (s *Store) Init() error {
	s.jobs = orm.NewEmptyOrderedCollection[*printjobs.PrintJob, string]()
	if s.Now == nil {
		s.Now = time.Now
	}
	log.Println("[INFO] memory job store initialized")
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConf() *printjobs.Conf {
	return s.Conf
}

func (s *Store) Submit(_ context.Context, job *printjobs.PrintJob) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if s.jobs.Has(job.ID) {
		return "", fmt.Errorf("submit: job %q already exists", job.ID)
	}
	now := s.Now()
	stored := job.Clone()
	stored.Status = printjobs.StatusPending
	stored.Error.String, stored.Error.Valid = "", false
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.jobs.Add(stored)
	return stored.ID, nil
}

func (s *Store) List(_ context.Context) ([]*printjobs.PrintJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(s.Now())
	items := s.jobs.Items()
	out := make([]*printjobs.PrintJob, 0, len(items))
	for _, j := range items {
		out = append(out, j.Clone())
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (*printjobs.PrintJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked(s.Now())
	j, ok := s.jobs.Find(id)
	if !ok {
		return nil, printjobs.ErrNotFound
	}
	return j.Clone(), nil
}

func (s *Store) Claim(_ context.Context, id string, agentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs.Find(id)
	if !ok {
		return false, printjobs.ErrNotFound
	}
	if j.Status != printjobs.StatusPending {
		return false, nil // some other agent won, or the job is done
	}
	now := s.Now()
	j.Status = printjobs.StatusProcessing
	j.ClaimedBy.String, j.ClaimedBy.Valid = agentID, true
	j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = now.Add(s.Conf.LeaseTTL()), true
	j.UpdatedAt = now
	return true, nil
}

func (s *Store) SetStatus(_ context.Context, id string, status printjobs.Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs.Find(id)
	if !ok {
		return printjobs.ErrNotFound
	}
	if !printjobs.CanTransition(j.Status, status) {
		return fmt.Errorf("%w: %s -> %s", printjobs.ErrBadTransition, j.Status, status)
	}
	now := s.Now()
	applyTransition(j, status, errMsg, now)
	// an agent reporting `processing` directly (legacy path, no Claim)
	// still gets a lease so the reaper can recover it
	if status == printjobs.StatusProcessing && !j.LeaseExpiresAt.Valid {
		j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = now.Add(s.Conf.LeaseTTL()), true
	}
	return nil
}

func (s *Store) ReapExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reapLocked(s.Now()), nil
}

func (s *Store) ClearFinished(_ context.Context, resetStuck bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resetStuck {
		n := 0
		now := s.Now()
		s.jobs.ForEach(func(j *printjobs.PrintJob) {
			if j.Status == printjobs.StatusProcessing {
				applyTransition(j, printjobs.StatusPending, "", now)
				n++
			}
		})
		return n, nil
	}
	before := s.jobs.Len()
	s.jobs = s.jobs.Filter(func(j *printjobs.PrintJob) bool {
		return !j.Status.Terminal()
	})
	return before - s.jobs.Len(), nil
}

func (s *Store) ClearAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.jobs.Len()
	s.jobs = orm.NewEmptyOrderedCollection[*printjobs.PrintJob, string]()
	return n, nil
}

// reapLocked reverts expired leases. Caller holds s.mu.
func (s *Store) reapLocked(now time.Time) int {
	n := 0
	s.jobs.ForEach(func(j *printjobs.PrintJob) {
		if printjobs.LeaseExpired(j, now) {
			applyTransition(j, printjobs.StatusPending, "", now)
			n++
		}
	})
	if n > 0 {
		log.Printf("[INFO] memory job store: %d expired leases reverted to pending", n)
	}
	return n
}

// applyTransition updates status, timestamp and error together.
func applyTransition(j *printjobs.PrintJob, status printjobs.Status, errMsg string, now time.Time) {
	j.Status = status
	j.UpdatedAt = now
	if status == printjobs.StatusFailed {
		j.Error.String, j.Error.Valid = errMsg, true
	} else {
		j.Error.String, j.Error.Valid = "", false
	}
	if status != printjobs.StatusProcessing {
		j.ClaimedBy.String, j.ClaimedBy.Valid = "", false
		j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = time.Time{}, false
	}
}
