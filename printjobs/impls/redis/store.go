package redis

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zeptools/print-core/printjobs"

	lowimpl "github.com/redis/go-redis/v9"
)

// Jobs live as JSON strings under {prefix}job:<id>; insertion order is a
// list at {prefix}jobs:order. Claim and SetStatus use WATCH so the
// read-check-write of a single job key is atomic.
type Store struct {
	Conf *printjobs.Conf

	// implementation details, not exported
	internal *lowimpl.Client
}

// Ensure redis.Store implements printjobs.Store interface
var _ printjobs.Store = (*Store)(nil)

func Register() {
	printjobs.RegisterFactory("redis", func(conf *printjobs.Conf) (printjobs.Store, error) {
		return &Store{Conf: conf}, nil
	})
}

func (s *Store) Init() error {
	s.internal = lowimpl.NewClient(&lowimpl.Options{
		Addr:     fmt.Sprintf("%s:%d", s.Conf.Host, s.Conf.Port),
		Password: s.Conf.PW,
		DB:       s.Conf.DBNum,
	})
	if err := s.internal.Ping(context.Background()).Err(); err != nil {
		return err
	}
	log.Println("[INFO] redis job store initialized")
	return nil
}

func (s *Store) Close() error {
	if s.internal == nil {
		return nil
	}
	return s.internal.Close()
}

func (s *Store) GetConf() *printjobs.Conf {
	return s.Conf
}

func (s *Store) jobKey(id string) string {
	return s.Conf.KeyPrefix + "job:" + id
}

func (s *Store) orderKey() string {
	return s.Conf.KeyPrefix + "jobs:order"
}

func (s *Store) loadJob(ctx context.Context, c lowimpl.Cmdable, id string) (*printjobs.PrintJob, error) {
	raw, err := c.Get(ctx, s.jobKey(id)).Result()
	if errors.Is(err, lowimpl.Nil) {
		return nil, printjobs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	j := &printjobs.PrintJob{}
	if err = json.Unmarshal([]byte(raw), j); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return j, nil
}

func (s *Store) saveJob(ctx context.Context, c lowimpl.Cmdable, j *printjobs.PrintJob) error {
	raw, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	return c.Set(ctx, s.jobKey(j.ID), string(raw), 0).Err()
}

func (s *Store) Submit(ctx context.Context, job *printjobs.PrintJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	exists, err := s.internal.Exists(ctx, s.jobKey(job.ID)).Result()
	if err != nil {
		return "", err
	}
	if exists > 0 {
		return "", fmt.Errorf("job %s already exists", job.ID)
	}
	stored := job.Clone()
	stored.Status = printjobs.StatusPending
	stored.Error.String, stored.Error.Valid = "", false
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	if err = s.saveJob(ctx, s.internal, stored); err != nil {
		return "", err
	}
	if err = s.internal.RPush(ctx, s.orderKey(), stored.ID).Err(); err != nil {
		return "", err
	}
	return stored.ID, nil
}

func (s *Store) List(ctx context.Context) ([]*printjobs.PrintJob, error) {
	if _, err := s.ReapExpired(ctx); err != nil {
		return nil, err
	}
	ids, err := s.internal.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]*printjobs.PrintJob, 0, len(ids))
	for _, id := range ids {
		j, err := s.loadJob(ctx, s.internal, id)
		if errors.Is(err, printjobs.ErrNotFound) {
			continue // order entry outlived the job key
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (s *Store) Get(ctx context.Context, id string) (*printjobs.PrintJob, error) {
	if _, err := s.ReapExpired(ctx); err != nil {
		return nil, err
	}
	return s.loadJob(ctx, s.internal, id)
}

func (s *Store) Claim(ctx context.Context, id string, agentID string) (bool, error) {
	claimed := false
	key := s.jobKey(id)
	err := s.internal.Watch(ctx, func(tx *lowimpl.Tx) error {
		j, err := s.loadJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if j.Status != printjobs.StatusPending {
			return nil // claim lost, not an error
		}
		now := time.Now()
		j.Status = printjobs.StatusProcessing
		j.ClaimedBy.String, j.ClaimedBy.Valid = agentID, true
		j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = now.Add(s.Conf.LeaseTTL()), true
		j.UpdatedAt = now
		_, err = tx.TxPipelined(ctx, func(pipe lowimpl.Pipeliner) error {
			return s.saveJob(ctx, pipe, j)
		})
		if err == nil {
			claimed = true
		}
		return err
	}, key)
	if errors.Is(err, lowimpl.TxFailedErr) {
		return false, nil // concurrent writer won
	}
	return claimed, err
}

func (s *Store) SetStatus(ctx context.Context, id string, status printjobs.Status, errMsg string) error {
	key := s.jobKey(id)
	return s.internal.Watch(ctx, func(tx *lowimpl.Tx) error {
		j, err := s.loadJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if !printjobs.CanTransition(j.Status, status) {
			return fmt.Errorf("%w: %s -> %s", printjobs.ErrBadTransition, j.Status, status)
		}
		now := time.Now()
		j.Status = status
		j.UpdatedAt = now
		j.Error.String, j.Error.Valid = "", false
		if status == printjobs.StatusFailed {
			j.Error.String, j.Error.Valid = errMsg, true
		}
		if status == printjobs.StatusProcessing {
			// An agent reporting processing directly, without Claim, still
			// gets a lease so the reaper can recover the job.
			if !j.LeaseExpiresAt.Valid {
				j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = now.Add(s.Conf.LeaseTTL()), true
			}
		} else {
			j.ClaimedBy.String, j.ClaimedBy.Valid = "", false
			j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = time.Time{}, false
		}
		_, err = tx.TxPipelined(ctx, func(pipe lowimpl.Pipeliner) error {
			return s.saveJob(ctx, pipe, j)
		})
		return err
	}, key)
}

func (s *Store) ReapExpired(ctx context.Context) (int, error) {
	ids, err := s.internal.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return 0, err
	}
	now := time.Now()
	reaped := 0
	for _, id := range ids {
		err = s.internal.Watch(ctx, func(tx *lowimpl.Tx) error {
			j, err := s.loadJob(ctx, tx, id)
			if err != nil {
				return err
			}
			if !printjobs.LeaseExpired(j, now) {
				return nil
			}
			j.Status = printjobs.StatusPending
			j.ClaimedBy.String, j.ClaimedBy.Valid = "", false
			j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = time.Time{}, false
			j.Error.String, j.Error.Valid = "", false
			j.UpdatedAt = now
			_, err = tx.TxPipelined(ctx, func(pipe lowimpl.Pipeliner) error {
				return s.saveJob(ctx, pipe, j)
			})
			if err == nil {
				reaped++
			}
			return err
		}, s.jobKey(id))
		if errors.Is(err, printjobs.ErrNotFound) || errors.Is(err, lowimpl.TxFailedErr) {
			continue
		}
		if err != nil {
			return reaped, err
		}
	}
	return reaped, nil
}

func (s *Store) ClearFinished(ctx context.Context, resetStuck bool) (int, error) {
	ids, err := s.internal.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return 0, err
	}
	affected := 0
	for _, id := range ids {
		j, err := s.loadJob(ctx, s.internal, id)
		if errors.Is(err, printjobs.ErrNotFound) {
			continue
		}
		if err != nil {
			return affected, err
		}
		if resetStuck {
			if j.Status != printjobs.StatusProcessing {
				continue
			}
			now := time.Now()
			j.Status = printjobs.StatusPending
			j.ClaimedBy.String, j.ClaimedBy.Valid = "", false
			j.LeaseExpiresAt.Time, j.LeaseExpiresAt.Valid = time.Time{}, false
			j.Error.String, j.Error.Valid = "", false
			j.UpdatedAt = now
			if err = s.saveJob(ctx, s.internal, j); err != nil {
				return affected, err
			}
			affected++
			continue
		}
		if !j.Status.Terminal() {
			continue
		}
		if err = s.internal.Del(ctx, s.jobKey(id)).Err(); err != nil {
			return affected, err
		}
		if err = s.internal.LRem(ctx, s.orderKey(), 0, id).Err(); err != nil {
			return affected, err
		}
		affected++
	}
	return affected, nil
}

func (s *Store) ClearAll(ctx context.Context) (int, error) {
	ids, err := s.internal.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		n, err := s.internal.Del(ctx, s.jobKey(id)).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	if err = s.internal.Del(ctx, s.orderKey()).Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
