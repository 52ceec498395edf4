package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeptools/print-core/printjobs"
)

type Store struct {
	Conf *printjobs.Conf

	// implementation details, not exported
	pool *pgxpool.Pool
	dsn  string
}

// Ensure pgsql.Store implements printjobs.Store interface
var _ printjobs.Store = (*Store)(nil)

func Register() {
	printjobs.RegisterFactory("pgsql", func(conf *printjobs.Conf) (printjobs.Store, error) {
		return &Store{Conf: conf}, nil
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS print_jobs (
	seq              BIGINT GENERATED ALWAYS AS IDENTITY,
	id               TEXT PRIMARY KEY,
	printer_name     TEXT NOT NULL,
	paper_size       TEXT NOT NULL DEFAULT '',
	paper_type       TEXT NOT NULL DEFAULT '',
	tray_number      BIGINT,
	document_url     TEXT NOT NULL DEFAULT '',
	image_urls       TEXT[] NOT NULL DEFAULT '{}',
	status           TEXT NOT NULL,
	error            TEXT,
	claimed_by       TEXT,
	lease_expires_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
)`

func (s *Store) Init() error {
	if s.Conf.DSN != "" {
		s.dsn = s.Conf.DSN
	} else {
		// NOTE: sslmode=disable is often used for local dev, adjust as needed.
		s.dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			s.Conf.Host,
			s.Conf.Port,
			s.Conf.User,
			s.Conf.PW,
			s.Conf.DB,
			s.Conf.TZ,
		)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 3 * time.Minute
	if s.pool, err = pgxpool.NewWithConfig(ctx, config); err != nil {
		return err
	}
	if err = s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err = s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure print_jobs table: %w", err)
	}
	log.Print("[INFO] pgsql job store initialized")
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) GetConf() *printjobs.Conf {
	return s.Conf
}

func (s *Store) Submit(ctx context.Context, job *printjobs.PrintJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := time.Now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO print_jobs
			(id, printer_name, paper_size, paper_type, tray_number,
			 document_url, image_urls, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		job.ID, job.PrinterName, job.PaperSize, job.PaperType, job.TrayNumber,
		job.Artifact.DocumentURL, job.Artifact.ImageURLs, printjobs.StatusPending, now,
	)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	return job.ID, nil
}

const selectCols = `
	id, printer_name, paper_size, paper_type, tray_number,
	document_url, image_urls, status, error, claimed_by,
	lease_expires_at, created_at, updated_at`

func (s *Store) List(ctx context.Context) ([]*printjobs.PrintJob, error) {
	if _, err := s.ReapExpired(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT`+selectCols+` FROM print_jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*printjobs.PrintJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*printjobs.PrintJob, error) {
	if _, err := s.ReapExpired(ctx); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `SELECT`+selectCols+` FROM print_jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, printjobs.ErrNotFound
	}
	return j, err
}

func (s *Store) Claim(ctx context.Context, id string, agentID string) (bool, error) {
	now := time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE print_jobs
		SET status = $2, claimed_by = $3, lease_expires_at = $4, updated_at = $5
		WHERE id = $1 AND status = $6`,
		id, printjobs.StatusProcessing, agentID, now.Add(s.Conf.LeaseTTL()), now, printjobs.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	// distinguish "claim lost" from "no such job"
	var exists bool
	if err = s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM print_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, printjobs.ErrNotFound
	}
	return false, nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status printjobs.Status, errMsg string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current printjobs.Status
	err = tx.QueryRow(ctx, `SELECT status FROM print_jobs WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return printjobs.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if !printjobs.CanTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", printjobs.ErrBadTransition, current, status)
	}
	var errVal any
	if status == printjobs.StatusFailed {
		errVal = errMsg
	}
	// status, timestamp and error move together, or not at all.
	// An agent reporting `processing` directly (legacy path, no Claim)
	// still gets a lease so the reaper can recover it.
	now := time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE print_jobs
		SET status = $2, error = $3, updated_at = $4,
		    claimed_by = CASE WHEN $2 = 'processing' THEN claimed_by END,
		    lease_expires_at = CASE WHEN $2 = 'processing' THEN COALESCE(lease_expires_at, $5) END
		WHERE id = $1`,
		id, status, errVal, now, now.Add(s.Conf.LeaseTTL()),
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) ReapExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE print_jobs
		SET status = $1, claimed_by = NULL, lease_expires_at = NULL, error = NULL, updated_at = $2
		WHERE status = $3 AND lease_expires_at IS NOT NULL AND lease_expires_at < $2`,
		printjobs.StatusPending, time.Now(), printjobs.StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reap expired leases: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ClearFinished(ctx context.Context, resetStuck bool) (int, error) {
	if resetStuck {
		tag, err := s.pool.Exec(ctx, `
			UPDATE print_jobs
			SET status = $1, claimed_by = NULL, lease_expires_at = NULL, error = NULL, updated_at = $2
			WHERE status = $3`,
			printjobs.StatusPending, time.Now(), printjobs.StatusProcessing,
		)
		if err != nil {
			return 0, fmt.Errorf("reset stuck jobs: %w", err)
		}
		return int(tag.RowsAffected()), nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM print_jobs WHERE status NOT IN ($1, $2)`,
		printjobs.StatusPending, printjobs.StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("clear finished jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ClearAll(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM print_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear all jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*printjobs.PrintJob, error) {
	j := &printjobs.PrintJob{}
	err := row.Scan(
		&j.ID, &j.PrinterName, &j.PaperSize, &j.PaperType, &j.TrayNumber,
		&j.Artifact.DocumentURL, &j.Artifact.ImageURLs, &j.Status, &j.Error, &j.ClaimedBy,
		&j.LeaseExpiresAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}
