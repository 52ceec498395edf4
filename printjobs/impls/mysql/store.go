package mysql

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // side-effect
	"github.com/google/uuid"

	"github.com/zeptools/print-core/printjobs"
)

type Store struct {
	Conf *printjobs.Conf

	// db fields are implementation details, not exported
	db  *sql.DB
	dsn string
}

// Ensure mysql.Store implements printjobs.Store interface
var _ printjobs.Store = (*Store)(nil)

func Register() {
	printjobs.RegisterFactory("mysql", func(conf *printjobs.Conf) (printjobs.Store, error) {
		return &Store{Conf: conf}, nil
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS print_jobs (
	seq              BIGINT AUTO_INCREMENT UNIQUE,
	id               VARCHAR(64) PRIMARY KEY,
	printer_name     VARCHAR(255) NOT NULL,
	paper_size       VARCHAR(64) NOT NULL DEFAULT '',
	paper_type       VARCHAR(64) NOT NULL DEFAULT '',
	tray_number      BIGINT NULL,
	document_url     TEXT NOT NULL,
	image_urls       TEXT NOT NULL,
	status           VARCHAR(16) NOT NULL,
	error            TEXT NULL,
	claimed_by       VARCHAR(255) NULL,
	lease_expires_at DATETIME(6) NULL,
	created_at       DATETIME(6) NOT NULL,
	updated_at       DATETIME(6) NOT NULL
)`

func (s *Store) Init() error {
	var err error
	if s.Conf.DSN != "" {
		s.dsn = s.Conf.DSN
	} else {
		s.dsn = fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=%s",
			s.Conf.User,
			s.Conf.PW,
			s.Conf.Host,
			s.Conf.Port,
			s.Conf.DB,
			s.Conf.TZ,
		)
	}
	if s.db, err = sql.Open("mysql", s.dsn); err != nil {
		return err
	}
	s.db.SetConnMaxLifetime(time.Minute * 3)
	s.db.SetMaxOpenConns(10)
	s.db.SetMaxIdleConns(10)
	if err = s.db.Ping(); err != nil {
		return err
	}
	if _, err = s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure print_jobs table: %w", err)
	}
	log.Println("[INFO] mysql job store initialized")
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	log.Println("[INFO] closing mysql job store")
	return s.db.Close()
}

func (s *Store) GetConf() *printjobs.Conf {
	return s.Conf
}

func (s *Store) Submit(ctx context.Context, job *printjobs.PrintJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	urls, err := json.Marshal(job.Artifact.ImageURLs)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO print_jobs
			(id, printer_name, paper_size, paper_type, tray_number,
			 document_url, image_urls, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.PrinterName, job.PaperSize, job.PaperType, job.TrayNumber,
		job.Artifact.DocumentURL, string(urls), printjobs.StatusPending, now, now,
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
	rows, err := s.db.QueryContext(ctx, `SELECT`+selectCols+` FROM print_jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("[WARN] %v", closeErr)
		}
	}()

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
	row := s.db.QueryRowContext(ctx, `SELECT`+selectCols+` FROM print_jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, printjobs.ErrNotFound
	}
	return j, err
}

func (s *Store) Claim(ctx context.Context, id string, agentID string) (bool, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE print_jobs
		SET status = ?, claimed_by = ?, lease_expires_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		printjobs.StatusProcessing, agentID, now.Add(s.Conf.LeaseTTL()), now, id, printjobs.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	var exists bool
	if err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM print_jobs WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, printjobs.ErrNotFound
	}
	return false, nil
}

func (s *Store) SetStatus(ctx context.Context, id string, status printjobs.Status, errMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current printjobs.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM print_jobs WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
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
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE print_jobs
		SET status = ?, error = ?, updated_at = ?,
		    claimed_by = CASE WHEN ? = 'processing' THEN claimed_by ELSE NULL END,
		    lease_expires_at = CASE WHEN ? = 'processing' THEN COALESCE(lease_expires_at, ?) ELSE NULL END
		WHERE id = ?`,
		status, errVal, now, status, status, now.Add(s.Conf.LeaseTTL()), id,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ReapExpired(ctx context.Context) (int, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE print_jobs
		SET status = ?, claimed_by = NULL, lease_expires_at = NULL, error = NULL, updated_at = ?
		WHERE status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at < ?`,
		printjobs.StatusPending, now, printjobs.StatusProcessing, now,
	)
	if err != nil {
		return 0, fmt.Errorf("reap expired leases: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) ClearFinished(ctx context.Context, resetStuck bool) (int, error) {
	if resetStuck {
		res, err := s.db.ExecContext(ctx, `
			UPDATE print_jobs
			SET status = ?, claimed_by = NULL, lease_expires_at = NULL, error = NULL, updated_at = ?
			WHERE status = ?`,
			printjobs.StatusPending, time.Now(), printjobs.StatusProcessing,
		)
		if err != nil {
			return 0, fmt.Errorf("reset stuck jobs: %w", err)
		}
		n, err := res.RowsAffected()
		return int(n), err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM print_jobs WHERE status NOT IN (?, ?)`,
		printjobs.StatusPending, printjobs.StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("clear finished jobs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) ClearAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM print_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear all jobs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*printjobs.PrintJob, error) {
	j := &printjobs.PrintJob{}
	var urls string
	var status string
	err := row.Scan(
		&j.ID, &j.PrinterName, &j.PaperSize, &j.PaperType, &j.TrayNumber,
		&j.Artifact.DocumentURL, &urls, &status, &j.Error, &j.ClaimedBy,
		&j.LeaseExpiresAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = printjobs.Status(status)
	if urls != "" && urls != "null" {
		if err = json.Unmarshal([]byte(urls), &j.Artifact.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode image_urls: %w", err)
		}
	}
	return j, nil
}
