// Package runlog keeps an optional Postgres record of image-generation runs.
// The pipeline works without it; it is wired only when DATABASE_URL is set.
package runlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a run record does not exist.
var ErrNotFound = errors.New("runlog: run not found")

// DB is the slice of pgxpool.Pool the store needs; tests use a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Run is one image-generation attempt.
type Run struct {
	ID        string
	Crew      string
	Prompt    string
	JobID     string
	Status    string
	ImageURLs []string
	ErrorMsg  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	StatusSubmitted = "submitted"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store records generation runs in PostgreSQL.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the runs table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS generation_runs (
    id          TEXT PRIMARY KEY,
    crew        TEXT NOT NULL,
    prompt      TEXT NOT NULL,
    job_id      TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL,
    image_urls  TEXT NOT NULL DEFAULT '',
    error_msg   TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := s.db.Exec(ctx, query)
	return err
}

// Started inserts a new submitted run and returns its identifier.
func (s *Store) Started(ctx context.Context, crew, prompt, jobID string) (string, error) {
	id := uuid.NewString()
	query := `
INSERT INTO generation_runs (id, crew, prompt, job_id, status)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := s.db.Exec(ctx, query, id, crew, prompt, jobID, StatusSubmitted); err != nil {
		return "", err
	}
	return id, nil
}

// Succeeded marks a run completed with its result image URLs.
func (s *Store) Succeeded(ctx context.Context, runID string, imageURLs []string) error {
	query := `
UPDATE generation_runs
SET status = $2, image_urls = $3, updated_at = NOW()
WHERE id = $1;
`
	_, err := s.db.Exec(ctx, query, runID, StatusSucceeded, strings.Join(imageURLs, "\n"))
	return err
}

// Failed marks a run failed with the error message.
func (s *Store) Failed(ctx context.Context, runID, errMsg string) error {
	query := `
UPDATE generation_runs
SET status = $2, error_msg = $3, updated_at = NOW()
WHERE id = $1;
`
	_, err := s.db.Exec(ctx, query, runID, StatusFailed, errMsg)
	return err
}

// GetByID fetches one run.
func (s *Store) GetByID(ctx context.Context, runID string) (*Run, error) {
	query := `
SELECT id, crew, prompt, job_id, status, image_urls, error_msg, created_at, updated_at
FROM generation_runs
WHERE id = $1;
`
	row := s.db.QueryRow(ctx, query, runID)
	var run Run
	var urls string
	if err := row.Scan(
		&run.ID,
		&run.Crew,
		&run.Prompt,
		&run.JobID,
		&run.Status,
		&urls,
		&run.ErrorMsg,
		&run.CreatedAt,
		&run.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if urls != "" {
		run.ImageURLs = strings.Split(urls, "\n")
	}
	return &run, nil
}
