package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo persists job postings in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create stores the job posting.
func (r *PGRepo) Create(ctx context.Context, job JobPosting) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO job_postings (id, title, company, location, skills, category_tag, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Title, job.Company, job.Location, encodeTextArray(job.Skills), job.CategoryTag, job.CreatedAt)
	return err
}

// GetByID returns a job posting by its ID.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (JobPosting, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, title, company, location, skills, category_tag, created_at
FROM job_postings WHERE id = $1`, jobID)

	var job JobPosting
	var skills string
	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &skills, &job.CategoryTag, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return JobPosting{}, ErrNotFound
	}
	if err != nil {
		return JobPosting{}, err
	}
	job.Skills = decodeTextArray(skills)
	return job, nil
}

// List returns job postings, newest first, with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, title, company, location, skills, category_tag, created_at
FROM job_postings ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []JobPosting{}
	for rows.Next() {
		var job JobPosting
		var skills string
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &skills, &job.CategoryTag, &job.CreatedAt); err != nil {
			return nil, err
		}
		job.Skills = decodeTextArray(skills)
		out = append(out, job)
	}
	return out, rows.Err()
}
