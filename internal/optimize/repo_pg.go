package optimize

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo persists optimization results in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save replaces the result for the (user, job) pair.
func (r *PGRepo) Save(ctx context.Context, userID string, result Result) error {
	sections, err := json.Marshal(result.Sections)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO optimization_results (user_id, job_id, sections, match_score, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, job_id) DO UPDATE
SET sections = EXCLUDED.sections, match_score = EXCLUDED.match_score, created_at = EXCLUDED.created_at`,
		userID, result.JobID, sections, result.MatchScore, result.CreatedAt)
	return err
}

// Get returns the current result for the (user, job) pair.
func (r *PGRepo) Get(ctx context.Context, userID, jobID string) (Result, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT sections, match_score, created_at FROM optimization_results
WHERE user_id = $1 AND job_id = $2`, userID, jobID)

	var raw []byte
	result := Result{JobID: jobID}
	err := row.Scan(&raw, &result.MatchScore, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal(raw, &result.Sections); err != nil {
		return Result{}, err
	}
	return result, nil
}
