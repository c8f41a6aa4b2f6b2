package quota

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed quota store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string, action Action) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID, action)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Consume(ctx context.Context, userID string, action Action, n int) (Usage, error) {
	if n <= 0 {
		return s.EnsurePeriod(ctx, userID, action)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, action)
	if err != nil {
		return Usage{}, err
	}
	if limit, capped := u.Quota.Limit(); capped && u.Used+n > limit {
		err = ErrDenied
		return Usage{}, err
	}
	u.Used += n
	if _, err = tx.ExecContext(ctx, `
UPDATE quota_usage SET used = $1 WHERE user_id = $2 AND action = $3`, u.Used, userID, string(action)); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Snapshot(ctx context.Context, userID string) ([]Usage, error) {
	out := make([]Usage, 0, len(Actions))
	for _, action := range Actions {
		u, err := s.EnsurePeriod(ctx, userID, action)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	resetsAt := time.Now().UTC().Add(defaultPeriod)
	for _, action := range Actions {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO quota_usage (user_id, action, used, resets_at)
VALUES ($1, $2, 0, $3)
ON CONFLICT (user_id, action) DO UPDATE SET used = 0, resets_at = EXCLUDED.resets_at`,
			userID, string(action), resetsAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, action Action) (Usage, error) {
	now := time.Now().UTC()
	u := defaultUsage(action)

	row := tx.QueryRowContext(ctx, `
SELECT used, resets_at FROM quota_usage
WHERE user_id = $1 AND action = $2 FOR UPDATE`, userID, string(action))
	err := row.Scan(&u.Used, &u.ResetsAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u.ResetsAt = now.Add(defaultPeriod)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO quota_usage (user_id, action, used, resets_at)
VALUES ($1, $2, 0, $3)`, userID, string(action), u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	case err != nil:
		return Usage{}, err
	}

	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(defaultPeriod)
		if _, err := tx.ExecContext(ctx, `
UPDATE quota_usage SET used = 0, resets_at = $1 WHERE user_id = $2 AND action = $3`,
			u.ResetsAt, userID, string(action)); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
