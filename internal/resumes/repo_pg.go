package resumes

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo persists résumé sections in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetSections returns the ordered sections for a user.
func (r *PGRepo) GetSections(ctx context.Context, userID string) ([]Section, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT title, original_text FROM resume_sections
WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.Title, &s.OriginalText); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// ReplaceSections overwrites the user's sections, preserving the given order.
func (r *PGRepo) ReplaceSections(ctx context.Context, userID string, sections []Section) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM resume_sections WHERE user_id = $1`, userID); err != nil {
		return err
	}
	now := time.Now().UTC()
	for i, s := range sections {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO resume_sections (user_id, position, title, original_text, updated_at)
VALUES ($1, $2, $3, $4, $5)`, userID, i, s.Title, s.OriginalText, now); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
