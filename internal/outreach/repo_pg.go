package outreach

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo persists outreach messages in Postgres. Messages live in
// outreach_messages; history entries are append-only rows in delivery_events.
type PGRepo struct {
	DB *sql.DB
}

// Create stores a new message and its initial history.
func (r *PGRepo) Create(ctx context.Context, msg Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
INSERT INTO outreach_messages (id, user_id, job_id, recipient_email, sender_email, subject, body, attachment_variant, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		msg.ID, msg.UserID, msg.JobID, msg.RecipientEmail, msg.SenderEmail, msg.Subject, msg.Body,
		string(msg.AttachmentVariant), string(msg.State()), msg.CreatedAt, msg.UpdatedAt); err != nil {
		return err
	}
	for i, ev := range msg.History {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO delivery_events (message_id, position, kind, reason, occurred_at)
VALUES ($1, $2, $3, $4, $5)`, msg.ID, i, string(ev.Kind), ev.Reason, ev.OccurredAt); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// Get returns a message with its full history.
func (r *PGRepo) Get(ctx context.Context, id string) (Message, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, user_id, job_id, recipient_email, sender_email, subject, body, attachment_variant, created_at, updated_at
FROM outreach_messages WHERE id = $1`, id)

	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, err
	}
	msg.History, err = r.loadHistory(ctx, id)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Update persists mutable fields and appends any new history entries.
func (r *PGRepo) Update(ctx context.Context, msg Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE outreach_messages
SET recipient_email = $1, sender_email = $2, subject = $3, body = $4, attachment_variant = $5, state = $6, updated_at = $7
WHERE id = $8`,
		msg.RecipientEmail, msg.SenderEmail, msg.Subject, msg.Body,
		string(msg.AttachmentVariant), string(msg.State()), msg.UpdatedAt, msg.ID)
	if err != nil {
		return err
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		err = ErrNotFound
		return err
	}

	var stored int
	if err = tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM delivery_events WHERE message_id = $1`, msg.ID).Scan(&stored); err != nil {
		return err
	}
	for i := stored; i < len(msg.History); i++ {
		ev := msg.History[i]
		if _, err = tx.ExecContext(ctx, `
INSERT INTO delivery_events (message_id, position, kind, reason, occurred_at)
VALUES ($1, $2, $3, $4, $5)`, msg.ID, i, string(ev.Kind), ev.Reason, ev.OccurredAt); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// FindInFlight returns the message blocking dispatch for the (user, job) pair.
func (r *PGRepo) FindInFlight(ctx context.Context, userID, jobID string) (Message, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT id, user_id, job_id, recipient_email, sender_email, subject, body, attachment_variant, created_at, updated_at
FROM outreach_messages
WHERE user_id = $1 AND job_id = $2 AND state IN ('sending', 'sent', 'delivered', 'opened')
ORDER BY created_at DESC LIMIT 1`, userID, jobID)

	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, err
	}
	msg.History, err = r.loadHistory(ctx, msg.ID)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// ListByUser returns the user's messages, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, user_id, job_id, recipient_email, sender_email, subject, body, attachment_variant, created_at, updated_at
FROM outreach_messages WHERE user_id = $1
ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].History, err = r.loadHistory(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes a message; delivery events cascade.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM outreach_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) loadHistory(ctx context.Context, id string) ([]DeliveryEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT kind, reason, occurred_at FROM delivery_events
WHERE message_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []DeliveryEvent
	for rows.Next() {
		var ev DeliveryEvent
		var kind string
		if err := rows.Scan(&kind, &ev.Reason, &ev.OccurredAt); err != nil {
			return nil, err
		}
		ev.Kind = EventKind(kind)
		history = append(history, ev)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var msg Message
	var variant string
	err := row.Scan(&msg.ID, &msg.UserID, &msg.JobID, &msg.RecipientEmail, &msg.SenderEmail,
		&msg.Subject, &msg.Body, &variant, &msg.CreatedAt, &msg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, err
	}
	msg.AttachmentVariant = AttachmentVariant(variant)
	return msg, nil
}
