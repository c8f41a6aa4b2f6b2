package outreach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func sampleMessage() Message {
	now := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	return Message{
		ID:                "msg-1",
		UserID:            "user-1",
		JobID:             "job-1",
		RecipientEmail:    "hr@acme.test",
		SenderEmail:       "no-reply@outreach.test",
		Subject:           "Application",
		Body:              "Hello",
		AttachmentVariant: AttachmentOriginal,
		History: []DeliveryEvent{
			{Kind: EventCreated, OccurredAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPGRepoCreateWritesMessageAndHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	msg := sampleMessage()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outreach_messages").
		WithArgs(
			msg.ID,
			msg.UserID,
			msg.JobID,
			msg.RecipientEmail,
			msg.SenderEmail,
			msg.Subject,
			msg.Body,
			string(msg.AttachmentVariant),
			"draft",
			msg.CreatedAt,
			msg.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO delivery_events").
		WithArgs(msg.ID, 0, "created", "", msg.History[0].OccurredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateAppendsOnlyNewEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	msg := sampleMessage()
	msg.History = append(msg.History, DeliveryEvent{
		Kind:       EventDispatched,
		OccurredAt: msg.CreatedAt.Add(time.Second),
	})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE outreach_messages").
		WithArgs(
			msg.RecipientEmail,
			msg.SenderEmail,
			msg.Subject,
			msg.Body,
			string(msg.AttachmentVariant),
			"sending",
			msg.UpdatedAt,
			msg.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(msg.ID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO delivery_events").
		WithArgs(msg.ID, 1, "dispatched", "", msg.History[1].OccurredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), msg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetLoadsHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	msg := sampleMessage()

	mock.ExpectQuery("SELECT id, user_id, job_id").
		WithArgs(msg.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "job_id", "recipient_email", "sender_email",
			"subject", "body", "attachment_variant", "created_at", "updated_at",
		}).AddRow(
			msg.ID, msg.UserID, msg.JobID, msg.RecipientEmail, msg.SenderEmail,
			msg.Subject, msg.Body, string(msg.AttachmentVariant), msg.CreatedAt, msg.UpdatedAt,
		))
	mock.ExpectQuery("SELECT kind, reason, occurred_at").
		WithArgs(msg.ID).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "reason", "occurred_at"}).
			AddRow("created", "", msg.CreatedAt).
			AddRow("dispatched", "", msg.CreatedAt.Add(time.Second)).
			AddRow("sent", "", msg.CreatedAt.Add(2*time.Second)))

	got, err := repo.Get(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State() != StateSent {
		t.Fatalf("expected sent state, got %s", got.State())
	}
	if len(got.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(got.History))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, user_id, job_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "job_id", "recipient_email", "sender_email",
			"subject", "body", "attachment_variant", "created_at", "updated_at",
		}))

	_, err = repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
