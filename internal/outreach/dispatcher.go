package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"outreach-backend/internal/jobs"
	"outreach-backend/internal/optimize"
	"outreach-backend/internal/queue"
	"outreach-backend/internal/quota"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/telemetry"
)

// Draft holds the fields a caller may set while a message is in Draft.
type Draft struct {
	RecipientEmail    string
	Subject           string
	Body              string
	AttachmentVariant AttachmentVariant
}

// Service creates, edits, and dispatches outreach messages. Dispatch is the
// gate where drafts enter the delivery lifecycle; everything after that is
// the manager's business.
type Service struct {
	Repo        Repo
	Manager     *Manager
	Jobs        jobs.Repo
	Results     optimize.Repo
	Quota       *quota.Service
	Queue       queue.Client
	SenderEmail string

	validate *validator.Validate
}

// NewService constructs a dispatcher service.
func NewService(repo Repo, manager *Manager, jobsRepo jobs.Repo, results optimize.Repo, quotaSvc *quota.Service, q queue.Client, senderEmail string) *Service {
	return &Service{
		Repo:        repo,
		Manager:     manager,
		Jobs:        jobsRepo,
		Results:     results,
		Quota:       quotaSvc,
		Queue:       q,
		SenderEmail: senderEmail,
		validate:    validator.New(),
	}
}

// CreateDraft creates a Draft message for the job. The draft is not
// validated; validation happens at dispatch so a user can save a partial
// draft and finish it later.
func (s *Service) CreateDraft(ctx context.Context, userID, jobID string, draft Draft) (Message, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Message{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return Message{}, err
	}

	variant := draft.AttachmentVariant
	if variant == "" {
		variant = AttachmentOriginal
	}

	now := time.Now().UTC()
	msg := Message{
		ID:                uuid.NewString(),
		UserID:            userID,
		JobID:             job.ID,
		RecipientEmail:    strings.TrimSpace(draft.RecipientEmail),
		SenderEmail:       s.SenderEmail,
		Subject:           strings.TrimSpace(draft.Subject),
		Body:              draft.Body,
		AttachmentVariant: variant,
		History:           []DeliveryEvent{{Kind: EventCreated, OccurredAt: now}},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if msg.Subject == "" {
		msg.Subject = fmt.Sprintf("Application for %s at %s", job.Title, job.Company)
	}
	if err := s.Repo.Create(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// UpdateDraft mutates draft fields. Only Draft messages accept edits; once a
// message leaves Draft its content is frozen.
func (s *Service) UpdateDraft(ctx context.Context, userID, messageID string, draft Draft) (Message, error) {
	msg, err := s.getOwned(ctx, userID, messageID)
	if err != nil {
		return Message{}, err
	}
	if msg.State() != StateDraft {
		return Message{}, fmt.Errorf("%w: state is %s", ErrNotDraft, msg.State())
	}

	if draft.RecipientEmail != "" {
		msg.RecipientEmail = strings.TrimSpace(draft.RecipientEmail)
	}
	if draft.Subject != "" {
		msg.Subject = strings.TrimSpace(draft.Subject)
	}
	if draft.Body != "" {
		msg.Body = draft.Body
	}
	if draft.AttachmentVariant != "" {
		msg.AttachmentVariant = draft.AttachmentVariant
	}
	msg.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Dispatch moves a Draft into Sending and enqueues the transport send. On
// validation failure the draft is left exactly as it was. The email_send
// quota is checked here but consumed only when the message reaches Sent.
func (s *Service) Dispatch(ctx context.Context, userID, messageID string) (Message, error) {
	msg, err := s.getOwned(ctx, userID, messageID)
	if err != nil {
		return Message{}, err
	}
	if msg.State() != StateDraft {
		return Message{}, fmt.Errorf("%w: state is %s", ErrNotDraft, msg.State())
	}
	if err := s.validateDraft(ctx, msg); err != nil {
		return Message{}, err
	}
	if s.Quota != nil {
		if err := s.Quota.Authorize(ctx, userID, quota.ActionSendEmail); err != nil {
			return Message{}, err
		}
	}

	if err := s.Manager.AcquireInFlight(ctx, userID, msg.JobID, msg.ID); err != nil {
		return Message{}, err
	}

	msg, err = s.Manager.Apply(ctx, msg.ID, EventDispatched, "")
	if err != nil {
		return Message{}, err
	}

	qmsg := queue.Message{
		MessageID:  msg.ID,
		RequestID:  requestIDFrom(ctx),
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, qmsg); err != nil {
		// The send never left this process; fail the message instead of
		// leaving it stuck in Sending until the timeout fires.
		if _, applyErr := s.Manager.Apply(ctx, msg.ID, EventDeliveryFailed, "enqueue: "+err.Error()); applyErr != nil {
			telemetry.Error("outreach.enqueue.fail", map[string]any{
				"messageId": msg.ID,
				"error":     applyErr.Error(),
			})
		}
		return Message{}, err
	}

	metrics.IncOutreachDispatched()
	return msg, nil
}

// Get returns a message the user owns.
func (s *Service) Get(ctx context.Context, userID, messageID string) (Message, error) {
	return s.getOwned(ctx, userID, messageID)
}

// List returns the user's messages, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Message, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// ApplyProviderEvent records a provider-reported delivery event (webhook
// ingestion). It goes through the same state machine as the simulator.
func (s *Service) ApplyProviderEvent(ctx context.Context, userID, messageID string, kind EventKind, reason string) (Message, error) {
	if _, err := s.getOwned(ctx, userID, messageID); err != nil {
		return Message{}, err
	}
	return s.Manager.Apply(ctx, messageID, kind, reason)
}

// Discard deletes a message, cancelling its timers and freeing the in-flight
// slot so the user can send another email for the same job.
func (s *Service) Discard(ctx context.Context, userID, messageID string) error {
	msg, err := s.getOwned(ctx, userID, messageID)
	if err != nil {
		return err
	}
	s.Manager.Discard(msg)
	if err := s.Repo.Delete(ctx, msg.ID); err != nil {
		return err
	}
	telemetry.Info("outreach.discarded", map[string]any{
		"messageId": msg.ID,
		"jobId":     msg.JobID,
		"state":     string(msg.State()),
	})
	return nil
}

// validateDraft checks everything a message needs before it may leave Draft.
func (s *Service) validateDraft(ctx context.Context, msg Message) error {
	if msg.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if err := s.validate.Var(msg.RecipientEmail, "required,email"); err != nil {
		return fmt.Errorf("%w: recipient email is not a valid address", ErrValidation)
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrValidation)
	}
	if msg.AttachmentVariant == AttachmentOptimized && s.Results != nil {
		if _, err := s.Results.Get(ctx, msg.UserID, msg.JobID); err != nil {
			if errors.Is(err, optimize.ErrNotFound) {
				return fmt.Errorf("%w: no optimized resume exists for this job", ErrValidation)
			}
			return err
		}
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, userID, messageID string) (Message, error) {
	msg, err := s.Repo.Get(ctx, messageID)
	if err != nil {
		return Message{}, err
	}
	if msg.UserID != userID {
		return Message{}, ErrNotFound
	}
	return msg, nil
}

type requestIDCtxKey struct{}

// WithRequestID stashes the inbound request id so queue messages can carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDCtxKey{}).(string); ok {
		return v
	}
	return ""
}
