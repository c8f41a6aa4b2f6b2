package outreach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-backend/internal/quota"
)

func TestCreateDraftDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.CreateDraft(ctx, "user-1", f.jobID, Draft{
		RecipientEmail: "hr@acme.test",
		Body:           "Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Application for ML Engineer at Acme", msg.Subject)
	assert.Equal(t, AttachmentOriginal, msg.AttachmentVariant)
	assert.Equal(t, "no-reply@outreach.test", msg.SenderEmail)
	assert.Equal(t, StateDraft, msg.State())
}

func TestCreateDraftUnknownJob(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateDraft(context.Background(), "user-1", "missing", Draft{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatchValidationLeavesDraftUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft Draft
	}{
		{"missing recipient", Draft{Subject: "Hi", Body: "Hello"}},
		{"malformed recipient", Draft{RecipientEmail: "not-an-address", Subject: "Hi", Body: "Hello"}},
		{"missing body", Draft{RecipientEmail: "hr@acme.test", Subject: "Hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := f.svc.CreateDraft(ctx, "user-1", f.jobID, tt.draft)
			require.NoError(t, err)

			_, err = f.svc.Dispatch(ctx, "user-1", msg.ID)
			assert.ErrorIs(t, err, ErrValidation)

			stored, err := f.repo.Get(ctx, msg.ID)
			require.NoError(t, err)
			assert.Equal(t, StateDraft, stored.State())
			assert.Len(t, stored.History, 1, "failed validation must not append events")
		})
	}
}

func TestDispatchTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.draft(t, "user-1")
	_, err := f.svc.Dispatch(ctx, "user-1", msg.ID)
	require.NoError(t, err)

	_, err = f.svc.Dispatch(ctx, "user-1", msg.ID)
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestDuplicateInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.draft(t, "user-1")
	_, err := f.svc.Dispatch(ctx, "user-1", first.ID)
	require.NoError(t, err)

	second := f.draft(t, "user-1")
	_, err = f.svc.Dispatch(ctx, "user-1", second.ID)
	assert.ErrorIs(t, err, ErrDuplicateInFlight)

	// A different user is not blocked by the first user's send.
	other := f.draft(t, "user-2")
	_, err = f.svc.Dispatch(ctx, "user-2", other.ID)
	require.NoError(t, err)
}

func TestDispatchQuotaDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	limit, bounded := quota.DefaultQuota(quota.ActionSendEmail).Limit()
	require.True(t, bounded)
	for i := 0; i < limit; i++ {
		_, err := f.quota.Consume(ctx, "user-1", quota.ActionSendEmail)
		require.NoError(t, err)
	}

	msg := f.draft(t, "user-1")
	_, err := f.svc.Dispatch(ctx, "user-1", msg.ID)
	assert.ErrorIs(t, err, quota.ErrDenied)

	stored, err := f.repo.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDraft, stored.State(), "a denied dispatch must not leave Draft")
}

func TestUpdateDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.draft(t, "user-1")
	updated, err := f.svc.UpdateDraft(ctx, "user-1", msg.ID, Draft{
		RecipientEmail:    "talent@acme.test",
		AttachmentVariant: AttachmentOriginal,
	})
	require.NoError(t, err)
	assert.Equal(t, "talent@acme.test", updated.RecipientEmail)
	assert.Equal(t, msg.Subject, updated.Subject, "unset fields keep their value")

	_, err = f.svc.Dispatch(ctx, "user-1", msg.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateDraft(ctx, "user-1", msg.ID, Draft{Subject: "Too late"})
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestOwnershipHidesOtherUsersMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.draft(t, "user-1")

	_, err := f.svc.Get(ctx, "user-2", msg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Dispatch(ctx, "user-2", msg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	err = f.svc.Discard(ctx, "user-2", msg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProviderEventIngestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := f.draft(t, "user-1")
	_, err := f.svc.Dispatch(ctx, "user-1", msg.ID)
	require.NoError(t, err)
	f.runWorker(t)

	// Out-of-order webhook: Opened before Delivered.
	_, err = f.svc.ApplyProviderEvent(ctx, "user-1", msg.ID, EventOpened, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := f.svc.ApplyProviderEvent(ctx, "user-1", msg.ID, EventDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, StateDelivered, updated.State())
}
