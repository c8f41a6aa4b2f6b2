package quota

import (
	"context"
	"errors"
	"testing"
)

func TestCheckAllowsUntilLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	limit, capped := DefaultQuota(ActionSendEmail).Limit()
	if !capped {
		t.Fatal("expected email_send to be capped by default")
	}

	for i := 0; i < limit; i++ {
		dec, err := svc.Check(ctx, "user-1", ActionSendEmail)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("expected use %d of %d to be allowed", i+1, limit)
		}
		if _, err := svc.Consume(ctx, "user-1", ActionSendEmail); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}

	dec, err := svc.Check(ctx, "user-1", ActionSendEmail)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if dec.Allowed {
		t.Fatal("expected denial past the limit")
	}
	if dec.Reason == "" {
		t.Fatal("denial must carry a reason")
	}
	if dec.Used != limit {
		t.Fatalf("expected used=%d, got %d", limit, dec.Used)
	}
}

func TestAuthorizeWrapsDenial(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	limit, _ := DefaultQuota(ActionOptimize).Limit()
	for i := 0; i < limit; i++ {
		if _, err := svc.Consume(ctx, "user-1", ActionOptimize); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}

	err := svc.Authorize(ctx, "user-1", ActionOptimize)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}

func TestActionsAreIsolated(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	limit, _ := DefaultQuota(ActionSendEmail).Limit()
	for i := 0; i < limit; i++ {
		if _, err := svc.Consume(ctx, "user-1", ActionSendEmail); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}

	// Exhausting email_send must not touch the other actions or other users.
	if err := svc.Authorize(ctx, "user-1", ActionOptimize); err != nil {
		t.Fatalf("optimize should still be allowed: %v", err)
	}
	if err := svc.Authorize(ctx, "user-2", ActionSendEmail); err != nil {
		t.Fatalf("other user should still be allowed: %v", err)
	}
}

func TestResetRestoresAllowance(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	limit, _ := DefaultQuota(ActionSendEmail).Limit()
	for i := 0; i < limit; i++ {
		if _, err := svc.Consume(ctx, "user-1", ActionSendEmail); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
	if err := svc.Authorize(ctx, "user-1", ActionSendEmail); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied before reset, got %v", err)
	}

	if err := svc.Reset(ctx, "user-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := svc.Authorize(ctx, "user-1", ActionSendEmail); err != nil {
		t.Fatalf("expected allowance after reset: %v", err)
	}
}

func TestSnapshotCoversEveryAction(t *testing.T) {
	svc := NewService()
	usages, err := svc.Snapshot(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(usages) != len(Actions) {
		t.Fatalf("expected %d usages, got %d", len(Actions), len(usages))
	}
	for _, u := range usages {
		if u.Used != 0 {
			t.Fatalf("fresh snapshot must show zero usage, got %d for %s", u.Used, u.Action)
		}
	}
}

func TestUnlimitedQuotaAlwaysAllows(t *testing.T) {
	q := Unlimited()
	if !q.Allows(1_000_000) {
		t.Fatal("unlimited quota must always allow")
	}
	if _, capped := q.Limit(); capped {
		t.Fatal("unlimited quota must report no cap")
	}
	if Limited(-5).Allows(0) {
		t.Fatal("negative limits clamp to zero and deny")
	}
}
