package mail

import (
	"context"
	"errors"
	"testing"
)

func TestSimTransportAccepts(t *testing.T) {
	tr := &SimTransport{}
	err := tr.Send(context.Background(), Email{To: "hr@acme.test", From: "no-reply@outreach.test"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSimTransportRejectsDomain(t *testing.T) {
	tr := &SimTransport{RejectDomain: "blocked.test"}

	err := tr.Send(context.Background(), Email{To: "hr@Blocked.TEST"})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.Code != "rejected" {
		t.Fatalf("expected code rejected, got %q", terr.Code)
	}

	if err := tr.Send(context.Background(), Email{To: "hr@acme.test"}); err != nil {
		t.Fatalf("other domains must pass: %v", err)
	}
}
