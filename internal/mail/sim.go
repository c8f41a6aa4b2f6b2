package mail

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SimTransport is a provider stand-in for dev environments. It acknowledges
// every send after a fixed latency, except recipients under RejectDomain,
// which fail with a rejected TransportError.
type SimTransport struct {
	Latency      time.Duration
	RejectDomain string
}

// Send simulates a provider send.
func (t *SimTransport) Send(ctx context.Context, email Email) error {
	if t.Latency > 0 {
		select {
		case <-time.After(t.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if t.RejectDomain != "" && strings.HasSuffix(strings.ToLower(email.To), "@"+strings.ToLower(t.RejectDomain)) {
		return &TransportError{Code: "rejected", Err: errors.New("recipient domain rejected")}
	}
	return nil
}
