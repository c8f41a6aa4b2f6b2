// Package mail defines the outgoing mail transport boundary. The real
// SMTP/provider integration lives behind Transport; this package only ships
// a simulated implementation for dev and test environments.
package mail

import "context"

// Email is a fully addressed outgoing message.
type Email struct {
	MessageID string
	From      string
	To        string
	Subject   string
	Body      string
}

// Transport delivers an email to the provider. A nil error is the provider's
// acknowledgment; failures are reported as *TransportError where a stable
// code is known.
type Transport interface {
	Send(ctx context.Context, email Email) error
}

// TransportError is a provider-side send failure.
type TransportError struct {
	Code string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error: " + e.Code
	}
	return "transport error: " + e.Code + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
