package outreach

import "context"

// Repo persists outreach messages and their delivery history.
type Repo interface {
	Create(ctx context.Context, msg Message) error
	Get(ctx context.Context, id string) (Message, error)
	// Update persists mutable fields and any history entries appended since
	// the message was last stored. History entries are never rewritten.
	Update(ctx context.Context, msg Message) error
	// FindInFlight returns the message currently blocking dispatch for the
	// (user, job) pair, or ErrNotFound.
	FindInFlight(ctx context.Context, userID, jobID string) (Message, error)
	// ListByUser returns the user's messages, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Message, error)
	Delete(ctx context.Context, id string) error
}
