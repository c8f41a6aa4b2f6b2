package outreach

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores outreach messages in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Message
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Message)}
}

// Create stores a new message.
func (r *MemoryRepo) Create(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[msg.ID] = cloneMessage(msg)
	return nil
}

// Get returns a message by its ID.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	msg, ok := r.byID[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return cloneMessage(msg), nil
}

// Update overwrites the stored message.
func (r *MemoryRepo) Update(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[msg.ID]; !ok {
		return ErrNotFound
	}
	r.byID[msg.ID] = cloneMessage(msg)
	return nil
}

// FindInFlight returns the message blocking dispatch for the (user, job) pair.
func (r *MemoryRepo) FindInFlight(ctx context.Context, userID, jobID string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, msg := range r.byID {
		if msg.UserID == userID && msg.JobID == jobID && msg.State().InFlight() {
			return cloneMessage(msg), nil
		}
	}
	return Message{}, ErrNotFound
}

// ListByUser returns the user's messages, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var all []Message
	for _, msg := range r.byID {
		if msg.UserID == userID {
			all = append(all, cloneMessage(msg))
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Message{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Delete removes a message and its history.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneMessage(msg Message) Message {
	out := msg
	out.History = make([]DeliveryEvent, len(msg.History))
	copy(out.History, msg.History)
	return out
}
