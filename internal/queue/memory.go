package queue

import (
	"context"
	"errors"
)

// ErrClosed indicates a send on a closed queue.
var ErrClosed = errors.New("queue closed")

// MemoryClient is a channel-backed queue for single-process deployments. The
// API process produces, the embedded send worker consumes.
type MemoryClient struct {
	ch   chan Message
	done chan struct{}
}

// NewMemoryClient constructs a MemoryClient with the given buffer size.
func NewMemoryClient(buffer int) *MemoryClient {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryClient{
		ch:   make(chan Message, buffer),
		done: make(chan struct{}),
	}
}

// Send enqueues a message, blocking if the buffer is full.
func (c *MemoryClient) Send(ctx context.Context, msg Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.ch <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks for the next message. ok is false once the queue is closed
// or the context is done.
func (c *MemoryClient) Receive(ctx context.Context) (Message, bool) {
	select {
	case msg := <-c.ch:
		return msg, true
	case <-c.done:
		return Message{}, false
	case <-ctx.Done():
		return Message{}, false
	}
}

// Close stops the queue. Pending messages are dropped.
func (c *MemoryClient) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
