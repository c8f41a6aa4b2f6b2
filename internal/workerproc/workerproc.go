package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"outreach-backend/internal/outreach"
	"outreach-backend/internal/queue"
)

// SendProcessor performs the transport send for one outreach message.
type SendProcessor interface {
	ProcessSend(ctx context.Context, messageID string) error
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingMessageID indicates a payload without an outreach message id.
type ErrMissingMessageID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingMessageID) Error() string { return "missing message id" }

// ErrProcess indicates the send failed after successful parsing.
type ErrProcess struct {
	MessageID string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process send"
	}
	return "process send: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.MessageID) == "" {
		return msg, meta, ErrMissingMessageID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage parses a queue payload and performs the send.
func HandleMessage(ctx context.Context, processor SendProcessor, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return Handle(ctx, processor, msg)
}

// Handle performs the send for an already decoded queue message.
func Handle(ctx context.Context, processor SendProcessor, msg queue.Message) error {
	ctxWithRequest := outreach.WithRequestID(ctx, msg.RequestID)
	if err := processor.ProcessSend(ctxWithRequest, msg.MessageID); err != nil {
		return ErrProcess{MessageID: msg.MessageID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
