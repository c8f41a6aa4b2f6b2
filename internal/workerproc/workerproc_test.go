package workerproc

import (
	"context"
	"errors"
	"testing"

	"outreach-backend/internal/queue"
)

type recordingProcessor struct {
	ids []string
	err error
}

func (p *recordingProcessor) ProcessSend(ctx context.Context, messageID string) error {
	p.ids = append(p.ids, messageID)
	return p.err
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, meta, err := ParseMessage("   ")
	var emptyErr ErrEmptyBody
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if meta.BodyLen != 3 {
		t.Fatalf("expected body length 3, got %d", meta.BodyLen)
	}
}

func TestParseMessageBadJSON(t *testing.T) {
	_, _, err := ParseMessage("{not json")
	var decodeErr ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if decodeErr.Err == nil {
		t.Fatal("ErrDecode must carry the underlying error")
	}
}

func TestParseMessageMissingID(t *testing.T) {
	_, _, err := ParseMessage(`{"requestId":"req-1","version":1}`)
	var missingErr ErrMissingMessageID
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected ErrMissingMessageID, got %v", err)
	}
	if missingErr.RequestID != "req-1" {
		t.Fatalf("expected request id to survive parsing, got %q", missingErr.RequestID)
	}
}

func TestParseMessageValid(t *testing.T) {
	msg, meta, err := ParseMessage(`{"messageId":"msg-1","requestId":"req-1","version":1}`)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.MessageID != "msg-1" {
		t.Fatalf("expected msg-1, got %q", msg.MessageID)
	}
	if meta.BodySHA == "" {
		t.Fatal("expected a body hash")
	}
}

func TestHandleMessageInvokesProcessor(t *testing.T) {
	proc := &recordingProcessor{}
	err := HandleMessage(context.Background(), proc, `{"messageId":"msg-1","requestId":"req-1","version":1}`)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "msg-1" {
		t.Fatalf("expected one send for msg-1, got %v", proc.ids)
	}
}

func TestHandleMessageWrapsProcessorError(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("transport down")}
	err := HandleMessage(context.Background(), proc, `{"messageId":"msg-1","version":1}`)

	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.MessageID != "msg-1" {
		t.Fatalf("expected msg-1, got %q", procErr.MessageID)
	}
}

func TestRunDrainsQueueUntilClosed(t *testing.T) {
	q := queue.NewMemoryClient(8)
	proc := &recordingProcessor{}

	ctx := context.Background()
	for _, id := range []string{"msg-1", "msg-2", "msg-3"} {
		if err := q.Send(ctx, queue.Message{MessageID: id, Version: 1}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, q, proc, 1)
	}()

	// Close after the producer is done; Run returns once the queue closes.
	q.Close()
	<-done

	if len(proc.ids) > 3 {
		t.Fatalf("processed more sends than enqueued: %v", proc.ids)
	}
}
