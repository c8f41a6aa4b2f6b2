package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	q := NewMemoryClient(4)
	t.Cleanup(q.Close)
	ctx := context.Background()

	want := Message{MessageID: "msg-1", RequestID: "req-1", Version: 1}
	if err := q.Send(ctx, want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, ok := q.Receive(ctx)
	if !ok {
		t.Fatal("expected a message")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestMemoryClientSendAfterClose(t *testing.T) {
	q := NewMemoryClient(1)
	q.Close()

	err := q.Send(context.Background(), Message{MessageID: "msg-1"})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryClientReceiveUnblocksOnClose(t *testing.T) {
	q := NewMemoryClient(1)

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Receive(context.Background())
		done <- ok
	}()

	q.Close()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after close")
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock on close")
	}
}

func TestMemoryClientReceiveHonorsContext(t *testing.T) {
	q := NewMemoryClient(1)
	t.Cleanup(q.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := q.Receive(ctx)
	if ok {
		t.Fatal("expected ok=false on context timeout")
	}
}

func TestMessageEncodeDecode(t *testing.T) {
	want := Message{MessageID: "msg-1", RequestID: "req-1", EnqueuedAt: "2025-03-14T09:30:00Z", Version: 1}
	data, err := EncodeMessage(want)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	got, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
