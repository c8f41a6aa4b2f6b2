package workerproc

import (
	"context"
	"errors"
	"sync"

	"outreach-backend/internal/queue"
	"outreach-backend/internal/shared/telemetry"
)

// Run consumes the queue until the context is cancelled or the queue closes,
// fanning sends out across at most concurrency goroutines. It returns after
// all in-progress sends finish.
func Run(ctx context.Context, q *queue.MemoryClient, processor SendProcessor, concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for {
		msg, ok := q.Receive(ctx)
		if !ok {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(msg queue.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := Handle(ctx, processor, msg); err != nil {
				logHandleError(msg, err)
			}
		}(msg)
	}
	wg.Wait()
}

func logHandleError(msg queue.Message, err error) {
	fields := map[string]any{
		"messageId": msg.MessageID,
		"requestId": msg.RequestID,
		"error":     err.Error(),
	}
	var procErr ErrProcess
	if errors.As(err, &procErr) {
		telemetry.Error("worker.send.failed", fields)
		return
	}
	telemetry.Error("worker.message.invalid", fields)
}
