package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// HandoffQueue is an unbounded FIFO connecting the single downloader to the
// single transcription worker. Pushes never block; Pop blocks until a message
// arrives or the context is cancelled.
//
// Once the end-of-stream marker is pushed the queue is sealed: further pushes
// fail with ErrQueueProtocol, and popping past the marker does too.
type HandoffQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []Message
	sealed   bool
	finished bool
}

// NewHandoffQueue constructs an empty queue.
func NewHandoffQueue() *HandoffQueue {
	q := &HandoffQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues an artifact message.
func (q *HandoffQueue) Push(artifact AudioArtifact) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sealed {
		return fmt.Errorf("%w: push after end of stream", ErrQueueProtocol)
	}
	q.items = append(q.items, Message{Kind: MessageArtifact, Artifact: artifact})
	q.cond.Signal()
	return nil
}

// PushEnd enqueues the end-of-stream marker and seals the queue.
func (q *HandoffQueue) PushEnd() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sealed {
		return fmt.Errorf("%w: duplicate end of stream", ErrQueueProtocol)
	}
	q.sealed = true
	q.items = append(q.items, Message{Kind: MessageEndOfStream})
	q.cond.Signal()
	return nil
}

// Pop removes and returns the next message, blocking until one is available.
// After the end-of-stream marker has been delivered, further pops fail with
// ErrQueueProtocol.
func (q *HandoffQueue) Pop(ctx context.Context) (Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.finished {
			return Message{}, fmt.Errorf("%w: pop after end of stream", ErrQueueProtocol)
		}
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		q.cond.Wait()
	}

	if q.finished {
		return Message{}, fmt.Errorf("%w: pop after end of stream", ErrQueueProtocol)
	}

	msg := q.items[0]
	q.items = q.items[1:]
	if msg.Kind == MessageEndOfStream {
		q.finished = true
	}
	return msg, nil
}

// DrainArtifacts removes and returns any undelivered artifact messages. It is
// used after an aborted run to clean up artifacts the consumer never claimed.
func (q *HandoffQueue) DrainArtifacts() []AudioArtifact {
	q.mu.Lock()
	defer q.mu.Unlock()
	var artifacts []AudioArtifact
	for _, msg := range q.items {
		if msg.Kind == MessageArtifact {
			artifacts = append(artifacts, msg.Artifact)
		}
	}
	q.items = nil
	if q.sealed {
		q.finished = true
	}
	return artifacts
}

// Len reports the number of queued messages.
func (q *HandoffQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
