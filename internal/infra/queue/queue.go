package queue

import "context"

// Handler executes one job.
type Handler func(ctx context.Context, name string, payload []byte) error

// Queue accepts jobs and delivers them to a handler.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload []byte) error
	// Start runs background consumers until ctx is cancelled. Synchronous queues return immediately.
	Start(ctx context.Context)
}

// ImmediateQueue runs the handler inline on enqueue and surfaces its error.
type ImmediateQueue struct {
	handler Handler
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// Enqueue invokes the handler synchronously.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	if q.handler == nil {
		return nil
	}
	return q.handler(ctx, name, payload)
}

// Start is a no-op.
func (q *ImmediateQueue) Start(context.Context) {}

var _ Queue = (*ImmediateQueue)(nil)
