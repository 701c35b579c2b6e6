// Package queue carries ticket deliveries from the registration request to
// the mail workers. The in-memory queue is the default; a Redis list is used
// when several processes share the work.
package queue

import (
	"context"
	"errors"
	"time"

	"eventify/internal/models"

	"github.com/google/uuid"
)

var (
	ErrQueueFull   = errors.New("delivery queue is full")
	ErrQueueClosed = errors.New("delivery queue is closed")
)

// Job is the envelope stored on the queue
type Job struct {
	ID         string                 `json:"id"`
	Delivery   *models.TicketDelivery `json:"delivery"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
}

func NewJob(delivery *models.TicketDelivery) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Delivery:   delivery,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Queue is implemented by Memory and Redis. Dequeue blocks until a job is
// available, the context ends, or the queue is closed.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	Dequeue(ctx context.Context) (*Job, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Discarder is implemented by queues whose jobs die with the process.
// Discard empties the queue and reports how many jobs were lost.
type Discarder interface {
	Discard() int
}
