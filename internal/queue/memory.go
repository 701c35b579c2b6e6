package queue

import (
	"context"
	"sync"
)

// Memory is a bounded in-process queue. Enqueue never blocks: a full queue
// rejects the job with ErrQueueFull.
type Memory struct {
	jobs   chan *Job
	mu     sync.RWMutex
	closed bool
}

func NewMemory(size int) *Memory {
	if size < 1 {
		size = 1
	}
	return &Memory{jobs: make(chan *Job, size)}
}

func (m *Memory) Enqueue(ctx context.Context, job *Job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case m.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *Memory) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job, ok := <-m.jobs:
		if !ok {
			return nil, ErrQueueClosed
		}
		return job, nil
	}
}

func (m *Memory) Len(_ context.Context) (int, error) {
	return len(m.jobs), nil
}

// Close stops accepting jobs. Jobs already queued can still be dequeued.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.jobs)
	}
	return nil
}

func (m *Memory) Discard() int {
	n := 0
	for {
		select {
		case _, ok := <-m.jobs:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}
