package trajectory

import (
	"errors"
	"sync"
)

// Policy selects which end of the buffer Dequeue drains first.
type Policy string

const (
	// PolicyFIFO dequeues the oldest trajectory first.
	PolicyFIFO Policy = "fifo"
	// PolicyFreshness dequeues the newest trajectory first.
	PolicyFreshness Policy = "freshness"
)

var ErrEmpty = errors.New("trajectory buffer is empty")

// Buffer is a bounded, mutex-guarded trajectory store. Enqueue never fails:
// when the buffer is full the oldest trajectory is evicted, since the
// recorder feeding it must not stall the training loop.
type Buffer struct {
	mu       sync.Mutex
	items    []Trajectory
	capacity int
	policy   Policy
}

func NewBuffer(capacity int, policy Policy) (*Buffer, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be greater than zero")
	}
	if policy != PolicyFIFO && policy != PolicyFreshness {
		return nil, errors.New("policy must be 'fifo' or 'freshness'")
	}
	return &Buffer{
		items:    make([]Trajectory, 0, capacity),
		capacity: capacity,
		policy:   policy,
	}, nil
}

func (b *Buffer) Enqueue(t Trajectory) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
	}
	b.items = append(b.items, t)
}

func (b *Buffer) Dequeue() (Trajectory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return Trajectory{}, ErrEmpty
	}
	switch b.policy {
	case PolicyFreshness:
		item := b.items[len(b.items)-1]
		b.items = b.items[:len(b.items)-1]
		return item, nil
	default:
		item := b.items[0]
		b.items = b.items[1:]
		return item, nil
	}
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Buffer) Capacity() int {
	return b.capacity
}

func (b *Buffer) Policy() Policy {
	return b.policy
}

// Snapshot returns a copy of the buffered trajectories, oldest first.
func (b *Buffer) Snapshot() []Trajectory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Trajectory(nil), b.items...)
}
