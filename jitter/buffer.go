package jitter

import "sync"

// Queue is the minimal contract shared by the frame buffers.
type Queue[T any] interface {
	// Push appends item and returns how many items were discarded to honour capacity.
	Push(item T) int
	// PopOne removes the head item; ok is false when the queue is empty.
	PopOne() (item T, ok bool)
	// Len returns the number of buffered items.
	Len() int
	// Cap returns the fixed capacity.
	Cap() int
}

// Stats are observability counters. They never influence buffer behavior.
type Stats struct {
	Pushed    uint64
	Popped    uint64
	Dropped   uint64
	Underruns uint64
}

// Buffer is a fixed-capacity ring of decoded units guarded by a mutex held
// only for the duration of each operation.
type Buffer[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	size   int
	policy Policy
	stats  Stats
}

// New creates a Buffer holding at most capacity items. capacity below 1 is raised to 1.
func New[T any](capacity int, policy Policy) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		items:  make([]T, capacity),
		policy: policy,
	}
}

// Push appends item at the tail. When the buffer is full, DropOldest evicts
// the head and DropNewest discards item. Returns the number of discarded items.
func (b *Buffer[T]) Push(item T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.Pushed++
	dropped := 0
	if b.size == len(b.items) {
		if b.policy == DropNewest {
			b.stats.Dropped++
			return 1
		}
		var zero T
		b.items[b.head] = zero
		b.head = (b.head + 1) % len(b.items)
		b.size--
		dropped = 1
	}

	b.items[(b.head+b.size)%len(b.items)] = item
	b.size++
	b.stats.Dropped += uint64(dropped)
	return dropped
}

// PopOne removes and returns the head item.
func (b *Buffer[T]) PopOne() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if b.size == 0 {
		b.stats.Underruns++
		return zero, false
	}

	item := b.items[b.head]
	b.items[b.head] = zero
	b.head = (b.head + 1) % len(b.items)
	b.size--
	b.stats.Popped++
	return item, true
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Policy returns the overflow policy chosen at construction.
func (b *Buffer[T]) Policy() Policy {
	return b.policy
}

// Stats returns a snapshot of the counters.
func (b *Buffer[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset discards all buffered items. Counters are kept.
func (b *Buffer[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head, b.size = 0, 0
}

var _ Queue[int] = (*Buffer[int])(nil)
