// Package ringbuf holds the newest N values in memory, overwriting the oldest.
package ringbuf

import "sync"

type Buffer[T any] struct {
	mu      sync.Mutex
	maxSize int
	records []T
	next    int
}

func New[T any](maxSize int) *Buffer[T] {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Buffer[T]{
		maxSize: maxSize,
		records: make([]T, 0, maxSize),
	}
}

func (b *Buffer[T]) Add(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) < b.maxSize {
		b.records = append(b.records, v)
		return
	}
	b.records[b.next] = v
	b.next = (b.next + 1) % b.maxSize
}

func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// List returns up to limit values accepted by keep, newest first. A nil keep
// accepts everything; limit <= 0 means the whole buffer.
func (b *Buffer[T]) List(keep func(T) bool, limit int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 || limit > b.maxSize {
		limit = b.maxSize
	}
	total := len(b.records)
	results := make([]T, 0, min(limit, total))
	for i := 0; i < total; i++ {
		v := b.records[(b.next+total-1-i)%total]
		if keep != nil && !keep(v) {
			continue
		}
		results = append(results, v)
		if len(results) >= limit {
			break
		}
	}
	return results
}
