package deadletter

import (
	"context"
	"sync"
)

// MemoryStore keeps failed dispatches in memory.
// Suitable for tests and short-lived processes.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*FailedDispatch
	max     int
	closed  bool
}

// NewMemoryStore creates an in-memory store. When max > 0 the oldest
// records are dropped once the store holds max records.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max}
}

// Enqueue implements Store.
func (s *MemoryStore) Enqueue(_ context.Context, failed *FailedDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	cp := *failed
	s.records = append(s.records, &cp)
	if s.max > 0 && len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*FailedDispatch, error) {
	return s.ListByEvent(ctx, "", limit)
}

// ListByEvent implements Store. An empty event matches every record.
func (s *MemoryStore) ListByEvent(_ context.Context, event string, limit int) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var out []*FailedDispatch
	for _, r := range s.records {
		if event != "" && r.Event != event {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Acknowledge implements Store.
func (s *MemoryStore) Acknowledge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.records), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}
