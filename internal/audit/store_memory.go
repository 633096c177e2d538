package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the audit trail in process memory. Default when no
// Postgres DSN is configured; also used by tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByProduct(_ context.Context, productID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, event := range s.events {
		if event.ProductID == productID {
			out = append(out, event)
		}
	}
	return out, nil
}
