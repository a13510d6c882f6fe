package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vasii/catalog/internal/core/domain"
)

type entry struct {
	products  []domain.Product
	expiresAt time.Time
}

// Store is a process-local staging store for single-instance deployments
// and tests. Sessions are lost on restart.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *Store) Save(_ context.Context, uploadID string, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{products: append([]domain.Product(nil), products...)}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[uploadID] = e
	return nil
}

func (s *Store) Load(_ context.Context, uploadID string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[uploadID]
	if ok && !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, uploadID)
		ok = false
	}
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "load staged records", fmt.Errorf("no staged records for upload %s", uploadID))
	}
	return append([]domain.Product(nil), e.products...), nil
}

func (s *Store) Delete(_ context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, uploadID)
	return nil
}
