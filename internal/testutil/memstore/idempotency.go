package memstore

import (
	"context"
	"sync"

	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/domain"
)

const pending = "pending"

// IdempotencyStore versión en memoria de las llaves de idempotencia (sin expiración).
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

var _ billing.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: map[string]string{}}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.keys[key]
	switch {
	case !ok:
		s.keys[key] = pending
		return "", nil
	case val == pending:
		return "", domain.ErrIdempotencyInFlight
	}
	return val, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = invoiceID
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Has indica si la llave existe (reservada o completada).
func (s *IdempotencyStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}
