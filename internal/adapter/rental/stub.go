package rental

import (
	"context"
	"sync"

	"rental-payment-service/internal/core/domain"

	"github.com/google/uuid"
)

// Stub is an in-memory rental lookup for local development and tests.
// It is used when no rental service base URL is configured.
type Stub struct {
	mu      sync.RWMutex
	rentals map[uuid.UUID]domain.RentalDetails
}

// NewStub creates an empty stub.
func NewStub() *Stub {
	return &Stub{rentals: make(map[uuid.UUID]domain.RentalDetails)}
}

// Seed registers a rental the stub will serve.
func (s *Stub) Seed(r domain.RentalDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rentals[r.RentalID] = r
}

// GetRentalDetails returns the seeded rental or (nil, nil) when unknown.
func (s *Stub) GetRentalDetails(_ context.Context, rentalID uuid.UUID) (*domain.RentalDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rentals[rentalID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}
