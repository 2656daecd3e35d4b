package repositories

import (
	"fmt"
	"sync"
	"time"

	"eventflow/internal/models"
	"eventflow/internal/services"

	"github.com/google/uuid"
)

type checkoutEntry struct {
	checkout *services.Checkout
	touched  time.Time
}

// CheckoutStore maps session checkout ids to live checkouts
type CheckoutStore struct {
	svc *services.CheckoutService
	now func() time.Time

	mu        sync.Mutex
	checkouts map[string]*checkoutEntry
}

// NewCheckoutStore creates a new checkout store backed by svc
func NewCheckoutStore(svc *services.CheckoutService) *CheckoutStore {
	return &CheckoutStore{
		svc:       svc,
		now:       time.Now,
		checkouts: make(map[string]*checkoutEntry),
	}
}

// Create starts a new empty checkout under a fresh id
func (s *CheckoutStore) Create() *services.Checkout {
	c := s.svc.NewCheckout(uuid.New().String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[c.ID()] = &checkoutEntry{checkout: c, touched: s.now()}
	return c
}

// Blank returns an empty checkout that is not stored. It renders the
// review stage for visitors who have not started one.
func (s *CheckoutStore) Blank() *services.Checkout {
	return s.svc.NewCheckout("")
}

// Get retrieves a checkout by id and marks it as used
func (s *CheckoutStore) Get(id string) (*services.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.checkouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrCheckoutNotFound, id)
	}
	e.touched = s.now()
	return e.checkout, nil
}

// GetOrCreate returns the checkout for id, starting a new one when id is
// empty or unknown
func (s *CheckoutStore) GetOrCreate(id string) (*services.Checkout, bool) {
	if id != "" {
		if c, err := s.Get(id); err == nil {
			return c, false
		}
	}
	return s.Create(), true
}

// Delete closes and forgets a checkout. Unknown ids are ignored.
func (s *CheckoutStore) Delete(id string) {
	s.mu.Lock()
	e, ok := s.checkouts[id]
	delete(s.checkouts, id)
	s.mu.Unlock()

	if ok {
		e.checkout.Close()
	}
}

// Sweep closes and forgets checkouts untouched for longer than maxIdle.
// It returns how many were removed.
func (s *CheckoutStore) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	var idle []*services.Checkout
	s.mu.Lock()
	for id, e := range s.checkouts {
		if e.touched.Before(cutoff) {
			idle = append(idle, e.checkout)
			delete(s.checkouts, id)
		}
	}
	s.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// Len returns the number of live checkouts
func (s *CheckoutStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.checkouts)
}
