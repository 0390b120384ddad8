package billing

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"pharmaflow/m/domain"
)

// Registry keeps the carts opened by billing sessions.
type Registry struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Open creates an empty cart and returns its id.
func (r *Registry) Open() (string, *Cart) {
	id := uuid.NewString()
	cart := NewCart()
	r.mu.Lock()
	r.carts[id] = cart
	r.mu.Unlock()
	return id, cart
}

func (r *Registry) Get(id string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s: %w", id, domain.ErrCartNotFound)
	}
	return cart, nil
}

// Close abandons the cart with id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[id]; !ok {
		return fmt.Errorf("cart %s: %w", id, domain.ErrCartNotFound)
	}
	delete(r.carts, id)
	return nil
}
