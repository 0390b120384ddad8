// Package sales turns carts into immutable sale records.
package sales

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmaflow/m/domain"
	"pharmaflow/m/internal/billing"
	"pharmaflow/m/internal/events"
	"pharmaflow/m/internal/store"
)

// StockApplier decrements stock for the lines of a sale.
type StockApplier interface {
	ApplySale(items []domain.InvoiceItem) error
}

// Recorder owns the append-only sale history.
type Recorder struct {
	mu        sync.Mutex
	stock     StockApplier
	history   []domain.Sale
	persister store.Persister
	bus       *events.Bus
	now       func() time.Time
	newID     func() string
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock replaces the time source used to stamp sales.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a recorder over an existing history. persister and
// bus may be nil.
func NewRecorder(stock StockApplier, history []domain.Sale, persister store.Persister, bus *events.Bus, opts ...Option) *Recorder {
	r := &Recorder{
		stock:     stock,
		history:   make([]domain.Sale, 0, len(history)),
		persister: persister,
		bus:       bus,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, s := range history {
		r.history = append(r.history, s.Clone())
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Checkout records the cart as a sale, decrements stock and clears the
// cart. An empty cart yields (nil, nil). If stock cannot be applied no sale
// is recorded and the cart is left as it was.
func (r *Recorder) Checkout(cart *billing.Cart) (*domain.Sale, error) {
	var sale *domain.Sale
	err := cart.Commit(func(items []domain.InvoiceItem, customer string) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := r.stock.ApplySale(items); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}

		if strings.TrimSpace(customer) == "" {
			customer = domain.WalkInCustomer
		}
		recorded := domain.Sale{
			ID:           r.newID(),
			Date:         r.now().UTC(),
			Items:        items,
			TotalAmount:  domain.SumItems(items),
			CustomerName: customer,
		}
		r.history = append(r.history, recorded)
		r.persistLocked()

		out := recorded.Clone()
		sale = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sale != nil {
		r.bus.Publish(events.Event{Type: events.SaleRecorded, Subject: sale.ID, Payload: sale.Clone()})
	}
	return sale, nil
}

// History returns every sale in the order it was recorded.
func (r *Recorder) History() []domain.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Sale, len(r.history))
	for i, s := range r.history {
		out[i] = s.Clone()
	}
	return out
}

// Get returns the sale with id.
func (r *Recorder) Get(id string) (domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.history {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return domain.Sale{}, fmt.Errorf("sale %s: %w", id, domain.ErrSaleNotFound)
}

func (r *Recorder) persistLocked() {
	if r.persister == nil {
		return
	}
	snapshot := make([]domain.Sale, len(r.history))
	copy(snapshot, r.history)
	r.persister.Enqueue(store.SalesKey, snapshot)
}
