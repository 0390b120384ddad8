// Package inventory owns the medicine collection and is the only place
// stock quantities change.
package inventory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pharmaflow/m/domain"
	"pharmaflow/m/internal/events"
	"pharmaflow/m/internal/store"
)

// Ledger holds the authoritative list of medicines in insertion order.
// Every successful mutation enqueues a full snapshot for persistence.
type Ledger struct {
	mu        sync.RWMutex
	medicines []domain.Medicine
	persister store.Persister
	bus       *events.Bus
	newID     func() string
}

// NewLedger creates a ledger holding initial. persister and bus may be nil.
func NewLedger(initial []domain.Medicine, persister store.Persister, bus *events.Bus) *Ledger {
	medicines := make([]domain.Medicine, len(initial))
	copy(medicines, initial)
	return &Ledger{
		medicines: medicines,
		persister: persister,
		bus:       bus,
		newID:     func() string { return uuid.NewString() },
	}
}

// Add validates m and inserts it under a freshly generated id. Any id on m
// is ignored.
func (l *Ledger) Add(m domain.Medicine) (domain.Medicine, error) {
	if err := m.Validate(); err != nil {
		return domain.Medicine{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	m.ExpiryDate = strings.TrimSpace(m.ExpiryDate)

	l.mu.Lock()
	m.ID = l.newID()
	l.medicines = append(l.medicines, m)
	l.persistLocked()
	l.mu.Unlock()

	l.bus.Publish(events.Event{Type: events.MedicineAdded, Subject: m.ID, Payload: m})
	return m, nil
}

// Update replaces the medicine with the same id.
func (l *Ledger) Update(m domain.Medicine) (domain.Medicine, error) {
	if err := m.Validate(); err != nil {
		return domain.Medicine{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	m.ExpiryDate = strings.TrimSpace(m.ExpiryDate)

	l.mu.Lock()
	idx := l.indexLocked(m.ID)
	if idx < 0 {
		l.mu.Unlock()
		return domain.Medicine{}, fmt.Errorf("update %s: %w", m.ID, domain.ErrMedicineNotFound)
	}
	l.medicines[idx] = m
	l.persistLocked()
	l.mu.Unlock()

	l.bus.Publish(events.Event{Type: events.MedicineUpdated, Subject: m.ID, Payload: m})
	return m, nil
}

// Remove deletes the medicine with id. Sales referencing it are untouched.
func (l *Ledger) Remove(id string) error {
	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, domain.ErrMedicineNotFound)
	}
	l.medicines = append(l.medicines[:idx], l.medicines[idx+1:]...)
	l.persistLocked()
	l.mu.Unlock()

	l.bus.Publish(events.Event{Type: events.MedicineRemoved, Subject: id})
	return nil
}

// ApplySale decrements stock for every line. All lines are checked before
// any quantity changes: if one references an unknown medicine or asks for
// more than is on hand, the ledger is left untouched.
func (l *Ledger) ApplySale(items []domain.InvoiceItem) error {
	wanted := make(map[string]int, len(items))
	var order []string
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity for %s must be positive", domain.ErrValidation, item.MedicineID)
		}
		if _, seen := wanted[item.MedicineID]; !seen {
			order = append(order, item.MedicineID)
		}
		wanted[item.MedicineID] += item.Quantity
	}

	l.mu.Lock()
	for _, id := range order {
		idx := l.indexLocked(id)
		if idx < 0 {
			l.mu.Unlock()
			return fmt.Errorf("apply sale: %s: %w", id, domain.ErrMedicineNotFound)
		}
		if med := l.medicines[idx]; med.Quantity < wanted[id] {
			l.mu.Unlock()
			return fmt.Errorf("apply sale: %s has %d, wanted %d: %w", med.Name, med.Quantity, wanted[id], domain.ErrInsufficientStock)
		}
	}
	for _, id := range order {
		l.medicines[l.indexLocked(id)].Quantity -= wanted[id]
	}
	if len(order) > 0 {
		l.persistLocked()
	}
	l.mu.Unlock()

	for _, id := range order {
		l.bus.Publish(events.Event{Type: events.StockApplied, Subject: id, Payload: map[string]int{"sold": wanted[id]}})
	}
	return nil
}

// Get returns the medicine with id.
func (l *Ledger) Get(id string) (domain.Medicine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.indexLocked(id)
	if idx < 0 {
		return domain.Medicine{}, fmt.Errorf("get %s: %w", id, domain.ErrMedicineNotFound)
	}
	return l.medicines[idx], nil
}

// List returns a copy of every medicine in insertion order.
func (l *Ledger) List() []domain.Medicine {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Medicine, len(l.medicines))
	copy(out, l.medicines)
	return out
}

// Search returns medicines whose name contains term, case-insensitively.
// An empty term matches everything.
func (l *Ledger) Search(term string) []domain.Medicine {
	return l.filter(term, false)
}

// InStock is Search restricted to medicines with at least one unit.
func (l *Ledger) InStock(term string) []domain.Medicine {
	return l.filter(term, true)
}

func (l *Ledger) filter(term string, inStockOnly bool) []domain.Medicine {
	needle := strings.ToLower(strings.TrimSpace(term))
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Medicine, 0, len(l.medicines))
	for _, m := range l.medicines {
		if inStockOnly && !m.InStock() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (l *Ledger) indexLocked(id string) int {
	for i, m := range l.medicines {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked must be called with the write lock held so snapshots reach
// the persister in mutation order.
func (l *Ledger) persistLocked() {
	if l.persister == nil {
		return
	}
	snapshot := make([]domain.Medicine, len(l.medicines))
	copy(snapshot, l.medicines)
	l.persister.Enqueue(store.MedicinesKey, snapshot)
}
