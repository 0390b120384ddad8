// Package events notifies observers of state changes in the inventory and
// sales core.
package events

import (
	"sync"
	"time"
)

const (
	MedicineAdded   = "medicine.added"
	MedicineUpdated = "medicine.updated"
	MedicineRemoved = "medicine.removed"
	StockApplied    = "stock.applied"
	SaleRecorded    = "sale.recorded"
	PersistFailed   = "persist.failed"
)

// Event describes one state change. Subject is the id of the affected
// record, or the collection key for persistence warnings.
type Event struct {
	Type      string    `json:"type"`
	Subject   string    `json:"subject,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Listener receives events. Notify is called synchronously by the publisher
// and must not block.
type Listener interface {
	Notify(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) Notify(e Event) { f(e) }

// Bus fans events out to subscribed listeners. A nil *Bus drops events.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Publish stamps e if needed and delivers it to every listener.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.Notify(e)
	}
}
