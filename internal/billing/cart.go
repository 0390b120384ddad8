// Package billing holds the in-progress carts of the billing view.
package billing

import (
	"sync"

	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
)

// Cart accumulates invoice lines before checkout. Lines keep the order in
// which medicines were first added.
type Cart struct {
	mu       sync.Mutex
	lines    []domain.InvoiceItem
	customer string
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem adds one unit of m. A new line is priced at m's current price.
// An existing line is incremented only while it stays within m's current
// stock; otherwise the call does nothing and returns false.
func (c *Cart) AddItem(m domain.Medicine) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		line := &c.lines[i]
		if line.MedicineID != m.ID {
			continue
		}
		if line.Quantity+1 > m.Quantity {
			return false
		}
		line.Quantity++
		line.Total = domain.LineTotal(line.Price, line.Quantity)
		return true
	}

	if !m.InStock() {
		return false
	}
	c.lines = append(c.lines, domain.InvoiceItem{
		MedicineID: m.ID,
		Name:       m.Name,
		Price:      m.Price,
		Quantity:   1,
		Total:      m.Price,
	})
	return true
}

// RemoveItem drops the line for medicineID. It reports whether a line was
// removed.
func (c *Cart) RemoveItem(medicineID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, line := range c.lines {
		if line.MedicineID == medicineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetCustomerName stores the name as typed; blank names are resolved at
// checkout.
func (c *Cart) SetCustomerName(name string) {
	c.mu.Lock()
	c.customer = name
	c.mu.Unlock()
}

func (c *Cart) CustomerName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customer
}

// Clear empties the cart and resets the customer name.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.clearLocked()
	c.mu.Unlock()
}

// Items returns a copy of the lines.
func (c *Cart) Items() []domain.InvoiceItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Total sums every line total.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SumItems(c.lines)
}

// Commit passes a snapshot of the lines and customer name to fn while the
// cart is locked, and clears the cart if fn succeeds. An empty cart is left
// untouched and fn is not called.
func (c *Cart) Commit(fn func(items []domain.InvoiceItem, customer string) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return nil
	}
	if err := fn(c.itemsLocked(), c.customer); err != nil {
		return err
	}
	c.clearLocked()
	return nil
}

func (c *Cart) itemsLocked() []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) clearLocked() {
	c.lines = nil
	c.customer = ""
}
