package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for expiry dates.
const DateLayout = "2006-01-02"

// Amounts are stored and served as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Medicine is a stocked product.
type Medicine struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	ExpiryDate string          `json:"expiryDate"`
	Category   string          `json:"category,omitempty"`
}

// Validate checks the fields required on add and update.
func (m Medicine) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if m.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if _, err := m.Expiry(); err != nil {
		return fmt.Errorf("%w: expiryDate must be in YYYY-MM-DD format", ErrValidation)
	}
	return nil
}

// Expiry parses ExpiryDate as a UTC calendar date.
func (m Medicine) Expiry() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(m.ExpiryDate))
}

// InStock reports whether at least one unit is available.
func (m Medicine) InStock() bool {
	return m.Quantity > 0
}
