package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomer is recorded when a sale is checked out without a name.
const WalkInCustomer = "cash customer"

// InvoiceItem is one line of a cart or a finalized sale. Name and Price are
// snapshots taken when the line was first added.
type InvoiceItem struct {
	MedicineID string          `json:"medicineId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
}

// LineTotal returns price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sale is an immutable record of a completed transaction.
type Sale struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Items        []InvoiceItem   `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CustomerName string          `json:"customerName"`
}

// Clone returns a copy that shares no memory with s.
func (s Sale) Clone() Sale {
	items := make([]InvoiceItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// SumItems totals a list of invoice lines.
func SumItems(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}
