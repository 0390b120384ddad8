// Package reports computes read-only views over medicines and sales.
package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
)

const (
	DefaultLowStockThreshold = 10
	DefaultExpiryHorizon     = 3
)

// LowStock returns medicines with quantity <= threshold.
func LowStock(meds []domain.Medicine, threshold int) []domain.Medicine {
	out := []domain.Medicine{}
	for _, m := range meds {
		if m.Quantity <= threshold {
			out = append(out, m)
		}
	}
	return out
}

// ExpiringSoon returns medicines expiring strictly before now plus months,
// including those already expired. Unparseable dates are skipped.
func ExpiringSoon(meds []domain.Medicine, now time.Time, months int) []domain.Medicine {
	return expiringBefore(meds, now.AddDate(0, months, 0))
}

// Expired returns medicines whose expiry date is before now.
func Expired(meds []domain.Medicine, now time.Time) []domain.Medicine {
	return expiringBefore(meds, now)
}

func expiringBefore(meds []domain.Medicine, limit time.Time) []domain.Medicine {
	out := []domain.Medicine{}
	for _, m := range meds {
		expiry, err := m.Expiry()
		if err != nil {
			continue
		}
		if expiry.Before(limit) {
			out = append(out, m)
		}
	}
	return out
}

// TodayRevenue sums sales whose UTC ISO date has the same YYYY-MM-DD prefix
// as now.
func TodayRevenue(sales []domain.Sale, now time.Time) decimal.Decimal {
	today := now.UTC().Format(domain.DateLayout)
	total := decimal.Zero
	for _, s := range sales {
		if strings.HasPrefix(s.Date.UTC().Format(time.RFC3339), today) {
			total = total.Add(s.TotalAmount)
		}
	}
	return total
}

// TotalRevenue sums every sale.
func TotalRevenue(sales []domain.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return total
}

// SalesHistory returns sales most recent first. Input is expected in
// recording order.
func SalesHistory(sales []domain.Sale) []domain.Sale {
	out := make([]domain.Sale, len(sales))
	for i, s := range sales {
		out[len(sales)-1-i] = s
	}
	return out
}
