package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
)

func TestLowStock(t *testing.T) {
	meds := []domain.Medicine{
		{ID: "a", Quantity: 50},
		{ID: "b", Quantity: 5},
		{ID: "c", Quantity: 120},
	}
	got := LowStock(meds, DefaultLowStockThreshold)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b, got %+v", got)
	}
	if got := LowStock([]domain.Medicine{{ID: "edge", Quantity: 10}}, 10); len(got) != 1 {
		t.Fatal("threshold must be inclusive")
	}
}

func TestExpiringSoonBoundary(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		now    time.Time
		expiry string
		want   bool
	}{
		{"beyond horizon", ref, "2024-06-15", false},
		{"within horizon", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "2024-06-15", true},
		{"day before horizon", ref, "2024-03-31", true},
		{"exactly at horizon", ref, "2024-04-01", false},
		{"already expired", ref, "2023-05-01", true},
		{"unparseable", ref, "soon", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpiringSoon([]domain.Medicine{{ID: "m", ExpiryDate: tc.expiry}}, tc.now, DefaultExpiryHorizon)
			if (len(got) == 1) != tc.want {
				t.Fatalf("expiry %s at %s: got %v, want included=%v", tc.expiry, tc.now.Format(domain.DateLayout), got, tc.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	meds := []domain.Medicine{
		{ID: "past", ExpiryDate: "2024-06-14"},
		{ID: "today", ExpiryDate: "2024-06-15"},
		{ID: "future", ExpiryDate: "2024-06-16"},
	}
	got := Expired(meds, now)
	if len(got) != 2 || got[0].ID != "past" || got[1].ID != "today" {
		t.Fatalf("unexpected expired list %+v", got)
	}
}

func sale(id string, at time.Time, total string) domain.Sale {
	return domain.Sale{ID: id, Date: at, TotalAmount: decimal.RequireFromString(total)}
}

func TestRevenueViews(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		sale("1", now.AddDate(0, 0, -1), "40"),
		sale("2", time.Date(2024, 5, 10, 0, 0, 1, 0, time.UTC), "15.5"),
		sale("3", time.Date(2024, 5, 10, 23, 59, 59, 0, time.UTC), "84.5"),
	}

	if got := TodayRevenue(sales, now); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected today 100, got %s", got)
	}
	if got := TotalRevenue(sales); !got.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected total 140, got %s", got)
	}
	if got := TodayRevenue(nil, now); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestSalesHistoryMostRecentFirst(t *testing.T) {
	base := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	sales := []domain.Sale{sale("1", base, "1"), sale("2", base.Add(time.Hour), "1"), sale("3", base.Add(2*time.Hour), "1")}

	got := SalesHistory(sales)
	if got[0].ID != "3" || got[2].ID != "1" {
		t.Fatalf("unexpected order %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if sales[0].ID != "1" {
		t.Fatal("input must not be reordered")
	}
}

type staticMedicines []domain.Medicine

func (s staticMedicines) List() []domain.Medicine { return s }

type staticSales []domain.Sale

func (s staticSales) History() []domain.Sale { return s }

func TestServiceDashboard(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	meds := staticMedicines{
		{ID: "1", Name: "Panadol Extra", Quantity: 50, ExpiryDate: "2025-12-01"},
		{ID: "2", Name: "Augmentin 1g", Quantity: 5, ExpiryDate: "2024-02-15"},
		{ID: "3", Name: "Omeprazole", Quantity: 120, ExpiryDate: "2026-01-20"},
	}
	sales := staticSales{sale("a", now, "30"), sale("b", now.AddDate(0, 0, -3), "12")}
	svc := NewService(meds, sales, func() time.Time { return now })

	d := svc.Dashboard()
	if d.MedicineCount != 3 || d.LowStockCount != 1 || len(d.ExpiringSoon) != 1 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if !d.TodayRevenue.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30 today, got %s", d.TodayRevenue)
	}

	rev := svc.Revenue()
	if !rev.Total.Equal(decimal.NewFromInt(42)) || rev.SalesCount != 2 {
		t.Fatalf("unexpected revenue %+v", rev)
	}
	if h := svc.SalesHistory(); h[0].ID != "b" {
		t.Fatalf("expected most recent recorded first, got %s", h[0].ID)
	}
}

func TestWriteInvoice(t *testing.T) {
	s := domain.Sale{
		ID:           "inv-1",
		Date:         time.Date(2024, 5, 10, 14, 5, 0, 0, time.UTC),
		CustomerName: domain.WalkInCustomer,
		Items: []domain.InvoiceItem{
			{Name: "Panadol Extra", Price: decimal.RequireFromString("15.5"), Quantity: 2, Total: decimal.RequireFromString("31")},
		},
		TotalAmount: decimal.RequireFromString("31"),
	}
	var buf bytes.Buffer
	if err := WriteInvoice(&buf, s); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"inv-1", "2024-05-10 14:05", "cash customer", "Panadol Extra", "15.50", "TOTAL: 31.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("invoice missing %q:\n%s", want, out)
		}
	}
}
