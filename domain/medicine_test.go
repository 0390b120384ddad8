package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMedicineValidate(t *testing.T) {
	valid := Medicine{Name: "Omeprazole", Price: decimal.RequireFromString("22.00"), Quantity: 120, ExpiryDate: "2026-01-20"}

	cases := []struct {
		name    string
		mutate  func(m *Medicine)
		wantErr bool
	}{
		{"valid", func(m *Medicine) {}, false},
		{"zero price and quantity", func(m *Medicine) { m.Price = decimal.Zero; m.Quantity = 0 }, false},
		{"blank name", func(m *Medicine) { m.Name = "   " }, true},
		{"negative price", func(m *Medicine) { m.Price = decimal.NewFromInt(-1) }, true},
		{"negative quantity", func(m *Medicine) { m.Quantity = -3 }, true},
		{"missing expiry", func(m *Medicine) { m.ExpiryDate = "" }, true},
		{"bad expiry", func(m *Medicine) { m.ExpiryDate = "20/01/2026" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := valid
			tc.mutate(&m)
			err := m.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaleCloneDetachesItems(t *testing.T) {
	sale := Sale{ID: "s1", Items: []InvoiceItem{{MedicineID: "m1", Quantity: 2}}}
	clone := sale.Clone()
	clone.Items[0].Quantity = 99

	if sale.Items[0].Quantity != 2 {
		t.Fatalf("clone shares items with original: %d", sale.Items[0].Quantity)
	}
}

func TestSumItems(t *testing.T) {
	items := []InvoiceItem{
		{Total: LineTotal(decimal.RequireFromString("15.50"), 2)},
		{Total: LineTotal(decimal.RequireFromString("85"), 1)},
	}
	if got := SumItems(items); !got.Equal(decimal.RequireFromString("116")) {
		t.Fatalf("expected 116, got %s", got)
	}
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	sale := Sale{
		ID:          "s1",
		Items:       []InvoiceItem{{MedicineID: "m1", Name: "Panadol Extra", Price: decimal.RequireFromString("15.5"), Quantity: 2, Total: decimal.RequireFromString("31")}},
		TotalAmount: decimal.RequireFromString("31"),
	}
	data, err := json.Marshal(sale)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"price":15.5`, `"total":31`, `"totalAmount":31`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in %s", want, data)
		}
	}

	var back Sale
	if err := json.Unmarshal(data, &back); err != nil || !back.TotalAmount.Equal(sale.TotalAmount) {
		t.Fatalf("unmarshal: %+v (%v)", back, err)
	}
}
