package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
)

// MedicineSource lists the current inventory.
type MedicineSource interface {
	List() []domain.Medicine
}

// SaleSource lists sales in recording order.
type SaleSource interface {
	History() []domain.Sale
}

// Dashboard is the summary shown on the landing page.
type Dashboard struct {
	MedicineCount int               `json:"medicineCount"`
	TodayRevenue  decimal.Decimal   `json:"todayRevenue"`
	LowStockCount int               `json:"lowStockCount"`
	LowStock      []domain.Medicine `json:"lowStock"`
	ExpiringSoon  []domain.Medicine `json:"expiringSoon"`
}

// Revenue summarises sales takings.
type Revenue struct {
	Today      decimal.Decimal `json:"today"`
	Total      decimal.Decimal `json:"total"`
	SalesCount int             `json:"salesCount"`
}

// Service evaluates the views against live sources on every call.
type Service struct {
	medicines MedicineSource
	sales     SaleSource
	now       func() time.Time

	LowStockThreshold int
	ExpiryHorizon     int
}

func NewService(medicines MedicineSource, sales SaleSource, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		medicines:         medicines,
		sales:             sales,
		now:               now,
		LowStockThreshold: DefaultLowStockThreshold,
		ExpiryHorizon:     DefaultExpiryHorizon,
	}
}

func (s *Service) LowStock(threshold int) []domain.Medicine {
	return LowStock(s.medicines.List(), threshold)
}

func (s *Service) ExpiringSoon(months int) []domain.Medicine {
	return ExpiringSoon(s.medicines.List(), s.now(), months)
}

func (s *Service) Expired() []domain.Medicine {
	return Expired(s.medicines.List(), s.now())
}

func (s *Service) Revenue() Revenue {
	sales := s.sales.History()
	return Revenue{
		Today:      TodayRevenue(sales, s.now()),
		Total:      TotalRevenue(sales),
		SalesCount: len(sales),
	}
}

func (s *Service) SalesHistory() []domain.Sale {
	return SalesHistory(s.sales.History())
}

func (s *Service) Dashboard() Dashboard {
	meds := s.medicines.List()
	now := s.now()
	low := LowStock(meds, s.LowStockThreshold)
	return Dashboard{
		MedicineCount: len(meds),
		TodayRevenue:  TodayRevenue(s.sales.History(), now),
		LowStockCount: len(low),
		LowStock:      low,
		ExpiringSoon:  ExpiringSoon(meds, now, s.ExpiryHorizon),
	}
}
