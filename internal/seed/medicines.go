package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pharmaflow/m/domain"
	"pharmaflow/m/internal/store"
)

// Defaults are the example medicines used when no catalog file is present.
func Defaults() []domain.Medicine {
	return []domain.Medicine{
		{Name: "Panadol Extra", Price: decimal.RequireFromString("15.50"), Quantity: 50, ExpiryDate: "2025-12-01"},
		{Name: "Augmentin 1g", Price: decimal.RequireFromString("85.00"), Quantity: 5, ExpiryDate: "2024-06-15"},
		{Name: "Omeprazole", Price: decimal.RequireFromString("22.00"), Quantity: 120, ExpiryDate: "2026-01-20"},
	}
}

// Bootstrap returns the persisted medicines and sales. When the medicines
// collection is absent it is seeded from csvPath, or from Defaults when the
// file does not exist or yields no rows, and written immediately.
func Bootstrap(ctx context.Context, kv store.KV, csvPath string) ([]domain.Medicine, []domain.Sale, error) {
	var sales []domain.Sale
	if _, err := store.LoadJSON(ctx, kv, store.SalesKey, &sales); err != nil {
		return nil, nil, err
	}

	var medicines []domain.Medicine
	found, err := store.LoadJSON(ctx, kv, store.MedicinesKey, &medicines)
	if err != nil {
		return nil, nil, err
	}
	if found {
		return medicines, sales, nil
	}

	medicines, err = LoadCatalog(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		medicines = Defaults()
	} else if err != nil {
		return nil, nil, err
	}
	if len(medicines) == 0 {
		log.Printf("catalog %s has no valid rows, using default medicines", csvPath)
		medicines = Defaults()
	}
	for i := range medicines {
		medicines[i].ID = uuid.NewString()
	}

	if err := store.SaveJSON(ctx, kv, store.MedicinesKey, medicines); err != nil {
		return nil, nil, err
	}
	log.Printf("seeded medicine inventory with %d rows", len(medicines))
	return medicines, sales, nil
}

// LoadCatalog reads medicines from a CSV file with the header
// name,price,quantity,expiry_date[,category]. Invalid rows are skipped.
func LoadCatalog(csvPath string) ([]domain.Medicine, error) {
	if csvPath == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("unable to read catalog header: %w", err)
	}

	var medicines []domain.Medicine
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		m, err := parseRow(record)
		if err != nil {
			log.Printf("skipping catalog row %q: %v", record[0], err)
			continue
		}
		medicines = append(medicines, m)
	}
	return medicines, nil
}

func parseRow(record []string) (domain.Medicine, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("invalid price: %w", err)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("invalid quantity: %w", err)
	}
	m := domain.Medicine{
		Name:       strings.TrimSpace(record[0]),
		Price:      price,
		Quantity:   qty,
		ExpiryDate: strings.TrimSpace(record[3]),
	}
	if len(record) > 4 {
		m.Category = strings.TrimSpace(record[4])
	}
	return m, m.Validate()
}
