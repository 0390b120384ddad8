package domain

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
