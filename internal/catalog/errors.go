package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateID       = errors.New("product id already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError reports the first product that could not satisfy a reservation.
// Missing is set when the product no longer exists in the catalog.
type StockError struct {
	ProductID string
	Requested int
	Available int
	Missing   bool
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("product %s: %v", e.ProductID, ErrNotFound)
	}
	return fmt.Sprintf("product %s: insufficient stock: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	if e.Missing {
		return ErrNotFound
	}
	return ErrInsufficientStock
}
