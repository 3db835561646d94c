package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Values returned by the Store are copies; the
// only way to change a stored product is through a Store method.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	Description    string          `json:"description"`
	Active         bool            `json:"active"`
	SellerUsername string          `json:"seller_username"` // seller-of-record
	SellerPhone    string          `json:"seller_phone"`
}

// Available reports whether the product can be bought at all: listed and in stock.
func (p Product) Available() bool {
	return p.Active && p.Stock > 0
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

func (p Product) HasEnoughStock(quantity int) bool {
	return p.Stock >= quantity
}

// StockRequest asks for Quantity units of ProductID to be taken from or
// returned to the shelf.
type StockRequest struct {
	ProductID string
	Quantity  int
}
