package orders

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a frozen snapshot of one product taken when it was put in the
// cart. Later catalog changes never reach it.
type LineItem struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	SellerUsername string          `json:"seller_username"`
	SellerPhone    string          `json:"seller_phone"`
}

func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines is the total of every line.
func SumLines(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}

type Order struct {
	ID              string          `json:"id"`
	Buyer           string          `json:"buyer"`
	Items           []LineItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	BuyerPhone      string          `json:"buyer_phone"`
	CreatedAt       time.Time       `json:"created_at"`
}

// New builds a pending order from a copy of items. The total is computed here
// once and never again.
func New(id, buyer string, items []LineItem, address, payment, buyerPhone string, createdAt time.Time) Order {
	lines := slices.Clone(items)
	return Order{
		ID:              id,
		Buyer:           buyer,
		Items:           lines,
		Total:           SumLines(lines),
		Status:          StatusPending,
		ShippingAddress: address,
		PaymentMethod:   payment,
		BuyerPhone:      buyerPhone,
		CreatedAt:       createdAt,
	}
}

// Clone returns a deep copy so callers never share the Items backing array.
func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (o Order) CanCancel() bool {
	return o.Status.Cancellable()
}

// transition moves o to next when the state machine allows it and reports
// whether anything changed. Illegal moves leave o untouched.
func (o *Order) transition(next Status) bool {
	if !o.Status.CanTransitionTo(next) {
		return false
	}
	o.Status = next
	return true
}

func (o *Order) Pay() bool      { return o.transition(StatusPaid) }
func (o *Order) Ship() bool     { return o.transition(StatusShipped) }
func (o *Order) Complete() bool { return o.transition(StatusCompleted) }
func (o *Order) Cancel() bool   { return o.transition(StatusCancelled) }
