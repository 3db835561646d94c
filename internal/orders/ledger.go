package orders

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Ledger keeps orders in placement order.
type Ledger struct {
	mu     sync.RWMutex
	orders []Order
	index  map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// Append stores o. Ids are generated by the caller and assumed unique.
func (l *Ledger) Append(o Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.index[o.ID] = len(l.orders)
	l.orders = append(l.orders, o.Clone())
}

func (l *Ledger) Find(id string) (Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return Order{}, fmt.Errorf("find %s: %w", id, ErrNotFound)
	}
	return l.orders[i].Clone(), nil
}

func (l *Ledger) FindByBuyer(username string) []Order {
	return l.filter(func(o Order) bool { return o.Buyer == username })
}

func (l *Ledger) All() []Order {
	return l.filter(func(Order) bool { return true })
}

func (l *Ledger) filter(keep func(Order) bool) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range l.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Replace overwrites the stored order with the same id.
func (l *Ledger) Replace(o Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[o.ID]
	if !ok {
		return fmt.Errorf("replace %s: %w", o.ID, ErrNotFound)
	}
	l.orders[i] = o.Clone()
	return nil
}

// Modify runs fn against a copy of the order and stores the result when fn
// returns nil. The read, fn and the write happen under one lock, so two
// callers racing on the same order see each other's result.
func (l *Ledger) Modify(id string, fn func(*Order) error) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return Order{}, fmt.Errorf("modify %s: %w", id, ErrNotFound)
	}
	o := l.orders[i].Clone()
	if err := fn(&o); err != nil {
		return Order{}, err
	}
	l.orders[i] = o.Clone()
	return o, nil
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

// TotalSales sums the totals of shipped and completed orders.
func (l *Ledger) TotalSales() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, o := range l.orders {
		if o.Status.CountsAsSale() {
			total = total.Add(o.Total)
		}
	}
	return total
}
