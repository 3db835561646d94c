package catalog

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

// Store is the in-memory catalog. Listing order is insertion order.
type Store struct {
	mu       sync.RWMutex
	products map[string]*Product
	ids      []string
}

func NewStore() *Store {
	return &Store{products: make(map[string]*Product)}
}

// Create inserts p as an active listing.
func (s *Store) Create(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("create %s: %w", p.ID, ErrDuplicateID)
	}
	p.Active = true
	s.products[p.ID] = &p
	s.ids = append(s.ids, p.ID)
	return nil
}

func (s *Store) Find(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("find %s: %w", id, ErrNotFound)
	}
	return *p, nil
}

func (s *Store) ListAll() []Product {
	return s.filter(func(Product) bool { return true })
}

func (s *Store) ListActive() []Product {
	return s.filter(func(p Product) bool { return p.Active })
}

func (s *Store) ListInactive() []Product {
	return s.filter(func(p Product) bool { return !p.Active })
}

// ListByCategory returns active products of the given category.
func (s *Store) ListByCategory(category string) []Product {
	return s.filter(func(p Product) bool { return p.Active && p.Category == category })
}

// ListBySeller returns every listing stamped with seller as seller-of-record.
func (s *Store) ListBySeller(seller string) []Product {
	return s.filter(func(p Product) bool { return p.SellerUsername == seller })
}

func (s *Store) filter(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.ids))
	for _, id := range s.ids {
		p := *s.products[id]
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Search yields active products whose name or description contains keyword
// (case-sensitive). The sequence is lazy: each product is read when the
// consumer asks for it, and no lock is held while yielding.
func (s *Store) Search(keyword string) iter.Seq[Product] {
	return func(yield func(Product) bool) {
		s.mu.RLock()
		ids := make([]string, len(s.ids))
		copy(ids, s.ids)
		s.mu.RUnlock()

		for _, id := range ids {
			p, err := s.Find(id)
			if err != nil {
				// deleted after the walk started
				continue
			}
			if !p.Active {
				continue
			}
			if !strings.Contains(p.Name, keyword) && !strings.Contains(p.Description, keyword) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Update replaces the stored record with p.
func (s *Store) Update(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("update %s: %w", p.ID, ErrNotFound)
	}
	s.products[p.ID] = &p
	return nil
}

func (s *Store) SetActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("set active %s: %w", id, ErrNotFound)
	}
	p.Active = active
	return nil
}

// Delete removes the product. Orders hold frozen line snapshots, so nothing
// else needs to change.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.products, id)
	for i, pid := range s.ids {
		if pid == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Reserve takes every request off the shelf or none of them. Validation and
// decrement happen under one write lock, so two callers can never both pass
// the check against the same stock level. The returned error is a *StockError
// naming the first request that failed.
func (s *Store) Reserve(reqs []StockRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]int, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return fmt.Errorf("reserve %s: quantity must be positive, got %d", r.ProductID, r.Quantity)
		}
		wanted[r.ProductID] += r.Quantity

		p, ok := s.products[r.ProductID]
		if !ok {
			return &StockError{ProductID: r.ProductID, Requested: r.Quantity, Missing: true}
		}
		if !p.HasEnoughStock(wanted[r.ProductID]) {
			return &StockError{ProductID: r.ProductID, Requested: wanted[r.ProductID], Available: p.Stock}
		}
	}

	for _, r := range reqs {
		s.products[r.ProductID].Stock -= r.Quantity
	}
	return nil
}

// Release puts stock back. Products that no longer exist are skipped and
// their ids returned.
func (s *Store) Release(reqs []StockRequest) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var skipped []string
	for _, r := range reqs {
		p, ok := s.products[r.ProductID]
		if !ok {
			skipped = append(skipped, r.ProductID)
			continue
		}
		p.Stock += r.Quantity
	}
	return skipped
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Store) CountActive() int {
	return len(s.ListActive())
}
