package complaints

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Processed() bool {
	return s == StatusResolved || s == StatusClosed
}

var ErrNotFound = errors.New("complaint not found")

// Complaint is a buyer's report against a product, answered by an admin.
type Complaint struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Complainant string    `json:"complainant"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Status      Status    `json:"status"`
	Response    string    `json:"response,omitempty"`
	RespondedAt time.Time `json:"responded_at,omitempty"`
	AdminUser   string    `json:"admin_user,omitempty"`
}

// Resolve records the admin's answer.
func (c *Complaint) Resolve(response, admin string, at time.Time) {
	c.Response = response
	c.AdminUser = admin
	c.RespondedAt = at
	c.Status = StatusResolved
}

type Store struct {
	mu         sync.RWMutex
	complaints []Complaint
	index      map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) Append(c Complaint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[c.ID] = len(s.complaints)
	s.complaints = append(s.complaints, c)
}

func (s *Store) Find(id string) (Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Complaint{}, fmt.Errorf("find %s: %w", id, ErrNotFound)
	}
	return s.complaints[i], nil
}

func (s *Store) All() []Complaint {
	return s.filter(func(Complaint) bool { return true })
}

func (s *Store) ByComplainant(username string) []Complaint {
	return s.filter(func(c Complaint) bool { return c.Complainant == username })
}

func (s *Store) filter(keep func(Complaint) bool) []Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Complaint, 0)
	for _, c := range s.complaints {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Modify applies fn to the stored complaint under the write lock.
func (s *Store) Modify(id string, fn func(*Complaint) error) (Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Complaint{}, fmt.Errorf("modify %s: %w", id, ErrNotFound)
	}
	c := s.complaints[i]
	if err := fn(&c); err != nil {
		return Complaint{}, err
	}
	s.complaints[i] = c
	return c, nil
}
