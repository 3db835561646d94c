package shop

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace/internal/accounts"
	"marketplace/internal/orders"
)

// Session is one client's state: who is logged in and what is in their cart.
// It is passed explicitly into every engine call; the engine itself holds no
// per-user state. Engine calls on the same session are serialized by mu.
type Session struct {
	ID string

	mu       sync.Mutex
	account  accounts.Account
	loggedIn bool
	cart     []orders.LineItem
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Account returns a snapshot of the logged-in account.
func (s *Session) Account() (accounts.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.loggedIn
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// CartItems returns a copy of the cart lines.
func (s *Session) CartItems() []orders.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// login and reset expect mu to be held.
func (s *Session) login(a accounts.Account) {
	s.account = a
	s.loggedIn = true
	s.cart = nil
}

func (s *Session) reset() {
	s.account = accounts.Account{}
	s.loggedIn = false
	s.cart = nil
}

// CartView is the cart as shown to its owner.
type CartView struct {
	Items []orders.LineItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

// Sessions indexes live sessions by id for callers that hand out session
// tokens, such as the HTTP layer. A session expires ttl after it was added,
// matching the lifetime of the token that carries its id; a ttl <= 0 keeps
// sessions until Remove.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	session *Session
	expires time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, now: time.Now, sessions: make(map[string]sessionEntry)}
}

func (r *Sessions) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := sessionEntry{session: s}
	if r.ttl > 0 {
		entry.expires = r.now().Add(r.ttl)
	}
	r.sessions[s.ID] = entry
}

// Get returns the live session with id. An expired session is dropped.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if entry.expired(r.now()) {
		delete(r.sessions, id)
		return nil, false
	}
	return entry.session, true
}

func (r *Sessions) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops every expired session and reports how many it dropped.
func (r *Sessions) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var n int
	for id, entry := range r.sessions {
		if entry.expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Sessions) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("expired sessions dropped", slog.Int("count", n))
			}
		}
	}
}

func (e sessionEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
