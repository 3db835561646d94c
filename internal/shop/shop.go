// Package shop is the inventory and order engine. It turns carts into orders,
// keeps product stock consistent across placement and cancellation, and gates
// seller and admin operations. All state lives in the stores it is given and
// in the Session passed into each call.
package shop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/accounts"
	"marketplace/internal/catalog"
	"marketplace/internal/complaints"
	"marketplace/internal/events"
	"marketplace/internal/metrics"
	"marketplace/internal/orders"
	"marketplace/pkg/logkey"
)

// Stores groups the data components the engine orchestrates.
type Stores struct {
	Catalog    *catalog.Store
	Accounts   *accounts.Store
	Orders     *orders.Ledger
	Complaints *complaints.Store
}

// NewStores returns empty in-memory stores.
func NewStores() Stores {
	return Stores{
		Catalog:    catalog.NewStore(),
		Accounts:   accounts.NewStore(),
		Orders:     orders.NewLedger(),
		Complaints: complaints.NewStore(),
	}
}

type Engine struct {
	catalog    *catalog.Store
	accounts   *accounts.Store
	ledger     *orders.Ledger
	complaints *complaints.Store

	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func(prefix string) string
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how order and complaint ids are minted.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(e *Engine) { e.newID = fn }
}

func New(stores Stores, opts ...Option) (*Engine, error) {
	if stores.Catalog == nil || stores.Accounts == nil || stores.Orders == nil || stores.Complaints == nil {
		return nil, fmt.Errorf("shop: all stores are required")
	}
	e := &Engine{
		catalog:    stores.Catalog,
		accounts:   stores.Accounts,
		ledger:     stores.Orders,
		complaints: stores.Complaints,
		logger:     slog.Default(),
		now:        time.Now,
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.publisher == nil {
		e.publisher = events.LogPublisher{Logger: e.logger}
	}
	return e, nil
}

// observe records the outcome of an engine operation.
func (e *Engine) observe(op string, err error) {
	if err == nil {
		metrics.RecordOperation(op, "ok")
		return
	}
	metrics.RecordOperation(op, KindOf(err).String())
}

// publish hands an event to the publisher once the change it describes is
// committed. A failed publish is logged; the change stands.
func (e *Engine) publish(ctx context.Context, topic, key string, payload any) {
	if err := e.publisher.Publish(ctx, topic, key, payload); err != nil {
		e.logger.Error("failed to publish event", slog.String("topic", topic), slog.String("key", key),
			slog.String(logkey.ERROR, err.Error()))
	}
}

// requireLogin expects s.mu to be held.
func requireLogin(s *Session) (accounts.Account, error) {
	if s == nil || !s.loggedIn {
		return accounts.Account{}, newError(KindUnauthenticated, ErrMsgLoginRequired)
	}
	return s.account, nil
}

// requireAdmin expects s.mu to be held.
func requireAdmin(s *Session) (accounts.Account, error) {
	a, err := requireLogin(s)
	if err != nil {
		return a, err
	}
	if !a.IsAdmin() {
		return a, newError(KindForbidden, ErrMsgAdminRequired)
	}
	return a, nil
}

// lock takes the session lock, tolerating a nil session so that the
// login check can report it.
func lock(s *Session) func() {
	if s == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
