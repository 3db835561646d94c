// Package events defines the domain events the shop engine emits after a
// state change has been committed, and the Publisher they are handed to.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicAccountCreated     = "account-created"
	TopicOrderCreated       = "order-created"
	TopicOrderCancelled     = "order-cancelled"
	TopicOrderStatusChanged = "order-status-changed"
	TopicListingToggled     = "listing-toggled"
	TopicComplaintFiled     = "complaint-filed"
	TopicComplaintResolved  = "complaint-resolved"
)

// Publisher delivers an event payload to topic. Implementations marshal the
// payload as JSON.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type LineEvent struct {
	ProductId string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type AccountCreatedEvent struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderCreatedEvent struct {
	OrderId   string          `json:"order_id"`
	Buyer     string          `json:"buyer"`
	Total     decimal.Decimal `json:"total"`
	Items     []LineEvent     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderCancelledEvent struct {
	OrderId   string      `json:"order_id"`
	Buyer     string      `json:"buyer"`
	Restocked []LineEvent `json:"restocked"`
	Skipped   []string    `json:"skipped,omitempty"` // products deleted since the order was placed
	CreatedAt time.Time   `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderId   string    `json:"order_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	By        string    `json:"by"`
	CreatedAt time.Time `json:"created_at"`
}

type ListingToggledEvent struct {
	ProductId string    `json:"product_id"`
	Active    bool      `json:"active"`
	By        string    `json:"by"`
	CreatedAt time.Time `json:"created_at"`
}

type ComplaintEvent struct {
	ComplaintId string    `json:"complaint_id"`
	ProductId   string    `json:"product_id"`
	Status      string    `json:"status"`
	By          string    `json:"by"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogPublisher writes events to the logger instead of a broker. It is what the
// service runs with when no Kafka brokers are configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("event", slog.String("topic", topic), slog.String("key", key), slog.String("data", string(data)))
	return nil
}

// Message is one event captured by a Recorder.
type Message struct {
	Topic   string
	Key     string
	Payload any
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Publish(_ context.Context, topic, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Topics returns the topic of every recorded message in publish order.
func (r *Recorder) Topics() []string {
	msgs := r.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Topic
	}
	return out
}
