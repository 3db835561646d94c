package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"marketplace/internal/catalog"
	"marketplace/internal/events"
	"marketplace/internal/metrics"
	"marketplace/internal/orders"
	"marketplace/pkg/logkey"
)

func insufficientStockMessage(productID string, requested, available int) string {
	return fmt.Sprintf("product %s: insufficient stock: requested %d, available %d", productID, requested, available)
}

func stockRequests(items []orders.LineItem) []catalog.StockRequest {
	reqs := make([]catalog.StockRequest, len(items))
	for i, it := range items {
		reqs[i] = catalog.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return reqs
}

func lineEvents(items []orders.LineItem) []events.LineEvent {
	out := make([]events.LineEvent, len(items))
	for i, it := range items {
		out[i] = events.LineEvent{ProductId: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

// CreateOrder turns the session cart into a pending order. Every line is
// checked and taken off the shelf in one step: either all stock is reserved
// and the order recorded, or nothing changes and the first failing product is
// reported.
func (e *Engine) CreateOrder(ctx context.Context, s *Session, address, paymentMethod string) (orders.Order, error) {
	o, err := e.createOrder(ctx, s, address, paymentMethod)
	e.observe("create_order", err)
	return o, err
}

func (e *Engine) createOrder(ctx context.Context, s *Session, address, paymentMethod string) (orders.Order, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return orders.Order{}, err
	}
	if len(s.cart) == 0 {
		return orders.Order{}, newError(KindEmptyCart, ErrMsgCartEmpty)
	}

	if err := e.catalog.Reserve(stockRequests(s.cart)); err != nil {
		var se *catalog.StockError
		if !errors.As(err, &se) {
			return orders.Order{}, wrapError(KindValidation, err, "reserve stock: %v", err)
		}
		if se.Missing {
			return orders.Order{}, productNotFound(se.ProductID, err)
		}
		return orders.Order{}, &Error{
			Kind:      KindInsufficientStock,
			Message:   insufficientStockMessage(se.ProductID, se.Requested, se.Available),
			ProductID: se.ProductID,
			Available: se.Available,
			Err:       err,
		}
	}

	o := orders.New(e.newID("ORD"), me.Username, s.cart, address, paymentMethod, me.Phone, e.now())
	e.ledger.Append(o)
	s.cart = nil

	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	metrics.RecordReserved(units)

	e.logger.Info("order created", slog.String(logkey.OrderID, o.ID), slog.String(logkey.Username, me.Username),
		slog.String("total", o.Total.StringFixed(2)), slog.Int("items", len(o.Items)))
	e.publish(ctx, events.TopicOrderCreated, o.ID, events.OrderCreatedEvent{
		OrderId:   o.ID,
		Buyer:     o.Buyer,
		Total:     o.Total,
		Items:     lineEvents(o.Items),
		CreatedAt: o.CreatedAt,
	})
	return o, nil
}

// MyOrders returns the caller's orders in placement order.
func (e *Engine) MyOrders(_ context.Context, s *Session) ([]orders.Order, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return nil, err
	}
	return e.ledger.FindByBuyer(me.Username), nil
}

// CancelOrder cancels one of the caller's pending or paid orders and puts its
// stock back. Lines whose product has since been deleted are skipped.
func (e *Engine) CancelOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	o, err := e.cancelOrder(ctx, s, orderID)
	e.observe("cancel_order", err)
	return o, err
}

func (e *Engine) cancelOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	unlock := lock(s)
	me, err := requireLogin(s)
	unlock()
	if err != nil {
		return orders.Order{}, err
	}

	// The status flips under the ledger lock, so of two racing cancels only
	// one gets to restock.
	o, err := e.ledger.Modify(orderID, func(o *orders.Order) error {
		if o.Buyer != me.Username {
			return newError(KindForbidden, "order %s does not belong to you", o.ID)
		}
		if !o.Cancel() {
			return newError(KindInvalidState, "order %s is %s and cannot be cancelled", o.ID, o.Status)
		}
		return nil
	})
	if err != nil {
		return orders.Order{}, orderError(orderID, err)
	}

	skipped := e.catalog.Release(stockRequests(o.Items))
	restocked := make([]events.LineEvent, 0, len(o.Items))
	units := 0
	for _, it := range o.Items {
		if slices.Contains(skipped, it.ProductID) {
			continue
		}
		restocked = append(restocked, events.LineEvent{ProductId: it.ProductID, Quantity: it.Quantity})
		units += it.Quantity
	}
	metrics.RecordRestocked(units)

	for _, id := range skipped {
		e.logger.Warn("restock skipped, product no longer exists", slog.String(logkey.OrderID, o.ID),
			slog.String(logkey.ProductID, id))
	}
	e.logger.Info("order cancelled", slog.String(logkey.OrderID, o.ID), slog.String(logkey.Username, me.Username))
	e.publish(ctx, events.TopicOrderCancelled, o.ID, events.OrderCancelledEvent{
		OrderId:   o.ID,
		Buyer:     o.Buyer,
		Restocked: restocked,
		Skipped:   skipped,
		CreatedAt: e.now(),
	})
	return o, nil
}

// PayOrder marks one of the caller's orders paid. Paying an order that is not
// pending changes nothing and is not an error.
func (e *Engine) PayOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	o, err := e.transition(ctx, s, orderID, (*orders.Order).Pay, false)
	e.observe("pay_order", err)
	return o, err
}

func (e *Engine) AdminPayOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	o, err := e.transition(ctx, s, orderID, (*orders.Order).Pay, true)
	e.observe("admin_pay_order", err)
	return o, err
}

func (e *Engine) AdminShipOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	o, err := e.transition(ctx, s, orderID, (*orders.Order).Ship, true)
	e.observe("admin_ship_order", err)
	return o, err
}

func (e *Engine) AdminCompleteOrder(ctx context.Context, s *Session, orderID string) (orders.Order, error) {
	o, err := e.transition(ctx, s, orderID, (*orders.Order).Complete, true)
	e.observe("admin_complete_order", err)
	return o, err
}

// transition applies step to the order. Illegal moves leave the order as it
// is and return it without error.
func (e *Engine) transition(ctx context.Context, s *Session, orderID string, step func(*orders.Order) bool, admin bool) (orders.Order, error) {
	unlock := lock(s)
	me, err := requireLogin(s)
	if err == nil && admin {
		me, err = requireAdmin(s)
	}
	unlock()
	if err != nil {
		return orders.Order{}, err
	}

	var (
		from    orders.Status
		changed bool
	)
	o, err := e.ledger.Modify(orderID, func(o *orders.Order) error {
		if !admin && o.Buyer != me.Username {
			return newError(KindForbidden, "order %s does not belong to you", o.ID)
		}
		from = o.Status
		changed = step(o)
		return nil
	})
	if err != nil {
		return orders.Order{}, orderError(orderID, err)
	}
	if !changed {
		return o, nil
	}

	e.logger.Info("order status changed", slog.String(logkey.OrderID, o.ID), slog.String("from", string(from)),
		slog.String("to", string(o.Status)), slog.String(logkey.Username, me.Username))
	e.publish(ctx, events.TopicOrderStatusChanged, o.ID, events.OrderStatusChangedEvent{
		OrderId:   o.ID,
		From:      string(from),
		To:        string(o.Status),
		By:        me.Username,
		CreatedAt: e.now(),
	})
	return o, nil
}

func (e *Engine) AdminListOrders(_ context.Context, s *Session) ([]orders.Order, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return nil, err
	}
	return e.ledger.All(), nil
}

func orderError(orderID string, err error) error {
	if errors.Is(err, orders.ErrNotFound) {
		return wrapError(KindNotFound, err, "order %s not found", orderID)
	}
	return err
}
