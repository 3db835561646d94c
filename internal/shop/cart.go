package shop

import (
	"context"
	"slices"

	"marketplace/internal/orders"
)

// AddToCart puts quantity units of a product into the session cart, merging
// with an existing line for the same product. Stock is checked against the
// merged quantity but not reserved; CreateOrder checks it again.
func (e *Engine) AddToCart(_ context.Context, s *Session, productID string, quantity int) (CartView, error) {
	v, err := e.addToCart(s, productID, quantity)
	e.observe("add_to_cart", err)
	return v, err
}

func (e *Engine) addToCart(s *Session, productID string, quantity int) (CartView, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return CartView{}, err
	}

	p, err := e.catalog.Find(productID)
	if err != nil {
		return CartView{}, productNotFound(productID, err)
	}
	if !p.Active {
		return CartView{}, &Error{Kind: KindUnlisted, Message: "product " + p.ID + " is not listed", ProductID: p.ID}
	}
	if p.SellerUsername == me.Username {
		return CartView{}, &Error{Kind: KindSelfPurchaseForbidden, Message: "you cannot buy your own product", ProductID: p.ID}
	}
	if quantity <= 0 {
		return CartView{}, newError(KindValidation, ErrMsgQuantityPositive)
	}

	i := slices.IndexFunc(s.cart, func(it orders.LineItem) bool { return it.ProductID == productID })
	requested := quantity
	if i >= 0 {
		requested += s.cart[i].Quantity
	}
	if !p.HasEnoughStock(requested) {
		return CartView{}, &Error{
			Kind:      KindInsufficientStock,
			Message:   insufficientStockMessage(p.ID, requested, p.Stock),
			ProductID: p.ID,
			Available: p.Stock,
		}
	}

	if i >= 0 {
		s.cart[i].Quantity = requested
	} else {
		s.cart = append(s.cart, orders.LineItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       quantity,
			Price:          p.Price,
			SellerUsername: p.SellerUsername,
			SellerPhone:    p.SellerPhone,
		})
	}
	return cartView(s.cart), nil
}

func (e *Engine) ViewCart(_ context.Context, s *Session) (CartView, error) {
	defer lock(s)()
	if _, err := requireLogin(s); err != nil {
		return CartView{}, err
	}
	return cartView(s.cart), nil
}

func (e *Engine) ClearCart(_ context.Context, s *Session) error {
	defer lock(s)()
	if _, err := requireLogin(s); err != nil {
		return err
	}
	s.cart = nil
	return nil
}

func cartView(items []orders.LineItem) CartView {
	lines := slices.Clone(items)
	if lines == nil {
		lines = []orders.LineItem{}
	}
	return CartView{Items: lines, Total: orders.SumLines(lines)}
}
