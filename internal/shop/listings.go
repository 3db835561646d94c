package shop

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/shopspring/decimal"

	"marketplace/internal/accounts"
	"marketplace/internal/catalog"
	"marketplace/internal/events"
	"marketplace/pkg/logkey"
)

type ListingRequest struct {
	ID          string
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Description string
}

func validateListing(r ListingRequest) error {
	switch {
	case r.ID == "" || r.Name == "" || r.Category == "":
		return newError(KindValidation, ErrMsgListingFields)
	case !r.Price.IsPositive():
		return newError(KindValidation, ErrMsgPriceNotPositive)
	case r.Stock < 0:
		return newError(KindValidation, ErrMsgStockNegative)
	}
	return nil
}

// ListProduct creates an active listing owned by the logged-in account.
func (e *Engine) ListProduct(_ context.Context, s *Session, r ListingRequest) (catalog.Product, error) {
	p, err := e.listProduct(s, r)
	e.observe("list_product", err)
	return p, err
}

func (e *Engine) listProduct(s *Session, r ListingRequest) (catalog.Product, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := validateListing(r); err != nil {
		return catalog.Product{}, err
	}

	p := catalog.Product{
		ID:             r.ID,
		Name:           r.Name,
		Category:       r.Category,
		Price:          r.Price,
		Stock:          r.Stock,
		Description:    r.Description,
		SellerUsername: me.Username,
		SellerPhone:    me.Phone,
	}
	if err := e.catalog.Create(p); err != nil {
		if errors.Is(err, catalog.ErrDuplicateID) {
			return catalog.Product{}, wrapError(KindDuplicateID, err, "id already exists")
		}
		return catalog.Product{}, err
	}
	p.Active = true

	e.logger.Info("product listed", slog.String(logkey.ProductID, p.ID), slog.String(logkey.Username, me.Username))
	return p, nil
}

// SetMyListingActive toggles a listing the caller sells. Admins may toggle
// any listing through it too.
func (e *Engine) SetMyListingActive(ctx context.Context, s *Session, productID string, active bool) (catalog.Product, error) {
	p, err := e.setListingActive(ctx, s, productID, active, false)
	e.observe("set_listing_active", err)
	return p, err
}

// AdminSetListingActive toggles any listing and requires the admin role.
func (e *Engine) AdminSetListingActive(ctx context.Context, s *Session, productID string, active bool) (catalog.Product, error) {
	p, err := e.setListingActive(ctx, s, productID, active, true)
	e.observe("admin_set_listing_active", err)
	return p, err
}

func (e *Engine) setListingActive(ctx context.Context, s *Session, productID string, active, adminOnly bool) (catalog.Product, error) {
	unlock := lock(s)
	var (
		me  accounts.Account
		err error
	)
	if adminOnly {
		me, err = requireAdmin(s)
	} else {
		me, err = requireLogin(s)
	}
	unlock()
	if err != nil {
		return catalog.Product{}, err
	}

	p, err := e.catalog.Find(productID)
	if err != nil {
		return catalog.Product{}, productNotFound(productID, err)
	}
	if !adminOnly && p.SellerUsername != me.Username && !me.IsAdmin() {
		return catalog.Product{}, newError(KindForbidden, "you can only change your own listings")
	}
	if err := e.catalog.SetActive(productID, active); err != nil {
		return catalog.Product{}, productNotFound(productID, err)
	}
	p.Active = active

	e.logger.Info("listing toggled", slog.String(logkey.ProductID, productID), slog.Bool("active", active),
		slog.String(logkey.Username, me.Username))
	e.publish(ctx, events.TopicListingToggled, productID, events.ListingToggledEvent{
		ProductId: productID,
		Active:    active,
		By:        me.Username,
		CreatedAt: e.now(),
	})
	return p, nil
}

// Browse lists active products in catalog order.
func (e *Engine) Browse(context.Context) []catalog.Product {
	return e.catalog.ListActive()
}

func (e *Engine) BrowseCategory(_ context.Context, category string) []catalog.Product {
	return e.catalog.ListByCategory(category)
}

// Search yields active products whose name or description contains keyword.
// The match is case-sensitive and the sequence is evaluated lazily.
func (e *Engine) Search(_ context.Context, keyword string) iter.Seq[catalog.Product] {
	return e.catalog.Search(keyword)
}

// GetProduct returns any product, listed or not.
func (e *Engine) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, err := e.catalog.Find(id)
	if err != nil {
		return catalog.Product{}, productNotFound(id, err)
	}
	return p, nil
}

func (e *Engine) MyProducts(_ context.Context, s *Session) ([]catalog.Product, error) {
	defer lock(s)()
	me, err := requireLogin(s)
	if err != nil {
		return nil, err
	}
	return e.catalog.ListBySeller(me.Username), nil
}

func (e *Engine) AdminListAll(_ context.Context, s *Session) ([]catalog.Product, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return nil, err
	}
	return e.catalog.ListAll(), nil
}

func (e *Engine) AdminListInactive(_ context.Context, s *Session) ([]catalog.Product, error) {
	defer lock(s)()
	if _, err := requireAdmin(s); err != nil {
		return nil, err
	}
	return e.catalog.ListInactive(), nil
}

// AdminDeleteProduct removes a listing. Orders that reference it keep their
// frozen lines; cancelling one of them later skips the restock for it.
func (e *Engine) AdminDeleteProduct(_ context.Context, s *Session, id string) error {
	err := e.adminDeleteProduct(s, id)
	e.observe("admin_delete_product", err)
	return err
}

func (e *Engine) adminDeleteProduct(s *Session, id string) error {
	unlock := lock(s)
	me, err := requireAdmin(s)
	unlock()
	if err != nil {
		return err
	}
	if err := e.catalog.Delete(id); err != nil {
		return productNotFound(id, err)
	}
	e.logger.Info("product deleted", slog.String(logkey.ProductID, id), slog.String(logkey.Username, me.Username))
	return nil
}

func productNotFound(id string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: "product " + id + " not found", ProductID: id, Err: err}
}
