package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/orders"
	"marketplace/internal/shop"
)

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required"`
}

func (h *Handler) AddToCart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req addToCartRequest
	if !h.bind(c, &req) {
		return
	}
	v, err := h.e.AddToCart(c.Request.Context(), s, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ViewCart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.e.ViewCart(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ClearCart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.e.ClearCart(c.Request.Context(), s); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.e.CreateOrder(c.Request.Context(), s, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) MyOrders(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	list, err := h.e.MyOrders(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	h.orderAction(c, h.e.CancelOrder)
}

func (h *Handler) PayOrder(c *gin.Context) {
	h.orderAction(c, h.e.PayOrder)
}

type orderOp func(ctx context.Context, s *shop.Session, orderID string) (orders.Order, error)

func (h *Handler) orderAction(c *gin.Context, op orderOp) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	o, err := op(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) adminTransition(op orderOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.orderAction(c, op)
	}
}

func (h *Handler) AdminListOrders(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	list, err := h.e.AdminListOrders(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
