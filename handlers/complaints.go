package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/shop"
)

type complaintRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type"`
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

type resolveRequest struct {
	Response string `json:"response" validate:"required"`
}

func (h *Handler) FileComplaint(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req complaintRequest
	if !h.bind(c, &req) {
		return
	}
	cm, err := h.e.FileComplaint(c.Request.Context(), s, shop.ComplaintRequest{
		ProductID: req.ProductID,
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *Handler) MyComplaints(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cs, err := h.e.MyComplaints(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) AdminListComplaints(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cs, err := h.e.AdminListComplaints(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) AdminResolveComplaint(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req resolveRequest
	if !h.bind(c, &req) {
		return
	}
	cm, err := h.e.AdminResolveComplaint(c.Request.Context(), s, c.Param("id"), req.Response)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}
