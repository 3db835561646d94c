package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/records"
)

func (h *Handler) AdminListAll(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ps, err := h.e.AdminListAll(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *Handler) AdminListInactive(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ps, err := h.e.AdminListInactive(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *Handler) adminSetListing(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		p, err := h.e.AdminSetListingActive(c.Request.Context(), s, c.Param("id"), active)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func (h *Handler) AdminDeleteProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.e.AdminDeleteProduct(c.Request.Context(), s, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminStatistics(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := h.e.AdminStatistics(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AdminExport streams the marketplace snapshot as plain text.
func (h *Handler) AdminExport(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := h.e.AdminSnapshot(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := records.WriteSnapshot(c.Writer, snap); err != nil {
		_ = c.Error(err)
	}
}
