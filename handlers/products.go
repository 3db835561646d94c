package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace/internal/catalog"
	"marketplace/internal/shop"
)

type listingRequest struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
}

type searchQuery struct {
	Q string `form:"q" validate:"required"`
}

func (h *Handler) Browse(c *gin.Context) {
	c.JSON(http.StatusOK, h.e.Browse(c.Request.Context()))
}

func (h *Handler) BrowseCategory(c *gin.Context) {
	c.JSON(http.StatusOK, h.e.BrowseCategory(c.Request.Context(), c.Param("category")))
}

func (h *Handler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	if err := h.validate.Struct(q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	found := slices.Collect(h.e.Search(c.Request.Context(), q.Q))
	if found == nil {
		found = []catalog.Product{}
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.e.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req listingRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.e.ListProduct(c.Request.Context(), s, shop.ListingRequest{
		ID:          req.ID,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) MyProducts(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ps, err := h.e.MyProducts(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *Handler) setMyListing(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		p, err := h.e.SetMyListingActive(c.Request.Context(), s, c.Param("id"), active)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
