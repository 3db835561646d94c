package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"marketplace/internal/auth"
	"marketplace/internal/metrics"
	"marketplace/internal/shop"
	"marketplace/middleware"
	"marketplace/pkg/ctxmanage"
	"marketplace/pkg/logkey"
)

type Handler struct {
	e        *shop.Engine
	sessions *shop.Sessions
	k        *auth.Keys
	validate *validator.Validate
}

func NewHandler(e *shop.Engine, sessions *shop.Sessions, k *auth.Keys) *Handler {
	return &Handler{
		e:        e,
		sessions: sessions,
		k:        k,
		validate: validator.New(),
	}
}

func API(endpointPrefix, mode string, e *shop.Engine, sessions *shop.Sessions, k *auth.Keys) (*gin.Engine, error) {
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else if mode == gin.TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()

	m, err := middleware.NewMid(k, sessions)
	if err != nil {
		return nil, err
	}
	h := NewHandler(e, sessions, k)

	r.Use(middleware.Logger(), metrics.Middleware(), gin.Recovery())
	r.GET("/ping", healthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		v1.GET("/products", h.Browse)
		v1.GET("/products/search", h.Search)
		v1.GET("/products/category/:category", h.BrowseCategory)
		v1.GET("/products/:id", h.GetProduct)

		v1.Use(m.Authentication())
		v1.POST("/logout", m.Authorize(h.Logout, auth.RoleUser))
		v1.PUT("/profile", m.Authorize(h.UpdateProfile, auth.RoleUser))

		v1.POST("/products", m.Authorize(h.ListProduct, auth.RoleUser))
		v1.GET("/products/mine", m.Authorize(h.MyProducts, auth.RoleUser))
		v1.POST("/products/:id/activate", m.Authorize(h.setMyListing(true), auth.RoleUser))
		v1.POST("/products/:id/deactivate", m.Authorize(h.setMyListing(false), auth.RoleUser))

		v1.POST("/cart/items", m.Authorize(h.AddToCart, auth.RoleUser))
		v1.GET("/cart", m.Authorize(h.ViewCart, auth.RoleUser))
		v1.DELETE("/cart", m.Authorize(h.ClearCart, auth.RoleUser))

		v1.POST("/orders", m.Authorize(h.CreateOrder, auth.RoleUser))
		v1.GET("/orders", m.Authorize(h.MyOrders, auth.RoleUser))
		v1.POST("/orders/:id/cancel", m.Authorize(h.CancelOrder, auth.RoleUser))
		v1.POST("/orders/:id/pay", m.Authorize(h.PayOrder, auth.RoleUser))

		v1.POST("/complaints", m.Authorize(h.FileComplaint, auth.RoleUser))
		v1.GET("/complaints/mine", m.Authorize(h.MyComplaints, auth.RoleUser))

		admin := v1.Group("/admin")
		admin.GET("/products", m.Authorize(h.AdminListAll, auth.RoleAdmin))
		admin.GET("/products/inactive", m.Authorize(h.AdminListInactive, auth.RoleAdmin))
		admin.POST("/products/:id/activate", m.Authorize(h.adminSetListing(true), auth.RoleAdmin))
		admin.POST("/products/:id/deactivate", m.Authorize(h.adminSetListing(false), auth.RoleAdmin))
		admin.DELETE("/products/:id", m.Authorize(h.AdminDeleteProduct, auth.RoleAdmin))
		admin.GET("/orders", m.Authorize(h.AdminListOrders, auth.RoleAdmin))
		admin.POST("/orders/:id/pay", m.Authorize(h.adminTransition(h.e.AdminPayOrder), auth.RoleAdmin))
		admin.POST("/orders/:id/ship", m.Authorize(h.adminTransition(h.e.AdminShipOrder), auth.RoleAdmin))
		admin.POST("/orders/:id/complete", m.Authorize(h.adminTransition(h.e.AdminCompleteOrder), auth.RoleAdmin))
		admin.GET("/statistics", m.Authorize(h.AdminStatistics, auth.RoleAdmin))
		admin.GET("/export", m.Authorize(h.AdminExport, auth.RoleAdmin))
		admin.GET("/complaints", m.Authorize(h.AdminListComplaints, auth.RoleAdmin))
		admin.POST("/complaints/:id/resolve", m.Authorize(h.AdminResolveComplaint, auth.RoleAdmin))
	}

	return r, nil
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	slog.Debug("healthCheck handler", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// session resolves the engine session behind the request's token. It aborts
// the request and returns false when there is none.
func (h *Handler) session(c *gin.Context) (*shop.Session, bool) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return nil, false
	}
	s, ok := h.sessions.Get(claims.ID)
	if !ok {
		slog.Error("session not found", slog.String(logkey.TraceID, traceId), slog.String(logkey.SessionID, claims.ID))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return nil, false
	}
	return s, true
}

// bind decodes the JSON body into req and validates it.
func (h *Handler) bind(c *gin.Context, req any) bool {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("request validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func statusOf(kind shop.Kind) int {
	switch kind {
	case shop.KindValidation:
		return http.StatusBadRequest
	case shop.KindUnauthenticated, shop.KindInvalidCredentials:
		return http.StatusUnauthorized
	case shop.KindForbidden, shop.KindSelfPurchaseForbidden:
		return http.StatusForbidden
	case shop.KindNotFound:
		return http.StatusNotFound
	case shop.KindDuplicateID, shop.KindInvalidState, shop.KindInsufficientStock:
		return http.StatusConflict
	case shop.KindUnlisted, shop.KindEmptyCart:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes an engine error as JSON with the status its kind maps to.
func fail(c *gin.Context, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	slog.Error("request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))

	var se *shop.Error
	if !errors.As(err, &se) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
		return
	}
	body := gin.H{"error": se.Error(), "kind": se.Kind.String()}
	if se.ProductID != "" {
		body["product_id"] = se.ProductID
	}
	if se.Kind == shop.KindInsufficientStock {
		body["available"] = se.Available
	}
	c.AbortWithStatusJSON(statusOf(se.Kind), body)
}
