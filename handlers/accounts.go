package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/auth"
	"marketplace/internal/shop"
	"marketplace/pkg/ctxmanage"
	"marketplace/pkg/logkey"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.e.Register(c.Request.Context(), shop.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": a})
}

// Login opens a new engine session and returns a token naming it.
func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	s := shop.NewSession()
	a, err := h.e.Login(c.Request.Context(), s, req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	role := auth.RoleUser
	if a.IsAdmin() {
		role = auth.RoleAdmin
	}
	tkn, err := h.k.GenerateToken(s.ID, a.Username, role)
	if err != nil {
		slog.Error("error generating token", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
		return
	}
	h.sessions.Add(s)
	c.JSON(http.StatusOK, gin.H{"token": tkn, "user": a})
}

func (h *Handler) Logout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.e.Logout(c.Request.Context(), s)
	h.sessions.Remove(s.ID)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req profileRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.e.UpdateProfile(c.Request.Context(), s, shop.ProfileUpdate{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
