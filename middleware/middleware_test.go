package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/auth"
	"marketplace/internal/shop"
	"marketplace/pkg/ctxmanage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *auth.Keys, *shop.Sessions) {
	t.Helper()
	k, err := auth.NewKeys("secret", time.Hour)
	require.NoError(t, err)
	sessions := shop.NewSessions(time.Hour)
	m, err := NewMid(k, sessions)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Logger())
	r.Use(m.Authentication())
	r.GET("/user", m.Authorize(func(c *gin.Context) {
		claims := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		c.JSON(http.StatusOK, gin.H{"user": claims.Subject, "trace": ctxmanage.GetTraceId(c.Request.Context())})
	}, auth.RoleUser))
	r.GET("/admin", m.Authorize(func(c *gin.Context) { c.Status(http.StatusNoContent) }, auth.RoleAdmin))
	return r, k, sessions
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewMid_RequiresDeps(t *testing.T) {
	_, err := NewMid(nil, shop.NewSessions(time.Hour))
	assert.Error(t, err)
}

func TestAuthentication(t *testing.T) {
	r, k, _ := setup(t)

	w := do(r, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))

	w = do(r, "/user", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tkn, err := k.GenerateToken("no-such-session", "alice", auth.RoleUser)
	require.NoError(t, err)
	w = do(r, "/user", tkn)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token for an unknown session")
}

func TestAuthorize(t *testing.T) {
	r, k, sessions := setup(t)
	stores := shop.NewStores()
	e, err := shop.New(stores)
	require.NoError(t, err)
	_, err = e.Register(context.Background(), shop.RegisterRequest{Username: "alice", Password: "secret1", Phone: "13800000001"})
	require.NoError(t, err)
	s := shop.NewSession()
	_, err = e.Login(context.Background(), s, "alice", "secret1")
	require.NoError(t, err)
	sessions.Add(s)

	tkn, err := k.GenerateToken(s.ID, "alice", auth.RoleUser)
	require.NoError(t, err)

	w := do(r, "/user", tkn)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"alice"`)

	w = do(r, "/admin", tkn)
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.Logout(context.Background(), s)
	w = do(r, "/user", tkn)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logged-out session")
}
