package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/auth"
	"marketplace/internal/catalog"
	"marketplace/internal/events"
	"marketplace/internal/orders"
	"marketplace/internal/records"
	"marketplace/internal/shop"
)

type testServer struct {
	r        *gin.Engine
	e        *shop.Engine
	sessions *shop.Sessions
	recorder *events.Recorder
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	rec := &events.Recorder{}
	e, err := shop.New(shop.NewStores(),
		shop.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		shop.WithPublisher(rec),
	)
	require.NoError(t, err)
	_, err = e.RegisterAdmin(context.Background(), shop.RegisterRequest{Username: "admin", Password: "admin123", Phone: "13800000000"})
	require.NoError(t, err)

	k, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	sessions := shop.NewSessions(time.Hour)
	r, err := API("/v1", gin.TestMode, e, sessions, k)
	require.NoError(t, err)
	return &testServer{r: r, e: e, sessions: sessions, recorder: rec}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, username, phone string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/register", "", gin.H{"username": username, "password": "secret1", "phone": phone})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(t, username, "secret1")
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
}

func TestPing(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/ping", "", nil)
	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "marketplace_http_requests_total")
}

func TestOrderFlow(t *testing.T) {
	s := newServer(t)
	bob := s.register(t, "bob", "13800000002")
	alice := s.register(t, "alice", "13800000001")

	w := s.do(t, http.MethodPost, "/v1/products", bob, gin.H{
		"id": "P1", "name": "iPhone", "category": "phones", "price": "10.00", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[catalog.Product](t, w)
	assert.Equal(t, "bob", p.SellerUsername)

	w = s.do(t, http.MethodPost, "/v1/cart/items", alice, gin.H{"product_id": "P1", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[shop.CartView](t, w)
	assert.True(t, decimal.NewFromInt(30).Equal(cart.Total))

	w = s.do(t, http.MethodPost, "/v1/orders", alice, gin.H{"shipping_address": "Road 1", "payment_method": "card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[orders.Order](t, w)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.True(t, decimal.NewFromInt(30).Equal(o.Total))

	w = s.do(t, http.MethodGet, "/v1/products/P1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[catalog.Product](t, w).Stock)

	w = s.do(t, http.MethodGet, "/v1/orders", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]orders.Order](t, w), 1)

	w = s.do(t, http.MethodPost, "/v1/orders/"+o.ID+"/cancel", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/v1/orders/"+o.ID+"/cancel", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, orders.StatusCancelled, decode[orders.Order](t, w).Status)

	w = s.do(t, http.MethodPost, "/v1/orders/"+o.ID+"/cancel", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decode[errorBody](t, w).Kind)

	w = s.do(t, http.MethodGet, "/v1/products/P1", "", nil)
	assert.Equal(t, 5, decode[catalog.Product](t, w).Stock)

	assert.Contains(t, s.recorder.Topics(), events.TopicOrderCreated)
	assert.Contains(t, s.recorder.Topics(), events.TopicOrderCancelled)
}

func TestCartErrors(t *testing.T) {
	s := newServer(t)
	bob := s.register(t, "bob", "13800000002")
	alice := s.register(t, "alice", "13800000001")
	w := s.do(t, http.MethodPost, "/v1/products", bob, gin.H{"id": "P1", "name": "n", "category": "c", "price": 5, "stock": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/v1/cart/items", alice, gin.H{"product_id": "P1", "quantity": 6})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "insufficient_stock", body.Kind)
	assert.Equal(t, "P1", body.ProductID)
	assert.Equal(t, 5, body.Available)

	w = s.do(t, http.MethodPost, "/v1/cart/items", bob, gin.H{"product_id": "P1", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "self_purchase_forbidden", decode[errorBody](t, w).Kind)

	w = s.do(t, http.MethodPost, "/v1/products/P1/deactivate", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/v1/cart/items", alice, gin.H{"product_id": "P1", "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unlisted", decode[errorBody](t, w).Kind)

	w = s.do(t, http.MethodPost, "/v1/cart/items", alice, gin.H{"product_id": "P404", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/v1/orders", alice, gin.H{"shipping_address": "Road 1", "payment_method": "card"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "empty_cart", decode[errorBody](t, w).Kind)

	w = s.do(t, http.MethodPost, "/v1/orders", alice, gin.H{"shipping_address": "Road 1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthErrors(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/v1/login", "", gin.H{"username": "nobody", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode[errorBody](t, w).Kind)

	w = s.do(t, http.MethodPost, "/v1/register", "", gin.H{"username": "al", "password": "secret1", "phone": "13800000001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shop.ErrMsgUsernameTooShort, decode[errorBody](t, w).Error)

	alice := s.register(t, "alice", "13800000001")
	w = s.do(t, http.MethodPost, "/v1/register", "", gin.H{"username": "alice", "password": "secret1", "phone": "13800000001"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/statistics", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/v1/logout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.sessions.Len())
	w = s.do(t, http.MethodGet, "/v1/cart", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchAndBrowse(t *testing.T) {
	s := newServer(t)
	bob := s.register(t, "bob", "13800000002")
	for _, p := range []gin.H{
		{"id": "P1", "name": "iPhone 15", "category": "phones", "price": "999", "stock": 1},
		{"id": "P2", "name": "Case", "category": "accessories", "price": "9", "stock": 1, "description": "fits iPhone"},
		{"id": "P3", "name": "Milk", "category": "food", "price": "2", "stock": 1},
	} {
		w := s.do(t, http.MethodPost, "/v1/products", bob, p)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/v1/products/search?q=iPhone", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Product](t, w), 2)

	w = s.do(t, http.MethodGet, "/v1/products/search?q=Nothing", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/products/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/products/category/food", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Product](t, w), 1)

	w = s.do(t, http.MethodGet, "/v1/products", "", nil)
	assert.Len(t, decode[[]catalog.Product](t, w), 3)

	w = s.do(t, http.MethodGet, "/v1/products/mine", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Product](t, w), 3)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "admin123")
	bob := s.register(t, "bob", "13800000002")
	alice := s.register(t, "alice", "13800000001")

	w := s.do(t, http.MethodPost, "/v1/products", bob, gin.H{"id": "P1", "name": "n", "category": "c", "price": "10", "stock": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/v1/cart/items", alice, gin.H{"product_id": "P1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/v1/orders", alice, gin.H{"shipping_address": "Road 1", "payment_method": "card"})
	require.Equal(t, http.StatusCreated, w.Code)
	o := decode[orders.Order](t, w)

	for _, step := range []string{"pay", "ship", "complete"} {
		w = s.do(t, http.MethodPost, "/v1/admin/orders/"+o.ID+"/"+step, admin, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, orders.StatusCompleted, decode[orders.Order](t, w).Status)

	w = s.do(t, http.MethodGet, "/v1/admin/statistics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[shop.Statistics](t, w)
	assert.Equal(t, 3, st.Users)
	assert.Equal(t, 1, st.Orders)
	assert.True(t, decimal.NewFromInt(20).Equal(st.TotalSales))

	w = s.do(t, http.MethodPost, "/v1/admin/products/P1/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/v1/admin/products/inactive", admin, nil)
	assert.Len(t, decode[[]catalog.Product](t, w), 1)

	w = s.do(t, http.MethodPost, "/v1/complaints", alice, gin.H{"product_id": "P1", "type": "quality", "title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cm struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cm))
	w = s.do(t, http.MethodPost, "/v1/admin/complaints/"+cm.ID+"/resolve", admin, gin.H{"response": "refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/v1/complaints/mine", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"resolved"`)

	w = s.do(t, http.MethodDelete, "/v1/admin/products/P1", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/v1/admin/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]orders.Order](t, w), 1, "orders outlive deleted products")
}

func TestStatusOf(t *testing.T) {
	tests := map[shop.Kind]int{
		shop.KindValidation:            http.StatusBadRequest,
		shop.KindUnauthenticated:       http.StatusUnauthorized,
		shop.KindInvalidCredentials:    http.StatusUnauthorized,
		shop.KindForbidden:             http.StatusForbidden,
		shop.KindSelfPurchaseForbidden: http.StatusForbidden,
		shop.KindNotFound:              http.StatusNotFound,
		shop.KindDuplicateID:           http.StatusConflict,
		shop.KindInvalidState:          http.StatusConflict,
		shop.KindInsufficientStock:     http.StatusConflict,
		shop.KindUnlisted:              http.StatusUnprocessableEntity,
		shop.KindEmptyCart:             http.StatusUnprocessableEntity,
		shop.KindUnknown:               http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusOf(kind), kind.String())
	}
}

func TestAdminExport(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "admin123")
	bob := s.register(t, "bob", "13800000002")

	w := s.do(t, http.MethodPost, "/v1/products", bob, gin.H{"id": "P1", "name": "n", "category": "c", "price": "10", "stock": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/export", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	snap, err := records.ReadSnapshot(w.Body)
	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 2)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "P1", snap.Products[0].ID)
	assert.Equal(t, "bob", snap.Products[0].SellerUsername)
}
