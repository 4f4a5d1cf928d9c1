package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shekinah-backend/internal/auth"
	"shekinah-backend/internal/cart"
	"shekinah-backend/internal/checkout"
	"shekinah-backend/internal/domain"
	adminrepo "shekinah-backend/internal/repository/admin"
	"shekinah-backend/internal/store/catalog"
	"shekinah-backend/internal/store/orders"
	"shekinah-backend/internal/watch"
)

type stubProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
}

func (r *stubProductRepo) List(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *stubProductRepo) Insert(_ context.Context, p domain.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.DocID = "doc-new"
	r.products = append(r.products, p)
	return p.DocID, nil
}

func (r *stubProductRepo) Update(context.Context, string, domain.Product) error { return nil }

func (r *stubProductRepo) Delete(_ context.Context, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].DocID == docID {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubProductRepo) FindDocID(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p.DocID, nil
		}
	}
	return "", domain.ErrNotFound
}

func (r *stubProductRepo) DecrementStock(context.Context, string, int) error { return nil }

type stubOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (r *stubOrderRepo) List(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *stubOrderRepo) Insert(_ context.Context, o domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = "order-new"
	o.Date = time.Now()
	r.orders = append(r.orders, o)
	return o.ID, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubAdminRepo struct {
	users map[string]*adminrepo.User
}

func (r *stubAdminRepo) GetByEmail(_ context.Context, email string) (*adminrepo.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type signalWatcher struct{}

func (signalWatcher) Watch(ctx context.Context, _ string) (*watch.Subscription, error) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	_, cancel := context.WithCancel(ctx)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return watch.NewSubscription(ch, cancel), nil
}

type testEnv struct {
	router   http.Handler
	catalog  *catalog.Store
	sessions *cart.Sessions
}

func newTestEnv(t *testing.T, products ...domain.Product) *testEnv {
	t.Helper()

	productRepo := &stubProductRepo{products: products}
	orderRepo := &stubOrderRepo{}

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	adminRepo := &stubAdminRepo{users: map[string]*adminrepo.User{
		"admin@shekinah.pe": {ID: "user-1", Email: "admin@shekinah.pe", PasswordHash: string(hash)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	catalogStore := catalog.New(productRepo, signalWatcher{}, nil)
	go catalogStore.Run(ctx)

	deadline := time.After(2 * time.Second)
	for catalogStore.Loading() {
		select {
		case <-deadline:
			t.Fatal("catalog never loaded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ordersStore := orders.New(orderRepo, signalWatcher{}, nil)

	authSvc := auth.New(adminRepo, "test-secret", time.Hour, nil)
	authSvc.OnAdminPresence(func(active bool) {
		ordersStore.SetPrivileged(ctx, active)
	})

	sessions := cart.NewSessions()
	flow := checkout.New(ordersStore, catalogStore, "51946138476", nil)

	router := buildRouter(zap.NewNop(), nil, Deps{
		Catalog:  catalogStore,
		Orders:   ordersStore,
		Carts:    sessions,
		Checkout: flow,
		Auth:     authSvc,
	}, []string{"*"})

	return &testEnv{router: router, catalog: catalogStore, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func helmet() domain.Product {
	return domain.Product{
		ID:       "1",
		DocID:    "doc-1",
		Name:     "Casco",
		Category: domain.CategoryCascosFundas,
		Price:    decimal.RequireFromString("100.00"),
		Stock:    2,
	}
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@shekinah.pe",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decode(t, rec)["token"].(string)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t, helmet())

	rec := env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["loading"])
	assert.Len(t, body["products"], 1)
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t, helmet())

	rec := env.do(t, http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, helmet())

	rec := env.do(t, http.MethodPost, "/api/cart", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sid := decode(t, rec)["sessionId"].(string)

	rec = env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "100.00", body["subtotal"])
	assert.Equal(t, true, body["open"])

	rec = env.do(t, http.MethodPut, "/api/cart/"+sid+"/items/1", "", map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "200.00", decode(t, rec)["subtotal"])

	rec = env.do(t, http.MethodDelete, "/api/cart/"+sid+"/items/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.00", decode(t, rec)["subtotal"])
}

func TestCartAddRejectsOutOfStock(t *testing.T) {
	env := newTestEnv(t, helmet())
	sid := env.sessions.New()

	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})
	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})

	rec := env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartUpdateRejectsAboveStock(t *testing.T) {
	env := newTestEnv(t, helmet())
	sid := env.sessions.New()
	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})

	rec := env.do(t, http.MethodPut, "/api/cart/"+sid+"/items/1", "", map[string]int{"quantity": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, helmet())
	sid := env.sessions.New()
	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})

	rec := env.do(t, http.MethodPost, "/api/checkout", "", map[string]string{
		"sessionId":       sid,
		"customerName":    "Ana Quispe",
		"customerAddress": "Av. Grau 123, Piura",
		"paymentMethod":   "Yape",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Contains(t, body["whatsappUrl"], "https://wa.me/51946138476?")
	assert.Equal(t, "100.00", body["total"])
	assert.Equal(t, true, body["orderRecorded"])

	assert.Empty(t, env.sessions.Items(sid))
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t, helmet())
	sid := env.sessions.New()

	rec := env.do(t, http.MethodPost, "/api/checkout", "", map[string]string{
		"sessionId":       sid,
		"customerName":    "Ana Quispe",
		"customerAddress": "Av. Grau 123, Piura",
		"paymentMethod":   "Yape",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	env := newTestEnv(t, helmet())
	sid := env.sessions.New()
	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})

	rec := env.do(t, http.MethodPost, "/api/checkout", "", map[string]string{
		"sessionId":       sid,
		"customerName":    "Ana Quispe",
		"customerAddress": "Av. Grau 123, Piura",
		"paymentMethod":   "Bitcoin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@shekinah.pe",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Correo o contraseña incorrectos.", decode(t, rec)["error"])
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/orders", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrdersAfterLogin(t *testing.T) {
	env := newTestEnv(t, helmet())

	sid := env.sessions.New()
	env.do(t, http.MethodPost, "/api/cart/"+sid+"/items", "", map[string]string{"productId": "1"})
	rec := env.do(t, http.MethodPost, "/api/checkout", "", map[string]string{
		"sessionId":       sid,
		"customerName":    "Ana Quispe",
		"customerAddress": "Av. Grau 123, Piura",
		"paymentMethod":   "Yape",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// logging in flips admin presence, which starts the orders mirror
	token := env.login(t)

	deadline := time.After(2 * time.Second)
	for {
		rec = env.do(t, http.MethodGet, "/api/admin/orders", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		if orders, ok := decode(t, rec)["orders"].([]any); ok && len(orders) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("orders mirror never caught up")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestLogoutRevokesAccess(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportNoOrders(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/orders/export", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/orders/export/weekly", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPut, "/api/admin/orders/order-1/status", token, map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/orders/order-1/status", token, map[string]string{"status": "paid"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"category": "No existe",
		"name":     "Casco",
		"price":    "100.00",
		"stock":    5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"category": string(domain.CategoryCascosFundas),
		"name":     "Casco",
		"price":    "100.00",
		"stock":    5,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
