package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	t    *testing.T
	e    *echo.Echo
	db   *gorm.DB
	deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutil.NewDB(t)
	store := service.NewStore(repo.New(gdb))
	pricing := service.NewPricingResolver(store)
	shipping := domain.DefaultShippingPolicy()
	m := metrics.NewCheckoutMetrics(prometheus.NewRegistry())

	deps := &Deps{
		CartHandler:     &CartHTTP{Svc: &service.CartService{Store: store, Pricing: pricing, Shipping: shipping, Metrics: m}},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Store: store, Pricing: pricing, Shipping: shipping, Events: events.Nop{}, Topic: "order_events", Metrics: m}},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Store: store, Events: events.Nop{}, Topic: "order_events", Metrics: m}},
		SaleHandler:     &SaleHTTP{Svc: &service.SaleService{Store: store, Pricing: pricing}},
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Store: store, Pricing: pricing}},
		ProfileHandler:  &ProfileHTTP{Svc: &service.ProfileService{Store: store}},
		JWTSecret:       testSecret,
	}

	e := echo.New()
	e.Validator = validation.New()
	Register(e, deps)
	return &testEnv{t: t, e: e, db: gdb, deps: deps}
}

func bearer(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(userID.String(), role, time.Hour, testSecret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (env *testEnv) do(method, path string, body any, auth string) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["message"].(string)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil, "").Code)

	env.deps.Ready = func(context.Context) error { return errors.New("db down") }
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/health/ready", nil, "").Code)
}

func TestAuthGuards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := bearer(t, uuid.New(), tokens.RoleUser)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{name: "cart without token", method: http.MethodGet, path: "/api/v1/cart", want: http.StatusUnauthorized},
		{name: "checkout with garbage", method: http.MethodPost, path: "/api/v1/checkout", auth: "Bearer nope", want: http.StatusUnauthorized},
		{name: "admin orders as user", method: http.MethodGet, path: "/api/v1/admin/orders", auth: user, want: http.StatusForbidden},
		{name: "order report as user", method: http.MethodGet, path: "/api/v1/admin/orders/report", auth: user, want: http.StatusForbidden},
		{name: "create product as user", method: http.MethodPost, path: "/api/v1/catalog/products", auth: user, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, nil, tt.auth)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCartAndCheckoutFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	userID := uuid.New()
	auth := bearer(t, userID, tokens.RoleUser)

	prod := testutil.Product(t, env.db, 200000)
	v := testutil.SizedVariant(t, env.db, prod.ID, testutil.Size("M", 2))

	rec := env.do(http.MethodPost, "/api/v1/cart/items", transport.AddCartItemRequest{Quantity: 1}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "variant_id is required", message(t, rec))

	rec = env.do(http.MethodPost, "/api/v1/cart/items", transport.AddCartItemRequest{VariantID: v.ID, Quantity: 3, Size: "M"}, auth)
	require.Equal(t, http.StatusConflict, rec.Code)
	stock := decode[transport.StockErrorResponse](t, rec)
	assert.Equal(t, "only 2 left in size M", stock.Message)
	assert.Equal(t, 2, stock.Available)

	rec = env.do(http.MethodPost, "/api/v1/cart/items", transport.AddCartItemRequest{VariantID: v.ID, Quantity: 2}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decode[service.CartLine](t, rec)
	assert.Equal(t, "M", line.Size)
	assert.EqualValues(t, 400000, line.ItemTotal)

	rec = env.do(http.MethodGet, "/api/v1/cart/count", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[transport.CartCountResponse](t, rec).Count)

	rec = env.do(http.MethodGet, "/api/v1/cart", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[service.CartView](t, rec)
	assert.EqualValues(t, 400000, cart.TotalPrice)
	assert.EqualValues(t, 30000, cart.EstimatedShipping)

	rec = env.do(http.MethodPost, "/api/v1/checkout", transport.CheckoutRequest{PhoneNumber: "0900"}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shipping_address is required", message(t, rec))

	rec = env.do(http.MethodPost, "/api/v1/checkout", transport.CheckoutRequest{ShippingAddress: "1 Quay", PhoneNumber: "0900"}, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[service.CheckoutResult](t, rec)
	assert.EqualValues(t, 430000, res.Total)
	assert.Equal(t, domain.OrderPending, res.Status)
	assert.Equal(t, 0, testutil.Amount(t, env.db, v.ID, "M"))

	rec = env.do(http.MethodPost, "/api/v1/checkout", transport.CheckoutRequest{ShippingAddress: "1 Quay", PhoneNumber: "0900"}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", message(t, rec))

	rec = env.do(http.MethodGet, "/api/v1/orders", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.OrderPage](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, res.OrderID, page.Items[0].ID)

	other := bearer(t, uuid.New(), tokens.RoleUser)
	rec = env.do(http.MethodGet, "/api/v1/orders/"+res.OrderID.String(), nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/orders/"+res.OrderID.String()+"/cancel", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, testutil.Amount(t, env.db, v.ID, "M"))

	rec = env.do(http.MethodPost, "/api/v1/orders/"+res.OrderID.String()+"/cancel", nil, auth)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/orders?status=pending", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.OrderPage](t, rec).Items)

	rec = env.do(http.MethodGet, "/api/v1/orders?status=cancelled", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[service.OrderPage](t, rec).Items, 1)

	admin := bearer(t, uuid.New(), tokens.RoleAdmin)
	today := time.Now().UTC()
	report := "/api/v1/admin/orders/report?from=" + today.Add(-24*time.Hour).Format(time.DateOnly) +
		"&to=" + today.Add(24*time.Hour).Format(time.DateOnly) + "&status=cancelled"
	rec = env.do(http.MethodGet, report, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode[service.OrderPage](t, rec).Total)

	rec = env.do(http.MethodGet, "/api/v1/admin/orders/report?to=2026-03-01", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from is required", message(t, rec))
}

func TestCartItemPaths(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	auth := bearer(t, uuid.New(), tokens.RoleUser)

	rec := env.do(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", transport.UpdateCartItemRequest{Quantity: 1}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/cart/items/"+uuid.NewString(), transport.UpdateCartItemRequest{Quantity: 0}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/cart/items/"+uuid.NewString(), nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/cart", nil, auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminCatalogAndSale(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := bearer(t, uuid.New(), tokens.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/v1/catalog/products", transport.CreateProductRequest{Name: "Parka", Price: 100000}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	prod := decode[models.Product](t, rec)

	rec = env.do(http.MethodPost, "/api/v1/catalog/products/"+prod.ID.String()+"/variants", transport.CreateVariantRequest{
		ColorName: "Sand",
		Sizes:     []transport.SizeStock{{Size: "S", Amount: 1}, {Size: "M", Amount: 0}},
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	variant := decode[service.VariantView](t, rec)

	rec = env.do(http.MethodPut, "/api/v1/catalog/variants/"+variant.ID.String()+"/stock", transport.SetStockRequest{Size: "M"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/v1/catalog/variants/"+variant.ID.String()+"/stock", transport.SetStockRequest{Size: "M", Amount: ptr(5)}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 6, decode[service.VariantView](t, rec).TotalStock)

	rec = env.do(http.MethodPost, "/api/v1/admin/sale/discount-levels", transport.CreateDiscountLevelRequest{DiscountPercent: 20}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(http.MethodPost, "/api/v1/admin/sale/discount-levels", transport.CreateDiscountLevelRequest{DiscountPercent: 20}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(http.MethodPost, "/api/v1/admin/sale/discount-levels", transport.CreateDiscountLevelRequest{DiscountPercent: 150}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/admin/sale/products", transport.AddSaleProductRequest{ProductID: prod.ID, DiscountPercent: ptr(20)}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 80000, decode[service.SaleProductView](t, rec).SalePrice)

	rec = env.do(http.MethodDelete, "/api/v1/admin/sale/discount-levels/20", nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(http.MethodDelete, "/api/v1/admin/sale/discount-levels/abc", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/catalog/products/"+prod.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.ProductView](t, rec)
	assert.EqualValues(t, 80000, view.UnitPrice)
	assert.True(t, view.OnSale)

	rec = env.do(http.MethodPatch, "/api/v1/admin/sale/products/"+prod.ID.String(), transport.PatchSaleProductRequest{}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/admin/sale/products/"+prod.ID.String(), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/catalog/products/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileHandlers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	auth := bearer(t, uuid.New(), tokens.RoleUser)

	rec := env.do(http.MethodPut, "/api/v1/me/profile", transport.UpdateProfileRequest{Phone: ptr("0912")}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/v1/me/profile", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0912", decode[models.User](t, rec).Phone)
}

func TestHandlerWithoutIdentity(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	err := env.deps.CartHandler.GetCart(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	middleware.SetIdentity(c, uuid.New(), tokens.RoleUser)
	require.NoError(t, env.deps.CartHandler.GetCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[service.CartView](t, rec).TotalItems)
}

func TestClearCart_LogsEvent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "info"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	middleware.SetIdentity(c, uuid.New(), tokens.RoleUser)

	require.NoError(t, env.deps.CartHandler.ClearCart(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "clear_cart_success", line["msg"])
	assert.Equal(t, "cart.clear_cart", line["handler"])
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "field", err: domain.Required("phone_number"), want: http.StatusBadRequest},
		{name: "empty cart", err: domain.ErrEmptyCart, want: http.StatusBadRequest},
		{name: "stock", err: domain.OutOfStock(uuid.New(), "M", 2, 1), want: http.StatusConflict},
		{name: "conflict", err: domain.ErrConflict, want: http.StatusConflict},
		{name: "cart changed", err: fmt.Errorf("checkout: %w", domain.ErrCartChanged), want: http.StatusConflict},
		{name: "not found", err: domain.ErrNotFound, want: http.StatusNotFound},
		{name: "forbidden", err: domain.ErrForbidden, want: http.StatusForbidden},
		{name: "unauthenticated", err: domain.ErrUnauthenticated, want: http.StatusUnauthorized},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, _ := classify(tt.err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func ptr[T any](v T) *T { return &v }
