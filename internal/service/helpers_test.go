package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(events.OrderEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	t        *testing.T
	db       *gorm.DB
	store    Store
	pricing  *PricingResolver
	pub      *recordingPublisher
	metrics  *metrics.CheckoutMetrics
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	sale     *SaleService
	catalog  *CatalogService
	profile  *ProfileService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	store := NewStore(repo.New(gdb))
	pricing := NewPricingResolver(store)
	pricing.Now = func() time.Time { return testNow }
	pub := &recordingPublisher{}
	m := metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	shipping := domain.DefaultShippingPolicy()

	e := &env{t: t, db: gdb, store: store, pricing: pricing, pub: pub, metrics: m}
	e.cart = &CartService{Store: store, Pricing: pricing, Shipping: shipping, Metrics: m}
	e.checkout = &CheckoutService{Store: store, Pricing: pricing, Shipping: shipping, Events: pub, Topic: "order_events", Metrics: m}
	e.orders = &OrderService{Store: store, Events: pub, Topic: "order_events", Metrics: m}
	e.sale = &SaleService{Store: store, Pricing: pricing}
	e.catalog = &CatalogService{Store: store, Pricing: pricing}
	e.profile = &ProfileService{Store: store}
	return e
}

// withStore rebuilds the checkout and order services on top of store.
func (e *env) withStore(store Store) {
	e.checkout.Store = store
	e.orders.Store = store
}

func (e *env) product(price int64) *models.Product {
	return testutil.Product(e.t, e.db, price)
}

func (e *env) sized(productID uuid.UUID, sizes ...models.VariantSize) *models.Variant {
	return testutil.SizedVariant(e.t, e.db, productID, sizes...)
}

func (e *env) amount(variantID uuid.UUID, size string) int {
	return testutil.Amount(e.t, e.db, variantID, size)
}

func (e *env) add(user, variantID uuid.UUID, qty int, size string) *CartLine {
	e.t.Helper()
	line, err := e.cart.AddItem(context.Background(), user, variantID, qty, size)
	require.NoError(e.t, err)
	return line
}

func (e *env) putOnSale(productID uuid.UUID, percent int, starts, ends *time.Time) {
	e.t.Helper()
	require.NoError(e.t, e.db.Create(&models.SaleProduct{
		ProductID: productID, DiscountPercent: percent, StartsAt: starts, EndsAt: ends, IsActive: true,
	}).Error)
}

func (e *env) orderCount() int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func validCheckout() CheckoutRequest {
	return CheckoutRequest{ShippingAddress: "12 Harbour St", PhoneNumber: "0900000000"}
}

// failingLedger rejects every decrement of one variant, as if another buyer
// had just taken the last unit.
type failingLedger struct {
	Store
	failVariant uuid.UUID
}

func (f failingLedger) Decrement(ctx context.Context, variantID uuid.UUID, size string, qty int) error {
	if variantID == f.failVariant {
		return domain.InsufficientStock(variantID, size, qty, 0)
	}
	return f.Store.Decrement(ctx, variantID, size, qty)
}

func (f failingLedger) InTx(ctx context.Context, fn func(tx Store) error) error {
	return f.Store.InTx(ctx, func(tx Store) error {
		return fn(failingLedger{Store: tx, failVariant: f.failVariant})
	})
}

// staleCart serves a cart read taken earlier, as a second session does when
// it loads the cart before a concurrent checkout of the same cart commits.
type staleCart struct {
	Store
	lines []models.CartItem
}

func (s staleCart) LockCart(context.Context, uuid.UUID) ([]models.CartItem, error) {
	return s.lines, nil
}

func (s staleCart) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.Store.InTx(ctx, func(tx Store) error {
		return fn(staleCart{Store: tx, lines: s.lines})
	})
}

func stockErr(t *testing.T, err error) *domain.StockError {
	t.Helper()
	var se *domain.StockError
	require.True(t, errors.As(err, &se), "expected StockError, got %v", err)
	return se
}

func ptr[T any](v T) *T { return &v }
