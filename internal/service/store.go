package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type InventoryLedger interface {
	Stock(ctx context.Context, variantID uuid.UUID) (domain.StockView, error)
	Decrement(ctx context.Context, variantID uuid.UUID, size string, qty int) error
	Restore(ctx context.Context, variantID uuid.UUID, size string, qty int) error
	SetStock(ctx context.Context, variantID uuid.UUID, size string, amount int) error
}

type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	SaveProduct(ctx context.Context, prod *models.Product) error
	CreateVariant(ctx context.Context, v *models.Variant) error
}

type DiscountStore interface {
	SaleFor(ctx context.Context, productID uuid.UUID) (*models.SaleProduct, error)
	SalesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.SaleProduct, error)
	ListDiscountLevels(ctx context.Context, activeOnly bool) ([]models.DiscountLevel, error)
	DiscountLevelExists(ctx context.Context, percent int) (bool, error)
	CreateDiscountLevel(ctx context.Context, level *models.DiscountLevel) error
	DeleteDiscountLevel(ctx context.Context, percent int) error
	CountSalesWithPercent(ctx context.Context, percent int) (int64, error)
	ListSaleProducts(ctx context.Context, activeOnly bool) ([]models.SaleProduct, error)
	CreateSaleProduct(ctx context.Context, sp *models.SaleProduct) error
	SaveSaleProduct(ctx context.Context, sp *models.SaleProduct) error
	DeleteSaleProduct(ctx context.Context, productID uuid.UUID) error
}

type CartStore interface {
	ListCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	CountCart(ctx context.Context, userID uuid.UUID) (int64, error)
	AddToCart(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	GetCartItem(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error)
	SetCartQuantity(ctx context.Context, id, userID uuid.UUID, qty int) error
	DeleteCartItem(ctx context.Context, id, userID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
	LockCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	RemoveCartLines(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f repo.OrderFilter, limit, offset int) ([]models.Order, int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.OrderStatus, to domain.OrderStatus) (bool, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpsertProfile(ctx context.Context, u *models.User) error
}

// Store is everything the services persist through. InTx hands fn a Store
// bound to one transaction; fn must use only that Store.
type Store interface {
	InventoryLedger
	Catalog
	DiscountStore
	CartStore
	OrderStore
	ProfileStore

	InTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	*repo.GormRepo
}

func NewStore(r *repo.GormRepo) Store {
	return gormStore{GormRepo: r}
}

func (s gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.GormRepo.InTx(ctx, func(tx *repo.GormRepo) error {
		return fn(gormStore{GormRepo: tx})
	})
}
