package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type CartService struct {
	Store    Store
	Pricing  *PricingResolver
	Shipping domain.ShippingPolicy
	Metrics  *metrics.CheckoutMetrics
}

type CartLine struct {
	ID          uuid.UUID `json:"id"`
	VariantID   uuid.UUID `json:"variant_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ColorName   string    `json:"color_name"`
	Size        string    `json:"size"`
	Quantity    int       `json:"quantity"`
	domain.Price
	ItemTotal int64 `json:"item_total"`
	Available int   `json:"available"`
}

type CartView struct {
	Items             []CartLine `json:"items"`
	TotalItems        int        `json:"total_items"`
	TotalPrice        int64      `json:"total_price"`
	EstimatedShipping int64      `json:"estimated_shipping"`
	GrandTotal        int64      `json:"grand_total"`
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

func newCartLine(item *models.CartItem, price domain.Price, available int) CartLine {
	line := CartLine{
		ID:        item.ID,
		VariantID: item.VariantID,
		Size:      item.Size,
		Quantity:  item.Quantity,
		Price:     price,
		ItemTotal: price.UnitPrice * int64(item.Quantity),
		Available: available,
	}
	if v := item.Variant; v != nil {
		line.ProductID = v.ProductID
		line.ColorName = v.ColorName
		if v.Product != nil {
			line.ProductName = v.Product.Name
		}
	}
	return line
}

// AddItem adds quantity units of a variant size to the caller's cart. The
// line's new total must fit the current stock, otherwise nothing is written
// and an out-of-stock StockError is returned.
func (s *CartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int, size string) (*CartLine, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if variantID == uuid.Nil {
		return nil, domain.Required("variant_id")
	}
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}
	size = strings.TrimSpace(size)

	var out *CartLine
	err := s.Store.InTx(ctx, func(tx Store) error {
		v, err := tx.GetVariant(ctx, variantID)
		if err != nil {
			return notFound(err, "variant")
		}

		view := v.StockView()
		if size == "" {
			size = view.DefaultSize()
		}
		available := view.Available(size)
		if quantity > available {
			return domain.OutOfStock(variantID, size, quantity, available)
		}

		stored, err := tx.AddToCart(ctx, &models.CartItem{
			UserID:    userID,
			VariantID: variantID,
			Size:      size,
			Quantity:  quantity,
		})
		if err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		if stored.Quantity > available {
			return domain.OutOfStock(variantID, size, stored.Quantity, available)
		}

		price, err := s.Pricing.With(tx).ResolvePrice(ctx, v.ProductID, productPrice(v))
		if err != nil {
			return err
		}

		stored.Variant = v
		line := newCartLine(stored, price, available)
		out = &line
		return nil
	})
	if err != nil {
		if isStockErr(err) {
			s.Metrics.StockRejected("cart_add")
		}
		return nil, err
	}
	return out, nil
}

// UpdateItem sets the quantity of one of the caller's lines after checking
// it against the stock held right now.
func (s *CartService) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*CartLine, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}

	var out *CartLine
	err := s.Store.InTx(ctx, func(tx Store) error {
		item, err := tx.GetCartItem(ctx, lineID, userID)
		if err != nil {
			return notFound(err, "cart item")
		}

		available := 0
		if item.Variant != nil {
			available = item.Variant.StockView().Available(item.Size)
		}
		if quantity > available {
			return &domain.StockError{
				Kind:       domain.ErrInsufficientStock,
				CartItemID: item.ID,
				VariantID:  item.VariantID,
				Size:       item.Size,
				Requested:  quantity,
				Available:  available,
			}
		}

		if err := tx.SetCartQuantity(ctx, lineID, userID, quantity); err != nil {
			return notFound(err, "cart item")
		}
		item.Quantity = quantity

		var price domain.Price
		if item.Variant != nil {
			price, err = s.Pricing.With(tx).ResolvePrice(ctx, item.Variant.ProductID, productPrice(item.Variant))
			if err != nil {
				return err
			}
		}
		line := newCartLine(item, price, available)
		out = &line
		return nil
	})
	if err != nil {
		if isStockErr(err) {
			s.Metrics.StockRejected("cart_update")
		}
		return nil, err
	}
	return out, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.Store.DeleteCartItem(ctx, lineID, userID); err != nil {
		return notFound(err, "cart item")
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return s.Store.ClearCart(ctx, userID)
}

// CountItems returns the number of distinct lines in the cart.
func (s *CartService) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	return s.Store.CountCart(ctx, userID)
}

// GetCart returns the caller's lines priced and stocked as of now.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	items, err := s.Store.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices, err := s.Pricing.ResolveMany(ctx, productsOf(items))
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(items))}
	for i := range items {
		item := &items[i]
		if item.Variant == nil {
			continue
		}
		line := newCartLine(item, prices[item.Variant.ProductID], item.Variant.StockView().Available(item.Size))
		view.Items = append(view.Items, line)
		view.TotalItems += line.Quantity
		view.TotalPrice += line.ItemTotal
	}
	view.EstimatedShipping = s.Shipping.Fee(view.TotalPrice)
	view.GrandTotal = view.TotalPrice + view.EstimatedShipping
	return view, nil
}

func productPrice(v *models.Variant) int64 {
	if v == nil || v.Product == nil {
		return 0
	}
	return v.Product.Price
}

// productsOf collects the distinct products behind cart lines.
func productsOf(items []models.CartItem) []models.Product {
	seen := make(map[uuid.UUID]bool, len(items))
	out := make([]models.Product, 0, len(items))
	for _, it := range items {
		if it.Variant == nil || it.Variant.Product == nil || seen[it.Variant.ProductID] {
			continue
		}
		seen[it.Variant.ProductID] = true
		out = append(out, *it.Variant.Product)
	}
	return out
}
