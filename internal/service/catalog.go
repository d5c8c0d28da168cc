package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

type CatalogService struct {
	Store   Store
	Pricing *PricingResolver
}

type VariantView struct {
	ID          uuid.UUID          `json:"id"`
	ColorName   string             `json:"color_name"`
	ColorCode   string             `json:"color_code"`
	Sizes       []domain.SizeStock `json:"sizes"`
	DefaultSize string             `json:"default_size"`
	TotalStock  int                `json:"total_stock"`
}

type ProductView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	domain.Price
	Variants []VariantView `json:"variants"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       int64
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
}

// VariantInput carries either a size list or the single legacy size+amount.
type VariantInput struct {
	ColorName string
	ColorCode string
	Sizes     []domain.SizeStock
	Size      string
	Amount    int
}

func variantView(v *models.Variant) VariantView {
	view := v.StockView()
	out := VariantView{
		ID:          v.ID,
		ColorName:   v.ColorName,
		ColorCode:   v.ColorCode,
		DefaultSize: view.DefaultSize(),
	}
	if view.HasSizes() {
		out.Sizes = view.Sizes
	} else {
		out.Sizes = []domain.SizeStock{{Size: view.LegacySize, Amount: view.Available(view.LegacySize)}}
	}
	for _, s := range out.Sizes {
		if s.Amount > 0 {
			out.TotalStock += s.Amount
		}
	}
	return out
}

// GetProduct is the public product page: variants, per-size stock and the
// price a shopper would pay right now.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	prod, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	price, err := s.Pricing.ResolvePrice(ctx, prod.ID, prod.Price)
	if err != nil {
		return nil, err
	}

	out := &ProductView{
		ID:          prod.ID,
		Name:        prod.Name,
		Description: prod.Description,
		Price:       price,
		Variants:    make([]VariantView, 0, len(prod.Variants)),
	}
	for i := range prod.Variants {
		out.Variants = append(out.Variants, variantView(&prod.Variants[i]))
	}
	return out, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Required("name")
	}
	if in.Price < 0 {
		return nil, domain.Invalid("price", "must not be negative")
	}
	prod := &models.Product{Name: name, Description: strings.TrimSpace(in.Description), Price: in.Price}
	if err := s.Store.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}
	return prod, nil
}

// PatchProduct changes the base price going forward. Placed orders keep the
// price frozen at checkout.
func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	var out *models.Product
	err := s.Store.InTx(ctx, func(tx Store) error {
		prod, err := tx.GetProduct(ctx, id)
		if err != nil {
			return notFound(err, "product")
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domain.Required("name")
			}
			prod.Name = name
		}
		if patch.Description != nil {
			prod.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Price != nil {
			if *patch.Price < 0 {
				return domain.Invalid("price", "must not be negative")
			}
			prod.Price = *patch.Price
		}
		if err := tx.SaveProduct(ctx, prod); err != nil {
			return notFound(err, "product")
		}
		out = prod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) CreateVariant(ctx context.Context, productID uuid.UUID, in VariantInput) (*VariantView, error) {
	v := &models.Variant{
		ProductID: productID,
		ColorName: strings.TrimSpace(in.ColorName),
		ColorCode: strings.TrimSpace(in.ColorCode),
	}

	if len(in.Sizes) > 0 {
		seen := make(map[string]bool, len(in.Sizes))
		for i, sz := range in.Sizes {
			size := strings.TrimSpace(sz.Size)
			if size == "" {
				return nil, domain.Required(fmt.Sprintf("sizes[%d].size", i))
			}
			if seen[size] {
				return nil, domain.Invalid("sizes", "repeats size "+size)
			}
			if sz.Amount < 0 {
				return nil, domain.Invalid(fmt.Sprintf("sizes[%d].amount", i), "must not be negative")
			}
			seen[size] = true
			v.Sizes = append(v.Sizes, models.VariantSize{Size: size, Amount: sz.Amount, Position: i})
		}
	} else {
		if in.Amount < 0 {
			return nil, domain.Invalid("amount", "must not be negative")
		}
		v.Size = strings.TrimSpace(in.Size)
		v.Amount = in.Amount
	}

	err := s.Store.InTx(ctx, func(tx Store) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return notFound(err, "product")
		}
		return tx.CreateVariant(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	view := variantView(v)
	return &view, nil
}

// SetStock overwrites the stock held for one size.
func (s *CatalogService) SetStock(ctx context.Context, variantID uuid.UUID, size string, amount int) (*VariantView, error) {
	if amount < 0 {
		return nil, domain.Invalid("amount", "must not be negative")
	}
	size = strings.TrimSpace(size)

	var out VariantView
	err := s.Store.InTx(ctx, func(tx Store) error {
		if err := tx.SetStock(ctx, variantID, size, amount); err != nil {
			return notFound(err, "variant")
		}
		v, err := tx.GetVariant(ctx, variantID)
		if err != nil {
			return notFound(err, "variant")
		}
		out = variantView(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
