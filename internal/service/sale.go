package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// DefaultSalePercent applies when a product is put on sale without a percent.
const DefaultSalePercent = 20

type SaleService struct {
	Store   Store
	Pricing *PricingResolver
}

type SaleProductView struct {
	ProductID       uuid.UUID  `json:"product_id"`
	ProductName     string     `json:"product_name"`
	OriginalPrice   int64      `json:"original_price"`
	SalePrice       int64      `json:"sale_price"`
	DiscountPercent int        `json:"discount_percent"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	IsActive        bool       `json:"is_active"`
	ActiveNow       bool       `json:"active_now"`
}

type SaleInput struct {
	ProductID       uuid.UUID
	DiscountPercent *int
	StartsAt        *time.Time
	EndsAt          *time.Time
}

// SalePatch changes only the fields that are set. ClearStartsAt and
// ClearEndsAt open the corresponding window bound.
type SalePatch struct {
	DiscountPercent *int
	StartsAt        *time.Time
	EndsAt          *time.Time
	ClearStartsAt   bool
	ClearEndsAt     bool
	IsActive        *bool
}

func (p SalePatch) empty() bool {
	return p.DiscountPercent == nil && p.StartsAt == nil && p.EndsAt == nil &&
		!p.ClearStartsAt && !p.ClearEndsAt && p.IsActive == nil
}

func checkPercent(p int) error {
	if !domain.ValidDiscountPercent(p) {
		return domain.Invalid("discount_percent", fmt.Sprintf("must be between %d and %d", domain.MinDiscountPercent, domain.MaxDiscountPercent))
	}
	return nil
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return domain.Invalid("ends_at", "must be after starts_at")
	}
	return nil
}

func (s *SaleService) ListDiscountLevels(ctx context.Context) ([]models.DiscountLevel, error) {
	return s.Store.ListDiscountLevels(ctx, true)
}

func (s *SaleService) CreateDiscountLevel(ctx context.Context, percent int, name string) (*models.DiscountLevel, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Sale %d%%", percent)
	}

	exists, err := s.Store.DiscountLevelExists(ctx, percent)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("discount level %d%% already exists: %w", percent, domain.ErrConflict)
	}

	level := &models.DiscountLevel{DiscountPercent: percent, Name: name, IsActive: true}
	if err := s.Store.CreateDiscountLevel(ctx, level); err != nil {
		return nil, conflict(err, "discount level")
	}
	return level, nil
}

// DeleteDiscountLevel refuses while any sale mapping still uses the percent.
func (s *SaleService) DeleteDiscountLevel(ctx context.Context, percent int) error {
	return s.Store.InTx(ctx, func(tx Store) error {
		inUse, err := tx.CountSalesWithPercent(ctx, percent)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return fmt.Errorf("discount level %d%% is used by %d products: %w", percent, inUse, domain.ErrConflict)
		}
		if err := tx.DeleteDiscountLevel(ctx, percent); err != nil {
			return notFound(err, "discount level")
		}
		return nil
	})
}

func (s *SaleService) ListSaleProducts(ctx context.Context, activeOnly bool) ([]SaleProductView, error) {
	rows, err := s.Store.ListSaleProducts(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	now := s.Pricing.now()
	out := make([]SaleProductView, 0, len(rows))
	for i := range rows {
		out = append(out, saleView(&rows[i], rows[i].Product, now))
	}
	return out, nil
}

func saleView(sp *models.SaleProduct, prod *models.Product, now time.Time) SaleProductView {
	v := SaleProductView{
		ProductID:       sp.ProductID,
		DiscountPercent: sp.DiscountPercent,
		StartsAt:        sp.StartsAt,
		EndsAt:          sp.EndsAt,
		IsActive:        sp.IsActive,
		ActiveNow:       sp.Discount().ActiveAt(now),
	}
	if prod != nil {
		v.ProductName = prod.Name
		v.OriginalPrice = prod.Price
		v.SalePrice = domain.ApplyDiscount(prod.Price, sp.DiscountPercent)
	}
	return v
}

// AddSaleProduct puts a product on sale. A product has at most one mapping.
func (s *SaleService) AddSaleProduct(ctx context.Context, in SaleInput) (*SaleProductView, error) {
	if in.ProductID == uuid.Nil {
		return nil, domain.Required("product_id")
	}
	percent := DefaultSalePercent
	if in.DiscountPercent != nil {
		percent = *in.DiscountPercent
	}
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	if err := checkWindow(in.StartsAt, in.EndsAt); err != nil {
		return nil, err
	}

	var view SaleProductView
	err := s.Store.InTx(ctx, func(tx Store) error {
		prod, err := tx.GetProduct(ctx, in.ProductID)
		if err != nil {
			return notFound(err, "product")
		}
		existing, err := tx.SaleFor(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("product is already on sale: %w", domain.ErrConflict)
		}

		sp := &models.SaleProduct{
			ProductID:       in.ProductID,
			DiscountPercent: percent,
			StartsAt:        utcPtr(in.StartsAt),
			EndsAt:          utcPtr(in.EndsAt),
			IsActive:        true,
		}
		if err := tx.CreateSaleProduct(ctx, sp); err != nil {
			return conflict(err, "sale product")
		}
		view = saleView(sp, prod, s.Pricing.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *SaleService) UpdateSaleProduct(ctx context.Context, productID uuid.UUID, patch SalePatch) (*SaleProductView, error) {
	if patch.empty() {
		return nil, domain.Invalid("body", "has no fields to update")
	}
	if patch.DiscountPercent != nil {
		if err := checkPercent(*patch.DiscountPercent); err != nil {
			return nil, err
		}
	}

	var view SaleProductView
	err := s.Store.InTx(ctx, func(tx Store) error {
		sp, err := tx.SaleFor(ctx, productID)
		if err != nil {
			return err
		}
		if sp == nil {
			return fmt.Errorf("sale product: %w", domain.ErrNotFound)
		}

		if patch.DiscountPercent != nil {
			sp.DiscountPercent = *patch.DiscountPercent
		}
		switch {
		case patch.ClearStartsAt:
			sp.StartsAt = nil
		case patch.StartsAt != nil:
			sp.StartsAt = utcPtr(patch.StartsAt)
		}
		switch {
		case patch.ClearEndsAt:
			sp.EndsAt = nil
		case patch.EndsAt != nil:
			sp.EndsAt = utcPtr(patch.EndsAt)
		}
		if patch.IsActive != nil {
			sp.IsActive = *patch.IsActive
		}
		if err := checkWindow(sp.StartsAt, sp.EndsAt); err != nil {
			return err
		}

		if err := tx.SaveSaleProduct(ctx, sp); err != nil {
			return notFound(err, "sale product")
		}
		prod, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return notFound(err, "product")
		}
		view = saleView(sp, prod, s.Pricing.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *SaleService) RemoveSaleProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.Store.DeleteSaleProduct(ctx, productID); err != nil {
		return notFound(err, "sale product")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
