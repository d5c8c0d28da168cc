package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

// PricingResolver computes what a unit costs right now. It never writes.
type PricingResolver struct {
	Discounts DiscountStore
	Now       func() time.Time
}

func NewPricingResolver(d DiscountStore) *PricingResolver {
	return &PricingResolver{Discounts: d, Now: time.Now}
}

func (p *PricingResolver) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

// With returns a resolver reading discounts through store, sharing the clock.
func (p *PricingResolver) With(store DiscountStore) *PricingResolver {
	return &PricingResolver{Discounts: store, Now: p.Now}
}

func (p *PricingResolver) ResolvePrice(ctx context.Context, productID uuid.UUID, basePrice int64) (domain.Price, error) {
	sp, err := p.Discounts.SaleFor(ctx, productID)
	if err != nil {
		return domain.Price{}, err
	}
	return domain.ResolvePrice(basePrice, sp.Discount(), p.now()), nil
}

// ResolveAt prices many products against one instant so a cart or order is
// priced consistently.
func (p *PricingResolver) ResolveAt(ctx context.Context, products []models.Product, at time.Time) (map[uuid.UUID]domain.Price, error) {
	ids := make([]uuid.UUID, 0, len(products))
	for _, prod := range products {
		ids = append(ids, prod.ID)
	}
	sales, err := p.Discounts.SalesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.Price, len(products))
	for _, prod := range products {
		out[prod.ID] = domain.ResolvePrice(prod.Price, sales[prod.ID].Discount(), at)
	}
	return out, nil
}

func (p *PricingResolver) ResolveMany(ctx context.Context, products []models.Product) (map[uuid.UUID]domain.Price, error) {
	return p.ResolveAt(ctx, products, p.now())
}
