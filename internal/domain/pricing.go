package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinDiscountPercent = 1
	MaxDiscountPercent = 99
)

// Discount is the sale mapping of a product.
type Discount struct {
	Percent  int
	StartsAt *time.Time
	EndsAt   *time.Time
	Active   bool
}

// ActiveAt reports whether the discount applies at t. The window is
// [StartsAt, EndsAt); a nil bound is open.
func (d *Discount) ActiveAt(t time.Time) bool {
	if d == nil || !d.Active {
		return false
	}
	if d.Percent < MinDiscountPercent || d.Percent > MaxDiscountPercent {
		return false
	}
	if d.StartsAt != nil && t.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && !t.Before(*d.EndsAt) {
		return false
	}
	return true
}

// Price is a resolved unit price in integer currency units.
type Price struct {
	UnitPrice       int64 `json:"unit_price"`
	BasePrice       int64 `json:"base_price"`
	OnSale          bool  `json:"on_sale"`
	DiscountPercent int   `json:"discount_percent"`
}

// ResolvePrice applies d to basePrice when it is active at now.
func ResolvePrice(basePrice int64, d *Discount, now time.Time) Price {
	if !d.ActiveAt(now) {
		return Price{UnitPrice: basePrice, BasePrice: basePrice}
	}
	return Price{
		UnitPrice:       ApplyDiscount(basePrice, d.Percent),
		BasePrice:       basePrice,
		OnSale:          true,
		DiscountPercent: d.Percent,
	}
}

// ApplyDiscount returns basePrice reduced by percent, rounded half up to a
// whole currency unit.
func ApplyDiscount(basePrice int64, percent int) int64 {
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(basePrice).Mul(factor).Round(0).IntPart()
}

func ValidDiscountPercent(p int) bool {
	return p >= MinDiscountPercent && p <= MaxDiscountPercent
}
