package transport

import (
	"time"

	"github.com/google/uuid"
)

type AddCartItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
	Size      string    `json:"size"       validate:"max=32"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartCountResponse struct {
	Count int64 `json:"count"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"max=500"`
	PhoneNumber     string `json:"phone_number"     validate:"max=32"`
	PaymentMethod   string `json:"payment_method"   validate:"max=16"`
	Note            string `json:"note"             validate:"max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateDiscountLevelRequest struct {
	DiscountPercent int    `json:"discount_percent" validate:"required,min=1,max=99"`
	Name            string `json:"name"             validate:"max=100"`
}

type AddSaleProductRequest struct {
	ProductID       uuid.UUID  `json:"product_id"       validate:"required"`
	DiscountPercent *int       `json:"discount_percent" validate:"omitempty,min=1,max=99"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

// PatchSaleProductRequest changes only the fields present. clear_starts_at and
// clear_ends_at remove a bound of the sale window.
type PatchSaleProductRequest struct {
	DiscountPercent *int       `json:"discount_percent" validate:"omitempty,min=1,max=99"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	ClearStartsAt   bool       `json:"clear_starts_at"`
	ClearEndsAt     bool       `json:"clear_ends_at"`
	IsActive        *bool      `json:"is_active"`
}

type CreateProductRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price"       validate:"min=0"`
}

type PatchProductRequest struct {
	Name        *string `json:"name"        validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Price       *int64  `json:"price"       validate:"omitempty,min=0"`
}

type SizeStock struct {
	Size   string `json:"size"   validate:"required,max=32"`
	Amount int    `json:"amount" validate:"min=0"`
}

// CreateVariantRequest carries either a sizes list or the single legacy
// size and amount.
type CreateVariantRequest struct {
	ColorName string      `json:"color_name" validate:"max=100"`
	ColorCode string      `json:"color_code" validate:"max=32"`
	Sizes     []SizeStock `json:"sizes"      validate:"omitempty,dive"`
	Size      string      `json:"size"       validate:"max=32"`
	Amount    int         `json:"amount"     validate:"min=0"`
}

type SetStockRequest struct {
	Size   string `json:"size"   validate:"max=32"`
	Amount *int   `json:"amount" validate:"required,min=0"`
}

type UpdateProfileRequest struct {
	Phone   *string `json:"phone"   validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// StockErrorResponse names the cart line or variant that ran short.
type StockErrorResponse struct {
	Message    string     `json:"message"`
	CartItemID *uuid.UUID `json:"cart_item_id,omitempty"`
	VariantID  uuid.UUID  `json:"variant_id"`
	Size       string     `json:"size"`
	Requested  int        `json:"requested"`
	Available  int        `json:"available"`
}
