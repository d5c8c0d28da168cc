package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Name        string    `gorm:"not null"                      json:"name"`
	Description string    `gorm:"not null;default:''"           json:"description"`
	Price       int64     `gorm:"not null;check:price >= 0"     json:"price"`
	Variants    []Variant `gorm:"foreignKey:ProductID"          json:"variants,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variant is a purchasable SKU. Stock lives either in Sizes or, for older
// rows, in the Size/Amount pair.
type Variant struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"               json:"id"`
	ProductID uuid.UUID     `gorm:"type:uuid;index;not null"           json:"product_id"`
	Product   *Product      `gorm:"foreignKey:ProductID"               json:"product,omitempty"`
	ColorName string        `gorm:"not null;default:''"                json:"color_name"`
	ColorCode string        `gorm:"not null;default:''"                json:"color_code"`
	Size      string        `gorm:"not null;default:''"                json:"size"`
	Amount    int           `gorm:"not null;default:0;check:amount >= 0" json:"amount"`
	Sizes     []VariantSize `gorm:"foreignKey:VariantID"               json:"sizes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type VariantSize struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"-"`
	VariantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_variant_size;not null"   json:"-"`
	Size      string    `gorm:"uniqueIndex:idx_variant_size;not null"             json:"size"`
	Amount    int       `gorm:"not null;default:0;check:amount >= 0"              json:"amount"`
	Position  int       `gorm:"not null;default:0"                                json:"-"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                          json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line;not null"  json:"user_id"`
	VariantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line;not null"  json:"variant_id"`
	Size      string    `gorm:"uniqueIndex:idx_cart_line;not null;default:''" json:"size"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"         json:"quantity"`
	Variant   *Variant  `gorm:"foreignKey:VariantID"                          json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DiscountLevel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	DiscountPercent int       `gorm:"uniqueIndex;not null"     json:"discount_percent"`
	Name            string    `gorm:"not null"                 json:"name"`
	IsActive        bool      `gorm:"not null"                 json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type SaleProduct struct {
	ProductID       uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"product_id"`
	Product         *Product   `gorm:"foreignKey:ProductID"     json:"-"`
	DiscountPercent int        `gorm:"index;not null"           json:"discount_percent"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	IsActive        bool       `gorm:"not null"                 json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;index;not null"    json:"user_id"`
	ShippingAddress string      `gorm:"not null"                    json:"shipping_address"`
	PhoneNumber     string      `gorm:"not null"                    json:"phone_number"`
	PaymentMethod   string      `gorm:"not null"                    json:"payment_method"`
	PaymentStatus   string      `gorm:"not null"                    json:"payment_status"`
	Note            string      `gorm:"not null;default:''"         json:"note"`
	Status          string      `gorm:"index;not null"              json:"status"`
	Subtotal        int64       `gorm:"not null"                    json:"subtotal"`
	AdditionalFee   int64       `gorm:"not null;default:0"          json:"additional_fee"`
	Total           int64       `gorm:"not null"                    json:"total"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"          json:"items,omitempty"`
	CreatedAt       time.Time   `gorm:"index"                       json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem freezes the price of a line at checkout.
type OrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID         uuid.UUID `gorm:"type:uuid;index;not null"      json:"order_id"`
	VariantID       uuid.UUID `gorm:"type:uuid;not null"            json:"variant_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null"            json:"product_id"`
	Size            string    `gorm:"not null;default:''"           json:"size"`
	Quantity        int       `gorm:"not null;check:quantity > 0"   json:"quantity"`
	OriginalPrice   int64     `gorm:"not null"                      json:"original_price"`
	DiscountPercent int       `gorm:"not null;default:0"            json:"discount_percent"`
	UnitPrice       int64     `gorm:"not null"                      json:"unit_price"`
	LineTotal       int64     `gorm:"not null"                      json:"line_total"`
}

// User holds the shopper profile. Credentials live in the auth service.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username  string    `gorm:"not null;default:''"      json:"username"`
	Phone     string    `gorm:"not null;default:''"      json:"phone"`
	Address   string    `gorm:"not null;default:''"      json:"address"`
	Role      string    `gorm:"not null;default:'user'"  json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (s *VariantSize) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (d *DiscountLevel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&Product{}, &Variant{}, &VariantSize{}, &CartItem{},
		&DiscountLevel{}, &SaleProduct{}, &Order{}, &OrderItem{}, &User{},
	}
}

// StockView flattens the variant's stock for availability checks. Sizes must
// be loaded.
func (v *Variant) StockView() domain.StockView {
	view := domain.StockView{LegacySize: v.Size, LegacyAmount: v.Amount}
	for _, s := range v.Sizes {
		view.Sizes = append(view.Sizes, domain.SizeStock{Size: s.Size, Amount: s.Amount})
	}
	return view
}

// Discount converts the sale mapping for pricing. A nil mapping yields nil.
func (s *SaleProduct) Discount() *domain.Discount {
	if s == nil {
		return nil
	}
	return &domain.Discount{Percent: s.DiscountPercent, StartsAt: s.StartsAt, EndsAt: s.EndsAt, Active: s.IsActive}
}
