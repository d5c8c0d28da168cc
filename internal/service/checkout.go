package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type CheckoutService struct {
	Store    Store
	Pricing  *PricingResolver
	Shipping domain.ShippingPolicy
	Events   events.Publisher
	Topic    string
	Metrics  *metrics.CheckoutMetrics
}

type CheckoutRequest struct {
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   string
	Note            string
}

type CheckoutResult struct {
	OrderID       uuid.UUID          `json:"order_id"`
	Subtotal      int64              `json:"subtotal"`
	AdditionalFee int64              `json:"additional_fee"`
	Total         int64              `json:"total"`
	Status        domain.OrderStatus `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Items         []models.OrderItem `json:"items"`
}

// Checkout turns the caller's cart into a PENDING order. Stock is checked
// again, prices are resolved at one instant and frozen into the order, stock
// is decremented and the cart is cleared, all in one transaction. Any failure
// leaves the cart, the stock and the order table as they were.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "checkout", "user_id", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(req.ShippingAddress)
	phone := strings.TrimSpace(req.PhoneNumber)
	method, methodOK := domain.NormalizePaymentMethod(req.PaymentMethod)

	var order *models.Order
	err := s.Store.InTx(ctx, func(tx Store) error {
		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		if address == "" {
			return domain.Required("shipping_address")
		}
		if phone == "" {
			prof, err := tx.GetProfile(ctx, userID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load profile: %w", err)
			}
			if prof != nil {
				phone = strings.TrimSpace(prof.Phone)
			}
			if phone == "" {
				return domain.Required("phone_number")
			}
		}
		if !methodOK {
			return domain.Invalid("payment_method", "is not supported")
		}

		for i := range lines {
			if err := checkLineStock(&lines[i]); err != nil {
				return err
			}
		}

		at := s.Pricing.now()
		prices, err := s.Pricing.With(tx).ResolveAt(ctx, productsOf(lines), at)
		if err != nil {
			return fmt.Errorf("resolve prices: %w", err)
		}

		order = &models.Order{
			UserID:          userID,
			ShippingAddress: address,
			PhoneNumber:     phone,
			PaymentMethod:   method,
			PaymentStatus:   string(domain.PaymentUnpaid),
			Note:            strings.TrimSpace(req.Note),
			Status:          string(domain.OrderPending),
			Items:           make([]models.OrderItem, 0, len(lines)),
		}
		for _, line := range lines {
			price := prices[line.Variant.ProductID]
			item := models.OrderItem{
				VariantID:       line.VariantID,
				ProductID:       line.Variant.ProductID,
				Size:            line.Size,
				Quantity:        line.Quantity,
				OriginalPrice:   price.BasePrice,
				DiscountPercent: price.DiscountPercent,
				UnitPrice:       price.UnitPrice,
				LineTotal:       price.UnitPrice * int64(line.Quantity),
			}
			order.Subtotal += item.LineTotal
			order.Items = append(order.Items, item)
		}
		order.AdditionalFee = s.Shipping.Fee(order.Subtotal)
		order.Total = order.Subtotal + order.AdditionalFee

		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range lines {
			if err := tx.Decrement(ctx, line.VariantID, line.Size, line.Quantity); err != nil {
				var serr *domain.StockError
				if errors.As(err, &serr) {
					serr.CartItemID = line.ID
				}
				return err
			}
		}

		ids := make([]uuid.UUID, len(lines))
		for i, line := range lines {
			ids[i] = line.ID
		}
		removed, err := tx.RemoveCartLines(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if removed != int64(len(lines)) {
			return domain.ErrCartChanged
		}
		return nil
	})
	if err != nil {
		s.Metrics.Checkout(checkoutResult(err), 0)
		if isStockErr(err) {
			s.Metrics.StockRejected("checkout")
		}
		l.Warn("checkout_failed", "error", err)
		return nil, err
	}

	s.Metrics.Checkout(metrics.ResultSuccess, order.Total)
	s.publish(ctx, order)
	l.Info("checkout_success", "order_id", order.ID, "total", order.Total, "lines", len(order.Items))

	return &CheckoutResult{
		OrderID:       order.ID,
		Subtotal:      order.Subtotal,
		AdditionalFee: order.AdditionalFee,
		Total:         order.Total,
		Status:        domain.OrderStatus(order.Status),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Items:         order.Items,
	}, nil
}

// checkLineStock fails when the line asks for more than the ledger holds.
func checkLineStock(line *models.CartItem) error {
	available := 0
	if line.Variant != nil {
		available = line.Variant.StockView().Available(line.Size)
	}
	if line.Variant == nil || line.Variant.Product == nil || line.Quantity > available {
		return &domain.StockError{
			Kind:       domain.ErrInsufficientStock,
			CartItemID: line.ID,
			VariantID:  line.VariantID,
			Size:       line.Size,
			Requested:  line.Quantity,
			Available:  available,
		}
	}
	return nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return metrics.ResultEmptyCart
	case isStockErr(err):
		return metrics.ResultNoStock
	case errors.Is(err, domain.ErrValidation):
		return metrics.ResultValidation
	case errors.Is(err, domain.ErrCartChanged):
		return metrics.ResultCartChanged
	default:
		return metrics.ResultError
	}
}

// publish is best effort. The order is already committed.
func (s *CheckoutService) publish(ctx context.Context, order *models.Order) {
	if s.Events == nil {
		return
	}
	ev := events.OrderEvent{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: time.Now().UTC(),
	}
	for _, it := range order.Items {
		ev.Lines = append(ev.Lines, events.OrderLine{VariantID: it.VariantID, Size: it.Size, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	if err := s.Events.PublishEvent(ctx, s.Topic, order.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("order_event_publish_failed", "order_id", order.ID, "error", err)
	}
}
