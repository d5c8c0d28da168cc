package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

// Caller identifies who is acting on an order.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

type OrderService struct {
	Store   Store
	Events  events.Publisher
	Topic   string
	Metrics *metrics.CheckoutMetrics
}

type OrderPage struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
}

// ListMine pages through the caller's own orders, newest first. An empty
// status lists every status.
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, status string, limit, offset int) (*OrderPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	st, err := parseStatus(status, true)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repo.OrderFilter{UserID: userID, Status: st}, limit, offset)
}

// ListAll is the admin view over every order. An empty status lists all.
func (s *OrderService) ListAll(ctx context.Context, status string, limit, offset int) (*OrderPage, error) {
	st, err := parseStatus(status, true)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repo.OrderFilter{Status: st}, limit, offset)
}

// ReportQuery selects orders placed between From and To, both inclusive.
// Either bound may be RFC 3339 or a bare YYYY-MM-DD date; a bare To covers
// the whole day.
type ReportQuery struct {
	Status string
	From   string
	To     string
}

// Report is the admin listing of orders placed in a date range.
func (s *OrderService) Report(ctx context.Context, q ReportQuery, limit, offset int) (*OrderPage, error) {
	st, err := parseStatus(q.Status, true)
	if err != nil {
		return nil, err
	}
	from, err := parseBound("from", q.From, false)
	if err != nil {
		return nil, err
	}
	to, err := parseBound("to", q.To, true)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.Invalid("to", "is before from")
	}
	return s.list(ctx, repo.OrderFilter{Status: st, From: &from, To: &to}, limit, offset)
}

func (s *OrderService) list(ctx context.Context, f repo.OrderFilter, limit, offset int) (*OrderPage, error) {
	orders, total, err := s.Store.ListOrders(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Items: orders, Total: total}, nil
}

func parseBound(field, raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.Required(field)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "is not a date")
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}

func (s *OrderService) Get(ctx context.Context, caller Caller, orderID uuid.UUID) (*models.Order, error) {
	if err := requireUser(caller.UserID); err != nil {
		return nil, err
	}
	return loadOwned(ctx, s.Store, caller, orderID)
}

func loadOwned(ctx context.Context, store OrderStore, caller Caller, orderID uuid.UUID) (*models.Order, error) {
	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.UserID != caller.UserID && !caller.Admin {
		return nil, fmt.Errorf("order belongs to another user: %w", domain.ErrForbidden)
	}
	return order, nil
}

// Cancel moves a PENDING, PROCESSING or SHIPPED order to CANCELLED and puts
// every line's stock back, atomically.
func (s *OrderService) Cancel(ctx context.Context, caller Caller, orderID uuid.UUID) (*models.Order, error) {
	if err := requireUser(caller.UserID); err != nil {
		return nil, err
	}

	var out *models.Order
	err := s.Store.InTx(ctx, func(tx Store) error {
		order, err := loadOwned(ctx, tx, caller, orderID)
		if err != nil {
			return err
		}
		if !domain.OrderStatus(order.Status).Cancellable() {
			return fmt.Errorf("order is %s and cannot be cancelled: %w", order.Status, domain.ErrConflict)
		}

		changed, err := tx.TransitionStatus(ctx, order.ID, domain.CancellableStatuses(), domain.OrderCancelled)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("order status changed concurrently: %w", domain.ErrConflict)
		}

		for _, it := range order.Items {
			if err := tx.Restore(ctx, it.VariantID, it.Size, it.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		order.Status = string(domain.OrderCancelled)
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Cancelled()
	s.publish(ctx, events.TypeOrderCancelled, out)
	return out, nil
}

// UpdateStatus is the admin transition. CANCELLED goes through Cancel so the
// stock is restored. Terminal orders are not moved.
func (s *OrderService) UpdateStatus(ctx context.Context, caller Caller, orderID uuid.UUID, status string) (*models.Order, error) {
	next, err := parseStatus(status, false)
	if err != nil {
		return nil, err
	}
	caller.Admin = true
	if next == domain.OrderCancelled {
		return s.Cancel(ctx, caller, orderID)
	}

	var out *models.Order
	err = s.Store.InTx(ctx, func(tx Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return notFound(err, "order")
		}
		cur := domain.OrderStatus(order.Status)
		if cur == next {
			out = order
			return nil
		}
		if cur == domain.OrderCancelled || cur == domain.OrderCompleted {
			return fmt.Errorf("order is %s: %w", cur, domain.ErrConflict)
		}

		changed, err := tx.TransitionStatus(ctx, order.ID, []domain.OrderStatus{cur}, next)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("order status changed concurrently: %w", domain.ErrConflict)
		}
		order.Status = string(next)
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeOrderStatus, out)
	return out, nil
}

// ConfirmReceived lets the owner close a DELIVERED order.
func (s *OrderService) ConfirmReceived(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	order, err := loadOwned(ctx, s.Store, Caller{UserID: userID}, orderID)
	if err != nil {
		return nil, err
	}
	if domain.OrderStatus(order.Status) != domain.OrderDelivered {
		return nil, fmt.Errorf("order is %s, not delivered: %w", order.Status, domain.ErrConflict)
	}

	changed, err := s.Store.TransitionStatus(ctx, order.ID, []domain.OrderStatus{domain.OrderDelivered}, domain.OrderCompleted)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("order status changed concurrently: %w", domain.ErrConflict)
	}
	order.Status = string(domain.OrderCompleted)

	s.publish(ctx, events.TypeOrderStatus, order)
	return order, nil
}

func parseStatus(raw string, allowEmpty bool) (domain.OrderStatus, error) {
	st := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if st == "" && allowEmpty {
		return "", nil
	}
	if !st.Valid() {
		return "", domain.Invalid("status", "is not a known order status")
	}
	return st, nil
}

func (s *OrderService) publish(ctx context.Context, kind string, order *models.Order) {
	if s.Events == nil || order == nil {
		return
	}
	ev := events.OrderEvent{
		Type:       kind,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishEvent(ctx, s.Topic, order.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("order_event_publish_failed", "svc", "order", "order_id", order.ID, "type", kind, "error", err)
	}
}
