package domain

import "strings"

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

const (
	PaymentCOD    = "COD"
	PaymentOnline = "ONLINE"
	PaymentCard   = "CARD"

	DefaultPaymentMethod = PaymentCOD
)

// NormalizePaymentMethod upper-cases m and substitutes the default for an
// empty value. ok is false for an unknown method.
func NormalizePaymentMethod(m string) (string, bool) {
	m = strings.ToUpper(strings.TrimSpace(m))
	switch m {
	case "":
		return DefaultPaymentMethod, true
	case PaymentCOD, PaymentOnline, PaymentCard:
		return m, true
	}
	return m, false
}

var orderStatuses = []OrderStatus{
	OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCompleted, OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range orderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Cancellable lists the statuses an order may be cancelled from.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped:
		return true
	}
	return false
}

func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderProcessing, OrderShipped}
}
