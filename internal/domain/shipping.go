package domain

const (
	DefaultShippingFlatFee       int64 = 30000
	DefaultFreeShippingThreshold int64 = 500000
)

type ShippingPolicy struct {
	FlatFee       int64
	FreeThreshold int64
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{FlatFee: DefaultShippingFlatFee, FreeThreshold: DefaultFreeShippingThreshold}
}

// Fee is zero for an empty subtotal and for subtotals at or above the
// free-shipping threshold.
func (p ShippingPolicy) Fee(subtotal int64) int64 {
	if subtotal <= 0 || subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FlatFee
}
