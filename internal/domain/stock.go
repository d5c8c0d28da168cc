package domain

// SizeStock is the stock count held for one size of a variant.
type SizeStock struct {
	Size   string `json:"size"`
	Amount int    `json:"amount"`
}

// StockView hides the two ways a variant can carry stock: a per-size list,
// or the older single size+amount pair. Callers only ask Available.
type StockView struct {
	Sizes        []SizeStock
	LegacySize   string
	LegacyAmount int
}

// Available returns the stock for size. When the per-size list is present it
// is authoritative and a missing entry means zero.
func (v StockView) Available(size string) int {
	if len(v.Sizes) > 0 {
		for _, s := range v.Sizes {
			if s.Size == size {
				return nonNegative(s.Amount)
			}
		}
		return 0
	}
	if size != v.LegacySize {
		return 0
	}
	return nonNegative(v.LegacyAmount)
}

// DefaultSize picks the size used when a client does not send one: the first
// size with stock, then the first listed size, then the legacy size.
func (v StockView) DefaultSize() string {
	for _, s := range v.Sizes {
		if s.Amount > 0 {
			return s.Size
		}
	}
	if len(v.Sizes) > 0 {
		return v.Sizes[0].Size
	}
	return v.LegacySize
}

// HasSizes reports whether the per-size list is in use.
func (v StockView) HasSizes() bool { return len(v.Sizes) > 0 }

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
