package cart

import "github.com/shopspring/decimal"

// State is a read-only snapshot of one cart.
type State struct {
	Items []LineItem
	Ready bool
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Count is the sum of all quantities.
func (s State) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Total is the sum of price × quantity, using fallback for zero prices.
func (s State) Total(fallback decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal(fallback))
	}
	return total
}

func (s State) Find(key Key) (LineItem, bool) {
	if i := indexOf(s.Items, key); i >= 0 {
		return s.Items[i], true
	}
	return LineItem{}, false
}
