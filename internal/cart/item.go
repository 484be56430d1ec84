package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	DefaultSize          = "41"
	DefaultColor         = "black"
	DefaultFallbackPrice = 130
	MaxQuantity          = 99
)

// Product is the catalog snapshot copied into a line item when it is added.
type Product struct {
	ID     int
	Title  string
	Price  float64
	Images []string
}

// Key is the composite identity of a line item.
type Key struct {
	ProductID int
	Size      string
	Color     string
}

// NewKey applies the size and color defaults.
func NewKey(productID int, size, color string) Key {
	if size == "" {
		size = DefaultSize
	}
	if color == "" {
		color = DefaultColor
	}
	return Key{ProductID: productID, Size: size, Color: color}
}

// LineItem is one cart entry. Title, price and images are frozen at add-time.
type LineItem struct {
	ProductID int      `json:"productId"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Quantity  int      `json:"quantity"`
}

func (i LineItem) Key() Key {
	return Key{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// UnitPrice returns the snapshotted price, or fallback when it is zero.
func (i LineItem) UnitPrice(fallback decimal.Decimal) decimal.Decimal {
	if i.Price == 0 {
		return fallback
	}
	return decimal.NewFromFloat(i.Price)
}

func (i LineItem) Subtotal(fallback decimal.Decimal) decimal.Decimal {
	return i.UnitPrice(fallback).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FirstImage returns the first image reference or "".
func (i LineItem) FirstImage() string {
	if len(i.Images) == 0 {
		return ""
	}
	return i.Images[0]
}

// UnmarshalJSON also accepts records written with the catalog's "id" field
// in place of "productId".
func (i *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var aux struct {
		plain
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = LineItem(aux.plain)
	if i.ProductID == 0 && aux.ID != nil {
		i.ProductID = *aux.ID
	}
	return nil
}

// clampQuantity keeps q within 1..MaxQuantity.
func clampQuantity(q int) int {
	return min(max(q, 1), MaxQuantity)
}

func cloneItem(item LineItem) LineItem {
	if item.Images != nil {
		item.Images = append([]string(nil), item.Images...)
	}
	return item
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func indexOf(items []LineItem, key Key) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
