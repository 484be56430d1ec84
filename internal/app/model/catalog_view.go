package model

import "github.com/shopspring/decimal"

type CategoryView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type ProductView struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PriceLabel  string          `json:"price_label"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	Category    CategoryView    `json:"category"`
}

// ProductDetailView adds the purchase options shown next to a product.
type ProductDetailView struct {
	ProductView
	Sizes        []string `json:"sizes"`
	Colors       []string `json:"colors"`
	DefaultSize  string   `json:"default_size"`
	DefaultColor string   `json:"default_color"`
}
