package model

import "github.com/shopspring/decimal"

// LoadingLabel is shown by the badge while the cart has not loaded.
const LoadingLabel = "-"

// BadgeView is the header cart indicator. Count is nil while loading.
type BadgeView struct {
	Ready bool   `json:"ready"`
	Count *int   `json:"count"`
	Label string `json:"label"`
}

// CartLineView is one rendered line item.
type CartLineView struct {
	ProductID       int             `json:"product_id"`
	Title           string          `json:"title"`
	Image           string          `json:"image"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitPriceLabel  string          `json:"unit_price_label"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalLabel   string          `json:"subtotal_label"`
	QuantityOptions []int           `json:"quantity_options,omitempty"`
}

// CartSummaryView backs the popover opened from the badge.
type CartSummaryView struct {
	Ready      bool            `json:"ready"`
	Items      []CartLineView  `json:"items"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"total_label"`
	CartURL    string          `json:"cart_url"`
}

// CartPageView is the full cart page.
type CartPageView struct {
	Ready            bool            `json:"ready"`
	Empty            bool            `json:"empty"`
	Items            []CartLineView  `json:"items"`
	Count            int             `json:"count"`
	ItemCountLabel   string          `json:"item_count_label"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	SubtotalLabel    string          `json:"subtotal_label"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	DeliveryFeeLabel string          `json:"delivery_fee_label"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	GrandTotalLabel  string          `json:"grand_total_label"`
	CheckoutEnabled  bool            `json:"checkout_enabled"`
}

// BuyNowResult tells the client where to go after a buy-now.
type BuyNowResult struct {
	RedirectURL string `json:"redirect_url"`
	Count       int    `json:"count"`
}
