package service

import (
	"fmt"
	"strconv"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
	"github.com/ikkim/kicks-storefront/pkg/util"
	"github.com/shopspring/decimal"
)

// CartPageURL is where buy-now and the popover send the shopper.
const CartPageURL = "/cart"

const minQuantityOptions = 10

// BuildBadgeView never reports 0 for a cart that has not loaded.
func BuildBadgeView(st cart.State) model.BadgeView {
	if !st.Ready {
		return model.BadgeView{Ready: false, Label: model.LoadingLabel}
	}
	count := st.Count()
	return model.BadgeView{Ready: true, Count: &count, Label: strconv.Itoa(count)}
}

func BuildSummaryView(st cart.State, fallback decimal.Decimal) model.CartSummaryView {
	total := st.Total(fallback)
	return model.CartSummaryView{
		Ready:      st.Ready,
		Items:      lineViews(st.Items, fallback, false),
		Count:      st.Count(),
		Total:      total,
		TotalLabel: util.FormatPrice(total),
		CartURL:    CartPageURL,
	}
}

// BuildCartPageView adds the delivery fee only to a non-empty cart.
func BuildCartPageView(st cart.State, fallback, deliveryFee decimal.Decimal) model.CartPageView {
	subtotal := st.Total(fallback)
	fee := decimal.Zero
	if !st.IsEmpty() {
		fee = deliveryFee
	}
	grand := subtotal.Add(fee)
	count := st.Count()

	return model.CartPageView{
		Ready:            st.Ready,
		Empty:            st.IsEmpty(),
		Items:            lineViews(st.Items, fallback, true),
		Count:            count,
		ItemCountLabel:   itemCountLabel(count),
		Subtotal:         subtotal,
		SubtotalLabel:    util.FormatPrice(subtotal),
		DeliveryFee:      fee,
		DeliveryFeeLabel: util.FormatPrice(fee),
		GrandTotal:       grand,
		GrandTotalLabel:  util.FormatPrice(grand),
		CheckoutEnabled:  st.Ready && !st.IsEmpty(),
	}
}

func lineViews(items []cart.LineItem, fallback decimal.Decimal, withOptions bool) []model.CartLineView {
	views := make([]model.CartLineView, 0, len(items))
	for _, item := range items {
		unit := item.UnitPrice(fallback)
		subtotal := item.Subtotal(fallback)
		image := platzi.CleanImageURL(item.FirstImage())
		if image == "" {
			image = platzi.PlaceholderImage
		}

		view := model.CartLineView{
			ProductID:      item.ProductID,
			Title:          item.Title,
			Image:          image,
			Size:           item.Size,
			Color:          item.Color,
			Quantity:       item.Quantity,
			UnitPrice:      unit,
			UnitPriceLabel: util.FormatPrice(unit),
			Subtotal:       subtotal,
			SubtotalLabel:  util.FormatPrice(subtotal),
		}
		if withOptions {
			view.QuantityOptions = quantityOptions(item.Quantity)
		}
		views = append(views, view)
	}
	return views
}

// quantityOptions lists 1..max(10, current), never past cart.MaxQuantity.
func quantityOptions(current int) []int {
	n := min(max(minQuantityOptions, current), cart.MaxQuantity)
	opts := make([]int, n)
	for i := range opts {
		opts[i] = i + 1
	}
	return opts
}

func itemCountLabel(count int) string {
	if count == 1 {
		return "1 ITEM"
	}
	return fmt.Sprintf("%d ITEMS", count)
}
