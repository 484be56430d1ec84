package util

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencySymbol = "$"

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders an amount as US dollars with two decimals, e.g. "$1,234.50".
func FormatPrice(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	f, _ := amount.Round(2).Float64()
	return sign + currencySymbol + pricePrinter.Sprint(number.Decimal(f, number.Scale(2)))
}

// FormatWholePrice renders an amount as whole US dollars, e.g. "$120".
func FormatWholePrice(amount decimal.Decimal) string {
	f, _ := amount.Round(0).Float64()
	return currencySymbol + pricePrinter.Sprint(number.Decimal(f, number.Scale(0)))
}

// FormatPriceFloat is FormatPrice for catalog prices.
func FormatPriceFloat(amount float64) string {
	return FormatPrice(decimal.NewFromFloat(amount))
}
